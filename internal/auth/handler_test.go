package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xempie/trade-sub002/pkg/hash"
	"github.com/xempie/trade-sub002/pkg/jwt"
)

func testHandler(t *testing.T, password string) *Handler {
	t.Helper()
	hashed, err := hash.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return NewHandler(hashed, "test-jwt-secret", time.Hour)
}

func TestLoginIssuesToken(t *testing.T) {
	h := testHandler(t, "correct horse")

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"password":"correct horse"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success   bool   `json:"success"`
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Token == "" {
		t.Fatalf("response = %+v", resp)
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("expires_in = %d, want 3600", resp.ExpiresIn)
	}

	subject, err := jwt.ParseToken("test-jwt-secret", resp.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if subject != "admin" {
		t.Errorf("subject = %q, want admin", subject)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	h := testHandler(t, "correct horse")

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"password":"battery staple"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLoginRejectsWhenNoHashConfigured(t *testing.T) {
	h := NewHandler("", "secret", time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"password":"anything"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLoginRejectsEmptyBodyFields(t *testing.T) {
	h := testHandler(t, "pw")

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
