package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/xempie/trade-sub002/internal/watchlist"
)

type stubRepo struct {
	items     []*watchlist.Item
	saved     []*watchlist.Item
	statusSet map[int64]string
	deleted   []int64
	nextID    int64
}

func newStubRepo(items ...*watchlist.Item) *stubRepo {
	return &stubRepo{items: items, statusSet: map[int64]string{}}
}

func (s *stubRepo) Save(ctx context.Context, item *watchlist.Item) error {
	s.nextID++
	item.ID = s.nextID
	s.saved = append(s.saved, item)
	return nil
}

func (s *stubRepo) GetActive(ctx context.Context, limit int) ([]*watchlist.Item, error) {
	return s.items, nil
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	s.statusSet[id] = status
	return nil
}

func (s *stubRepo) MarkTriggered(ctx context.Context, id int64) error {
	s.statusSet[id] = watchlist.StatusTriggered
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubPricing struct{ prices map[string]float64 }

func (s *stubPricing) Price(ctx context.Context, symbol string) (float64, error) {
	p, ok := s.prices[symbol]
	if !ok {
		return 0, errors.New("no price")
	}
	return p, nil
}

func router(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/watchlist", h.List)
	r.Post("/api/watchlist", h.Create)
	r.Put("/api/watchlist/{id}", h.Update)
	r.Delete("/api/watchlist/{id}", h.Delete)
	return r
}

func TestListIncludesProgress(t *testing.T) {
	repo := newStubRepo(&watchlist.Item{
		ID: 1, Symbol: "BTC-USDT", EntryPrice: 44100, EntryType: "entry_2",
		Direction: "long", MarginAmount: 250, Status: watchlist.StatusActive,
	})
	h := NewHandler(repo, &stubPricing{prices: map[string]float64{"BTC-USDT": 44100}})

	req := httptest.NewRequest(http.MethodGet, "/api/watchlist", nil)
	rec := httptest.NewRecorder()
	router(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Success bool `json:"success"`
		Data    []struct {
			Symbol       string   `json:"symbol"`
			CurrentPrice *float64 `json:"current_price"`
			Progress     *float64 `json:"progress"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("got %d items", len(resp.Data))
	}
	item := resp.Data[0]
	if item.CurrentPrice == nil || *item.CurrentPrice != 44100 {
		t.Errorf("current price = %v", item.CurrentPrice)
	}
	// Price exactly at the entry level shows full progress
	if item.Progress == nil || *item.Progress != 100 {
		t.Errorf("progress = %v, want 100", item.Progress)
	}
}

func TestListWithoutPriceOmitsProgress(t *testing.T) {
	repo := newStubRepo(&watchlist.Item{
		ID: 1, Symbol: "XYZ-USDT", EntryPrice: 10, EntryType: "market",
		Direction: "long", MarginAmount: 50, Status: watchlist.StatusActive,
	})
	h := NewHandler(repo, &stubPricing{prices: map[string]float64{}})

	req := httptest.NewRequest(http.MethodGet, "/api/watchlist", nil)
	rec := httptest.NewRecorder()
	router(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "progress") {
		t.Errorf("progress should be omitted without a price: %s", rec.Body.String())
	}
}

func TestCreateSkipsIncompleteItems(t *testing.T) {
	repo := newStubRepo()
	h := NewHandler(repo, nil)

	body := `{
		"symbol": "BTC-USDT",
		"direction": "long",
		"watchlist_items": [
			{"entry_type": "market", "entry_price": 45000, "margin_amount": 250},
			{"entry_type": "", "entry_price": 44100, "margin_amount": 250},
			{"entry_type": "entry_3", "entry_price": 0, "margin_amount": 250}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/watchlist", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(repo.saved) != 1 {
		t.Errorf("saved %d items, want 1", len(repo.saved))
	}
	if !strings.Contains(rec.Body.String(), "1 watchlist item(s) added") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCreateRejectsBadDirection(t *testing.T) {
	h := NewHandler(newStubRepo(), nil)

	body := `{"symbol": "BTC-USDT", "direction": "up",
		"watchlist_items": [{"entry_type": "market", "entry_price": 1, "margin_amount": 1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/watchlist", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateStatus(t *testing.T) {
	repo := newStubRepo()
	h := NewHandler(repo, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/watchlist/7", strings.NewReader(`{"status":"cancelled"}`))
	rec := httptest.NewRecorder()
	router(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if repo.statusSet[7] != "cancelled" {
		t.Errorf("status set = %v", repo.statusSet)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	h := NewHandler(newStubRepo(), nil)

	req := httptest.NewRequest(http.MethodPut, "/api/watchlist/7", strings.NewReader(`{"status":"paused"}`))
	rec := httptest.NewRecorder()
	router(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDelete(t *testing.T) {
	repo := newStubRepo()
	h := NewHandler(repo, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/watchlist/3", nil)
	rec := httptest.NewRecorder()
	router(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != 3 {
		t.Errorf("deleted = %v, want [3]", repo.deleted)
	}
}
