package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const apiBase = "https://api.telegram.org"

// Button is one inline keyboard button.
type Button struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

// Message is a single outbound chat message.
type Message struct {
	Text    string
	Buttons [][]Button
}

// Transport delivers a message to one bot/chat pair.
type Transport interface {
	Send(ctx context.Context, botToken, chatID string, msg Message) error
}

// HTTPTransport posts form-encoded sendMessage requests.
type HTTPTransport struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		BaseURL: apiBase,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (t *HTTPTransport) Send(ctx context.Context, botToken, chatID string, msg Message) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, botToken)

	params := url.Values{}
	params.Set("chat_id", chatID)
	params.Set("text", msg.Text)
	params.Set("parse_mode", "HTML")
	if len(msg.Buttons) > 0 {
		markup, err := json.Marshal(map[string]interface{}{"inline_keyboard": msg.Buttons})
		if err != nil {
			return fmt.Errorf("telegram marshal keyboard: %w", err)
		}
		params.Set("reply_markup", string(markup))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram HTTP %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("telegram decode response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram API: %s", result.Description)
	}
	return nil
}
