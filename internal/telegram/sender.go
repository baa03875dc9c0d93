package telegram

import (
	"context"
	"log"
	"time"

	"github.com/jpillora/backoff"

	"github.com/xempie/trade-sub002/internal/config"
	"github.com/xempie/trade-sub002/internal/metrics"
)

// Result is what callers get back; delivery never raises an error up the
// call chain.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Sender routes messages to the configured channels using a primary
// transport with a single fallback attempt on failure.
type Sender struct {
	defaultCh config.TelegramChannel
	adminCh   config.TelegramChannel
	blueCh    config.TelegramChannel
	fvgCh     config.TelegramChannel

	primary  Transport
	fallback Transport

	retryMin time.Duration
	retryMax time.Duration
}

func NewSender(cfg *config.Config) *Sender {
	return &Sender{
		defaultCh: cfg.TelegramDefault,
		adminCh:   cfg.TelegramAdmin,
		blueCh:    cfg.TelegramBlue,
		fvgCh:     cfg.TelegramFVG,
		primary:   NewHTTPTransport(10 * time.Second),
		fallback:  NewHTTPTransport(30 * time.Second),
		retryMin:  500 * time.Millisecond,
		retryMax:  2 * time.Second,
	}
}

// Send posts to the default channel.
func (s *Sender) Send(ctx context.Context, msg Message) Result {
	return s.deliver(ctx, "default", s.defaultCh, msg)
}

// SendTyped routes by alert type: trend and ichimoku alerts go to the admin
// channel, UP_TREND to the blue channel, FVG alerts to the FVG channel.
func (s *Sender) SendTyped(ctx context.Context, alertType string, msg Message) Result {
	switch alertType {
	case "IN_TREND", "ICHIMOKU_BEFORE_CROSS", "ICHIMOKU_AFTER_CROSS":
		return s.deliver(ctx, "admin", s.adminCh, msg)
	case "UP_TREND":
		return s.deliver(ctx, "blue", s.blueCh, msg)
	case "FVG":
		return s.deliver(ctx, "fvg", s.fvgCh, msg)
	default:
		return Result{Success: false, Message: "Unknown message type: " + alertType}
	}
}

func (s *Sender) deliver(ctx context.Context, channel string, ch config.TelegramChannel, msg Message) Result {
	if ch.BotToken == "" || ch.ChatID == "" {
		log.Printf("Telegram: missing credentials for %s channel", channel)
		metrics.TelegramMessagesTotal.WithLabelValues(channel, "skipped").Inc()
		return Result{Success: false, Message: "Telegram credentials missing"}
	}

	err := s.primary.Send(ctx, ch.BotToken, ch.ChatID, msg)
	if err == nil {
		metrics.TelegramMessagesTotal.WithLabelValues(channel, "ok").Inc()
		return Result{Success: true, Message: "sent"}
	}

	log.Printf("Telegram: primary transport failed for %s channel: %v, trying fallback", channel, err)

	// backoff.Backoff is not safe for concurrent use, so each delivery
	// gets its own.
	retry := backoff.Backoff{Min: s.retryMin, Max: s.retryMax, Jitter: true}
	select {
	case <-ctx.Done():
		metrics.TelegramMessagesTotal.WithLabelValues(channel, "error").Inc()
		return Result{Success: false, Message: ctx.Err().Error()}
	case <-time.After(retry.Duration()):
	}

	if err := s.fallback.Send(ctx, ch.BotToken, ch.ChatID, msg); err != nil {
		log.Printf("Telegram: fallback transport failed for %s channel: %v", channel, err)
		metrics.TelegramMessagesTotal.WithLabelValues(channel, "error").Inc()
		return Result{Success: false, Message: err.Error()}
	}

	metrics.TelegramMessagesTotal.WithLabelValues(channel, "fallback").Inc()
	return Result{Success: true, Message: "sent via fallback"}
}
