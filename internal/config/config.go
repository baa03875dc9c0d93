package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// TelegramChannel holds one bot token / chat id pair.
type TelegramChannel struct {
	BotToken string
	ChatID   string
}

type Config struct {
	DatabaseURL string
	ListenAddr  string

	// BingX
	BingXAPIKey     string
	BingXSecretKey  string
	BingXLiveURL    string
	BingXDemoURL    string
	TradingMode     string // "live" or "demo"
	BingXRecvWindow int64

	// Telegram channels
	TelegramDefault TelegramChannel
	TelegramAdmin   TelegramChannel
	TelegramBlue    TelegramChannel
	TelegramFVG     TelegramChannel

	// Admin API auth
	AdminPasswordHash string
	JWTSecret         string
	JWTTTL            time.Duration

	// Thresholds
	BalanceChangeThreshold float64
	DefaultLeverage        int
	TradeMarginUSDT        float64

	// Position close behaviour
	TargetPercent   float64 // leveraged P&L percent that counts as the target
	AutoStopLoss    bool    // close positions at the signal's stop
	TargetAutoClose bool    // close at the target instead of notifying

	// AppBaseURL is the web app origin used in alert action buttons.
	AppBaseURL string

	// Feature flags
	AutoTrading bool
	PriceFeedWS bool
	MetricsUser string
	MetricsPass string
	CORSOrigins []string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),

		BingXAPIKey:     os.Getenv("BINGX_API_KEY"),
		BingXSecretKey:  os.Getenv("BINGX_SECRET_KEY"),
		BingXLiveURL:    getEnv("BINGX_LIVE_URL", "https://open-api.bingx.com"),
		BingXDemoURL:    getEnv("BINGX_DEMO_URL", "https://open-api-vst.bingx.com"),
		TradingMode:     getEnv("TRADING_MODE", "live"),
		BingXRecvWindow: getEnvInt64("BINGX_RECV_WINDOW", 5000),

		TelegramDefault: TelegramChannel{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		},
		TelegramAdmin: TelegramChannel{
			BotToken: os.Getenv("TELEGRAM_ADMIN_BOT_TOKEN"),
			ChatID:   os.Getenv("TELEGRAM_ADMIN_CHAT_ID"),
		},
		TelegramBlue: TelegramChannel{
			BotToken: os.Getenv("TELEGRAM_BLUE_BOT_TOKEN"),
			ChatID:   os.Getenv("TELEGRAM_BLUE_CHAT_ID"),
		},
		TelegramFVG: TelegramChannel{
			BotToken: os.Getenv("TELEGRAM_FVG_BOT_TOKEN"),
			ChatID:   os.Getenv("TELEGRAM_FVG_CHAT_ID"),
		},

		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTTTL:            getEnvDuration("JWT_TTL", 24*time.Hour),

		BalanceChangeThreshold: getEnvFloat("BALANCE_CHANGE_THRESHOLD", 5.0),
		DefaultLeverage:        int(getEnvInt64("DEFAULT_LEVERAGE", 6)),
		TradeMarginUSDT:        getEnvFloat("TRADE_MARGIN_USDT", 10),
		AppBaseURL:             os.Getenv("APP_BASE_URL"),

		TargetPercent:   getEnvFloat("TARGET_PERCENTAGE", 10),
		AutoStopLoss:    getEnvBool("AUTO_STOP_LOSS", false),
		TargetAutoClose: getEnv("TARGET_ACTION", "telegram_notify") == "auto_close",

		AutoTrading: getEnvBool("AUTO_TRADING", false),
		PriceFeedWS: getEnvBool("PRICE_FEED_WS", true),
		MetricsUser: getEnv("METRICS_USER", "metrics"),
		MetricsPass: os.Getenv("METRICS_PASSWORD"),
		CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}

	return cfg
}

// IsDemo reports whether the service should hit the VST (paper) endpoints.
func (c *Config) IsDemo() bool {
	return c.TradingMode == "demo"
}

// BingXBaseURL returns the REST base for the configured trading mode.
func (c *Config) BingXBaseURL() string {
	if c.IsDemo() {
		return c.BingXDemoURL
	}
	return c.BingXLiveURL
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
