// cmd/server/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/xempie/trade-sub002/internal/auth"
	bingxservice "github.com/xempie/trade-sub002/internal/bingx/service"
	balancerepository "github.com/xempie/trade-sub002/internal/balance/repository"
	"github.com/xempie/trade-sub002/internal/config"
	"github.com/xempie/trade-sub002/internal/jobs"
	"github.com/xempie/trade-sub002/internal/metrics"
	orderrepository "github.com/xempie/trade-sub002/internal/order/repository"
	orderservice "github.com/xempie/trade-sub002/internal/order/service"
	positionrepository "github.com/xempie/trade-sub002/internal/position/repository"
	"github.com/xempie/trade-sub002/internal/pricing"
	signalrepository "github.com/xempie/trade-sub002/internal/signal/repository"
	signalservice "github.com/xempie/trade-sub002/internal/signal/service"
	signalhttp "github.com/xempie/trade-sub002/internal/signal/transport/http"
	"github.com/xempie/trade-sub002/internal/telegram"
	watchlistrepository "github.com/xempie/trade-sub002/internal/watchlist/repository"
	watchlisthttp "github.com/xempie/trade-sub002/internal/watchlist/transport/http"
	"github.com/xempie/trade-sub002/pkg/db"
	"github.com/xempie/trade-sub002/pkg/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var server *http.Server

func main() {
	fmt.Println("Trade relay starting...")
	cfg := config.Load()
	fmt.Println("Config loaded")

	metrics.InitMetrics()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connected")
	if cfg.IsDemo() {
		log.Println("Trading mode: demo (VST endpoints)")
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repositories
	signalRepo := signalrepository.NewPostgresSignalRepo(database)
	orderRepo := orderrepository.NewPostgresOrderRepo(database)
	positionRepo := positionrepository.NewPostgresPositionRepo(database)
	watchlistRepo := watchlistrepository.NewPostgresWatchlistRepo(database)
	balanceRepo := balancerepository.NewPostgresBalanceRepo(database)

	// Exchange clients and the price source
	bingxClient := bingxservice.NewClient(cfg.BingXAPIKey, cfg.BingXSecretKey, cfg.BingXBaseURL(), cfg.BingXRecvWindow)
	var priceFeed *bingxservice.PriceFeed
	if cfg.PriceFeedWS {
		priceFeed = bingxservice.NewPriceFeed()
		go priceFeed.Run(rootCtx)
	}
	priceSource := pricing.NewSource(priceFeed, bingxClient, futures.NewClient("", ""))

	// Telegram
	notifier := telegram.NewSender(cfg)

	// Services
	signalService := signalservice.NewService(signalRepo, priceSource, notifier, cfg.DefaultLeverage)
	if cfg.AutoTrading {
		signalService.Trader = orderservice.NewService(bingxClient, orderRepo, cfg.TradeMarginUSDT)
		log.Println("Auto trading enabled")
	}

	// Handlers
	signalHandler := signalhttp.NewHandler(signalService, notifier)
	watchlistHandler := watchlisthttp.NewHandler(watchlistRepo, priceSource)
	authHandler := auth.NewHandler(cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTTTL)

	// Scheduler
	scheduler := jobs.NewScheduler()
	scheduler.Register(jobs.NewBalanceSync(bingxClient, balanceRepo, notifier, cfg.BalanceChangeThreshold))
	scheduler.Register(jobs.NewPositionSync(bingxClient, positionRepo, notifier))
	scheduler.Register(jobs.NewOrderStatus(bingxClient, orderRepo, positionRepo, notifier))
	scheduler.Register(jobs.NewPriceMonitor(watchlistRepo, priceSource, notifier, cfg.AppBaseURL))
	scheduler.Register(jobs.NewSLTPMonitor(bingxClient, positionRepo, signalRepo))
	scheduler.Register(jobs.NewTargetMonitor(positionRepo, signalRepo, priceSource, notifier,
		cfg.TargetPercent, cfg.AutoStopLoss, cfg.TargetAutoClose))
	scheduler.Start(rootCtx)
	log.Println("Scheduler started")

	webhookLimiter := middleware.NewRateLimiter(60, time.Minute)

	r := chi.NewRouter()

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.MetricsMiddleware)

	// Public routes
	r.Post("/auth/login", authHandler.Login)
	r.Group(func(pr chi.Router) {
		pr.Use(webhookLimiter.Middleware)
		pr.Use(middleware.ValidateRequest)
		pr.Post("/webhook", signalHandler.Webhook)
	})

	// Protected routes
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.JWTAuth(cfg.JWTSecret))
		pr.Use(middleware.ValidateRequest)

		pr.Post("/api/signals/import", signalHandler.Import)
		pr.Get("/api/signals", signalHandler.List)
		pr.Delete("/api/signals/{id}", signalHandler.Archive)

		pr.Get("/api/watchlist", watchlistHandler.List)
		pr.Post("/api/watchlist", watchlistHandler.Create)
		pr.Put("/api/watchlist/{id}", watchlistHandler.Update)
		pr.Delete("/api/watchlist/{id}", watchlistHandler.Delete)

		pr.Get("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data":    scheduler.Stats(),
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Group(func(mr chi.Router) {
		mr.Use(middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPass))
		mr.Handle("/metrics", promhttp.Handler())
	})

	server = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	log.Printf("Server running on %s", cfg.ListenAddr)

	// Graceful shutdown on OS signals
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		log.Println("Shutdown signal received, starting graceful shutdown")
		cancel()
		scheduler.Wait()
		shutdownServer()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func shutdownServer() {
	log.Println("Starting server shutdown process")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped")
}
