package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"market_tracker/internal/app/di"
	"market_tracker/internal/app/router"
	markethandler "market_tracker/internal/feature/market/transport/handler"
	"market_tracker/internal/feature/market/usecase"
	"market_tracker/internal/platform/config"
	"market_tracker/internal/platform/http/handler"
	"market_tracker/internal/platform/logger"
	"market_tracker/internal/platform/scheduler"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = config.DefaultPath
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	l, err := logger.New(os.Stdout, logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	slog.SetDefault(l)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// スケジューラ
	sched := scheduler.New(l)

	// Tracker
	client := di.NewHTTPClient(cfg)
	crypto, err := di.NewCryptoTracker(cfg, client, sched)
	if err != nil {
		slog.Error("failed to create crypto tracker", "error", err)
		os.Exit(1)
	}
	equities, err := di.NewEquitiesTracker(cfg, client, sched)
	if err != nil {
		slog.Error("failed to create equities tracker", "error", err)
		os.Exit(1)
	}
	trackers := []*usecase.Tracker{crypto, equities}

	// Handler
	healthH := handler.NewHealthHandler(di.TrackerHealthCheck{Tracker: crypto}, di.TrackerHealthCheck{Tracker: equities})
	marketH := markethandler.NewMarketHandler(crypto, equities)

	// ルータ生成
	r := router.NewRouter(healthH, marketH, cfg.Server.CORSAllowedOrigins)

	// ビューの有効化 = ポーリング開始
	sched.Start()
	for _, t := range trackers {
		if err := t.Activate(ctx); err != nil {
			slog.Error("failed to activate tracker", "class", t.Class(), "error", err)
			os.Exit(1)
		}
	}

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	go func() {
		slog.Info("http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down http server", "error", err)
	}

	// ビューの無効化 = すべてのポーリングを停止
	for _, t := range trackers {
		t.Deactivate()
	}
	sched.Stop(cfg.Server.ShutdownTimeout)
}
