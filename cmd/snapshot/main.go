// Command snapshot fetches one asset class once and prints its dashboard view as JSON.
// It is useful for checking API keys and upstream reachability without starting the server.
//
//	go run ./cmd/snapshot -class equities -asset AAPL -range 30d
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"market_tracker/internal/app/di"
	"market_tracker/internal/feature/market/domain/entity"
	markethandler "market_tracker/internal/feature/market/transport/handler"
	"market_tracker/internal/feature/market/usecase"
	"market_tracker/internal/platform/config"
)

// onceScheduler は定期実行を登録しないSchedulerです。
type onceScheduler struct{}

func (onceScheduler) Every(time.Duration, func()) (func(), error) { return func() {}, nil }

func main() {
	class := flag.String("class", string(entity.Crypto), "asset class: crypto or equities")
	asset := flag.String("asset", "", "asset to chart (default: first configured asset)")
	rng := flag.String("range", string(entity.DefaultTimeRange), "time range: 24h, 7d, 30d, 90d, 1y, all")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = config.DefaultPath
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	client := di.NewHTTPClient(cfg)
	var tr *usecase.Tracker
	switch entity.AssetClass(*class) {
	case entity.Crypto:
		tr, err = di.NewCryptoTracker(cfg, client, onceScheduler{})
	case entity.Equities:
		tr, err = di.NewEquitiesTracker(cfg, client, onceScheduler{})
	default:
		log.Fatalf("unknown asset class %q", *class)
	}
	if err != nil {
		log.Fatal(err)
	}

	r, err := entity.ParseTimeRange(*rng)
	if err != nil {
		log.Fatal(err)
	}
	os.Exit(run(tr, *asset, r, *timeout))
}

func run(tr *usecase.Tracker, asset string, r entity.TimeRange, timeout time.Duration) int {
	exit := 0
	// 認証情報が無い場合は取得せず、エラー入りのビューを出力する
	if snap := tr.Snapshot(); snap.Err == nil {
		sel := snap.Selection
		sel.Range = r
		if asset != "" {
			sel.AssetID = asset
		}
		// 非アクティブなので選択の記録のみ行われる
		if err := tr.SetSelection(sel); err != nil {
			log.Println("[ERROR]", err)
			return 2
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := tr.Refresh(ctx); err != nil {
			log.Println("[ERROR] refresh:", err)
			exit = 1
		}
	} else {
		exit = 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(markethandler.BuildView(tr.Snapshot())); err != nil {
		log.Println("[ERROR] encode:", err)
		return 1
	}
	return exit
}
