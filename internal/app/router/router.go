package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	markethandler "market_tracker/internal/feature/market/transport/handler"
	"market_tracker/internal/platform/http/handler"
)

// NewRouter はすべてのルートを登録したginエンジンを生成します。
func NewRouter(health *handler.HealthHandler, markets *markethandler.MarketHandler, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	// ブラウザのフロントエンドから直接呼ばれるためCORSを許可
	r.Use(cors.New(corsConfig(allowedOrigins)))

	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)

	api := r.Group("/api/markets")
	{
		api.GET("", markets.ListMarkets)
		api.GET("/:class", markets.GetView)
		api.GET("/:class/quotes", markets.GetQuotes)
		api.GET("/:class/series", markets.GetSeries)
		// 銘柄・時間範囲の選択
		api.PUT("/:class/selection", markets.PutSelection)
	}

	return r
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "HEAD", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range allowedOrigins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = allowedOrigins
	return cfg
}
