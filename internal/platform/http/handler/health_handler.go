// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck は /healthz に状態を報告するコンポーネントです。
type HealthCheck interface {
	Name() string
	// Check は正常なら nil、劣化している場合は理由を返します。
	Check() error
}

// HealthResponse は GET /healthz のレスポンスです。
type HealthResponse struct {
	Status     string            `json:"status"`               // プロセスが応答していれば常に "ok"
	Components map[string]string `json:"components,omitempty"` // コンポーネント名 → "ok" または理由
}

// HealthHandler はサービスヘルスチェック用の /healthz エンドポイントを処理します。
type HealthHandler struct {
	checks []HealthCheck
}

// NewHealthHandler は checks の状態を報告する HealthHandler を生成します。
func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health はHTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// 劣化したコンポーネントがあってもライブネスとしては200を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		res := HealthResponse{Status: "ok"}
		if len(h.checks) > 0 {
			res.Components = make(map[string]string, len(h.checks))
			for _, chk := range h.checks {
				if err := chk.Check(); err != nil {
					res.Components[chk.Name()] = err.Error()
					continue
				}
				res.Components[chk.Name()] = "ok"
			}
		}
		c.JSON(http.StatusOK, res)
	}
}
