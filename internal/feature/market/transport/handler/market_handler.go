// Package handler はmarketフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"market_tracker/internal/feature/market/domain"
	"market_tracker/internal/feature/market/domain/entity"
	"market_tracker/internal/feature/market/transport/http/dto"
)

// MarketTracker はアセットクラス1つ分の状態と選択操作を定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type MarketTracker interface {
	Class() entity.AssetClass
	Snapshot() entity.Snapshot
	Select(assetID string) error
	SetRange(r entity.TimeRange) error
	SetSelection(sel entity.Selection) error
}

// MarketHandler は /api/markets 配下のHTTPリクエストを処理します。
type MarketHandler struct {
	trackers map[entity.AssetClass]MarketTracker
	order    []entity.AssetClass
}

// NewMarketHandler は渡された順序でトラッカーを公開するMarketHandlerを生成します。
func NewMarketHandler(trackers ...MarketTracker) *MarketHandler {
	h := &MarketHandler{trackers: make(map[entity.AssetClass]MarketTracker, len(trackers))}
	for _, t := range trackers {
		if _, dup := h.trackers[t.Class()]; !dup {
			h.order = append(h.order, t.Class())
		}
		h.trackers[t.Class()] = t
	}
	return h
}

// ListMarkets はアセットクラスの一覧を返します。
//
// エンドポイント: GET /api/markets
func (h *MarketHandler) ListMarkets(c *gin.Context) {
	out := make([]dto.MarketSummary, 0, len(h.order))
	for _, class := range h.order {
		snap := h.trackers[class].Snapshot()
		s := dto.MarketSummary{Class: string(class), Label: class.Label(), Available: snap.Err == nil}
		if snap.Err != nil {
			s.Error = snap.Err.Error()
		}
		out = append(out, s)
	}
	c.JSON(http.StatusOK, out)
}

// GetView はタイル・時間範囲・チャートを含むビュー全体を返します。
// 利用不可のクラスでもエラーメッセージ入りのビューを200で返します。
//
// エンドポイント: GET /api/markets/:class
func (h *MarketHandler) GetView(c *gin.Context) {
	t, ok := h.tracker(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, BuildView(t.Snapshot()))
}

// GetQuotes はタイルのみを返します。
//
// エンドポイント: GET /api/markets/:class/quotes
func (h *MarketHandler) GetQuotes(c *gin.Context) {
	t, ok := h.tracker(c)
	if !ok {
		return
	}
	snap := t.Snapshot()
	if snap.Err != nil {
		writeError(c, snap.Err)
		return
	}
	c.JSON(http.StatusOK, BuildView(snap).Tiles)
}

// GetSeries はチャートのみを返します。
//
// エンドポイント: GET /api/markets/:class/series
func (h *MarketHandler) GetSeries(c *gin.Context) {
	t, ok := h.tracker(c)
	if !ok {
		return
	}
	snap := t.Snapshot()
	if snap.Err != nil {
		writeError(c, snap.Err)
		return
	}
	c.JSON(http.StatusOK, BuildView(snap).Chart)
}

// PutSelection は選択中の銘柄・時間範囲を変更し、新しいビューを返します。
// 系列の再取得はバックグラウンドで行われるため、直後のチャートは loading になります。
//
// エンドポイント: PUT /api/markets/:class/selection
// リクエストボディ例: {"asset": "ethereum", "range": "90d"}
func (h *MarketHandler) PutSelection(c *gin.Context) {
	t, ok := h.tracker(c)
	if !ok {
		return
	}

	var req dto.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
		return
	}

	var err error
	switch {
	case req.Asset != "" && req.Range != "":
		err = t.SetSelection(entity.Selection{AssetID: req.Asset, Range: entity.TimeRange(req.Range)})
	case req.Asset != "":
		err = t.Select(req.Asset)
	case req.Range != "":
		err = t.SetRange(entity.TimeRange(req.Range))
	default:
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "asset or range is required"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, BuildView(t.Snapshot()))
}

func (h *MarketHandler) tracker(c *gin.Context) (MarketTracker, bool) {
	class := entity.AssetClass(c.Param("class"))
	t, ok := h.trackers[class]
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "unknown asset class: " + string(class)})
		return nil, false
	}
	return t, true
}

// writeError はドメインエラーをHTTPステータスに変換して返します。
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownAsset), errors.Is(err, domain.ErrInvalidTimeRange):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUnavailable), errors.Is(err, domain.ErrMissingCredential):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("unexpected market handler error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}
