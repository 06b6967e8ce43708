// Package dto defines the JSON shapes of the market endpoints.
package dto

import "time"

// DashboardView is the complete state of one asset-class view.
type DashboardView struct {
	Class           string        `json:"class"`
	Label           string        `json:"label"`
	Tiles           []Tile        `json:"tiles"`
	Ranges          []RangeButton `json:"ranges"`
	Chart           Chart         `json:"chart"`
	Error           string        `json:"error,omitempty"` // 終端エラー。設定時はタイルとチャートは空
	QuotesUpdatedAt *time.Time    `json:"quotes_updated_at,omitempty"`
	SeriesUpdatedAt *time.Time    `json:"series_updated_at,omitempty"`
}

// Tile is one selectable asset card.
type Tile struct {
	ID               string   `json:"id"`
	Symbol           string   `json:"symbol"`
	Name             string   `json:"name"`
	Image            string   `json:"image,omitempty"`
	Price            float64  `json:"price"`
	PriceDisplay     string   `json:"price_display"` // e.g. "$43,250.12"
	ChangePercent24h float64  `json:"change_percent_24h"`
	ChangeDisplay    string   `json:"change_display"` // e.g. "-1.53%"
	MarketCap        *float64 `json:"market_cap,omitempty"`
	Positive         bool     `json:"positive"`
	Selected         bool     `json:"selected"`
}

// RangeButton is one entry of the time-range selector.
type RangeButton struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Chart is the line chart of the selected asset.
type Chart struct {
	Label   string    `json:"label"`    // 選択中の銘柄の表示名
	AssetID string    `json:"asset_id"` // データが属する銘柄
	Range   string    `json:"range"`    // データが属する時間範囲
	Labels  []string  `json:"labels"`
	Values  []float64 `json:"values"`
	Loading bool      `json:"loading"` // 現在の選択に対する系列がまだ届いていない
}

// MarketSummary is one element of GET /api/markets.
type MarketSummary struct {
	Class     string `json:"class"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// SelectionRequest is the body of PUT /api/markets/:class/selection. Omitted fields keep their value.
type SelectionRequest struct {
	Asset string `json:"asset"`
	Range string `json:"range"`
}

// ErrorResponse はエラー時のレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}
