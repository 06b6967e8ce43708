package handler

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"market_tracker/internal/feature/market/domain/entity"
	"market_tracker/internal/feature/market/transport/http/dto"
)

var printer = message.NewPrinter(language.English)

// BuildView はスナップショットから画面表示用のビューモデルを組み立てます。
// 状態を持たない純粋関数です。
func BuildView(s entity.Snapshot) dto.DashboardView {
	v := dto.DashboardView{
		Class:  string(s.Class),
		Label:  s.Class.Label(),
		Tiles:  []dto.Tile{},
		Ranges: buildRanges(s.Selection.Range),
		Chart:  dto.Chart{Labels: []string{}, Values: []float64{}},
	}
	if s.Err != nil {
		v.Error = s.Err.Error()
		return v
	}

	v.Tiles = buildTiles(s)
	v.Chart = buildChart(s)
	v.QuotesUpdatedAt = timePtr(s.QuotesUpdatedAt)
	v.SeriesUpdatedAt = timePtr(s.SeriesUpdatedAt)
	return v
}

func buildTiles(s entity.Snapshot) []dto.Tile {
	tiles := make([]dto.Tile, 0, len(s.Quotes))
	for _, q := range s.Quotes {
		t := dto.Tile{
			ID:               q.ID,
			Symbol:           q.Symbol,
			Name:             q.DisplayName(),
			Image:            q.Image,
			Price:            q.Price.InexactFloat64(),
			PriceDisplay:     FormatPrice(q.Price),
			ChangePercent24h: q.ChangePercent24h.InexactFloat64(),
			ChangeDisplay:    q.ChangePercent24h.StringFixed(2) + "%",
			Positive:         !q.ChangePercent24h.IsNegative(),
			Selected:         q.ID == s.Selection.AssetID,
		}
		if q.MarketCap.Valid {
			mc := q.MarketCap.Decimal.InexactFloat64()
			t.MarketCap = &mc
		}
		tiles = append(tiles, t)
	}
	return tiles
}

func buildRanges(selected entity.TimeRange) []dto.RangeButton {
	out := make([]dto.RangeButton, 0, len(entity.TimeRanges))
	for _, r := range entity.TimeRanges {
		out = append(out, dto.RangeButton{
			Value:    string(r),
			Label:    r.Label(),
			Selected: r == selected,
		})
	}
	return out
}

func buildChart(s entity.Snapshot) dto.Chart {
	label := s.Selection.AssetID
	if q, ok := s.Quote(s.Selection.AssetID); ok {
		label = q.DisplayName()
	}

	values := make([]float64, len(s.Series))
	for i, p := range s.Series {
		values[i] = p.Value.InexactFloat64()
	}
	return dto.Chart{
		Label:   label,
		AssetID: s.SeriesFor.AssetID,
		Range:   string(s.SeriesFor.Range),
		Labels:  s.Series.Labels(),
		Values:  values,
		Loading: s.SeriesUpdatedAt.IsZero() || s.SeriesFor != s.Selection,
	}
}

// FormatPrice formats a USD price with thousands separators.
// Prices below one dollar keep up to six decimals.
func FormatPrice(p decimal.Decimal) string {
	if p.Abs().LessThan(decimal.NewFromInt(1)) && !p.IsZero() {
		return printer.Sprintf("$%s", p.Round(6).String())
	}
	return printer.Sprintf("$%.2f", p.InexactFloat64())
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
