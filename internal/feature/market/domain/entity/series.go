package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SeriesPoint is one chart sample.
type SeriesPoint struct {
	Label string          // X-axis label; format depends on the asset class
	Value decimal.Decimal // Price at this point
}

// Series is a price history ordered by time ascending.
type Series []SeriesPoint

// Labels returns the x-axis labels in order.
func (s Series) Labels() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Label
	}
	return out
}

// Values returns the prices in order.
func (s Series) Values() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Selection is the asset and time range the chart is showing.
type Selection struct {
	AssetID string
	Range   TimeRange
}

// Snapshot is the read model of one asset class handed to the presentation layer.
type Snapshot struct {
	Class           AssetClass
	Assets          []string     // Tracked identifiers in configured order
	Quotes          []AssetQuote // Latest successful quote poll
	QuotesUpdatedAt time.Time    // Zero until the first successful poll
	Selection       Selection    // Current selection
	Series          Series       // Latest applied series
	SeriesFor       Selection    // Selection the series was fetched for
	SeriesUpdatedAt time.Time    // Zero until the first successful fetch
	Err             error        // Terminal error; when set no quotes or series are available
}

// Quote returns the quote for id, if present.
func (s Snapshot) Quote(id string) (AssetQuote, bool) {
	for _, q := range s.Quotes {
		if q.ID == id {
			return q, true
		}
	}
	return AssetQuote{}, false
}
