package entity

import (
	"fmt"

	"market_tracker/internal/feature/market/domain"
)

// TimeRange is the chart window selected by the user.
type TimeRange string

const (
	Range24h TimeRange = "24h"
	Range7d  TimeRange = "7d"
	Range30d TimeRange = "30d"
	Range90d TimeRange = "90d"
	Range1y  TimeRange = "1y"
	RangeAll TimeRange = "all"
)

// DefaultTimeRange is selected when a view is first shown.
const DefaultTimeRange = Range24h

// TimeRanges lists every range in selector order.
var TimeRanges = []TimeRange{Range24h, Range7d, Range30d, Range90d, Range1y, RangeAll}

// cryptoDays maps a range to the CoinGecko "days" parameter.
var cryptoDays = map[TimeRange]string{
	Range24h: "1",
	Range7d:  "7",
	Range30d: "30",
	Range90d: "90",
	Range1y:  "365",
	RangeAll: "max",
}

// equityIntervals maps a range to the Alpha Vantage sampling granularity.
var equityIntervals = map[TimeRange]string{
	Range24h: "5min",
	Range7d:  "30min",
	Range30d: "daily",
	Range90d: "daily",
	Range1y:  "weekly",
	RangeAll: "monthly",
}

// ParseTimeRange converts a selector value into a TimeRange.
func ParseTimeRange(s string) (TimeRange, error) {
	r := TimeRange(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidTimeRange, s)
	}
	return r, nil
}

// Valid reports whether r is one of the supported ranges.
func (r TimeRange) Valid() bool {
	_, ok := cryptoDays[r]
	return ok
}

// Label is the text shown on the range selector button.
func (r TimeRange) Label() string {
	if r == RangeAll {
		return "All"
	}
	return string(r)
}

// QueryParam maps r to the query parameter the upstream API of class expects:
// a day count (or "max") for crypto, a sampling granularity for equities.
// Unknown ranges and classes map to the empty string.
func (r TimeRange) QueryParam(class AssetClass) string {
	switch class {
	case Crypto:
		return cryptoDays[r]
	case Equities:
		return equityIntervals[r]
	}
	return ""
}
