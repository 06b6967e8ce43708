package entity

import "github.com/shopspring/decimal"

// AssetQuote is the latest price snapshot of one tracked asset.
type AssetQuote struct {
	ID               string              // Unique identifier within a result set (e.g. "bitcoin", "AAPL")
	Symbol           string              // Ticker symbol (e.g. "btc", "AAPL")
	Name             string              // Display name
	Price            decimal.Decimal     // Current price in USD
	ChangePercent24h decimal.Decimal     // Signed 24-hour change in percent
	MarketCap        decimal.NullDecimal // Market capitalization, if the upstream provides it
	Image            string              // Icon URL, empty when none
}

// DisplayName returns Name, falling back to ID.
func (q AssetQuote) DisplayName() string {
	if q.Name != "" {
		return q.Name
	}
	return q.ID
}
