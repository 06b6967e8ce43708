// Package dto defines data transfer objects for the CoinGecko API responses.
package dto

import "github.com/shopspring/decimal"

// MarketItem is one element of the /coins/markets response array.
type MarketItem struct {
	ID                       string              `json:"id"`
	Symbol                   string              `json:"symbol"`
	Name                     string              `json:"name"`
	Image                    string              `json:"image"`
	CurrentPrice             decimal.NullDecimal `json:"current_price"`
	MarketCap                decimal.NullDecimal `json:"market_cap"`
	PriceChangePercentage24h decimal.NullDecimal `json:"price_change_percentage_24h"`
}

// MarketChartResponse represents the JSON response from the /coins/{id}/market_chart endpoint.
// Each price entry is an [epoch_ms, price] pair.
type MarketChartResponse struct {
	Prices [][]decimal.Decimal `json:"prices"`
}

// ErrorResponse is returned by CoinGecko with non-2xx status codes.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}
