// Package entity defines the domain models for the market feature.
package entity

// AssetClass identifies one independently tracked market.
type AssetClass string

const (
	// Crypto is the cryptocurrency market (CoinGecko).
	Crypto AssetClass = "crypto"
	// Equities is the stock market (Alpha Vantage).
	Equities AssetClass = "equities"
)

// AssetClasses lists every supported class in display order.
var AssetClasses = []AssetClass{Crypto, Equities}

// Valid reports whether c is a supported asset class.
func (c AssetClass) Valid() bool {
	switch c {
	case Crypto, Equities:
		return true
	}
	return false
}

// Label is the tab title of the class.
func (c AssetClass) Label() string {
	switch c {
	case Crypto:
		return "Cryptocurrencies"
	case Equities:
		return "Stocks"
	}
	return string(c)
}
