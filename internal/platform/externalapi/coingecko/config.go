// Package coingecko provides a client for the CoinGecko cryptocurrency market API.
package coingecko

import "time"

const (
	// DefaultBaseURL is the public CoinGecko v3 endpoint.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	// DefaultVsCurrency is the quote currency for prices and market caps.
	DefaultVsCurrency = "usd"
)

// Config holds configuration for the CoinGecko API client.
type Config struct {
	BaseURL    string        // Base URL for the API (e.g., "https://api.coingecko.com/api/v3")
	APIKey     string        // Optional demo API key, sent as x-cg-demo-api-key
	VsCurrency string        // Quote currency (e.g., "usd")
	Timeout    time.Duration // HTTP request timeout
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.VsCurrency == "" {
		c.VsCurrency = DefaultVsCurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}
