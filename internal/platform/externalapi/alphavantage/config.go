// Package alphavantage provides a client for the Alpha Vantage equities API.
package alphavantage

import "time"

// DefaultBaseURL is the public Alpha Vantage endpoint.
const DefaultBaseURL = "https://www.alphavantage.co"

// Config holds configuration for the Alpha Vantage API client.
type Config struct {
	APIKey  string        // API key for authentication (required)
	BaseURL string        // Base URL for the API (e.g., "https://www.alphavantage.co")
	Timeout time.Duration // HTTP request timeout
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}
