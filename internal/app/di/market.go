// Package di provides dependency injection factories for creating application components.
package di

import (
	"errors"
	"log/slog"
	"net/http"

	"market_tracker/internal/feature/market/domain"
	"market_tracker/internal/feature/market/domain/entity"
	"market_tracker/internal/feature/market/usecase"
	"market_tracker/internal/platform/config"
	"market_tracker/internal/platform/externalapi/alphavantage"
	"market_tracker/internal/platform/externalapi/coingecko"
	infrahttp "market_tracker/internal/platform/http"
)

// NewHTTPClient creates the shared client for all upstream market APIs.
func NewHTTPClient(cfg *config.Config) *http.Client {
	return infrahttp.NewHTTPClient(infrahttp.ClientOptions{
		Timeout:   cfg.HTTPClient.Timeout,
		UserAgent: cfg.HTTPClient.UserAgent,
	})
}

// NewCryptoTracker creates the CoinGecko-backed tracker.
func NewCryptoTracker(cfg *config.Config, client *http.Client, sched usecase.Scheduler) (*usecase.Tracker, error) {
	market := coingecko.NewCoinGeckoMarket(coingecko.Config{
		BaseURL: cfg.Crypto.BaseURL,
		APIKey:  cfg.Crypto.APIKey,
		Timeout: cfg.HTTPClient.Timeout,
	}, client)
	return usecase.NewTracker(market, sched, usecase.TrackerConfig{
		Assets:          cfg.Crypto.Assets,
		RefreshInterval: cfg.Crypto.RefreshInterval,
	})
}

// NewEquitiesTracker creates the Alpha Vantage-backed tracker.
// If no API key is configured, it returns a tracker in the unavailable state
// so the equities view reports the missing credential instead of polling.
func NewEquitiesTracker(cfg *config.Config, client *http.Client, sched usecase.Scheduler) (*usecase.Tracker, error) {
	market, err := alphavantage.NewAlphaVantageMarket(alphavantage.Config{
		APIKey:  cfg.Equities.APIKey,
		BaseURL: cfg.Equities.BaseURL,
		Timeout: cfg.HTTPClient.Timeout,
	}, client)
	if errors.Is(err, domain.ErrMissingCredential) {
		slog.Warn("ALPHA_VANTAGE_API_KEY is not set. Equities view is disabled.")
		return usecase.NewUnavailableTracker(entity.Equities, err), nil
	}
	if err != nil {
		return nil, err
	}
	return usecase.NewTracker(market, sched, usecase.TrackerConfig{
		Assets:          cfg.Equities.Assets,
		RefreshInterval: cfg.Equities.RefreshInterval,
	})
}

// TrackerHealthCheck reports a tracker's terminal error on /healthz.
type TrackerHealthCheck struct {
	Tracker *usecase.Tracker
}

// Name returns the asset class.
func (c TrackerHealthCheck) Name() string {
	return string(c.Tracker.Class())
}

// Check returns the tracker's terminal error, if any.
func (c TrackerHealthCheck) Check() error {
	return c.Tracker.Snapshot().Err
}
