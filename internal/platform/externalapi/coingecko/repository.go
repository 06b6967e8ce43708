package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"market_tracker/internal/feature/market/domain"
	"market_tracker/internal/feature/market/domain/entity"
	"market_tracker/internal/feature/market/usecase"
	"market_tracker/internal/platform/externalapi/coingecko/dto"
)

// labelLayout formats chart labels as calendar dates.
const labelLayout = "2006-01-02"

// CoinGeckoMarket is the crypto MarketRepository backed by the CoinGecko API.
type CoinGeckoMarket struct {
	cfg    Config
	client *http.Client
}

// Compile-time check that CoinGeckoMarket implements MarketRepository.
var _ usecase.MarketRepository = (*CoinGeckoMarket)(nil)

// NewCoinGeckoMarket creates a CoinGeckoMarket with the given configuration and HTTP client.
func NewCoinGeckoMarket(cfg Config, client *http.Client) *CoinGeckoMarket {
	return &CoinGeckoMarket{cfg: cfg.withDefaults(), client: client}
}

// Class returns entity.Crypto.
func (m *CoinGeckoMarket) Class() entity.AssetClass {
	return entity.Crypto
}

// MapRange converts a time range into the "days" query parameter.
func (m *CoinGeckoMarket) MapRange(r entity.TimeRange) string {
	return r.QueryParam(entity.Crypto)
}

// FetchQuotes fetches current market data for all ids in a single batched request.
// Quotes are returned in the upstream order (market cap descending).
func (m *CoinGeckoMarket) FetchQuotes(ctx context.Context, ids []string) ([]entity.AssetQuote, error) {
	q := url.Values{}
	q.Set("vs_currency", m.cfg.VsCurrency)
	q.Set("ids", strings.Join(ids, ","))
	q.Set("order", "market_cap_desc")
	q.Set("sparkline", "false")

	var body []dto.MarketItem
	if err := m.get(ctx, "/coins/markets", q, &body); err != nil {
		return nil, err
	}

	quotes := make([]entity.AssetQuote, 0, len(body))
	for _, it := range body {
		if it.ID == "" {
			return nil, fmt.Errorf("coingecko: %w: market item without id", domain.ErrMalformedResponse)
		}
		if !it.CurrentPrice.Valid {
			return nil, fmt.Errorf("coingecko: %w: no current_price for %q", domain.ErrMalformedResponse, it.ID)
		}
		quotes = append(quotes, entity.AssetQuote{
			ID:     it.ID,
			Symbol: it.Symbol,
			Name:   it.Name,
			Price:  it.CurrentPrice.Decimal,
			// 24h change is null for freshly listed coins
			ChangePercent24h: it.PriceChangePercentage24h.Decimal,
			MarketCap:        it.MarketCap,
			Image:            it.Image,
		})
	}
	return quotes, nil
}

// FetchSeries fetches the price history of one coin. days is the value returned by MapRange.
// Labels are UTC calendar dates; points keep the upstream (ascending) order.
func (m *CoinGeckoMarket) FetchSeries(ctx context.Context, id, days string) (entity.Series, error) {
	q := url.Values{}
	q.Set("vs_currency", m.cfg.VsCurrency)
	q.Set("days", days)

	var body dto.MarketChartResponse
	if err := m.get(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", q, &body); err != nil {
		return nil, err
	}
	if body.Prices == nil {
		return nil, fmt.Errorf("coingecko: %w: no prices for %q", domain.ErrMalformedResponse, id)
	}
	return ReshapePrices(body.Prices)
}

// ReshapePrices converts [epoch_ms, price] pairs into a Series labelled with calendar dates.
func ReshapePrices(prices [][]decimal.Decimal) (entity.Series, error) {
	series := make(entity.Series, 0, len(prices))
	for i, p := range prices {
		if len(p) != 2 {
			return nil, fmt.Errorf("coingecko: %w: price point %d has %d elements", domain.ErrMalformedResponse, i, len(p))
		}
		ts := time.UnixMilli(p[0].IntPart()).UTC()
		series = append(series, entity.SeriesPoint{
			Label: ts.Format(labelLayout),
			Value: p[1],
		})
	}
	return series, nil
}

func (m *CoinGeckoMarket) get(ctx context.Context, path string, q url.Values, out any) error {
	u := fmt.Sprintf("%s%s?%s", strings.TrimRight(m.cfg.BaseURL, "/"), path, q.Encode())

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if m.cfg.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", m.cfg.APIKey)
	}

	res, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		var e dto.ErrorResponse
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		if json.Unmarshal(b, &e) == nil {
			if msg := firstNonEmpty(e.Error, e.Status.ErrorMessage); msg != "" {
				return fmt.Errorf("coingecko http %d: %s", res.StatusCode, msg)
			}
		}
		return fmt.Errorf("coingecko http %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("coingecko: %w: %w", domain.ErrMalformedResponse, err)
	}
	return nil
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
