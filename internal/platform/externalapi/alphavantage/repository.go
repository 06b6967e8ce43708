package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"market_tracker/internal/feature/market/domain"
	"market_tracker/internal/feature/market/domain/entity"
	"market_tracker/internal/feature/market/usecase"
	"market_tracker/internal/platform/externalapi/alphavantage/dto"
)

// AlphaVantageMarket はAlpha Vantage APIから株式データを取得するMarketRepository実装です。
type AlphaVantageMarket struct {
	cfg    Config
	client *http.Client
}

// AlphaVantageMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*AlphaVantageMarket)(nil)

// NewAlphaVantageMarket は指定された設定とHTTPクライアントでAlphaVantageMarketを生成します。
// APIキーが空の場合は domain.ErrMissingCredential を返します。
func NewAlphaVantageMarket(cfg Config, client *http.Client) (*AlphaVantageMarket, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ErrMissingCredential
	}
	return &AlphaVantageMarket{cfg: cfg.withDefaults(), client: client}, nil
}

// Class returns entity.Equities.
func (m *AlphaVantageMarket) Class() entity.AssetClass {
	return entity.Equities
}

// MapRange converts a time range into a sampling granularity ("5min", "daily", ...).
func (m *AlphaVantageMarket) MapRange(r entity.TimeRange) string {
	return r.QueryParam(entity.Equities)
}

// FetchQuotes は銘柄ごとにGLOBAL_QUOTEを並行して取得します。
// 結果はsymbolsと同じ順序で返し、1件でも失敗した場合は全体を失敗とします。
func (m *AlphaVantageMarket) FetchQuotes(ctx context.Context, symbols []string) ([]entity.AssetQuote, error) {
	quotes := make([]entity.AssetQuote, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	for i, sym := range symbols {
		g.Go(func() error {
			q, err := m.fetchQuote(gctx, sym)
			if err != nil {
				return fmt.Errorf("quote %s: %w", sym, err)
			}
			quotes[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return quotes, nil
}

func (m *AlphaVantageMarket) fetchQuote(ctx context.Context, symbol string) (entity.AssetQuote, error) {
	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)

	var body dto.GlobalQuoteResponse
	if err := m.query(ctx, q, &body); err != nil {
		return entity.AssetQuote{}, err
	}
	if body.GlobalQuote == nil {
		return entity.AssetQuote{}, fmt.Errorf("alphavantage: %w: no Global Quote", domain.ErrMalformedResponse)
	}

	// 存在しない銘柄は空のオブジェクトで返されるため、価格のパースで検出する
	price, err := decimal.NewFromString(body.GlobalQuote.Price)
	if err != nil {
		return entity.AssetQuote{}, fmt.Errorf("alphavantage: %w: parse price %q: %w", domain.ErrMalformedResponse, body.GlobalQuote.Price, err)
	}
	change, err := ParsePercent(body.GlobalQuote.ChangePercent)
	if err != nil {
		return entity.AssetQuote{}, fmt.Errorf("alphavantage: %w: parse change percent %q: %w", domain.ErrMalformedResponse, body.GlobalQuote.ChangePercent, err)
	}

	return entity.AssetQuote{
		ID:               symbol,
		Symbol:           symbol,
		Name:             symbol,
		Price:            price,
		ChangePercent24h: change,
	}, nil
}

// FetchSeries はTIME_SERIES_*を取得し、終値を時系列昇順のSeriesに整形します。
// ラベルはAPIが返すタイムスタンプ文字列そのままです。
func (m *AlphaVantageMarket) FetchSeries(ctx context.Context, symbol, interval string) (entity.Series, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	switch interval {
	case "1min", "5min", "15min", "30min", "60min":
		q.Set("function", "TIME_SERIES_INTRADAY")
		q.Set("interval", interval)
	case "daily", "weekly", "monthly":
		q.Set("function", "TIME_SERIES_"+strings.ToUpper(interval))
	default:
		return nil, fmt.Errorf("alphavantage: unsupported interval %q", interval)
	}

	var raw map[string]json.RawMessage
	if err := m.query(ctx, q, &raw); err != nil {
		return nil, err
	}

	var entries map[string]dto.SeriesEntry
	for k, v := range raw {
		if !strings.Contains(strings.ToLower(k), "time series") {
			continue
		}
		if err := json.Unmarshal(v, &entries); err != nil {
			return nil, fmt.Errorf("alphavantage: %w: %w", domain.ErrMalformedResponse, err)
		}
		break
	}
	if entries == nil {
		return nil, fmt.Errorf("alphavantage: %w: no time series for %q", domain.ErrMalformedResponse, symbol)
	}
	return ReshapeSeries(entries)
}

// ReshapeSeries converts a timestamp-keyed series into chronological ascending order.
func ReshapeSeries(entries map[string]dto.SeriesEntry) (entity.Series, error) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	// "2006-01-02" と "2006-01-02 15:04:05" はどちらも辞書順が時系列順
	sort.Strings(keys)

	series := make(entity.Series, 0, len(keys))
	for _, k := range keys {
		c, err := decimal.NewFromString(entries[k].Close)
		if err != nil {
			return nil, fmt.Errorf("alphavantage: %w: parse close %q at %s: %w", domain.ErrMalformedResponse, entries[k].Close, k, err)
		}
		series = append(series, entity.SeriesPoint{Label: k, Value: c})
	}
	return series, nil
}

// ParsePercent parses values like "-1.2345%".
func ParsePercent(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(s), "%"))
}

func (m *AlphaVantageMarket) query(ctx context.Context, q url.Values, out any) error {
	q.Set("apikey", m.cfg.APIKey)
	u := fmt.Sprintf("%s/query?%s", strings.TrimRight(m.cfg.BaseURL, "/"), q.Encode())

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
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
		return fmt.Errorf("alphavantage http %d", res.StatusCode)
	}

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("alphavantage: %w: %w", domain.ErrMalformedResponse, err)
	}

	// エラーやレート制限はHTTP 200で返される
	var msg dto.APIMessage
	if json.Unmarshal(b, &msg) == nil && msg.Message() != "" {
		return fmt.Errorf("alphavantage: %s", msg.Message())
	}
	return nil
}
