package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"market_tracker/internal/feature/market/domain"
	"market_tracker/internal/feature/market/domain/entity"
)

// TrackerConfig はトラッカー1つ分の設定です。
type TrackerConfig struct {
	Assets          []string      // 追跡する識別子（先頭が初期選択）
	RefreshInterval time.Duration // 現在値の取得間隔
}

// Tracker は1つのアセットクラスのパイプライン（現在値ポーラー、系列ポーラー、選択状態）をまとめます。
// 暗号資産と株式は同じ Tracker を MarketRepository の実装だけ差し替えて使います。
type Tracker struct {
	class  entity.AssetClass
	assets []string
	quotes *QuotePoller
	series *SeriesPoller
	err    error // 終端エラー。設定されている場合ポーリングは行わない

	mu sync.Mutex // 選択の読み取り→更新を直列化する
}

// NewTracker は market を使う Tracker を作成します。初期選択は先頭の銘柄と24hです。
func NewTracker(market MarketRepository, sched Scheduler, cfg TrackerConfig) (*Tracker, error) {
	if len(cfg.Assets) == 0 {
		return nil, fmt.Errorf("%s tracker: no assets configured", market.Class())
	}
	if cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("%s tracker: refresh interval must be positive", market.Class())
	}
	initial := entity.Selection{AssetID: cfg.Assets[0], Range: entity.DefaultTimeRange}
	return &Tracker{
		class:  market.Class(),
		assets: slices.Clone(cfg.Assets),
		quotes: NewQuotePoller(market, sched, cfg.Assets, cfg.RefreshInterval),
		series: NewSeriesPoller(market, initial),
	}, nil
}

// NewUnavailableTracker は終端エラー err を持つ Tracker を作成します。
// 認証情報が無い場合などに使い、ポーリングは一切行いません。
func NewUnavailableTracker(class entity.AssetClass, err error) *Tracker {
	return &Tracker{class: class, err: err}
}

// Class はアセットクラスを返します。
func (t *Tracker) Class() entity.AssetClass {
	return t.class
}

// Activate は現在値の定期取得と、現在の選択に対する系列取得を開始します。
func (t *Tracker) Activate(ctx context.Context) error {
	if t.err != nil {
		slog.Warn("tracker unavailable, polling not started", "class", t.class, "error", t.err)
		return nil
	}
	if err := t.quotes.Start(ctx); err != nil {
		return err
	}
	t.series.Start(ctx)
	slog.Info("tracker activated", "class", t.class, "assets", len(t.assets))
	return nil
}

// Deactivate はすべてのバックグラウンド処理を停止します。戻った後に外部APIが呼ばれることはありません。
func (t *Tracker) Deactivate() {
	if t.err != nil {
		return
	}
	t.quotes.Stop()
	t.series.Stop()
	slog.Info("tracker deactivated", "class", t.class)
}

// Refresh は現在値と現在の選択に対する系列をそれぞれ1回、同期的に取得します。
// ポーリングを有効化せずに使えるため、単発の取得に使います。
func (t *Tracker) Refresh(ctx context.Context) error {
	if t.err != nil {
		return t.unavailable()
	}
	qerr := t.quotes.Refresh(ctx)
	serr := t.series.Refresh(ctx, t.series.Selection())
	return errors.Join(qerr, serr)
}

// Select は表示する銘柄を変更します。時間範囲は維持されます。
func (t *Tracker) Select(assetID string) error {
	if t.err != nil {
		return t.unavailable()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	sel := t.series.Selection()
	sel.AssetID = assetID
	return t.setSelection(sel)
}

// SetRange は時間範囲を変更します。銘柄は維持されます。
func (t *Tracker) SetRange(r entity.TimeRange) error {
	if t.err != nil {
		return t.unavailable()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	sel := t.series.Selection()
	sel.Range = r
	return t.setSelection(sel)
}

// SetSelection は銘柄と時間範囲を同時に変更し、系列の再取得を開始します。
func (t *Tracker) SetSelection(sel entity.Selection) error {
	if t.err != nil {
		return t.unavailable()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setSelection(sel)
}

func (t *Tracker) setSelection(sel entity.Selection) error {
	if !slices.Contains(t.assets, sel.AssetID) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownAsset, sel.AssetID)
	}
	if !sel.Range.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTimeRange, sel.Range)
	}
	t.series.Select(sel)
	return nil
}

// Snapshot はプレゼンテーション層向けの読み取りモデルを返します。
func (t *Tracker) Snapshot() entity.Snapshot {
	if t.err != nil {
		return entity.Snapshot{Class: t.class, Err: t.err}
	}
	series, seriesFor, seriesAt := t.series.Series()
	return entity.Snapshot{
		Class:           t.class,
		Assets:          slices.Clone(t.assets),
		Quotes:          t.quotes.Quotes(),
		QuotesUpdatedAt: t.quotes.UpdatedAt(),
		Selection:       t.series.Selection(),
		Series:          series,
		SeriesFor:       seriesFor,
		SeriesUpdatedAt: seriesAt,
	}
}

func (t *Tracker) unavailable() error {
	return fmt.Errorf("%w: %s: %w", domain.ErrUnavailable, t.class, t.err)
}
