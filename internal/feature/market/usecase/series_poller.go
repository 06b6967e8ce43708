package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"market_tracker/internal/feature/market/domain/entity"
)

// SeriesPoller は現在の選択（銘柄＋時間範囲）に対応する価格履歴を1つだけ保持します。
// 取得のたびに単調増加するトークンを割り当て、最後に開始した取得の結果だけを反映します。
// 古い取得はコンテキスト経由でキャンセルされ、遅れて返ってきた結果も破棄されます。
type SeriesPoller struct {
	market MarketRepository
	now    func() time.Time

	mu        sync.Mutex
	selection entity.Selection
	series    entity.Series
	seriesFor entity.Selection
	updatedAt time.Time
	token     uint64
	inFlight  context.CancelFunc
	fetched   bool // 現在の selection に対する取得を開始済みか

	active bool
	parent context.Context
	wg     sync.WaitGroup
}

// NewSeriesPoller は初期選択 initial を持つ SeriesPoller を作成します。
func NewSeriesPoller(market MarketRepository, initial entity.Selection) *SeriesPoller {
	return &SeriesPoller{
		market:    market,
		now:       time.Now,
		selection: initial,
	}
}

// Refresh は sel を現在の選択として記録し、その価格履歴を同期的に取得します。
// 取得中に新しい取得が開始された場合は ErrSuperseded を返し、結果は反映しません。
// 失敗時は保持している系列を変更しません。
func (p *SeriesPoller) Refresh(ctx context.Context, sel entity.Selection) error {
	p.mu.Lock()
	ctx, token := p.begin(ctx, sel)
	p.mu.Unlock()

	return p.fetch(ctx, token, sel)
}

// Select は選択を変更し、バックグラウンドで価格履歴を取得します。
// 選択が変わっておらず取得も開始済みなら何もしません。停止中は選択のみ記録します。
func (p *SeriesPoller) Select(sel entity.Selection) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if sel == p.selection && p.fetched {
		return
	}
	if !p.active {
		p.selection = sel
		p.fetched = false
		return
	}
	p.launch(sel)
}

// Start は現在の選択で初回取得を行い、以降 Select による取得を有効にします。
func (p *SeriesPoller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		return
	}
	p.active = true
	p.parent = ctx
	p.launch(p.selection)
}

// Stop は実行中の取得をキャンセルし、終了を待ちます。
func (p *SeriesPoller) Stop() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.active = false
	p.fetched = false
	if p.inFlight != nil {
		p.inFlight()
		p.inFlight = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// Selection は現在の選択を返します。
func (p *SeriesPoller) Selection() entity.Selection {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection
}

// Series は最後に反映された系列のコピーと、その系列が取得された選択・時刻を返します。
func (p *SeriesPoller) Series() (entity.Series, entity.Selection, time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.series), p.seriesFor, p.updatedAt
}

// launch はロック保持中に呼び出し、バックグラウンド取得を開始します。
func (p *SeriesPoller) launch(sel entity.Selection) {
	ctx, token := p.begin(p.parent, sel)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		err := p.fetch(ctx, token, sel)
		switch {
		case err == nil:
			slog.Debug("series refreshed", "class", p.market.Class(), "asset", sel.AssetID, "range", sel.Range)
		case errors.Is(err, ErrSuperseded), errors.Is(err, context.Canceled):
			slog.Debug("series fetch discarded", "class", p.market.Class(), "asset", sel.AssetID, "range", sel.Range)
		default:
			slog.Error("failed to fetch series", "class", p.market.Class(), "asset", sel.AssetID, "range", sel.Range, "error", err)
		}
	}()
}

// begin はロック保持中に呼び出します。前回の取得をキャンセルし、新しいトークンを発行します。
func (p *SeriesPoller) begin(ctx context.Context, sel entity.Selection) (context.Context, uint64) {
	if p.inFlight != nil {
		p.inFlight()
	}
	ctx, cancel := context.WithCancel(ctx)
	p.inFlight = cancel
	p.token++
	p.selection = sel
	p.fetched = true
	return ctx, p.token
}

func (p *SeriesPoller) fetch(ctx context.Context, token uint64, sel entity.Selection) error {
	param := p.market.MapRange(sel.Range)
	series, err := p.market.FetchSeries(ctx, sel.AssetID, param)

	p.mu.Lock()
	defer p.mu.Unlock()
	if token != p.token {
		return ErrSuperseded
	}
	ctxErr := ctx.Err()
	if p.inFlight != nil {
		p.inFlight()
		p.inFlight = nil
	}
	if err != nil {
		return fmt.Errorf("fetch %s series %s/%s: %w", p.market.Class(), sel.AssetID, sel.Range, err)
	}
	if ctxErr != nil {
		return ctxErr
	}
	p.series = series
	p.seriesFor = sel
	p.updatedAt = p.now()
	return nil
}
