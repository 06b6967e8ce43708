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

// QuotePoller は固定銘柄リストの現在値を一定間隔で取得し、最新スナップショットを保持します。
// スナップショットは取得成功時に丸ごと置き換えられ、失敗時は前回の値がそのまま残ります。
type QuotePoller struct {
	market   MarketRepository
	sched    Scheduler
	ids      []string
	interval time.Duration
	now      func() time.Time

	mu        sync.RWMutex
	quotes    []entity.AssetQuote
	updatedAt time.Time
	started   uint64 // 開始したリフレッシュの連番
	applied   uint64 // 反映済みリフレッシュの連番

	active bool
	ctx    context.Context
	cancel context.CancelFunc
	stop   func()
	wg     sync.WaitGroup
}

// NewQuotePoller は新しい QuotePoller を作成します。
func NewQuotePoller(market MarketRepository, sched Scheduler, ids []string, interval time.Duration) *QuotePoller {
	return &QuotePoller{
		market:   market,
		sched:    sched,
		ids:      slices.Clone(ids),
		interval: interval,
		now:      time.Now,
	}
}

// Refresh は外部APIから全銘柄の現在値を1回取得し、成功時にスナップショットを置き換えます。
// 失敗時はエラーを返し、保持しているスナップショットは変更しません。
// 後から開始されたリフレッシュが既に反映されている場合、この結果は破棄されます。
func (p *QuotePoller) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.started++
	seq := p.started
	p.mu.Unlock()

	quotes, err := p.market.FetchQuotes(ctx, p.ids)
	if err != nil {
		return fmt.Errorf("fetch %s quotes: %w", p.market.Class(), err)
	}
	if err := checkUnique(quotes); err != nil {
		return fmt.Errorf("fetch %s quotes: %w", p.market.Class(), err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if seq < p.applied {
		return ErrSuperseded
	}
	p.quotes = quotes
	p.applied = seq
	p.updatedAt = p.now()
	return nil
}

// Start は即座に1回リフレッシュし、その後 interval ごとの定期実行を登録します。
// 既に開始済みの場合は何もしません。
func (p *QuotePoller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		return nil
	}

	stop, err := p.sched.Every(p.interval, p.tick)
	if err != nil {
		return fmt.Errorf("schedule %s quotes: %w", p.market.Class(), err)
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.stop = stop
	p.active = true

	p.wg.Add(1)
	go p.run(p.ctx)
	return nil
}

// Stop は定期実行を解除し、実行中のリクエストをキャンセルして終了を待ちます。
// Stop の後に外部APIが呼ばれることはありません。
func (p *QuotePoller) Stop() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.active = false
	p.stop()
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
}

// Quotes は最新スナップショットのコピーを返します。
func (p *QuotePoller) Quotes() []entity.AssetQuote {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.quotes)
}

// UpdatedAt は最後にスナップショットが置き換えられた時刻を返します。
func (p *QuotePoller) UpdatedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.updatedAt
}

// tick はスケジューラから呼ばれます。停止後の呼び出しは無視します。
func (p *QuotePoller) tick() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	ctx := p.ctx
	p.wg.Add(1)
	p.mu.Unlock()

	p.run(ctx)
}

func (p *QuotePoller) run(ctx context.Context) {
	defer p.wg.Done()

	err := p.Refresh(ctx)
	switch {
	case err == nil:
		slog.Debug("quotes refreshed", "class", p.market.Class(), "count", len(p.ids))
	case errors.Is(err, ErrSuperseded), ctx.Err() != nil:
		slog.Debug("quote refresh discarded", "class", p.market.Class(), "error", err)
	default:
		// 前回のスナップショットを残したまま、次の定期実行を待つ
		slog.Error("failed to refresh quotes", "class", p.market.Class(), "error", err)
	}
}

// checkUnique は識別子が結果セット内で一意であることを確認します。
func checkUnique(quotes []entity.AssetQuote) error {
	seen := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		if _, ok := seen[q.ID]; ok {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateAsset, q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}
