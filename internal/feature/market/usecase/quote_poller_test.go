package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market_tracker/internal/feature/market/domain"
	"market_tracker/internal/feature/market/domain/entity"
	"market_tracker/internal/feature/market/usecase"
)

var (
	btc = entity.AssetQuote{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", Price: decimal.RequireFromString("43250.12"), ChangePercent24h: decimal.RequireFromString("-1.5")}
	eth = entity.AssetQuote{ID: "ethereum", Symbol: "eth", Name: "Ethereum", Price: decimal.RequireFromString("2280.5"), ChangePercent24h: decimal.RequireFromString("2.25")}
)

// TestQuotePoller_Refresh はRefreshの成功・失敗時のスナップショット更新をテーブル駆動で検証します。
func TestQuotePoller_Refresh(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		fetch       func(ctx context.Context, ids []string) ([]entity.AssetQuote, error)
		wantErr     error
		wantQuotes  []entity.AssetQuote
		wantUpdated bool
	}{
		{
			name: "success: snapshot replaced",
			fetch: func(ctx context.Context, ids []string) ([]entity.AssetQuote, error) {
				return []entity.AssetQuote{eth}, nil
			},
			wantQuotes:  []entity.AssetQuote{eth},
			wantUpdated: true,
		},
		{
			name: "error: network failure keeps previous snapshot",
			fetch: func(ctx context.Context, ids []string) ([]entity.AssetQuote, error) {
				return nil, ErrNetwork
			},
			wantErr:    ErrNetwork,
			wantQuotes: []entity.AssetQuote{btc},
		},
		{
			name: "error: malformed response keeps previous snapshot",
			fetch: func(ctx context.Context, ids []string) ([]entity.AssetQuote, error) {
				return nil, domain.ErrMalformedResponse
			},
			wantErr:    domain.ErrMalformedResponse,
			wantQuotes: []entity.AssetQuote{btc},
		},
		{
			name: "error: duplicate identifiers rejected",
			fetch: func(ctx context.Context, ids []string) ([]entity.AssetQuote, error) {
				return []entity.AssetQuote{eth, eth}, nil
			},
			wantErr:    domain.ErrDuplicateAsset,
			wantQuotes: []entity.AssetQuote{btc},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			first := true
			repo := &mockMarketRepository{
				FetchQuotesFunc: func(ctx context.Context, ids []string) ([]entity.AssetQuote, error) {
					if first {
						first = false
						return []entity.AssetQuote{btc}, nil
					}
					return tt.fetch(ctx, ids)
				},
			}
			p := usecase.NewQuotePoller(repo, newFakeScheduler(), []string{"bitcoin", "ethereum"}, 30*time.Second)

			require.NoError(t, p.Refresh(context.Background()))
			before := p.UpdatedAt()

			err := p.Refresh(context.Background())

			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.wantQuotes, p.Quotes())
			if !tt.wantUpdated {
				assert.Equal(t, before, p.UpdatedAt())
			}
		})
	}
}

// TestQuotePoller_Refresh_PassesIDs は設定された識別子がそのまま外部APIに渡されることを検証します。
func TestQuotePoller_Refresh_PassesIDs(t *testing.T) {
	t.Parallel()

	ids := []string{"SPY", "AAPL", "AMZN"}
	repo := &mockMarketRepository{
		FetchQuotesFunc: func(ctx context.Context, got []string) ([]entity.AssetQuote, error) {
			assert.Equal(t, ids, got)
			return nil, nil
		},
	}
	p := usecase.NewQuotePoller(repo, newFakeScheduler(), ids, time.Minute)

	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, 1, repo.QuoteCalls())
}

// TestQuotePoller_Quotes_ReturnsCopy は返されたスライスを書き換えても内部状態が変わらないことを検証します。
func TestQuotePoller_Quotes_ReturnsCopy(t *testing.T) {
	t.Parallel()

	repo := &mockMarketRepository{
		FetchQuotesFunc: func(ctx context.Context, ids []string) ([]entity.AssetQuote, error) {
			return []entity.AssetQuote{btc}, nil
		},
	}
	p := usecase.NewQuotePoller(repo, newFakeScheduler(), []string{"bitcoin"}, time.Minute)
	require.NoError(t, p.Refresh(context.Background()))

	got := p.Quotes()
	got[0].Name = "changed"

	assert.Equal(t, "Bitcoin", p.Quotes()[0].Name)
}

// TestQuotePoller_StartStop は開始時の即時取得、定期実行、停止後に呼び出しが発生しないことを検証します。
func TestQuotePoller_StartStop(t *testing.T) {
	t.Parallel()

	sched := newFakeScheduler()
	repo := &mockMarketRepository{
		FetchQuotesFunc: func(ctx context.Context, ids []string) ([]entity.AssetQuote, error) {
			return []entity.AssetQuote{btc}, nil
		},
	}
	p := usecase.NewQuotePoller(repo, sched, []string{"bitcoin"}, 30*time.Second)

	require.NoError(t, p.Start(context.Background()))
	require.NoError(t, p.Start(context.Background()), "second Start is a no-op")
	assert.Equal(t, []time.Duration{30 * time.Second}, sched.intervals)

	// 即時取得
	assert.Eventually(t, func() bool { return repo.QuoteCalls() == 1 }, time.Second, 5*time.Millisecond)

	sched.Fire()
	assert.Equal(t, 2, repo.QuoteCalls())

	p.Stop()
	assert.Equal(t, 0, sched.Registered())

	calls := repo.QuoteCalls()
	for i := 0; i < 5; i++ {
		sched.Fire()
	}
	assert.Equal(t, calls, repo.QuoteCalls(), "no calls after Stop")
}

// TestQuotePoller_Stop_CancelsInFlight は停止時に実行中のリクエストがキャンセルされ、結果が反映されないことを検証します。
func TestQuotePoller_Stop_CancelsInFlight(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	repo := &mockMarketRepository{
		FetchQuotesFunc: func(ctx context.Context, ids []string) ([]entity.AssetQuote, error) {
			close(started)
			<-ctx.Done()
			return []entity.AssetQuote{btc}, ctx.Err()
		},
	}
	p := usecase.NewQuotePoller(repo, newFakeScheduler(), []string{"bitcoin"}, time.Minute)

	require.NoError(t, p.Start(context.Background()))
	<-started
	p.Stop()

	assert.Empty(t, p.Quotes())
	assert.True(t, p.UpdatedAt().IsZero())
}

func TestQuotePoller_Start_SchedulerError(t *testing.T) {
	t.Parallel()

	sched := newFakeScheduler()
	sched.err = errors.New("bad schedule")
	repo := &mockMarketRepository{}
	p := usecase.NewQuotePoller(repo, sched, []string{"bitcoin"}, time.Minute)

	err := p.Start(context.Background())

	assert.ErrorIs(t, err, sched.err)
	assert.Equal(t, 0, repo.QuoteCalls())
	p.Stop() // 開始していなければ何もしない
}

// TestQuotePoller_Refresh_OutOfOrder は遅れて完了した古いリフレッシュが新しいスナップショットを上書きしないことを検証します。
func TestQuotePoller_Refresh_OutOfOrder(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	slowStarted := make(chan struct{})
	calls := 0
	repo := &mockMarketRepository{
		FetchQuotesFunc: func(ctx context.Context, ids []string) ([]entity.AssetQuote, error) {
			calls++
			if calls == 1 {
				close(slowStarted)
				<-release
				return []entity.AssetQuote{btc}, nil
			}
			return []entity.AssetQuote{eth}, nil
		},
	}
	p := usecase.NewQuotePoller(repo, newFakeScheduler(), []string{"bitcoin", "ethereum"}, time.Minute)

	slowErr := make(chan error, 1)
	go func() { slowErr <- p.Refresh(context.Background()) }()
	<-slowStarted

	require.NoError(t, p.Refresh(context.Background()))
	close(release)

	assert.ErrorIs(t, <-slowErr, usecase.ErrSuperseded)
	assert.Equal(t, []entity.AssetQuote{eth}, p.Quotes())
}
