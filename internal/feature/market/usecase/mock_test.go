package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"market_tracker/internal/feature/market/domain/entity"
)

// ErrNetwork はモックと期待値の間で共有されるセンチネルエラーです。
var ErrNetwork = errors.New("network error")

// mockMarketRepository はMarketRepositoryインターフェースのモック実装です。
// ポーラーから並行に呼ばれるため呼び出し回数はミューテックスで保護します。
type mockMarketRepository struct {
	class           entity.AssetClass
	FetchQuotesFunc func(ctx context.Context, ids []string) ([]entity.AssetQuote, error)
	FetchSeriesFunc func(ctx context.Context, id, param string) (entity.Series, error)

	mu          sync.Mutex
	quoteCalls  int
	seriesCalls []string
}

func (m *mockMarketRepository) Class() entity.AssetClass {
	if m.class == "" {
		return entity.Crypto
	}
	return m.class
}

func (m *mockMarketRepository) FetchQuotes(ctx context.Context, ids []string) ([]entity.AssetQuote, error) {
	m.mu.Lock()
	m.quoteCalls++
	m.mu.Unlock()
	if m.FetchQuotesFunc != nil {
		return m.FetchQuotesFunc(ctx, ids)
	}
	return nil, errors.New("FetchQuotesFunc is not implemented")
}

func (m *mockMarketRepository) FetchSeries(ctx context.Context, id, param string) (entity.Series, error) {
	m.mu.Lock()
	m.seriesCalls = append(m.seriesCalls, id+"/"+param)
	m.mu.Unlock()
	if m.FetchSeriesFunc != nil {
		return m.FetchSeriesFunc(ctx, id, param)
	}
	return nil, errors.New("FetchSeriesFunc is not implemented")
}

func (m *mockMarketRepository) MapRange(r entity.TimeRange) string {
	return r.QueryParam(m.Class())
}

func (m *mockMarketRepository) QuoteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quoteCalls
}

func (m *mockMarketRepository) SeriesCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.seriesCalls...)
}

// fakeScheduler は時間を進める代わりに Fire で登録済みジョブを手動実行するスケジューラです。
type fakeScheduler struct {
	mu        sync.Mutex
	jobs      map[int]func()
	next      int
	intervals []time.Duration
	err       error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: map[int]func(){}}
}

func (s *fakeScheduler) Every(interval time.Duration, job func()) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	id := s.next
	s.next++
	s.jobs[id] = job
	s.intervals = append(s.intervals, interval)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.jobs, id)
	}, nil
}

// Fire は登録中の全ジョブを同期的に1回実行します。
func (s *fakeScheduler) Fire() {
	s.mu.Lock()
	jobs := make([]func(), 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()
	for _, j := range jobs {
		j()
	}
}

func (s *fakeScheduler) Registered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
