// Package scheduler は robfig/cron を使って定期ポーリングジョブを管理します。
package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrStopped is returned by Every after Stop.
var ErrStopped = errors.New("scheduler stopped")

// Scheduler manages all polling jobs on one cron runner.
// Jobs that are still running when their next tick fires are skipped.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	stopped bool
}

// New creates a Scheduler. Call Start to begin firing jobs.
func New(logger *slog.Logger) *Scheduler {
	l := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.SkipIfStillRunning(l), cron.Recover(l)),
		),
	}
}

// Every registers job to run every interval, starting one interval from now.
// Intervals below one second are rounded up to one second.
// After the returned cancel is called the job is never started again.
func (s *Scheduler) Every(interval time.Duration, job func()) (func(), error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler: invalid interval %s", interval)
	}
	if job == nil {
		return nil, errors.New("scheduler: nil job")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrStopped
	}

	id := s.cron.Schedule(cron.Every(interval), cron.FuncJob(job))
	var once sync.Once
	cancel := func() {
		once.Do(func() { s.cron.Remove(id) })
	}
	return cancel, nil
}

// Start starts the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started")
}

// Stop stops the runner and waits for running jobs to finish, or until timeout.
func (s *Scheduler) Stop(timeout time.Duration) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		slog.Info("scheduler stopped")
	case <-time.After(timeout):
		slog.Warn("scheduler stop timed out; jobs still running", "timeout", timeout)
	}
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	// cron は毎tickで wake/run を出力するため Debug に落とす
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
