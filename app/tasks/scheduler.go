package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler triggers ingestion runs on a fixed interval. There is no
// run-level mutex: a manual run-now can overlap a scheduled run, and the
// overlapping writes converge through the idempotent upserts.
type Scheduler struct {
	runner   IngestRunner
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewScheduler(runner IngestRunner, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		runner:   runner,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.runOnce()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) runOnce() {
	if err := s.runner.Run(s.ctx); err != nil {
		slog.Error("Scheduled ingestion run failed", "error", err)
	}
}
