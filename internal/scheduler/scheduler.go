// Package scheduler triggers allocation passes on wall-clock time. Each
// sweep lists the active campaigns and asks the lifecycle controller for a
// pass; the controller decides whether a period boundary was reached.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"

	"mesa-alloc/internal/config/configs"
	"mesa-alloc/internal/core/domain"
	"mesa-alloc/internal/core/port"
	"mesa-alloc/internal/metrics"
)

// CampaignLister lists the campaigns a sweep visits.
type CampaignLister interface {
	ListActiveCampaigns(ctx context.Context, now time.Time) ([]int64, error)
}

// Scheduler runs periodic sweeps.
type Scheduler struct {
	uc        port.AllocationUseCase
	campaigns CampaignLister
	cfg       configs.Scheduler
	logger    *slog.Logger
	metrics   *metrics.Metrics

	now        func() time.Time
	newBackOff func() backoff.BackOff
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithBackOff sets the wait policy between retries of upstream failures.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(s *Scheduler) { s.newBackOff = f }
}

// WithMetrics enables prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// New creates a scheduler.
func New(uc port.AllocationUseCase, campaigns CampaignLister, cfg configs.Scheduler, logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		uc:        uc,
		campaigns: campaigns,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
	s.newBackOff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = s.cfg.InitialBackoff
		b.MaxInterval = s.cfg.MaxBackoff
		return b
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.Concurrency <= 0 {
		s.cfg.Concurrency = 1
	}
	if s.cfg.MaxTries == 0 {
		s.cfg.MaxTries = 1
	}
	return s
}

// Run sweeps once immediately and then on every interval until ctx is
// done. A non-positive interval disables the scheduler.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.cfg.Interval <= 0 {
		s.logger.Info("scheduler disabled")
		return nil
	}
	s.logger.Info("scheduler started",
		slog.Duration("interval", s.cfg.Interval), slog.Int("concurrency", s.cfg.Concurrency))

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("sweep failed", slog.Any("error", err))
		}
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// SweepResult counts pass outcomes of one sweep.
type SweepResult struct {
	Campaigns int
	Completed int
	Skipped   int
	Terminal  int
	Failed    int
}

// Sweep runs a pass for every active campaign, at most Concurrency at a
// time. Failures of single campaigns are logged and counted; only a
// failure to list campaigns is returned.
func (s *Scheduler) Sweep(ctx context.Context) (SweepResult, error) {
	started := time.Now()
	ids, err := backoff.Retry(ctx, func() ([]int64, error) {
		ids, err := s.campaigns.ListActiveCampaigns(ctx, s.now())
		if err != nil {
			return nil, fmt.Errorf("%w: list active campaigns: %w", domain.ErrUpstreamUnavailable, err)
		}
		return ids, nil
	}, backoff.WithBackOff(s.newBackOff()), backoff.WithMaxTries(s.cfg.MaxTries))
	if err != nil {
		return SweepResult{}, err
	}

	var completed, skipped, terminal, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, id := range ids {
		g.Go(func() error {
			res, err := s.pass(gctx, id)
			switch {
			case err != nil:
				failed.Add(1)
			case res.Status == port.PassCompleted:
				completed.Add(1)
			case res.Status == port.PassTerminal:
				terminal.Add(1)
			default:
				skipped.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	out := SweepResult{
		Campaigns: len(ids),
		Completed: int(completed.Load()),
		Skipped:   int(skipped.Load()),
		Terminal:  int(terminal.Load()),
		Failed:    int(failed.Load()),
	}
	s.metrics.Sweep(time.Since(started))
	s.logger.Debug("sweep finished",
		slog.Int("campaigns", out.Campaigns),
		slog.Int("completed", out.Completed),
		slog.Int("failed", out.Failed),
		slog.Duration("took", time.Since(started)),
	)
	return out, nil
}

// pass runs one campaign, retrying upstream failures with backoff.
func (s *Scheduler) pass(ctx context.Context, id int64) (*port.PassResult, error) {
	log := s.logger.With(slog.Int64("campaign_id", id))
	res, err := backoff.Retry(ctx, func() (*port.PassResult, error) {
		res, err := s.uc.RunPass(ctx, port.PassRequest{CampaignID: id})
		if err != nil && errors.Is(err, domain.ErrUpstreamUnavailable) {
			log.Warn("pass hit an unavailable upstream, backing off", slog.Any("error", err))
		}
		return res, retryable(err)
	}, backoff.WithBackOff(s.newBackOff()), backoff.WithMaxTries(s.cfg.MaxTries))
	if err != nil {
		log.Error("scheduled pass failed", slog.String("kind", domain.ErrorKind(err)), slog.Any("error", err))
		return nil, err
	}
	if res.Status == port.PassCompleted {
		log.Info("scheduled pass completed", slog.String("mode", string(res.Mode)), slog.Int64("version", res.Version))
	}
	return res, nil
}

// retryable keeps upstream failures retryable and makes everything else
// permanent.
func retryable(err error) error {
	if err == nil || errors.Is(err, domain.ErrUpstreamUnavailable) {
		return err
	}
	return backoff.Permanent(err)
}
