package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/shopspring/decimal"

	"mesa-alloc/internal/core/allocation"
	"mesa-alloc/internal/core/domain"
	"mesa-alloc/internal/core/port"
	"mesa-alloc/internal/metrics"
)

// AllocationUseCase is the allocation lifecycle controller. It decides
// whether a campaign is due for a pass, assembles the inputs from the
// campaign store and the previous pass, runs the engine and commits the
// result with optimistic concurrency. Passes for one campaign never
// overlap within a process; across processes the record version decides.
type AllocationUseCase struct {
	store     port.AllocationStore
	campaigns port.CampaignRepository
	measures  port.MeasureSource
	publisher port.ResultPublisher
	params    domain.AllocationParameters
	logger    *slog.Logger
	metrics   *metrics.Metrics

	now        func() time.Time
	maxRetries uint
	newBackOff func() backoff.BackOff

	locks *xsync.Map[int64, *sync.Mutex]
}

// Option customises an AllocationUseCase.
type Option func(*AllocationUseCase)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(u *AllocationUseCase) { u.now = now }
}

// WithPublisher sets the collaborator notified after each commit.
func WithPublisher(p port.ResultPublisher) Option {
	return func(u *AllocationUseCase) { u.publisher = p }
}

// WithMetrics enables prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(u *AllocationUseCase) { u.metrics = m }
}

// WithConflictRetries bounds the whole-pass retries after a version
// conflict.
func WithConflictRetries(n uint) Option {
	return func(u *AllocationUseCase) { u.maxRetries = n }
}

// WithBackOff sets the wait policy between conflict retries.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(u *AllocationUseCase) { u.newBackOff = f }
}

// NewAllocationUseCase creates the controller. params are the defaults
// used for every campaign.
func NewAllocationUseCase(
	store port.AllocationStore,
	campaigns port.CampaignRepository,
	measures port.MeasureSource,
	params domain.AllocationParameters,
	logger *slog.Logger,
	opts ...Option,
) *AllocationUseCase {
	u := &AllocationUseCase{
		store:      store,
		campaigns:  campaigns,
		measures:   measures,
		params:     params,
		logger:     logger,
		now:        time.Now,
		maxRetries: 5,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 50 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
		locks: xsync.NewMap[int64, *sync.Mutex](),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *AllocationUseCase) lock(campaignID int64) *sync.Mutex {
	mu, _ := u.locks.LoadOrStore(campaignID, &sync.Mutex{})
	return mu
}

// RunPass runs one allocation pass. A lost version race re-reads every
// input and recomputes the whole pass, up to the configured number of
// retries.
func (u *AllocationUseCase) RunPass(ctx context.Context, req port.PassRequest) (*port.PassResult, error) {
	mu := u.lock(req.CampaignID)
	mu.Lock()
	defer mu.Unlock()

	log := u.logger.With(slog.Int64("campaign_id", req.CampaignID))
	started := time.Now()
	attempts := 0

	res, err := backoff.Retry(ctx, func() (*port.PassResult, error) {
		attempts++
		res, err := u.runOnce(ctx, req, log)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, domain.ErrPersistConflict) {
			u.metrics.Conflict()
			log.Warn("allocation record changed concurrently, recomputing",
				slog.Int("attempt", attempts), slog.Any("error", err))
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}, backoff.WithBackOff(u.newBackOff()), backoff.WithMaxTries(u.maxRetries+1))

	took := time.Since(started)
	if err != nil {
		u.metrics.PassFailed(domain.ErrorKind(err), took)
		log.Error("allocation pass failed", slog.Int("attempts", attempts), slog.Any("error", err))
		return nil, err
	}
	res.Attempts = attempts
	u.metrics.PassFinished(string(res.Status), took)
	return res, nil
}

func (u *AllocationUseCase) runOnce(ctx context.Context, req port.PassRequest, log *slog.Logger) (*port.PassResult, error) {
	now := u.now().UTC()
	params := u.params
	if err := params.Validate(); err != nil {
		return nil, err
	}

	campaign, err := u.campaigns.GetCampaign(ctx, req.CampaignID)
	if err != nil {
		return nil, upstream("load campaign", err)
	}
	if campaign == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrCampaignNotFound, req.CampaignID)
	}
	rec, err := u.store.Get(ctx, req.CampaignID)
	if err != nil {
		return nil, upstream("load allocation record", err)
	}

	result := &port.PassResult{CampaignID: req.CampaignID, Status: port.PassSkipped}
	var (
		expected    int64
		periodStart time.Time
	)
	if rec == nil {
		periodStart = later(campaign.StartDate, now)
	} else {
		expected = rec.Version
		periodStart = rec.ReallocationStartTime
		result.Mode = rec.Mode
		result.PeriodStart = rec.PeriodStart
		result.ReallocationStartTime = rec.ReallocationStartTime
		result.Version = rec.Version
		result.Output = rec.Output
	}
	periodStart = periodStart.UTC().Truncate(time.Microsecond)

	switch {
	case !periodStart.Before(campaign.EndDate):
		result.Status = port.PassTerminal
		result.Reason = "campaign ended"
		return result, nil
	case now.Before(periodStart):
		result.Reason = "next period starts at " + periodStart.Format(time.RFC3339)
		return result, nil
	case req.PeriodStart != nil && !req.PeriodStart.Equal(periodStart):
		result.Reason = "requested period " + req.PeriodStart.UTC().Format(time.RFC3339) +
			" is not due, expected " + periodStart.Format(time.RFC3339)
		return result, nil
	}

	mode := modeFor(rec, campaign.StartDate, periodStart, params)
	period := params.PeriodLength(mode)
	if left := campaign.EndDate.Sub(periodStart); left < period {
		period = left
	}

	inputs, err := u.assemble(ctx, campaign, rec, periodStart, period, params)
	if err != nil {
		return nil, err
	}

	out, err := allocation.Allocate(inputs, params, mode)
	if err != nil {
		if errors.Is(err, domain.ErrInvariantViolation) {
			log.Error("allocation invariant violated",
				slog.Any("error", err), slog.String("mode", string(mode)), slog.Any("inputs", inputs))
		}
		return nil, err
	}
	if len(out.Output.Results) == 0 {
		log.Info("no eligible allocation nodes, committing zero-spend output",
			slog.Any("reason", domain.ErrNoEligibleNodes), slog.Int("nodes", len(inputs.Nodes)))
	}

	next := periodStart.Add(period)
	output := out.Output
	saved, err := u.store.Put(ctx, domain.AllocationRecord{
		CampaignID:            campaign.ID,
		Mode:                  mode,
		PeriodStart:           periodStart,
		ReallocationStartTime: next,
		Output:                &output,
	}, domain.HistoryEntry{
		PeriodStart: periodStart,
		Mode:        mode,
		Inputs:      inputs,
		Output:      output,
	}, expected)
	if err != nil {
		return nil, upstream("persist allocation", err)
	}

	log.Info("allocation committed",
		slog.String("mode", string(mode)),
		slog.Time("period_start", periodStart),
		slog.Time("next", next),
		slog.Int("nodes", len(output.Results)),
		slog.String("media_budget", output.MediaBudget().String()),
		slog.String("spendable", out.Report.Spendable.String()),
		slog.Int64("version", saved.Version),
	)
	u.metrics.Committed(campaign.ID, len(output.Results), output.MediaBudget())
	u.publish(ctx, campaign.ID, output, log)

	return &port.PassResult{
		CampaignID:            campaign.ID,
		Status:                port.PassCompleted,
		Mode:                  mode,
		PeriodStart:           periodStart,
		ReallocationStartTime: next,
		Version:               saved.Version,
		Output:                &output,
	}, nil
}

// assemble builds the inputs of a pass from the campaign, its node catalog,
// the delivery since the previous period start and the last history entry.
func (u *AllocationUseCase) assemble(
	ctx context.Context,
	campaign *domain.Campaign,
	rec *domain.AllocationRecord,
	periodStart time.Time,
	period time.Duration,
	params domain.AllocationParameters,
) (domain.BudgetAllocationInputs, error) {
	nodes, err := u.campaigns.ListNodes(ctx, campaign.ID)
	if err != nil {
		return domain.BudgetAllocationInputs{}, upstream("list nodes", err)
	}

	var last *domain.HistoryEntry
	delivered := map[string]domain.NodeDelivery{}
	// backlog is delivery between the latest history entry and the
	// current record. It only counts towards the lifetime totals.
	backlog := map[string]domain.NodeDelivery{}
	if rec != nil {
		if last, err = u.store.LatestEntry(ctx, campaign.ID); err != nil {
			return domain.BudgetAllocationInputs{}, upstream("load history", err)
		}
		rows, err := u.campaigns.GetDelivery(ctx, campaign.ID, rec.PeriodStart, periodStart)
		if err != nil {
			return domain.BudgetAllocationInputs{}, upstream("load delivery", err)
		}
		for _, d := range rows {
			delivered[d.AllocationID] = d
		}
		if last != nil && last.PeriodStart.Before(rec.PeriodStart) {
			rows, err = u.campaigns.GetDelivery(ctx, campaign.ID, last.PeriodStart, rec.PeriodStart)
			if err != nil {
				return domain.BudgetAllocationInputs{}, upstream("load delivery", err)
			}
			for _, d := range rows {
				backlog[d.AllocationID] = d
			}
		}
	}

	lifetime := map[string]domain.PerNodeInput{}
	if last != nil {
		for _, n := range last.Inputs.Nodes {
			lifetime[n.AllocationID] = n
		}
	}

	inputs := make([]domain.PerNodeInput, 0, len(nodes))
	measureIDs := map[int64]struct{}{}
	for _, n := range nodes {
		in := domain.PerNodeInput{
			AllocationID:          n.AllocationID,
			MeasureSet:            n.MeasureSet,
			Valuation:             n.Valuation,
			EstimatedCostPerMille: n.EstimatedCostPerMille,
			PeriodSpend:           decimal.Zero,
			LifetimeSpend:         n.LifetimeSpend,
			LifetimeImpressions:   n.LifetimeImpressions,
			ParentAllocationID:    n.ParentID,
			LineageNeutral:        n.LineageNeutral,
		}
		if prev, ok := lifetime[n.AllocationID]; ok {
			in.LifetimeSpend = prev.LifetimeSpend
			in.LifetimeImpressions = prev.LifetimeImpressions
		}
		if d, ok := delivered[n.AllocationID]; ok {
			in.PeriodSpend = d.Spend
			in.PeriodImpressions = d.Impressions
			in.LifetimeSpend = in.LifetimeSpend.Add(d.Spend)
			in.LifetimeImpressions += d.Impressions
		}
		if d, ok := backlog[n.AllocationID]; ok {
			in.LifetimeSpend = in.LifetimeSpend.Add(d.Spend)
			in.LifetimeImpressions += d.Impressions
		}
		for _, m := range n.MeasureSet {
			measureIDs[m] = struct{}{}
		}
		inputs = append(inputs, in)
	}

	volumes, err := u.volumes(ctx, slices.Sorted(maps.Keys(measureIDs)), last)
	if err != nil {
		return domain.BudgetAllocationInputs{}, err
	}

	return domain.BudgetAllocationInputs{
		CampaignID:               campaign.ID,
		TotalBudget:              campaign.TotalBudget,
		RemainingBudget:          campaign.RemainingBudget,
		StartTime:                campaign.StartDate.UTC(),
		EndTime:                  campaign.EndDate.UTC(),
		PeriodStart:              periodStart,
		PeriodDuration:           domain.Duration(period),
		ReallocationStartTime:    periodStart,
		PerMilleFees:             params.PerMilleFees,
		Margin:                   params.Margin,
		HistoricalMeasureVolumes: volumes,
		Nodes:                    inputs,
	}, nil
}

// volumes resolves measure volumes from the measure source. Measures the
// source does not know keep the volume of the previous pass, or
// UnknownVolume.
func (u *AllocationUseCase) volumes(ctx context.Context, ids []int64, last *domain.HistoryEntry) ([]domain.HistoricalMeasureVolume, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	known := map[int64]int64{}
	if last != nil {
		for _, v := range last.Inputs.HistoricalMeasureVolumes {
			known[v.MeasureID] = v.Volume
		}
	}
	if u.measures != nil {
		measures, err := u.measures.Lookup(ctx, ids)
		if err != nil {
			return nil, upstream("lookup measures", err)
		}
		for _, m := range measures {
			known[m.ID] = m.EstimatedVolume
		}
	}

	out := make([]domain.HistoricalMeasureVolume, 0, len(ids))
	for _, id := range ids {
		v, ok := known[id]
		if !ok {
			v = domain.UnknownVolume
		}
		out = append(out, domain.HistoricalMeasureVolume{MeasureID: id, Volume: v})
	}
	return out, nil
}

func (u *AllocationUseCase) publish(ctx context.Context, campaignID int64, out domain.BudgetAllocationOutput, log *slog.Logger) {
	if u.publisher == nil {
		return
	}
	if err := u.publisher.Publish(ctx, campaignID, out); err != nil {
		u.metrics.PublishFailed()
		log.Error("publish allocation", slog.Any("error", err))
	}
}

// Latest returns the current allocation record, or nil when the campaign
// has none yet.
func (u *AllocationUseCase) Latest(ctx context.Context, campaignID int64) (*domain.AllocationRecord, error) {
	rec, err := u.store.Get(ctx, campaignID)
	if err != nil {
		return nil, upstream("load allocation record", err)
	}
	return rec, nil
}

// History returns committed passes with period start in [from, to).
func (u *AllocationUseCase) History(ctx context.Context, campaignID int64, from, to time.Time) ([]domain.HistoryEntry, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: history range start %s is not before end %s",
			domain.ErrInvalidParameters, from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	entries, err := u.store.History(ctx, campaignID, from, to)
	if err != nil {
		return nil, upstream("load history", err)
	}
	return entries, nil
}

// Simulate runs the engine on the given inputs. Without an explicit mode
// the mode follows from the elapsed campaign time at the period start.
func (u *AllocationUseCase) Simulate(_ context.Context, req port.SimulateRequest) (*port.SimulateResult, error) {
	params := u.params
	if req.Params != nil {
		params = *req.Params
	}
	mode := req.Mode
	if mode == "" {
		mode = modeFor(nil, req.Inputs.StartTime, req.Inputs.PeriodStart, params)
	}
	if mode != domain.ModeInitialAllocation && mode != domain.ModeSteadyState {
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidParameters, mode)
	}

	res, err := allocation.Allocate(req.Inputs, params, mode)
	if err != nil {
		return nil, err
	}
	dropped := make([]string, 0, len(res.Ranking.Dropped))
	for _, n := range res.Ranking.Dropped {
		dropped = append(dropped, n.AllocationID)
	}
	return &port.SimulateResult{
		Output:      res.Output,
		Spendable:   res.Report.Spendable,
		Reserve:     res.Report.Reserve,
		Allocated:   res.Report.Allocated,
		Unspent:     res.Report.Unspent,
		Ranked:      res.Report.Ranked,
		Dropped:     dropped,
		BelowFloor:  nonNil(res.Report.BelowFloor),
		Experiments: nonNil(res.Report.Experiments),
		Unavailable: nonNil(res.Unavailable),
	}, nil
}

// modeFor derives the lifecycle mode. Once a campaign has reached steady
// state it never returns to the initial phase.
func modeFor(rec *domain.AllocationRecord, start, periodStart time.Time, params domain.AllocationParameters) domain.Mode {
	if rec != nil && rec.Mode == domain.ModeSteadyState {
		return domain.ModeSteadyState
	}
	if periodStart.Sub(start) < params.InitialAllocationTotalPeriodDuration.Std() {
		return domain.ModeInitialAllocation
	}
	return domain.ModeSteadyState
}

// upstream marks collaborator failures as ErrUpstreamUnavailable unless
// they already carry a kind of their own.
func upstream(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrPersistConflict),
		errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, domain.ErrCampaignNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrUpstreamUnavailable, op, err)
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
