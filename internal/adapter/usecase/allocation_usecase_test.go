package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mesa-alloc/internal/core/domain"
	"mesa-alloc/internal/core/port"
	"mesa-alloc/internal/core/port/mocks"
)

var t0 = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

const campaignID int64 = 7

type fixture struct {
	store     *mocks.MockAllocationStore
	campaigns *mocks.MockCampaignRepository
	measures  *mocks.MockMeasureSource
	publisher *mocks.MockResultPublisher
	now       time.Time
	params    domain.AllocationParameters
}

func newFixture(t *testing.T, now time.Time) *fixture {
	params := domain.DefaultParameters()
	params.UnderSpendExperimentNodeCount = 0
	return &fixture{
		store:     mocks.NewMockAllocationStore(t),
		campaigns: mocks.NewMockCampaignRepository(t),
		measures:  mocks.NewMockMeasureSource(t),
		publisher: mocks.NewMockResultPublisher(t),
		now:       now,
		params:    params,
	}
}

func (f *fixture) useCase(opts ...Option) *AllocationUseCase {
	base := []Option{
		WithClock(func() time.Time { return f.now }),
		WithPublisher(f.publisher),
		WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	}
	return NewAllocationUseCase(f.store, f.campaigns, f.measures, f.params,
		slog.New(slog.NewTextHandler(io.Discard, nil)), append(base, opts...)...)
}

func testCampaign() *domain.Campaign {
	return &domain.Campaign{
		ID:              campaignID,
		Name:            "spring",
		StartDate:       t0,
		EndDate:         t0.Add(30 * 24 * time.Hour),
		TotalBudget:     decimal.NewFromInt(10000),
		RemainingBudget: decimal.NewFromInt(10000),
		Status:          domain.CampaignActive,
	}
}

func testNodes() []domain.AllocationNode {
	return []domain.AllocationNode{
		domain.NewAllocationNode(decimal.NewFromInt(100), decimal.NewFromInt(2), 1, 2),
		domain.NewAllocationNode(decimal.NewFromInt(50), decimal.NewFromInt(2), 3),
	}
}

func (f *fixture) expectCatalog(times int) {
	f.campaigns.EXPECT().GetCampaign(mock.Anything, campaignID).Return(testCampaign(), nil).Times(times)
	f.campaigns.EXPECT().ListNodes(mock.Anything, campaignID).Return(testNodes(), nil).Times(times)
	f.measures.EXPECT().Lookup(mock.Anything, []int64{1, 2, 3}).Return([]domain.Measure{
		{ID: 1, Name: "sports", EstimatedVolume: 1000},
		{ID: 2, Name: "news", EstimatedVolume: 400},
		{ID: 3, Name: "music", EstimatedVolume: 250},
	}, nil).Times(times)
}

func committed(version int64) func(context.Context, domain.AllocationRecord, domain.HistoryEntry, int64) (domain.AllocationRecord, error) {
	return func(_ context.Context, rec domain.AllocationRecord, _ domain.HistoryEntry, _ int64) (domain.AllocationRecord, error) {
		rec.Version = version
		return rec, nil
	}
}

func TestFirstPassStartsAtNow(t *testing.T) {
	now := t0.Add(time.Hour)
	f := newFixture(t, now)
	f.expectCatalog(1)
	f.store.EXPECT().Get(mock.Anything, campaignID).Return(nil, nil)

	var (
		gotRec   domain.AllocationRecord
		gotEntry domain.HistoryEntry
	)
	f.store.EXPECT().Put(mock.Anything, mock.Anything, mock.Anything, int64(0)).
		RunAndReturn(func(ctx context.Context, rec domain.AllocationRecord, e domain.HistoryEntry, v int64) (domain.AllocationRecord, error) {
			gotRec, gotEntry = rec, e
			return committed(1)(ctx, rec, e, v)
		})
	f.publisher.EXPECT().Publish(mock.Anything, campaignID, mock.Anything).Return(nil)

	res, err := f.useCase().RunPass(context.Background(), port.PassRequest{CampaignID: campaignID})
	require.NoError(t, err)

	assert.Equal(t, port.PassCompleted, res.Status)
	assert.Equal(t, domain.ModeInitialAllocation, res.Mode)
	assert.True(t, res.PeriodStart.Equal(now))
	assert.True(t, res.ReallocationStartTime.Equal(now.Add(4*time.Hour)))
	assert.Equal(t, int64(1), res.Version)
	assert.Equal(t, 1, res.Attempts)
	require.NotNil(t, res.Output)
	assert.NotEmpty(t, res.Output.Results)

	assert.True(t, gotRec.ReallocationStartTime.Equal(now.Add(4*time.Hour)))
	assert.Equal(t, domain.ModeInitialAllocation, gotEntry.Mode)
	assert.Equal(t, domain.Duration(4*time.Hour), gotEntry.Inputs.PeriodDuration)
	assert.Len(t, gotEntry.Inputs.Nodes, 2)
	assert.Equal(t, []domain.HistoricalMeasureVolume{
		{MeasureID: 1, Volume: 1000},
		{MeasureID: 2, Volume: 400},
		{MeasureID: 3, Volume: 250},
	}, gotEntry.Inputs.HistoricalMeasureVolumes)
}

func TestPassBeforeCampaignStartIsSkipped(t *testing.T) {
	f := newFixture(t, t0.Add(-time.Hour))
	f.campaigns.EXPECT().GetCampaign(mock.Anything, campaignID).Return(testCampaign(), nil)
	f.store.EXPECT().Get(mock.Anything, campaignID).Return(nil, nil)

	res, err := f.useCase().RunPass(context.Background(), port.PassRequest{CampaignID: campaignID})
	require.NoError(t, err)
	assert.Equal(t, port.PassSkipped, res.Status)
	assert.Nil(t, res.Output)
}

func TestPassBeforeBoundaryIsNoop(t *testing.T) {
	now := t0.Add(2 * time.Hour)
	f := newFixture(t, now)
	prev := &domain.AllocationRecord{
		CampaignID:            campaignID,
		Version:               3,
		Mode:                  domain.ModeInitialAllocation,
		PeriodStart:           t0,
		ReallocationStartTime: t0.Add(4 * time.Hour),
		Output:                &domain.BudgetAllocationOutput{LastModifiedDate: t0},
	}
	f.campaigns.EXPECT().GetCampaign(mock.Anything, campaignID).Return(testCampaign(), nil)
	f.store.EXPECT().Get(mock.Anything, campaignID).Return(prev, nil)

	res, err := f.useCase().RunPass(context.Background(), port.PassRequest{CampaignID: campaignID})
	require.NoError(t, err)
	assert.Equal(t, port.PassSkipped, res.Status)
	assert.Equal(t, int64(3), res.Version)
	assert.Same(t, prev.Output, res.Output)
}

func TestPassForOtherPeriodIsSkipped(t *testing.T) {
	f := newFixture(t, t0.Add(5*time.Hour))
	f.campaigns.EXPECT().GetCampaign(mock.Anything, campaignID).Return(testCampaign(), nil)
	f.store.EXPECT().Get(mock.Anything, campaignID).Return(&domain.AllocationRecord{
		CampaignID:            campaignID,
		Version:               1,
		Mode:                  domain.ModeInitialAllocation,
		PeriodStart:           t0,
		ReallocationStartTime: t0.Add(4 * time.Hour),
	}, nil)

	stale := t0
	res, err := f.useCase().RunPass(context.Background(), port.PassRequest{CampaignID: campaignID, PeriodStart: &stale})
	require.NoError(t, err)
	assert.Equal(t, port.PassSkipped, res.Status)
	assert.Contains(t, res.Reason, "not due")
}

func TestEndedCampaignIsTerminal(t *testing.T) {
	c := testCampaign()
	f := newFixture(t, c.EndDate.Add(time.Hour))
	f.campaigns.EXPECT().GetCampaign(mock.Anything, campaignID).Return(c, nil)
	f.store.EXPECT().Get(mock.Anything, campaignID).Return(&domain.AllocationRecord{
		CampaignID:            campaignID,
		Version:               40,
		Mode:                  domain.ModeSteadyState,
		PeriodStart:           c.EndDate.Add(-24 * time.Hour),
		ReallocationStartTime: c.EndDate,
	}, nil)

	res, err := f.useCase().RunPass(context.Background(), port.PassRequest{CampaignID: campaignID})
	require.NoError(t, err)
	assert.Equal(t, port.PassTerminal, res.Status)
	assert.Equal(t, int64(40), res.Version)
}

func TestModeTransition(t *testing.T) {
	tests := []struct {
		name       string
		prevMode   domain.Mode
		boundary   time.Duration
		wantMode   domain.Mode
		wantPeriod time.Duration
	}{
		{"still initial", domain.ModeInitialAllocation, 68 * time.Hour, domain.ModeInitialAllocation, 4 * time.Hour},
		{"initial phase over", domain.ModeInitialAllocation, 72 * time.Hour, domain.ModeSteadyState, 24 * time.Hour},
		{"steady never reverts", domain.ModeSteadyState, 8 * time.Hour, domain.ModeSteadyState, 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boundary := t0.Add(tt.boundary)
			f := newFixture(t, boundary.Add(time.Minute))
			f.expectCatalog(1)
			f.store.EXPECT().Get(mock.Anything, campaignID).Return(&domain.AllocationRecord{
				CampaignID:            campaignID,
				Version:               2,
				Mode:                  tt.prevMode,
				PeriodStart:           boundary.Add(-4 * time.Hour),
				ReallocationStartTime: boundary,
			}, nil)
			f.store.EXPECT().LatestEntry(mock.Anything, campaignID).Return(nil, nil)
			f.campaigns.EXPECT().GetDelivery(mock.Anything, campaignID, boundary.Add(-4*time.Hour), boundary).Return(nil, nil)
			f.store.EXPECT().Put(mock.Anything, mock.Anything, mock.Anything, int64(2)).RunAndReturn(committed(3))
			f.publisher.EXPECT().Publish(mock.Anything, campaignID, mock.Anything).Return(nil)

			res, err := f.useCase().RunPass(context.Background(), port.PassRequest{CampaignID: campaignID, PeriodStart: &boundary})
			require.NoError(t, err)
			assert.Equal(t, port.PassCompleted, res.Status)
			assert.Equal(t, tt.wantMode, res.Mode)
			assert.True(t, res.PeriodStart.Equal(boundary))
			assert.True(t, res.ReallocationStartTime.Equal(boundary.Add(tt.wantPeriod)))
		})
	}
}

func TestLastPeriodIsClippedToCampaignEnd(t *testing.T) {
	c := testCampaign()
	boundary := c.EndDate.Add(-6 * time.Hour)
	f := newFixture(t, boundary)
	f.expectCatalog(1)
	f.store.EXPECT().Get(mock.Anything, campaignID).Return(&domain.AllocationRecord{
		CampaignID:            campaignID,
		Version:               30,
		Mode:                  domain.ModeSteadyState,
		PeriodStart:           boundary.Add(-24 * time.Hour),
		ReallocationStartTime: boundary,
	}, nil)
	f.store.EXPECT().LatestEntry(mock.Anything, campaignID).Return(nil, nil)
	f.campaigns.EXPECT().GetDelivery(mock.Anything, campaignID, mock.Anything, mock.Anything).Return(nil, nil)
	f.store.EXPECT().Put(mock.Anything, mock.Anything, mock.Anything, int64(30)).RunAndReturn(committed(31))
	f.publisher.EXPECT().Publish(mock.Anything, campaignID, mock.Anything).Return(nil)

	res, err := f.useCase().RunPass(context.Background(), port.PassRequest{CampaignID: campaignID})
	require.NoError(t, err)
	assert.True(t, res.ReallocationStartTime.Equal(c.EndDate))
}

func TestLifetimeCarriesForward(t *testing.T) {
	boundary := t0.Add(4 * time.Hour)
	f := newFixture(t, boundary)
	nodes := testNodes()
	a, b := nodes[0].AllocationID, nodes[1].AllocationID

	f.campaigns.EXPECT().GetCampaign(mock.Anything, campaignID).Return(testCampaign(), nil)
	f.campaigns.EXPECT().ListNodes(mock.Anything, campaignID).Return(nodes, nil)
	f.store.EXPECT().Get(mock.Anything, campaignID).Return(&domain.AllocationRecord{
		CampaignID:            campaignID,
		Version:               1,
		Mode:                  domain.ModeInitialAllocation,
		PeriodStart:           t0,
		ReallocationStartTime: boundary,
	}, nil)
	f.store.EXPECT().LatestEntry(mock.Anything, campaignID).Return(&domain.HistoryEntry{
		PeriodStart: t0,
		Mode:        domain.ModeInitialAllocation,
		Inputs: domain.BudgetAllocationInputs{
			Nodes: []domain.PerNodeInput{
				{AllocationID: a, LifetimeSpend: decimal.NewFromInt(10), LifetimeImpressions: 1000},
			},
			HistoricalMeasureVolumes: []domain.HistoricalMeasureVolume{{MeasureID: 3, Volume: 500}},
		},
	}, nil)
	f.campaigns.EXPECT().GetDelivery(mock.Anything, campaignID, t0, boundary).Return([]domain.NodeDelivery{
		{AllocationID: a, Impressions: 300, Spend: decimal.RequireFromString("2.5")},
		{AllocationID: b, Impressions: 40, Spend: decimal.RequireFromString("0.4")},
	}, nil)
	f.measures.EXPECT().Lookup(mock.Anything, []int64{1, 2, 3}).Return([]domain.Measure{
		{ID: 1, Name: "sports", EstimatedVolume: 100},
	}, nil)

	var entry domain.HistoryEntry
	f.store.EXPECT().Put(mock.Anything, mock.Anything, mock.Anything, int64(1)).
		RunAndReturn(func(ctx context.Context, rec domain.AllocationRecord, e domain.HistoryEntry, v int64) (domain.AllocationRecord, error) {
			entry = e
			return committed(2)(ctx, rec, e, v)
		})
	f.publisher.EXPECT().Publish(mock.Anything, campaignID, mock.Anything).Return(nil)

	_, err := f.useCase().RunPass(context.Background(), port.PassRequest{CampaignID: campaignID})
	require.NoError(t, err)

	byID := map[string]domain.PerNodeInput{}
	for _, n := range entry.Inputs.Nodes {
		byID[n.AllocationID] = n
	}
	assert.Equal(t, "12.5", byID[a].LifetimeSpend.String())
	assert.Equal(t, int64(1300), byID[a].LifetimeImpressions)
	assert.Equal(t, "2.5", byID[a].PeriodSpend.String())
	assert.Equal(t, "0.4", byID[b].LifetimeSpend.String())
	assert.Equal(t, int64(40), byID[b].PeriodImpressions)

	assert.Equal(t, []domain.HistoricalMeasureVolume{
		{MeasureID: 1, Volume: 100},
		{MeasureID: 2, Volume: domain.UnknownVolume},
		{MeasureID: 3, Volume: 500},
	}, entry.Inputs.HistoricalMeasureVolumes)
}

func TestLifetimeIncludesDeliverySinceLatestEntry(t *testing.T) {
	p1 := t0
	p2 := t0.Add(4 * time.Hour)
	p3 := t0.Add(8 * time.Hour)
	f := newFixture(t, p3)
	nodes := testNodes()
	a := nodes[0].AllocationID

	f.campaigns.EXPECT().GetCampaign(mock.Anything, campaignID).Return(testCampaign(), nil)
	f.campaigns.EXPECT().ListNodes(mock.Anything, campaignID).Return(nodes, nil)
	f.store.EXPECT().Get(mock.Anything, campaignID).Return(&domain.AllocationRecord{
		CampaignID:            campaignID,
		Version:               2,
		Mode:                  domain.ModeInitialAllocation,
		PeriodStart:           p2,
		ReallocationStartTime: p3,
	}, nil)
	// the newest history entry is one period behind the record
	f.store.EXPECT().LatestEntry(mock.Anything, campaignID).Return(&domain.HistoryEntry{
		PeriodStart: p1,
		Mode:        domain.ModeInitialAllocation,
		Inputs: domain.BudgetAllocationInputs{
			Nodes: []domain.PerNodeInput{
				{AllocationID: a, LifetimeSpend: decimal.NewFromInt(10), LifetimeImpressions: 1000},
			},
		},
	}, nil)
	f.campaigns.EXPECT().GetDelivery(mock.Anything, campaignID, p2, p3).Return([]domain.NodeDelivery{
		{AllocationID: a, Impressions: 300, Spend: decimal.RequireFromString("2.5")},
	}, nil)
	f.campaigns.EXPECT().GetDelivery(mock.Anything, campaignID, p1, p2).Return([]domain.NodeDelivery{
		{AllocationID: a, Impressions: 200, Spend: decimal.RequireFromString("1.5")},
	}, nil)
	f.measures.EXPECT().Lookup(mock.Anything, []int64{1, 2, 3}).Return(nil, nil)

	var entry domain.HistoryEntry
	f.store.EXPECT().Put(mock.Anything, mock.Anything, mock.Anything, int64(2)).
		RunAndReturn(func(ctx context.Context, rec domain.AllocationRecord, e domain.HistoryEntry, v int64) (domain.AllocationRecord, error) {
			entry = e
			return committed(3)(ctx, rec, e, v)
		})
	f.publisher.EXPECT().Publish(mock.Anything, campaignID, mock.Anything).Return(nil)

	_, err := f.useCase().RunPass(context.Background(), port.PassRequest{CampaignID: campaignID})
	require.NoError(t, err)

	var got domain.PerNodeInput
	for _, n := range entry.Inputs.Nodes {
		if n.AllocationID == a {
			got = n
		}
	}
	assert.Equal(t, "14", got.LifetimeSpend.String())
	assert.Equal(t, int64(1500), got.LifetimeImpressions)
	// prior-period counters only cover the record's period
	assert.Equal(t, "2.5", got.PeriodSpend.String())
	assert.Equal(t, int64(300), got.PeriodImpressions)
}

func TestConflictRecomputesWithFreshReads(t *testing.T) {
	now := t0.Add(time.Hour)
	f := newFixture(t, now)
	f.expectCatalog(2)
	f.store.EXPECT().Get(mock.Anything, campaignID).Return(nil, nil).Times(2)
	f.store.EXPECT().Put(mock.Anything, mock.Anything, mock.Anything, int64(0)).
		Return(domain.AllocationRecord{}, domain.ErrPersistConflict).Once()
	f.store.EXPECT().Put(mock.Anything, mock.Anything, mock.Anything, int64(0)).RunAndReturn(committed(1)).Once()
	f.publisher.EXPECT().Publish(mock.Anything, campaignID, mock.Anything).Return(nil).Once()

	res, err := f.useCase().RunPass(context.Background(), port.PassRequest{CampaignID: campaignID})
	require.NoError(t, err)
	assert.Equal(t, port.PassCompleted, res.Status)
	assert.Equal(t, 2, res.Attempts)
}

func TestConflictRetriesAreBounded(t *testing.T) {
	f := newFixture(t, t0.Add(time.Hour))
	f.expectCatalog(2)
	f.store.EXPECT().Get(mock.Anything, campaignID).Return(nil, nil).Times(2)
	f.store.EXPECT().Put(mock.Anything, mock.Anything, mock.Anything, int64(0)).
		Return(domain.AllocationRecord{}, domain.ErrPersistConflict).Times(2)

	_, err := f.useCase(WithConflictRetries(1)).RunPass(context.Background(), port.PassRequest{CampaignID: campaignID})
	require.ErrorIs(t, err, domain.ErrPersistConflict)
}

func TestInvalidParametersAreNotRetried(t *testing.T) {
	f := newFixture(t, t0.Add(time.Hour))
	f.params.Margin = decimal.Zero

	_, err := f.useCase().RunPass(context.Background(), port.PassRequest{CampaignID: campaignID})
	require.ErrorIs(t, err, domain.ErrInvalidParameters)
}

func TestCampaignNotFound(t *testing.T) {
	f := newFixture(t, t0)
	f.campaigns.EXPECT().GetCampaign(mock.Anything, campaignID).
		Return(nil, domain.ErrCampaignNotFound)

	_, err := f.useCase().RunPass(context.Background(), port.PassRequest{CampaignID: campaignID})
	require.ErrorIs(t, err, domain.ErrCampaignNotFound)
	assert.NotErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestStoreFailureIsUpstream(t *testing.T) {
	f := newFixture(t, t0)
	f.campaigns.EXPECT().GetCampaign(mock.Anything, campaignID).Return(testCampaign(), nil)
	f.store.EXPECT().Get(mock.Anything, campaignID).Return(nil, errors.New("connection reset"))

	_, err := f.useCase().RunPass(context.Background(), port.PassRequest{CampaignID: campaignID})
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.ErrorContains(t, err, "connection reset")
}

func TestPublishFailureDoesNotFailPass(t *testing.T) {
	f := newFixture(t, t0.Add(time.Hour))
	f.expectCatalog(1)
	f.store.EXPECT().Get(mock.Anything, campaignID).Return(nil, nil)
	f.store.EXPECT().Put(mock.Anything, mock.Anything, mock.Anything, int64(0)).RunAndReturn(committed(1))
	f.publisher.EXPECT().Publish(mock.Anything, campaignID, mock.Anything).Return(errors.New("no responders"))

	res, err := f.useCase().RunPass(context.Background(), port.PassRequest{CampaignID: campaignID})
	require.NoError(t, err)
	assert.Equal(t, port.PassCompleted, res.Status)
}

// TestConcurrentPassesCommitOnce triggers the same campaign from many
// goroutines; only the first pass commits and the rest see the boundary
// moved forward.
func TestConcurrentPassesCommitOnce(t *testing.T) {
	f := newFixture(t, t0.Add(time.Hour))
	f.campaigns.EXPECT().GetCampaign(mock.Anything, campaignID).Return(testCampaign(), nil)
	f.campaigns.EXPECT().ListNodes(mock.Anything, campaignID).Return(testNodes(), nil).Once()
	f.measures.EXPECT().Lookup(mock.Anything, mock.Anything).Return(nil, nil).Once()
	f.publisher.EXPECT().Publish(mock.Anything, campaignID, mock.Anything).Return(nil).Once()

	var (
		mu      sync.Mutex
		current *domain.AllocationRecord
	)
	f.store.EXPECT().Get(mock.Anything, campaignID).RunAndReturn(func(context.Context, int64) (*domain.AllocationRecord, error) {
		mu.Lock()
		defer mu.Unlock()
		return current, nil
	})
	f.store.EXPECT().Put(mock.Anything, mock.Anything, mock.Anything, int64(0)).
		RunAndReturn(func(_ context.Context, rec domain.AllocationRecord, _ domain.HistoryEntry, _ int64) (domain.AllocationRecord, error) {
			mu.Lock()
			defer mu.Unlock()
			rec.Version = 1
			current = &rec
			return rec, nil
		}).Once()

	uc := f.useCase()
	var (
		wg       sync.WaitGroup
		statusMu sync.Mutex
		statuses = map[port.PassStatus]int{}
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := uc.RunPass(context.Background(), port.PassRequest{CampaignID: campaignID})
			if !assert.NoError(t, err) {
				return
			}
			statusMu.Lock()
			statuses[res.Status]++
			statusMu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, statuses[port.PassCompleted])
	assert.Equal(t, 7, statuses[port.PassSkipped])
}

func TestHistoryRejectsEmptyRange(t *testing.T) {
	f := newFixture(t, t0)
	_, err := f.useCase().History(context.Background(), campaignID, t0, t0)
	require.ErrorIs(t, err, domain.ErrInvalidParameters)
}

func TestHistoryReadsStore(t *testing.T) {
	f := newFixture(t, t0)
	entries := []domain.HistoryEntry{{PeriodStart: t0, Mode: domain.ModeInitialAllocation}}
	f.store.EXPECT().History(mock.Anything, campaignID, t0, t0.Add(time.Hour)).Return(entries, nil)

	got, err := f.useCase().History(context.Background(), campaignID, t0, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestSimulateDerivesMode(t *testing.T) {
	f := newFixture(t, t0)
	in := domain.BudgetAllocationInputs{
		CampaignID:      campaignID,
		TotalBudget:     decimal.NewFromInt(1000),
		RemainingBudget: decimal.NewFromInt(1000),
		StartTime:       t0,
		EndTime:         t0.Add(24 * time.Hour),
		PeriodStart:     t0,
		PeriodDuration:  domain.Duration(24 * time.Hour),
		Nodes: []domain.PerNodeInput{
			{MeasureSet: domain.MeasureSet{1}, Valuation: decimal.NewFromInt(3), EstimatedCostPerMille: decimal.NewFromInt(2)},
			{MeasureSet: domain.MeasureSet{2}, Valuation: decimal.NewFromInt(1), EstimatedCostPerMille: decimal.NewFromInt(2)},
		},
	}

	res, err := f.useCase().Simulate(context.Background(), port.SimulateRequest{Inputs: in})
	require.NoError(t, err)
	assert.Len(t, res.Output.Results, 2)
	assert.Equal(t, 2, res.Ranked)
	assert.NotNil(t, res.Dropped)
	assert.NotNil(t, res.Unavailable)
	assert.True(t, res.Allocated.LessThanOrEqual(res.Spendable))

	_, err = f.useCase().Simulate(context.Background(), port.SimulateRequest{Inputs: in, Mode: "burst"})
	require.ErrorIs(t, err, domain.ErrInvalidParameters)
}
