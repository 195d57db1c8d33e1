package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netalloc/pkg/domain"
)

func runAllocator(t *testing.T, topo *domain.Topology, demands []domain.Demand, opts *Options) (*Allocator, *SearchResult) {
	t.Helper()
	a, err := New(topo, demands, opts)
	require.NoError(t, err)
	res, err := a.Run(context.Background())
	require.NoError(t, err)
	return a, res
}

func TestRun_SingleDemandOnLine(t *testing.T) {
	topo := lineTopology(t)
	a, res := runAllocator(t, topo, []domain.Demand{{Source: 0, Destination: 2, Bandwidth: 5}}, nil)

	require.True(t, res.Success)
	assert.Equal(t, []int{0}, res.Allocated)
	assert.Empty(t, res.Rejected)
	assert.Equal(t, 1.0, res.AcceptanceRatio)
	require.Len(t, res.Details, 1)

	d := res.Details[0]
	assert.Equal(t, domain.Path{0, 1, 2}, d.Path)
	assert.Equal(t, 2, d.Hops)
	assert.Equal(t, 10.0, d.Cost)
	assert.Equal(t, d.Cost, d.Revenue)
	assert.Equal(t, int64(2), res.TotalCombinations)
	assert.Equal(t, int64(2), res.ValidCombinations)

	st := a.Status()
	assert.InDelta(t, 0.5, st.Utilization, 1e-9)
	assert.Equal(t, 10.0, st.RemainingCapacity)
}

func TestRun_DemandExceedsCapacity(t *testing.T) {
	topo := lineTopology(t)
	a, res := runAllocator(t, topo, []domain.Demand{{Source: 0, Destination: 2, Bandwidth: 15}}, nil)

	require.True(t, res.Success, "search succeeds with the empty scenario")
	assert.Equal(t, 0.0, res.AcceptanceRatio)
	assert.Empty(t, res.Allocated)
	assert.Equal(t, []int{0}, res.Rejected)
	assert.Equal(t, int64(2), res.TotalCombinations)
	assert.Equal(t, int64(1), res.ValidCombinations)
	assert.Equal(t, 0.0, a.Status().Utilization)
}

func TestRun_DisconnectedTopology(t *testing.T) {
	topo, err := domain.NewTopology([][]float64{
		{0, 5, 0},
		{5, 0, 0},
		{0, 0, 0},
	})
	require.NoError(t, err)
	assert.False(t, topo.Connected())

	t.Run("sole unreachable demand fails", func(t *testing.T) {
		a, res := runAllocator(t, topo, []domain.Demand{{Source: 0, Destination: 2, Bandwidth: 1}}, nil)

		assert.False(t, res.Success)
		assert.Equal(t, MsgNoReachableDemand, res.Message)
		assert.Equal(t, []int{0}, res.Rejected)
		assert.Equal(t, []int{0}, res.Unreachable)
		assert.False(t, a.Status().Connected)
	})

	t.Run("unreachable demand beside a reachable one", func(t *testing.T) {
		_, res := runAllocator(t, topo, []domain.Demand{
			{Source: 0, Destination: 2, Bandwidth: 1},
			{Source: 0, Destination: 1, Bandwidth: 1},
		}, nil)

		require.True(t, res.Success)
		assert.Equal(t, []int{1}, res.Allocated)
		assert.Equal(t, []int{0}, res.Rejected)
		assert.Equal(t, []int{0}, res.Unreachable)
		assert.Equal(t, 0.5, res.AcceptanceRatio)
	})

	t.Run("out of range endpoints are unreachable", func(t *testing.T) {
		_, res := runAllocator(t, topo, []domain.Demand{
			{Source: 0, Destination: 9, Bandwidth: 1},
			{Source: 1, Destination: 0, Bandwidth: 1},
			{Source: -1, Destination: 1, Bandwidth: 1},
		}, nil)

		require.True(t, res.Success)
		assert.Equal(t, []int{0, 2}, res.Unreachable)
		assert.Equal(t, []int{0, 2}, res.Rejected)
		assert.Equal(t, []int{1}, res.Allocated)
	})
}

func TestRun_CompetingDemands(t *testing.T) {
	topo, err := domain.NewTopology([][]float64{
		{0, 10},
		{10, 0},
	})
	require.NoError(t, err)

	_, res := runAllocator(t, topo, []domain.Demand{
		{Source: 0, Destination: 1, Bandwidth: 6},
		{Source: 0, Destination: 1, Bandwidth: 6},
	}, nil)

	require.True(t, res.Success)
	assert.Equal(t, 0.5, res.AcceptanceRatio)
	assert.Len(t, res.Allocated, 1)
	assert.Len(t, res.Rejected, 1)
	assert.Equal(t, int64(4), res.TotalCombinations)
	assert.Equal(t, int64(3), res.ValidCombinations)
	// ties keep the earliest scenario of the product: (REJECT, route)
	assert.Equal(t, []int{1}, res.Allocated)
}

func TestRun_ExampleNetwork(t *testing.T) {
	topo := exampleTopology(t)
	a, res := runAllocator(t, topo, exampleDemands(), nil)

	require.True(t, res.Success)
	assert.Equal(t, []int{0, 1}, res.Allocated)
	assert.Equal(t, 1.0, res.AcceptanceRatio)
	assert.Equal(t, 1.0, res.RevenueCostRatio)
	assert.Equal(t, 36.0, res.TotalCost)
	assert.Equal(t, int64(9), res.TotalCombinations)
	assert.Equal(t, int64(5), res.ValidCombinations)

	require.Len(t, res.Details, 2)
	assert.Equal(t, domain.Path{0, 1, 2, 4}, res.Details[0].Path)
	assert.Equal(t, domain.Path{0, 1, 3, 4}, res.Details[1].Path)

	st := a.Status()
	assert.Equal(t, 86.0, st.OriginalCapacity)
	assert.InDelta(t, 14.0, st.RemainingCapacity, 1e-9)
	assert.InDelta(t, 72.0/86.0, st.Utilization, 1e-9)
	assert.Equal(t, 12.0, st.TotalDemandBandwidth)
	assert.Equal(t, 5, st.TotalLinks)
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	topo := exampleTopology(t)
	demands := []domain.Demand{
		{Source: 0, Destination: 4, Bandwidth: 8},
		{Source: 0, Destination: 4, Bandwidth: 4},
		{Source: 4, Destination: 0, Bandwidth: 3},
		{Source: 1, Destination: 4, Bandwidth: 2},
		{Source: 2, Destination: 3, Bandwidth: 5},
	}

	seqAlloc, seq := runAllocator(t, topo, demands, DefaultOptions())

	for _, workers := range []int{2, 3, 8} {
		parAlloc, par := runAllocator(t, topo, demands, DefaultOptions().WithWorkers(workers))

		assert.Equal(t, seq.Allocated, par.Allocated, "workers=%d", workers)
		assert.Equal(t, seq.Details, par.Details, "workers=%d", workers)
		assert.Equal(t, seq.TotalCombinations, par.TotalCombinations)
		assert.Equal(t, seq.ValidCombinations, par.ValidCombinations)
		assert.True(t, seqAlloc.live.Equal(parAlloc.live))
	}
}

func TestRun_MaxScenarios(t *testing.T) {
	topo := exampleTopology(t)
	a, res := runAllocator(t, topo, exampleDemands(), DefaultOptions().WithMaxScenarios(5))

	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "exceeds the limit of 5")
	assert.True(t, res.LimitExceeded)
	assert.Equal(t, []int{0, 1}, res.Rejected)
	assert.Equal(t, 0.0, a.Status().Utilization)

	_, res = runAllocator(t, topo, exampleDemands(), DefaultOptions().WithMaxScenarios(9))
	assert.True(t, res.Success)
	assert.False(t, res.LimitExceeded)
}

func TestRun_Canceled(t *testing.T) {
	topo := exampleTopology(t)
	a, err := New(topo, exampleDemands(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		a.opts.Workers = workers
		res, err := a.Run(ctx)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, 0.0, a.Status().Utilization)
}

func TestRun_FailureAfterCommitKeepsLiveMatrix(t *testing.T) {
	topo := exampleTopology(t)
	a, first := runAllocator(t, topo, exampleDemands(), nil)
	require.True(t, first.Success)
	utilization := a.Status().Utilization

	// link 0-1 is fully reserved now, so node 0 reaches nothing
	second, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, second.Success)
	assert.Equal(t, MsgNoReachableDemand, second.Message)
	st := a.Status()
	assert.Equal(t, 0, st.AllocatedDemands)
	assert.Equal(t, 2, st.RejectedDemands)
	assert.InDelta(t, utilization, st.Utilization, 1e-12)
}

func TestSearch_DoesNotModifyBase(t *testing.T) {
	topo := exampleTopology(t)
	base := topo.Original()

	out, err := Search(context.Background(), topo, base, exampleDemands(), nil)
	require.NoError(t, err)
	require.NotNil(t, out.Matrix)

	assert.True(t, base.Equal(topo.Original()))
	assert.False(t, out.Matrix.Equal(base))
}

func TestSearch_NilTopology(t *testing.T) {
	_, err := Search(context.Background(), nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNilTopology)
}

func TestRun_Invariants(t *testing.T) {
	topo := exampleTopology(t)
	sets := [][]domain.Demand{
		{{Source: 0, Destination: 4, Bandwidth: 1}},
		{{Source: 0, Destination: 4, Bandwidth: 20}},
		exampleDemands(),
		{
			{Source: 0, Destination: 2, Bandwidth: 6},
			{Source: 3, Destination: 2, Bandwidth: 6},
			{Source: 4, Destination: 1, Bandwidth: 6},
		},
	}

	for _, demands := range sets {
		_, res := runAllocator(t, topo, demands, nil)
		require.True(t, res.Success)
		assert.GreaterOrEqual(t, res.AcceptanceRatio, 0.0)
		assert.LessOrEqual(t, res.AcceptanceRatio, 1.0)
		assert.Equal(t, len(demands), len(res.Allocated)+len(res.Rejected))
	}
}

func TestRun_MonotoneUnderScaling(t *testing.T) {
	base := exampleTopology(t)
	demands := []domain.Demand{
		{Source: 0, Destination: 4, Bandwidth: 9},
		{Source: 0, Destination: 4, Bandwidth: 7},
		{Source: 1, Destination: 4, Bandwidth: 5},
	}

	_, orig := runAllocator(t, base, demands, nil)
	for _, factor := range []float64{1, 1.5, 2, 4} {
		_, scaled := runAllocator(t, base.Scaled(factor), demands, nil)
		assert.GreaterOrEqual(t, scaled.AcceptanceRatio, orig.AcceptanceRatio, "factor %v", factor)
	}

	_, line := runAllocator(t, lineTopology(t), []domain.Demand{{Source: 0, Destination: 2, Bandwidth: 15}}, nil)
	_, lineScaled := runAllocator(t, lineTopology(t).Scaled(2), []domain.Demand{{Source: 0, Destination: 2, Bandwidth: 15}}, nil)
	assert.Equal(t, 0.0, line.AcceptanceRatio)
	assert.Equal(t, 1.0, lineScaled.AcceptanceRatio)
}
