package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netalloc/pkg/apperror"
	"netalloc/pkg/domain"
)

func TestNew_Validation(t *testing.T) {
	topo := lineTopology(t)

	t.Run("nil topology", func(t *testing.T) {
		_, err := New(nil, nil, nil)
		assert.ErrorIs(t, err, ErrNilTopology)
	})

	t.Run("non-positive bandwidth", func(t *testing.T) {
		_, err := New(topo, []domain.Demand{{Source: 0, Destination: 2, Bandwidth: 0}}, nil)
		assert.True(t, apperror.Is(err, apperror.CodeInvalidDemand))
	})

	t.Run("unknown coupling", func(t *testing.T) {
		_, err := New(topo, nil, &Options{Coupling: "mirror"})
		assert.ErrorIs(t, err, ErrUnknownCoupling)
	})

	t.Run("demands are copied", func(t *testing.T) {
		demands := []domain.Demand{{Source: 0, Destination: 2, Bandwidth: 1}}
		a, err := New(topo, demands, nil)
		require.NoError(t, err)

		demands[0].Bandwidth = 99
		assert.Equal(t, 1.0, a.demands[0].Bandwidth)
	})
}

func TestStatus_Fresh(t *testing.T) {
	a, err := New(exampleTopology(t), exampleDemands(), nil)
	require.NoError(t, err)

	st := a.Status()

	assert.Equal(t, 5, st.Nodes)
	assert.True(t, st.Connected)
	assert.Equal(t, 0.0, st.Utilization)
	assert.Equal(t, st.OriginalCapacity, st.RemainingCapacity)
	assert.Equal(t, 2, st.TotalDemands)
	assert.Equal(t, 0, st.AllocatedDemands)
	assert.Equal(t, 0.0, st.AcceptanceRatio)
	assert.Equal(t, 0.0, st.RevenueCostRatio)
}

func TestStatus_Idempotent(t *testing.T) {
	a, _ := runAllocator(t, exampleTopology(t), exampleDemands(), nil)

	assert.Equal(t, a.Status(), a.Status())
}

func TestReset(t *testing.T) {
	topo := exampleTopology(t)
	a, res := runAllocator(t, topo, exampleDemands(), nil)
	require.True(t, res.Success)
	require.Greater(t, a.Status().Utilization, 0.0)

	a.Reset()
	st := a.Status()

	assert.Equal(t, topo.TotalCapacity(), st.RemainingCapacity)
	assert.Equal(t, 0.0, st.Utilization)
	assert.Equal(t, 0, st.AllocatedDemands)
	assert.Equal(t, 0, st.RejectedDemands)
	assert.Equal(t, 0.0, st.TotalRevenue)
	assert.Equal(t, 0.0, st.TotalCost)
	assert.True(t, a.live.Equal(topo.Original()))

	a.Reset()
	assert.Equal(t, st, a.Status(), "reset is idempotent")
}

func TestReset_ThenRunReproducesResult(t *testing.T) {
	a, first := runAllocator(t, exampleTopology(t), exampleDemands(), nil)

	a.Reset()
	second, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Allocated, second.Allocated)
	assert.Equal(t, first.Details, second.Details)
}

func TestStatus_AfterRun(t *testing.T) {
	a, res := runAllocator(t, exampleTopology(t), exampleDemands(), nil)

	st := a.Status()
	assert.Equal(t, len(res.Allocated), st.AllocatedDemands)
	assert.Equal(t, len(res.Rejected), st.RejectedDemands)
	assert.Equal(t, res.AcceptanceRatio, st.AcceptanceRatio)
	assert.Equal(t, res.TotalRevenue, st.TotalRevenue)
	assert.Equal(t, res.TotalCost, st.TotalCost)
	assert.Equal(t, 1.0, st.RevenueCostRatio)
}

func TestAllocator_EnumeratePathsUsesLiveMatrix(t *testing.T) {
	a, err := New(exampleTopology(t), exampleDemands(), nil)
	require.NoError(t, err)

	assert.Len(t, a.EnumeratePaths(0, 4, 0), 2)

	_, err = a.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, a.EnumeratePaths(0, 4, 0), "link 0-1 is exhausted after commit")
	assert.Len(t, a.EnumeratePaths(1, 3, 1), 1)
}

func TestAllocator_Bottlenecks(t *testing.T) {
	a, _ := runAllocator(t, exampleTopology(t), exampleDemands(), nil)

	bottlenecks := a.Bottlenecks(domain.DefaultBottleneckThreshold)

	// 0-1 and 2-4 are drained in both directions
	var links [][2]int
	for _, b := range bottlenecks {
		links = append(links, [2]int{b.From, b.To})
	}
	assert.ElementsMatch(t, [][2]int{{0, 1}, {1, 0}, {2, 4}, {4, 2}}, links)
}

func TestAllocator_ConcurrentAccess(t *testing.T) {
	a, err := New(exampleTopology(t), exampleDemands(), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 3 {
			case 0:
				_, _ = a.Run(context.Background())
			case 1:
				a.Reset()
			default:
				_ = a.Status()
			}
		}(i)
	}
	wg.Wait()

	st := a.Status()
	assert.Equal(t, st.TotalDemands, 2)
}

func TestReplay_MatchesRun(t *testing.T) {
	ran, res := runAllocator(t, exampleTopology(t), exampleDemands(), nil)

	fresh, err := New(exampleTopology(t), exampleDemands(), nil)
	require.NoError(t, err)
	require.NoError(t, fresh.Replay(res))

	assert.Equal(t, ran.Status(), fresh.Status())
	assert.Equal(t, ran.live.Rows(), fresh.live.Rows())
}

func TestReplay_Mismatch(t *testing.T) {
	_, res := runAllocator(t, exampleTopology(t), exampleDemands(), nil)

	t.Run("nil result", func(t *testing.T) {
		a, err := New(exampleTopology(t), exampleDemands(), nil)
		require.NoError(t, err)
		assert.ErrorIs(t, a.Replay(nil), ErrReplayMismatch)
	})

	t.Run("different demands", func(t *testing.T) {
		demands := []domain.Demand{{Source: 0, Destination: 3, Bandwidth: 1}, {Source: 0, Destination: 4, Bandwidth: 1}}
		a, err := New(exampleTopology(t), demands, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, a.Replay(res), ErrReplayMismatch)
		assert.Equal(t, 0, a.Status().AllocatedDemands)
	})

	t.Run("live capacity already used", func(t *testing.T) {
		a, err := New(exampleTopology(t), exampleDemands(), nil)
		require.NoError(t, err)
		require.NoError(t, a.Replay(res))
		before := a.live.Rows()

		assert.ErrorIs(t, a.Replay(res), ErrReplayMismatch)
		assert.Equal(t, before, a.live.Rows())
	})
}

func TestReplay_FailedResult(t *testing.T) {
	a, err := New(exampleTopology(t), exampleDemands(), nil)
	require.NoError(t, err)

	require.NoError(t, a.Replay(&SearchResult{Success: false, Rejected: []int{0, 1}}))
	st := a.Status()
	assert.Equal(t, 2, st.RejectedDemands)
	assert.Equal(t, 0.0, st.Utilization)
}
