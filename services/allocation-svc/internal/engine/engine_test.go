package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netalloc/pkg/domain"
)

// lineTopology: 0 -> 1 -> 2, both links capacity 10, directed.
func lineTopology(t *testing.T) *domain.Topology {
	t.Helper()
	topo, err := domain.NewTopology([][]float64{
		{0, 10, 0},
		{0, 0, 10},
		{0, 0, 0},
	})
	require.NoError(t, err)
	return topo
}

// exampleTopology is the five node network shipped with the analyzer, 0-based:
// 0-1:12, 1-2:10, 1-3:7, 2-4:8, 3-4:6, symmetric.
func exampleTopology(t *testing.T) *domain.Topology {
	t.Helper()
	rows := make([][]float64, 5)
	for i := range rows {
		rows[i] = make([]float64, 5)
	}
	link := func(a, b int, c float64) {
		rows[a][b] = c
		rows[b][a] = c
	}
	link(0, 1, 12)
	link(1, 2, 10)
	link(1, 3, 7)
	link(2, 4, 8)
	link(3, 4, 6)

	topo, err := domain.NewTopology(rows)
	require.NoError(t, err)
	return topo
}

func exampleDemands() []domain.Demand {
	return []domain.Demand{
		{Source: 0, Destination: 4, Bandwidth: 8},
		{Source: 0, Destination: 4, Bandwidth: 4},
	}
}

func TestParseCouplingMode(t *testing.T) {
	tests := []struct {
		in      string
		want    CouplingMode
		wantErr bool
	}{
		{"", CouplingReference, false},
		{"reference", CouplingReference, false},
		{"directed", CouplingDirected, false},
		{"symmetric", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCouplingMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownCoupling)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptions_Chaining(t *testing.T) {
	opts := DefaultOptions().
		WithMaxHops(3).
		WithWorkers(4).
		WithMaxScenarios(100).
		WithCoupling(CouplingDirected)

	assert.Equal(t, 3, opts.MaxHops)
	assert.Equal(t, 4, opts.Workers)
	assert.Equal(t, int64(100), opts.MaxScenarios)
	assert.Equal(t, CouplingDirected, opts.Coupling)
	assert.Equal(t, 3, opts.effectiveMaxHops(10))
	assert.Equal(t, 9, DefaultOptions().effectiveMaxHops(10))
}

func TestEnumeratePaths(t *testing.T) {
	topo := exampleTopology(t)
	live := topo.Original()

	paths := EnumeratePaths(topo, live, 0, 4, 0)

	require.Len(t, paths, 2)
	assert.Equal(t, domain.Path{0, 1, 2, 4}, paths[0])
	assert.Equal(t, domain.Path{0, 1, 3, 4}, paths[1])
}

func TestEnumeratePaths_DiscoveryOrder(t *testing.T) {
	topo, err := domain.NewTopology([][]float64{
		{0, 1, 1, 0},
		{0, 0, 0, 1},
		{0, 0, 0, 1},
		{0, 0, 0, 0},
	})
	require.NoError(t, err)

	paths := EnumeratePaths(topo, topo.Original(), 0, 3, 0)

	assert.Equal(t, []domain.Path{{0, 1, 3}, {0, 2, 3}}, paths)
}

func TestEnumeratePaths_Bounds(t *testing.T) {
	topo := exampleTopology(t)
	live := topo.Original()

	tests := []struct {
		name    string
		src     int
		dst     int
		maxHops int
		want    int
	}{
		{"hop bound excludes three hop paths", 0, 4, 2, 0},
		{"hop bound allows exact length", 0, 4, 3, 2},
		{"single hop", 0, 1, 1, 1},
		{"source out of range", -1, 4, 0, 0},
		{"destination out of range", 0, 5, 0, 0},
		{"source equals destination", 2, 2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, EnumeratePaths(topo, live, tt.src, tt.dst, tt.maxHops), tt.want)
		})
	}
}

func TestEnumeratePaths_UsesLiveCapacity(t *testing.T) {
	topo := exampleTopology(t)
	live := topo.Original()
	live.Set(1, 2, 0)

	paths := EnumeratePaths(topo, live, 0, 4, 0)

	require.Len(t, paths, 1)
	assert.Equal(t, domain.Path{0, 1, 3, 4}, paths[0])
}

func TestEnumeratePaths_Simple(t *testing.T) {
	topo := exampleTopology(t)

	for _, p := range EnumeratePaths(topo, topo.Original(), 0, 4, 0) {
		seen := map[int]bool{}
		for _, n := range p {
			assert.False(t, seen[n], "node %d repeated in %v", n, p)
			seen[n] = true
		}
	}
}

func TestLedger_CanReserve(t *testing.T) {
	topo := lineTopology(t)
	l := NewLedger(topo, CouplingReference)
	m := topo.Original()

	assert.True(t, l.CanReserve(domain.Path{0, 1, 2}, 10, m))
	assert.False(t, l.CanReserve(domain.Path{0, 1, 2}, 10.5, m))
	assert.False(t, l.CanReserve(domain.Path{2, 1}, 1, m))
}

func TestLedger_ReserveReleaseRoundTrip(t *testing.T) {
	topo := exampleTopology(t)

	for _, coupling := range []CouplingMode{CouplingReference, CouplingDirected} {
		t.Run(string(coupling), func(t *testing.T) {
			l := NewLedger(topo, coupling)
			m := topo.Original()
			before := m.Clone()
			path := domain.Path{0, 1, 3, 4}

			require.True(t, l.CanReserve(path, 5, m))
			l.Reserve(path, 5, m)
			assert.False(t, m.Equal(before))

			l.Release(path, 5, m)
			assert.True(t, m.EqualApprox(before, 1e-9))
		})
	}
}

func TestLedger_ReverseCoupling(t *testing.T) {
	topo, err := domain.NewTopology([][]float64{
		{0, 10},
		{10, 0},
	})
	require.NoError(t, err)

	t.Run("reference decrements reverse edge", func(t *testing.T) {
		m := topo.Original()
		NewLedger(topo, CouplingReference).Reserve(domain.Path{0, 1}, 4, m)

		assert.Equal(t, 6.0, m.At(0, 1))
		assert.Equal(t, 6.0, m.At(1, 0))
	})

	t.Run("directed leaves reverse edge", func(t *testing.T) {
		m := topo.Original()
		NewLedger(topo, CouplingDirected).Reserve(domain.Path{0, 1}, 4, m)

		assert.Equal(t, 6.0, m.At(0, 1))
		assert.Equal(t, 10.0, m.At(1, 0))
	})

	t.Run("release restores reverse edge from original capacity", func(t *testing.T) {
		l := NewLedger(topo, CouplingReference)
		m := topo.Original()
		m.Set(1, 0, 0) // drained by an earlier reservation

		l.Reserve(domain.Path{0, 1}, 4, m)
		assert.Equal(t, 0.0, m.At(1, 0), "drained reverse edge is skipped on reserve")

		l.Release(domain.Path{0, 1}, 4, m)
		assert.Equal(t, 10.0, m.At(0, 1))
		assert.Equal(t, 4.0, m.At(1, 0), "release consults original capacity")
	})
}

func TestEvaluate(t *testing.T) {
	topo := lineTopology(t)
	l := NewLedger(topo, CouplingReference)
	base := topo.Original()
	demands := []domain.Demand{
		{Source: 0, Destination: 2, Bandwidth: 5},
		{Source: 0, Destination: 1, Bandwidth: 5},
	}

	t.Run("valid scenario", func(t *testing.T) {
		res := Evaluate(Scenario{
			{Demand: 0, Path: domain.Path{0, 1, 2}},
			{Demand: 1, Path: domain.Path{0, 1}},
		}, demands, base, l)

		require.True(t, res.Valid)
		assert.Equal(t, 1.0, res.AcceptanceRatio)
		assert.Equal(t, 15.0, res.TotalCost)
		assert.Equal(t, 15.0, res.TotalRevenue)
		assert.Equal(t, 1.0, res.RevenueCostRatio)
		assert.Equal(t, 0.0, res.Matrix.At(0, 1))
		assert.Equal(t, 5.0, res.Matrix.At(1, 2))
	})

	t.Run("first misfit invalidates whole scenario", func(t *testing.T) {
		res := Evaluate(Scenario{
			{Demand: 0, Path: domain.Path{0, 1, 2}},
			{Demand: 1, Path: domain.Path{0, 1}},
			{Demand: 1, Path: domain.Path{0, 1}},
		}, demands, base, l)

		assert.False(t, res.Valid)
		assert.Equal(t, 0.0, res.AcceptanceRatio)
		assert.Equal(t, 0.0, res.RevenueCostRatio)
		assert.True(t, math.IsInf(res.TotalCost, 1))
		assert.Nil(t, res.Matrix)
	})

	t.Run("empty scenario is feasible", func(t *testing.T) {
		res := Evaluate(nil, demands, base, l)

		assert.True(t, res.Valid)
		assert.Equal(t, 0.0, res.AcceptanceRatio)
		assert.Equal(t, 0.0, res.RevenueCostRatio)
	})

	t.Run("no demands", func(t *testing.T) {
		res := Evaluate(nil, nil, base, l)
		assert.Equal(t, 0.0, res.AcceptanceRatio)
	})

	assert.True(t, base.Equal(topo.Original()), "base matrix must not be modified")
}

func TestBetter(t *testing.T) {
	assert.True(t, better(0, 0, -1, -1))
	assert.True(t, better(0.5, 0, 0, 1))
	assert.True(t, better(0.5, 1, 0.5, 0))
	assert.False(t, better(0.5, 1, 0.5, 1))
	assert.False(t, better(0.4, 9, 0.5, 1))
}

func TestProductSize(t *testing.T) {
	assert.Equal(t, int64(1), productSize(nil))
	assert.Equal(t, int64(12), productSize([]int{3, 4}))
	assert.Equal(t, int64(math.MaxInt64), productSize([]int{1 << 30, 1 << 30, 1 << 30}))
}
