package kpi

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netalloc/pkg/domain"
	"netalloc/services/allocation-svc/internal/engine"
	"netalloc/services/allocation-svc/internal/input"
)

func runExample(t *testing.T) (*engine.SearchResult, *input.Network, *domain.Topology) {
	t.Helper()

	net := input.Example()
	topo, err := net.Topology()
	require.NoError(t, err)

	alloc, err := engine.New(topo, net.Demands, nil)
	require.NoError(t, err)

	res, err := alloc.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)

	return res, net, topo
}

func TestCompute_Example(t *testing.T) {
	res, net, topo := runExample(t)

	s := Compute(res, net.Demands, topo, DefaultPrices())

	assert.Equal(t, 2, s.TotalDemands)
	assert.Equal(t, 2, s.AllocatedDemands)
	assert.Equal(t, 0, s.RejectedDemands)
	assert.Equal(t, 1.0, s.AcceptanceRatio)

	// оба запроса идут по три канала
	assert.InDelta(t, 36.0, s.ProxyCost, 1e-9)
	assert.InDelta(t, 36.0, s.OperatingCost, 1e-9)
	assert.InDelta(t, 360.0, s.Revenue, 1e-9)
	assert.InDelta(t, 324.0, s.NetProfit, 1e-9)
	assert.InDelta(t, 10.0, s.RevenueCostRatio, 1e-9)
	assert.InDelta(t, 3.0, s.AverageHops, 1e-9)

	assert.Equal(t, 12.0, s.DemandedBandwidth)
	assert.Equal(t, 12.0, s.AllocatedBandwidth)
	assert.Zero(t, s.LostRevenue)
	assert.InDelta(t, 12.0/86*100, s.InitialCapacityUsage, 1e-9)
	assert.Equal(t, "$", s.Currency)
}

func TestCompute_Rejected(t *testing.T) {
	demands := []domain.Demand{
		{Source: 0, Destination: 1, Bandwidth: 4},
		{Source: 0, Destination: 1, Bandwidth: 6},
	}
	res := &engine.SearchResult{
		Success:   true,
		Allocated: []int{0},
		Rejected:  []int{1},
		Details: []engine.AllocationDetail{
			{DemandIndex: 0, Bandwidth: 4, Hops: 1, Cost: 4, Revenue: 4, Path: domain.Path{0, 1}},
		},
		TotalCombinations: 4,
		ValidCombinations: 3,
	}

	s := Compute(res, demands, nil, Prices{CostPerUnit: 2, RevenuePerUnit: 5, LostRevenueFactor: 1.5, Currency: "EUR"})

	assert.Equal(t, 0.5, s.AcceptanceRatio)
	assert.Equal(t, 8.0, s.OperatingCost)
	assert.Equal(t, 20.0, s.Revenue)
	assert.Equal(t, 6.0, s.RejectedBandwidth)
	assert.Equal(t, 9.0, s.LostRevenue)
	assert.Equal(t, 0.75, s.SearchEfficiency)
	assert.Zero(t, s.InitialCapacityUsage)
	assert.Equal(t, "EUR", s.Currency)
}

func TestCompute_CapacityUsageCapped(t *testing.T) {
	topo, err := domain.NewTopology([][]float64{{0, 1}, {1, 0}})
	require.NoError(t, err)

	demands := []domain.Demand{{Source: 0, Destination: 1, Bandwidth: 50}}
	s := Compute(nil, demands, topo, DefaultPrices())

	assert.Equal(t, 100.0, s.InitialCapacityUsage)
	assert.Equal(t, 1, s.RejectedDemands)
	assert.Equal(t, 75.0, s.LostRevenue)
}

func TestPrices_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Prices
		want Prices
	}{
		{
			name: "explicit zero prices are kept",
			in:   Prices{CostPerUnit: 0, RevenuePerUnit: 0, LostRevenueFactor: 0, Currency: "EUR"},
			want: Prices{CostPerUnit: 0, RevenuePerUnit: 0, LostRevenueFactor: 0, Currency: "EUR"},
		},
		{
			name: "negative prices fall back to defaults",
			in:   Prices{CostPerUnit: -1, RevenuePerUnit: 3, LostRevenueFactor: -0.5},
			want: Prices{CostPerUnit: DefaultCostPerUnit, RevenuePerUnit: 3, LostRevenueFactor: DefaultLostRevenueFactor, Currency: DefaultCurrency},
		},
		{
			name: "non-finite prices fall back to defaults",
			in:   Prices{CostPerUnit: math.NaN(), RevenuePerUnit: math.Inf(1), LostRevenueFactor: 2, Currency: "$"},
			want: Prices{CostPerUnit: DefaultCostPerUnit, RevenuePerUnit: DefaultRevenuePerUnit, LostRevenueFactor: 2, Currency: "$"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestCompute_ZeroCost(t *testing.T) {
	demands := []domain.Demand{{Source: 0, Destination: 1, Bandwidth: 4}}
	res := &engine.SearchResult{
		Success:   true,
		Allocated: []int{0},
		Rejected:  []int{},
		Details: []engine.AllocationDetail{
			{DemandIndex: 0, Bandwidth: 4, Hops: 1, Cost: 4, Revenue: 4, Path: domain.Path{0, 1}},
		},
	}

	s := Compute(res, demands, nil, Prices{CostPerUnit: 0, RevenuePerUnit: 10, LostRevenueFactor: 1.5, Currency: "$"})

	assert.Zero(t, s.OperatingCost)
	assert.Equal(t, 40.0, s.Revenue)
	assert.Equal(t, 40.0, s.NetProfit)
	assert.Zero(t, s.RevenueCostRatio)
}

func TestRatios(t *testing.T) {
	assert.Zero(t, AcceptanceRatio(0, 0))
	assert.Equal(t, 0.25, AcceptanceRatio(1, 4))
	assert.Zero(t, RevenueCostRatio(10, 0))
	assert.Equal(t, 2.0, RevenueCostRatio(10, 5))
}
