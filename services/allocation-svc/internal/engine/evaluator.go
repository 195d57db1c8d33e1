package engine

import (
	"math"

	"netalloc/pkg/domain"
)

// Assignment routes one demand over one path.
type Assignment struct {
	Demand int         `json:"demand"`
	Path   domain.Path `json:"path"`
}

// Scenario is an ordered set of assignments, at most one per demand.
// Demands not listed are rejected.
type Scenario []Assignment

// ScenarioResult scores one scenario.
type ScenarioResult struct {
	Valid            bool
	AcceptanceRatio  float64
	RevenueCostRatio float64
	Accepted         Scenario
	TotalRevenue     float64
	TotalCost        float64

	// Matrix is the scratch matrix after all reservations; nil when invalid.
	Matrix *domain.CapacityMatrix
}

func invalidResult() ScenarioResult {
	return ScenarioResult{TotalCost: math.Inf(1)}
}

// Evaluate applies the scenario to a copy of base, one assignment at a time
// in order. The first assignment that does not fit invalidates the whole
// scenario. base is never modified.
func Evaluate(scenario Scenario, demands []domain.Demand, base *domain.CapacityMatrix, ledger *Ledger) ScenarioResult {
	scratch := base.Clone()

	var cost, revenue float64
	for _, a := range scenario {
		bw := demands[a.Demand].Bandwidth
		if !ledger.CanReserve(a.Path, bw, scratch) {
			return invalidResult()
		}
		ledger.Reserve(a.Path, bw, scratch)

		proxy := domain.CostProxy(bw, a.Path)
		cost += proxy
		revenue += proxy
	}

	res := ScenarioResult{
		Valid:        true,
		Accepted:     scenario,
		TotalRevenue: revenue,
		TotalCost:    cost,
		Matrix:       scratch,
	}
	if len(demands) > 0 {
		res.AcceptanceRatio = float64(len(scenario)) / float64(len(demands))
	}
	if cost != 0 {
		res.RevenueCostRatio = revenue / cost
	}

	return res
}

// better reports whether (acc, ratio) beats the incumbent: higher acceptance
// first, then higher revenue/cost ratio. Equal scores never replace.
func better(acc, ratio, bestAcc, bestRatio float64) bool {
	return acc > bestAcc || (acc == bestAcc && ratio > bestRatio)
}
