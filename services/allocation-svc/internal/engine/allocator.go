package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"netalloc/pkg/domain"
	"netalloc/pkg/logger"
)

// Allocator owns the live capacity matrix of one topology and the results
// of the last run. Run and Reset are its only mutators.
type Allocator struct {
	mu sync.Mutex

	topo    *domain.Topology
	demands []domain.Demand
	opts    Options
	ledger  *Ledger

	live      *domain.CapacityMatrix
	allocated []int
	rejected  []int
	revenue   float64
	cost      float64
}

// New validates the inputs and creates an allocator whose live matrix
// starts as a copy of the original capacities.
//
// Demands must have positive finite bandwidth; endpoints outside the
// topology are accepted and treated as unreachable by Run.
func New(topo *domain.Topology, demands []domain.Demand, opts *Options) (*Allocator, error) {
	if topo == nil {
		return nil, ErrNilTopology
	}
	if err := domain.ValidateDemands(demands); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	coupling, err := ParseCouplingMode(string(opts.Coupling))
	if err != nil {
		return nil, err
	}

	o := *opts
	o.Coupling = coupling

	return &Allocator{
		topo:    topo,
		demands: append([]domain.Demand(nil), demands...),
		opts:    o,
		ledger:  NewLedger(topo, coupling),
		live:    topo.Original(),
	}, nil
}

// Run searches for the best scenario against the live matrix and commits it.
// A failed search overwrites the result lists (nothing allocated) but leaves
// the live matrix untouched. A canceled context returns an error and leaves
// all state untouched.
func (a *Allocator) Run(ctx context.Context) (*SearchResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	log := logger.WithContext(ctx,
		"nodes", a.topo.Nodes(),
		"demands", len(a.demands),
		"workers", a.opts.Workers,
	)
	log.Debug("allocation search started")

	out, err := Search(ctx, a.topo, a.live, a.demands, &a.opts)
	if err != nil {
		log.Warn("allocation search interrupted", "error", err)
		return nil, err
	}
	res := out.Result

	if out.Matrix != nil {
		a.live = out.Matrix
	}
	a.allocated = append([]int(nil), res.Allocated...)
	a.rejected = append([]int(nil), res.Rejected...)
	a.revenue = res.TotalRevenue
	a.cost = res.TotalCost

	log.Debug("allocation search finished",
		"success", res.Success,
		"scenarios", res.TotalCombinations,
		"valid_scenarios", res.ValidCombinations,
		"acceptance_ratio", res.AcceptanceRatio,
		"duration", res.Duration,
	)

	return res, nil
}

// ErrReplayMismatch indicates a stored result that does not fit the allocator.
var ErrReplayMismatch = errors.New("result does not match the network")

// Replay commits a previously computed result without searching. The
// accepted paths are reserved again on the live matrix in demand order, so a
// result computed for different capacities or demands is refused with
// ErrReplayMismatch and leaves all state untouched.
func (a *Allocator) Replay(res *SearchResult) error {
	if res == nil {
		return fmt.Errorf("%w: result is nil", ErrReplayMismatch)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !res.Success {
		a.allocated = nil
		a.rejected = append([]int(nil), res.Rejected...)
		a.revenue = 0
		a.cost = 0
		return nil
	}

	scenario := make(Scenario, 0, len(res.Details))
	for _, d := range res.Details {
		if d.DemandIndex < 0 || d.DemandIndex >= len(a.demands) {
			return fmt.Errorf("%w: demand %d out of range", ErrReplayMismatch, d.DemandIndex)
		}
		dem := a.demands[d.DemandIndex]
		if len(d.Path) < 2 || d.Path.Source() != dem.Source || d.Path.Destination() != dem.Destination {
			return fmt.Errorf("%w: path of demand %d", ErrReplayMismatch, d.DemandIndex)
		}
		scenario = append(scenario, Assignment{Demand: d.DemandIndex, Path: d.Path})
	}

	eval := Evaluate(scenario, a.demands, a.live, a.ledger)
	if !eval.Valid {
		return fmt.Errorf("%w: paths exceed live capacities", ErrReplayMismatch)
	}

	a.live = eval.Matrix
	a.allocated = append([]int(nil), res.Allocated...)
	a.rejected = append([]int(nil), res.Rejected...)
	a.revenue = eval.TotalRevenue
	a.cost = eval.TotalCost

	return nil
}

// Reset restores the original capacities and clears the last results.
func (a *Allocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.live = a.topo.Original()
	a.allocated = nil
	a.rejected = nil
	a.revenue = 0
	a.cost = 0
}

// Status reports utilization and the results of the last run.
func (a *Allocator) Status() NetworkStatus {
	a.mu.Lock()
	defer a.mu.Unlock()

	original := a.topo.TotalCapacity()
	remaining := a.live.Sum()

	st := NetworkStatus{
		Nodes:                a.topo.Nodes(),
		TotalLinks:           a.topo.TotalLinks(),
		Connected:            a.topo.Connected(),
		RemainingCapacity:    remaining,
		OriginalCapacity:     original,
		TotalDemands:         len(a.demands),
		AllocatedDemands:     len(a.allocated),
		RejectedDemands:      len(a.rejected),
		TotalDemandBandwidth: domain.TotalBandwidth(a.demands),
		TotalRevenue:         a.revenue,
		TotalCost:            a.cost,
	}
	if original != 0 {
		st.Utilization = (original - remaining) / original
	}
	if len(a.demands) > 0 {
		st.AcceptanceRatio = float64(len(a.allocated)) / float64(len(a.demands))
	}
	if a.cost != 0 {
		st.RevenueCostRatio = a.revenue / a.cost
	}

	return st
}

// EnumeratePaths lists simple paths between two nodes over the live matrix.
// maxHops <= 0 falls back to the allocator's configured bound.
func (a *Allocator) EnumeratePaths(src, dst, maxHops int) []domain.Path {
	a.mu.Lock()
	defer a.mu.Unlock()

	if maxHops <= 0 {
		maxHops = a.opts.effectiveMaxHops(a.topo.Nodes())
	}
	return EnumeratePaths(a.topo, a.live, src, dst, maxHops)
}

// Bottlenecks lists links whose utilization is at least threshold.
func (a *Allocator) Bottlenecks(threshold float64) []domain.Bottleneck {
	a.mu.Lock()
	defer a.mu.Unlock()

	return domain.FindBottlenecks(a.topo, a.live, threshold)
}
