// Package engine implements exhaustive bandwidth allocation over a capacitated
// network: simple-path enumeration, reservation bookkeeping on capacity
// matrices, scenario scoring and the brute-force search that picks the
// scenario with the highest acceptance ratio, then the highest
// revenue/cost ratio.
//
// # Thread Safety
//
// Enumeration, evaluation and Search are pure with respect to their inputs:
// they only write to scratch copies they allocate themselves. Allocator owns
// the live capacity matrix and serialises Run and Reset with a mutex.
//
// # Determinism
//
// Paths are enumerated trying neighbours in ascending node order, and the
// scenario product is walked with the first demand varying slowest. Ties are
// broken in favour of the earliest scenario, so parallel and sequential
// searches return the same winner.
//
// # Example Usage
//
//	topo, _ := domain.NewTopology(rows)
//	alloc, err := engine.New(topo, demands, engine.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	result, err := alloc.Run(ctx)
//	if err != nil {
//	    return err // context canceled
//	}
//	if !result.Success {
//	    log.Printf("allocation failed: %s", result.Message)
//	}
package engine

import (
	"errors"
	"fmt"
	"time"

	"netalloc/pkg/domain"
)

// =============================================================================
// Error Definitions
// =============================================================================

var (
	// ErrNilTopology indicates that a nil topology was passed to the engine.
	ErrNilTopology = errors.New("topology is nil")

	// ErrUnknownCoupling indicates an unsupported reverse-edge coupling mode.
	ErrUnknownCoupling = errors.New("unknown coupling mode")
)

// =============================================================================
// Coupling Mode
// =============================================================================

// CouplingMode controls how reservations touch the reverse edge of each hop.
type CouplingMode string

const (
	// CouplingReference decrements the reverse edge on Reserve when its live
	// capacity is positive, and restores it on Release when its original
	// capacity is positive.
	CouplingReference CouplingMode = "reference"

	// CouplingDirected never touches reverse edges.
	CouplingDirected CouplingMode = "directed"
)

// ParseCouplingMode parses a coupling mode name. Empty means CouplingReference.
func ParseCouplingMode(s string) (CouplingMode, error) {
	switch CouplingMode(s) {
	case "", CouplingReference:
		return CouplingReference, nil
	case CouplingDirected:
		return CouplingDirected, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCoupling, s)
	}
}

// =============================================================================
// Options
// =============================================================================

// Options configures path enumeration and search.
//
// Zero values are safe to use. Options can be chained:
//
//	opts := DefaultOptions().
//	    WithMaxHops(4).
//	    WithWorkers(8)
type Options struct {
	// MaxHops bounds path length in hops. Zero or negative means N-1.
	MaxHops int

	// Workers is the number of goroutines evaluating scenario shards.
	// Values below 2 run the search on the calling goroutine.
	Workers int

	// MaxScenarios refuses searches whose product is larger than this.
	// Zero means unlimited.
	MaxScenarios int64

	// Coupling selects reverse-edge behaviour of the capacity ledger.
	Coupling CouplingMode
}

// DefaultOptions returns options for an unbounded sequential search with
// reference coupling.
func DefaultOptions() *Options {
	return &Options{
		Workers:  1,
		Coupling: CouplingReference,
	}
}

// WithMaxHops sets the hop bound and returns the options for chaining.
func (o *Options) WithMaxHops(maxHops int) *Options {
	o.MaxHops = maxHops
	return o
}

// WithWorkers sets the worker count and returns the options for chaining.
func (o *Options) WithWorkers(workers int) *Options {
	o.Workers = workers
	return o
}

// WithMaxScenarios sets the scenario limit and returns the options for chaining.
func (o *Options) WithMaxScenarios(limit int64) *Options {
	o.MaxScenarios = limit
	return o
}

// WithCoupling sets the coupling mode and returns the options for chaining.
func (o *Options) WithCoupling(mode CouplingMode) *Options {
	o.Coupling = mode
	return o
}

func (o *Options) effectiveMaxHops(nodes int) int {
	if o.MaxHops <= 0 {
		return nodes - 1
	}
	return o.MaxHops
}

// =============================================================================
// Results
// =============================================================================

// AllocationDetail describes one demand accepted by the winning scenario.
// Cost and Revenue are the same hop-weighted bandwidth proxy; currency
// figures are derived outside the engine.
type AllocationDetail struct {
	DemandIndex int         `json:"demand_index"`
	Source      int         `json:"source"`
	Destination int         `json:"destination"`
	Bandwidth   float64     `json:"bandwidth"`
	Path        domain.Path `json:"path"`
	Hops        int         `json:"hops"`
	Cost        float64     `json:"cost"`
	Revenue     float64     `json:"revenue"`
}

// SearchResult is the outcome of one exhaustive search.
//
// A failed search (Success == false) is an expected outcome, described by
// Message; every demand is then listed in Rejected.
type SearchResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`

	// LimitExceeded marks a failure caused by Options.MaxScenarios. Such a
	// result depends on the limit, not only on the topology and demands.
	LimitExceeded bool `json:"limit_exceeded,omitempty"`

	AcceptanceRatio  float64 `json:"acceptance_ratio"`
	RevenueCostRatio float64 `json:"revenue_cost_ratio"`
	TotalRevenue     float64 `json:"total_revenue"`
	TotalCost        float64 `json:"total_cost"`

	Allocated   []int              `json:"allocated"`
	Rejected    []int              `json:"rejected"`
	Unreachable []int              `json:"unreachable"`
	Details     []AllocationDetail `json:"details"`

	// TotalCombinations counts every scenario of the product,
	// ValidCombinations those that fit the capacities.
	TotalCombinations int64 `json:"total_combinations"`
	ValidCombinations int64 `json:"valid_combinations"`

	Duration time.Duration `json:"duration"`
}

// NetworkStatus is a snapshot of the allocator state.
type NetworkStatus struct {
	Nodes      int  `json:"nodes"`
	TotalLinks int  `json:"total_links"`
	Connected  bool `json:"connected"`

	Utilization       float64 `json:"utilization"`
	RemainingCapacity float64 `json:"remaining_capacity"`
	OriginalCapacity  float64 `json:"original_capacity"`

	TotalDemands         int     `json:"total_demands"`
	AllocatedDemands     int     `json:"allocated_demands"`
	RejectedDemands      int     `json:"rejected_demands"`
	AcceptanceRatio      float64 `json:"acceptance_ratio"`
	TotalDemandBandwidth float64 `json:"total_demand_bandwidth"`

	TotalRevenue     float64 `json:"total_revenue"`
	TotalCost        float64 `json:"total_cost"`
	RevenueCostRatio float64 `json:"revenue_cost_ratio"`
}
