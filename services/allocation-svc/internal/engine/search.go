package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"netalloc/pkg/domain"
)

const (
	// checkInterval is how many scenarios are evaluated between context checks.
	checkInterval = 256

	// shardsPerWorker keeps workers busy when shard sizes are uneven.
	shardsPerWorker = 4
)

// Failure messages reported in SearchResult.Message.
const (
	MsgNoReachableDemand = "no demand has a feasible path"
	MsgNoValidScenario   = "no valid allocation scenario found"
)

// SearchOutcome pairs a search result with the winning scratch matrix.
// Matrix is nil when the search failed.
type SearchOutcome struct {
	Result *SearchResult
	Matrix *domain.CapacityMatrix
}

// Search enumerates every combination of "route demand over one of its
// paths" or "reject demand", scores each against a copy of base and returns
// the best one. base is not modified.
//
// Demands with out-of-range endpoints, equal endpoints or no path are
// excluded from the product and always rejected. The returned error is
// non-nil only when ctx is done before the product is exhausted.
func Search(ctx context.Context, topo *domain.Topology, base *domain.CapacityMatrix, demands []domain.Demand, opts *Options) (*SearchOutcome, error) {
	if topo == nil {
		return nil, ErrNilTopology
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	coupling, err := ParseCouplingMode(string(opts.Coupling))
	if err != nil {
		return nil, err
	}
	start := time.Now()

	p := &plan{
		demands: demands,
		base:    base,
		ledger:  NewLedger(topo, coupling),
	}

	maxHops := opts.effectiveMaxHops(topo.Nodes())
	var unreachable []int
	for i, d := range demands {
		if !d.InRange(topo.Nodes()) {
			unreachable = append(unreachable, i)
			continue
		}
		paths := EnumeratePaths(topo, base, d.Source, d.Destination, maxHops)
		if len(paths) == 0 {
			unreachable = append(unreachable, i)
			continue
		}
		p.reachable = append(p.reachable, i)
		p.paths = append(p.paths, paths)
		p.radix = append(p.radix, len(paths)+1)
	}

	if len(p.reachable) == 0 {
		return failure(demands, unreachable, MsgNoReachableDemand, 0, 0, start), nil
	}

	size := productSize(p.radix)
	if opts.MaxScenarios > 0 && size > opts.MaxScenarios {
		msg := fmt.Sprintf("search space of %d scenarios exceeds the limit of %d", size, opts.MaxScenarios)
		out := failure(demands, unreachable, msg, 0, 0, start)
		out.Result.LimitExceeded = true
		return out, nil
	}

	shards := p.split(opts.Workers)

	var results []shardResult
	if shards == 1 {
		results = []shardResult{p.runShard(ctx, 0)}
	} else {
		results, err = p.runParallel(ctx, shards, opts.Workers)
		if err != nil {
			return nil, err
		}
	}

	var (
		total, valid int64
		best         ScenarioResult
		found        bool
		bestAcc      = -1.0
		bestRatio    = -1.0
	)
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		total += r.total
		valid += r.valid
		if r.found && better(r.best.AcceptanceRatio, r.best.RevenueCostRatio, bestAcc, bestRatio) {
			best, found = r.best, true
			bestAcc, bestRatio = r.best.AcceptanceRatio, r.best.RevenueCostRatio
		}
	}

	if !found {
		return failure(demands, unreachable, MsgNoValidScenario, total, valid, start), nil
	}

	return &SearchOutcome{
		Result: success(demands, unreachable, best, total, valid, start),
		Matrix: best.Matrix,
	}, nil
}

// plan is the product of option sets of reachable demands.
// Option 0 of each position is REJECT, option k routes over paths[pos][k-1].
type plan struct {
	demands []domain.Demand
	base    *domain.CapacityMatrix
	ledger  *Ledger

	reachable []int
	paths     [][]domain.Path
	radix     []int

	// prefix leading positions are fixed per shard
	prefix int
}

type shardResult struct {
	found        bool
	best         ScenarioResult
	total, valid int64
	err          error
}

// split chooses how many leading positions form the shard key and returns
// the shard count.
func (p *plan) split(workers int) int {
	shards := 1
	p.prefix = 0
	if workers < 2 {
		return shards
	}
	for p.prefix < len(p.radix) && shards < workers*shardsPerWorker {
		shards *= p.radix[p.prefix]
		p.prefix++
	}
	return shards
}

// runShard walks the sub-product whose leading digits encode shard,
// last position varying fastest.
func (p *plan) runShard(ctx context.Context, shard int) shardResult {
	idx := make([]int, len(p.radix))
	for pos := p.prefix - 1; pos >= 0; pos-- {
		idx[pos] = shard % p.radix[pos]
		shard /= p.radix[pos]
	}

	res := shardResult{}
	bestAcc, bestRatio := -1.0, -1.0
	scenario := make(Scenario, 0, len(idx))

	for {
		if res.total%checkInterval == 0 {
			select {
			case <-ctx.Done():
				res.err = fmt.Errorf("search interrupted after %d scenarios: %w", res.total, ctx.Err())
				return res
			default:
			}
		}

		scenario = scenario[:0]
		for pos, opt := range idx {
			if opt > 0 {
				scenario = append(scenario, Assignment{
					Demand: p.reachable[pos],
					Path:   p.paths[pos][opt-1],
				})
			}
		}

		r := Evaluate(scenario, p.demands, p.base, p.ledger)
		res.total++
		if r.Valid {
			res.valid++
			if better(r.AcceptanceRatio, r.RevenueCostRatio, bestAcc, bestRatio) {
				r.Accepted = append(Scenario(nil), r.Accepted...)
				res.best, res.found = r, true
				bestAcc, bestRatio = r.AcceptanceRatio, r.RevenueCostRatio
			}
		}

		pos := len(idx) - 1
		for ; pos >= p.prefix; pos-- {
			idx[pos]++
			if idx[pos] < p.radix[pos] {
				break
			}
			idx[pos] = 0
		}
		if pos < p.prefix {
			return res
		}
	}
}

// runParallel evaluates shards on an ants pool. Results keep shard order.
func (p *plan) runParallel(ctx context.Context, shards, workers int) ([]shardResult, error) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]shardResult, shards)
	var wg sync.WaitGroup

	for s := 0; s < shards; s++ {
		wg.Add(1)
		shard := s
		if err := pool.Submit(func() {
			defer wg.Done()
			results[shard] = p.runShard(ctx, shard)
		}); err != nil {
			wg.Done()
			results[shard] = shardResult{err: fmt.Errorf("submit shard %d: %w", shard, err)}
		}
	}
	wg.Wait()

	return results, nil
}

// productSize multiplies radices, saturating at math.MaxInt64.
func productSize(radix []int) int64 {
	size := int64(1)
	for _, r := range radix {
		if size > math.MaxInt64/int64(r) {
			return math.MaxInt64
		}
		size *= int64(r)
	}
	return size
}

func failure(demands []domain.Demand, unreachable []int, msg string, total, valid int64, start time.Time) *SearchOutcome {
	rejected := make([]int, len(demands))
	for i := range demands {
		rejected[i] = i
	}
	return &SearchOutcome{
		Result: &SearchResult{
			Success:           false,
			Message:           msg,
			Allocated:         []int{},
			Rejected:          rejected,
			Unreachable:       nonNil(unreachable),
			Details:           []AllocationDetail{},
			TotalCombinations: total,
			ValidCombinations: valid,
			Duration:          time.Since(start),
		},
	}
}

func success(demands []domain.Demand, unreachable []int, best ScenarioResult, total, valid int64, start time.Time) *SearchResult {
	accepted := make([]bool, len(demands))
	allocated := make([]int, 0, len(best.Accepted))
	details := make([]AllocationDetail, 0, len(best.Accepted))

	for _, a := range best.Accepted {
		d := demands[a.Demand]
		proxy := domain.CostProxy(d.Bandwidth, a.Path)
		accepted[a.Demand] = true
		allocated = append(allocated, a.Demand)
		details = append(details, AllocationDetail{
			DemandIndex: a.Demand,
			Source:      d.Source,
			Destination: d.Destination,
			Bandwidth:   d.Bandwidth,
			Path:        a.Path.Clone(),
			Hops:        a.Path.Hops(),
			Cost:        proxy,
			Revenue:     proxy,
		})
	}

	rejected := make([]int, 0, len(demands)-len(allocated))
	for i := range demands {
		if !accepted[i] {
			rejected = append(rejected, i)
		}
	}

	return &SearchResult{
		Success:           true,
		Message:           fmt.Sprintf("allocated %d of %d demands", len(allocated), len(demands)),
		AcceptanceRatio:   best.AcceptanceRatio,
		RevenueCostRatio:  best.RevenueCostRatio,
		TotalRevenue:      best.TotalRevenue,
		TotalCost:         best.TotalCost,
		Allocated:         allocated,
		Rejected:          rejected,
		Unreachable:       nonNil(unreachable),
		Details:           details,
		TotalCombinations: total,
		ValidCombinations: valid,
		Duration:          time.Since(start),
	}
}

func nonNil(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
