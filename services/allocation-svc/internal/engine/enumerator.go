package engine

import (
	"netalloc/pkg/domain"
)

// EnumeratePaths returns every simple path from src to dst over the
// adjacency of topo whose hops all have positive capacity in live.
//
// Paths are bounded to maxHops hops (maxHops <= 0 means N-1) and returned
// in depth-first discovery order, neighbours tried in ascending order.
// Out-of-range endpoints and src == dst yield no paths.
func EnumeratePaths(topo *domain.Topology, live *domain.CapacityMatrix, src, dst, maxHops int) []domain.Path {
	n := topo.Nodes()
	if !topo.HasNode(src) || !topo.HasNode(dst) || src == dst {
		return nil
	}
	if maxHops <= 0 {
		maxHops = n - 1
	}

	e := &enumerator{
		topo:     topo,
		live:     live,
		dst:      dst,
		maxNodes: maxHops + 1,
		onPath:   make([]bool, n),
		current:  make(domain.Path, 0, maxHops+1),
	}
	e.visit(src)

	return e.paths
}

type enumerator struct {
	topo     *domain.Topology
	live     *domain.CapacityMatrix
	dst      int
	maxNodes int

	onPath  []bool
	current domain.Path
	paths   []domain.Path
}

func (e *enumerator) visit(node int) {
	e.current = append(e.current, node)
	e.onPath[node] = true
	defer func() {
		e.current = e.current[:len(e.current)-1]
		e.onPath[node] = false
	}()

	if node == e.dst {
		e.paths = append(e.paths, e.current.Clone())
		return
	}
	if len(e.current) >= e.maxNodes {
		return
	}

	for _, next := range e.topo.Neighbors(node) {
		if e.onPath[next] || e.live.At(node, next) <= 0 {
			continue
		}
		e.visit(next)
	}
}
