package engine

import (
	"netalloc/pkg/domain"
)

// Ledger applies and reverts bandwidth reservations on a capacity matrix.
// Every operation takes the target matrix explicitly; the ledger itself only
// reads the original capacities of its topology.
type Ledger struct {
	topo     *domain.Topology
	coupling CouplingMode
}

// NewLedger creates a ledger for topo.
func NewLedger(topo *domain.Topology, coupling CouplingMode) *Ledger {
	return &Ledger{topo: topo, coupling: coupling}
}

// CanReserve reports whether every hop of path has at least bandwidth left in m.
func (l *Ledger) CanReserve(path domain.Path, bandwidth float64, m *domain.CapacityMatrix) bool {
	for i := 0; i+1 < len(path); i++ {
		if m.At(path[i], path[i+1]) < bandwidth {
			return false
		}
	}
	return true
}

// Reserve subtracts bandwidth from every hop u→v of path in m.
//
// With reference coupling the reverse edge v→u is decremented too whenever
// its current capacity in m is positive. Release checks the original
// capacity instead, so the two are not exact inverses on a matrix whose
// reverse edges were drained by earlier reservations.
func (l *Ledger) Reserve(path domain.Path, bandwidth float64, m *domain.CapacityMatrix) {
	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]
		m.Add(u, v, -bandwidth)
		if l.coupling == CouplingReference && m.At(v, u) > 0 {
			m.Add(v, u, -bandwidth)
		}
	}
}

// Release adds bandwidth back to every hop u→v of path in m, and to v→u
// when the original reverse capacity is positive (reference coupling).
func (l *Ledger) Release(path domain.Path, bandwidth float64, m *domain.CapacityMatrix) {
	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]
		m.Add(u, v, bandwidth)
		if l.coupling == CouplingReference && l.topo.OriginalAt(v, u) > 0 {
			m.Add(v, u, bandwidth)
		}
	}
}
