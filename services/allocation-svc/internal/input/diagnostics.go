package input

import (
	"netalloc/pkg/domain"
)

// Причины недостижимости запроса
const (
	ReasonSourceOutOfRange      = "source node out of range"
	ReasonDestinationOutOfRange = "destination node out of range"
	ReasonSameEndpoints         = "source equals destination"
	ReasonNoPath                = "no path between endpoints"
)

// DemandDiagnostic проверка одного запроса до поиска
type DemandDiagnostic struct {
	DemandIndex int    `json:"demand_index"`
	Reachable   bool   `json:"reachable"`
	Reason      string `json:"reason,omitempty"`
}

// Report сводка по сети до запуска поиска
type Report struct {
	Nodes       int                `json:"nodes"`
	Links       int                `json:"links"`
	Connected   bool               `json:"connected"`
	Unreachable int                `json:"unreachable"`
	Demands     []DemandDiagnostic `json:"demands"`
	Dropped     []DroppedDemand    `json:"dropped,omitempty"`
}

// Diagnostics проверяет достижимость каждого запроса по исходной смежности
func Diagnostics(n *Network) (*Report, error) {
	topo, err := n.Topology()
	if err != nil {
		return nil, err
	}
	return DiagnoseTopology(topo, n.Demands, n.Dropped), nil
}

// DiagnoseTopology то же, что Diagnostics, для уже построенной топологии
func DiagnoseTopology(topo *domain.Topology, demands []domain.Demand, dropped []DroppedDemand) *Report {
	r := &Report{
		Nodes:     topo.Nodes(),
		Links:     topo.TotalLinks(),
		Connected: topo.Connected(),
		Demands:   make([]DemandDiagnostic, len(demands)),
		Dropped:   dropped,
	}

	for i, d := range demands {
		diag := DemandDiagnostic{DemandIndex: i}

		switch {
		case !topo.HasNode(d.Source):
			diag.Reason = ReasonSourceOutOfRange
		case !topo.HasNode(d.Destination):
			diag.Reason = ReasonDestinationOutOfRange
		case d.Source == d.Destination:
			diag.Reason = ReasonSameEndpoints
		case !topo.HasPath(d.Source, d.Destination):
			diag.Reason = ReasonNoPath
		default:
			diag.Reachable = true
		}

		if !diag.Reachable {
			r.Unreachable++
		}
		r.Demands[i] = diag
	}

	return r
}
