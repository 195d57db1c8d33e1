// Package converter переводит сообщения API в типы движка и обратно.
package converter

import (
	"time"

	allocationv1 "netalloc/pkg/api/allocation/v1"
	"netalloc/pkg/domain"
	"netalloc/services/allocation-svc/internal/engine"
	"netalloc/services/allocation-svc/internal/input"
	"netalloc/services/allocation-svc/internal/kpi"
	"netalloc/services/allocation-svc/internal/repository"
)

// ToDocument превращает сеть запроса во входной документ
func ToDocument(n *allocationv1.Network) *input.Document {
	if n == nil {
		return nil
	}

	doc := &input.Document{
		Name:      n.Name,
		IndexBase: n.IndexBase,
		Capacity:  make([][]any, len(n.Capacity)),
		Demands:   make([]input.DemandEntry, len(n.Demands)),
	}
	for i, row := range n.Capacity {
		doc.Capacity[i] = make([]any, len(row))
		for j, v := range row {
			doc.Capacity[i][j] = v
		}
	}
	for i, d := range n.Demands {
		doc.Demands[i] = input.DemandEntry{
			Source:      d.Source,
			Destination: d.Destination,
			Bandwidth:   d.Bandwidth,
		}
	}
	return doc
}

// FromNetwork возвращает сеть в нумерации её IndexBase.
// Отброшенные при разборе запросы не попадают в результат.
func FromNetwork(n *input.Network) *allocationv1.Network {
	if n == nil {
		return nil
	}

	base := n.IndexBase
	out := &allocationv1.Network{
		Name:      n.Name,
		IndexBase: &base,
		Capacity:  make([][]float64, len(n.Capacity)),
		Demands:   make([]allocationv1.Demand, len(n.Demands)),
	}
	for i, row := range n.Capacity {
		out.Capacity[i] = append([]float64(nil), row...)
	}
	for i, d := range n.Demands {
		out.Demands[i] = allocationv1.Demand{
			Source:      d.Source + base,
			Destination: d.Destination + base,
			Bandwidth:   d.Bandwidth,
		}
	}
	return out
}

func ToResult(r *engine.SearchResult) *allocationv1.Result {
	if r == nil {
		return nil
	}

	out := &allocationv1.Result{
		Success:           r.Success,
		Message:           r.Message,
		AcceptanceRatio:   r.AcceptanceRatio,
		RevenueCostRatio:  r.RevenueCostRatio,
		TotalRevenue:      r.TotalRevenue,
		TotalCost:         r.TotalCost,
		Allocated:         ints(r.Allocated),
		Rejected:          ints(r.Rejected),
		Unreachable:       ints(r.Unreachable),
		Details:           make([]allocationv1.Allocation, len(r.Details)),
		TotalCombinations: r.TotalCombinations,
		ValidCombinations: r.ValidCombinations,
		DurationMs:        Milliseconds(r.Duration),
	}
	for i, d := range r.Details {
		out.Details[i] = allocationv1.Allocation{
			DemandIndex: d.DemandIndex,
			Source:      d.Source,
			Destination: d.Destination,
			Bandwidth:   d.Bandwidth,
			Path:        ints(d.Path),
			Hops:        d.Hops,
			Cost:        d.Cost,
			Revenue:     d.Revenue,
		}
	}
	return out
}

func ToStatus(s engine.NetworkStatus) *allocationv1.NetworkStatus {
	return &allocationv1.NetworkStatus{
		Nodes:                s.Nodes,
		TotalLinks:           s.TotalLinks,
		Connected:            s.Connected,
		Utilization:          s.Utilization,
		RemainingCapacity:    s.RemainingCapacity,
		OriginalCapacity:     s.OriginalCapacity,
		TotalDemands:         s.TotalDemands,
		AllocatedDemands:     s.AllocatedDemands,
		RejectedDemands:      s.RejectedDemands,
		TotalDemandBandwidth: s.TotalDemandBandwidth,
	}
}

func ToSummary(s kpi.Summary) *allocationv1.Summary {
	return &allocationv1.Summary{
		Currency:             s.Currency,
		AcceptanceRatio:      s.AcceptanceRatio,
		OperatingCost:        s.OperatingCost,
		Revenue:              s.Revenue,
		NetProfit:            s.NetProfit,
		RevenueCostRatio:     s.RevenueCostRatio,
		DemandedBandwidth:    s.DemandedBandwidth,
		AllocatedBandwidth:   s.AllocatedBandwidth,
		RejectedBandwidth:    s.RejectedBandwidth,
		LostRevenue:          s.LostRevenue,
		InitialCapacityUsage: s.InitialCapacityUsage,
		AverageHops:          s.AverageHops,
		SearchEfficiency:     s.SearchEfficiency,
	}
}

func ToBottlenecks(bs []domain.Bottleneck) []allocationv1.Bottleneck {
	if len(bs) == 0 {
		return nil
	}
	out := make([]allocationv1.Bottleneck, len(bs))
	for i, b := range bs {
		out[i] = allocationv1.Bottleneck{
			From:        b.From,
			To:          b.To,
			Capacity:    b.Capacity,
			Remaining:   b.Remaining,
			Utilization: b.Utilization,
			Severity:    b.Severity.String(),
		}
	}
	return out
}

func ToDropped(ds []input.DroppedDemand) []allocationv1.DroppedDemand {
	if len(ds) == 0 {
		return nil
	}
	out := make([]allocationv1.DroppedDemand, len(ds))
	for i, d := range ds {
		out[i] = allocationv1.DroppedDemand{
			Position:    d.Position,
			Source:      d.Source,
			Destination: d.Destination,
			Bandwidth:   d.Bandwidth,
			Reason:      d.Reason,
		}
	}
	return out
}

func ToDiagnostics(r *input.Report) []allocationv1.DemandDiagnostic {
	if r == nil || len(r.Demands) == 0 {
		return nil
	}
	out := make([]allocationv1.DemandDiagnostic, len(r.Demands))
	for i, d := range r.Demands {
		out[i] = allocationv1.DemandDiagnostic{
			DemandIndex: d.DemandIndex,
			Reachable:   d.Reachable,
			Reason:      d.Reason,
		}
	}
	return out
}

func ToPaths(paths []domain.Path) []allocationv1.Path {
	out := make([]allocationv1.Path, len(paths))
	for i, p := range paths {
		out[i] = allocationv1.Path{Nodes: ints(p), Hops: p.Hops()}
	}
	return out
}

func ToRunSummary(s *repository.RunSummary) allocationv1.RunSummary {
	return allocationv1.RunSummary{
		ID:                s.ID,
		Name:              s.Name,
		NodeCount:         s.NodeCount,
		LinkCount:         s.LinkCount,
		DemandCount:       s.DemandCount,
		Success:           s.Success,
		AcceptanceRatio:   s.AcceptanceRatio,
		RevenueCostRatio:  s.RevenueCostRatio,
		TotalCombinations: s.TotalCombinations,
		DurationMs:        s.DurationMs,
		CreatedAt:         s.CreatedAt,
	}
}

// Milliseconds длительность в миллисекундах с дробной частью
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// ints копирует срез, nil превращается в пустой срез для JSON
func ints[S ~[]int](s S) []int {
	return append([]int{}, s...)
}
