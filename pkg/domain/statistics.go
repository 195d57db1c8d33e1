package domain

// LinkUsage загрузка одного канала: сколько исходной ёмкости занято
type LinkUsage struct {
	From        int     `json:"from"`
	To          int     `json:"to"`
	Capacity    float64 `json:"capacity"`
	Remaining   float64 `json:"remaining"`
	Utilization float64 `json:"utilization"`
}

// BottleneckSeverity уровень критичности узкого места
type BottleneckSeverity int

const (
	SeverityLow BottleneckSeverity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String возвращает строковое представление уровня критичности
func (s BottleneckSeverity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Bottleneck канал с загрузкой не ниже порога
type Bottleneck struct {
	LinkUsage
	Severity BottleneckSeverity `json:"severity"`
}

// LinkUsages возвращает загрузку каждого канала исходной топологии
// по живой матрице, в порядке (from, to)
func LinkUsages(t *Topology, live *CapacityMatrix) []LinkUsage {
	var out []LinkUsage
	for i := 0; i < t.Nodes(); i++ {
		for _, j := range t.Neighbors(i) {
			capacity := t.OriginalAt(i, j)
			remaining := live.At(i, j)
			out = append(out, LinkUsage{
				From:        i,
				To:          j,
				Capacity:    capacity,
				Remaining:   remaining,
				Utilization: (capacity - remaining) / capacity,
			})
		}
	}
	return out
}

// FindBottlenecks находит каналы с загрузкой не ниже threshold
func FindBottlenecks(t *Topology, live *CapacityMatrix, threshold float64) []Bottleneck {
	var out []Bottleneck
	for _, u := range LinkUsages(t, live) {
		if u.Utilization+Epsilon < threshold {
			continue
		}

		var severity BottleneckSeverity
		switch {
		case u.Utilization >= CriticalUtilizationThreshold:
			severity = SeverityCritical
		case u.Utilization >= HighUtilizationThreshold:
			severity = SeverityHigh
		case u.Utilization >= MediumUtilizationThreshold:
			severity = SeverityMedium
		default:
			severity = SeverityLow
		}

		out = append(out, Bottleneck{LinkUsage: u, Severity: severity})
	}
	return out
}
