package domain

import (
	"math"
	"testing"

	"netalloc/pkg/apperror"
)

func TestPath(t *testing.T) {
	p := Path{0, 1, 2}

	if p.Hops() != 2 {
		t.Errorf("expected 2 hops, got %d", p.Hops())
	}
	if p.Source() != 0 || p.Destination() != 2 {
		t.Error("unexpected endpoints")
	}
	if !p.Contains(1) || p.Contains(3) {
		t.Error("Contains mismatch")
	}
	if p.String() != "0 -> 1 -> 2" {
		t.Errorf("unexpected String(): %s", p.String())
	}
	if p.Format(IndexBaseOne) != "1 -> 2 -> 3" {
		t.Errorf("unexpected Format(1): %s", p.Format(IndexBaseOne))
	}
	if CostProxy(5, p) != 10 {
		t.Errorf("expected cost proxy 10, got %v", CostProxy(5, p))
	}

	c := p.Clone()
	c[0] = 9
	if p[0] != 0 {
		t.Error("clone must be independent")
	}
	if p.Equal(c) || !p.Equal(Path{0, 1, 2}) {
		t.Error("Equal mismatch")
	}
	if (Path{}).Hops() != 0 {
		t.Error("empty path has no hops")
	}
}

func TestDemand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		demand  Demand
		wantErr bool
	}{
		{"positive", Demand{0, 1, 5}, false},
		{"zero", Demand{0, 1, 0}, true},
		{"negative", Demand{0, 1, -1}, true},
		{"nan", Demand{0, 1, math.NaN()}, true},
		{"out of range nodes are not an error", Demand{7, 9, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.demand.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDemands(t *testing.T) {
	err := ValidateDemands([]Demand{{0, 1, 1}, {0, 1, -2}})
	if !apperror.Is(err, apperror.CodeInvalidDemand) {
		t.Fatalf("expected INVALID_DEMAND, got %v", err)
	}

	var appErr *apperror.Error
	appErr, _ = err.(*apperror.Error)
	if appErr.Field != "demands[1].bandwidth" {
		t.Errorf("unexpected field %q", appErr.Field)
	}

	if TotalBandwidth([]Demand{{0, 1, 1.5}, {1, 0, 2}}) != 3.5 {
		t.Error("unexpected total bandwidth")
	}
}

func TestDemand_InRange(t *testing.T) {
	if !(Demand{0, 2, 1}).InRange(3) {
		t.Error("expected in range")
	}
	if (Demand{-1, 2, 1}).InRange(3) || (Demand{0, 3, 1}).InRange(3) {
		t.Error("expected out of range")
	}
}

func TestFindBottlenecks(t *testing.T) {
	topo, _ := NewTopology([][]float64{
		{0, 10, 10},
		{0, 0, 0},
		{0, 0, 0},
	})
	live := topo.Original()
	live.Set(0, 1, 0) // fully used
	live.Set(0, 2, 5) // half used

	usages := LinkUsages(topo, live)
	if len(usages) != 2 {
		t.Fatalf("expected 2 links, got %d", len(usages))
	}
	if !FloatEquals(usages[1].Utilization, 0.5) {
		t.Errorf("expected 0.5 utilization, got %v", usages[1].Utilization)
	}

	bottlenecks := FindBottlenecks(topo, live, DefaultBottleneckThreshold)
	if len(bottlenecks) != 1 {
		t.Fatalf("expected 1 bottleneck, got %d", len(bottlenecks))
	}
	if bottlenecks[0].To != 1 || bottlenecks[0].Severity != SeverityCritical {
		t.Errorf("unexpected bottleneck %+v", bottlenecks[0])
	}
	if SeverityCritical.String() != "critical" {
		t.Error("unexpected severity string")
	}
}
