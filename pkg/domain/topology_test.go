package domain

import (
	"math"
	"sync"
	"testing"

	"netalloc/pkg/apperror"
)

func lineRows() [][]float64 {
	return [][]float64{
		{0, 10, 0},
		{0, 0, 10},
		{0, 0, 0},
	}
}

func TestNewTopology(t *testing.T) {
	topo, err := NewTopology(lineRows())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if topo.Nodes() != 3 {
		t.Errorf("expected 3 nodes, got %d", topo.Nodes())
	}
	if topo.TotalCapacity() != 20 {
		t.Errorf("expected total capacity 20, got %v", topo.TotalCapacity())
	}
	// 2 directed entries / 2
	if topo.TotalLinks() != 1 {
		t.Errorf("expected 1 link, got %d", topo.TotalLinks())
	}
	if !topo.Adjacent(0, 1) || topo.Adjacent(1, 0) {
		t.Error("adjacency must follow capacity > 0")
	}
	if !topo.Connected() {
		t.Error("expected line topology to be connected from node 0")
	}
}

func TestNewTopology_Invalid(t *testing.T) {
	tests := []struct {
		name string
		rows [][]float64
		code apperror.ErrorCode
	}{
		{"ragged", [][]float64{{0, 1}, {1}}, apperror.CodeInvalidTopology},
		{"not square", [][]float64{{0, 1, 2}, {1, 0, 2}}, apperror.CodeInvalidTopology},
		{"negative", [][]float64{{0, -1}, {1, 0}}, apperror.CodeNegativeCapacity},
		{"nan", [][]float64{{0, math.NaN()}, {1, 0}}, apperror.CodeInvalidCapacity},
		{"inf", [][]float64{{0, math.Inf(1)}, {1, 0}}, apperror.CodeInvalidCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTopology(tt.rows)
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperror.Is(err, tt.code) {
				t.Errorf("expected code %s, got %v", tt.code, err)
			}
		})
	}
}

func TestNewTopology_DiagonalIgnored(t *testing.T) {
	topo, err := NewTopology([][]float64{{5, 1}, {1, 7}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if topo.OriginalAt(0, 0) != 0 || topo.OriginalAt(1, 1) != 0 {
		t.Error("diagonal must be zeroed")
	}
	if topo.TotalCapacity() != 2 {
		t.Errorf("expected total capacity 2, got %v", topo.TotalCapacity())
	}
}

func TestTopology_Connected(t *testing.T) {
	tests := []struct {
		name string
		rows [][]float64
		want bool
	}{
		{"empty", [][]float64{}, true},
		{"single node", [][]float64{{0}}, true},
		{"isolated node", [][]float64{{0, 5, 0}, {5, 0, 0}, {0, 0, 0}}, false},
		{"reachable only backwards", [][]float64{{0, 0}, {3, 0}}, false},
		{"ring", [][]float64{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo, err := NewTopology(tt.rows)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := topo.Connected(); got != tt.want {
				t.Errorf("Connected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopology_HasPath(t *testing.T) {
	line, _ := NewTopology(lineRows())
	// два компонента: {0,1} и {2,3}
	split, _ := NewTopology([][]float64{
		{0, 5, 0, 0},
		{5, 0, 0, 0},
		{0, 0, 0, 7},
		{0, 0, 7, 0},
	})
	empty, _ := NewTopology([][]float64{})

	tests := []struct {
		name     string
		topo     *Topology
		src, dst int
		want     bool
	}{
		{"line forward", line, 0, 2, true},
		{"directed edges", line, 2, 0, false},
		{"out of range destination", line, 0, 5, false},
		{"negative source", line, -1, 2, false},
		{"node reaches itself", line, 1, 1, true},
		{"same component", split, 3, 2, true},
		{"other component", split, 0, 3, false},
		{"other component reversed", split, 2, 1, false},
		{"empty topology", empty, 0, 0, false},
		{"scaled keeps links", line.Scaled(2), 0, 2, true},
		{"scaled to zero drops links", line.Scaled(0), 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.topo.HasPath(tt.src, tt.dst); got != tt.want {
				t.Errorf("HasPath(%d, %d) = %v, want %v", tt.src, tt.dst, got, tt.want)
			}
		})
	}
}

func TestTopology_HasPathConcurrent(t *testing.T) {
	topo, _ := NewTopology(lineRows())

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !topo.HasPath(0, 2) || topo.HasPath(2, 0) {
				errs <- "inconsistent HasPath under concurrent calls"
			}
		}()
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
}

func TestTopology_Neighbors(t *testing.T) {
	topo, _ := NewTopology([][]float64{
		{0, 1, 0, 1},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	got := topo.Neighbors(0)
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("expected ascending neighbors [1 3], got %v", got)
	}
}

func TestTopology_OriginalIsCopy(t *testing.T) {
	topo, _ := NewTopology(lineRows())

	m := topo.Original()
	m.Set(0, 1, 0)

	if topo.OriginalAt(0, 1) != 10 {
		t.Error("mutating the returned matrix must not touch the topology")
	}
}

func TestTopology_Scaled(t *testing.T) {
	topo, _ := NewTopology(lineRows())
	scaled := topo.Scaled(2)

	if scaled.TotalCapacity() != 40 {
		t.Errorf("expected 40, got %v", scaled.TotalCapacity())
	}
	if topo.TotalCapacity() != 20 {
		t.Error("scaling must not touch the source topology")
	}
}

func TestCapacityMatrix(t *testing.T) {
	m, err := CapacityMatrixFromRows([][]float64{{0, 2}, {3, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := m.Clone()
	c.Add(0, 1, -2)

	if m.At(0, 1) != 2 {
		t.Error("clone must be independent")
	}
	if c.Sum() != 3 {
		t.Errorf("expected sum 3, got %v", c.Sum())
	}
	if m.Equal(c) {
		t.Error("matrices differ")
	}

	c.CopyFrom(m)
	if !m.Equal(c) {
		t.Error("CopyFrom must restore values")
	}

	if _, err := CapacityMatrixFromRows([][]float64{{1, 2}}); err == nil {
		t.Error("expected error for non-square rows")
	}
}

func TestCapacityMatrix_Empty(t *testing.T) {
	m := NewCapacityMatrix(0)

	if m.Size() != 0 || m.Sum() != 0 {
		t.Error("empty matrix must have zero size and sum")
	}
	if !m.Equal(m.Clone()) {
		t.Error("empty matrices are equal")
	}
	if len(m.Rows()) != 0 {
		t.Error("empty matrix has no rows")
	}
}
