package domain

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"netalloc/pkg/apperror"
)

// Topology неизменяемая топология сети: исходная матрица пропускных
// способностей, производная смежность и агрегаты, вычисленные при создании.
// Живая (изменяемая) матрица принадлежит движку распределения.
type Topology struct {
	original  *CapacityMatrix
	adjacency [][]bool
	neighbors [][]int
	graph     *simple.DirectedGraph

	totalLinks    int
	totalCapacity float64
	connected     bool
}

// NewTopology проверяет матрицу и строит топологию.
// Диагональ обнуляется: петли не имеют смысла.
func NewTopology(rows [][]float64) (*Topology, error) {
	n := len(rows)
	for i, row := range rows {
		if len(row) != n {
			return nil, apperror.Newf(apperror.CodeInvalidTopology,
				"capacity matrix must be square: row %d has %d cells, want %d", i, len(row), n).
				WithField(fmt.Sprintf("capacity[%d]", i))
		}
		for j, v := range row {
			if !IsFinite(v) {
				return nil, apperror.NewWithField(apperror.CodeInvalidCapacity,
					"capacity must be a finite number", cellField(i, j))
			}
			if v < 0 {
				return nil, apperror.NewWithField(apperror.CodeNegativeCapacity,
					fmt.Sprintf("capacity must be non-negative, got %g", v), cellField(i, j))
			}
		}
	}

	m, err := CapacityMatrixFromRows(rows)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidTopology, err.Error())
	}
	for i := 0; i < n; i++ {
		m.Set(i, i, 0)
	}

	return newTopology(m), nil
}

// NewTopologyFromMatrix строит топологию из готовой матрицы (матрица копируется)
func NewTopologyFromMatrix(m *CapacityMatrix) (*Topology, error) {
	if m == nil {
		return nil, apperror.ErrNilTopology
	}
	return NewTopology(m.Rows())
}

func newTopology(m *CapacityMatrix) *Topology {
	n := m.Size()
	t := &Topology{
		original:  m,
		adjacency: make([][]bool, n),
		neighbors: make([][]int, n),
		graph:     simple.NewDirectedGraph(),
	}

	for i := 0; i < n; i++ {
		t.graph.AddNode(simple.Node(i))
	}

	adjacent := 0
	for i := 0; i < n; i++ {
		t.adjacency[i] = make([]bool, n)
		for j := 0; j < n; j++ {
			if m.At(i, j) > 0 {
				t.adjacency[i][j] = true
				t.neighbors[i] = append(t.neighbors[i], j)
				t.graph.SetEdge(t.graph.NewEdge(simple.Node(i), simple.Node(j)))
				adjacent++
			}
		}
	}

	t.totalLinks = adjacent / 2
	t.totalCapacity = m.Sum()
	t.connected = t.reachableFrom(0) == n

	return t
}

// reachableFrom считает узлы, достижимые из start обходом в глубину
func (t *Topology) reachableFrom(start int) int {
	n := t.Nodes()
	if n <= 1 {
		return n
	}

	visited := 0
	dfs := traverse.DepthFirst{
		Visit: func(graph.Node) { visited++ },
	}
	dfs.Walk(t.graph, simple.Node(start), nil)

	return visited
}

// Nodes возвращает число узлов
func (t *Topology) Nodes() int {
	return t.original.Size()
}

// HasNode проверяет, что id является допустимым номером узла
func (t *Topology) HasNode(id int) bool {
	return id >= 0 && id < t.Nodes()
}

// Adjacent сообщает, есть ли канал i→j в исходной топологии
func (t *Topology) Adjacent(i, j int) bool {
	return t.adjacency[i][j]
}

// Neighbors возвращает соседей узла в порядке возрастания номеров
func (t *Topology) Neighbors(i int) []int {
	return t.neighbors[i]
}

// OriginalAt возвращает исходную пропускную способность канала i→j
func (t *Topology) OriginalAt(i, j int) float64 {
	return t.original.At(i, j)
}

// Original возвращает копию исходной матрицы
func (t *Topology) Original() *CapacityMatrix {
	return t.original.Clone()
}

// TotalLinks число каналов, матрица считается неориентированной
func (t *Topology) TotalLinks() int {
	return t.totalLinks
}

// TotalCapacity суммарная исходная пропускная способность
func (t *Topology) TotalCapacity() float64 {
	return t.totalCapacity
}

// Connected сообщает, достижимы ли все узлы из узла 0
func (t *Topology) Connected() bool {
	return t.connected
}

// HasPath проверяет достижимость dst из src обходом в ширину по графу смежности.
// Граф только читается, поэтому метод безопасен для параллельных вызовов.
func (t *Topology) HasPath(src, dst int) bool {
	if !t.HasNode(src) || !t.HasNode(dst) {
		return false
	}
	if src == dst {
		return true
	}

	var bfs traverse.BreadthFirst
	found := bfs.Walk(t.graph, simple.Node(src), func(n graph.Node, _ int) bool {
		return n.ID() == int64(dst)
	})
	return found != nil
}

// Scaled возвращает топологию с пропускными способностями, умноженными на factor
func (t *Topology) Scaled(factor float64) *Topology {
	return newTopology(t.original.Scaled(factor))
}

func cellField(i, j int) string {
	return fmt.Sprintf("capacity[%d][%d]", i, j)
}
