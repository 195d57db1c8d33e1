// Package input читает описание сети (матрица пропускных способностей и
// список запросов) из YAML, JSON, TOML и XLSX и приводит его к виду,
// с которым работает движок: узлы с нуля, только положительные полосы.
package input

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"netalloc/pkg/apperror"
	"netalloc/pkg/domain"
)

// Document описание сети в том виде, в каком оно лежит в файле или приходит в запросе.
// Ячейки матрицы и полосы могут быть числами, числовыми строками, пустыми строками или null.
type Document struct {
	Name      string        `json:"name,omitempty" yaml:"name" toml:"name"`
	IndexBase *int          `json:"index_base,omitempty" yaml:"index_base" toml:"index_base"`
	Capacity  [][]any       `json:"capacity" yaml:"capacity" toml:"capacity"`
	Demands   []DemandEntry `json:"demands" yaml:"demands" toml:"demands"`
}

// DemandEntry строка списка запросов в нумерации документа
type DemandEntry struct {
	Source      int `json:"source" yaml:"source" toml:"source"`
	Destination int `json:"destination" yaml:"destination" toml:"destination"`
	Bandwidth   any `json:"bandwidth" yaml:"bandwidth" toml:"bandwidth"`
}

// DroppedDemand запрос, отброшенный при чтении
type DroppedDemand struct {
	Position    int     `json:"position"` // с единицы, в порядке документа
	Source      int     `json:"source"`
	Destination int     `json:"destination"`
	Bandwidth   float64 `json:"bandwidth"`
	Reason      string  `json:"reason"`
}

// Network разобранная сеть. Demands в нумерации с нуля.
type Network struct {
	Name      string          `json:"name,omitempty"`
	IndexBase int             `json:"index_base"`
	Capacity  [][]float64     `json:"capacity"`
	Demands   []domain.Demand `json:"demands"`
	Dropped   []DroppedDemand `json:"dropped,omitempty"`
}

// Topology строит топологию по матрице сети
func (n *Network) Topology() (*domain.Topology, error) {
	return domain.NewTopology(n.Capacity)
}

// Nodes число узлов
func (n *Network) Nodes() int {
	return len(n.Capacity)
}

// FromDocument проверяет документ и переводит его в Network
func FromDocument(doc *Document) (*Network, error) {
	if doc == nil {
		return nil, apperror.New(apperror.CodeNilInput, "network document is nil")
	}

	base := domain.IndexBaseOne
	if doc.IndexBase != nil {
		base = *doc.IndexBase
	}
	if base != domain.IndexBaseZero && base != domain.IndexBaseOne {
		return nil, apperror.NewWithField(apperror.CodeInvalidArgument,
			fmt.Sprintf("index_base must be 0 or 1, got %d", base), "index_base")
	}

	capacity, err := parseMatrix(doc.Capacity)
	if err != nil {
		return nil, err
	}

	net := &Network{
		Name:      doc.Name,
		IndexBase: base,
		Capacity:  capacity,
		Demands:   make([]domain.Demand, 0, len(doc.Demands)),
	}

	for i, d := range doc.Demands {
		bw, err := bandwidthValue(d.Bandwidth)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInvalidDemand, err.Error()).
				WithField(fmt.Sprintf("demands[%d].bandwidth", i))
		}

		if bw <= 0 {
			net.Dropped = append(net.Dropped, DroppedDemand{
				Position:    i + 1,
				Source:      d.Source,
				Destination: d.Destination,
				Bandwidth:   bw,
				Reason:      "bandwidth must be positive",
			})
			continue
		}

		net.Demands = append(net.Demands, domain.Demand{
			Source:      d.Source - base,
			Destination: d.Destination - base,
			Bandwidth:   bw,
		})
	}

	return net, nil
}

// ToDocument обратное преобразование: матрица числами, запросы в нумерации base
func (n *Network) ToDocument() *Document {
	base := n.IndexBase
	doc := &Document{
		Name:      n.Name,
		IndexBase: &base,
		Capacity:  make([][]any, len(n.Capacity)),
		Demands:   make([]DemandEntry, len(n.Demands)),
	}
	for i, row := range n.Capacity {
		doc.Capacity[i] = make([]any, len(row))
		for j, v := range row {
			doc.Capacity[i][j] = v
		}
	}
	for i, d := range n.Demands {
		doc.Demands[i] = DemandEntry{
			Source:      d.Source + base,
			Destination: d.Destination + base,
			Bandwidth:   d.Bandwidth,
		}
	}
	return doc
}

func parseMatrix(rows [][]any) ([][]float64, error) {
	n := len(rows)
	out := make([][]float64, n)

	for i, row := range rows {
		if len(row) != n {
			return nil, apperror.Newf(apperror.CodeInvalidTopology,
				"capacity matrix must be square: row %d has %d cells, want %d", i, len(row), n).
				WithField(fmt.Sprintf("capacity[%d]", i))
		}

		out[i] = make([]float64, n)
		for j, cell := range row {
			v, err := cellValue(cell)
			if err != nil {
				return nil, apperror.NewWithField(apperror.CodeInvalidCapacity,
					err.Error(), fmt.Sprintf("capacity[%d][%d]", i, j))
			}
			out[i][j] = v
		}
	}

	return out, nil
}

// cellValue приводит ячейку матрицы к числу. Пустая ячейка равна нулю.
func cellValue(cell any) (float64, error) {
	v, err := number(cell)
	if err != nil {
		return 0, err
	}
	if !domain.IsFinite(v) {
		return 0, fmt.Errorf("capacity must be a finite number")
	}
	if v < 0 {
		return 0, fmt.Errorf("capacity must be non-negative, got %g", v)
	}
	return v, nil
}

func bandwidthValue(raw any) (float64, error) {
	v, err := number(raw)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("bandwidth must be a finite number")
	}
	return v, nil
}

func number(raw any) (float64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported value %v of type %T", raw, raw)
	}
}
