package domain

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// CapacityMatrix квадратная матрица пропускных способностей N×N.
// Нулевой размер допустим: gonum не создаёт пустые Dense, поэтому data == nil.
type CapacityMatrix struct {
	n    int
	data *mat.Dense
}

// NewCapacityMatrix создаёт нулевую матрицу n×n
func NewCapacityMatrix(n int) *CapacityMatrix {
	if n <= 0 {
		return &CapacityMatrix{}
	}
	return &CapacityMatrix{n: n, data: mat.NewDense(n, n, nil)}
}

// CapacityMatrixFromRows строит матрицу из строк. Строки должны образовывать квадрат.
func CapacityMatrixFromRows(rows [][]float64) (*CapacityMatrix, error) {
	n := len(rows)
	m := NewCapacityMatrix(n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), n)
		}
		for j, v := range row {
			m.data.Set(i, j, v)
		}
	}
	return m, nil
}

// Size возвращает число узлов
func (m *CapacityMatrix) Size() int {
	return m.n
}

// At возвращает пропускную способность канала i→j
func (m *CapacityMatrix) At(i, j int) float64 {
	return m.data.At(i, j)
}

// Set устанавливает пропускную способность канала i→j
func (m *CapacityMatrix) Set(i, j int, v float64) {
	m.data.Set(i, j, v)
}

// Add прибавляет delta к каналу i→j
func (m *CapacityMatrix) Add(i, j int, delta float64) {
	m.data.Set(i, j, m.data.At(i, j)+delta)
}

// Clone возвращает независимую копию
func (m *CapacityMatrix) Clone() *CapacityMatrix {
	if m.data == nil {
		return &CapacityMatrix{}
	}
	return &CapacityMatrix{n: m.n, data: mat.DenseCopyOf(m.data)}
}

// CopyFrom перезаписывает содержимое значениями src того же размера
func (m *CapacityMatrix) CopyFrom(src *CapacityMatrix) {
	if m.data == nil || src.data == nil {
		return
	}
	m.data.Copy(src.data)
}

// Sum возвращает сумму всех ячеек
func (m *CapacityMatrix) Sum() float64 {
	if m.data == nil {
		return 0
	}
	return mat.Sum(m.data)
}

// Scaled возвращает копию, умноженную на factor
func (m *CapacityMatrix) Scaled(factor float64) *CapacityMatrix {
	out := m.Clone()
	if out.data != nil {
		out.data.Scale(factor, out.data)
	}
	return out
}

// Equal сравнивает матрицы поэлементно
func (m *CapacityMatrix) Equal(other *CapacityMatrix) bool {
	if m.n != other.n {
		return false
	}
	if m.data == nil {
		return true
	}
	return mat.Equal(m.data, other.data)
}

// EqualApprox сравнивает матрицы с допуском tol
func (m *CapacityMatrix) EqualApprox(other *CapacityMatrix, tol float64) bool {
	if m.n != other.n {
		return false
	}
	if m.data == nil {
		return true
	}
	return mat.EqualApprox(m.data, other.data, tol)
}

// Rows возвращает матрицу в виде срезов
func (m *CapacityMatrix) Rows() [][]float64 {
	rows := make([][]float64, m.n)
	for i := 0; i < m.n; i++ {
		rows[i] = mat.Row(nil, i, m.data)
	}
	return rows
}
