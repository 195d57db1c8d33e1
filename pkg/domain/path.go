package domain

import (
	"strconv"
	"strings"
)

// Path простой путь: последовательность различных узлов от источника к приёмнику
type Path []int

// Hops возвращает число каналов пути
func (p Path) Hops() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Source первый узел пути
func (p Path) Source() int {
	return p[0]
}

// Destination последний узел пути
func (p Path) Destination() int {
	return p[len(p)-1]
}

// Clone возвращает копию пути
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Equal сравнивает пути поэлементно
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Contains проверяет, проходит ли путь через узел
func (p Path) Contains(node int) bool {
	for _, n := range p {
		if n == node {
			return true
		}
	}
	return false
}

// Format выводит путь вида "1 -> 2 -> 3" с заданной базой нумерации
func (p Path) Format(base int) string {
	parts := make([]string, len(p))
	for i, n := range p {
		parts[i] = strconv.Itoa(n + base)
	}
	return strings.Join(parts, " -> ")
}

// String выводит путь с нумерацией с нуля
func (p Path) String() string {
	return p.Format(IndexBaseZero)
}

// CostProxy стоимость пути в условных единицах: полоса × число каналов
func CostProxy(bandwidth float64, p Path) float64 {
	return bandwidth * float64(p.Hops())
}
