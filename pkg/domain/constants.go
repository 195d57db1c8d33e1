package domain

import "math"

// Математические константы
const (
	Epsilon  = 1e-9
	Infinity = math.MaxFloat64
)

// Пороги загрузки каналов
const (
	DefaultBottleneckThreshold   = 0.9
	CriticalUtilizationThreshold = 0.99
	HighUtilizationThreshold     = 0.95
	MediumUtilizationThreshold   = 0.90
)

// Базы нумерации узлов во входных данных
const (
	IndexBaseZero = 0
	IndexBaseOne  = 1
)

// FloatEquals сравнивает два float64 с учётом Epsilon
func FloatEquals(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// IsZero проверяет, равно ли значение нулю
func IsZero(v float64) bool {
	return math.Abs(v) < Epsilon
}

// IsFinite проверяет, что значение не NaN и не бесконечность
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
