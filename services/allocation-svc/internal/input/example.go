package input

import (
	"netalloc/pkg/domain"
)

// ExampleName имя встроенной сети
const ExampleName = "example-5-node"

// Example возвращает встроенную сеть из 5 узлов: симметричные каналы
// 1-2:12, 2-3:10, 2-4:7, 3-5:8, 4-5:6 и два запроса 1→5 (8 и 4).
func Example() *Network {
	links := []struct {
		a, b     int
		capacity float64
	}{
		{1, 2, 12},
		{2, 3, 10},
		{2, 4, 7},
		{3, 5, 8},
		{4, 5, 6},
	}

	capacity := make([][]float64, 5)
	for i := range capacity {
		capacity[i] = make([]float64, 5)
	}
	for _, l := range links {
		capacity[l.a-1][l.b-1] = l.capacity
		capacity[l.b-1][l.a-1] = l.capacity
	}

	return &Network{
		Name:      ExampleName,
		IndexBase: domain.IndexBaseOne,
		Capacity:  capacity,
		Demands: []domain.Demand{
			{Source: 0, Destination: 4, Bandwidth: 8},
			{Source: 0, Destination: 4, Bandwidth: 4},
		},
	}
}
