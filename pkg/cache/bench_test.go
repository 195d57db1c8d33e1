package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"netalloc/pkg/domain"
)

func BenchmarkMemoryCache_SetGet(b *testing.B) {
	c := NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()
	value := make([]byte, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("key-%d", i%1000)
		_ = c.Set(ctx, key, value, time.Minute)
		_, _ = c.Get(ctx, key)
	}
}

func BenchmarkMemoryCache_Concurrent(b *testing.B) {
	c := NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()
	value := []byte("test-value")

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("key-%d", i%100)
			if i%4 == 0 {
				_ = c.Set(ctx, key, value, time.Minute)
			} else {
				_, _ = c.Get(ctx, key)
			}
			i++
		}
	})
}

func BenchmarkAllocationKey_Hash(b *testing.B) {
	const n = 30
	capacity := make([][]float64, n)
	for i := range capacity {
		capacity[i] = make([]float64, n)
		for j := range capacity[i] {
			if i != j {
				capacity[i][j] = float64((i*7+j*3)%20 + 1)
			}
		}
	}
	key := AllocationKey{
		Capacity: capacity,
		Demands:  []domain.Demand{{Source: 0, Destination: n - 1, Bandwidth: 5}},
		MaxHops:  4,
		Coupling: "reference",
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = key.Hash()
	}
}
