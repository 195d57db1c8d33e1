package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netalloc/pkg/domain"
)

type fakeResult struct {
	Allocated []int     `json:"allocated"`
	Ratio     float64   `json:"ratio"`
	Remaining []float64 `json:"remaining"`
}

func sampleKey() AllocationKey {
	return AllocationKey{
		Capacity: [][]float64{{0, 5}, {5, 0}},
		Demands:  []domain.Demand{{Source: 0, Destination: 1, Bandwidth: 3}},
		MaxHops:  2,
		Coupling: "reference",
	}
}

func TestAllocationKey_Deterministic(t *testing.T) {
	assert.Equal(t, sampleKey().Hash(), sampleKey().Hash())
	assert.Len(t, sampleKey().Hash(), 64)
	assert.Contains(t, sampleKey().String(), "alloc:v1:")
}

func TestAllocationKey_SensitiveToEveryField(t *testing.T) {
	base := sampleKey().Hash()

	k := sampleKey()
	k.Capacity[0][1] = 5.0000001
	assert.NotEqual(t, base, k.Hash(), "capacity")

	k = sampleKey()
	k.Demands[0].Bandwidth = 4
	assert.NotEqual(t, base, k.Hash(), "bandwidth")

	k = sampleKey()
	k.Demands = append(k.Demands, domain.Demand{Source: 1, Destination: 0, Bandwidth: 1})
	assert.NotEqual(t, base, k.Hash(), "demand count")

	k = sampleKey()
	k.MaxHops = 1
	assert.NotEqual(t, base, k.Hash(), "max hops")

	k = sampleKey()
	k.Coupling = "directed"
	assert.NotEqual(t, base, k.Hash(), "coupling")
}

func TestAllocationKey_Normalization(t *testing.T) {
	k := sampleKey()
	k.Coupling = ""
	assert.Equal(t, sampleKey().Hash(), k.Hash(), "empty coupling is reference")

	a, b := sampleKey(), sampleKey()
	a.MaxHops, b.MaxHops = 0, -3
	assert.Equal(t, a.Hash(), b.Hash(), "negative max hops means unbounded")
}

func TestAllocationCache_RoundTrip(t *testing.T) {
	mem := NewMemoryCache(nil)
	defer mem.Close()

	ac := NewAllocationCache(mem, time.Minute)
	ctx := context.Background()

	var out fakeResult
	hit, err := ac.Get(ctx, sampleKey(), &out)
	require.NoError(t, err)
	assert.False(t, hit)

	in := fakeResult{Allocated: []int{0}, Ratio: 1, Remaining: []float64{0, 2, 2, 0}}
	require.NoError(t, ac.Set(ctx, sampleKey(), in, 0))

	hit, err = ac.Get(ctx, sampleKey(), &out)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, in, out)
}

func TestAllocationCache_CorruptedEntryIsDropped(t *testing.T) {
	mem := NewMemoryCache(nil)
	defer mem.Close()

	ac := NewAllocationCache(mem, 0)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, sampleKey().String(), []byte("{not json"), 0))

	var out fakeResult
	hit, err := ac.Get(ctx, sampleKey(), &out)
	require.NoError(t, err)
	assert.False(t, hit)

	exists, _ := mem.Exists(ctx, sampleKey().String())
	assert.False(t, exists)
}

func TestAllocationCache_Invalidate(t *testing.T) {
	mem := NewMemoryCache(nil)
	defer mem.Close()

	ac := NewAllocationCache(mem, time.Minute)
	ctx := context.Background()

	other := sampleKey()
	other.MaxHops = 5

	require.NoError(t, ac.Set(ctx, sampleKey(), fakeResult{}, 0))
	require.NoError(t, ac.Set(ctx, other, fakeResult{}, 0))
	require.NoError(t, mem.Set(ctx, "unrelated", []byte("x"), 0))

	require.NoError(t, ac.Invalidate(ctx, sampleKey()))
	var out fakeResult
	hit, _ := ac.Get(ctx, sampleKey(), &out)
	assert.False(t, hit)

	hit, _ = ac.Get(ctx, other, &out)
	assert.True(t, hit)

	stats, err := ac.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalKeys)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}
