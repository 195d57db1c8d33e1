package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"time"

	"netalloc/pkg/domain"
)

const allocationPrefix = "alloc:v1:"

// AllocationKey описывает входные данные, однозначно определяющие результат поиска
type AllocationKey struct {
	Capacity [][]float64
	Demands  []domain.Demand
	MaxHops  int
	Coupling string
}

// Hash возвращает канонический SHA-256 ключа. Числа кодируются побитово,
// поэтому 1.0 и 1.0000000001 дают разные ключи.
func (k AllocationKey) Hash() string {
	h := sha256.New()
	var buf [8]byte

	writeInt := func(v int64) {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	writeFloat := func(v float64) {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}

	writeInt(int64(len(k.Capacity)))
	for _, row := range k.Capacity {
		writeInt(int64(len(row)))
		for _, v := range row {
			writeFloat(v)
		}
	}

	writeInt(int64(len(k.Demands)))
	for _, d := range k.Demands {
		writeInt(int64(d.Source))
		writeInt(int64(d.Destination))
		writeFloat(d.Bandwidth)
	}

	maxHops := k.MaxHops
	if maxHops < 0 {
		maxHops = 0
	}
	writeInt(int64(maxHops))

	coupling := k.Coupling
	if coupling == "" {
		coupling = "reference"
	}
	h.Write([]byte(coupling))

	return hex.EncodeToString(h.Sum(nil))
}

// String возвращает полный ключ кэша
func (k AllocationKey) String() string {
	return allocationPrefix + k.Hash()
}

// CachedAllocation обёртка сохранённого результата
type CachedAllocation struct {
	Payload    json.RawMessage `json:"payload"`
	ComputedAt time.Time       `json:"computed_at"`
}

// AllocationCache кэш результатов поиска поверх любого бэкенда
type AllocationCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// NewAllocationCache создаёт кэш результатов распределения
func NewAllocationCache(c Cache, defaultTTL time.Duration) *AllocationCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &AllocationCache{cache: c, defaultTTL: defaultTTL}
}

// Get читает результат в out. Второе значение false означает промах.
func (ac *AllocationCache) Get(ctx context.Context, key AllocationKey, out any) (bool, error) {
	k := key.String()

	data, err := ac.cache.Get(ctx, k)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}

	var cached CachedAllocation
	if err := json.Unmarshal(data, &cached); err != nil || len(cached.Payload) == 0 {
		// повреждённая запись
		_ = ac.cache.Delete(ctx, k) //nolint:errcheck // best effort cleanup
		return false, nil
	}

	if err := json.Unmarshal(cached.Payload, out); err != nil {
		_ = ac.cache.Delete(ctx, k) //nolint:errcheck // best effort cleanup
		return false, nil
	}

	return true, nil
}

// Set сохраняет результат
func (ac *AllocationCache) Set(ctx context.Context, key AllocationKey, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ac.defaultTTL
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	data, err := json.Marshal(CachedAllocation{Payload: payload, ComputedAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	return ac.cache.Set(ctx, key.String(), data, ttl)
}

// Invalidate удаляет результат для конкретного входа
func (ac *AllocationCache) Invalidate(ctx context.Context, key AllocationKey) error {
	return ac.cache.Delete(ctx, key.String())
}

// Stats проксирует статистику бэкенда
func (ac *AllocationCache) Stats(ctx context.Context) (*Stats, error) {
	return ac.cache.Stats(ctx)
}
