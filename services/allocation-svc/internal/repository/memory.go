package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRunRepository хранит запуски в памяти процесса, когда база отключена
type MemoryRunRepository struct {
	mu       sync.RWMutex
	runs     map[string]*Run
	order    []string // по времени вставки
	maxItems int
	now      func() time.Time
}

// NewMemoryRunRepository создаёт репозиторий в памяти
func NewMemoryRunRepository(maxItems int) *MemoryRunRepository {
	return &MemoryRunRepository{
		runs:     make(map[string]*Run),
		maxItems: maxItems,
		now:      time.Now,
	}
}

func (r *MemoryRunRepository) Create(ctx context.Context, run *Run) error {
	if err := prepare(run); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; ok {
		r.remove(run.ID)
	}

	run.CreatedAt = r.now().UTC()
	stored := *run
	r.runs[run.ID] = &stored
	r.order = append(r.order, run.ID)

	for r.maxItems > 0 && len(r.order) > r.maxItems {
		delete(r.runs, r.order[0])
		r.order = r.order[1:]
	}

	return nil
}

func (r *MemoryRunRepository) GetByID(ctx context.Context, id string) (*Run, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	out := *run
	return &out, nil
}

func (r *MemoryRunRepository) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[id]; !ok {
		return ErrRunNotFound
	}
	r.remove(id)
	return nil
}

func (r *MemoryRunRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.runs)), nil
}

func (r *MemoryRunRepository) List(ctx context.Context, opts *ListOptions) ([]*RunSummary, int64, error) {
	o := opts.normalize()

	r.mu.RLock()
	var matched []*RunSummary
	// order хранит порядок вставки, его и берём за created_at при равных метках
	for i := len(r.order) - 1; i >= 0; i-- {
		run := r.runs[r.order[i]]
		if matches(run, o.Filter) {
			matched = append(matched, run.Summary())
		}
	}
	r.mu.RUnlock()

	switch o.Sort {
	case SortByCreatedAsc:
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	case SortByAcceptanceDesc:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].AcceptanceRatio > matched[j].AcceptanceRatio
		})
	}

	total := int64(len(matched))
	if o.Offset >= len(matched) {
		return nil, total, nil
	}
	end := o.Offset + o.Limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[o.Offset:end], total, nil
}

func (r *MemoryRunRepository) remove(id string) {
	delete(r.runs, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func matches(run *Run, f *ListFilter) bool {
	if f == nil {
		return true
	}
	if f.Success != nil && run.Success != *f.Success {
		return false
	}
	if f.TopologyHash != "" && run.TopologyHash != f.TopologyHash {
		return false
	}
	if f.Since != nil && run.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}

var (
	_ RunRepository = (*PostgresRunRepository)(nil)
	_ RunRepository = (*MemoryRunRepository)(nil)
)
