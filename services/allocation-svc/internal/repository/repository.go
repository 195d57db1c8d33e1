// Package repository хранит историю запусков распределения.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"netalloc/pkg/apperror"
)

// ErrRunNotFound запуск не найден
var ErrRunNotFound = apperror.ErrRunNotFound

// Run модель сохранённого запуска
type Run struct {
	ID                string
	Name              string
	NodeCount         int
	LinkCount         int
	DemandCount       int
	MaxHops           int
	Coupling          string
	Success           bool
	Message           string
	AcceptanceRatio   float64
	RevenueCostRatio  float64
	TotalCombinations int64
	ValidCombinations int64
	DurationMs        float64
	TopologyHash      string
	RequestData       []byte // JSON сети
	ResultData        []byte // JSON результата
	CreatedAt         time.Time
}

// Summary returns the run without payloads.
func (r *Run) Summary() *RunSummary {
	return &RunSummary{
		ID:                r.ID,
		Name:              r.Name,
		NodeCount:         r.NodeCount,
		LinkCount:         r.LinkCount,
		DemandCount:       r.DemandCount,
		Success:           r.Success,
		AcceptanceRatio:   r.AcceptanceRatio,
		RevenueCostRatio:  r.RevenueCostRatio,
		TotalCombinations: r.TotalCombinations,
		DurationMs:        r.DurationMs,
		TopologyHash:      r.TopologyHash,
		CreatedAt:         r.CreatedAt,
	}
}

// RunSummary краткая информация о запуске
type RunSummary struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	NodeCount         int       `json:"nodeCount"`
	LinkCount         int       `json:"linkCount"`
	DemandCount       int       `json:"demandCount"`
	Success           bool      `json:"success"`
	AcceptanceRatio   float64   `json:"acceptanceRatio"`
	RevenueCostRatio  float64   `json:"revenueCostRatio"`
	TotalCombinations int64     `json:"totalCombinations"`
	DurationMs        float64   `json:"durationMs"`
	TopologyHash      string    `json:"topologyHash,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ListFilter фильтры для списка
type ListFilter struct {
	Success      *bool
	TopologyHash string
	Since        *time.Time
}

// SortOrder порядок сортировки
type SortOrder string

const (
	SortByCreatedDesc    SortOrder = "created_desc"
	SortByCreatedAsc     SortOrder = "created_asc"
	SortByAcceptanceDesc SortOrder = "acceptance_desc"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ListOptions опции для списка
type ListOptions struct {
	Limit  int
	Offset int
	Filter *ListFilter
	Sort   SortOrder
}

// normalize подставляет значения по умолчанию и ограничивает лимит
func (o *ListOptions) normalize() ListOptions {
	if o == nil {
		return ListOptions{Limit: DefaultListLimit, Sort: SortByCreatedDesc}
	}
	out := *o
	if out.Limit <= 0 {
		out.Limit = DefaultListLimit
	}
	if out.Limit > MaxListLimit {
		out.Limit = MaxListLimit
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	if out.Sort == "" {
		out.Sort = SortByCreatedDesc
	}
	return out
}

// RunRepository интерфейс хранилища запусков
type RunRepository interface {
	// Create сохраняет запуск. Пустой ID заполняется новым UUID.
	Create(ctx context.Context, run *Run) error
	GetByID(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context, opts *ListOptions) ([]*RunSummary, int64, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// prepare заполняет ID и проверяет формат
func prepare(run *Run) error {
	if run == nil {
		return apperror.New(apperror.CodeNilInput, "run is nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
		return nil
	}
	return validateID(run.ID)
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewWithField(apperror.CodeInvalidArgument, "run id must be a UUID", "id")
	}
	return nil
}
