package report

import (
	"context"
	"encoding/json"
	"time"

	"netalloc/pkg/domain"
	"netalloc/services/allocation-svc/internal/engine"
	"netalloc/services/allocation-svc/internal/input"
	"netalloc/services/allocation-svc/internal/kpi"
)

// JSONGenerator генератор JSON отчётов
type JSONGenerator struct {
	BaseGenerator
}

// NewJSONGenerator создаёт новый генератор
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

// Format возвращает формат генератора
func (g *JSONGenerator) Format() Format {
	return FormatJSON
}

// JSONReport структура JSON отчёта. Номера узлов и запросов с нуля.
type JSONReport struct {
	Metadata    JSONMetadata          `json:"metadata"`
	Network     *JSONNetwork          `json:"network,omitempty"`
	Result      *engine.SearchResult  `json:"result,omitempty"`
	Status      engine.NetworkStatus  `json:"status"`
	Summary     kpi.Summary           `json:"summary"`
	Bottlenecks []domain.Bottleneck   `json:"bottlenecks,omitempty"`
	Dropped     []input.DroppedDemand `json:"dropped,omitempty"`
	Diagnostics *input.Report         `json:"diagnostics,omitempty"`
}

type JSONMetadata struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	GeneratedAt string `json:"generatedAt"`
	IndexBase   int    `json:"indexBase"`
}

type JSONNetwork struct {
	Nodes         int             `json:"nodes"`
	Links         int             `json:"links"`
	TotalCapacity float64         `json:"totalCapacity"`
	Connected     bool            `json:"connected"`
	Demands       []domain.Demand `json:"demands"`
}

// Generate генерирует JSON отчёт
func (g *JSONGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	report := JSONReport{
		Metadata: JSONMetadata{
			Title:       g.GetTitle(data),
			Author:      g.GetAuthor(data),
			Description: g.GetDescription(data),
			GeneratedAt: g.GeneratedAt(data).Format(time.RFC3339),
			IndexBase:   data.IndexBase,
		},
		Result:      data.Result,
		Status:      data.Status,
		Summary:     data.Summary,
		Bottlenecks: data.Bottlenecks,
		Dropped:     data.Dropped,
		Diagnostics: data.Diagnostics,
	}

	if t := data.Topology; t != nil {
		report.Network = &JSONNetwork{
			Nodes:         t.Nodes(),
			Links:         t.TotalLinks(),
			TotalCapacity: t.TotalCapacity(),
			Connected:     t.Connected(),
			Demands:       data.Demands,
		}
	}

	return json.MarshalIndent(report, "", "  ")
}
