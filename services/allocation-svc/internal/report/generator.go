// Package report формирует отчёты по результату распределения в текстовом,
// Markdown, CSV, JSON, XLSX и PDF форматах.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"netalloc/pkg/apperror"
	"netalloc/pkg/domain"
	"netalloc/services/allocation-svc/internal/engine"
	"netalloc/services/allocation-svc/internal/input"
	"netalloc/services/allocation-svc/internal/kpi"
)

// Format формат отчёта
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatXLSX     Format = "xlsx"
	FormatPDF      Format = "pdf"
)

// Formats все поддерживаемые форматы
var Formats = []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON, FormatXLSX, FormatPDF}

// ParseFormat разбирает имя формата, допускает синонимы
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", apperror.Newf(apperror.CodeUnsupportedFormat, "unsupported report format %q", s)
	}
}

// Extension расширение файла для формата
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return ".txt"
	case FormatMarkdown:
		return ".md"
	default:
		return "." + string(f)
	}
}

// ContentType MIME тип для формата
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Options параметры оформления
type Options struct {
	Title          string
	Author         string
	Description    string
	IncludeDetails bool
}

// Data данные для генерации отчёта. Номера узлов и запросов в отчёте
// выводятся в нумерации IndexBase.
type Data struct {
	Name      string
	IndexBase int
	Options   Options

	Topology    *domain.Topology
	Demands     []domain.Demand
	Dropped     []input.DroppedDemand
	Diagnostics *input.Report

	Result      *engine.SearchResult
	Status      engine.NetworkStatus
	Summary     kpi.Summary
	Bottlenecks []domain.Bottleneck

	GeneratedAt time.Time
}

// Generator интерфейс генератора отчётов
type Generator interface {
	Generate(ctx context.Context, data *Data) ([]byte, error)
	Format() Format
}

// NewGenerator возвращает генератор для формата
func NewGenerator(format Format) (Generator, error) {
	switch format {
	case FormatText:
		return NewTextGenerator(), nil
	case FormatMarkdown:
		return NewMarkdownGenerator(), nil
	case FormatCSV:
		return NewCSVGenerator(), nil
	case FormatJSON:
		return NewJSONGenerator(), nil
	case FormatXLSX:
		return NewExcelGenerator(), nil
	case FormatPDF:
		return NewPDFGenerator(), nil
	default:
		return nil, apperror.Newf(apperror.CodeUnsupportedFormat, "unsupported report format %q", format)
	}
}

// Generate формирует отчёт в указанном формате
func Generate(ctx context.Context, format Format, data *Data) ([]byte, error) {
	if data == nil {
		return nil, apperror.New(apperror.CodeNilInput, "report data is nil")
	}
	g, err := NewGenerator(format)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, apperror.FromContext(ctx)
	}
	return g.Generate(ctx, data)
}

// BaseGenerator общие утилиты генераторов
type BaseGenerator struct{}

// GetTitle возвращает заголовок отчёта
func (b *BaseGenerator) GetTitle(data *Data) string {
	if data.Options.Title != "" {
		return data.Options.Title
	}
	return "Virtual Network Analysis Report"
}

// GetAuthor возвращает автора отчёта
func (b *BaseGenerator) GetAuthor(data *Data) string {
	if data.Options.Author != "" {
		return data.Options.Author
	}
	return "netalloc"
}

// GetDescription возвращает описание
func (b *BaseGenerator) GetDescription(data *Data) string {
	if data.Options.Description != "" {
		return data.Options.Description
	}
	if data.Name != "" {
		return "Network: " + data.Name
	}
	return ""
}

// GeneratedAt время формирования
func (b *BaseGenerator) GeneratedAt(data *Data) time.Time {
	if data.GeneratedAt.IsZero() {
		return time.Now()
	}
	return data.GeneratedAt
}

// Node номер узла в нумерации отчёта
func (b *BaseGenerator) Node(data *Data, id int) int {
	return id + data.IndexBase
}

// PathString путь вида "1 -> 2 -> 5"
func (b *BaseGenerator) PathString(data *Data, p domain.Path) string {
	return p.Format(data.IndexBase)
}

// Succeeded проверяет, что есть успешный результат
func (b *BaseGenerator) Succeeded(data *Data) bool {
	return data.Result != nil && data.Result.Success
}

// FailureMessage текст ошибки неуспешного поиска
func (b *BaseGenerator) FailureMessage(data *Data) string {
	if data.Result == nil {
		return "allocation was not executed"
	}
	if data.Result.Message != "" {
		return data.Result.Message
	}
	return "unknown allocation error"
}

// RejectionReason причина отказа по запросу
func (b *BaseGenerator) RejectionReason(data *Data, idx int) string {
	if data.Diagnostics != nil && idx < len(data.Diagnostics.Demands) {
		if d := data.Diagnostics.Demands[idx]; !d.Reachable {
			return d.Reason
		}
	}
	return "insufficient network capacity"
}

// Connectivity подпись связности сети
func (b *BaseGenerator) Connectivity(connected bool) string {
	if connected {
		return "Connected"
	}
	return "Disconnected"
}

// FormatFloat форматирует число с заданной точностью
func (b *BaseGenerator) FormatFloat(v float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, v)
}

// FormatPercent форматирует долю как процент
func (b *BaseGenerator) FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// FormatMoney форматирует сумму с валютой
func (b *BaseGenerator) FormatMoney(v float64, currency string) string {
	if currency == "" || currency == "$" {
		return fmt.Sprintf("$%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, currency)
}

// FormatDuration форматирует длительность
func (b *BaseGenerator) FormatDuration(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)
	if ms < 1000 {
		return fmt.Sprintf("%.2f ms", ms)
	}
	return fmt.Sprintf("%.2f s", ms/1000)
}

// FormatTimestamp форматирует время
func (b *BaseGenerator) FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// ColName преобразует индекс колонки в буквенное обозначение (0 -> A, 25 -> Z, 26 -> AA)
func ColName(index int) string {
	result := ""
	for {
		result = string(rune('A'+index%26)) + result
		index = index/26 - 1
		if index < 0 {
			break
		}
	}
	return result
}

// Cell возвращает адрес ячейки
func Cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
