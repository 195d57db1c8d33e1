package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"netalloc/services/allocation-svc/internal/input"
)

// Листы книги отчёта. Capacity и Demands записываются в формате входного
// файла, поэтому книгу можно снова подать на вход.
const (
	sheetSummary     = "Summary"
	sheetAllocations = "Allocations"
	sheetRejected    = "Rejected"
	sheetLinks       = "Links"
)

// ExcelGenerator генератор XLSX отчётов
type ExcelGenerator struct {
	BaseGenerator
}

// NewExcelGenerator создаёт новый генератор
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

// Format возвращает формат генератора
func (g *ExcelGenerator) Format() Format {
	return FormatXLSX
}

// excelWriter запоминает первую ошибку записи
type excelWriter struct {
	f           *excelize.File
	headerStyle int
	err         error
}

func (w *excelWriter) set(sheet, cell string, value any) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellValue(sheet, cell, value)
}

func (w *excelWriter) row(sheet string, row int, values ...any) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetSheetRow(sheet, Cell("A", row), &values)
}

func (w *excelWriter) header(sheet string, row int, titles ...any) {
	w.row(sheet, row, titles...)
	if w.err != nil || len(titles) == 0 {
		return
	}
	w.err = w.f.SetCellStyle(sheet, Cell("A", row), Cell(ColName(len(titles)-1), row), w.headerStyle)
}

func (w *excelWriter) sheet(name string) {
	if w.err != nil {
		return
	}
	_, w.err = w.f.NewSheet(name)
}

// Generate генерирует XLSX отчёт
func (g *ExcelGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("failed to prepare workbook: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	w := &excelWriter{f: f, headerStyle: headerStyle}

	g.writeSummary(w, data)
	if g.Succeeded(data) {
		g.writeAllocations(w, data)
		g.writeRejected(w, data)
	}
	g.writeLinks(w, data)
	g.writeInput(w, data)

	if w.err != nil {
		return nil, fmt.Errorf("failed to fill workbook: %w", w.err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (g *ExcelGenerator) writeSummary(w *excelWriter, data *Data) {
	s := data.Summary
	sh := sheetSummary

	w.set(sh, "A1", g.GetTitle(data))
	w.set(sh, "A2", g.GetDescription(data))
	w.set(sh, "A3", "Generated")
	w.set(sh, "B3", g.FormatTimestamp(g.GeneratedAt(data)))

	w.header(sh, 5, "Metric", "Value")
	rows := [][]any{
		{"Success", g.Succeeded(data)},
	}
	if !g.Succeeded(data) {
		rows = append(rows, []any{"Message", g.FailureMessage(data)})
	}
	if t := data.Topology; t != nil {
		rows = append(rows,
			[]any{"Nodes", t.Nodes()},
			[]any{"Links", t.TotalLinks()},
			[]any{"Total Capacity (Mbps)", t.TotalCapacity()},
			[]any{"Connectivity", g.Connectivity(t.Connected())},
		)
	}
	rows = append(rows,
		[]any{"Total Demand (Mbps)", s.DemandedBandwidth},
		[]any{"Initial Capacity Usage (%)", s.InitialCapacityUsage},
		[]any{"Acceptance Ratio", s.AcceptanceRatio},
		[]any{"Revenue/Cost Ratio", s.RevenueCostRatio},
		[]any{"Revenue", s.Revenue},
		[]any{"Operating Cost", s.OperatingCost},
		[]any{"Net Profit", s.NetProfit},
		[]any{"Lost Revenue", s.LostRevenue},
		[]any{"Allocated Demands", s.AllocatedDemands},
		[]any{"Rejected Demands", s.RejectedDemands},
		[]any{"Network Utilization", data.Status.Utilization},
		[]any{"Total Combinations", s.TotalCombinations},
		[]any{"Valid Combinations", s.ValidCombinations},
	)

	for i, r := range rows {
		w.row(sh, 6+i, r...)
	}

	if w.err == nil {
		w.err = w.f.SetColWidth(sh, "A", "B", 28)
	}
}

func (g *ExcelGenerator) writeAllocations(w *excelWriter, data *Data) {
	sh := sheetAllocations
	w.sheet(sh)
	w.header(sh, 1, "Demand", "Source", "Destination", "Bandwidth", "Path", "Hops", "Cost", "Revenue")

	for i, d := range data.Result.Details {
		w.row(sh, i+2,
			d.DemandIndex+data.IndexBase,
			g.Node(data, d.Source),
			g.Node(data, d.Destination),
			d.Bandwidth,
			g.PathString(data, d.Path),
			d.Hops,
			d.Cost,
			d.Revenue,
		)
	}
}

func (g *ExcelGenerator) writeRejected(w *excelWriter, data *Data) {
	if len(data.Result.Rejected) == 0 {
		return
	}

	sh := sheetRejected
	w.sheet(sh)
	w.header(sh, 1, "Demand", "Source", "Destination", "Bandwidth", "Reason")

	row := 2
	for _, idx := range data.Result.Rejected {
		if idx < 0 || idx >= len(data.Demands) {
			continue
		}
		d := data.Demands[idx]
		w.row(sh, row,
			idx+data.IndexBase,
			g.Node(data, d.Source),
			g.Node(data, d.Destination),
			d.Bandwidth,
			g.RejectionReason(data, idx),
		)
		row++
	}
}

func (g *ExcelGenerator) writeLinks(w *excelWriter, data *Data) {
	if len(data.Bottlenecks) == 0 {
		return
	}

	sh := sheetLinks
	w.sheet(sh)
	w.header(sh, 1, "From", "To", "Capacity", "Remaining", "Utilization", "Severity")

	for i, b := range data.Bottlenecks {
		w.row(sh, i+2,
			g.Node(data, b.From),
			g.Node(data, b.To),
			b.Capacity,
			b.Remaining,
			b.Utilization,
			b.Severity.String(),
		)
	}
}

// writeInput записывает исходную сеть в формате входной книги
func (g *ExcelGenerator) writeInput(w *excelWriter, data *Data) {
	if data.Topology == nil {
		return
	}

	w.sheet(input.SheetCapacity)
	rows := data.Topology.Original().Rows()
	for i, r := range rows {
		values := make([]any, len(r))
		for j, v := range r {
			values[j] = v
		}
		w.row(input.SheetCapacity, i+1, values...)
	}

	w.sheet(input.SheetDemands)
	w.header(input.SheetDemands, 1, "source", "destination", "bandwidth")
	for i, d := range data.Demands {
		w.row(input.SheetDemands, i+2, g.Node(data, d.Source), g.Node(data, d.Destination), d.Bandwidth)
	}
}
