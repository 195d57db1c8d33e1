package report

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"netalloc/pkg/domain"
)

// PDFGenerator генератор PDF отчётов
type PDFGenerator struct {
	BaseGenerator
}

// NewPDFGenerator создаёт новый генератор
func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{}
}

// Format возвращает формат генератора
func (g *PDFGenerator) Format() Format {
	return FormatPDF
}

// Ограничение строк таблиц в PDF
const pdfMaxRows = 40

var (
	primaryColor   = &props.Color{Red: 52, Green: 152, Blue: 219}
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}
	successColor   = &props.Color{Red: 39, Green: 174, Blue: 96}
	warningColor   = &props.Color{Red: 243, Green: 156, Blue: 18}
	dangerColor    = &props.Color{Red: 231, Green: 76, Blue: 60}
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241}
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141}

	titleStyle = props.Text{
		Size:  20,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: headerBgColor,
	}

	h2Style = props.Text{
		Size:  14,
		Style: fontstyle.Bold,
		Color: headerBgColor,
		Top:   4,
	}

	normalStyle = props.Text{Size: 10}
	boldStyle   = props.Text{Size: 10, Style: fontstyle.Bold}
	smallStyle  = props.Text{Size: 8, Color: darkGrayColor}

	metricValueStyle = props.Text{
		Size:  16,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: primaryColor,
	}

	metricLabelStyle = props.Text{
		Size:  9,
		Align: align.Center,
		Color: darkGrayColor,
		Top:   9,
	}

	tableHeaderStyle = &props.Cell{BackgroundColor: primaryColor}

	tableHeaderTextStyle = props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
		Align: align.Center,
	}

	tableCellStyle = &props.Cell{
		BorderType:  border.Bottom,
		BorderColor: lightGrayColor,
	}

	tableCellTextStyle = props.Text{Size: 9, Align: align.Center}
)

// Generate генерирует PDF отчёт
func (g *PDFGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	g.addHeader(m, data)
	g.addNetwork(m, data)

	if g.Succeeded(data) {
		g.addResults(m, data)
		if data.Options.IncludeDetails && len(data.Result.Details) > 0 {
			g.addSection(m, "Allocation Details")
			g.addAllocationsTable(m, data)
		}
		if len(data.Result.Rejected) > 0 {
			g.addSection(m, "Rejected Demands")
			g.addRejectedTable(m, data)
		}
		if len(data.Bottlenecks) > 0 {
			g.addSection(m, "Saturated Links")
			g.addBottlenecksTable(m, data)
		}
	} else {
		g.addSection(m, "Allocation Failed")
		m.AddRow(8, text.NewCol(12, g.FailureMessage(data), props.Text{Size: 11, Color: dangerColor}))
	}

	g.addFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

func (g *PDFGenerator) addHeader(m core.Maroto, data *Data) {
	m.AddRow(15, text.NewCol(12, g.GetTitle(data), titleStyle))
	m.AddRow(5, line.NewCol(12))

	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Author: %s", g.GetAuthor(data)), smallStyle),
		text.NewCol(6, fmt.Sprintf("Generated: %s", g.FormatTimestamp(g.GeneratedAt(data))),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)

	if desc := g.GetDescription(data); desc != "" {
		m.AddRow(5, text.NewCol(12, desc, smallStyle))
	}

	m.AddRow(6)
}

func (g *PDFGenerator) addNetwork(m core.Maroto, data *Data) {
	g.addSection(m, "Network Configuration")

	if t := data.Topology; t != nil {
		g.addMetricCards(m, []metricCard{
			{Label: "Nodes", Value: fmt.Sprintf("%d", t.Nodes())},
			{Label: "Links", Value: fmt.Sprintf("%d", t.TotalLinks())},
			{Label: "Capacity, Mbps", Value: g.FormatFloat(t.TotalCapacity(), 1)},
			{Label: "Connectivity", Value: g.Connectivity(t.Connected())},
		})
	}

	g.addKeyValueTable(m, []keyValue{
		{"Demands", fmt.Sprintf("%d", len(data.Demands))},
		{"Total demand", fmt.Sprintf("%s Mbps", g.FormatFloat(data.Summary.DemandedBandwidth, 2))},
		{"Initial capacity usage", fmt.Sprintf("%.1f%%", data.Summary.InitialCapacityUsage)},
	})
}

func (g *PDFGenerator) addResults(m core.Maroto, data *Data) {
	s := data.Summary
	g.addSection(m, "Allocation Results")

	g.addMetricCards(m, []metricCard{
		{Label: "Acceptance Ratio", Value: g.FormatPercent(s.AcceptanceRatio), Highlight: true},
		{Label: "Revenue/Cost", Value: g.FormatFloat(s.RevenueCostRatio, 2), Highlight: true},
		{Label: "Net Profit", Value: g.FormatMoney(s.NetProfit, s.Currency), Highlight: true},
	})

	m.AddRow(4)
	g.addKeyValueTable(m, []keyValue{
		{"Revenue", g.FormatMoney(s.Revenue, s.Currency)},
		{"Operating cost", g.FormatMoney(s.OperatingCost, s.Currency)},
		{"Allocated / rejected", fmt.Sprintf("%d / %d", s.AllocatedDemands, s.RejectedDemands)},
		{"Network utilization", g.FormatPercent(data.Status.Utilization)},
		{"Combinations evaluated", fmt.Sprintf("%d", s.TotalCombinations)},
		{"Valid combinations", fmt.Sprintf("%d", s.ValidCombinations)},
		{"Search time", g.FormatDuration(data.Result.Duration)},
	})
}

type metricCard struct {
	Label     string
	Value     string
	Highlight bool
}

func (g *PDFGenerator) addMetricCards(m core.Maroto, cards []metricCard) {
	if len(cards) == 0 {
		return
	}

	colSize := 12 / len(cards)
	if colSize < 2 {
		colSize = 2
	}

	var cols []core.Col
	for _, card := range cards {
		valueStyle := metricValueStyle
		if !card.Highlight {
			valueStyle.Size = 12
		}

		cols = append(cols,
			col.New(colSize).Add(
				text.New(card.Value, valueStyle),
				text.New(card.Label, metricLabelStyle),
			),
		)
	}

	m.AddRow(18, cols...)
}

type keyValue struct {
	Key   string
	Value string
}

func (g *PDFGenerator) addKeyValueTable(m core.Maroto, items []keyValue) {
	for _, item := range items {
		m.AddRow(6,
			text.NewCol(6, item.Key, boldStyle),
			text.NewCol(6, item.Value, normalStyle),
		)
	}
}

func (g *PDFGenerator) addSection(m core.Maroto, title string) {
	m.AddRow(10, text.NewCol(12, title, h2Style))
	m.AddRow(2, line.NewCol(12, props.Line{Color: primaryColor}))
	m.AddRow(4)
}

func (g *PDFGenerator) addTableHeader(m core.Maroto, titles []string, sizes []int) {
	cols := make([]core.Col, len(titles))
	for i, title := range titles {
		cols[i] = text.NewCol(sizes[i], title, tableHeaderTextStyle).WithStyle(tableHeaderStyle)
	}
	m.AddRow(8, cols...)
}

func (g *PDFGenerator) addTableRow(m core.Maroto, values []string, sizes []int, styles ...props.Text) {
	cols := make([]core.Col, len(values))
	for i, v := range values {
		style := tableCellTextStyle
		if i < len(styles) {
			style = styles[i]
		}
		cols[i] = text.NewCol(sizes[i], v, style).WithStyle(tableCellStyle)
	}
	m.AddRow(6, cols...)
}

func (g *PDFGenerator) addMoreRows(m core.Maroto, total int) {
	if total > pdfMaxRows {
		m.AddRow(6, text.NewCol(12, fmt.Sprintf("... and %d more rows", total-pdfMaxRows), smallStyle))
	}
}

func (g *PDFGenerator) addAllocationsTable(m core.Maroto, data *Data) {
	sizes := []int{1, 1, 1, 2, 4, 1, 2}
	g.addTableHeader(m, []string{"#", "Src", "Dst", "Bandwidth", "Path", "Hops", "Cost"}, sizes)

	for i, d := range data.Result.Details {
		if i >= pdfMaxRows {
			break
		}
		g.addTableRow(m, []string{
			fmt.Sprintf("%d", d.DemandIndex+data.IndexBase),
			fmt.Sprintf("%d", g.Node(data, d.Source)),
			fmt.Sprintf("%d", g.Node(data, d.Destination)),
			g.FormatFloat(d.Bandwidth, 2),
			g.PathString(data, d.Path),
			fmt.Sprintf("%d", d.Hops),
			g.FormatFloat(d.Cost, 2),
		}, sizes)
	}
	g.addMoreRows(m, len(data.Result.Details))
}

func (g *PDFGenerator) addRejectedTable(m core.Maroto, data *Data) {
	sizes := []int{1, 2, 2, 2, 5}
	g.addTableHeader(m, []string{"#", "Source", "Destination", "Bandwidth", "Reason"}, sizes)

	for i, idx := range data.Result.Rejected {
		if i >= pdfMaxRows {
			break
		}
		if idx < 0 || idx >= len(data.Demands) {
			continue
		}
		d := data.Demands[idx]
		g.addTableRow(m, []string{
			fmt.Sprintf("%d", idx+data.IndexBase),
			fmt.Sprintf("%d", g.Node(data, d.Source)),
			fmt.Sprintf("%d", g.Node(data, d.Destination)),
			g.FormatFloat(d.Bandwidth, 2),
			g.RejectionReason(data, idx),
		}, sizes)
	}
	g.addMoreRows(m, len(data.Result.Rejected))

	m.AddRow(6, text.NewCol(12,
		fmt.Sprintf("Estimated lost revenue: %s", g.FormatMoney(data.Summary.LostRevenue, data.Summary.Currency)),
		boldStyle))
}

func (g *PDFGenerator) addBottlenecksTable(m core.Maroto, data *Data) {
	sizes := []int{2, 2, 2, 2, 2, 2}
	g.addTableHeader(m, []string{"From", "To", "Capacity", "Remaining", "Utilization", "Severity"}, sizes)

	for i, b := range data.Bottlenecks {
		if i >= pdfMaxRows {
			break
		}

		severityStyle := tableCellTextStyle
		switch b.Severity {
		case domain.SeverityCritical, domain.SeverityHigh:
			severityStyle.Color = dangerColor
		case domain.SeverityMedium:
			severityStyle.Color = warningColor
		default:
			severityStyle.Color = successColor
		}

		g.addTableRow(m, []string{
			fmt.Sprintf("%d", g.Node(data, b.From)),
			fmt.Sprintf("%d", g.Node(data, b.To)),
			g.FormatFloat(b.Capacity, 2),
			g.FormatFloat(b.Remaining, 2),
			g.FormatPercent(b.Utilization),
			b.Severity.String(),
		}, sizes,
			tableCellTextStyle, tableCellTextStyle, tableCellTextStyle,
			tableCellTextStyle, tableCellTextStyle, severityStyle,
		)
	}
	g.addMoreRows(m, len(data.Bottlenecks))
}

func (g *PDFGenerator) addFooter(m core.Maroto, data *Data) {
	m.AddRow(10)
	m.AddRow(2, line.NewCol(12, props.Line{Color: lightGrayColor}))
	m.AddRow(6,
		text.NewCol(12,
			fmt.Sprintf("Generated by netalloc | %s", g.FormatTimestamp(g.GeneratedAt(data))),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Center},
		),
	)
}
