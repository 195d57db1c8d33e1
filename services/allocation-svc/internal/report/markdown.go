package report

import (
	"bytes"
	"context"
	"fmt"
)

// MarkdownGenerator генератор Markdown отчётов
type MarkdownGenerator struct {
	BaseGenerator
}

// NewMarkdownGenerator создаёт новый генератор
func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

// Format возвращает формат генератора
func (g *MarkdownGenerator) Format() Format {
	return FormatMarkdown
}

// Generate генерирует Markdown отчёт
func (g *MarkdownGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	var buf bytes.Buffer

	g.writeHeader(&buf, data)
	g.writeNetwork(&buf, data)

	if g.Succeeded(data) {
		g.writeResults(&buf, data)
		if data.Options.IncludeDetails {
			g.writeAllocations(&buf, data)
		}
		g.writeRejected(&buf, data)
		g.writeBottlenecks(&buf, data)
	} else {
		buf.WriteString("## Allocation Failed\n\n")
		buf.WriteString(fmt.Sprintf("> %s\n\n", g.FailureMessage(data)))
	}

	g.writeFooter(&buf, data)

	return buf.Bytes(), nil
}

func (g *MarkdownGenerator) writeHeader(buf *bytes.Buffer, data *Data) {
	buf.WriteString(fmt.Sprintf("# %s\n\n", g.GetTitle(data)))
	buf.WriteString(fmt.Sprintf("**Author:** %s  \n", g.GetAuthor(data)))
	buf.WriteString(fmt.Sprintf("**Generated:** %s\n\n", g.FormatTimestamp(g.GeneratedAt(data))))
	if desc := g.GetDescription(data); desc != "" {
		buf.WriteString(desc + "\n\n")
	}
}

func (g *MarkdownGenerator) writeNetwork(buf *bytes.Buffer, data *Data) {
	buf.WriteString("## Network Configuration\n\n")
	buf.WriteString("| Metric | Value |\n")
	buf.WriteString("|--------|-------|\n")
	if t := data.Topology; t != nil {
		buf.WriteString(fmt.Sprintf("| Nodes | %d |\n", t.Nodes()))
		buf.WriteString(fmt.Sprintf("| Links | %d |\n", t.TotalLinks()))
		buf.WriteString(fmt.Sprintf("| Total Capacity | %s Mbps |\n", g.FormatFloat(t.TotalCapacity(), 2)))
		buf.WriteString(fmt.Sprintf("| Connectivity | %s |\n", g.Connectivity(t.Connected())))
	}
	buf.WriteString(fmt.Sprintf("| Total Demand | %s Mbps |\n", g.FormatFloat(data.Summary.DemandedBandwidth, 2)))
	buf.WriteString(fmt.Sprintf("| Demands | %d |\n", len(data.Demands)))
	buf.WriteString(fmt.Sprintf("| Initial Capacity Usage | %.1f%% |\n\n", data.Summary.InitialCapacityUsage))
}

func (g *MarkdownGenerator) writeResults(buf *bytes.Buffer, data *Data) {
	s := data.Summary

	buf.WriteString("## Allocation Results\n\n")
	buf.WriteString("| Metric | Value |\n")
	buf.WriteString("|--------|-------|\n")
	buf.WriteString(fmt.Sprintf("| Acceptance Ratio | %s |\n", g.FormatPercent(s.AcceptanceRatio)))
	buf.WriteString(fmt.Sprintf("| Revenue/Cost Ratio | %s |\n", g.FormatFloat(s.RevenueCostRatio, 2)))
	buf.WriteString(fmt.Sprintf("| Total Revenue | %s |\n", g.FormatMoney(s.Revenue, s.Currency)))
	buf.WriteString(fmt.Sprintf("| Operating Costs | %s |\n", g.FormatMoney(s.OperatingCost, s.Currency)))
	buf.WriteString(fmt.Sprintf("| Net Profit | %s |\n", g.FormatMoney(s.NetProfit, s.Currency)))
	buf.WriteString(fmt.Sprintf("| Allocated / Rejected | %d / %d |\n", s.AllocatedDemands, s.RejectedDemands))
	buf.WriteString(fmt.Sprintf("| Network Utilization | %s |\n", g.FormatPercent(data.Status.Utilization)))
	buf.WriteString(fmt.Sprintf("| Combinations (valid / total) | %d / %d |\n", s.ValidCombinations, s.TotalCombinations))
	buf.WriteString(fmt.Sprintf("| Search Time | %s |\n\n", g.FormatDuration(data.Result.Duration)))
}

func (g *MarkdownGenerator) writeAllocations(buf *bytes.Buffer, data *Data) {
	if len(data.Result.Details) == 0 {
		return
	}

	buf.WriteString("## Allocation Details\n\n")
	buf.WriteString("| Demand | Source | Destination | Bandwidth | Path | Hops | Cost | Revenue |\n")
	buf.WriteString("|--------|--------|-------------|-----------|------|------|------|---------|\n")
	for _, d := range data.Result.Details {
		buf.WriteString(fmt.Sprintf("| %d | %d | %d | %s | %s | %d | %s | %s |\n",
			d.DemandIndex+data.IndexBase,
			g.Node(data, d.Source),
			g.Node(data, d.Destination),
			g.FormatFloat(d.Bandwidth, 2),
			g.PathString(data, d.Path),
			d.Hops,
			g.FormatFloat(d.Cost, 2),
			g.FormatFloat(d.Revenue, 2),
		))
	}
	buf.WriteString("\n")
}

func (g *MarkdownGenerator) writeRejected(buf *bytes.Buffer, data *Data) {
	if len(data.Result.Rejected) == 0 {
		return
	}

	buf.WriteString("## Rejected Demands\n\n")
	buf.WriteString("| Demand | Source | Destination | Bandwidth | Reason |\n")
	buf.WriteString("|--------|--------|-------------|-----------|--------|\n")
	for _, idx := range data.Result.Rejected {
		if idx < 0 || idx >= len(data.Demands) {
			continue
		}
		d := data.Demands[idx]
		buf.WriteString(fmt.Sprintf("| %d | %d | %d | %s | %s |\n",
			idx+data.IndexBase,
			g.Node(data, d.Source),
			g.Node(data, d.Destination),
			g.FormatFloat(d.Bandwidth, 2),
			g.RejectionReason(data, idx),
		))
	}
	buf.WriteString(fmt.Sprintf("\nEstimated lost revenue: **%s**\n\n",
		g.FormatMoney(data.Summary.LostRevenue, data.Summary.Currency)))
}

func (g *MarkdownGenerator) writeBottlenecks(buf *bytes.Buffer, data *Data) {
	if len(data.Bottlenecks) == 0 {
		return
	}

	buf.WriteString("## Saturated Links\n\n")
	buf.WriteString("| From | To | Capacity | Remaining | Utilization | Severity |\n")
	buf.WriteString("|------|----|----------|-----------|-------------|----------|\n")
	for _, b := range data.Bottlenecks {
		buf.WriteString(fmt.Sprintf("| %d | %d | %s | %s | %s | %s |\n",
			g.Node(data, b.From),
			g.Node(data, b.To),
			g.FormatFloat(b.Capacity, 2),
			g.FormatFloat(b.Remaining, 2),
			g.FormatPercent(b.Utilization),
			b.Severity,
		))
	}
	buf.WriteString("\n")
}

func (g *MarkdownGenerator) writeFooter(buf *bytes.Buffer, data *Data) {
	buf.WriteString("---\n\n")
	buf.WriteString(fmt.Sprintf("*Generated by netalloc on %s*\n", g.FormatTimestamp(g.GeneratedAt(data))))
}
