package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

// TextGenerator генератор текстового отчёта анализа сети
type TextGenerator struct {
	BaseGenerator
}

// NewTextGenerator создаёт новый генератор
func NewTextGenerator() *TextGenerator {
	return &TextGenerator{}
}

// Format возвращает формат генератора
func (g *TextGenerator) Format() Format {
	return FormatText
}

// Generate генерирует текстовый отчёт
func (g *TextGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(strings.ToUpper(g.GetTitle(data)) + "\n")
	buf.WriteString(strings.Repeat("=", 60) + "\n")
	if desc := g.GetDescription(data); desc != "" {
		buf.WriteString(desc + "\n")
	}
	buf.WriteString(fmt.Sprintf("Generated: %s\n", g.FormatTimestamp(g.GeneratedAt(data))))

	g.writeConfiguration(&buf, data)

	if !g.Succeeded(data) {
		g.writeFailure(&buf, data)
		return buf.Bytes(), nil
	}

	g.writeResults(&buf, data)
	g.writePerformance(&buf, data)
	if data.Options.IncludeDetails {
		g.writeDetails(&buf, data)
	}
	g.writeRejected(&buf, data)
	g.writeDropped(&buf, data)

	return buf.Bytes(), nil
}

func (g *TextGenerator) section(buf *bytes.Buffer, title string, width int) {
	buf.WriteString("\n" + title + "\n")
	buf.WriteString(strings.Repeat("-", width) + "\n")
}

func (g *TextGenerator) writeConfiguration(buf *bytes.Buffer, data *Data) {
	s := data.Summary
	g.section(buf, "NETWORK CONFIGURATION", 40)

	if data.Topology != nil {
		fmt.Fprintf(buf, "Number of nodes:          %d\n", data.Topology.Nodes())
		fmt.Fprintf(buf, "Number of links:          %d\n", data.Topology.TotalLinks())
		fmt.Fprintf(buf, "Total capacity:           %.2f Mbps\n", data.Topology.TotalCapacity())
	}
	fmt.Fprintf(buf, "Total demand:             %.2f Mbps\n", s.DemandedBandwidth)
	if data.Topology != nil {
		fmt.Fprintf(buf, "Network connectivity:     %s\n", g.Connectivity(data.Topology.Connected()))
	}
	fmt.Fprintf(buf, "Number of demands:        %d\n", len(data.Demands))
	fmt.Fprintf(buf, "Initial capacity usage:   %.1f%%\n", s.InitialCapacityUsage)

	if data.Topology != nil && !data.Topology.Connected() {
		buf.WriteString("\nWARNING: Network topology is not fully connected\n")
		buf.WriteString("Some demands may not be satisfiable due to connectivity issues.\n")
	}
}

func (g *TextGenerator) writeResults(buf *bytes.Buffer, data *Data) {
	s := data.Summary

	buf.WriteString("\nALLOCATION RESULTS\n")
	buf.WriteString(strings.Repeat("=", 40) + "\n")
	fmt.Fprintf(buf, "Acceptance ratio:         %s\n", g.FormatPercent(s.AcceptanceRatio))
	fmt.Fprintf(buf, "Revenue/cost ratio:       %.2f\n", s.RevenueCostRatio)
	fmt.Fprintf(buf, "Total revenue:            %.2f\n", s.Revenue)
	fmt.Fprintf(buf, "Total operating costs:    %.2f\n", s.OperatingCost)
	fmt.Fprintf(buf, "Net profit:               %.2f\n", s.NetProfit)
	fmt.Fprintf(buf, "Allocated demands:        %d\n", s.AllocatedDemands)
	fmt.Fprintf(buf, "Rejected demands:         %d\n", s.RejectedDemands)
	fmt.Fprintf(buf, "Network utilization:      %s\n", g.FormatPercent(data.Status.Utilization))
}

func (g *TextGenerator) writePerformance(buf *bytes.Buffer, data *Data) {
	g.section(buf, "ALGORITHM PERFORMANCE", 25)
	fmt.Fprintf(buf, "Total combinations evaluated: %d\n", data.Result.TotalCombinations)
	fmt.Fprintf(buf, "Valid combinations found:     %d\n", data.Result.ValidCombinations)
	fmt.Fprintf(buf, "Search time:                  %s\n", g.FormatDuration(data.Result.Duration))
}

func (g *TextGenerator) writeDetails(buf *bytes.Buffer, data *Data) {
	if len(data.Result.Details) == 0 {
		return
	}
	g.section(buf, "ALLOCATION DETAILS", 30)

	for _, d := range data.Result.Details {
		fmt.Fprintf(buf, "\nDemand %d:\n", d.DemandIndex+data.IndexBase)
		fmt.Fprintf(buf, "  Source node:        %d\n", g.Node(data, d.Source))
		fmt.Fprintf(buf, "  Destination node:   %d\n", g.Node(data, d.Destination))
		fmt.Fprintf(buf, "  Bandwidth required: %.2f Mbps\n", d.Bandwidth)
		fmt.Fprintf(buf, "  Allocated path:     %s\n", g.PathString(data, d.Path))
		fmt.Fprintf(buf, "  Path length:        %d hops\n", d.Hops)
		fmt.Fprintf(buf, "  Operating cost:     %.2f\n", d.Cost)
		fmt.Fprintf(buf, "  Generated revenue:  %.2f\n", d.Revenue)
	}
}

func (g *TextGenerator) writeRejected(buf *bytes.Buffer, data *Data) {
	if len(data.Result.Rejected) == 0 {
		return
	}
	g.section(buf, "REJECTED DEMANDS ANALYSIS", 35)

	factor := 0.0
	if data.Summary.RejectedBandwidth > 0 {
		factor = data.Summary.LostRevenue / data.Summary.RejectedBandwidth
	}

	for _, idx := range data.Result.Rejected {
		if idx < 0 || idx >= len(data.Demands) {
			continue
		}
		d := data.Demands[idx]
		fmt.Fprintf(buf, "Demand %d: Node %d -> Node %d, %.2f Mbps (Est. lost revenue: %s) [%s]\n",
			idx+data.IndexBase,
			g.Node(data, d.Source),
			g.Node(data, d.Destination),
			d.Bandwidth,
			g.FormatMoney(d.Bandwidth*factor, data.Summary.Currency),
			g.RejectionReason(data, idx),
		)
	}

	buf.WriteString("\nRejection Summary:\n")
	fmt.Fprintf(buf, "  Total rejected bandwidth: %.2f Mbps\n", data.Summary.RejectedBandwidth)
	fmt.Fprintf(buf, "  Estimated lost revenue:   %s\n", g.FormatMoney(data.Summary.LostRevenue, data.Summary.Currency))
	fmt.Fprintf(buf, "  Primary cause: %s\n", g.primaryCause(data))
}

func (g *TextGenerator) primaryCause(data *Data) string {
	counts := make(map[string]int)
	best, bestCount := "insufficient network capacity", 0
	for _, idx := range data.Result.Rejected {
		reason := g.RejectionReason(data, idx)
		counts[reason]++
		if counts[reason] > bestCount {
			best, bestCount = reason, counts[reason]
		}
	}
	return capitalize(best)
}

func (g *TextGenerator) writeDropped(buf *bytes.Buffer, data *Data) {
	if len(data.Dropped) == 0 {
		return
	}
	g.section(buf, "IGNORED INPUT DEMANDS", 35)
	for _, d := range data.Dropped {
		fmt.Fprintf(buf, "Entry %d: Node %d -> Node %d, %.2f Mbps (%s)\n",
			d.Position, d.Source, d.Destination, d.Bandwidth, d.Reason)
	}
}

func (g *TextGenerator) writeFailure(buf *bytes.Buffer, data *Data) {
	buf.WriteString("\nALLOCATION ERROR REPORT\n")
	buf.WriteString(strings.Repeat("=", 35) + "\n")
	fmt.Fprintf(buf, "Error Description: %s\n", g.FailureMessage(data))

	g.section(buf, "DIAGNOSTIC INFORMATION", 30)
	buf.WriteString("Possible causes:\n")
	if data.Topology != nil && !data.Topology.Connected() {
		buf.WriteString("- Network topology is not fully connected\n")
	}
	if data.Diagnostics != nil && data.Diagnostics.Unreachable > 0 {
		fmt.Fprintf(buf, "- %d demand(s) have no path between their endpoints\n", data.Diagnostics.Unreachable)
	}
	buf.WriteString("- Insufficient link capacities for demand requirements\n")
	buf.WriteString("- Demand specifications exceed network capabilities\n")

	g.section(buf, "RECOMMENDED ACTIONS", 25)
	buf.WriteString("1. Verify all nodes are properly connected\n")
	buf.WriteString("2. Check that link capacities are sufficient\n")
	buf.WriteString("3. Validate demand parameters\n")
	buf.WriteString("4. Review network topology for bottlenecks\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
