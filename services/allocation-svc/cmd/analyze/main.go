// Command analyze runs the allocation engine on a network file without the
// gRPC service and writes a report.
//
// Usage:
//
//	go run ./services/allocation-svc/cmd/analyze -example
//	go run ./services/allocation-svc/cmd/analyze -input net.yaml -format pdf -out report.pdf
//	go run ./services/allocation-svc/cmd/analyze -input net.xlsx -workers 8 -max-hops 4
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"netalloc/pkg/domain"
	"netalloc/pkg/logger"
	"netalloc/services/allocation-svc/internal/engine"
	"netalloc/services/allocation-svc/internal/input"
	"netalloc/services/allocation-svc/internal/kpi"
	"netalloc/services/allocation-svc/internal/report"
)

// ANSI Colors
var (
	RED    = "\033[0;31m"
	GREEN  = "\033[0;32m"
	YELLOW = "\033[1;33m"
	CYAN   = "\033[0;36m"
	GRAY   = "\033[0;90m"
	BOLD   = "\033[1m"
	NC     = "\033[0m" // No Color
)

func init() {
	if runtime.GOOS == "windows" && os.Getenv("WT_SESSION") == "" && os.Getenv("TERM_PROGRAM") != "vscode" {
		disableColors()
	}
}

func disableColors() {
	RED, GREEN, YELLOW, CYAN, GRAY, BOLD, NC = "", "", "", "", "", "", ""
}

type flags struct {
	input    string
	example  bool
	format   string
	out      string
	title    string
	maxHops  int
	workers  int
	limit    int64
	coupling string
	cost     float64
	revenue  float64
	timeout  time.Duration
	details  bool
	noColor  bool
	verbose  bool
}

func parseFlags() *flags {
	f := &flags{}
	flag.StringVar(&f.input, "input", "", "network file (.yaml, .yml, .json, .toml, .xlsx)")
	flag.BoolVar(&f.example, "example", false, "use the built-in 5-node network")
	flag.StringVar(&f.format, "format", "text", "report format: text, markdown, csv, json, xlsx, pdf")
	flag.StringVar(&f.out, "out", "", "report file (stdout for text formats when empty)")
	flag.StringVar(&f.title, "title", "", "report title")
	flag.IntVar(&f.maxHops, "max-hops", 0, "path length bound in hops (0 = N-1)")
	flag.IntVar(&f.workers, "workers", 1, "parallel search workers")
	flag.Int64Var(&f.limit, "max-scenarios", 0, "refuse searches above this many scenarios (0 = unlimited)")
	flag.StringVar(&f.coupling, "coupling", string(engine.CouplingReference), "reverse-edge coupling: reference, directed")
	flag.Float64Var(&f.cost, "cost", kpi.DefaultCostPerUnit, "operating cost per unit")
	flag.Float64Var(&f.revenue, "revenue", kpi.DefaultRevenuePerUnit, "revenue per unit")
	flag.DurationVar(&f.timeout, "timeout", 0, "search timeout (0 = none)")
	flag.BoolVar(&f.details, "details", true, "include per-demand details in the report")
	flag.BoolVar(&f.noColor, "no-color", false, "disable colored output")
	flag.BoolVar(&f.verbose, "v", false, "debug logging")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()
	if f.noColor {
		disableColors()
	}

	level := "warn"
	if f.verbose {
		level = "debug"
	}
	logger.Init(level)

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "%s✗ %v%s\n", RED, err, NC)
		os.Exit(1)
	}
}

func run(f *flags) error {
	net, err := loadNetwork(f)
	if err != nil {
		return err
	}

	format, err := report.ParseFormat(f.format)
	if err != nil {
		return err
	}
	if f.out == "" && !textual(format) {
		return fmt.Errorf("format %s needs -out", format)
	}

	mode, err := engine.ParseCouplingMode(f.coupling)
	if err != nil {
		return err
	}
	opts := engine.DefaultOptions().
		WithMaxHops(f.maxHops).
		WithWorkers(f.workers).
		WithMaxScenarios(f.limit).
		WithCoupling(mode)

	topo, err := net.Topology()
	if err != nil {
		return err
	}
	alloc, err := engine.New(topo, net.Demands, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	res, err := alloc.Run(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("search did not finish within %s", f.timeout)
		}
		return err
	}

	prices := kpi.DefaultPrices()
	prices.CostPerUnit = f.cost
	prices.RevenuePerUnit = f.revenue
	prices = prices.Normalize()
	data := &report.Data{
		Name:      net.Name,
		IndexBase: net.IndexBase,
		Options: report.Options{
			Title:          f.title,
			Author:         "netalloc analyze",
			IncludeDetails: f.details,
		},
		Topology:    topo,
		Demands:     net.Demands,
		Dropped:     net.Dropped,
		Diagnostics: input.DiagnoseTopology(topo, net.Demands, net.Dropped),
		Result:      res,
		Status:      alloc.Status(),
		Summary:     kpi.Compute(res, net.Demands, topo, prices),
		Bottlenecks: alloc.Bottlenecks(domain.DefaultBottleneckThreshold),
		GeneratedAt: time.Now(),
	}

	out, err := report.Generate(ctx, format, data)
	if err != nil {
		return err
	}

	// текстовый отчёт без -out печатается вместо сводки
	if f.out == "" {
		_, err = os.Stdout.Write(out)
		return err
	}

	printSummary(data)
	if err := os.WriteFile(f.out, out, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("\n%s✓%s Report written to %s (%s, %d bytes)\n", GREEN, NC, f.out, format, len(out))
	return nil
}

func loadNetwork(f *flags) (*input.Network, error) {
	switch {
	case f.example && f.input != "":
		return nil, errors.New("use either -input or -example")
	case f.example:
		return input.Example(), nil
	case f.input != "":
		return input.LoadFile(f.input)
	default:
		return nil, errors.New("no network given, use -input FILE or -example")
	}
}

func textual(f report.Format) bool {
	switch f {
	case report.FormatText, report.FormatMarkdown, report.FormatCSV, report.FormatJSON:
		return true
	}
	return false
}

func printSummary(d *report.Data) {
	s := d.Summary
	res := d.Result

	fmt.Printf("%s%s%s\n", BOLD, strings.ToUpper(orDefault(d.Name, "network")), NC)
	fmt.Printf("%s%s%s\n", GRAY, strings.Repeat("─", 50), NC)
	fmt.Printf("  Nodes:       %d\n", d.Topology.Nodes())
	fmt.Printf("  Links:       %d\n", d.Topology.TotalLinks())
	fmt.Printf("  Demands:     %d", len(d.Demands))
	if len(d.Dropped) > 0 {
		fmt.Printf(" %s(%d dropped)%s", YELLOW, len(d.Dropped), NC)
	}
	fmt.Println()

	if !res.Success {
		fmt.Printf("\n  %s✗ %s%s\n", RED, res.Message, NC)
		return
	}

	color := GREEN
	switch {
	case s.AcceptanceRatio < 0.5:
		color = RED
	case s.AcceptanceRatio < 1:
		color = YELLOW
	}

	fmt.Println()
	fmt.Printf("  Acceptance:  %s%.2f%%%s (%d/%d)\n", color, s.AcceptanceRatio*100, NC, s.AllocatedDemands, s.TotalDemands)
	fmt.Printf("  Rev/Cost:    %s%.2f%s\n", CYAN, s.RevenueCostRatio, NC)
	fmt.Printf("  Net profit:  %s%.2f\n", s.Currency, s.NetProfit)
	fmt.Printf("  Utilization: %.2f%%\n", d.Status.Utilization*100)
	fmt.Printf("  Scenarios:   %d valid of %d\n", res.ValidCombinations, res.TotalCombinations)

	if len(d.Bottlenecks) > 0 {
		fmt.Printf("\n  %sBottlenecks%s\n", BOLD, NC)
		for _, b := range d.Bottlenecks {
			fmt.Printf("    %d -> %d  %.0f%% %s[%s]%s\n",
				b.From+d.IndexBase, b.To+d.IndexBase, b.Utilization*100, YELLOW, b.Severity, NC)
		}
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
