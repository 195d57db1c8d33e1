package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
)

// CSVGenerator генератор CSV отчётов: блок сводки, затем таблица по каждому запросу
type CSVGenerator struct {
	BaseGenerator
}

// NewCSVGenerator создаёт новый генератор
func NewCSVGenerator() *CSVGenerator {
	return &CSVGenerator{}
}

// Format возвращает формат генератора
func (g *CSVGenerator) Format() Format {
	return FormatCSV
}

// csvWriter обёртка для отслеживания ошибок
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record ...string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (cw *csvWriter) Flush() {
	if cw.err != nil {
		return
	}
	cw.w.Flush()
	cw.err = cw.w.Error()
}

// Generate генерирует CSV отчёт
func (g *CSVGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	var buf bytes.Buffer
	cw := &csvWriter{w: csv.NewWriter(&buf)}

	g.writeSummary(cw, data)
	cw.Write()
	g.writeDemands(cw, data)

	cw.Flush()
	if cw.err != nil {
		return nil, fmt.Errorf("csv write error: %w", cw.err)
	}

	return buf.Bytes(), nil
}

func (g *CSVGenerator) writeSummary(cw *csvWriter, data *Data) {
	s := data.Summary

	cw.Write("metric", "value")
	cw.Write("success", strconv.FormatBool(g.Succeeded(data)))
	if !g.Succeeded(data) {
		cw.Write("message", g.FailureMessage(data))
	}
	if t := data.Topology; t != nil {
		cw.Write("nodes", strconv.Itoa(t.Nodes()))
		cw.Write("links", strconv.Itoa(t.TotalLinks()))
		cw.Write("total_capacity", g.FormatFloat(t.TotalCapacity(), 4))
		cw.Write("connected", strconv.FormatBool(t.Connected()))
	}
	cw.Write("total_demand", g.FormatFloat(s.DemandedBandwidth, 4))
	cw.Write("acceptance_ratio", g.FormatFloat(s.AcceptanceRatio, 4))
	cw.Write("revenue_cost_ratio", g.FormatFloat(s.RevenueCostRatio, 4))
	cw.Write("revenue", g.FormatFloat(s.Revenue, 2))
	cw.Write("operating_cost", g.FormatFloat(s.OperatingCost, 2))
	cw.Write("net_profit", g.FormatFloat(s.NetProfit, 2))
	cw.Write("lost_revenue", g.FormatFloat(s.LostRevenue, 2))
	cw.Write("utilization", g.FormatFloat(data.Status.Utilization, 4))
	cw.Write("total_combinations", strconv.FormatInt(s.TotalCombinations, 10))
	cw.Write("valid_combinations", strconv.FormatInt(s.ValidCombinations, 10))
}

func (g *CSVGenerator) writeDemands(cw *csvWriter, data *Data) {
	cw.Write("demand", "source", "destination", "bandwidth", "status", "path", "hops", "cost", "revenue", "reason")

	allocated := make(map[int]int)
	if data.Result != nil {
		for i, d := range data.Result.Details {
			allocated[d.DemandIndex] = i
		}
	}

	for idx, d := range data.Demands {
		row := []string{
			strconv.Itoa(idx + data.IndexBase),
			strconv.Itoa(g.Node(data, d.Source)),
			strconv.Itoa(g.Node(data, d.Destination)),
			g.FormatFloat(d.Bandwidth, 4),
		}

		if i, ok := allocated[idx]; ok {
			det := data.Result.Details[i]
			row = append(row, "allocated",
				g.PathString(data, det.Path),
				strconv.Itoa(det.Hops),
				g.FormatFloat(det.Cost, 4),
				g.FormatFloat(det.Revenue, 4),
				"",
			)
		} else {
			row = append(row, "rejected", "", "", "", "", g.RejectionReason(data, idx))
		}

		cw.Write(row...)
	}
}
