package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics контейнер метрик сервиса распределения
type Metrics struct {
	// gRPC метрики
	GRPCRequestsTotal    *prometheus.CounterVec
	GRPCRequestDuration  *prometheus.HistogramVec
	GRPCRequestsInFlight *prometheus.GaugeVec

	// Бизнес-метрики
	AllocationRunsTotal *prometheus.CounterVec
	AllocationDuration  *prometheus.HistogramVec
	ScenariosEvaluated  prometheus.Histogram
	AcceptanceRatio     prometheus.Gauge
	NetworkUtilization  prometheus.Gauge
	TopologyNodes       prometheus.Histogram
	DemandsPerRun       prometheus.Histogram
	BottlenecksFound    *prometheus.HistogramVec
	CacheRequestsTotal  *prometheus.CounterVec
	ReportsGenerated    *prometheus.CounterVec

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec
}

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

// InitMetrics регистрирует метрики в глобальном реестре. Повторные вызовы
// возвращают уже созданный набор.
func InitMetrics(namespace, subsystem string) *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer, namespace, subsystem)
	})
	return defaultMetrics
}

// Get возвращает глобальные метрики
func Get() *Metrics {
	return InitMetrics("netalloc", "")
}

// NewMetrics создаёт и регистрирует метрики в reg
func NewMetrics(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	f := promauto.With(reg)

	m := &Metrics{
		GRPCRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "grpc_requests_total",
				Help:      "Total number of gRPC requests",
			},
			[]string{"method", "status"},
		),

		GRPCRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "grpc_request_duration_seconds",
				Help:      "Duration of gRPC requests",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 60},
			},
			[]string{"method"},
		),

		GRPCRequestsInFlight: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "grpc_requests_in_flight",
				Help:      "Current number of gRPC requests being processed",
			},
			[]string{"method"},
		),

		AllocationRunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "allocation_runs_total",
				Help:      "Total number of allocation searches by outcome",
			},
			[]string{"status"},
		),

		AllocationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "allocation_duration_seconds",
				Help:      "Duration of exhaustive allocation searches",
				Buckets:   []float64{.001, .01, .1, .5, 1, 5, 10, 30, 60, 300, 1800},
			},
			[]string{"mode"},
		),

		ScenariosEvaluated: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "allocation_scenarios_evaluated",
				Help:      "Number of scenarios evaluated per search",
				Buckets:   prometheus.ExponentialBuckets(1, 10, 9),
			},
		),

		AcceptanceRatio: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "allocation_acceptance_ratio",
				Help:      "Acceptance ratio of the last successful search",
			},
		),

		NetworkUtilization: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "network_utilization_ratio",
				Help:      "Capacity utilization after the last commit",
			},
		),

		TopologyNodes: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "topology_nodes",
				Help:      "Number of nodes in processed topologies",
				Buckets:   []float64{2, 5, 10, 20, 50, 100},
			},
		),

		DemandsPerRun: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "demands_per_run",
				Help:      "Number of demands per allocation run",
				Buckets:   []float64{1, 2, 4, 8, 16, 32},
			},
		),

		BottlenecksFound: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "bottlenecks_found",
				Help:      "Number of saturated links after commit",
				Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
			},
			[]string{"severity"},
		),

		CacheRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_requests_total",
				Help:      "Allocation cache lookups by result",
			},
			[]string{"result"},
		),

		ReportsGenerated: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reports_generated_total",
				Help:      "Rendered reports by format",
			},
			[]string{"format"},
		),

		ServiceInfo: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	reg.MustRegister(NewRuntimeCollector(namespace, subsystem))

	return m
}

// RecordGRPCRequest записывает метрики gRPC запроса
func (m *Metrics) RecordGRPCRequest(method string, status string, duration time.Duration) {
	m.GRPCRequestsTotal.WithLabelValues(method, status).Inc()
	m.GRPCRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordAllocation записывает итог поиска
func (m *Metrics) RecordAllocation(status string, parallel bool, duration time.Duration, scenarios int64) {
	mode := "sequential"
	if parallel {
		mode = "parallel"
	}

	m.AllocationRunsTotal.WithLabelValues(status).Inc()
	m.AllocationDuration.WithLabelValues(mode).Observe(duration.Seconds())
	m.ScenariosEvaluated.Observe(float64(scenarios))
}

// RecordNetworkState записывает состояние сети после коммита
func (m *Metrics) RecordNetworkState(acceptance, utilization float64) {
	m.AcceptanceRatio.Set(acceptance)
	m.NetworkUtilization.Set(utilization)
}

// RecordProblemSize записывает размер задачи
func (m *Metrics) RecordProblemSize(nodes, demands int) {
	m.TopologyNodes.Observe(float64(nodes))
	m.DemandsPerRun.Observe(float64(demands))
}

// RecordBottlenecks записывает количество найденных узких мест
func (m *Metrics) RecordBottlenecks(severity string, count int) {
	m.BottlenecksFound.WithLabelValues(severity).Observe(float64(count))
}

// RecordCacheLookup записывает попадание или промах кэша
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequestsTotal.WithLabelValues(result).Inc()
}

// RecordReport записывает сформированный отчёт
func (m *Metrics) RecordReport(format string) {
	m.ReportsGenerated.WithLabelValues(format).Inc()
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewMetricsServer создаёт HTTP сервер с /metrics и /health
func NewMetricsServer(port int, path string) *http.Server {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint
	})

	return &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
