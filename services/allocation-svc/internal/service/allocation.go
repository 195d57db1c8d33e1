package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	allocationv1 "netalloc/pkg/api/allocation/v1"
	"netalloc/pkg/apperror"
	"netalloc/pkg/cache"
	"netalloc/pkg/config"
	"netalloc/pkg/domain"
	"netalloc/pkg/logger"
	"netalloc/pkg/metrics"
	"netalloc/pkg/telemetry"
	"netalloc/services/allocation-svc/internal/converter"
	"netalloc/services/allocation-svc/internal/engine"
	"netalloc/services/allocation-svc/internal/input"
	"netalloc/services/allocation-svc/internal/kpi"
	"netalloc/services/allocation-svc/internal/report"
	"netalloc/services/allocation-svc/internal/repository"
)

// Config параметры сервиса, собранные из общей конфигурации
type Config struct {
	Allocation config.AllocationConfig
	Prices     kpi.Prices
	Report     config.ReportConfig
	CacheTTL   time.Duration
}

// DefaultConfig возвращает параметры по умолчанию
func DefaultConfig() Config {
	return Config{
		Allocation: config.AllocationConfig{
			Workers:   1,
			Coupling:  string(engine.CouplingReference),
			IndexBase: domain.IndexBaseOne,
		},
		Prices: kpi.DefaultPrices(),
		Report: config.ReportConfig{
			DefaultFormat:  string(report.FormatText),
			Author:         "netalloc",
			IncludeDetails: true,
		},
	}
}

// ConfigFrom собирает параметры сервиса из загруженной конфигурации
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Allocation: cfg.Allocation,
		Prices: kpi.Prices{
			CostPerUnit:       cfg.Pricing.CostPerUnit,
			RevenuePerUnit:    cfg.Pricing.RevenuePerUnit,
			LostRevenueFactor: cfg.Pricing.LostRevenueFactor,
			Currency:          cfg.Pricing.Currency,
		}.Normalize(),
		Report:   cfg.Report,
		CacheTTL: cfg.Cache.DefaultTTL,
	}
}

// AllocationService реализация gRPC сервиса распределения
type AllocationService struct {
	allocationv1.UnimplementedAllocationServiceServer
	cfg     Config
	runs    repository.RunRepository
	cache   *cache.AllocationCache
	metrics *metrics.Metrics
}

// NewAllocationService создаёт сервис. runs, results и m могут быть nil:
// тогда история, кэш и метрики отключены.
func NewAllocationService(cfg Config, runs repository.RunRepository, results *cache.AllocationCache, m *metrics.Metrics) *AllocationService {
	return &AllocationService{
		cfg:     cfg,
		runs:    runs,
		cache:   results,
		metrics: m,
	}
}

// Allocate ищет лучшее распределение запросов по сети
func (s *AllocationService) Allocate(ctx context.Context, req *allocationv1.AllocateRequest) (*allocationv1.AllocateResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "AllocationService.Allocate")
	defer span.End()

	net, topo, err := s.parseNetwork(req.Network)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	opts, timeout, err := s.searchOptions(req.Options)
	if err != nil {
		return nil, err
	}

	var format report.Format
	if req.ReportFormat != "" {
		if format, err = report.ParseFormat(req.ReportFormat); err != nil {
			return nil, err
		}
	}

	span.SetAttributes(telemetry.TopologyAttributes(topo.Nodes(), topo.TotalLinks(), len(net.Demands))...)
	span.SetAttributes(telemetry.SearchAttributes(opts.MaxHops, opts.Workers, string(opts.Coupling))...)
	if s.metrics != nil {
		s.metrics.RecordProblemSize(topo.Nodes(), len(net.Demands))
	}

	alloc, err := engine.New(topo, net.Demands, opts)
	if err != nil {
		return nil, invalid(err)
	}

	key := cache.AllocationKey{
		Capacity: net.Capacity,
		Demands:  net.Demands,
		MaxHops:  opts.MaxHops,
		Coupling: string(opts.Coupling),
	}

	res, cached := s.lookup(ctx, alloc, key, req.SkipCache)
	span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, cached))

	if !cached {
		if res, err = s.search(ctx, alloc, opts, timeout); err != nil {
			telemetry.SetError(ctx, err)
			return nil, err
		}
		s.remember(ctx, key, res)
	}

	status := alloc.Status()
	bottlenecks := alloc.Bottlenecks(domain.DefaultBottleneckThreshold)
	diag := input.DiagnoseTopology(topo, net.Demands, net.Dropped)
	summary := kpi.Compute(res, net.Demands, topo, s.cfg.Prices)

	span.SetAttributes(telemetry.ResultAttributes(res.Success, res.AcceptanceRatio, res.RevenueCostRatio,
		len(res.Allocated), len(res.Rejected), res.TotalCombinations, res.ValidCombinations)...)
	span.SetAttributes(
		attribute.Float64(telemetry.AttrUtilization, status.Utilization),
		attribute.Int(telemetry.AttrBottlenecks, len(bottlenecks)),
	)
	s.recordState(res, status, bottlenecks)

	resp := &allocationv1.AllocateResponse{
		Cached:      cached,
		Result:      converter.ToResult(res),
		Status:      converter.ToStatus(status),
		Summary:     converter.ToSummary(summary),
		Bottlenecks: converter.ToBottlenecks(bottlenecks),
		Dropped:     converter.ToDropped(net.Dropped),
		Diagnostics: converter.ToDiagnostics(diag),
	}

	if format != "" {
		out, err := report.Generate(ctx, format, &report.Data{
			Name:      net.Name,
			IndexBase: net.IndexBase,
			Options: report.Options{
				Title:          req.ReportTitle,
				Author:         s.cfg.Report.Author,
				IncludeDetails: s.cfg.Report.IncludeDetails,
			},
			Topology:    topo,
			Demands:     net.Demands,
			Dropped:     net.Dropped,
			Diagnostics: diag,
			Result:      res,
			Status:      status,
			Summary:     summary,
			Bottlenecks: bottlenecks,
		})
		if err != nil {
			telemetry.SetError(ctx, err)
			return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to generate report")
		}
		resp.Report = out
		resp.ReportFormat = string(format)
		if s.metrics != nil {
			s.metrics.RecordReport(string(format))
		}
	}

	if s.runs != nil && !req.SkipHistory {
		// ошибка истории не отменяет найденное распределение
		if id, err := s.saveRun(ctx, req.Network, net, topo, opts, key, res); err != nil {
			logger.WithContext(ctx).Warn("Failed to save allocation run", "error", err)
		} else {
			resp.RunID = id
			span.SetAttributes(attribute.String(telemetry.AttrRunID, id))
		}
	}

	logger.WithContext(ctx,
		"run_id", resp.RunID,
		"cached", cached,
	).Info("Allocation finished",
		"success", res.Success,
		"acceptance_ratio", res.AcceptanceRatio,
		"scenarios", res.TotalCombinations,
	)

	return resp, nil
}

// EnumeratePaths перечисляет простые пути между двумя узлами исходной сети
func (s *AllocationService) EnumeratePaths(ctx context.Context, req *allocationv1.EnumeratePathsRequest) (*allocationv1.EnumeratePathsResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "AllocationService.EnumeratePaths",
		trace.WithAttributes(
			attribute.Int("source", req.Source),
			attribute.Int("destination", req.Destination),
		),
	)
	defer span.End()

	net, topo, err := s.parseNetwork(req.Network)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}
	if !topo.HasNode(req.Source) || !topo.HasNode(req.Destination) {
		return nil, apperror.NewWithField(apperror.CodeInvalidNode, "node is out of range", "source")
	}

	opts, _, err := s.searchOptions(&allocationv1.SearchOptions{MaxHops: req.MaxHops})
	if err != nil {
		return nil, err
	}
	alloc, err := engine.New(topo, net.Demands, opts)
	if err != nil {
		return nil, invalid(err)
	}

	paths := alloc.EnumeratePaths(req.Source, req.Destination, opts.MaxHops)
	span.SetAttributes(attribute.Int("paths", len(paths)))

	return &allocationv1.EnumeratePathsResponse{Paths: converter.ToPaths(paths)}, nil
}

// GetRun возвращает сохранённый запуск
func (s *AllocationService) GetRun(ctx context.Context, req *allocationv1.GetRunRequest) (*allocationv1.GetRunResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "AllocationService.GetRun",
		trace.WithAttributes(attribute.String(telemetry.AttrRunID, req.ID)),
	)
	defer span.End()

	if s.runs == nil {
		return nil, errHistoryDisabled
	}

	run, err := s.runs.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	resp := &allocationv1.GetRunResponse{
		MaxHops:  run.MaxHops,
		Coupling: run.Coupling,
		Message:  run.Message,
	}
	summary := converter.ToRunSummary(run.Summary())
	resp.Run = &summary

	var network allocationv1.Network
	if err := json.Unmarshal(run.RequestData, &network); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to decode stored network")
	}
	resp.Network = &network

	var result engine.SearchResult
	if err := json.Unmarshal(run.ResultData, &result); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to decode stored result")
	}
	resp.Result = converter.ToResult(&result)

	return resp, nil
}

// ListRuns возвращает страницу истории, новые запуски первыми
func (s *AllocationService) ListRuns(ctx context.Context, req *allocationv1.ListRunsRequest) (*allocationv1.ListRunsResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "AllocationService.ListRuns")
	defer span.End()

	if s.runs == nil {
		return nil, errHistoryDisabled
	}

	opts := &repository.ListOptions{
		Limit:  req.Limit,
		Offset: req.Offset,
		Sort:   repository.SortByCreatedDesc,
	}
	if req.Success != nil {
		opts.Filter = &repository.ListFilter{Success: req.Success}
	}

	runs, total, err := s.runs.List(ctx, opts)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	resp := &allocationv1.ListRunsResponse{
		Runs:  make([]allocationv1.RunSummary, len(runs)),
		Total: total,
	}
	for i, r := range runs {
		resp.Runs[i] = converter.ToRunSummary(r)
	}
	return resp, nil
}

// DeleteRun удаляет запуск из истории
func (s *AllocationService) DeleteRun(ctx context.Context, req *allocationv1.DeleteRunRequest) (*allocationv1.DeleteRunResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "AllocationService.DeleteRun",
		trace.WithAttributes(attribute.String(telemetry.AttrRunID, req.ID)),
	)
	defer span.End()

	if s.runs == nil {
		return nil, errHistoryDisabled
	}

	if err := s.runs.Delete(ctx, req.ID); err != nil {
		return nil, err
	}

	telemetry.AddEvent(ctx, "run_deleted", attribute.String(telemetry.AttrRunID, req.ID))
	return &allocationv1.DeleteRunResponse{Deleted: true}, nil
}

// Example возвращает встроенную сеть из пяти узлов
func (s *AllocationService) Example(ctx context.Context, _ *allocationv1.ExampleRequest) (*allocationv1.ExampleResponse, error) {
	return &allocationv1.ExampleResponse{Network: converter.FromNetwork(input.Example())}, nil
}

var errHistoryDisabled = apperror.New(apperror.CodeUnavailable, "run history is disabled")

func (s *AllocationService) parseNetwork(n *allocationv1.Network) (*input.Network, *domain.Topology, error) {
	if n == nil {
		return nil, nil, apperror.NewWithField(apperror.CodeNilInput, "network is required", "network")
	}

	doc := converter.ToDocument(n)
	if doc.IndexBase == nil {
		base := s.cfg.Allocation.IndexBase
		doc.IndexBase = &base
	}

	net, err := input.FromDocument(doc)
	if err != nil {
		return nil, nil, err
	}
	topo, err := net.Topology()
	if err != nil {
		return nil, nil, err
	}
	return net, topo, nil
}

// searchOptions накладывает параметры запроса на конфигурацию. Запрос может
// только уменьшить лимит сценариев сервера.
func (s *AllocationService) searchOptions(o *allocationv1.SearchOptions) (*engine.Options, time.Duration, error) {
	ac := s.cfg.Allocation

	opts := engine.DefaultOptions().
		WithMaxHops(ac.MaxHops).
		WithWorkers(ac.Workers).
		WithMaxScenarios(ac.MaxScenarios)
	coupling := ac.Coupling
	timeout := ac.Timeout

	if o != nil {
		if o.MaxHops > 0 {
			opts.MaxHops = o.MaxHops
		}
		if o.Workers > 0 {
			opts.Workers = o.Workers
		}
		if o.MaxScenarios > 0 && (opts.MaxScenarios == 0 || o.MaxScenarios < opts.MaxScenarios) {
			opts.MaxScenarios = o.MaxScenarios
		}
		if o.Coupling != "" {
			coupling = strings.ToLower(o.Coupling)
		}
		if o.TimeoutMs > 0 {
			timeout = time.Duration(o.TimeoutMs) * time.Millisecond
		}
	}

	mode, err := engine.ParseCouplingMode(coupling)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeInvalidArgument, err.Error()).WithField("options.coupling")
	}
	opts.WithCoupling(mode)

	return opts, timeout, nil
}

// lookup подставляет результат из кэша в свежий аллокатор
func (s *AllocationService) lookup(ctx context.Context, alloc *engine.Allocator, key cache.AllocationKey, skip bool) (*engine.SearchResult, bool) {
	if s.cache == nil || skip {
		return nil, false
	}

	var res engine.SearchResult
	found, err := s.cache.Get(ctx, key, &res)
	if err != nil {
		logger.WithContext(ctx).Warn("Cache lookup failed", "error", err)
	}
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(found && err == nil)
	}
	if err != nil || !found {
		return nil, false
	}

	if err := alloc.Replay(&res); err != nil {
		logger.WithContext(ctx).Warn("Cached result rejected", "error", err)
		_ = s.cache.Invalidate(ctx, key) //nolint:errcheck // best effort cleanup
		return nil, false
	}

	telemetry.AddEvent(ctx, "cache_hit", attribute.Float64(telemetry.AttrAcceptance, res.AcceptanceRatio))
	return &res, true
}

// remember кладёт результат в кэш. Отказ по лимиту сценариев не кэшируется:
// ключ не содержит лимит.
func (s *AllocationService) remember(ctx context.Context, key cache.AllocationKey, res *engine.SearchResult) {
	if s.cache == nil || res.LimitExceeded {
		return
	}
	if err := s.cache.Set(ctx, key, res, s.cfg.CacheTTL); err != nil {
		logger.WithContext(ctx).Warn("Failed to cache allocation result", "error", err)
	}
}

func (s *AllocationService) search(ctx context.Context, alloc *engine.Allocator, opts *engine.Options, timeout time.Duration) (*engine.SearchResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := alloc.Run(ctx)
	parallel := opts.Workers > 1

	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordAllocation("canceled", parallel, time.Since(start), 0)
		}
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, apperror.Wrap(err, apperror.CodeTimeout, "allocation search timed out")
		case errors.Is(err, context.Canceled):
			return nil, apperror.Wrap(err, apperror.CodeCanceled, "allocation search canceled")
		default:
			return nil, apperror.Wrap(err, apperror.CodeInternal, "allocation search failed")
		}
	}

	if s.metrics != nil {
		status := "success"
		if !res.Success {
			status = "failed"
		}
		s.metrics.RecordAllocation(status, parallel, res.Duration, res.TotalCombinations)
	}

	return res, nil
}

func (s *AllocationService) recordState(res *engine.SearchResult, status engine.NetworkStatus, bottlenecks []domain.Bottleneck) {
	if s.metrics == nil {
		return
	}

	s.metrics.RecordNetworkState(res.AcceptanceRatio, status.Utilization)

	counts := make(map[domain.BottleneckSeverity]int)
	for _, b := range bottlenecks {
		counts[b.Severity]++
	}
	for _, sev := range []domain.BottleneckSeverity{domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh, domain.SeverityCritical} {
		s.metrics.RecordBottlenecks(sev.String(), counts[sev])
	}
}

func (s *AllocationService) saveRun(
	ctx context.Context,
	network *allocationv1.Network,
	net *input.Network,
	topo *domain.Topology,
	opts *engine.Options,
	key cache.AllocationKey,
	res *engine.SearchResult,
) (string, error) {
	requestData, err := json.Marshal(network)
	if err != nil {
		return "", err
	}
	resultData, err := json.Marshal(res)
	if err != nil {
		return "", err
	}

	run := &repository.Run{
		Name:              net.Name,
		NodeCount:         topo.Nodes(),
		LinkCount:         topo.TotalLinks(),
		DemandCount:       len(net.Demands),
		MaxHops:           opts.MaxHops,
		Coupling:          string(opts.Coupling),
		Success:           res.Success,
		Message:           res.Message,
		AcceptanceRatio:   res.AcceptanceRatio,
		RevenueCostRatio:  res.RevenueCostRatio,
		TotalCombinations: res.TotalCombinations,
		ValidCombinations: res.ValidCombinations,
		DurationMs:        converter.Milliseconds(res.Duration),
		TopologyHash:      key.Hash(),
		RequestData:       requestData,
		ResultData:        resultData,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return "", err
	}

	telemetry.AddEvent(ctx, "run_saved", attribute.String(telemetry.AttrRunID, run.ID))
	return run.ID, nil
}

// invalid переводит ошибки конструктора движка в ошибки аргументов
func invalid(err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Wrap(err, apperror.CodeInvalidArgument, err.Error())
}
