package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Топология
	AttrTopologyNodes = "topology.nodes"
	AttrTopologyLinks = "topology.links"
	AttrDemandCount   = "topology.demands"

	// Поиск
	AttrMaxHops      = "search.max_hops"
	AttrWorkers      = "search.workers"
	AttrCoupling     = "search.coupling"
	AttrCombinations = "search.combinations"
	AttrValid        = "search.valid_combinations"

	// Результат
	AttrSuccess        = "allocation.success"
	AttrAcceptance     = "allocation.acceptance_ratio"
	AttrRevenueCost    = "allocation.revenue_cost_ratio"
	AttrAllocatedCount = "allocation.allocated"
	AttrRejectedCount  = "allocation.rejected"
	AttrUtilization    = "allocation.utilization"
	AttrCacheHit       = "allocation.cache_hit"
	AttrRunID          = "allocation.run_id"
	AttrBottlenecks    = "allocation.bottlenecks"
)

// TopologyAttributes возвращает атрибуты входной задачи
func TopologyAttributes(nodes, links, demands int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrTopologyNodes, nodes),
		attribute.Int(AttrTopologyLinks, links),
		attribute.Int(AttrDemandCount, demands),
	}
}

// SearchAttributes возвращает параметры поиска
func SearchAttributes(maxHops, workers int, coupling string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrMaxHops, maxHops),
		attribute.Int(AttrWorkers, workers),
		attribute.String(AttrCoupling, coupling),
	}
}

// ResultAttributes возвращает атрибуты итога поиска
func ResultAttributes(success bool, acceptance, ratio float64, allocated, rejected int, combinations, valid int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(AttrSuccess, success),
		attribute.Float64(AttrAcceptance, acceptance),
		attribute.Float64(AttrRevenueCost, ratio),
		attribute.Int(AttrAllocatedCount, allocated),
		attribute.Int(AttrRejectedCount, rejected),
		attribute.Int64(AttrCombinations, combinations),
		attribute.Int64(AttrValid, valid),
	}
}
