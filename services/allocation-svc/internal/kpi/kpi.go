// Package kpi переводит результат поиска в денежные показатели и сводные
// метрики для отчётов: доход и затраты по ценам за единицу полосы,
// потерянный доход по отклонённым запросам, загрузка сети.
package kpi

import (
	"math"

	"netalloc/pkg/domain"
	"netalloc/services/allocation-svc/internal/engine"
)

// Цены по умолчанию за единицу полосы на один канал
const (
	DefaultCostPerUnit       = 1.0
	DefaultRevenuePerUnit    = 10.0
	DefaultLostRevenueFactor = 1.5
	DefaultCurrency          = "$"
)

// Prices цены для пересчёта условных единиц движка
type Prices struct {
	CostPerUnit       float64 `json:"cost_per_unit"`
	RevenuePerUnit    float64 `json:"revenue_per_unit"`
	LostRevenueFactor float64 `json:"lost_revenue_factor"`
	Currency          string  `json:"currency"`
}

// DefaultPrices возвращает цены по умолчанию
func DefaultPrices() Prices {
	return Prices{
		CostPerUnit:       DefaultCostPerUnit,
		RevenuePerUnit:    DefaultRevenuePerUnit,
		LostRevenueFactor: DefaultLostRevenueFactor,
		Currency:          DefaultCurrency,
	}
}

// Normalize подставляет значения по умолчанию вместо отрицательных и
// нечисловых цен. Нулевая цена допустима и сохраняется.
func (p Prices) Normalize() Prices {
	p.CostPerUnit = priceOrDefault(p.CostPerUnit, DefaultCostPerUnit)
	p.RevenuePerUnit = priceOrDefault(p.RevenuePerUnit, DefaultRevenuePerUnit)
	p.LostRevenueFactor = priceOrDefault(p.LostRevenueFactor, DefaultLostRevenueFactor)
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	return p
}

func priceOrDefault(v, def float64) float64 {
	if v < 0 || !domain.IsFinite(v) {
		return def
	}
	return v
}

// Summary сводные показатели одного запуска
type Summary struct {
	Currency string `json:"currency"`

	TotalDemands     int     `json:"total_demands"`
	AllocatedDemands int     `json:"allocated_demands"`
	RejectedDemands  int     `json:"rejected_demands"`
	AcceptanceRatio  float64 `json:"acceptance_ratio"`

	// Условные единицы движка: полоса × число каналов
	ProxyCost    float64 `json:"proxy_cost"`
	ProxyRevenue float64 `json:"proxy_revenue"`

	OperatingCost    float64 `json:"operating_cost"`
	Revenue          float64 `json:"revenue"`
	NetProfit        float64 `json:"net_profit"`
	RevenueCostRatio float64 `json:"revenue_cost_ratio"`

	DemandedBandwidth  float64 `json:"demanded_bandwidth"`
	AllocatedBandwidth float64 `json:"allocated_bandwidth"`
	RejectedBandwidth  float64 `json:"rejected_bandwidth"`
	LostRevenue        float64 `json:"lost_revenue"`

	TotalCapacity        float64 `json:"total_capacity"`
	InitialCapacityUsage float64 `json:"initial_capacity_usage"` // проценты, не больше 100
	AverageHops          float64 `json:"average_hops"`

	TotalCombinations int64   `json:"total_combinations"`
	ValidCombinations int64   `json:"valid_combinations"`
	SearchEfficiency  float64 `json:"search_efficiency"`
}

// Compute считает показатели по результату поиска
func Compute(result *engine.SearchResult, demands []domain.Demand, topo *domain.Topology, prices Prices) Summary {
	prices = prices.Normalize()

	s := Summary{
		Currency:          prices.Currency,
		TotalDemands:      len(demands),
		DemandedBandwidth: domain.TotalBandwidth(demands),
	}
	if topo != nil {
		s.TotalCapacity = topo.TotalCapacity()
	}
	if s.TotalCapacity > 0 {
		s.InitialCapacityUsage = math.Min(s.DemandedBandwidth/s.TotalCapacity*100, 100)
	}

	if result == nil {
		s.RejectedDemands = len(demands)
		s.RejectedBandwidth = s.DemandedBandwidth
		s.LostRevenue = s.RejectedBandwidth * prices.LostRevenueFactor
		return s
	}

	s.AllocatedDemands = len(result.Allocated)
	s.RejectedDemands = len(result.Rejected)
	s.AcceptanceRatio = AcceptanceRatio(s.AllocatedDemands, s.TotalDemands)
	s.TotalCombinations = result.TotalCombinations
	s.ValidCombinations = result.ValidCombinations
	if result.TotalCombinations > 0 {
		s.SearchEfficiency = float64(result.ValidCombinations) / float64(result.TotalCombinations)
	}

	var hops int
	for _, d := range result.Details {
		s.ProxyCost += d.Cost
		s.ProxyRevenue += d.Revenue
		s.AllocatedBandwidth += d.Bandwidth
		hops += d.Hops
	}
	if len(result.Details) > 0 {
		s.AverageHops = float64(hops) / float64(len(result.Details))
	}

	for _, idx := range result.Rejected {
		if idx >= 0 && idx < len(demands) {
			s.RejectedBandwidth += demands[idx].Bandwidth
		}
	}

	s.OperatingCost = s.ProxyCost * prices.CostPerUnit
	s.Revenue = s.ProxyRevenue * prices.RevenuePerUnit
	s.NetProfit = s.Revenue - s.OperatingCost
	s.RevenueCostRatio = RevenueCostRatio(s.Revenue, s.OperatingCost)
	s.LostRevenue = s.RejectedBandwidth * prices.LostRevenueFactor

	return s
}

// AcceptanceRatio доля принятых запросов, 0 при пустом списке
func AcceptanceRatio(allocated, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(allocated) / float64(total)
}

// RevenueCostRatio отношение дохода к затратам, 0 при нулевых затратах
func RevenueCostRatio(revenue, cost float64) float64 {
	if cost == 0 {
		return 0
	}
	return revenue / cost
}
