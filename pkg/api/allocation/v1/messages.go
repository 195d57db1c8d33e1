package allocationv1

import "time"

// Network входная сеть. Номера узлов в Demands считаются от IndexBase
// (по умолчанию 1), ячейки Capacity задают пропускную способность i -> j.
type Network struct {
	Name      string      `json:"name,omitempty"`
	IndexBase *int        `json:"indexBase,omitempty"`
	Capacity  [][]float64 `json:"capacity"`
	Demands   []Demand    `json:"demands"`
}

type Demand struct {
	Source      int     `json:"source"`
	Destination int     `json:"destination"`
	Bandwidth   float64 `json:"bandwidth"`
}

// SearchOptions параметры поиска. Нулевые значения берутся из конфигурации сервиса.
type SearchOptions struct {
	MaxHops      int    `json:"maxHops,omitempty"`
	Workers      int    `json:"workers,omitempty"`
	MaxScenarios int64  `json:"maxScenarios,omitempty"`
	Coupling     string `json:"coupling,omitempty"`
	TimeoutMs    int64  `json:"timeoutMs,omitempty"`
}

type AllocateRequest struct {
	Network *Network       `json:"network"`
	Options *SearchOptions `json:"options,omitempty"`
	// ReportFormat пустой, если отчёт не нужен
	ReportFormat string `json:"reportFormat,omitempty"`
	ReportTitle  string `json:"reportTitle,omitempty"`
	SkipCache    bool   `json:"skipCache,omitempty"`
	SkipHistory  bool   `json:"skipHistory,omitempty"`
}

// Allocation принятый запрос. Узлы и номер запроса с нуля.
type Allocation struct {
	DemandIndex int     `json:"demandIndex"`
	Source      int     `json:"source"`
	Destination int     `json:"destination"`
	Bandwidth   float64 `json:"bandwidth"`
	Path        []int   `json:"path"`
	Hops        int     `json:"hops"`
	Cost        float64 `json:"cost"`
	Revenue     float64 `json:"revenue"`
}

type Result struct {
	Success           bool         `json:"success"`
	Message           string       `json:"message,omitempty"`
	AcceptanceRatio   float64      `json:"acceptanceRatio"`
	RevenueCostRatio  float64      `json:"revenueCostRatio"`
	TotalRevenue      float64      `json:"totalRevenue"`
	TotalCost         float64      `json:"totalCost"`
	Allocated         []int        `json:"allocated"`
	Rejected          []int        `json:"rejected"`
	Unreachable       []int        `json:"unreachable"`
	Details           []Allocation `json:"details"`
	TotalCombinations int64        `json:"totalCombinations"`
	ValidCombinations int64        `json:"validCombinations"`
	DurationMs        float64      `json:"durationMs"`
}

type NetworkStatus struct {
	Nodes                int     `json:"nodes"`
	TotalLinks           int     `json:"totalLinks"`
	Connected            bool    `json:"connected"`
	Utilization          float64 `json:"utilization"`
	RemainingCapacity    float64 `json:"remainingCapacity"`
	OriginalCapacity     float64 `json:"originalCapacity"`
	TotalDemands         int     `json:"totalDemands"`
	AllocatedDemands     int     `json:"allocatedDemands"`
	RejectedDemands      int     `json:"rejectedDemands"`
	TotalDemandBandwidth float64 `json:"totalDemandBandwidth"`
}

// Summary денежные и эксплуатационные показатели запуска
type Summary struct {
	Currency             string  `json:"currency"`
	AcceptanceRatio      float64 `json:"acceptanceRatio"`
	OperatingCost        float64 `json:"operatingCost"`
	Revenue              float64 `json:"revenue"`
	NetProfit            float64 `json:"netProfit"`
	RevenueCostRatio     float64 `json:"revenueCostRatio"`
	DemandedBandwidth    float64 `json:"demandedBandwidth"`
	AllocatedBandwidth   float64 `json:"allocatedBandwidth"`
	RejectedBandwidth    float64 `json:"rejectedBandwidth"`
	LostRevenue          float64 `json:"lostRevenue"`
	InitialCapacityUsage float64 `json:"initialCapacityUsage"`
	AverageHops          float64 `json:"averageHops"`
	SearchEfficiency     float64 `json:"searchEfficiency"`
}

type Bottleneck struct {
	From        int     `json:"from"`
	To          int     `json:"to"`
	Capacity    float64 `json:"capacity"`
	Remaining   float64 `json:"remaining"`
	Utilization float64 `json:"utilization"`
	Severity    string  `json:"severity"`
}

// DroppedDemand запрос, отброшенный при разборе входа. Position с единицы.
type DroppedDemand struct {
	Position    int     `json:"position"`
	Source      int     `json:"source"`
	Destination int     `json:"destination"`
	Bandwidth   float64 `json:"bandwidth"`
	Reason      string  `json:"reason"`
}

type DemandDiagnostic struct {
	DemandIndex int    `json:"demandIndex"`
	Reachable   bool   `json:"reachable"`
	Reason      string `json:"reason,omitempty"`
}

type AllocateResponse struct {
	RunID        string             `json:"runId,omitempty"`
	Cached       bool               `json:"cached"`
	Result       *Result            `json:"result"`
	Status       *NetworkStatus     `json:"status"`
	Summary      *Summary           `json:"summary"`
	Bottlenecks  []Bottleneck       `json:"bottlenecks,omitempty"`
	Dropped      []DroppedDemand    `json:"dropped,omitempty"`
	Diagnostics  []DemandDiagnostic `json:"diagnostics,omitempty"`
	Report       []byte             `json:"report,omitempty"`
	ReportFormat string             `json:"reportFormat,omitempty"`
}

// EnumeratePathsRequest узлы Source и Destination с нуля
type EnumeratePathsRequest struct {
	Network     *Network `json:"network"`
	Source      int      `json:"source"`
	Destination int      `json:"destination"`
	MaxHops     int      `json:"maxHops,omitempty"`
}

type Path struct {
	Nodes []int `json:"nodes"`
	Hops  int   `json:"hops"`
}

type EnumeratePathsResponse struct {
	Paths []Path `json:"paths"`
}

type GetRunRequest struct {
	ID string `json:"id"`
}

type RunSummary struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	NodeCount         int       `json:"nodeCount"`
	LinkCount         int       `json:"linkCount"`
	DemandCount       int       `json:"demandCount"`
	Success           bool      `json:"success"`
	AcceptanceRatio   float64   `json:"acceptanceRatio"`
	RevenueCostRatio  float64   `json:"revenueCostRatio"`
	TotalCombinations int64     `json:"totalCombinations"`
	DurationMs        float64   `json:"durationMs"`
	CreatedAt         time.Time `json:"createdAt"`
}

type GetRunResponse struct {
	Run      *RunSummary `json:"run"`
	MaxHops  int         `json:"maxHops"`
	Coupling string      `json:"coupling"`
	Network  *Network    `json:"network"`
	Result   *Result     `json:"result"`
	Message  string      `json:"message,omitempty"`
}

type ListRunsRequest struct {
	Limit   int   `json:"limit,omitempty"`
	Offset  int   `json:"offset,omitempty"`
	Success *bool `json:"success,omitempty"`
}

type ListRunsResponse struct {
	Runs  []RunSummary `json:"runs"`
	Total int64        `json:"total"`
}

type DeleteRunRequest struct {
	ID string `json:"id"`
}

type DeleteRunResponse struct {
	Deleted bool `json:"deleted"`
}

type ExampleRequest struct{}

type ExampleResponse struct {
	Network *Network `json:"network"`
}
