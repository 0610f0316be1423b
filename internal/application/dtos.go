package application

import "time"

// DistributionResultDTO is the aggregated outcome of a distribution run.
// The orchestrator never raises past its own boundary; failures land here
// as an error code and message.
type DistributionResultDTO struct {
	Success        bool   `json:"success"`
	DistributionID string `json:"distribution_id,omitempty"`
	Error          string `json:"error,omitempty"`
	ErrorCode      string `json:"error_code,omitempty"`
	ItemsCount     int    `json:"items_count"`
}

// DistributionDTO represents a distribution header with its lines
type DistributionDTO struct {
	ID                string                `json:"id"`
	Name              string                `json:"name"`
	Status            string                `json:"status"`
	StockToDispatchID string                `json:"stock_to_dispatch_id"`
	CreatedBy         string                `json:"created_by"`
	CreatedAt         time.Time             `json:"created_at"`
	Items             []DistributionItemDTO `json:"items,omitempty"`
}

// DistributionItemDTO represents one allocation line
type DistributionItemDTO struct {
	ID                     string `json:"id"`
	DistributionID         string `json:"distribution_id"`
	ProductID              string `json:"product_id"`
	StoreID                string `json:"store_id"`
	Quantity               int    `json:"quantity"`
	EANCode                string `json:"ean_code"`
	MeetsEANCriteria       bool   `json:"meets_ean_criteria"`
	MeetsReferenceCriteria bool   `json:"meets_reference_criteria"`
	TotalReferenceQuantity int    `json:"total_reference_quantity"`
}

// StoreDTO represents a destination store
type StoreDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	IsActive bool    `json:"is_active"`
}

// ParametersDTO represents the distribution thresholds
type ParametersDTO struct {
	ID                   string    `json:"id"`
	MinReferenceQuantity int       `json:"min_reference_quantity"`
	MinEANQuantity       int       `json:"min_ean_quantity"`
	Status               string    `json:"status"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DispatchResultDTO represents the outcome of a pipeline run
type DispatchResultDTO struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	M2Result []DispatchLineDTO `json:"m2_result"`
	M3Result []DispatchLineDTO `json:"m3_result"`
	M4Result []DispatchLineDTO `json:"m4_result"`
	M5Caps   map[string]int    `json:"m5_caps"`
	M6Result []DispatchLineDTO `json:"m6_result"`
}

// DispatchLineDTO represents one candidate line of a dispatch stage
type DispatchLineDTO struct {
	StoreID   string `json:"store_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Category  string `json:"category"`
}

// DispatchHistoryDTO represents one audited dispatch line
type DispatchHistoryDTO struct {
	ID            string    `json:"id"`
	CalculationID string    `json:"calculation_id"`
	StoreID       string    `json:"store_id"`
	ProductID     string    `json:"product_id"`
	Quantity      int       `json:"quantity"`
	Status        string    `json:"status"`
	Category      string    `json:"category"`
	Timestamp     time.Time `json:"timestamp"`
}

// MaxStoresResultDTO represents the computed store caps for a stock pool
type MaxStoresResultDTO struct {
	StockToDispatchID string            `json:"stock_to_dispatch_id"`
	Status            string            `json:"status"`
	Items             []MaxStoreItemDTO `json:"items"`
}

// MaxStoreItemDTO represents the store-cap breakdown for one item
type MaxStoreItemDTO struct {
	ItemID          string `json:"item_id"`
	EANCode         string `json:"ean_code"`
	NbMaxStoreM4    int    `json:"nb_max_store_m4"`
	NbMaxStoreM5    int    `json:"nb_max_store_m5"`
	NbMaxStoreFinal int    `json:"nb_max_store_final"`
}
