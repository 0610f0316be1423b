package application

import "github.com/jeanmiche7488/mim/internal/domain"

// CalculateDistributionCommand triggers a distribution run for a stock pool.
// UserID is optional; when empty the stock's created_by is used.
type CalculateDistributionCommand struct {
	StockToDispatchID string `json:"stock_to_dispatch_id" validate:"required"`
	UserID            string `json:"user_id,omitempty"`
}

// CalculateMaxStoresCommand computes the per-item store caps for a stock pool
type CalculateMaxStoresCommand struct {
	StockToDispatchID string `json:"stock_to_dispatch_id" validate:"required"`
}

// DispatchRequestInput is one candidate line of a dispatch calculation request
type DispatchRequestInput struct {
	StoreID   string `json:"store_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
	Category  string `json:"category" validate:"required,category"`
}

// CalculateDispatchCommand runs the staged pipeline over candidate lines
type CalculateDispatchCommand struct {
	Requests          []DispatchRequestInput `json:"requests" validate:"required,min=1,dive"`
	AllowedCategories []string               `json:"allowed_categories,omitempty"`
}

// UpdateParametersCommand replaces the active distribution thresholds
type UpdateParametersCommand struct {
	MinReferenceQuantity int    `json:"min_reference_quantity" validate:"required,gt=0"`
	MinEANQuantity       int    `json:"min_ean_quantity" validate:"required,gt=0"`
	UpdatedBy            string `json:"updated_by,omitempty"`
}

// GetDistributionQuery fetches a distribution with its lines
type GetDistributionQuery struct {
	DistributionID string
}

// GetDispatchHistoryQuery fetches recent dispatch history entries
type GetDispatchHistoryQuery struct {
	Limit int64
}

// defaultAllowedCategories returns the categories admitted when the
// command does not narrow them
func defaultAllowedCategories() []domain.Category {
	return []domain.Category{domain.CategoryA, domain.CategoryB, domain.CategoryC}
}
