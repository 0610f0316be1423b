package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StockStatus represents the lifecycle status of a stock to dispatch
type StockStatus string

const (
	StockStatusPending            StockStatus = "pending"
	StockStatusMaxShopsCalculated StockStatus = "max_shops_calculated"
	StockStatusDistributing       StockStatus = "distributing"
	StockStatusDistributed        StockStatus = "distributed"
)

// StockToDispatch represents a pool of stock awaiting distribution
type StockToDispatch struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	StockID string             `bson:"stock_id" json:"id"`
	Name    string             `bson:"name" json:"name"`
	Status  StockStatus        `bson:"status" json:"status"`

	CreatedBy string    `bson:"created_by" json:"created_by"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// NewStockToDispatch creates a new stock pool in pending status
func NewStockToDispatch(stockID, name, createdBy string) *StockToDispatch {
	now := time.Now()
	return &StockToDispatch{
		StockID:   stockID,
		Name:      name,
		Status:    StockStatusPending,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StockItem represents one distributable EAN line within a stock pool.
// Immutable input to allocation.
type StockItem struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ItemID  string             `bson:"item_id" json:"id"`
	StockID string             `bson:"stock_to_dispatch_id" json:"stock_to_dispatch_id"`

	ProductID string `bson:"product_id" json:"product_id"`
	Reference string `bson:"reference" json:"reference"`
	EANCode   string `bson:"ean_code" json:"ean_code"`
	Size      string `bson:"size,omitempty" json:"size,omitempty"`
	Quantity  int    `bson:"quantity" json:"quantity"`

	// Store caps computed from the active thresholds. NbMaxStoreFinal
	// caps how many stores this EAN can be spread over; zero means no
	// cap and all active stores are candidates.
	NbMaxStoreM4Ref int `bson:"nb_max_store_m4_ref,omitempty" json:"nb_max_store_m4_ref,omitempty"`
	NbMaxStoreM5EAN int `bson:"nb_max_store_m5_ean,omitempty" json:"nb_max_store_m5_ean,omitempty"`
	NbMaxStoreFinal int `bson:"nb_max_store_final,omitempty" json:"nb_max_store_final,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// MaxStoreBreakdown holds the intermediate and final store caps for an item
type MaxStoreBreakdown struct {
	ItemID          string `json:"item_id"`
	EANCode         string `json:"ean_code"`
	NbMaxStoreM4    int    `json:"nb_max_store_m4"`
	NbMaxStoreM5    int    `json:"nb_max_store_m5"`
	NbMaxStoreFinal int    `json:"nb_max_store_final"`
}

// ComputeMaxStores derives the per-item store cap from the active thresholds.
// The reference cap spreads the total reference quantity over the minimum
// per-reference quantity; the EAN cap spreads the item quantity over the
// minimum per-EAN quantity. The final cap is the smaller of the two.
func ComputeMaxStores(items []StockItem, params *Parameters) ([]MaxStoreBreakdown, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	totalByReference := make(map[string]int)
	for _, item := range items {
		totalByReference[item.Reference] += item.Quantity
	}

	breakdowns := make([]MaxStoreBreakdown, 0, len(items))
	for _, item := range items {
		m4 := int(math.Floor(float64(totalByReference[item.Reference]) / float64(params.MinReferenceQuantity)))
		m5 := int(math.Floor(float64(item.Quantity) / float64(params.MinEANQuantity)))

		final := m4
		if m5 < final {
			final = m5
		}

		breakdowns = append(breakdowns, MaxStoreBreakdown{
			ItemID:          item.ItemID,
			EANCode:         item.EANCode,
			NbMaxStoreM4:    m4,
			NbMaxStoreM5:    m5,
			NbMaxStoreFinal: final,
		})
	}

	return breakdowns, nil
}
