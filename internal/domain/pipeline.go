package domain

import (
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category classifies a dispatch request
type Category string

const (
	CategoryA Category = "A"
	CategoryB Category = "B"
	CategoryC Category = "C"
)

// DispatchStatus represents the lifecycle status of a dispatch calculation
type DispatchStatus string

const (
	DispatchStatusPending    DispatchStatus = "pending"
	DispatchStatusInProgress DispatchStatus = "in_progress"
	DispatchStatusCompleted  DispatchStatus = "completed"
	DispatchStatusFailed     DispatchStatus = "failed"
)

// DispatchRequest is one (store, product) candidate line entering the pipeline
type DispatchRequest struct {
	StoreID   string   `bson:"store_id" json:"store_id"`
	ProductID string   `bson:"product_id" json:"product_id"`
	Quantity  int      `bson:"quantity" json:"quantity"`
	Category  Category `bson:"category" json:"category"`
}

// DispatchKey identifies a candidate line by its (store, product) pair
type DispatchKey struct {
	StoreID   string
	ProductID string
}

// Key returns the (store, product) key of a request
func (r DispatchRequest) Key() DispatchKey {
	return DispatchKey{StoreID: r.StoreID, ProductID: r.ProductID}
}

// SalesKey identifies historical sales volume for a (product, store) pair
type SalesKey struct {
	ProductID string
	StoreID   string
}

// SalesVolumes maps (product, store) pairs to historical units sold.
// Missing pairs count as zero.
type SalesVolumes map[SalesKey]int

// PipelineConfig holds the thresholds driving the staged pipeline
type PipelineConfig struct {
	AllowedCategories       []Category
	MinQuantityPerReference int
	MinQuantityPerEAN       int
}

// DispatchCalculation records the output of every stage of one pipeline run
type DispatchCalculation struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	DispatchID string             `bson:"dispatch_id" json:"id"`
	Status     DispatchStatus     `bson:"status" json:"status"`

	M2Result []DispatchRequest `bson:"m2_result" json:"m2_result"`
	M3Result []DispatchRequest `bson:"m3_result" json:"m3_result"`
	M4Result []DispatchRequest `bson:"m4_result" json:"m4_result"`
	M5Caps   map[string]int    `bson:"m5_caps" json:"m5_caps"`
	M6Result []DispatchRequest `bson:"m6_result" json:"m6_result"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DispatchHistory records one final allocation line of a completed
// pipeline run for audit purposes
type DispatchHistory struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	HistoryID     string             `bson:"history_id" json:"id"`
	CalculationID string             `bson:"calculation_id" json:"calculation_id"`
	StoreID       string             `bson:"store_id" json:"store_id"`
	ProductID     string             `bson:"product_id" json:"product_id"`
	Quantity      int                `bson:"quantity" json:"quantity"`
	Status        DispatchStatus     `bson:"status" json:"status"`
	Category      Category           `bson:"category" json:"category"`
	Timestamp     time.Time          `bson:"timestamp" json:"timestamp"`
}

// DispatchPipeline runs the staged M2-M6 admission filter over candidate
// lines. Each stage consumes the previous stage's output; the result is a
// capped, sales-ranked allocation set ensuring every product reaches enough
// distinct stores at a high enough per-store quantity.
type DispatchPipeline struct {
	config PipelineConfig
}

// NewDispatchPipeline creates a pipeline with the given thresholds
func NewDispatchPipeline(config PipelineConfig) *DispatchPipeline {
	return &DispatchPipeline{config: config}
}

// Run executes all stages over the raw requests and returns the full
// per-stage record with status completed.
func (p *DispatchPipeline) Run(dispatchID string, requests []DispatchRequest, sales SalesVolumes) *DispatchCalculation {
	now := time.Now()

	m2 := p.FilterByCategory(requests)
	m3 := p.FilterByMinQuantity(m2)
	m4 := p.Intersect(m2, m3)
	m5 := p.StoreCaps(m4)
	m6 := p.FinalSelection(m4, m5, sales)

	return &DispatchCalculation{
		DispatchID: dispatchID,
		Status:     DispatchStatusCompleted,
		M2Result:   m2,
		M3Result:   m3,
		M4Result:   m4,
		M5Caps:     m5,
		M6Result:   m6,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// FilterByCategory (M2) keeps requests whose category is allowed
func (p *DispatchPipeline) FilterByCategory(requests []DispatchRequest) []DispatchRequest {
	allowed := make(map[Category]bool, len(p.config.AllowedCategories))
	for _, c := range p.config.AllowedCategories {
		allowed[c] = true
	}

	out := make([]DispatchRequest, 0, len(requests))
	for _, r := range requests {
		if allowed[r.Category] {
			out = append(out, r)
		}
	}
	return out
}

// FilterByMinQuantity (M3) keeps entries meeting the per-reference minimum
func (p *DispatchPipeline) FilterByMinQuantity(requests []DispatchRequest) []DispatchRequest {
	out := make([]DispatchRequest, 0, len(requests))
	for _, r := range requests {
		if r.Quantity >= p.config.MinQuantityPerReference {
			out = append(out, r)
		}
	}
	return out
}

// Intersect (M4) keeps (store, product) keys present in both sets, taking
// the element-wise minimum quantity. Output preserves the order of the
// first input.
func (p *DispatchPipeline) Intersect(first, second []DispatchRequest) []DispatchRequest {
	byKey := make(map[DispatchKey]int, len(second))
	for _, r := range second {
		byKey[r.Key()] = r.Quantity
	}

	out := make([]DispatchRequest, 0, len(first))
	for _, r := range first {
		qty, ok := byKey[r.Key()]
		if !ok {
			continue
		}
		if r.Quantity < qty {
			qty = r.Quantity
		}
		line := r
		line.Quantity = qty
		out = append(out, line)
	}
	return out
}

// StoreCaps (M5) derives the per-product store-count cap from the total
// quantity and the per-EAN minimum: floor(sum(quantity) / min_ean_quantity).
func (p *DispatchPipeline) StoreCaps(requests []DispatchRequest) map[string]int {
	totals := make(map[string]int)
	for _, r := range requests {
		totals[r.ProductID] += r.Quantity
	}

	caps := make(map[string]int, len(totals))
	for productID, total := range totals {
		caps[productID] = int(math.Floor(float64(total) / float64(p.config.MinQuantityPerEAN)))
	}
	return caps
}

// FinalSelection (M6) keeps, per product, the top min(len(lines), store_cap)
// lines ranked by descending historical sales volume. Missing history counts
// as zero and ranks last; equal volumes keep input order. A product absent
// from the caps map carries no diversity constraint and keeps all lines; a
// negative cap keeps none.
func (p *DispatchPipeline) FinalSelection(requests []DispatchRequest, caps map[string]int, sales SalesVolumes) []DispatchRequest {
	byProduct := make(map[string][]DispatchRequest)
	productOrder := make([]string, 0)
	for _, r := range requests {
		if _, seen := byProduct[r.ProductID]; !seen {
			productOrder = append(productOrder, r.ProductID)
		}
		byProduct[r.ProductID] = append(byProduct[r.ProductID], r)
	}

	out := make([]DispatchRequest, 0, len(requests))
	for _, productID := range productOrder {
		lines := byProduct[productID]

		finalCap := len(lines)
		if c, ok := caps[productID]; ok && c < finalCap {
			finalCap = c
		}

		ranked := make([]DispatchRequest, len(lines))
		copy(ranked, lines)
		sort.SliceStable(ranked, func(i, j int) bool {
			vi := sales[SalesKey{ProductID: ranked[i].ProductID, StoreID: ranked[i].StoreID}]
			vj := sales[SalesKey{ProductID: ranked[j].ProductID, StoreID: ranked[j].StoreID}]
			return vi > vj
		})

		if finalCap < 0 {
			finalCap = 0
		}
		out = append(out, ranked[:finalCap]...)
	}
	return out
}
