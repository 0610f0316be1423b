package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DistributionStatus represents the lifecycle status of a distribution
type DistributionStatus string

const (
	DistributionStatusCreated   DistributionStatus = "created"
	DistributionStatusCompleted DistributionStatus = "completed"
	DistributionStatusFailed    DistributionStatus = "failed"
)

// Distribution is the persisted header of one allocation run. Created
// exactly once per successful run; never mutated afterwards, corrections
// require a new distribution.
type Distribution struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	DistributionID string             `bson:"distribution_id" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Status         DistributionStatus `bson:"status" json:"status"`

	StockToDispatchID string `bson:"stock_to_dispatch_id" json:"stock_to_dispatch_id"`
	CreatedBy         string `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	DomainEvents []DomainEvent `bson:"-" json:"-"`
}

// NewDistribution creates a new distribution header
func NewDistribution(distributionID, stockToDispatchID, stockName, createdBy string) *Distribution {
	now := time.Now()
	d := &Distribution{
		DistributionID:    distributionID,
		Name:              "Distribution pour " + stockName,
		Status:            DistributionStatusCreated,
		StockToDispatchID: stockToDispatchID,
		CreatedBy:         createdBy,
		CreatedAt:         now,
		UpdatedAt:         now,
		DomainEvents:      make([]DomainEvent, 0),
	}

	d.AddDomainEvent(&DistributionCreatedEvent{
		DistributionID:    distributionID,
		StockToDispatchID: stockToDispatchID,
		CreatedBy:         createdBy,
		CreatedAt:         now,
	})

	return d
}

// MarkCompleted marks the distribution as completed
func (d *Distribution) MarkCompleted(itemsCount int) {
	now := time.Now()
	d.Status = DistributionStatusCompleted
	d.UpdatedAt = now

	d.AddDomainEvent(&DistributionCompletedEvent{
		DistributionID:    d.DistributionID,
		StockToDispatchID: d.StockToDispatchID,
		ItemsCount:        itemsCount,
		CompletedAt:       now,
	})
}

// AddDomainEvent appends a domain event to the aggregate
func (d *Distribution) AddDomainEvent(event DomainEvent) {
	d.DomainEvents = append(d.DomainEvents, event)
}

// ClearDomainEvents clears pending domain events after publishing
func (d *Distribution) ClearDomainEvents() {
	d.DomainEvents = make([]DomainEvent, 0)
}

// DistributionItem is one allocation line: a quantity of one EAN assigned
// to one store, tagged with the criteria flags computed by the verifier.
type DistributionItem struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ItemID         string             `bson:"item_id" json:"id"`
	DistributionID string             `bson:"distribution_id" json:"distribution_id"`

	ProductID string `bson:"product_id" json:"product_id"`
	StoreID   string `bson:"store_id" json:"store_id"`
	Quantity  int    `bson:"quantity" json:"quantity"`
	EANCode   string `bson:"ean_code" json:"ean_code"`

	MeetsEANCriteria       bool `bson:"meets_ean_criteria" json:"meets_ean_criteria"`
	MeetsReferenceCriteria bool `bson:"meets_reference_criteria" json:"meets_reference_criteria"`
	TotalReferenceQuantity int  `bson:"total_reference_quantity" json:"total_reference_quantity"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
