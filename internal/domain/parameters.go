package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParameterStatus represents the lifecycle status of a parameter record
type ParameterStatus string

const (
	ParameterStatusActive   ParameterStatus = "active"
	ParameterStatusInactive ParameterStatus = "inactive"
)

// Parameters holds the distribution thresholds. Exactly one record is
// active at a time; zero or multiple active records is a validation error.
type Parameters struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ParameterID          string             `bson:"parameter_id" json:"id"`
	MinReferenceQuantity int                `bson:"min_reference_quantity" json:"min_reference_quantity"`
	MinEANQuantity       int                `bson:"min_ean_quantity" json:"min_ean_quantity"`
	Status               ParameterStatus    `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// NewParameters creates a new active parameter record
func NewParameters(parameterID string, minReferenceQuantity, minEANQuantity int) (*Parameters, error) {
	if minReferenceQuantity <= 0 || minEANQuantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	now := time.Now()
	return &Parameters{
		ParameterID:          parameterID,
		MinReferenceQuantity: minReferenceQuantity,
		MinEANQuantity:       minEANQuantity,
		Status:               ParameterStatusActive,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// Validate checks the parameter thresholds
func (p *Parameters) Validate() error {
	if p.MinReferenceQuantity <= 0 || p.MinEANQuantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// Deactivate marks the parameter record as inactive
func (p *Parameters) Deactivate() {
	p.Status = ParameterStatusInactive
	p.UpdatedAt = time.Now()
}
