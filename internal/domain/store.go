package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store represents a destination store with a relative distribution weight.
// Only active stores participate in allocation; weight has no fixed scale,
// only relative magnitude matters.
type Store struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	StoreID  string             `bson:"store_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Weight   float64            `bson:"weight" json:"weight"`
	IsActive bool               `bson:"is_active" json:"is_active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// NewStore creates a new store
func NewStore(storeID, name string, weight float64) (*Store, error) {
	if weight <= 0 {
		return nil, ErrInvalidWeight
	}

	now := time.Now()
	return &Store{
		StoreID:   storeID,
		Name:      name,
		Weight:    weight,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Eligible reports whether the store can receive allocations.
// Stores with non-positive weight never participate, even when active.
func (s *Store) Eligible() bool {
	return s.IsActive && s.Weight > 0
}

// Deactivate removes the store from future allocations
func (s *Store) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now()
}

// UpdateWeight changes the store's distribution weight
func (s *Store) UpdateWeight(weight float64) error {
	if weight <= 0 {
		return ErrInvalidWeight
	}
	s.Weight = weight
	s.UpdatedAt = time.Now()
	return nil
}
