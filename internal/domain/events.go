package domain

import "time"

// DomainEvent is the interface all domain events implement
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// DistributionCreatedEvent is emitted when a distribution header is created
type DistributionCreatedEvent struct {
	DistributionID    string
	StockToDispatchID string
	CreatedBy         string
	CreatedAt         time.Time
}

func (e *DistributionCreatedEvent) EventType() string     { return "mim.distribution.started" }
func (e *DistributionCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// DistributionCompletedEvent is emitted when a distribution run finishes successfully
type DistributionCompletedEvent struct {
	DistributionID    string
	StockToDispatchID string
	ItemsCount        int
	CompletedAt       time.Time
}

func (e *DistributionCompletedEvent) EventType() string     { return "mim.distribution.completed" }
func (e *DistributionCompletedEvent) OccurredAt() time.Time { return e.CompletedAt }
