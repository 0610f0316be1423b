package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventFactory creates CloudEvents for distribution domain events
type EventFactory struct {
	source string
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source}
}

// CreateEvent creates a new CloudEvent with the given parameters
func (f *EventFactory) CreateEvent(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
) *CloudEvent {
	return &CloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}
}

// CreateDistributionCompletedEvent creates a DistributionCompleted event
func (f *EventFactory) CreateDistributionCompletedEvent(
	ctx context.Context,
	distributionID string,
	stockToDispatchID string,
	itemsCount int,
	storesCount int,
	createdBy string,
) *CloudEvent {
	data := DistributionCompletedData{
		DistributionID:    distributionID,
		StockToDispatchID: stockToDispatchID,
		ItemsCount:        itemsCount,
		StoresCount:       storesCount,
		CreatedBy:         createdBy,
	}
	event := f.CreateEvent(ctx, DistributionCompleted, "distribution/"+distributionID, data)
	event.DistributionID = distributionID
	event.StockDispatchID = stockToDispatchID
	return event
}

// CreateDistributionFailedEvent creates a DistributionFailed event
func (f *EventFactory) CreateDistributionFailedEvent(
	ctx context.Context,
	stockToDispatchID string,
	errorCode string,
	errorMessage string,
) *CloudEvent {
	data := DistributionFailedData{
		StockToDispatchID: stockToDispatchID,
		ErrorCode:         errorCode,
		ErrorMessage:      errorMessage,
	}
	event := f.CreateEvent(ctx, DistributionFailed, "stock/"+stockToDispatchID, data)
	event.StockDispatchID = stockToDispatchID
	return event
}

// CreateDispatchCalculatedEvent creates a DispatchCalculated event
func (f *EventFactory) CreateDispatchCalculatedEvent(
	ctx context.Context,
	dispatchID string,
	m2Count, m3Count, m4Count, m6Count int,
	status string,
) *CloudEvent {
	data := DispatchCalculatedData{
		DispatchID: dispatchID,
		M2Count:    m2Count,
		M3Count:    m3Count,
		M4Count:    m4Count,
		M6Count:    m6Count,
		Status:     status,
	}
	return f.CreateEvent(ctx, DispatchCalculated, "dispatch/"+dispatchID, data)
}

// CreateStockMaxStoresCalculatedEvent creates a StockMaxStoresCalculated event
func (f *EventFactory) CreateStockMaxStoresCalculatedEvent(
	ctx context.Context,
	stockToDispatchID string,
	itemsCount int,
) *CloudEvent {
	data := StockMaxStoresCalculatedData{
		StockToDispatchID: stockToDispatchID,
		ItemsCount:        itemsCount,
	}
	event := f.CreateEvent(ctx, StockMaxStoresCalculated, "stock/"+stockToDispatchID, data)
	event.StockDispatchID = stockToDispatchID
	return event
}

// CreateParametersUpdatedEvent creates a ParametersUpdated event
func (f *EventFactory) CreateParametersUpdatedEvent(
	ctx context.Context,
	parameterID string,
	minReferenceQuantity int,
	minEANQuantity int,
	updatedBy string,
) *CloudEvent {
	data := ParametersUpdatedData{
		ParameterID:          parameterID,
		MinReferenceQuantity: minReferenceQuantity,
		MinEANQuantity:       minEANQuantity,
		UpdatedBy:            updatedBy,
	}
	return f.CreateEvent(ctx, ParametersUpdated, "parameters/"+parameterID, data)
}
