package events

import (
	"time"
)

// EventType constants for distribution domain events
const (
	// Distribution events
	DistributionStarted   = "mim.distribution.started"
	DistributionCompleted = "mim.distribution.completed"
	DistributionFailed    = "mim.distribution.failed"

	// Dispatch pipeline events
	DispatchCalculated = "mim.dispatch.calculated"
	DispatchFailed     = "mim.dispatch.failed"

	// Stock events
	StockMaxStoresCalculated = "mim.stock.max-stores-calculated"

	// Parameter events
	ParametersUpdated = "mim.parameters.updated"
)

// Source constants for event sources
const (
	SourceDistribution = "/mim/distribution-service"
)

// CloudEvent represents a CloudEvents v1.0 compliant event
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	// Domain-specific extensions
	CorrelationID   string `json:"mimcorrelationid,omitempty"`
	DistributionID  string `json:"mimdistributionid,omitempty"`
	StockDispatchID string `json:"mimstockdispatchid,omitempty"`
}

// DistributionCompletedData represents the data payload for DistributionCompleted
type DistributionCompletedData struct {
	DistributionID    string `json:"distributionId"`
	StockToDispatchID string `json:"stockToDispatchId"`
	ItemsCount        int    `json:"itemsCount"`
	StoresCount       int    `json:"storesCount"`
	CreatedBy         string `json:"createdBy"`
}

// DistributionFailedData represents the data payload for DistributionFailed
type DistributionFailedData struct {
	StockToDispatchID string `json:"stockToDispatchId"`
	ErrorCode         string `json:"errorCode"`
	ErrorMessage      string `json:"errorMessage"`
}

// DispatchCalculatedData represents the data payload for DispatchCalculated
type DispatchCalculatedData struct {
	DispatchID string `json:"dispatchId"`
	M2Count    int    `json:"m2Count"`
	M3Count    int    `json:"m3Count"`
	M4Count    int    `json:"m4Count"`
	M6Count    int    `json:"m6Count"`
	Status     string `json:"status"`
}

// StockMaxStoresCalculatedData represents the data payload for StockMaxStoresCalculated
type StockMaxStoresCalculatedData struct {
	StockToDispatchID string `json:"stockToDispatchId"`
	ItemsCount        int    `json:"itemsCount"`
}

// ParametersUpdatedData represents the data payload for ParametersUpdated
type ParametersUpdatedData struct {
	ParameterID          string `json:"parameterId"`
	MinReferenceQuantity int    `json:"minReferenceQuantity"`
	MinEANQuantity       int    `json:"minEanQuantity"`
	UpdatedBy            string `json:"updatedBy,omitempty"`
}
