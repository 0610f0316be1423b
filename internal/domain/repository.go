package domain

import "context"

// StoreRepository provides access to the stores collection
type StoreRepository interface {
	FindActive(ctx context.Context) ([]Store, error)
	FindAll(ctx context.Context) ([]Store, error)
	FindByID(ctx context.Context, storeID string) (*Store, error)
	Save(ctx context.Context, store *Store) error
}

// ParameterRepository provides access to the parameters collection
type ParameterRepository interface {
	// FindActive returns the single active parameter record. It fails with
	// ErrNoActiveParameters when none exists and ErrMultipleParameters when
	// more than one is active.
	FindActive(ctx context.Context) (*Parameters, error)
	Save(ctx context.Context, params *Parameters) error
	Update(ctx context.Context, params *Parameters) error
}

// StockRepository provides access to the stock_to_dispatch collections
type StockRepository interface {
	FindByID(ctx context.Context, stockID string) (*StockToDispatch, error)
	FindItems(ctx context.Context, stockID string) ([]StockItem, error)
	UpdateStatus(ctx context.Context, stockID string, status StockStatus) error
	// ClaimForDistribution atomically transitions the stock into
	// distributing status and returns the stock as it was before the
	// claim. It fails with ErrStockAlreadyClaimed when the stock is
	// already being distributed.
	ClaimForDistribution(ctx context.Context, stockID string) (*StockToDispatch, error)
	ReleaseClaim(ctx context.Context, stockID string, status StockStatus) error
	UpdateItemMaxStores(ctx context.Context, breakdowns []MaxStoreBreakdown) error
}

// DistributionRepository provides access to the distributions collections
type DistributionRepository interface {
	Insert(ctx context.Context, distribution *Distribution) error
	InsertItems(ctx context.Context, items []DistributionItem) error
	FindByID(ctx context.Context, distributionID string) (*Distribution, error)
	FindItems(ctx context.Context, distributionID string) ([]DistributionItem, error)
}

// DispatchRepository provides access to dispatch calculations and history
type DispatchRepository interface {
	InsertCalculation(ctx context.Context, calc *DispatchCalculation) error
	FindCalculation(ctx context.Context, dispatchID string) (*DispatchCalculation, error)
	InsertHistory(ctx context.Context, entries []DispatchHistory) error
	FindHistory(ctx context.Context, limit int64) ([]DispatchHistory, error)
}

// SalesHistoryRepository provides historical sales volumes per (product, store)
type SalesHistoryRepository interface {
	Volumes(ctx context.Context, productIDs []string) (SalesVolumes, error)
}

// TransactionRunner executes a function inside a storage transaction
// boundary. Implementations without transaction support run the function
// directly, leaving callers exposed to partial persistence on mid-sequence
// failure.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// Transactional reports whether writes inside RunInTransaction are atomic.
	Transactional() bool
}
