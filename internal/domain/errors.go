package domain

import "errors"

var (
	// Allocation errors
	ErrNoEligibleStores = errors.New("no eligible stores for allocation")
	ErrEmptyAllocation  = errors.New("no distribution items produced")

	// Input errors
	ErrStockNotFound        = errors.New("stock to dispatch not found")
	ErrNoStockItems         = errors.New("no items found for stock to dispatch")
	ErrNoActiveParameters   = errors.New("no active parameters found")
	ErrMultipleParameters   = errors.New("multiple active parameter records found")
	ErrNoActingUser         = errors.New("unable to determine acting user for distribution")
	ErrInvalidWeight        = errors.New("store weight must be positive")
	ErrInvalidQuantity      = errors.New("quantity must be non-negative")
	ErrStockAlreadyClaimed  = errors.New("stock to dispatch is already being distributed")
	ErrDispatchNotFound     = errors.New("dispatch calculation not found")
	ErrDistributionNotFound = errors.New("distribution not found")
)
