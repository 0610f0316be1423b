package domain

import (
	"math"
	"sort"
)

// Allocator computes the weighted proportional distribution of stock items
// across stores. It is pure: it owns no storage and performs no I/O.
type Allocator struct{}

// NewAllocator creates a new Allocator
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate distributes each item's quantity across the highest-weighted
// eligible stores. Per item, the top nb_max_store_final stores (all stores
// when the cap is zero) receive floor(quantity * weight / total_weight)
// units each. Lines with zero quantity are dropped. The residual left by
// floor rounding is discarded, never reallocated.
func (a *Allocator) Allocate(items []StockItem, stores []Store) ([]DistributionItem, error) {
	eligible := make([]Store, 0, len(stores))
	for _, s := range stores {
		if s.Eligible() {
			eligible = append(eligible, s)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligibleStores
	}

	// Sort by weight descending; ties keep input order so runs are reproducible.
	sorted := make([]Store, len(eligible))
	copy(sorted, eligible)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})

	lines := make([]DistributionItem, 0, len(items)*len(sorted))

	for _, item := range items {
		if item.Quantity < 0 {
			return nil, ErrInvalidQuantity
		}

		candidates := sorted
		if item.NbMaxStoreFinal > 0 && item.NbMaxStoreFinal < len(sorted) {
			candidates = sorted[:item.NbMaxStoreFinal]
		}

		totalWeight := 0.0
		for _, store := range candidates {
			totalWeight += store.Weight
		}
		if len(candidates) == 0 || totalWeight <= 0 {
			return nil, ErrNoEligibleStores
		}

		for _, store := range candidates {
			share := store.Weight / totalWeight
			qty := int(math.Floor(float64(item.Quantity) * share))
			if qty == 0 {
				continue
			}

			lines = append(lines, DistributionItem{
				ProductID: item.ProductID,
				StoreID:   store.StoreID,
				Quantity:  qty,
				EANCode:   item.EANCode,
			})
		}
	}

	// Zero lines across the whole run means the inputs cannot produce a
	// usable distribution, not a benign empty result.
	if len(lines) == 0 {
		return nil, ErrEmptyAllocation
	}

	return lines, nil
}
