package application

import "github.com/jeanmiche7488/mim/internal/domain"

// ToDistributionDTO maps a distribution header and its lines to a DTO
func ToDistributionDTO(d *domain.Distribution, items []domain.DistributionItem) *DistributionDTO {
	dto := &DistributionDTO{
		ID:                d.DistributionID,
		Name:              d.Name,
		Status:            string(d.Status),
		StockToDispatchID: d.StockToDispatchID,
		CreatedBy:         d.CreatedBy,
		CreatedAt:         d.CreatedAt,
	}

	if len(items) > 0 {
		dto.Items = make([]DistributionItemDTO, len(items))
		for i, item := range items {
			dto.Items[i] = ToDistributionItemDTO(item)
		}
	}

	return dto
}

// ToDistributionItemDTO maps an allocation line to a DTO
func ToDistributionItemDTO(item domain.DistributionItem) DistributionItemDTO {
	return DistributionItemDTO{
		ID:                     item.ItemID,
		DistributionID:         item.DistributionID,
		ProductID:              item.ProductID,
		StoreID:                item.StoreID,
		Quantity:               item.Quantity,
		EANCode:                item.EANCode,
		MeetsEANCriteria:       item.MeetsEANCriteria,
		MeetsReferenceCriteria: item.MeetsReferenceCriteria,
		TotalReferenceQuantity: item.TotalReferenceQuantity,
	}
}

// ToStoreDTO maps a store to a DTO
func ToStoreDTO(s *domain.Store) *StoreDTO {
	return &StoreDTO{
		ID:       s.StoreID,
		Name:     s.Name,
		Weight:   s.Weight,
		IsActive: s.IsActive,
	}
}

// ToParametersDTO maps a parameter record to a DTO
func ToParametersDTO(p *domain.Parameters) *ParametersDTO {
	return &ParametersDTO{
		ID:                   p.ParameterID,
		MinReferenceQuantity: p.MinReferenceQuantity,
		MinEANQuantity:       p.MinEANQuantity,
		Status:               string(p.Status),
		UpdatedAt:            p.UpdatedAt,
	}
}

// ToDispatchResultDTO maps a pipeline calculation to a DTO
func ToDispatchResultDTO(calc *domain.DispatchCalculation) *DispatchResultDTO {
	return &DispatchResultDTO{
		ID:       calc.DispatchID,
		Status:   string(calc.Status),
		M2Result: toDispatchLineDTOs(calc.M2Result),
		M3Result: toDispatchLineDTOs(calc.M3Result),
		M4Result: toDispatchLineDTOs(calc.M4Result),
		M5Caps:   calc.M5Caps,
		M6Result: toDispatchLineDTOs(calc.M6Result),
	}
}

func toDispatchLineDTOs(requests []domain.DispatchRequest) []DispatchLineDTO {
	out := make([]DispatchLineDTO, len(requests))
	for i, r := range requests {
		out[i] = DispatchLineDTO{
			StoreID:   r.StoreID,
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
			Category:  string(r.Category),
		}
	}
	return out
}

// ToDispatchHistoryDTOs maps dispatch history entries to DTOs
func ToDispatchHistoryDTOs(entries []domain.DispatchHistory) []DispatchHistoryDTO {
	out := make([]DispatchHistoryDTO, len(entries))
	for i, e := range entries {
		out[i] = DispatchHistoryDTO{
			ID:            e.HistoryID,
			CalculationID: e.CalculationID,
			StoreID:       e.StoreID,
			ProductID:     e.ProductID,
			Quantity:      e.Quantity,
			Status:        string(e.Status),
			Category:      string(e.Category),
			Timestamp:     e.Timestamp,
		}
	}
	return out
}

// ToMaxStoresResultDTO maps store-cap breakdowns to a DTO
func ToMaxStoresResultDTO(stockID string, status domain.StockStatus, breakdowns []domain.MaxStoreBreakdown) *MaxStoresResultDTO {
	items := make([]MaxStoreItemDTO, len(breakdowns))
	for i, b := range breakdowns {
		items[i] = MaxStoreItemDTO{
			ItemID:          b.ItemID,
			EANCode:         b.EANCode,
			NbMaxStoreM4:    b.NbMaxStoreM4,
			NbMaxStoreM5:    b.NbMaxStoreM5,
			NbMaxStoreFinal: b.NbMaxStoreFinal,
		}
	}
	return &MaxStoresResultDTO{
		StockToDispatchID: stockID,
		Status:            string(status),
		Items:             items,
	}
}
