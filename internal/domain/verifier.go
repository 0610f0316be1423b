package domain

// CriteriaVerifier tags allocation lines against the active thresholds.
// It never drops lines, only annotates; whether unmet-criteria lines are
// rejected or accepted is a downstream policy.
type CriteriaVerifier struct{}

// NewCriteriaVerifier creates a new CriteriaVerifier
func NewCriteriaVerifier() *CriteriaVerifier {
	return &CriteriaVerifier{}
}

// Verify enriches each line with the EAN and reference criteria flags.
// The EAN criterion compares the line quantity against min_ean_quantity;
// the reference criterion compares the product's total quantity across
// all lines against min_reference_quantity. Idempotent.
func (v *CriteriaVerifier) Verify(lines []DistributionItem, params *Parameters) ([]DistributionItem, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	totalByProduct := make(map[string]int)
	for _, line := range lines {
		totalByProduct[line.ProductID] += line.Quantity
	}

	verified := make([]DistributionItem, len(lines))
	for i, line := range lines {
		total := totalByProduct[line.ProductID]

		line.MeetsEANCriteria = line.Quantity >= params.MinEANQuantity
		line.MeetsReferenceCriteria = total >= params.MinReferenceQuantity
		line.TotalReferenceQuantity = total

		verified[i] = line
	}

	return verified, nil
}
