package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParameters(minRef, minEAN int) *Parameters {
	return &Parameters{
		ParameterID:          "PARAM-1",
		MinReferenceQuantity: minRef,
		MinEANQuantity:       minEAN,
		Status:               ParameterStatusActive,
	}
}

func TestCriteriaVerifier_Flags(t *testing.T) {
	verifier := NewCriteriaVerifier()

	lines := []DistributionItem{
		{ProductID: "P1", StoreID: "A", Quantity: 12, EANCode: "3000000000001"},
		{ProductID: "P1", StoreID: "B", Quantity: 4, EANCode: "3000000000001"},
		{ProductID: "P2", StoreID: "A", Quantity: 3, EANCode: "3000000000002"},
	}

	verified, err := verifier.Verify(lines, testParameters(10, 5))
	require.NoError(t, err)
	require.Len(t, verified, 3)

	// P1 total 16 meets the reference minimum; only the 12-unit line meets the EAN minimum.
	assert.True(t, verified[0].MeetsEANCriteria)
	assert.True(t, verified[0].MeetsReferenceCriteria)
	assert.Equal(t, 16, verified[0].TotalReferenceQuantity)

	assert.False(t, verified[1].MeetsEANCriteria)
	assert.True(t, verified[1].MeetsReferenceCriteria)
	assert.Equal(t, 16, verified[1].TotalReferenceQuantity)

	// P2 total 3 meets neither minimum.
	assert.False(t, verified[2].MeetsEANCriteria)
	assert.False(t, verified[2].MeetsReferenceCriteria)
	assert.Equal(t, 3, verified[2].TotalReferenceQuantity)
}

func TestCriteriaVerifier_NeverDropsLines(t *testing.T) {
	verifier := NewCriteriaVerifier()

	lines := []DistributionItem{
		{ProductID: "P1", StoreID: "A", Quantity: 1},
		{ProductID: "P1", StoreID: "B", Quantity: 1},
	}

	verified, err := verifier.Verify(lines, testParameters(100, 100))
	require.NoError(t, err)
	assert.Len(t, verified, len(lines))
}

func TestCriteriaVerifier_Idempotent(t *testing.T) {
	verifier := NewCriteriaVerifier()
	params := testParameters(10, 5)

	lines := []DistributionItem{
		{ProductID: "P1", StoreID: "A", Quantity: 8},
		{ProductID: "P1", StoreID: "B", Quantity: 6},
	}

	once, err := verifier.Verify(lines, params)
	require.NoError(t, err)
	twice, err := verifier.Verify(once, params)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestCriteriaVerifier_InvalidParameters(t *testing.T) {
	verifier := NewCriteriaVerifier()

	_, err := verifier.Verify(nil, testParameters(0, 5))
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
