package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMaxStores(t *testing.T) {
	items := []StockItem{
		{ItemID: "I1", Reference: "REF-1", EANCode: "3000000000001", Quantity: 30},
		{ItemID: "I2", Reference: "REF-1", EANCode: "3000000000002", Quantity: 18},
		{ItemID: "I3", Reference: "REF-2", EANCode: "3000000000003", Quantity: 7},
	}

	breakdowns, err := ComputeMaxStores(items, testParameters(10, 5))
	require.NoError(t, err)
	require.Len(t, breakdowns, 3)

	// REF-1 totals 48: reference cap floor(48/10)=4.
	// I1 EAN cap floor(30/5)=6 -> final 4.
	assert.Equal(t, 4, breakdowns[0].NbMaxStoreM4)
	assert.Equal(t, 6, breakdowns[0].NbMaxStoreM5)
	assert.Equal(t, 4, breakdowns[0].NbMaxStoreFinal)

	// I2 EAN cap floor(18/5)=3 -> final 3.
	assert.Equal(t, 4, breakdowns[1].NbMaxStoreM4)
	assert.Equal(t, 3, breakdowns[1].NbMaxStoreM5)
	assert.Equal(t, 3, breakdowns[1].NbMaxStoreFinal)

	// REF-2 totals 7: reference cap 0 dominates.
	assert.Equal(t, 0, breakdowns[2].NbMaxStoreM4)
	assert.Equal(t, 1, breakdowns[2].NbMaxStoreM5)
	assert.Equal(t, 0, breakdowns[2].NbMaxStoreFinal)
}

func TestComputeMaxStores_InvalidParameters(t *testing.T) {
	_, err := ComputeMaxStores(nil, testParameters(10, 0))
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestNewStore_RejectsNonPositiveWeight(t *testing.T) {
	_, err := NewStore("S1", "Store 1", 0)
	assert.ErrorIs(t, err, ErrInvalidWeight)

	store, err := NewStore("S1", "Store 1", 2.5)
	require.NoError(t, err)
	assert.True(t, store.Eligible())

	store.Deactivate()
	assert.False(t, store.Eligible())
}

func TestNewParameters_RejectsNonPositiveThresholds(t *testing.T) {
	_, err := NewParameters("PARAM-1", 0, 5)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	params, err := NewParameters("PARAM-1", 10, 5)
	require.NoError(t, err)
	assert.Equal(t, ParameterStatusActive, params.Status)
}
