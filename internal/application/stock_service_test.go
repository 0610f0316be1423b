package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanmiche7488/mim/pkg/errors"

	"github.com/jeanmiche7488/mim/internal/domain"
)

func newStockService(stocks *fakeStockRepo, params *fakeParameterRepo) *StockService {
	return NewStockService(stocks, params, nil, nil, testLogger())
}

func TestStockService_CalculateMaxStores(t *testing.T) {
	stocks := &fakeStockRepo{
		stock: &domain.StockToDispatch{StockID: "STOCK-1", Name: "Restock été", Status: domain.StockStatusPending},
		items: []domain.StockItem{
			{ItemID: "I1", StockID: "STOCK-1", Reference: "REF-1", EANCode: "1234567890123", Quantity: 30},
			{ItemID: "I2", StockID: "STOCK-1", Reference: "REF-1", EANCode: "1234567890124", Quantity: 18},
			{ItemID: "I3", StockID: "STOCK-1", Reference: "REF-2", EANCode: "1234567890125", Quantity: 7},
		},
	}
	svc := newStockService(stocks, activeParams(10, 5))

	result, err := svc.CalculateMaxStores(context.Background(), CalculateMaxStoresCommand{StockToDispatchID: "STOCK-1"})
	require.NoError(t, err)

	assert.Equal(t, "STOCK-1", result.StockToDispatchID)
	assert.Equal(t, string(domain.StockStatusMaxShopsCalculated), result.Status)
	require.Len(t, result.Items, 3)

	// REF-1 totals 48 against min 10, so the reference cap is 4.
	assert.Equal(t, 4, result.Items[0].NbMaxStoreM4)
	assert.Equal(t, 6, result.Items[0].NbMaxStoreM5)
	assert.Equal(t, 4, result.Items[0].NbMaxStoreFinal)
	assert.Equal(t, 3, result.Items[1].NbMaxStoreFinal)
	// REF-2 totals 7, under the reference minimum.
	assert.Equal(t, 0, result.Items[2].NbMaxStoreFinal)

	assert.Len(t, stocks.breakdowns, 3)
	assert.Equal(t, domain.StockStatusMaxShopsCalculated, stocks.lastStatus)
}

func TestStockService_MissingStockID(t *testing.T) {
	svc := newStockService(&fakeStockRepo{}, activeParams(10, 5))

	_, err := svc.CalculateMaxStores(context.Background(), CalculateMaxStoresCommand{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestStockService_StockNotFound(t *testing.T) {
	svc := newStockService(&fakeStockRepo{}, activeParams(10, 5))

	_, err := svc.CalculateMaxStores(context.Background(), CalculateMaxStoresCommand{StockToDispatchID: "missing"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestStockService_NoItems(t *testing.T) {
	stocks := &fakeStockRepo{
		stock: &domain.StockToDispatch{StockID: "STOCK-1", Status: domain.StockStatusPending},
	}
	svc := newStockService(stocks, activeParams(10, 5))

	_, err := svc.CalculateMaxStores(context.Background(), CalculateMaxStoresCommand{StockToDispatchID: "STOCK-1"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestStockService_NoActiveParameters(t *testing.T) {
	stocks := &fakeStockRepo{
		stock: &domain.StockToDispatch{StockID: "STOCK-1", Status: domain.StockStatusPending},
		items: []domain.StockItem{{ItemID: "I1", StockID: "STOCK-1", Reference: "REF-1", Quantity: 30}},
	}
	svc := newStockService(stocks, &fakeParameterRepo{})

	_, err := svc.CalculateMaxStores(context.Background(), CalculateMaxStoresCommand{StockToDispatchID: "STOCK-1"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}
