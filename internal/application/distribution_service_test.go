package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanmiche7488/mim/pkg/errors"

	"github.com/jeanmiche7488/mim/internal/domain"
)

func newDistributionFixture() (*fakeStockRepo, *fakeParameterRepo, *fakeStoreRepo, *fakeDistributionRepo) {
	stocks := &fakeStockRepo{
		stock: &domain.StockToDispatch{
			StockID:   "STOCK-1",
			Name:      "Restock été",
			Status:    domain.StockStatusMaxShopsCalculated,
			CreatedBy: "user-1",
		},
		items: []domain.StockItem{
			{ItemID: "I1", StockID: "STOCK-1", ProductID: "P1", EANCode: "3000000000001", Quantity: 100, NbMaxStoreFinal: 2},
		},
	}
	params := &fakeParameterRepo{
		params: &domain.Parameters{
			ParameterID:          "PARAM-1",
			MinReferenceQuantity: 10,
			MinEANQuantity:       5,
			Status:               domain.ParameterStatusActive,
		},
	}
	stores := &fakeStoreRepo{
		stores: []domain.Store{
			{StoreID: "A", Weight: 70, IsActive: true},
			{StoreID: "B", Weight: 30, IsActive: true},
			{StoreID: "C", Weight: 10, IsActive: true},
		},
	}
	distributions := &fakeDistributionRepo{}
	return stocks, params, stores, distributions
}

func newDistributionService(
	stocks *fakeStockRepo,
	params *fakeParameterRepo,
	stores *fakeStoreRepo,
	distributions *fakeDistributionRepo,
	tx domain.TransactionRunner,
) *DistributionService {
	return NewDistributionService(stocks, params, stores, distributions, tx, nil, nil, nil, testLogger())
}

func TestDistributionService_Calculate(t *testing.T) {
	stocks, params, stores, distributions := newDistributionFixture()
	svc := newDistributionService(stocks, params, stores, distributions, atomicTxRunner{})

	result := svc.Calculate(context.Background(), CalculateDistributionCommand{StockToDispatchID: "STOCK-1"})

	require.True(t, result.Success, result.Error)
	assert.NotEmpty(t, result.DistributionID)
	assert.Equal(t, 2, result.ItemsCount)

	require.NotNil(t, distributions.header)
	assert.Equal(t, "Distribution pour Restock été", distributions.header.Name)
	assert.Equal(t, "user-1", distributions.header.CreatedBy)

	require.Len(t, distributions.items, 2)
	assert.Equal(t, "A", distributions.items[0].StoreID)
	assert.Equal(t, 70, distributions.items[0].Quantity)
	assert.True(t, distributions.items[0].MeetsEANCriteria)
	assert.True(t, distributions.items[0].MeetsReferenceCriteria)
	assert.Equal(t, 100, distributions.items[0].TotalReferenceQuantity)
	assert.Equal(t, "B", distributions.items[1].StoreID)
	assert.Equal(t, 30, distributions.items[1].Quantity)

	assert.Equal(t, domain.StockStatusDistributed, stocks.lastStatus)
}

func TestDistributionService_ExplicitUserOverridesCreatedBy(t *testing.T) {
	stocks, params, stores, distributions := newDistributionFixture()
	svc := newDistributionService(stocks, params, stores, distributions, atomicTxRunner{})

	result := svc.Calculate(context.Background(), CalculateDistributionCommand{
		StockToDispatchID: "STOCK-1",
		UserID:            "user-override",
	})

	require.True(t, result.Success)
	assert.Equal(t, "user-override", distributions.header.CreatedBy)
}

func TestDistributionService_NoActingUser(t *testing.T) {
	stocks, params, stores, distributions := newDistributionFixture()
	stocks.stock.CreatedBy = ""
	svc := newDistributionService(stocks, params, stores, distributions, atomicTxRunner{})

	result := svc.Calculate(context.Background(), CalculateDistributionCommand{StockToDispatchID: "STOCK-1"})

	assert.False(t, result.Success)
	assert.Equal(t, errors.CodeValidationError, result.ErrorCode)
	assert.True(t, stocks.released)
}

func TestDistributionService_StockNotFound(t *testing.T) {
	stocks, params, stores, distributions := newDistributionFixture()
	svc := newDistributionService(stocks, params, stores, distributions, atomicTxRunner{})

	result := svc.Calculate(context.Background(), CalculateDistributionCommand{StockToDispatchID: "MISSING"})

	assert.False(t, result.Success)
	assert.Equal(t, errors.CodeNotFound, result.ErrorCode)
}

func TestDistributionService_ConcurrentRunConflict(t *testing.T) {
	stocks, params, stores, distributions := newDistributionFixture()
	stocks.claimErr = domain.ErrStockAlreadyClaimed
	svc := newDistributionService(stocks, params, stores, distributions, atomicTxRunner{})

	result := svc.Calculate(context.Background(), CalculateDistributionCommand{StockToDispatchID: "STOCK-1"})

	assert.False(t, result.Success)
	assert.Equal(t, errors.CodeConflict, result.ErrorCode)
}

func TestDistributionService_NoActiveParameters(t *testing.T) {
	stocks, params, stores, distributions := newDistributionFixture()
	params.params = nil
	svc := newDistributionService(stocks, params, stores, distributions, atomicTxRunner{})

	result := svc.Calculate(context.Background(), CalculateDistributionCommand{StockToDispatchID: "STOCK-1"})

	assert.False(t, result.Success)
	assert.Equal(t, errors.CodeValidationError, result.ErrorCode)
	assert.True(t, stocks.released)
	assert.Nil(t, distributions.header)
}

func TestDistributionService_NoItems(t *testing.T) {
	stocks, params, stores, distributions := newDistributionFixture()
	stocks.items = nil
	svc := newDistributionService(stocks, params, stores, distributions, atomicTxRunner{})

	result := svc.Calculate(context.Background(), CalculateDistributionCommand{StockToDispatchID: "STOCK-1"})

	assert.False(t, result.Success)
	assert.Equal(t, errors.CodeNotFound, result.ErrorCode)
	assert.True(t, stocks.released)
}

func TestDistributionService_NoActiveStores(t *testing.T) {
	stocks, params, stores, distributions := newDistributionFixture()
	stores.stores = nil
	svc := newDistributionService(stocks, params, stores, distributions, atomicTxRunner{})

	result := svc.Calculate(context.Background(), CalculateDistributionCommand{StockToDispatchID: "STOCK-1"})

	assert.False(t, result.Success)
	assert.Equal(t, errors.CodeNotFound, result.ErrorCode)
}

func TestDistributionService_EmptyAllocation(t *testing.T) {
	stocks, params, stores, distributions := newDistributionFixture()
	stocks.items = []domain.StockItem{
		{ItemID: "I1", StockID: "STOCK-1", ProductID: "P1", EANCode: "3000000000001", Quantity: 1, NbMaxStoreFinal: 3},
	}
	svc := newDistributionService(stocks, params, stores, distributions, atomicTxRunner{})

	result := svc.Calculate(context.Background(), CalculateDistributionCommand{StockToDispatchID: "STOCK-1"})

	assert.False(t, result.Success)
	assert.Equal(t, errors.CodeEmptyAllocation, result.ErrorCode)
	assert.True(t, stocks.released)
}

func TestDistributionService_PartialPersistWithoutTransaction(t *testing.T) {
	stocks, params, stores, distributions := newDistributionFixture()
	distributions.itemsErr = domain.ErrDistributionNotFound // any write failure after the header
	svc := newDistributionService(stocks, params, stores, distributions, noopTxRunner{})

	result := svc.Calculate(context.Background(), CalculateDistributionCommand{StockToDispatchID: "STOCK-1"})

	assert.False(t, result.Success)
	assert.Equal(t, errors.CodePartiallyPersisted, result.ErrorCode)
	// The claim stays so the orphaned header is not silently re-run.
	assert.False(t, stocks.released)
}

func TestDistributionService_PersistenceFailureWithTransaction(t *testing.T) {
	stocks, params, stores, distributions := newDistributionFixture()
	distributions.itemsErr = domain.ErrDistributionNotFound
	svc := newDistributionService(stocks, params, stores, distributions, atomicTxRunner{})

	result := svc.Calculate(context.Background(), CalculateDistributionCommand{StockToDispatchID: "STOCK-1"})

	assert.False(t, result.Success)
	assert.Equal(t, errors.CodePersistenceFailure, result.ErrorCode)
	assert.True(t, stocks.released)
}

func TestDistributionService_GetDistribution(t *testing.T) {
	stocks, params, stores, distributions := newDistributionFixture()
	svc := newDistributionService(stocks, params, stores, distributions, atomicTxRunner{})

	result := svc.Calculate(context.Background(), CalculateDistributionCommand{StockToDispatchID: "STOCK-1"})
	require.True(t, result.Success)

	dto, err := svc.GetDistribution(context.Background(), GetDistributionQuery{DistributionID: result.DistributionID})
	require.NoError(t, err)
	assert.Equal(t, result.DistributionID, dto.ID)
	assert.Len(t, dto.Items, 2)

	_, err = svc.GetDistribution(context.Background(), GetDistributionQuery{DistributionID: "missing"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}
