package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanmiche7488/mim/pkg/errors"

	"github.com/jeanmiche7488/mim/internal/domain"
)

func newDispatchService(dispatches *fakeDispatchRepo, params *fakeParameterRepo, sales *fakeSalesRepo) *DispatchService {
	return NewDispatchService(dispatches, params, sales, nil, nil, nil, testLogger())
}

func activeParams(minRef, minEAN int) *fakeParameterRepo {
	return &fakeParameterRepo{
		params: &domain.Parameters{
			ParameterID:          "PARAM-1",
			MinReferenceQuantity: minRef,
			MinEANQuantity:       minEAN,
			Status:               domain.ParameterStatusActive,
		},
	}
}

func TestDispatchService_Calculate(t *testing.T) {
	dispatches := &fakeDispatchRepo{}
	sales := &fakeSalesRepo{volumes: domain.SalesVolumes{
		{ProductID: "P1", StoreID: "S3"}: 120,
		{ProductID: "P1", StoreID: "S1"}: 50,
	}}
	svc := newDispatchService(dispatches, activeParams(5, 10), sales)

	result, err := svc.Calculate(context.Background(), CalculateDispatchCommand{
		Requests: []DispatchRequestInput{
			{StoreID: "S1", ProductID: "P1", Quantity: 12, Category: "A"},
			{StoreID: "S2", ProductID: "P1", Quantity: 8, Category: "B"},
			{StoreID: "S3", ProductID: "P1", Quantity: 5, Category: "A"},
			{StoreID: "S4", ProductID: "P1", Quantity: 3, Category: "C"},
		},
		AllowedCategories: []string{"A", "B"},
	})
	require.NoError(t, err)

	assert.Equal(t, "completed", result.Status)
	assert.Len(t, result.M2Result, 3) // C dropped
	assert.Len(t, result.M3Result, 3) // all >= 5
	assert.Len(t, result.M4Result, 3)
	assert.Equal(t, 2, result.M5Caps["P1"]) // total 25 over 10
	require.Len(t, result.M6Result, 2)
	assert.Equal(t, "S3", result.M6Result[0].StoreID) // best seller first
	assert.Equal(t, "S1", result.M6Result[1].StoreID)

	// Final lines are audited as history.
	require.NotNil(t, dispatches.calc)
	require.Len(t, dispatches.history, 2)
	assert.Equal(t, dispatches.calc.DispatchID, dispatches.history[0].CalculationID)
	assert.Equal(t, domain.DispatchStatusCompleted, dispatches.history[0].Status)
}

func TestDispatchService_EmptyRequests(t *testing.T) {
	svc := newDispatchService(&fakeDispatchRepo{}, activeParams(5, 10), &fakeSalesRepo{})

	_, err := svc.Calculate(context.Background(), CalculateDispatchCommand{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestDispatchService_NegativeQuantity(t *testing.T) {
	svc := newDispatchService(&fakeDispatchRepo{}, activeParams(5, 10), &fakeSalesRepo{})

	_, err := svc.Calculate(context.Background(), CalculateDispatchCommand{
		Requests: []DispatchRequestInput{
			{StoreID: "S1", ProductID: "P1", Quantity: -1, Category: "A"},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestDispatchService_NoActiveParameters(t *testing.T) {
	svc := newDispatchService(&fakeDispatchRepo{}, &fakeParameterRepo{}, &fakeSalesRepo{})

	_, err := svc.Calculate(context.Background(), CalculateDispatchCommand{
		Requests: []DispatchRequestInput{
			{StoreID: "S1", ProductID: "P1", Quantity: 12, Category: "A"},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestDispatchService_CorruptStoredParameters(t *testing.T) {
	// A parameter record persisted with a zero threshold must be rejected
	// before it can feed the per-product cap division.
	dispatches := &fakeDispatchRepo{}
	svc := newDispatchService(dispatches, activeParams(5, 0), &fakeSalesRepo{})

	_, err := svc.Calculate(context.Background(), CalculateDispatchCommand{
		Requests: []DispatchRequestInput{
			{StoreID: "S1", ProductID: "P1", Quantity: 25, Category: "A"},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
	assert.Nil(t, dispatches.calc)
}

func TestDispatchService_GetCalculationAndHistory(t *testing.T) {
	dispatches := &fakeDispatchRepo{}
	svc := newDispatchService(dispatches, activeParams(5, 10), &fakeSalesRepo{})

	result, err := svc.Calculate(context.Background(), CalculateDispatchCommand{
		Requests: []DispatchRequestInput{
			{StoreID: "S1", ProductID: "P1", Quantity: 12, Category: "A"},
			{StoreID: "S2", ProductID: "P1", Quantity: 8, Category: "A"},
		},
	})
	require.NoError(t, err)

	fetched, err := svc.GetCalculation(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Equal(t, result.ID, fetched.ID)

	_, err = svc.GetCalculation(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))

	history, err := svc.GetHistory(context.Background(), GetDispatchHistoryQuery{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
