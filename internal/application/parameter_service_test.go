package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanmiche7488/mim/pkg/errors"

	"github.com/jeanmiche7488/mim/internal/domain"
)

func TestParameterService_GetActive(t *testing.T) {
	svc := NewParameterService(activeParams(10, 5), noopTxRunner{}, nil, nil, testLogger())

	params, err := svc.GetActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "PARAM-1", params.ID)
	assert.Equal(t, 10, params.MinReferenceQuantity)
	assert.Equal(t, 5, params.MinEANQuantity)
}

func TestParameterService_GetActiveNone(t *testing.T) {
	svc := NewParameterService(&fakeParameterRepo{}, noopTxRunner{}, nil, nil, testLogger())

	_, err := svc.GetActive(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestParameterService_UpdateReplacesActive(t *testing.T) {
	repo := activeParams(10, 5)
	svc := NewParameterService(repo, noopTxRunner{}, nil, nil, testLogger())

	updated, err := svc.Update(context.Background(), UpdateParametersCommand{
		MinReferenceQuantity: 20,
		MinEANQuantity:       8,
		UpdatedBy:            "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.MinReferenceQuantity)
	assert.Equal(t, 8, updated.MinEANQuantity)
	assert.Equal(t, string(domain.ParameterStatusActive), updated.Status)

	// The previous record was deactivated; only the new one is active.
	require.NotNil(t, repo.params)
	assert.Equal(t, updated.ID, repo.params.ParameterID)
}

func TestParameterService_UpdateFirstRecord(t *testing.T) {
	repo := &fakeParameterRepo{}
	svc := NewParameterService(repo, noopTxRunner{}, nil, nil, testLogger())

	updated, err := svc.Update(context.Background(), UpdateParametersCommand{
		MinReferenceQuantity: 10,
		MinEANQuantity:       5,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, updated.ID)
	require.NotNil(t, repo.params)
}

func TestParameterService_UpdateRejectsInvalidThresholds(t *testing.T) {
	svc := NewParameterService(&fakeParameterRepo{}, noopTxRunner{}, nil, nil, testLogger())

	_, err := svc.Update(context.Background(), UpdateParametersCommand{
		MinReferenceQuantity: 0,
		MinEANQuantity:       5,
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestStoreService_ListActiveOnly(t *testing.T) {
	repo := &fakeStoreRepo{stores: []domain.Store{
		{StoreID: "S1", Name: "Lyon", Weight: 70, IsActive: true},
		{StoreID: "S2", Name: "Paris", Weight: 30, IsActive: true},
		{StoreID: "S3", Name: "Nantes", Weight: 10, IsActive: false},
	}}
	svc := NewStoreService(repo, testLogger())

	stores, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, "S1", stores[0].ID)
	assert.Equal(t, 70.0, stores[0].Weight)
}

func TestStoreService_ListIncludesInactive(t *testing.T) {
	repo := &fakeStoreRepo{stores: []domain.Store{
		{StoreID: "S1", Name: "Lyon", Weight: 70, IsActive: true},
		{StoreID: "S3", Name: "Nantes", Weight: 10, IsActive: false},
	}}
	svc := NewStoreService(repo, testLogger())

	stores, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, "S3", stores[1].ID)
}
