package application

import (
	"context"
	"errors"

	"github.com/jeanmiche7488/mim/pkg/logging"

	"github.com/jeanmiche7488/mim/internal/domain"
)

func testLogger() *logging.Logger {
	return logging.New(logging.DefaultConfig("test"))
}

type fakeStockRepo struct {
	stock      *domain.StockToDispatch
	items      []domain.StockItem
	claimErr   error
	itemsErr   error
	statusErr  error
	claimed    bool
	released   bool
	lastStatus domain.StockStatus
	breakdowns []domain.MaxStoreBreakdown
}

func (f *fakeStockRepo) FindByID(ctx context.Context, stockID string) (*domain.StockToDispatch, error) {
	if f.stock == nil || f.stock.StockID != stockID {
		return nil, domain.ErrStockNotFound
	}
	return f.stock, nil
}

func (f *fakeStockRepo) FindItems(ctx context.Context, stockID string) ([]domain.StockItem, error) {
	if f.itemsErr != nil {
		return nil, f.itemsErr
	}
	return f.items, nil
}

func (f *fakeStockRepo) UpdateStatus(ctx context.Context, stockID string, status domain.StockStatus) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.lastStatus = status
	return nil
}

func (f *fakeStockRepo) ClaimForDistribution(ctx context.Context, stockID string) (*domain.StockToDispatch, error) {
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	if f.stock == nil || f.stock.StockID != stockID {
		return nil, domain.ErrStockNotFound
	}
	f.claimed = true
	return f.stock, nil
}

func (f *fakeStockRepo) ReleaseClaim(ctx context.Context, stockID string, status domain.StockStatus) error {
	f.released = true
	f.lastStatus = status
	return nil
}

func (f *fakeStockRepo) UpdateItemMaxStores(ctx context.Context, breakdowns []domain.MaxStoreBreakdown) error {
	f.breakdowns = breakdowns
	return nil
}

type fakeParameterRepo struct {
	params  *domain.Parameters
	history []*domain.Parameters
	err     error
}

func (f *fakeParameterRepo) FindActive(ctx context.Context) (*domain.Parameters, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.params == nil {
		return nil, domain.ErrNoActiveParameters
	}
	return f.params, nil
}

func (f *fakeParameterRepo) Save(ctx context.Context, params *domain.Parameters) error {
	f.history = append(f.history, params)
	f.params = params
	return nil
}

func (f *fakeParameterRepo) Update(ctx context.Context, params *domain.Parameters) error {
	if params.Status == domain.ParameterStatusInactive && f.params != nil && f.params.ParameterID == params.ParameterID {
		f.params = nil
	}
	return nil
}

type fakeStoreRepo struct {
	stores []domain.Store
	err    error
}

func (f *fakeStoreRepo) FindActive(ctx context.Context) ([]domain.Store, error) {
	if f.err != nil {
		return nil, f.err
	}
	active := make([]domain.Store, 0, len(f.stores))
	for _, s := range f.stores {
		if s.IsActive {
			active = append(active, s)
		}
	}
	return active, nil
}

func (f *fakeStoreRepo) FindAll(ctx context.Context) ([]domain.Store, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stores, nil
}

func (f *fakeStoreRepo) FindByID(ctx context.Context, storeID string) (*domain.Store, error) {
	for i := range f.stores {
		if f.stores[i].StoreID == storeID {
			return &f.stores[i], nil
		}
	}
	return nil, errors.New("store not found")
}

func (f *fakeStoreRepo) Save(ctx context.Context, store *domain.Store) error {
	f.stores = append(f.stores, *store)
	return nil
}

type fakeDistributionRepo struct {
	header    *domain.Distribution
	items     []domain.DistributionItem
	insertErr error
	itemsErr  error
}

func (f *fakeDistributionRepo) Insert(ctx context.Context, distribution *domain.Distribution) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.header = distribution
	return nil
}

func (f *fakeDistributionRepo) InsertItems(ctx context.Context, items []domain.DistributionItem) error {
	if f.itemsErr != nil {
		return f.itemsErr
	}
	f.items = items
	return nil
}

func (f *fakeDistributionRepo) FindByID(ctx context.Context, distributionID string) (*domain.Distribution, error) {
	if f.header == nil || f.header.DistributionID != distributionID {
		return nil, domain.ErrDistributionNotFound
	}
	return f.header, nil
}

func (f *fakeDistributionRepo) FindItems(ctx context.Context, distributionID string) ([]domain.DistributionItem, error) {
	return f.items, nil
}

type fakeDispatchRepo struct {
	calc    *domain.DispatchCalculation
	history []domain.DispatchHistory
}

func (f *fakeDispatchRepo) InsertCalculation(ctx context.Context, calc *domain.DispatchCalculation) error {
	f.calc = calc
	return nil
}

func (f *fakeDispatchRepo) FindCalculation(ctx context.Context, dispatchID string) (*domain.DispatchCalculation, error) {
	if f.calc == nil || f.calc.DispatchID != dispatchID {
		return nil, domain.ErrDispatchNotFound
	}
	return f.calc, nil
}

func (f *fakeDispatchRepo) InsertHistory(ctx context.Context, entries []domain.DispatchHistory) error {
	f.history = append(f.history, entries...)
	return nil
}

func (f *fakeDispatchRepo) FindHistory(ctx context.Context, limit int64) ([]domain.DispatchHistory, error) {
	return f.history, nil
}

type fakeSalesRepo struct {
	volumes domain.SalesVolumes
}

func (f *fakeSalesRepo) Volumes(ctx context.Context, productIDs []string) (domain.SalesVolumes, error) {
	if f.volumes == nil {
		return domain.SalesVolumes{}, nil
	}
	return f.volumes, nil
}

// noopTxRunner runs the function directly without a transaction boundary
type noopTxRunner struct{}

func (noopTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (noopTxRunner) Transactional() bool { return false }

// atomicTxRunner pretends writes inside the boundary are atomic
type atomicTxRunner struct{}

func (atomicTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (atomicTxRunner) Transactional() bool { return true }
