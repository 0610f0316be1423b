package application

import (
	"context"

	"github.com/jeanmiche7488/mim/pkg/errors"
	"github.com/jeanmiche7488/mim/pkg/events"
	"github.com/jeanmiche7488/mim/pkg/kafka"
	"github.com/jeanmiche7488/mim/pkg/logging"
	"github.com/jeanmiche7488/mim/pkg/mongodb"

	"github.com/jeanmiche7488/mim/internal/domain"
)

// StockService computes and persists the per-item store caps for a stock pool
type StockService struct {
	stocks     domain.StockRepository
	parameters domain.ParameterRepository

	producer     *kafka.InstrumentedProducer
	eventFactory *events.EventFactory
	logger       *logging.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	stocks domain.StockRepository,
	parameters domain.ParameterRepository,
	producer *kafka.InstrumentedProducer,
	eventFactory *events.EventFactory,
	logger *logging.Logger,
) *StockService {
	return &StockService{
		stocks:       stocks,
		parameters:   parameters,
		producer:     producer,
		eventFactory: eventFactory,
		logger:       logger,
	}
}

// CalculateMaxStores derives nb_max_store_final for every item of the
// stock pool and moves the pool to max_shops_calculated
func (s *StockService) CalculateMaxStores(ctx context.Context, cmd CalculateMaxStoresCommand) (*MaxStoresResultDTO, error) {
	if cmd.StockToDispatchID == "" {
		return nil, errors.ErrValidation("stock_to_dispatch_id is required")
	}

	stock, err := s.stocks.FindByID(ctx, cmd.StockToDispatchID)
	if err != nil {
		if err == domain.ErrStockNotFound {
			return nil, errors.ErrNotFoundWithID("stock to dispatch", cmd.StockToDispatchID)
		}
		return nil, s.classify(err)
	}

	params, err := s.parameters.FindActive(ctx)
	if err != nil {
		return nil, s.classify(err)
	}

	items, err := s.stocks.FindItems(ctx, cmd.StockToDispatchID)
	if err != nil {
		return nil, s.classify(err)
	}
	if len(items) == 0 {
		return nil, errors.ErrNotFoundWithID("stock items", cmd.StockToDispatchID)
	}

	breakdowns, err := domain.ComputeMaxStores(items, params)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.stocks.UpdateItemMaxStores(ctx, breakdowns); err != nil {
		return nil, s.classify(err)
	}
	if err := s.stocks.UpdateStatus(ctx, stock.StockID, domain.StockStatusMaxShopsCalculated); err != nil {
		return nil, s.classify(err)
	}

	s.logger.Info("Max stores calculated",
		"stockToDispatchId", stock.StockID,
		"itemsCount", len(breakdowns),
	)

	if s.producer != nil && s.eventFactory != nil {
		event := s.eventFactory.CreateStockMaxStoresCalculatedEvent(ctx, stock.StockID, len(breakdowns))
		s.producer.PublishEventAsync(ctx, kafka.Topics.StockEvents, event, nil)
	}

	return ToMaxStoresResultDTO(stock.StockID, domain.StockStatusMaxShopsCalculated, breakdowns), nil
}

func (s *StockService) classify(err error) *errors.AppError {
	switch {
	case errors.IsAppError(err):
		appErr, _ := errors.AsAppError(err)
		return appErr
	case mongodb.IsUnavailable(err):
		return errors.ErrServiceUnavailable("storage").Wrap(err)
	case err == domain.ErrNoActiveParameters || err == domain.ErrMultipleParameters:
		return errors.ErrValidation(err.Error())
	default:
		return errors.ErrInternal("").Wrap(err)
	}
}
