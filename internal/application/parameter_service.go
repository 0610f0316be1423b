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

// ParameterService manages the active distribution thresholds
type ParameterService struct {
	parameters domain.ParameterRepository
	tx         domain.TransactionRunner

	producer     *kafka.InstrumentedProducer
	eventFactory *events.EventFactory
	logger       *logging.Logger
}

// NewParameterService creates a new ParameterService
func NewParameterService(
	parameters domain.ParameterRepository,
	tx domain.TransactionRunner,
	producer *kafka.InstrumentedProducer,
	eventFactory *events.EventFactory,
	logger *logging.Logger,
) *ParameterService {
	return &ParameterService{
		parameters:   parameters,
		tx:           tx,
		producer:     producer,
		eventFactory: eventFactory,
		logger:       logger,
	}
}

// GetActive returns the single active parameter record
func (s *ParameterService) GetActive(ctx context.Context) (*ParametersDTO, error) {
	params, err := s.parameters.FindActive(ctx)
	if err != nil {
		return nil, s.classify(err)
	}
	return ToParametersDTO(params), nil
}

// Update deactivates the current record and activates a new one, keeping
// the one-active-record invariant inside a transaction boundary
func (s *ParameterService) Update(ctx context.Context, cmd UpdateParametersCommand) (*ParametersDTO, error) {
	next, err := domain.NewParameters(mongodb.GenerateIDString(), cmd.MinReferenceQuantity, cmd.MinEANQuantity)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.parameters.FindActive(ctx)
		if err != nil && err != domain.ErrNoActiveParameters {
			return err
		}
		if current != nil {
			current.Deactivate()
			if err := s.parameters.Update(ctx, current); err != nil {
				return err
			}
		}
		return s.parameters.Save(ctx, next)
	})
	if err != nil {
		return nil, s.classify(err)
	}

	// Threshold changes alter every later distribution, keep an audit trail
	s.logger.Audit(ctx, "update", "parameters", next.ParameterID, cmd.UpdatedBy, map[string]any{
		"minReferenceQuantity": next.MinReferenceQuantity,
		"minEanQuantity":       next.MinEANQuantity,
	})

	if s.producer != nil && s.eventFactory != nil {
		event := s.eventFactory.CreateParametersUpdatedEvent(
			ctx, next.ParameterID, next.MinReferenceQuantity, next.MinEANQuantity, cmd.UpdatedBy,
		)
		s.producer.PublishEventAsync(ctx, kafka.Topics.ParameterEvents, event, nil)
	}

	return ToParametersDTO(next), nil
}

func (s *ParameterService) classify(err error) *errors.AppError {
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

// StoreService exposes read access to the destination stores
type StoreService struct {
	stores domain.StoreRepository
	logger *logging.Logger
}

// NewStoreService creates a new StoreService
func NewStoreService(stores domain.StoreRepository, logger *logging.Logger) *StoreService {
	return &StoreService{stores: stores, logger: logger}
}

// List returns the destination stores, restricted to active ones unless
// activeOnly is false
func (s *StoreService) List(ctx context.Context, activeOnly bool) ([]StoreDTO, error) {
	var stores []domain.Store
	var err error
	if activeOnly {
		stores, err = s.stores.FindActive(ctx)
	} else {
		stores, err = s.stores.FindAll(ctx)
	}
	if err != nil {
		if mongodb.IsUnavailable(err) {
			return nil, errors.ErrServiceUnavailable("storage").Wrap(err)
		}
		return nil, errors.ErrInternal("").Wrap(err)
	}

	out := make([]StoreDTO, len(stores))
	for i := range stores {
		out[i] = *ToStoreDTO(&stores[i])
	}
	return out, nil
}
