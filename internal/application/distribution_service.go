package application

import (
	"context"
	"time"

	"github.com/jeanmiche7488/mim/pkg/errors"
	"github.com/jeanmiche7488/mim/pkg/events"
	"github.com/jeanmiche7488/mim/pkg/kafka"
	"github.com/jeanmiche7488/mim/pkg/logging"
	"github.com/jeanmiche7488/mim/pkg/metrics"
	"github.com/jeanmiche7488/mim/pkg/mongodb"

	"github.com/jeanmiche7488/mim/internal/domain"
)

// DistributionService orchestrates a distribution run: fetch inputs,
// allocate, verify, persist. Each step is fail-fast; failures are
// aggregated into the result instead of raised past this boundary.
type DistributionService struct {
	stocks        domain.StockRepository
	parameters    domain.ParameterRepository
	stores        domain.StoreRepository
	distributions domain.DistributionRepository
	tx            domain.TransactionRunner

	allocator *domain.Allocator
	verifier  *domain.CriteriaVerifier

	producer     *kafka.InstrumentedProducer
	eventFactory *events.EventFactory
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

// NewDistributionService creates a new DistributionService
func NewDistributionService(
	stocks domain.StockRepository,
	parameters domain.ParameterRepository,
	stores domain.StoreRepository,
	distributions domain.DistributionRepository,
	tx domain.TransactionRunner,
	producer *kafka.InstrumentedProducer,
	eventFactory *events.EventFactory,
	m *metrics.Metrics,
	logger *logging.Logger,
) *DistributionService {
	return &DistributionService{
		stocks:        stocks,
		parameters:    parameters,
		stores:        stores,
		distributions: distributions,
		tx:            tx,
		allocator:     domain.NewAllocator(),
		verifier:      domain.NewCriteriaVerifier(),
		producer:      producer,
		eventFactory:  eventFactory,
		metrics:       m,
		logger:        logger,
	}
}

// Calculate runs a full distribution for a stock pool
func (s *DistributionService) Calculate(ctx context.Context, cmd CalculateDistributionCommand) *DistributionResultDTO {
	start := time.Now()

	result, appErr := s.calculate(ctx, cmd)
	duration := time.Since(start)

	if appErr != nil {
		s.logger.Error("Distribution failed",
			"stockToDispatchId", cmd.StockToDispatchID,
			"code", appErr.Code,
			"error", appErr.Message,
			"duration", duration.String(),
		)
		if s.metrics != nil {
			s.metrics.RecordDistributionComputed(false)
		}
		s.publishFailed(ctx, cmd.StockToDispatchID, appErr)

		return &DistributionResultDTO{
			Success:   false,
			Error:     appErr.Message,
			ErrorCode: appErr.Code,
		}
	}

	s.logger.Info("Distribution completed",
		"stockToDispatchId", cmd.StockToDispatchID,
		"distributionId", result.DistributionID,
		"itemsCount", result.ItemsCount,
		"duration", duration.String(),
	)
	if s.metrics != nil {
		s.metrics.RecordDistributionComputed(true)
		s.metrics.RecordDistributionLines(result.ItemsCount)
	}
	s.logger.Performance(ctx, "distribution.calculate", duration, true, map[string]any{
		"itemsCount": result.ItemsCount,
	})

	return result
}

func (s *DistributionService) calculate(ctx context.Context, cmd CalculateDistributionCommand) (*DistributionResultDTO, *errors.AppError) {
	if cmd.StockToDispatchID == "" {
		return nil, errors.ErrValidation("stock_to_dispatch_id is required")
	}

	// Claim the stock up front so two runs for the same source cannot
	// interleave. The claim is released on any subsequent failure.
	stock, err := s.stocks.ClaimForDistribution(ctx, cmd.StockToDispatchID)
	if err != nil {
		return nil, s.classify(err, cmd.StockToDispatchID)
	}
	priorStatus := stock.Status

	userID := cmd.UserID
	if userID == "" {
		userID = stock.CreatedBy
	}
	if userID == "" {
		return nil, s.abort(ctx, cmd.StockToDispatchID, priorStatus,
			errors.ErrValidation(domain.ErrNoActingUser.Error()))
	}

	params, err := s.parameters.FindActive(ctx)
	if err != nil {
		return nil, s.abort(ctx, cmd.StockToDispatchID, priorStatus, s.classify(err, cmd.StockToDispatchID))
	}

	items, err := s.stocks.FindItems(ctx, cmd.StockToDispatchID)
	if err != nil {
		return nil, s.abort(ctx, cmd.StockToDispatchID, priorStatus, s.classify(err, cmd.StockToDispatchID))
	}
	if len(items) == 0 {
		return nil, s.abort(ctx, cmd.StockToDispatchID, priorStatus,
			errors.ErrNotFoundWithID("stock items", cmd.StockToDispatchID))
	}

	stores, err := s.stores.FindActive(ctx)
	if err != nil {
		return nil, s.abort(ctx, cmd.StockToDispatchID, priorStatus, s.classify(err, cmd.StockToDispatchID))
	}
	if len(stores) == 0 {
		return nil, s.abort(ctx, cmd.StockToDispatchID, priorStatus,
			errors.ErrNotFound("active stores"))
	}

	lines, err := s.allocator.Allocate(items, stores)
	if err != nil {
		return nil, s.abort(ctx, cmd.StockToDispatchID, priorStatus, s.classify(err, cmd.StockToDispatchID))
	}

	verified, err := s.verifier.Verify(lines, params)
	if err != nil {
		return nil, s.abort(ctx, cmd.StockToDispatchID, priorStatus, s.classify(err, cmd.StockToDispatchID))
	}

	distribution := domain.NewDistribution(mongodb.GenerateIDString(), stock.StockID, stock.Name, userID)
	now := mongodb.Now()
	for i := range verified {
		verified[i].ItemID = mongodb.GenerateIDString()
		verified[i].DistributionID = distribution.DistributionID
		verified[i].CreatedAt = now
	}

	if appErr := s.persist(ctx, distribution, verified); appErr != nil {
		// A partial persist leaves the claim in place so the orphaned
		// header is not silently re-runnable.
		if appErr.Code != errors.CodePartiallyPersisted {
			s.release(ctx, cmd.StockToDispatchID, priorStatus)
		}
		return nil, appErr
	}

	distribution.MarkCompleted(len(verified))
	s.publishCompleted(ctx, distribution, len(verified), len(stores))
	distribution.ClearDomainEvents()

	return &DistributionResultDTO{
		Success:        true,
		DistributionID: distribution.DistributionID,
		ItemsCount:     len(verified),
	}, nil
}

// persist writes the header, the lines, and the status update inside the
// transaction boundary. Without a transactional runner a mid-sequence
// failure is surfaced as PartiallyPersisted instead of a clean failure.
func (s *DistributionService) persist(ctx context.Context, distribution *domain.Distribution, items []domain.DistributionItem) *errors.AppError {
	headerWritten := false

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.distributions.Insert(ctx, distribution); err != nil {
			return err
		}
		headerWritten = true

		if err := s.distributions.InsertItems(ctx, items); err != nil {
			return err
		}

		return s.stocks.UpdateStatus(ctx, distribution.StockToDispatchID, domain.StockStatusDistributed)
	})
	if err == nil {
		return nil
	}

	if mongodb.IsUnavailable(err) {
		return errors.ErrServiceUnavailable("storage").Wrap(err)
	}
	if headerWritten && !s.tx.Transactional() {
		return errors.ErrPartiallyPersisted("distribution header written but lines or status update failed").Wrap(err)
	}
	return errors.ErrPersistenceFailure("failed to persist distribution").Wrap(err)
}

// abort releases the distribution claim and returns the error unchanged
func (s *DistributionService) abort(ctx context.Context, stockID string, priorStatus domain.StockStatus, appErr *errors.AppError) *errors.AppError {
	s.release(ctx, stockID, priorStatus)
	return appErr
}

func (s *DistributionService) release(ctx context.Context, stockID string, priorStatus domain.StockStatus) {
	if err := s.stocks.ReleaseClaim(ctx, stockID, priorStatus); err != nil {
		s.logger.Warn("Failed to release distribution claim", "stockToDispatchId", stockID, "error", err)
	}
}

func (s *DistributionService) classify(err error, stockID string) *errors.AppError {
	switch {
	case errors.IsAppError(err):
		appErr, _ := errors.AsAppError(err)
		return appErr
	case mongodb.IsUnavailable(err):
		return errors.ErrServiceUnavailable("storage").Wrap(err)
	}

	switch err {
	case domain.ErrStockNotFound:
		return errors.ErrNotFoundWithID("stock to dispatch", stockID)
	case domain.ErrStockAlreadyClaimed:
		return errors.ErrConflict("distribution already in progress for this stock")
	case domain.ErrNoActiveParameters, domain.ErrMultipleParameters,
		domain.ErrNoActingUser, domain.ErrInvalidQuantity, domain.ErrInvalidWeight:
		return errors.ErrValidation(err.Error())
	case domain.ErrNoEligibleStores:
		return errors.ErrNoEligibleStores(err.Error())
	case domain.ErrEmptyAllocation:
		return errors.ErrEmptyAllocation("no distribution items created; check quantities and store weights")
	default:
		return errors.ErrInternal("").Wrap(err)
	}
}

func (s *DistributionService) publishCompleted(ctx context.Context, d *domain.Distribution, itemsCount, storesCount int) {
	if s.producer == nil || s.eventFactory == nil {
		return
	}
	event := s.eventFactory.CreateDistributionCompletedEvent(
		ctx, d.DistributionID, d.StockToDispatchID, itemsCount, storesCount, d.CreatedBy,
	)
	s.producer.PublishEventAsync(ctx, kafka.Topics.DistributionEvents, event, func(err error) {
		if err != nil {
			s.logger.Warn("Failed to publish distribution completed event", "distributionId", d.DistributionID, "error", err)
		}
	})
}

func (s *DistributionService) publishFailed(ctx context.Context, stockID string, appErr *errors.AppError) {
	if s.producer == nil || s.eventFactory == nil {
		return
	}
	event := s.eventFactory.CreateDistributionFailedEvent(ctx, stockID, appErr.Code, appErr.Message)
	s.producer.PublishEventAsync(ctx, kafka.Topics.DistributionEvents, event, nil)
}

// GetDistribution fetches a distribution with its lines
func (s *DistributionService) GetDistribution(ctx context.Context, query GetDistributionQuery) (*DistributionDTO, error) {
	distribution, err := s.distributions.FindByID(ctx, query.DistributionID)
	if err != nil {
		if err == domain.ErrDistributionNotFound {
			return nil, errors.ErrNotFoundWithID("distribution", query.DistributionID)
		}
		return nil, s.classify(err, query.DistributionID)
	}

	items, err := s.distributions.FindItems(ctx, query.DistributionID)
	if err != nil {
		return nil, s.classify(err, query.DistributionID)
	}

	return ToDistributionDTO(distribution, items), nil
}
