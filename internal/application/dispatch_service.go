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

// DispatchService runs the staged M2-M6 pipeline and records its results
type DispatchService struct {
	dispatches domain.DispatchRepository
	parameters domain.ParameterRepository
	sales      domain.SalesHistoryRepository

	producer     *kafka.InstrumentedProducer
	eventFactory *events.EventFactory
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(
	dispatches domain.DispatchRepository,
	parameters domain.ParameterRepository,
	sales domain.SalesHistoryRepository,
	producer *kafka.InstrumentedProducer,
	eventFactory *events.EventFactory,
	m *metrics.Metrics,
	logger *logging.Logger,
) *DispatchService {
	return &DispatchService{
		dispatches:   dispatches,
		parameters:   parameters,
		sales:        sales,
		producer:     producer,
		eventFactory: eventFactory,
		metrics:      m,
		logger:       logger,
	}
}

// Calculate runs the pipeline over the candidate lines and persists the
// per-stage results plus the final lines as history entries
func (s *DispatchService) Calculate(ctx context.Context, cmd CalculateDispatchCommand) (*DispatchResultDTO, error) {
	if len(cmd.Requests) == 0 {
		return nil, errors.ErrValidation("at least one dispatch request is required")
	}

	params, err := s.parameters.FindActive(ctx)
	if err != nil {
		return nil, s.classify(err)
	}
	if err := params.Validate(); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	requests := make([]domain.DispatchRequest, len(cmd.Requests))
	productIDs := make([]string, 0, len(cmd.Requests))
	seen := make(map[string]bool)
	for i, r := range cmd.Requests {
		if r.Quantity < 0 {
			return nil, errors.ErrValidation("quantity must be non-negative")
		}
		requests[i] = domain.DispatchRequest{
			StoreID:   r.StoreID,
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
			Category:  domain.Category(r.Category),
		}
		if !seen[r.ProductID] {
			seen[r.ProductID] = true
			productIDs = append(productIDs, r.ProductID)
		}
	}

	allowed := defaultAllowedCategories()
	if len(cmd.AllowedCategories) > 0 {
		allowed = make([]domain.Category, len(cmd.AllowedCategories))
		for i, c := range cmd.AllowedCategories {
			allowed[i] = domain.Category(c)
		}
	}

	volumes, err := s.sales.Volumes(ctx, productIDs)
	if err != nil {
		return nil, s.classify(err)
	}

	pipeline := domain.NewDispatchPipeline(domain.PipelineConfig{
		AllowedCategories:       allowed,
		MinQuantityPerReference: params.MinReferenceQuantity,
		MinQuantityPerEAN:       params.MinEANQuantity,
	})

	calc := pipeline.Run(mongodb.GenerateIDString(), requests, volumes)

	if err := s.dispatches.InsertCalculation(ctx, calc); err != nil {
		return nil, s.classify(err)
	}

	history := make([]domain.DispatchHistory, len(calc.M6Result))
	now := time.Now()
	for i, line := range calc.M6Result {
		history[i] = domain.DispatchHistory{
			HistoryID:     mongodb.GenerateIDString(),
			CalculationID: calc.DispatchID,
			StoreID:       line.StoreID,
			ProductID:     line.ProductID,
			Quantity:      line.Quantity,
			Status:        domain.DispatchStatusCompleted,
			Category:      line.Category,
			Timestamp:     now,
		}
	}
	if len(history) > 0 {
		if err := s.dispatches.InsertHistory(ctx, history); err != nil {
			return nil, s.classify(err)
		}
	}

	if s.metrics != nil {
		s.metrics.SetDispatchStageLines("m2", len(calc.M2Result))
		s.metrics.SetDispatchStageLines("m3", len(calc.M3Result))
		s.metrics.SetDispatchStageLines("m4", len(calc.M4Result))
		s.metrics.SetDispatchStageLines("m6", len(calc.M6Result))
	}

	s.logger.Info("Dispatch calculation completed",
		"dispatchId", calc.DispatchID,
		"m2", len(calc.M2Result),
		"m3", len(calc.M3Result),
		"m4", len(calc.M4Result),
		"m6", len(calc.M6Result),
	)

	s.publishCalculated(ctx, calc)

	return ToDispatchResultDTO(calc), nil
}

// GetCalculation fetches a stored pipeline calculation
func (s *DispatchService) GetCalculation(ctx context.Context, dispatchID string) (*DispatchResultDTO, error) {
	calc, err := s.dispatches.FindCalculation(ctx, dispatchID)
	if err != nil {
		if err == domain.ErrDispatchNotFound {
			return nil, errors.ErrNotFoundWithID("dispatch calculation", dispatchID)
		}
		return nil, s.classify(err)
	}
	return ToDispatchResultDTO(calc), nil
}

// GetHistory fetches recent dispatch history entries
func (s *DispatchService) GetHistory(ctx context.Context, query GetDispatchHistoryQuery) ([]DispatchHistoryDTO, error) {
	limit := query.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	entries, err := s.dispatches.FindHistory(ctx, limit)
	if err != nil {
		return nil, s.classify(err)
	}
	return ToDispatchHistoryDTOs(entries), nil
}

func (s *DispatchService) classify(err error) *errors.AppError {
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

func (s *DispatchService) publishCalculated(ctx context.Context, calc *domain.DispatchCalculation) {
	if s.producer == nil || s.eventFactory == nil {
		return
	}
	event := s.eventFactory.CreateDispatchCalculatedEvent(
		ctx, calc.DispatchID,
		len(calc.M2Result), len(calc.M3Result), len(calc.M4Result), len(calc.M6Result),
		string(calc.Status),
	)
	s.producer.PublishEventAsync(ctx, kafka.Topics.DispatchEvents, event, func(err error) {
		if err != nil {
			s.logger.Warn("Failed to publish dispatch calculated event", "dispatchId", calc.DispatchID, "error", err)
		}
	})
}
