package mongodb

import (
	"context"
	"errors"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jeanmiche7488/mim/pkg/metrics"
	"github.com/jeanmiche7488/mim/pkg/resilience"
)

// CircuitBreakerClient wraps Client with circuit breaker protection so that a
// failing backing store is reported as unavailable instead of timing out on
// every call.
type CircuitBreakerClient struct {
	client         *Client
	circuitBreaker *resilience.CircuitBreaker
}

// NewCircuitBreakerClient creates a new circuit breaker protected MongoDB
// client. State transitions are exported as metrics when m is non-nil.
func NewCircuitBreakerClient(client *Client, m *metrics.Metrics, logger *slog.Logger) *CircuitBreakerClient {
	if logger == nil {
		logger = slog.Default()
	}

	config := resilience.DefaultCircuitBreakerConfig("mongodb")
	if m != nil {
		config.OnStateChange = func(name string, state int, tripped bool) {
			m.SetCircuitBreakerState(name, state)
			if tripped {
				m.RecordCircuitBreakerTrip(name)
			}
		}
	}

	return &CircuitBreakerClient{
		client:         client,
		circuitBreaker: resilience.NewCircuitBreaker(config, logger),
	}
}

// Database returns the underlying database handle
func (c *CircuitBreakerClient) Database() *mongo.Database {
	return c.client.Database()
}

// Client returns the underlying MongoDB client
func (c *CircuitBreakerClient) Client() *mongo.Client {
	return c.client.Client()
}

// Close disconnects the client
func (c *CircuitBreakerClient) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

// HealthCheck performs a health check with circuit breaker protection
func (c *CircuitBreakerClient) HealthCheck(ctx context.Context) error {
	_, err := c.circuitBreaker.Execute(ctx, func() (interface{}, error) {
		return nil, c.client.HealthCheck(ctx)
	})
	return err
}

// WithTransaction executes a function within a transaction with circuit breaker protection
func (c *CircuitBreakerClient) WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	_, err := c.circuitBreaker.Execute(ctx, func() (interface{}, error) {
		return nil, c.client.WithTransaction(ctx, fn)
	})
	return err
}

// IsUnavailable reports whether err indicates the backing store could not be
// reached (open circuit, network error, or server selection timeout).
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return true
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	var stErr mongo.ServerError
	return errors.As(err, &stErr) && stErr.HasErrorLabel("TransientTransactionError")
}
