package kafka

import (
	"context"
	"time"

	"github.com/jeanmiche7488/mim/pkg/events"
	"github.com/jeanmiche7488/mim/pkg/logging"
	"github.com/jeanmiche7488/mim/pkg/metrics"
)

// InstrumentedProducer wraps a Producer with metrics and logging
type InstrumentedProducer struct {
	producer *Producer
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewInstrumentedProducer creates a new instrumented producer
func NewInstrumentedProducer(producer *Producer, m *metrics.Metrics, logger *logging.Logger) *InstrumentedProducer {
	return &InstrumentedProducer{
		producer: producer,
		metrics:  m,
		logger:   logger,
	}
}

// PublishEvent publishes a CloudEvent with metrics
func (p *InstrumentedProducer) PublishEvent(ctx context.Context, topic string, event *events.CloudEvent) error {
	start := time.Now()

	err := p.producer.PublishEvent(ctx, topic, event)
	duration := time.Since(start)

	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(topic, event.Type, err == nil)
	}
	if p.logger != nil {
		p.logger.KafkaPublish(ctx, topic, event.Type, err == nil, duration)
	}

	return err
}

// PublishEventAsync publishes a CloudEvent asynchronously with metrics
func (p *InstrumentedProducer) PublishEventAsync(ctx context.Context, topic string, event *events.CloudEvent, callback func(error)) {
	p.producer.PublishEventAsync(ctx, topic, event, func(err error) {
		if p.metrics != nil {
			p.metrics.RecordKafkaPublish(topic, event.Type, err == nil)
		}
		if callback != nil {
			callback(err)
		}
	})
}

// PublishBatch publishes multiple events with metrics
func (p *InstrumentedProducer) PublishBatch(ctx context.Context, topic string, evts []*events.CloudEvent) error {
	start := time.Now()

	err := p.producer.PublishBatch(ctx, topic, evts)
	duration := time.Since(start)

	if p.metrics != nil {
		for _, event := range evts {
			p.metrics.RecordKafkaPublish(topic, event.Type, err == nil)
		}
	}
	if p.logger != nil && err != nil {
		p.logger.Error("Failed to publish batch", "topic", topic, "count", len(evts), "duration", duration.String(), "error", err)
	}

	return err
}

// Close closes the underlying producer
func (p *InstrumentedProducer) Close() error {
	return p.producer.Close()
}
