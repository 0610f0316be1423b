package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jeanmiche7488/mim/pkg/logging"
	"github.com/jeanmiche7488/mim/pkg/metrics"
)

// InstrumentedDatabase hands out collections that record operation metrics
// and query logs on every driver call.
type InstrumentedDatabase struct {
	database *mongo.Database
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewInstrumentedDatabase creates an instrumented view over a database
// handle. Metrics and logger may be nil, in which case the corresponding
// signal is skipped.
func NewInstrumentedDatabase(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) *InstrumentedDatabase {
	return &InstrumentedDatabase{database: db, metrics: m, logger: logger}
}

// Collection returns an instrumented collection
func (d *InstrumentedDatabase) Collection(name string) *InstrumentedCollection {
	return &InstrumentedCollection{
		collection: d.database.Collection(name),
		name:       name,
		metrics:    d.metrics,
		logger:     d.logger,
	}
}

// Raw returns the underlying database handle
func (d *InstrumentedDatabase) Raw() *mongo.Database {
	return d.database
}

// InstrumentedCollection wraps a collection so every operation feeds the
// mongodb_operations metrics and the database query log.
type InstrumentedCollection struct {
	collection *mongo.Collection
	name       string
	metrics    *metrics.Metrics
	logger     *logging.Logger
}

// Name returns the collection name
func (c *InstrumentedCollection) Name() string {
	return c.name
}

func (c *InstrumentedCollection) record(ctx context.Context, operation string, success bool, duration time.Duration, rowsAffected int64) {
	if c.metrics != nil {
		c.metrics.RecordMongoDBOperation(c.name, operation, success, duration)
	}
	if c.logger != nil {
		c.logger.DatabaseQuery(ctx, c.name, operation, duration, success, rowsAffected)
	}
}

// InsertOne inserts a single document
func (c *InstrumentedCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	start := time.Now()
	result, err := c.collection.InsertOne(ctx, document, opts...)

	var rows int64
	if err == nil {
		rows = 1
	}
	c.record(ctx, "insertOne", err == nil, time.Since(start), rows)
	return result, err
}

// InsertMany inserts a batch of documents
func (c *InstrumentedCollection) InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	start := time.Now()
	result, err := c.collection.InsertMany(ctx, documents, opts...)

	var rows int64
	if err == nil && result != nil {
		rows = int64(len(result.InsertedIDs))
	}
	c.record(ctx, "insertMany", err == nil, time.Since(start), rows)
	return result, err
}

// FindOne finds a single document. A miss counts as a successful operation.
func (c *InstrumentedCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	start := time.Now()
	result := c.collection.FindOne(ctx, filter, opts...)

	err := result.Err()
	var rows int64
	if err == nil {
		rows = 1
	}
	c.record(ctx, "findOne", err == nil || err == mongo.ErrNoDocuments, time.Since(start), rows)
	return result
}

// Find opens a cursor over matching documents. The row count is unknown
// until the cursor is drained, so zero is recorded.
func (c *InstrumentedCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	start := time.Now()
	cursor, err := c.collection.Find(ctx, filter, opts...)

	c.record(ctx, "find", err == nil, time.Since(start), 0)
	return cursor, err
}

// UpdateOne updates a single document
func (c *InstrumentedCollection) UpdateOne(ctx context.Context, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	start := time.Now()
	result, err := c.collection.UpdateOne(ctx, filter, update, opts...)

	var rows int64
	if err == nil && result != nil {
		rows = result.ModifiedCount
	}
	c.record(ctx, "updateOne", err == nil, time.Since(start), rows)
	return result, err
}

// FindOneAndUpdate atomically finds and updates a document. A miss counts
// as a successful operation.
func (c *InstrumentedCollection) FindOneAndUpdate(ctx context.Context, filter, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult {
	start := time.Now()
	result := c.collection.FindOneAndUpdate(ctx, filter, update, opts...)

	err := result.Err()
	var rows int64
	if err == nil {
		rows = 1
	}
	c.record(ctx, "findOneAndUpdate", err == nil || err == mongo.ErrNoDocuments, time.Since(start), rows)
	return result
}

// BulkWrite executes a batch of write models
func (c *InstrumentedCollection) BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	start := time.Now()
	result, err := c.collection.BulkWrite(ctx, models, opts...)

	var rows int64
	if err == nil && result != nil {
		rows = result.InsertedCount + result.ModifiedCount + result.DeletedCount + result.UpsertedCount
	}
	c.record(ctx, "bulkWrite", err == nil, time.Since(start), rows)
	return result, err
}

// Aggregate runs an aggregation pipeline
func (c *InstrumentedCollection) Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error) {
	start := time.Now()
	cursor, err := c.collection.Aggregate(ctx, pipeline, opts...)

	c.record(ctx, "aggregate", err == nil, time.Since(start), 0)
	return cursor, err
}

// CreateIndexes creates the given indexes
func (c *InstrumentedCollection) CreateIndexes(ctx context.Context, models []mongo.IndexModel, opts ...*options.CreateIndexesOptions) ([]string, error) {
	start := time.Now()
	names, err := c.collection.Indexes().CreateMany(ctx, models, opts...)

	c.record(ctx, "createIndexes", err == nil, time.Since(start), 0)
	return names, err
}
