package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	pkgmongo "github.com/jeanmiche7488/mim/pkg/mongodb"

	"github.com/jeanmiche7488/mim/internal/domain"
)

type ParameterRepository struct {
	collection *pkgmongo.InstrumentedCollection
}

func NewParameterRepository(db *pkgmongo.InstrumentedDatabase) *ParameterRepository {
	collection := db.Collection("parameters")

	repo := &ParameterRepository{collection: collection}
	repo.ensureIndexes(context.Background())

	return repo
}

func (r *ParameterRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "parameter_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	r.collection.CreateIndexes(ctx, indexes)
}

// FindActive returns the single active parameter record. Zero or more
// than one active record is a data fault surfaced to the caller.
func (r *ParameterRepository) FindActive(ctx context.Context) (*domain.Parameters, error) {
	filter := bson.M{"status": domain.ParameterStatusActive}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetLimit(2))
	if err != nil {
		return nil, fmt.Errorf("failed to find active parameters: %w", err)
	}
	defer cursor.Close(ctx)

	var params []domain.Parameters
	if err := cursor.All(ctx, &params); err != nil {
		return nil, err
	}

	switch len(params) {
	case 0:
		return nil, domain.ErrNoActiveParameters
	case 1:
		return &params[0], nil
	default:
		return nil, domain.ErrMultipleParameters
	}
}

func (r *ParameterRepository) Save(ctx context.Context, params *domain.Parameters) error {
	opts := options.Update().SetUpsert(true)
	filter := bson.M{"parameter_id": params.ParameterID}
	update := pkgmongo.BuildUpdate(params)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save parameters: %w", err)
	}
	return nil
}

func (r *ParameterRepository) Update(ctx context.Context, params *domain.Parameters) error {
	filter := bson.M{"parameter_id": params.ParameterID}
	update := pkgmongo.BuildUpdateWithTimestamp(bson.M{"status": params.Status})

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update parameters: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNoActiveParameters
	}
	return nil
}
