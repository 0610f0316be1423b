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

type DispatchRepository struct {
	calculations *pkgmongo.InstrumentedCollection
	history      *pkgmongo.InstrumentedCollection
}

func NewDispatchRepository(db *pkgmongo.InstrumentedDatabase) *DispatchRepository {
	repo := &DispatchRepository{
		calculations: db.Collection("dispatch_calculations"),
		history:      db.Collection("dispatch_history"),
	}
	repo.ensureIndexes(context.Background())

	return repo
}

func (r *DispatchRepository) ensureIndexes(ctx context.Context) {
	calcIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dispatch_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	r.calculations.CreateIndexes(ctx, calcIndexes)

	historyIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "history_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "calculation_id", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	}
	r.history.CreateIndexes(ctx, historyIndexes)
}

func (r *DispatchRepository) InsertCalculation(ctx context.Context, calc *domain.DispatchCalculation) error {
	_, err := r.calculations.InsertOne(ctx, calc)
	if err != nil {
		return fmt.Errorf("failed to insert dispatch calculation: %w", err)
	}
	return nil
}

func (r *DispatchRepository) FindCalculation(ctx context.Context, dispatchID string) (*domain.DispatchCalculation, error) {
	filter := bson.M{"dispatch_id": dispatchID}

	var calc domain.DispatchCalculation
	err := r.calculations.FindOne(ctx, filter).Decode(&calc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrDispatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find dispatch calculation: %w", err)
	}
	return &calc, nil
}

func (r *DispatchRepository) InsertHistory(ctx context.Context, entries []domain.DispatchHistory) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]interface{}, len(entries))
	for i := range entries {
		docs[i] = entries[i]
	}

	_, err := r.history.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to insert dispatch history: %w", err)
	}
	return nil
}

func (r *DispatchRepository) FindHistory(ctx context.Context, limit int64) ([]domain.DispatchHistory, error) {
	opts := options.Find().
		SetSort(pkgmongo.SortDescending("timestamp")).
		SetLimit(limit)

	cursor, err := r.history.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find dispatch history: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []domain.DispatchHistory
	err = cursor.All(ctx, &entries)
	return entries, err
}
