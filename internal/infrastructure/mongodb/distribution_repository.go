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

type DistributionRepository struct {
	headers *pkgmongo.InstrumentedCollection
	items   *pkgmongo.InstrumentedCollection
}

func NewDistributionRepository(db *pkgmongo.InstrumentedDatabase) *DistributionRepository {
	repo := &DistributionRepository{
		headers: db.Collection("distributions"),
		items:   db.Collection("distribution_items"),
	}
	repo.ensureIndexes(context.Background())

	return repo
}

func (r *DistributionRepository) ensureIndexes(ctx context.Context) {
	headerIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "distribution_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "stock_to_dispatch_id", Value: 1}}},
	}
	r.headers.CreateIndexes(ctx, headerIndexes)

	itemIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "item_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{
			{Key: "distribution_id", Value: 1},
			{Key: "store_id", Value: 1},
		}},
	}
	r.items.CreateIndexes(ctx, itemIndexes)
}

func (r *DistributionRepository) Insert(ctx context.Context, distribution *domain.Distribution) error {
	_, err := r.headers.InsertOne(ctx, distribution)
	if err != nil {
		return fmt.Errorf("failed to insert distribution: %w", err)
	}
	return nil
}

func (r *DistributionRepository) InsertItems(ctx context.Context, items []domain.DistributionItem) error {
	if len(items) == 0 {
		return nil
	}

	docs := make([]interface{}, len(items))
	for i := range items {
		docs[i] = items[i]
	}

	_, err := r.items.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to insert distribution items: %w", err)
	}
	return nil
}

func (r *DistributionRepository) FindByID(ctx context.Context, distributionID string) (*domain.Distribution, error) {
	filter := bson.M{"distribution_id": distributionID}

	var distribution domain.Distribution
	err := r.headers.FindOne(ctx, filter).Decode(&distribution)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrDistributionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find distribution: %w", err)
	}
	return &distribution, nil
}

func (r *DistributionRepository) FindItems(ctx context.Context, distributionID string) ([]domain.DistributionItem, error) {
	filter := bson.M{"distribution_id": distributionID}
	opts := options.Find().SetSort(pkgmongo.SortAscending("store_id"))

	cursor, err := r.items.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find distribution items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []domain.DistributionItem
	err = cursor.All(ctx, &items)
	return items, err
}
