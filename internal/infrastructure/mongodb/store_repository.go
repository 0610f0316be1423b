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

type StoreRepository struct {
	collection *pkgmongo.InstrumentedCollection
}

func NewStoreRepository(db *pkgmongo.InstrumentedDatabase) *StoreRepository {
	collection := db.Collection("stores")

	repo := &StoreRepository{collection: collection}
	repo.ensureIndexes(context.Background())

	return repo
}

func (r *StoreRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "store_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		// Allocation reads active stores sorted by weight
		{Keys: bson.D{
			{Key: "is_active", Value: 1},
			{Key: "weight", Value: -1},
		}},
	}
	r.collection.CreateIndexes(ctx, indexes)
}

// FindActive returns all active stores sorted by descending weight
func (r *StoreRepository) FindActive(ctx context.Context) ([]domain.Store, error) {
	filter := bson.M{"is_active": true}
	opts := options.Find().SetSort(pkgmongo.SortDescending("weight"))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find active stores: %w", err)
	}
	defer cursor.Close(ctx)

	var stores []domain.Store
	err = cursor.All(ctx, &stores)
	return stores, err
}

// FindAll returns every store regardless of activation, sorted by
// descending weight
func (r *StoreRepository) FindAll(ctx context.Context) ([]domain.Store, error) {
	opts := options.Find().SetSort(pkgmongo.SortDescending("weight"))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find stores: %w", err)
	}
	defer cursor.Close(ctx)

	var stores []domain.Store
	err = cursor.All(ctx, &stores)
	return stores, err
}

func (r *StoreRepository) FindByID(ctx context.Context, storeID string) (*domain.Store, error) {
	filter := bson.M{"store_id": storeID}

	var store domain.Store
	err := r.collection.FindOne(ctx, filter).Decode(&store)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &store, err
}

func (r *StoreRepository) Save(ctx context.Context, store *domain.Store) error {
	opts := options.Update().SetUpsert(true)
	filter := bson.M{"store_id": store.StoreID}
	update := pkgmongo.BuildUpdate(store)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}
	return nil
}
