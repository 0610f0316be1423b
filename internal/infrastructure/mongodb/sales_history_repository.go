package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	pkgmongo "github.com/jeanmiche7488/mim/pkg/mongodb"

	"github.com/jeanmiche7488/mim/internal/domain"
)

type SalesHistoryRepository struct {
	collection *pkgmongo.InstrumentedCollection
}

func NewSalesHistoryRepository(db *pkgmongo.InstrumentedDatabase) *SalesHistoryRepository {
	collection := db.Collection("sales_history")

	repo := &SalesHistoryRepository{collection: collection}
	repo.ensureIndexes(context.Background())

	return repo
}

func (r *SalesHistoryRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "product_id", Value: 1},
			{Key: "store_id", Value: 1},
		}},
	}
	r.collection.CreateIndexes(ctx, indexes)
}

// Volumes sums historical sales per (product, store) pair for the given
// products. Pairs with no history are simply absent from the result.
func (r *SalesHistoryRepository) Volumes(ctx context.Context, productIDs []string) (domain.SalesVolumes, error) {
	if len(productIDs) == 0 {
		return domain.SalesVolumes{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"product_id": bson.M{"$in": productIDs}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"product_id": "$product_id",
				"store_id":   "$store_id",
			},
			"total": bson.M{"$sum": "$quantity"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales volumes: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID struct {
			ProductID string `bson:"product_id"`
			StoreID   string `bson:"store_id"`
		} `bson:"_id"`
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	volumes := make(domain.SalesVolumes, len(rows))
	for _, row := range rows {
		volumes[domain.SalesKey{ProductID: row.ID.ProductID, StoreID: row.ID.StoreID}] = row.Total
	}
	return volumes, nil
}
