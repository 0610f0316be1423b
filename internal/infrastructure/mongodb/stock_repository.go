package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	pkgmongo "github.com/jeanmiche7488/mim/pkg/mongodb"

	"github.com/jeanmiche7488/mim/internal/domain"
)

type StockRepository struct {
	pools *pkgmongo.InstrumentedCollection
	items *pkgmongo.InstrumentedCollection
}

func NewStockRepository(db *pkgmongo.InstrumentedDatabase) *StockRepository {
	repo := &StockRepository{
		pools: db.Collection("stock_to_dispatch"),
		items: db.Collection("stock_to_dispatch_items"),
	}
	repo.ensureIndexes(context.Background())

	return repo
}

func (r *StockRepository) ensureIndexes(ctx context.Context) {
	poolIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "stock_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	r.pools.CreateIndexes(ctx, poolIndexes)

	itemIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "item_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "stock_to_dispatch_id", Value: 1}}},
	}
	r.items.CreateIndexes(ctx, itemIndexes)
}

func (r *StockRepository) FindByID(ctx context.Context, stockID string) (*domain.StockToDispatch, error) {
	filter := bson.M{"stock_id": stockID}

	var stock domain.StockToDispatch
	err := r.pools.FindOne(ctx, filter).Decode(&stock)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrStockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find stock to dispatch: %w", err)
	}
	return &stock, nil
}

func (r *StockRepository) FindItems(ctx context.Context, stockID string) ([]domain.StockItem, error) {
	filter := bson.M{"stock_to_dispatch_id": stockID}

	cursor, err := r.items.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find stock items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []domain.StockItem
	err = cursor.All(ctx, &items)
	return items, err
}

func (r *StockRepository) UpdateStatus(ctx context.Context, stockID string, status domain.StockStatus) error {
	filter := bson.M{"stock_id": stockID}
	update := pkgmongo.BuildUpdateWithTimestamp(bson.M{"status": status})

	result, err := r.pools.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update stock status: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrStockNotFound
	}
	return nil
}

// ClaimForDistribution moves the stock into distributing status in a
// single compare-and-swap, so two concurrent runs cannot both claim it.
// The returned document is the pre-claim state.
func (r *StockRepository) ClaimForDistribution(ctx context.Context, stockID string) (*domain.StockToDispatch, error) {
	filter := bson.M{
		"stock_id": stockID,
		"status":   bson.M{"$ne": domain.StockStatusDistributing},
	}
	update := pkgmongo.BuildUpdateWithTimestamp(bson.M{"status": domain.StockStatusDistributing})
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var stock domain.StockToDispatch
	err := r.pools.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stock)
	if err == mongo.ErrNoDocuments {
		// Either missing or already claimed; one extra read disambiguates.
		if _, findErr := r.FindByID(ctx, stockID); findErr != nil {
			return nil, findErr
		}
		return nil, domain.ErrStockAlreadyClaimed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim stock for distribution: %w", err)
	}
	return &stock, nil
}

func (r *StockRepository) ReleaseClaim(ctx context.Context, stockID string, status domain.StockStatus) error {
	filter := bson.M{
		"stock_id": stockID,
		"status":   domain.StockStatusDistributing,
	}
	update := pkgmongo.BuildUpdateWithTimestamp(bson.M{"status": status})

	_, err := r.pools.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release stock claim: %w", err)
	}
	return nil
}

// UpdateItemMaxStores writes the computed store caps back on each item
func (r *StockRepository) UpdateItemMaxStores(ctx context.Context, breakdowns []domain.MaxStoreBreakdown) error {
	if len(breakdowns) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, len(breakdowns))
	now := time.Now()
	for i, b := range breakdowns {
		models[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{"item_id": b.ItemID}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"nb_max_store_m4_ref": b.NbMaxStoreM4,
					"nb_max_store_m5_ean": b.NbMaxStoreM5,
					"nb_max_store_final":  b.NbMaxStoreFinal,
					"updated_at":          now,
				},
			})
	}

	_, err := r.items.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to update item max stores: %w", err)
	}
	return nil
}
