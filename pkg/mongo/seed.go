package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

// Seed loads sample products, offers and orders. A collection that already has documents is left alone
// unless forceReset is set, in which case it is emptied first.
func Seed(ctx context.Context, db *mongo.Database, forceReset bool, logger *zap.Logger) error {
	logger = global.LoggerOrNop(logger)
	now := time.Now()

	var products []interface{}
	for _, p := range sampleProducts() {
		products = append(products, productDocument{ID: bson.NewObjectID(), Product: p})
	}
	var offers []interface{}
	for _, o := range sampleOffers(now) {
		offers = append(offers, offerDocument{ID: bson.NewObjectID(), Offer: o})
	}
	var orders []interface{}
	for _, o := range sampleOrders(now) {
		orders = append(orders, orderDocument{ID: bson.NewObjectID(), Order: o})
	}

	for _, step := range []struct {
		collection string
		docs       []interface{}
	}{
		{ProductsCollection, products},
		{OffersCollection, offers},
		{OrdersCollection, orders},
	} {
		if err := seedCollection(ctx, db.Collection(step.collection), step.docs, forceReset, logger); err != nil {
			return err
		}
	}
	return nil
}

func seedCollection(ctx context.Context, coll *mongo.Collection, docs []interface{}, forceReset bool, logger *zap.Logger) error {
	count, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to count %s: %w", coll.Name(), err)
	}

	if count > 0 && !forceReset {
		logger.Info("collection already seeded, skipping", zap.String("collection", coll.Name()), zap.Int64("documents", count))
		return nil
	}
	if count > 0 {
		if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("failed to clear %s: %w", coll.Name(), err)
		}
	}

	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to seed %s: %w", coll.Name(), err)
	}
	logger.Info("collection seeded", zap.String("collection", coll.Name()), zap.Int("documents", len(docs)))
	return nil
}
