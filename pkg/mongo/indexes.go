package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

type IndexConfig struct {
	CollectionName string
	IndexModel     mongo.IndexModel
}

var requiredIndexes = []IndexConfig{
	// Customers Collection Indexes
	{
		CollectionName: CustomersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_customer_email_unique"),
		},
	},

	// Products Collection Indexes
	// Index 1: category equality is pushed down by product search
	{
		CollectionName: ProductsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("idx_category"),
		},
	},
	// Index 2: featured products on the home page
	{
		CollectionName: ProductsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "isFeatured", Value: 1}},
			Options: options.Index().SetName("idx_featured"),
		},
	},

	// Offers Collection Indexes
	// Index 3: active offers ordered by expiry
	{
		CollectionName: OffersCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "isActive", Value: 1},
				{Key: "validUntil", Value: 1},
			},
			Options: options.Index().SetName("idx_active_offers"),
		},
	},

	// Orders Collection Indexes
	// Index 4: order history for one user, newest first
	{
		CollectionName: OrdersCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "orderDate", Value: -1},
			},
			Options: options.Index().SetName("idx_user_orders"),
		},
	},
	// Index 5: reconciling orders against gateway payments
	{
		CollectionName: OrdersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "paymentId", Value: 1}},
			Options: options.Index().SetName("idx_order_payment"),
		},
	},
}

func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	logger = global.LoggerOrNop(logger)
	logger.Info("starting index creation")

	for _, idxConfig := range requiredIndexes {
		indexName, err := db.Collection(idxConfig.CollectionName).Indexes().CreateOne(ctx, idxConfig.IndexModel)
		if err != nil {
			return fmt.Errorf("failed to create index on collection %s: %w", idxConfig.CollectionName, err)
		}
		logger.Info("index ready", zap.String("index", indexName), zap.String("collection", idxConfig.CollectionName))
	}

	logger.Info("all indexes created")
	return nil
}
