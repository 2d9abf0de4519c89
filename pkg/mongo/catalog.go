package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// CatalogRepository reads the products and offers collections
type CatalogRepository struct {
	products *mongo.Collection
	offers   *mongo.Collection
}

func NewCatalogRepository(db *mongo.Database) *CatalogRepository {
	return &CatalogRepository{
		products: db.Collection(ProductsCollection),
		offers:   db.Collection(OffersCollection),
	}
}

func (r *CatalogRepository) FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	opts := options.Find().SetLimit(int64(limit))
	return r.findProducts(ctx, bson.D{{Key: "isFeatured", Value: true}}, opts)
}

func (r *CatalogRepository) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	var doc productDocument
	err := r.products.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product %s: %w", id, err)
	}

	product := doc.toModel()
	return &product, nil
}

func (r *CatalogRepository) ProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	filter := bson.D{}
	if category != "" {
		filter = bson.D{{Key: "category", Value: category}}
	}
	return r.findProducts(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *CatalogRepository) ActiveOffers(ctx context.Context, today string, limit int) ([]models.Offer, error) {
	filter := bson.D{
		{Key: "isActive", Value: true},
		{Key: "validUntil", Value: bson.D{{Key: "$gte", Value: today}}},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "validUntil", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.offers.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []offerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode offers: %w", err)
	}

	offers := make([]models.Offer, 0, len(docs))
	for _, doc := range docs {
		offers = append(offers, doc.toModel())
	}
	return offers, nil
}

func (r *CatalogRepository) findProducts(ctx context.Context, filter bson.D, opts ...options.Lister[options.FindOptions]) ([]models.Product, error) {
	cursor, err := r.products.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]models.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.toModel())
	}
	return products, nil
}
