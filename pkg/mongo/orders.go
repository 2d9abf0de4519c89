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

type OrderRepository struct {
	orders *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{orders: db.Collection(OrdersCollection)}
}

func (r *OrderRepository) Insert(ctx context.Context, order *models.Order) (string, error) {
	doc := orderDocument{ID: bson.NewObjectID(), Order: *order}

	if _, err := r.orders.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to insert order: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}})

	cursor, err := r.orders.Find(ctx, bson.D{{Key: "userId", Value: userID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	orders := make([]models.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, doc.toModel())
	}
	return orders, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	var doc orderDocument
	err := r.orders.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order %s: %w", id, err)
	}

	order := doc.toModel()
	return &order, nil
}

type ProductPurchase struct {
	ProductID string  `json:"productId" bson:"_id"`
	Name      string  `json:"name" bson:"name"`
	Units     int     `json:"units" bson:"units"`
	Spent     float64 `json:"spent" bson:"spent"`
}

type SpendingSummary struct {
	OrderCount    int               `json:"orderCount" bson:"orderCount"`
	TotalSpent    float64           `json:"totalSpent" bson:"totalSpent"`
	TotalSaved    float64           `json:"totalSaved" bson:"totalSaved"`
	AvgOrderValue float64           `json:"avgOrderValue" bson:"avgOrderValue"`
	TopProducts   []ProductPurchase `json:"topProducts" bson:"topProducts"`
}

// SpendingSummary aggregates a user's order history: totals plus the five most purchased products
func (r *OrderRepository) SpendingSummary(ctx context.Context, userID string) (*SpendingSummary, error) {
	pipeline := bson.A{
		bson.D{{Key: "$match", Value: bson.D{{Key: "userId", Value: userID}}}},
		bson.D{
			{Key: "$facet", Value: bson.D{
				{Key: "totals", Value: bson.A{
					bson.D{{Key: "$group", Value: bson.D{
						{Key: "_id", Value: nil},
						{Key: "orderCount", Value: bson.D{{Key: "$sum", Value: 1}}},
						{Key: "totalSpent", Value: bson.D{{Key: "$sum", Value: "$total"}}},
						{Key: "totalSaved", Value: bson.D{{Key: "$sum", Value: "$discount"}}},
						{Key: "avgOrderValue", Value: bson.D{{Key: "$avg", Value: "$total"}}},
					}}},
				}},
				{Key: "products", Value: bson.A{
					bson.D{{Key: "$unwind", Value: "$orderItems"}},
					bson.D{{Key: "$group", Value: bson.D{
						{Key: "_id", Value: "$orderItems.productId"},
						{Key: "name", Value: bson.D{{Key: "$first", Value: "$orderItems.name"}}},
						{Key: "units", Value: bson.D{{Key: "$sum", Value: "$orderItems.quantity"}}},
						{Key: "spent", Value: bson.D{{Key: "$sum", Value: bson.D{
							{Key: "$multiply", Value: bson.A{"$orderItems.price", "$orderItems.quantity"}},
						}}}},
					}}},
					bson.D{{Key: "$sort", Value: bson.D{{Key: "units", Value: -1}, {Key: "spent", Value: -1}}}},
					bson.D{{Key: "$limit", Value: 5}},
				}},
			}},
		},
	}

	cursor, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var facets []struct {
		Totals   []SpendingSummary `bson:"totals"`
		Products []ProductPurchase `bson:"products"`
	}
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, fmt.Errorf("failed to decode order summary: %w", err)
	}

	summary := &SpendingSummary{TopProducts: []ProductPurchase{}}
	if len(facets) == 0 {
		return summary, nil
	}
	if len(facets[0].Totals) > 0 {
		*summary = facets[0].Totals[0]
	}
	summary.TopProducts = facets[0].Products
	if summary.TopProducts == nil {
		summary.TopProducts = []ProductPurchase{}
	}
	return summary, nil
}
