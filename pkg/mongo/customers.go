package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"julianmorley.ca/con-plar/storefront/pkg/identity"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type CustomerRepository struct {
	customers *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{customers: db.Collection(CustomersCollection)}
}

// Create relies on the unique email index; a duplicate returns identity.ErrEmailTaken
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) (string, error) {
	doc := customerDocument{ID: bson.NewObjectID(), Customer: *customer}

	if _, err := r.customers.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", identity.ErrEmailTaken
		}
		return "", fmt.Errorf("failed to insert customer: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var doc customerDocument
	err := r.customers.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	customer := doc.toModel()
	return &customer, nil
}
