package mongo

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// The domain models carry string ids; these wrappers own the ObjectID mapping.

type productDocument struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	models.Product `bson:",inline"`
}

func (d productDocument) toModel() models.Product {
	p := d.Product
	p.ID = d.ID.Hex()
	return p
}

type offerDocument struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	models.Offer `bson:",inline"`
}

func (d offerDocument) toModel() models.Offer {
	o := d.Offer
	o.ID = d.ID.Hex()
	return o
}

type orderDocument struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	models.Order `bson:",inline"`
}

func (d orderDocument) toModel() models.Order {
	o := d.Order
	o.ID = d.ID.Hex()
	return o
}

type customerDocument struct {
	ID              bson.ObjectID `bson:"_id,omitempty"`
	models.Customer `bson:",inline"`
}

func (d customerDocument) toModel() models.Customer {
	c := d.Customer
	c.ID = d.ID.Hex()
	return c
}

// parseID converts a hex id; ok is false for ids that cannot exist in the collection
func parseID(id string) (bson.ObjectID, bool) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, false
	}
	return oid, true
}
