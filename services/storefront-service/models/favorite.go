package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FavoriteItem struct {
	ProductID    string `bson:"product_id,omitempty" json:"productId,omitempty"`
	ProductName  string `bson:"product_name" json:"productName"`
	ProductUnit  string `bson:"product_unit" json:"productUnit"`
	Quantity     int    `bson:"quantity" json:"quantity"`
	PricePerUnit int64  `bson:"price_per_unit" json:"pricePerUnit"`
}

// FavoriteOrder is a saved copy of a past order that can be re-ordered.
type FavoriteOrder struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID      string             `bson:"customer_id" json:"customerId"`
	OrderID         uint               `bson:"order_id" json:"orderId"`
	Items           []FavoriteItem     `bson:"items" json:"items"`
	DeliveryAddress string             `bson:"delivery_address" json:"deliveryAddress"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
}
