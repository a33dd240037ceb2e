package repository

import (
	"context"

	"github.com/coradis/storefront/services/storefront-service/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FavoriteRepository interface {
	Create(ctx context.Context, fav *models.FavoriteOrder) error
	ListByCustomer(ctx context.Context, customerID string) ([]models.FavoriteOrder, error)
}

type MongoFavoriteRepository struct {
	coll *mongo.Collection
}

func NewFavoriteRepository(db *mongo.Database) *MongoFavoriteRepository {
	return &MongoFavoriteRepository{coll: db.Collection("favorite_orders")}
}

func (r *MongoFavoriteRepository) Create(ctx context.Context, fav *models.FavoriteOrder) error {
	if fav.ID.IsZero() {
		fav.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, fav)
	return translateMongo(err)
}

func (r *MongoFavoriteRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.FavoriteOrder, error) {
	cur, err := r.coll.Find(ctx, bson.M{"customer_id": customerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	favs := []models.FavoriteOrder{}
	if err := cur.All(ctx, &favs); err != nil {
		return nil, err
	}
	return favs, nil
}
