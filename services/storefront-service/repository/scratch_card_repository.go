package repository

import (
	"context"
	"time"

	"github.com/coradis/storefront/services/storefront-service/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ScratchCardRepository interface {
	Create(ctx context.Context, card *models.ScratchCard) error
	FindByID(ctx context.Context, id string) (*models.ScratchCard, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.ScratchCard, error)
	// MarkScratched flips an unscratched card. A card that is already
	// scratched yields ErrConflict.
	MarkScratched(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type MongoScratchCardRepository struct {
	coll *mongo.Collection
}

func NewScratchCardRepository(db *mongo.Database) *MongoScratchCardRepository {
	return &MongoScratchCardRepository{coll: db.Collection("scratch_cards")}
}

func (r *MongoScratchCardRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (r *MongoScratchCardRepository) Create(ctx context.Context, card *models.ScratchCard) error {
	if card.ID.IsZero() {
		card.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, card)
	return translateMongo(err)
}

func (r *MongoScratchCardRepository) FindByID(ctx context.Context, id string) (*models.ScratchCard, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var card models.ScratchCard
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&card); err != nil {
		return nil, translateMongo(err)
	}
	return &card, nil
}

func (r *MongoScratchCardRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.ScratchCard, error) {
	cur, err := r.coll.Find(ctx, bson.M{"customer_id": customerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	cards := []models.ScratchCard{}
	if err := cur.All(ctx, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *MongoScratchCardRepository) MarkScratched(ctx context.Context, id string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "scratched": false},
		bson.M{"$set": bson.M{"scratched": true, "scratched_at": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

func (r *MongoScratchCardRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
