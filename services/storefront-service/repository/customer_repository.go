package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/coradis/storefront/services/storefront-service/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *models.Customer) error
	FindByID(ctx context.Context, id string) (*models.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*models.Customer, error)
	FindByReferralCode(ctx context.Context, code string) (*models.Customer, error)
	ReferralCodeExists(ctx context.Context, code string) (bool, error)
	UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) error
	// SetReferredBy only succeeds for a customer who has not been referred
	// yet; otherwise it returns ErrConflict.
	SetReferredBy(ctx context.Context, id, referrerID string) error
	IncrementReferralCount(ctx context.Context, id string) error
	// RecordOrder adds one order, its amount and the points it earned.
	RecordOrder(ctx context.Context, id string, amount, points int64) error
}

type MongoCustomerRepository struct {
	coll *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *MongoCustomerRepository {
	return &MongoCustomerRepository{coll: db.Collection("customers")}
}

// EnsureIndexes creates the unique indexes the collection relies on.
func (r *MongoCustomerRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "referral_code", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create customer indexes: %w", err)
	}
	return nil
}

func (r *MongoCustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, c)
	return translateMongo(err)
}

func (r *MongoCustomerRepository) findOne(ctx context.Context, filter bson.M) (*models.Customer, error) {
	var c models.Customer
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		return nil, translateMongo(err)
	}
	return &c, nil
}

func (r *MongoCustomerRepository) FindByID(ctx context.Context, id string) (*models.Customer, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoCustomerRepository) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	return r.findOne(ctx, bson.M{"phone": phone})
}

func (r *MongoCustomerRepository) FindByReferralCode(ctx context.Context, code string) (*models.Customer, error) {
	return r.findOne(ctx, bson.M{"referral_code": code})
}

func (r *MongoCustomerRepository) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"referral_code": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoCustomerRepository) updateByID(ctx context.Context, id string, filter bson.M, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	filter["_id"] = oid
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCustomerRepository) UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.updateByID(ctx, id, bson.M{}, bson.M{"$set": fields})
}

func (r *MongoCustomerRepository) SetReferredBy(ctx context.Context, id, referrerID string) error {
	err := r.updateByID(ctx, id,
		bson.M{"referred_by": bson.M{"$in": bson.A{nil, ""}}},
		bson.M{"$set": bson.M{"referred_by": referrerID}},
	)
	if errors.Is(err, ErrNotFound) {
		if _, findErr := r.FindByID(ctx, id); findErr == nil {
			return ErrConflict
		}
	}
	return err
}

func (r *MongoCustomerRepository) IncrementReferralCount(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{}, bson.M{"$inc": bson.M{"referral_count": 1}})
}

func (r *MongoCustomerRepository) RecordOrder(ctx context.Context, id string, amount, points int64) error {
	return r.updateByID(ctx, id, bson.M{}, bson.M{"$inc": bson.M{
		"total_orders":   1,
		"total_spent":    amount,
		"loyalty_points": points,
	}})
}
