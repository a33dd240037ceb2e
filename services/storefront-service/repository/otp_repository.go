package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/coradis/storefront/services/storefront-service/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OTPRepository interface {
	Create(ctx context.Context, otp *models.OTPCode) error
	FindByPhoneAndCode(ctx context.Context, phone, code string) (*models.OTPCode, error)
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	// RecordFailedAttempt counts one wrong code against the phone's pending
	// code and returns the new count. ErrNotFound when nothing is pending.
	RecordFailedAttempt(ctx context.Context, phone string) (int, error)
	// HasVerified reports whether phone has a verified, unexpired code.
	HasVerified(ctx context.Context, phone string, now time.Time) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPhone(ctx context.Context, phone string) error
}

type MongoOTPRepository struct {
	coll *mongo.Collection
}

func NewOTPRepository(db *mongo.Database) *MongoOTPRepository {
	return &MongoOTPRepository{coll: db.Collection("otp_codes")}
}

// EnsureIndexes lets MongoDB purge codes once expires_at has passed.
func (r *MongoOTPRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		{Keys: bson.D{{Key: "phone", Value: 1}, {Key: "code", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create otp indexes: %w", err)
	}
	return nil
}

func (r *MongoOTPRepository) Create(ctx context.Context, otp *models.OTPCode) error {
	if otp.ID.IsZero() {
		otp.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, otp)
	return translateMongo(err)
}

func (r *MongoOTPRepository) FindByPhoneAndCode(ctx context.Context, phone, code string) (*models.OTPCode, error) {
	var otp models.OTPCode
	err := r.coll.FindOne(ctx, bson.M{"phone": phone, "code": code},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})).Decode(&otp)
	if err != nil {
		return nil, translateMongo(err)
	}
	return &otp, nil
}

func (r *MongoOTPRepository) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"verified": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoOTPRepository) RecordFailedAttempt(ctx context.Context, phone string) (int, error) {
	var otp models.OTPCode
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"phone": phone, "verified": false},
		bson.M{"$inc": bson.M{"attempts": 1}},
		options.FindOneAndUpdate().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetReturnDocument(options.After),
	).Decode(&otp)
	if err != nil {
		return 0, translateMongo(err)
	}
	return otp.Attempts, nil
}

func (r *MongoOTPRepository) HasVerified(ctx context.Context, phone string, now time.Time) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"phone":      phone,
		"verified":   true,
		"expires_at": bson.M{"$gt": now},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoOTPRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *MongoOTPRepository) DeleteByPhone(ctx context.Context, phone string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"phone": phone})
	return err
}
