package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

var _ Repository = (*MongoRepository)(nil)

func NewMongoRepository(c *mongo.Collection) *MongoRepository {
	return &MongoRepository{collection: c, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureIndexes creates the unique indexes that back ErrExistingAccount.
func (m *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("username_unique")},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) Create(ctx context.Context, acc *Account) error {
	if acc.hasPendingPassword() {
		return ErrUnhashedPassword
	}

	now := m.now()
	acc.CreatedAt, acc.UpdatedAt = now, now

	if _, err := m.collection.InsertOne(ctx, acc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrExistingAccount
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (m *MongoRepository) FindByID(ctx context.Context, id ID) (*Account, error) {
	if !isValidID(string(id)) {
		return nil, ErrNotFound
	}
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *MongoRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*Account, error) {
	if username != "" {
		acc, err := m.findOne(ctx, bson.M{"username": username})
		if !errors.Is(err, ErrNotFound) || email == "" {
			return acc, err
		}
	}
	if email != "" {
		return m.findOne(ctx, bson.M{"email": email})
	}
	return nil, ErrNotFound
}

func (m *MongoRepository) SetRefreshToken(ctx context.Context, id ID, token string) error {
	if !isValidID(string(id)) {
		return ErrNotFound
	}

	update := bson.M{"$set": bson.M{"refreshtoken": token, "updatedAt": m.now()}}
	if token == "" {
		update = bson.M{"$unset": bson.M{"refreshtoken": ""}, "$set": bson.M{"updatedAt": m.now()}}
	}

	res, err := m.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepository) findOne(ctx context.Context, filter bson.M) (*Account, error) {
	var acc Account
	err := m.collection.FindOne(ctx, filter).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &acc, nil
}
