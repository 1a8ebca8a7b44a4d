package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCloseTimeout = 5 * time.Second

// MongoStore is the MongoDB-backed reservation store.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoStore connects to MongoDB and verifies the connection.
// The returned store owns the client; callers must Close it on shutdown.
func NewMongoStore(ctx context.Context, uri, database, collection string, logger *slog.Logger) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	if collection == "" {
		return nil, errors.New("mongo collection name is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("store", "mongo"),
	}, nil
}

// FindAccount returns the account document for accountID, or ErrNotFound.
func (ms *MongoStore) FindAccount(ctx context.Context, accountID string) (*Account, error) {
	var doc Account
	err := ms.collection.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account %s: %w", accountID, err)
	}
	return &doc, nil
}

// UpdateReservation applies field updates to the single reservation
// matching (accountID, reservationID) using a positional update, so the
// write is atomic within the account document.
func (ms *MongoStore) UpdateReservation(ctx context.Context, accountID string, reservationID int, fields map[string]string) (UpdateResult, error) {
	if len(fields) == 0 {
		return UpdateResult{}, errors.New("no fields to update")
	}

	set := bson.M{}
	for k, v := range fields {
		set["reservations.$."+k] = v
	}

	res, err := ms.collection.UpdateOne(ctx,
		bson.M{"account_id": accountID, "reservations.reservation_id": reservationID},
		bson.M{"$set": set},
	)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update reservation %d on account %s: %w", reservationID, accountID, err)
	}

	return UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// AppendReservation pushes a new reservation onto an existing account.
func (ms *MongoStore) AppendReservation(ctx context.Context, accountID string, r Reservation) error {
	res, err := ms.collection.UpdateOne(ctx,
		bson.M{"account_id": accountID},
		bson.M{"$push": bson.M{"reservations": r}},
	)
	if err != nil {
		return fmt.Errorf("append reservation to account %s: %w", accountID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Seed inserts the sample accounts if they do not already exist.
func (ms *MongoStore) Seed(ctx context.Context) error {
	for _, account := range SeedAccounts() {
		err := ms.collection.FindOne(ctx, bson.M{"account_id": account.AccountID}).Err()
		if err == nil {
			ms.logger.Info("account already exists", "account_id", account.AccountID)
			continue
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("check account %s: %w", account.AccountID, err)
		}
		if _, err := ms.collection.InsertOne(ctx, account); err != nil {
			return fmt.Errorf("seed account %s: %w", account.AccountID, err)
		}
		ms.logger.Info("seeded account", "account_id", account.AccountID)
	}
	return nil
}

// Close releases the underlying MongoDB client.
func (ms *MongoStore) Close() error {
	if ms == nil || ms.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), mongoCloseTimeout)
	defer cancel()
	return ms.client.Disconnect(ctx)
}
