package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MaksimYurchanka/pump-monitor/internal/db/model"
	"github.com/MaksimYurchanka/pump-monitor/internal/observability/metrics"
)

// GetOrCreateActor returns the actor document for the address, creating it
// with a neutral reputation and the given timestamp as first-seen if it does
// not exist yet.
func (db *Database) GetOrCreateActor(
	ctx context.Context, address string, now time.Time,
) (*model.ActorDocument, error) {
	start := time.Now()

	filter := bson.M{"_id": address}
	update := bson.M{
		"$setOnInsert": bson.M{
			"token_addresses":  []string{},
			"token_count":      0,
			"first_seen_at":    now,
			"last_token_at":    now,
			"blacklisted":      false,
			"reputation_score": model.NeutralReputation,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc model.ActorDocument
	err := db.collection(model.ActorCollection).
		FindOneAndUpdate(ctx, filter, update, opts).
		Decode(&doc)
	metrics.RecordDBLatency("GetOrCreateActor", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create actor %s: %w", address, err)
	}
	return &doc, nil
}

// AddTokenToActor appends the token to the actor's list if it is not already
// present, preserving insertion order, and returns the current document
// either way.
func (db *Database) AddTokenToActor(
	ctx context.Context, address, tokenAddress string, at time.Time,
) (*model.ActorDocument, error) {
	start := time.Now()

	filter := bson.M{
		"_id":             address,
		"token_addresses": bson.M{"$ne": tokenAddress},
	}
	update := bson.M{
		"$push": bson.M{"token_addresses": tokenAddress},
		"$inc":  bson.M{"token_count": 1},
		"$set":  bson.M{"last_token_at": at},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc model.ActorDocument
	err := db.collection(model.ActorCollection).
		FindOneAndUpdate(ctx, filter, update, opts).
		Decode(&doc)
	if err == nil {
		metrics.RecordDBLatency("AddTokenToActor", start, nil)
		return &doc, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		metrics.RecordDBLatency("AddTokenToActor", start, err)
		return nil, fmt.Errorf("failed to add token to actor %s: %w", address, err)
	}

	// No match means the token is already attributed; return the document
	// as-is.
	err = db.collection(model.ActorCollection).
		FindOne(ctx, bson.M{"_id": address}).
		Decode(&doc)
	metrics.RecordDBLatency("AddTokenToActor", start, err)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     address,
				Message: "actor not found",
			}
		}
		return nil, err
	}
	return &doc, nil
}

// UpdateActorReputation persists a recomputed score and the blacklist flag.
func (db *Database) UpdateActorReputation(
	ctx context.Context, address string, score int, blacklisted bool,
) error {
	start := time.Now()

	update := bson.M{
		"$set": bson.M{
			"reputation_score": score,
			"blacklisted":      blacklisted,
		},
	}

	res, err := db.collection(model.ActorCollection).
		UpdateOne(ctx, bson.M{"_id": address}, update)
	metrics.RecordDBLatency("UpdateActorReputation", start, err)
	if err != nil {
		return fmt.Errorf("failed to update reputation for actor %s: %w", address, err)
	}
	if res.MatchedCount == 0 {
		return &NotFoundError{
			Key:     address,
			Message: "actor not found when updating reputation",
		}
	}
	return nil
}

// TopActorsByTokenCount returns up to limit actors ordered by descending
// token count.
func (db *Database) TopActorsByTokenCount(ctx context.Context, limit int64) ([]model.ActorDocument, error) {
	start := time.Now()

	opts := options.Find().
		SetSort(bson.D{{Key: "token_count", Value: -1}}).
		SetLimit(limit)

	cursor, err := db.collection(model.ActorCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		metrics.RecordDBLatency("TopActorsByTokenCount", start, err)
		return nil, fmt.Errorf("failed to query top actors: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []model.ActorDocument
	err = cursor.All(ctx, &docs)
	metrics.RecordDBLatency("TopActorsByTokenCount", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to decode actors: %w", err)
	}
	return docs, nil
}
