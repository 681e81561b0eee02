package model

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MaksimYurchanka/pump-monitor/internal/config"
)

// Setup creates the indexes for all collections. It is safe to run on every
// startup; index creation is idempotent.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	clientOpts := options.Client().ApplyURI(cfg.Address)
	if cfg.Username != "" {
		clientOpts.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("failed to connect to mongo: %w", err)
	}
	defer func() {
		_ = client.Disconnect(ctx)
	}()

	database := client.Database(cfg.DbName)

	tokenIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "creator", Value: 1}}},
		{
			Keys:    bson.D{{Key: "pair_address", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := database.Collection(TokenCollection).Indexes().CreateMany(ctx, tokenIndexes); err != nil {
		return fmt.Errorf("failed to create token indexes: %w", err)
	}

	milestoneIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "token_address", Value: 1}}},
	}
	if _, err := database.Collection(MilestoneCollection).Indexes().CreateMany(ctx, milestoneIndexes); err != nil {
		return fmt.Errorf("failed to create milestone indexes: %w", err)
	}

	actorIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "token_count", Value: -1}}},
	}
	if _, err := database.Collection(ActorCollection).Indexes().CreateMany(ctx, actorIndexes); err != nil {
		return fmt.Errorf("failed to create actor indexes: %w", err)
	}

	return nil
}
