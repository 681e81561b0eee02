package db

import (
	"context"
	"time"

	"github.com/MaksimYurchanka/pump-monitor/internal/db/model"
)

type DbInterface interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	// Tokens
	UpsertToken(ctx context.Context, doc *model.TokenDocument) error
	BulkUpsertTokens(ctx context.Context, docs []*model.TokenDocument, batchSize int) error
	GetToken(ctx context.Context, tokenAddress string) (*model.TokenDocument, error)
	GetTokensByAgeWindow(ctx context.Context, maxAge time.Duration, limit int64) ([]model.TokenDocument, error)
	UpdateTokenAchievements(
		ctx context.Context, tokenAddress string, achieved []float64, lastPriceUsd, lastMarketCapUsd float64,
	) error
	PurgeTokensOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Milestones
	RecordMilestone(ctx context.Context, doc *model.MilestoneDocument) error

	// Actors
	GetOrCreateActor(ctx context.Context, address string, now time.Time) (*model.ActorDocument, error)
	AddTokenToActor(ctx context.Context, address, tokenAddress string, at time.Time) (*model.ActorDocument, error)
	UpdateActorReputation(ctx context.Context, address string, score int, blacklisted bool) error
	TopActorsByTokenCount(ctx context.Context, limit int64) ([]model.ActorDocument, error)
}
