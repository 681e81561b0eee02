package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MaksimYurchanka/pump-monitor/internal/db/model"
	"github.com/MaksimYurchanka/pump-monitor/internal/observability/metrics"
)

// UpsertToken inserts or refreshes a tracked token. The write is idempotent on
// the token address: a collision with an existing document only refreshes the
// last_* fields and never overwrites the initial_* capture.
func (db *Database) UpsertToken(ctx context.Context, doc *model.TokenDocument) error {
	start := time.Now()

	filter, update := tokenUpsertSpec(doc)
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.TokenCollection).UpdateOne(ctx, filter, update, opts)
	metrics.RecordDBLatency("UpsertToken", start, err)
	if err != nil {
		return fmt.Errorf("failed to upsert token %s: %w", doc.TokenAddress, err)
	}
	return nil
}

// BulkUpsertTokens writes tokens in batches of batchSize. A failing batch
// aborts only its own remaining work; batches already committed stand.
func (db *Database) BulkUpsertTokens(ctx context.Context, docs []*model.TokenDocument, batchSize int) error {
	start := time.Now()

	batches := chunkTokenDocs(docs, batchSize)
	for i, batch := range batches {
		writes := make([]mongo.WriteModel, 0, len(batch))
		for _, doc := range batch {
			filter, update := tokenUpsertSpec(doc)
			writes = append(writes, mongo.NewUpdateOneModel().
				SetFilter(filter).
				SetUpdate(update).
				SetUpsert(true))
		}

		_, err := db.collection(model.TokenCollection).BulkWrite(
			ctx, writes, options.BulkWrite().SetOrdered(false),
		)
		if err != nil {
			metrics.RecordDBLatency("BulkUpsertTokens", start, err)
			return fmt.Errorf("bulk upsert batch %d/%d failed: %w", i+1, len(batches), err)
		}
	}

	metrics.RecordDBLatency("BulkUpsertTokens", start, nil)
	return nil
}

func (db *Database) GetToken(ctx context.Context, tokenAddress string) (*model.TokenDocument, error) {
	var doc model.TokenDocument
	err := db.collection(model.TokenCollection).
		FindOne(ctx, bson.M{"_id": tokenAddress}).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     tokenAddress,
				Message: "token not found",
			}
		}
		return nil, err
	}
	return &doc, nil
}

// GetTokensByAgeWindow returns tokens younger than maxAge, most recently
// created first, capped at limit.
func (db *Database) GetTokensByAgeWindow(
	ctx context.Context, maxAge time.Duration, limit int64,
) ([]model.TokenDocument, error) {
	start := time.Now()

	filter := bson.M{"created_at": bson.M{"$gte": time.Now().Add(-maxAge)}}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := db.collection(model.TokenCollection).Find(ctx, filter, opts)
	if err != nil {
		metrics.RecordDBLatency("GetTokensByAgeWindow", start, err)
		return nil, fmt.Errorf("failed to query tokens by age window: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []model.TokenDocument
	err = cursor.All(ctx, &docs)
	metrics.RecordDBLatency("GetTokensByAgeWindow", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tokens: %w", err)
	}
	return docs, nil
}

// UpdateTokenAchievements persists the achieved set together with the latest
// price and valuation in a single update. The set is stored sorted ascending
// with duplicates removed.
func (db *Database) UpdateTokenAchievements(
	ctx context.Context, tokenAddress string, achieved []float64, lastPriceUsd, lastMarketCapUsd float64,
) error {
	start := time.Now()

	update := bson.M{
		"$set": bson.M{
			"achieved_multipliers": normalizeAchieved(achieved),
			"last_price_usd":       lastPriceUsd,
			"last_market_cap_usd":  lastMarketCapUsd,
			"updated_at":           time.Now(),
		},
	}

	res, err := db.collection(model.TokenCollection).
		UpdateOne(ctx, bson.M{"_id": tokenAddress}, update)
	metrics.RecordDBLatency("UpdateTokenAchievements", start, err)
	if err != nil {
		return fmt.Errorf("failed to update achievements for %s: %w", tokenAddress, err)
	}
	if res.MatchedCount == 0 {
		return &NotFoundError{
			Key:     tokenAddress,
			Message: "token not found when updating achievements",
		}
	}
	return nil
}

// PurgeTokensOlderThan deletes tokens created before the cutoff that have no
// achievements. Tokens with any achievement are retained regardless of age.
func (db *Database) PurgeTokensOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	start := time.Now()

	filter := bson.M{
		"created_at": bson.M{"$lt": cutoff},
		"$or": bson.A{
			bson.M{"achieved_multipliers": bson.M{"$size": 0}},
			bson.M{"achieved_multipliers": bson.M{"$exists": false}},
			bson.M{"achieved_multipliers": nil},
		},
	}

	res, err := db.collection(model.TokenCollection).DeleteMany(ctx, filter)
	metrics.RecordDBLatency("PurgeTokensOlderThan", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to purge tokens older than %s: %w", cutoff, err)
	}
	return res.DeletedCount, nil
}

// tokenUpsertSpec builds the filter and update for an idempotent token
// upsert: identity fields and the initial_* capture are written only on
// insert, the live fields on every call.
func tokenUpsertSpec(doc *model.TokenDocument) (bson.M, bson.M) {
	filter := bson.M{"_id": doc.TokenAddress}
	update := bson.M{
		"$setOnInsert": bson.M{
			"pair_address":           doc.PairAddress,
			"name":                   doc.Name,
			"symbol":                 doc.Symbol,
			"initial_price_usd":      doc.InitialPriceUsd,
			"initial_market_cap_usd": doc.InitialMarketCapUsd,
			"achieved_multipliers":   []float64{},
			"creator":                doc.Creator,
			"url":                    doc.URL,
			"created_at":             doc.CreatedAt,
		},
		"$set": bson.M{
			"last_price_usd":      doc.LastPriceUsd,
			"last_market_cap_usd": doc.LastMarketCapUsd,
			"liquidity_usd":       doc.LiquidityUsd,
			"volume_24h_usd":      doc.Volume24hUsd,
			"updated_at":          doc.UpdatedAt,
		},
	}
	return filter, update
}

func chunkTokenDocs(docs []*model.TokenDocument, batchSize int) [][]*model.TokenDocument {
	if batchSize <= 0 || len(docs) == 0 {
		return nil
	}

	batches := make([][]*model.TokenDocument, 0, (len(docs)+batchSize-1)/batchSize)
	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batches = append(batches, docs[start:end])
	}
	return batches
}

func normalizeAchieved(achieved []float64) []float64 {
	out := make([]float64, 0, len(achieved))
	seen := make(map[float64]struct{}, len(achieved))
	for _, m := range achieved {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Float64s(out)
	return out
}
