//go:build integration

package db_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaksimYurchanka/pump-monitor/internal/db"
	"github.com/MaksimYurchanka/pump-monitor/internal/db/model"
)

func randomToken(t *testing.T) *model.TokenDocument {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.TokenDocument{
		TokenAddress:        gofakeit.UUID(),
		PairAddress:         gofakeit.UUID(),
		Name:                gofakeit.AppName(),
		Symbol:              gofakeit.LetterN(4),
		InitialPriceUsd:     gofakeit.Float64Range(0.000001, 0.01),
		InitialMarketCapUsd: gofakeit.Float64Range(5_000, 100_000),
		LastPriceUsd:        gofakeit.Float64Range(0.000001, 0.01),
		LastMarketCapUsd:    gofakeit.Float64Range(5_000, 100_000),
		LiquidityUsd:        gofakeit.Float64Range(1_000, 50_000),
		Volume24hUsd:        gofakeit.Float64Range(0, 1_000_000),
		Creator:             gofakeit.UUID(),
		URL:                 gofakeit.URL(),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func TestToken(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	t.Run("get not found", func(t *testing.T) {
		doc, err := testDB.GetToken(ctx, gofakeit.UUID())
		require.Error(t, err)
		assert.True(t, db.IsNotFoundError(err))
		assert.Nil(t, doc)
	})

	t.Run("upsert preserves initial capture", func(t *testing.T) {
		token := randomToken(t)
		require.NoError(t, testDB.UpsertToken(ctx, token))

		stored, err := testDB.GetToken(ctx, token.TokenAddress)
		require.NoError(t, err)
		assert.Equal(t, token.InitialPriceUsd, stored.InitialPriceUsd)
		assert.Equal(t, token.InitialMarketCapUsd, stored.InitialMarketCapUsd)
		assert.Empty(t, stored.Achieved)

		// second write with different initial values must only refresh
		// the live fields
		refreshed := *token
		refreshed.InitialPriceUsd = token.InitialPriceUsd * 10
		refreshed.InitialMarketCapUsd = token.InitialMarketCapUsd * 10
		refreshed.LastMarketCapUsd = 999_999
		require.NoError(t, testDB.UpsertToken(ctx, &refreshed))

		stored, err = testDB.GetToken(ctx, token.TokenAddress)
		require.NoError(t, err)
		assert.Equal(t, token.InitialPriceUsd, stored.InitialPriceUsd)
		assert.Equal(t, token.InitialMarketCapUsd, stored.InitialMarketCapUsd)
		assert.Equal(t, float64(999_999), stored.LastMarketCapUsd)
	})

	t.Run("bulk upsert", func(t *testing.T) {
		docs := make([]*model.TokenDocument, 7)
		for i := range docs {
			docs[i] = randomToken(t)
		}
		// batch size smaller than the slice forces multiple batches
		require.NoError(t, testDB.BulkUpsertTokens(ctx, docs, 3))

		for _, doc := range docs {
			stored, err := testDB.GetToken(ctx, doc.TokenAddress)
			require.NoError(t, err)
			assert.Equal(t, doc.PairAddress, stored.PairAddress)
		}
	})

	t.Run("age window", func(t *testing.T) {
		resetDatabase(t)

		young := randomToken(t)
		require.NoError(t, testDB.UpsertToken(ctx, young))

		old := randomToken(t)
		old.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
		require.NoError(t, testDB.UpsertToken(ctx, old))

		docs, err := testDB.GetTokensByAgeWindow(ctx, 24*time.Hour, 100)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, young.TokenAddress, docs[0].TokenAddress)
	})

	t.Run("update achievements", func(t *testing.T) {
		token := randomToken(t)
		require.NoError(t, testDB.UpsertToken(ctx, token))

		// out of order and with a duplicate, stored form must be sorted
		// and unique
		err := testDB.UpdateTokenAchievements(ctx, token.TokenAddress, []float64{5, 2, 3, 2}, 0.5, 123_456)
		require.NoError(t, err)

		stored, err := testDB.GetToken(ctx, token.TokenAddress)
		require.NoError(t, err)
		assert.Equal(t, []float64{2, 3, 5}, stored.Achieved)
		assert.Equal(t, float64(123_456), stored.LastMarketCapUsd)

		err = testDB.UpdateTokenAchievements(ctx, gofakeit.UUID(), []float64{2}, 0, 0)
		require.Error(t, err)
		assert.True(t, db.IsNotFoundError(err))
	})

	t.Run("purge retains achievers", func(t *testing.T) {
		resetDatabase(t)

		stale := randomToken(t)
		stale.CreatedAt = time.Now().UTC().Add(-72 * time.Hour)
		require.NoError(t, testDB.UpsertToken(ctx, stale))

		achiever := randomToken(t)
		achiever.CreatedAt = time.Now().UTC().Add(-72 * time.Hour)
		require.NoError(t, testDB.UpsertToken(ctx, achiever))
		require.NoError(t, testDB.UpdateTokenAchievements(ctx, achiever.TokenAddress, []float64{2}, 0.1, 50_000))

		fresh := randomToken(t)
		require.NoError(t, testDB.UpsertToken(ctx, fresh))

		purged, err := testDB.PurgeTokensOlderThan(ctx, time.Now().UTC().Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), purged)

		_, err = testDB.GetToken(ctx, stale.TokenAddress)
		assert.True(t, db.IsNotFoundError(err))

		_, err = testDB.GetToken(ctx, achiever.TokenAddress)
		assert.NoError(t, err)

		_, err = testDB.GetToken(ctx, fresh.TokenAddress)
		assert.NoError(t, err)
	})
}
