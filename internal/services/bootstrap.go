package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MaksimYurchanka/pump-monitor/internal/db/model"
	"github.com/MaksimYurchanka/pump-monitor/internal/notifier"
	"github.com/MaksimYurchanka/pump-monitor/internal/observability/metrics"
	"github.com/MaksimYurchanka/pump-monitor/internal/types"
)

// bootstrap seeds the token set from the initial lookback window and posts a
// startup digest. A fetch failure degrades to an empty window; a persistence
// failure is returned so the caller can refuse to arm the pollers.
func (s *Service) bootstrap(ctx context.Context) error {
	candidates := s.reader.FetchInitial(ctx)

	if len(candidates) > 0 {
		now := time.Now()
		docs := make([]*model.TokenDocument, len(candidates))
		for i := range candidates {
			docs[i] = tokenDoc(&candidates[i], now)
		}

		if err := s.db.BulkUpsertTokens(ctx, docs, s.cfg.Monitor.BatchSize); err != nil {
			s.recordTaskError("bootstrap")
			return fmt.Errorf("failed to persist bootstrap tokens: %w", err)
		}
		s.tokensDiscovered.Add(int64(len(candidates)))
		metrics.IncTokensDiscovered(len(candidates))

		// attribute creators without alerting; re-delivered history must
		// not produce a burst of serial-creator notices on every restart
		for i := range candidates {
			s.attributeActor(ctx, &candidates[i], false)
		}
	}

	tokens, err := s.db.GetTokensByAgeWindow(ctx, s.cfg.Monitor.TokenMaxAge, s.cfg.Monitor.MilestonePageLimit)
	if err != nil {
		return fmt.Errorf("failed to load tokens for bootstrap summary: %w", err)
	}

	s.notifier.EnqueueMessage(notifier.FormatBootstrapSummary(tokens, len(tokens)))
	log.Ctx(ctx).Info().
		Int("discovered", len(candidates)).
		Int("in_window", len(tokens)).
		Msg("Bootstrap complete")
	return nil
}

func tokenDoc(c *types.Candidate, now time.Time) *model.TokenDocument {
	return &model.TokenDocument{
		TokenAddress:        c.TokenAddress,
		PairAddress:         c.PairAddress,
		Name:                c.Name,
		Symbol:              c.Symbol,
		InitialPriceUsd:     c.PriceUsd,
		InitialMarketCapUsd: c.MarketCapUsd,
		LastPriceUsd:        c.PriceUsd,
		LastMarketCapUsd:    c.MarketCapUsd,
		LiquidityUsd:        c.LiquidityUsd,
		Volume24hUsd:        c.Volume24hUsd,
		Creator:             c.Creator,
		URL:                 c.URL,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           now,
	}
}
