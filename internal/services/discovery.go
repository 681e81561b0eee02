package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/MaksimYurchanka/pump-monitor/internal/notifier"
	"github.com/MaksimYurchanka/pump-monitor/internal/observability/metrics"
	"github.com/MaksimYurchanka/pump-monitor/internal/types"
)

// runDiscovery pulls listings newer than the high-water mark and tracks each
// valid candidate. Candidates are processed independently so one failing
// write never blocks the rest of the batch.
func (s *Service) runDiscovery(ctx context.Context) error {
	candidates := s.reader.FetchIncremental(ctx)
	if len(candidates) == 0 {
		return nil
	}

	var wg conc.WaitGroup
	for i := range candidates {
		candidate := &candidates[i]
		wg.Go(func() {
			s.processCandidate(ctx, candidate)
		})
	}
	wg.Wait()

	return nil
}

func (s *Service) processCandidate(ctx context.Context, c *types.Candidate) {
	if err := s.db.UpsertToken(ctx, tokenDoc(c, time.Now())); err != nil {
		s.recordTaskError("discovery")
		log.Ctx(ctx).Error().Err(err).
			Str("token_address", c.TokenAddress).
			Msg("Failed to persist discovered token")
		return
	}

	s.tokensDiscovered.Add(1)
	metrics.IncTokensDiscovered(1)
	log.Ctx(ctx).Info().
		Str("token_address", c.TokenAddress).
		Str("symbol", c.Symbol).
		Float64("market_cap_usd", c.MarketCapUsd).
		Msg("New token tracked")

	s.notifier.EnqueueMessage(notifier.FormatNewTokenAlert(c))
	s.attributeActor(ctx, c, true)
}
