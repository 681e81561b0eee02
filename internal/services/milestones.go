package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MaksimYurchanka/pump-monitor/internal/db"
	"github.com/MaksimYurchanka/pump-monitor/internal/db/model"
	"github.com/MaksimYurchanka/pump-monitor/internal/notifier"
	"github.com/MaksimYurchanka/pump-monitor/internal/observability/metrics"
	"github.com/MaksimYurchanka/pump-monitor/internal/types"
)

// runMilestoneCheck pages through tokens still inside the age window and
// evaluates each against the multiplier ladder. Graduated tokens are skipped.
// A failing token is logged and does not abort the page.
func (s *Service) runMilestoneCheck(ctx context.Context) error {
	tokens, err := s.db.GetTokensByAgeWindow(ctx, s.cfg.Monitor.TokenMaxAge, s.cfg.Monitor.MilestonePageLimit)
	if err != nil {
		s.recordTaskError("milestone")
		return fmt.Errorf("failed to load tracked tokens: %w", err)
	}
	metrics.RecordMilestonePageSize(len(tokens))

	for i := range tokens {
		token := &tokens[i]
		if types.HasGraduated(token.Achieved) {
			continue
		}

		if err := s.checkToken(ctx, token); err != nil {
			s.recordTaskError("milestone")
			log.Ctx(ctx).Error().Err(err).
				Str("token_address", token.TokenAddress).
				Msg("Milestone check failed for token")
		}
	}

	return nil
}

// checkToken fetches the live pair state and records every newly covered
// rung. One alert is posted per check, for the highest new rung.
func (s *Service) checkToken(ctx context.Context, token *model.TokenDocument) error {
	if token.InitialMarketCapUsd <= 0 {
		// cannot compute a multiplier without a baseline
		return nil
	}

	pair, err := s.dex.GetPair(ctx, token.PairAddress)
	if err != nil {
		return fmt.Errorf("failed to fetch pair %s: %w", token.PairAddress, err)
	}

	priceUsd := pair.PriceUsdFloat()
	marketCapUsd := pair.MarketCap
	multiplier := marketCapUsd / token.InitialMarketCapUsd

	newRungs := types.NewlyAchieved(token.Achieved, multiplier)
	if len(newRungs) == 0 {
		return nil
	}

	for _, rung := range newRungs {
		err := s.db.RecordMilestone(ctx, &model.MilestoneDocument{
			TokenAddress: token.TokenAddress,
			Multiplier:   rung,
			AchievedAt:   time.Now(),
			PriceUsd:     priceUsd,
			MarketCapUsd: marketCapUsd,
		})
		if err != nil {
			if db.IsDuplicateKeyError(err) {
				// already recorded by a previous run, the rung still counts
				log.Ctx(ctx).Debug().
					Str("token_address", token.TokenAddress).
					Float64("multiplier", rung).
					Msg("Milestone already recorded")
				continue
			}
			return fmt.Errorf("failed to record %gx milestone: %w", rung, err)
		}

		s.milestonesRecorded.Add(1)
		metrics.IncMilestonesRecorded(1)
	}

	achieved := append(append([]float64{}, token.Achieved...), newRungs...)
	if err := s.db.UpdateTokenAchievements(ctx, token.TokenAddress, achieved, priceUsd, marketCapUsd); err != nil {
		return fmt.Errorf("failed to update achievements: %w", err)
	}

	top := newRungs[len(newRungs)-1]
	log.Ctx(ctx).Info().
		Str("token_address", token.TokenAddress).
		Str("symbol", token.Symbol).
		Float64("multiplier", top).
		Float64("market_cap_usd", marketCapUsd).
		Msg("Milestone achieved")
	s.notifier.EnqueueMessage(notifier.FormatMilestoneAlert(token, top, priceUsd, marketCapUsd))

	return nil
}
