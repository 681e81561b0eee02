package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/MaksimYurchanka/pump-monitor/internal/db/model"
	"github.com/MaksimYurchanka/pump-monitor/internal/notifier"
	"github.com/MaksimYurchanka/pump-monitor/internal/observability/metrics"
	"github.com/MaksimYurchanka/pump-monitor/internal/types"
)

// ScoreFunc computes a reputation score from an actor's token count and
// current score. Implementations must return a value in [0, 100].
type ScoreFunc func(tokenCount, currentScore int) int

const (
	// reputation drops by this much for every token past the free allowance
	reputationPenalty = 10
	penaltyFreeTokens = 3

	// below this score an actor is blacklisted, permanently
	blacklistThreshold = 20

	// launching more than this many tokens makes an actor a serial creator
	serialCreatorThreshold = 3
	// past this count the serial-creator notice switches to a warning tone
	cautionThreshold = 5
)

// DefaultScore penalizes prolific creators linearly past the free allowance,
// clamped to [0, 100]. The current score is ignored, which makes the sweep
// idempotent for an unchanged token count.
func DefaultScore(tokenCount, _ int) int {
	score := model.NeutralReputation
	if tokenCount > penaltyFreeTokens {
		score -= reputationPenalty * (tokenCount - penaltyFreeTokens)
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// attributeActor links a token to its creator. When alerting is enabled and
// the attribution pushed the actor past the serial-creator threshold, a
// notice is posted.
func (s *Service) attributeActor(ctx context.Context, c *types.Candidate, alerting bool) {
	if c.Creator == "" {
		return
	}

	before, err := s.db.GetOrCreateActor(ctx, c.Creator, c.CreatedAt)
	if err != nil {
		s.recordTaskError("actor")
		log.Ctx(ctx).Error().Err(err).Str("creator", c.Creator).Msg("Failed to load actor")
		return
	}

	after, err := s.db.AddTokenToActor(ctx, c.Creator, c.TokenAddress, c.CreatedAt)
	if err != nil {
		s.recordTaskError("actor")
		log.Ctx(ctx).Error().Err(err).Str("creator", c.Creator).Msg("Failed to attribute token to actor")
		return
	}

	grew := after.TokenCount > before.TokenCount
	if alerting && grew && after.TokenCount > serialCreatorThreshold {
		s.notifier.EnqueueMessage(notifier.FormatSerialCreatorAlert(
			c.Creator, after.TokenCount, after.TokenCount > cautionThreshold,
			s.latestSnapshot(ctx, c.PairAddress),
		))
	}
}

// latestSnapshot fetches the current details of a pair for alert payloads.
// A fetch failure degrades to nil, which renders an address-only alert body.
func (s *Service) latestSnapshot(ctx context.Context, pairAddress string) *types.Candidate {
	if pairAddress == "" {
		return nil
	}

	pair, err := s.dex.GetPair(ctx, pairAddress)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).
			Str("pair_address", pairAddress).
			Msg("Could not fetch latest token snapshot for alert")
		return nil
	}

	return &types.Candidate{
		TokenAddress: pair.BaseToken.Address,
		PairAddress:  pair.PairAddress,
		Name:         pair.BaseToken.Name,
		Symbol:       pair.BaseToken.Symbol,
		PriceUsd:     pair.PriceUsdFloat(),
		MarketCapUsd: pair.MarketCap,
		LiquidityUsd: pair.Liquidity.Usd,
		Volume24hUsd: pair.Volume.H24,
		CreatedAt:    pair.CreatedTime(),
		Creator:      pair.Creator,
		URL:          pair.URL,
	}
}

// latestActorSnapshot resolves an actor's most recent token to its pair and
// fetches the current details. Any lookup failure degrades to nil.
func (s *Service) latestActorSnapshot(ctx context.Context, actor *model.ActorDocument) *types.Candidate {
	if len(actor.TokenAddresses) == 0 {
		return nil
	}

	latest := actor.TokenAddresses[len(actor.TokenAddresses)-1]
	token, err := s.db.GetToken(ctx, latest)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).
			Str("token_address", latest).
			Msg("Could not resolve actor's latest token for alert")
		return nil
	}
	return s.latestSnapshot(ctx, token.PairAddress)
}

// runActorSweep recomputes reputation for the most prolific actors and
// applies the one-way blacklist. Actors with fewer than two tokens are left
// at their seeded score.
func (s *Service) runActorSweep(ctx context.Context) error {
	actors, err := s.db.TopActorsByTokenCount(ctx, s.cfg.Monitor.TopActorsLimit)
	if err != nil {
		s.recordTaskError("actor")
		return fmt.Errorf("failed to load actors: %w", err)
	}

	for i := range actors {
		actor := &actors[i]
		if actor.TokenCount < 2 {
			continue
		}

		score := s.scoreFn(actor.TokenCount, actor.ReputationScore)
		blacklisted := actor.Blacklisted || score < blacklistThreshold
		if score == actor.ReputationScore && blacklisted == actor.Blacklisted {
			continue
		}

		if err := s.db.UpdateActorReputation(ctx, actor.Address, score, blacklisted); err != nil {
			s.recordTaskError("actor")
			log.Ctx(ctx).Error().Err(err).Str("actor", actor.Address).Msg("Failed to update actor reputation")
			continue
		}

		if blacklisted && !actor.Blacklisted {
			s.actorsBlacklisted.Add(1)
			metrics.IncBlacklistedActors()
			log.Ctx(ctx).Warn().
				Str("actor", actor.Address).
				Int("score", score).
				Int("token_count", actor.TokenCount).
				Msg("Actor blacklisted")
			s.notifier.EnqueueMessage(notifier.FormatBlacklistAlert(
				actor.Address, score, actor.TokenCount,
				s.latestActorSnapshot(ctx, actor),
			))
		}
	}

	return nil
}
