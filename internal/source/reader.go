package source

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MaksimYurchanka/pump-monitor/internal/clients/dexclient"
	"github.com/MaksimYurchanka/pump-monitor/internal/config"
	"github.com/MaksimYurchanka/pump-monitor/internal/types"
)

// clockSkewTolerance bounds how far in the future a listing timestamp may be
// before the pair is rejected as malformed.
const clockSkewTolerance = 5 * time.Minute

// Fetcher is the slice of the dex client the reader needs.
type Fetcher interface {
	GetNewPairs(ctx context.Context, since time.Time) ([]dexclient.Pair, error)
}

// Reader discovers newly listed pairs. It keeps two pieces of process-local
// state: the set of pair addresses already returned during this process
// lifetime, and a high-water mark advanced only when new items are found.
// Neither survives a restart; the bootstrap window plus idempotent upserts
// absorb the resulting re-delivery.
type Reader struct {
	fetcher      Fetcher
	minLiquidity float64
	lookback     time.Duration

	// Owned exclusively by the reader. The discovery poller skips overlapping
	// ticks, so there is never more than one writer.
	seen      map[string]struct{}
	highWater time.Time
}

func NewReader(fetcher Fetcher, cfg *config.MonitorConfig) *Reader {
	return &Reader{
		fetcher:      fetcher,
		minLiquidity: cfg.MinLiquidityUsd,
		lookback:     cfg.InitialLookback,
		seen:         make(map[string]struct{}),
	}
}

// FetchInitial returns valid candidates within the bounded lookback window.
// Fetch failures degrade to an empty result; a scan cycle with zero results is
// indistinguishable from "no new listings" for the caller.
func (r *Reader) FetchInitial(ctx context.Context) []types.Candidate {
	windowStart := time.Now().Add(-r.lookback)
	if r.highWater.IsZero() {
		r.highWater = windowStart
	}

	pairs, err := r.fetcher.GetNewPairs(ctx, windowStart)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to fetch initial listings window")
		return nil
	}
	return r.collect(ctx, pairs, windowStart)
}

// FetchIncremental returns valid candidates newer than the high-water mark
// that have not been returned before.
func (r *Reader) FetchIncremental(ctx context.Context) []types.Candidate {
	since := r.highWater
	if since.IsZero() {
		since = time.Now().Add(-r.lookback)
	}

	pairs, err := r.fetcher.GetNewPairs(ctx, since)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to fetch incremental listings")
		return nil
	}
	return r.collect(ctx, pairs, since)
}

func (r *Reader) collect(ctx context.Context, pairs []dexclient.Pair, windowStart time.Time) []types.Candidate {
	var out []types.Candidate
	newest := r.highWater

	for i := range pairs {
		pair := &pairs[i]

		candidate, reason := validate(pair, r.minLiquidity)
		if reason != "" {
			log.Ctx(ctx).Debug().
				Str("pair_address", pair.PairAddress).
				Str("reason", reason).
				Msg("Dropping candidate")
			continue
		}

		// Items outside the window are not marked seen either, so a pair that
		// fails liquidity today is re-evaluated in full if it shows up again.
		if candidate.CreatedAt.Before(windowStart) {
			continue
		}

		if _, ok := r.seen[candidate.PairAddress]; ok {
			continue
		}
		r.seen[candidate.PairAddress] = struct{}{}

		out = append(out, candidate)
		if candidate.CreatedAt.After(newest) {
			newest = candidate.CreatedAt
		}
	}

	if len(out) > 0 {
		r.highWater = newest
	}
	return out
}

// validate applies the validity filter and normalizes a pair into a candidate.
// A non-empty reason means the pair was rejected.
func validate(pair *dexclient.Pair, minLiquidity float64) (types.Candidate, string) {
	if pair.BaseToken.Address == "" || pair.PairAddress == "" {
		return types.Candidate{}, "missing token or pair address"
	}
	if pair.BaseToken.Name == "" || pair.BaseToken.Symbol == "" {
		return types.Candidate{}, "missing name or symbol"
	}

	created := pair.CreatedTime()
	if created.IsZero() {
		return types.Candidate{}, "missing creation timestamp"
	}
	if created.After(time.Now().Add(clockSkewTolerance)) {
		return types.Candidate{}, "creation timestamp in the future"
	}

	if pair.Liquidity.Usd < minLiquidity {
		return types.Candidate{}, "liquidity below floor"
	}

	return types.Candidate{
		TokenAddress: pair.BaseToken.Address,
		PairAddress:  pair.PairAddress,
		Name:         pair.BaseToken.Name,
		Symbol:       pair.BaseToken.Symbol,
		PriceUsd:     pair.PriceUsdFloat(),
		MarketCapUsd: pair.MarketCap,
		LiquidityUsd: pair.Liquidity.Usd,
		Volume24hUsd: pair.Volume.H24,
		CreatedAt:    created,
		Creator:      pair.Creator,
		URL:          pair.URL,
	}, ""
}
