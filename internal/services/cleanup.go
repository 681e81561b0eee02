package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MaksimYurchanka/pump-monitor/internal/observability/metrics"
)

// runCleanup drops tokens that left the retention window without a single
// achievement. Achievers are kept for history.
func (s *Service) runCleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-s.cfg.Monitor.RetentionWindow)

	purged, err := s.db.PurgeTokensOlderThan(ctx, cutoff)
	if err != nil {
		s.recordTaskError("cleanup")
		return fmt.Errorf("retention sweep failed: %w", err)
	}

	if purged > 0 {
		s.tokensPurged.Add(purged)
		metrics.IncPurgedTokens(purged)
		log.Ctx(ctx).Info().Int64("purged", purged).Msg("Retention sweep removed stale tokens")
	}
	return nil
}
