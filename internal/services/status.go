package services

import (
	"time"

	"github.com/MaksimYurchanka/pump-monitor/internal/types"
)

// Snapshot is a point-in-time view of the engine counters.
type Snapshot struct {
	State              types.EngineState
	Uptime             time.Duration
	TokensDiscovered   int64
	MilestonesRecorded int64
	ActorsBlacklisted  int64
	TokensPurged       int64
	TaskErrors         int64
}

func (s *Service) StatusSnapshot() Snapshot {
	s.stateMu.Lock()
	state := s.state
	startedAt := s.startedAt
	s.stateMu.Unlock()

	var uptime time.Duration
	if !startedAt.IsZero() {
		uptime = time.Since(startedAt)
	}

	return Snapshot{
		State:              state,
		Uptime:             uptime,
		TokensDiscovered:   s.tokensDiscovered.Load(),
		MilestonesRecorded: s.milestonesRecorded.Load(),
		ActorsBlacklisted:  s.actorsBlacklisted.Load(),
		TokensPurged:       s.tokensPurged.Load(),
		TaskErrors:         s.taskErrors.Load(),
	}
}
