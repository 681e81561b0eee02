package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MaksimYurchanka/pump-monitor/internal/clients/dexclient"
	"github.com/MaksimYurchanka/pump-monitor/internal/config"
	"github.com/MaksimYurchanka/pump-monitor/internal/db"
	"github.com/MaksimYurchanka/pump-monitor/internal/notifier"
	"github.com/MaksimYurchanka/pump-monitor/internal/observability/metrics"
	"github.com/MaksimYurchanka/pump-monitor/internal/source"
	"github.com/MaksimYurchanka/pump-monitor/internal/types"
	"github.com/MaksimYurchanka/pump-monitor/internal/utils/poller"
)

// Service is the monitoring engine. It owns the periodic tasks and routes
// their findings to persistence and the alert channel.
type Service struct {
	cfg      *config.Config
	db       db.DbInterface
	dex      dexclient.DexInterface
	reader   *source.Reader
	notifier notifier.NotifierInterface
	scoreFn  ScoreFunc

	stateMu sync.Mutex
	state   types.EngineState
	cancel  context.CancelFunc
	pollers []*poller.Poller

	startedAt time.Time

	tokensDiscovered   atomic.Int64
	milestonesRecorded atomic.Int64
	actorsBlacklisted  atomic.Int64
	tokensPurged       atomic.Int64
	taskErrors         atomic.Int64
}

// recordTaskError counts a non-fatal task failure in the status snapshot and
// in the prometheus counter.
func (s *Service) recordTaskError(task string) {
	s.taskErrors.Add(1)
	metrics.IncTaskError(task)
}

func NewService(
	cfg *config.Config,
	database db.DbInterface,
	dex dexclient.DexInterface,
	reader *source.Reader,
	ntf notifier.NotifierInterface,
) *Service {
	return &Service{
		cfg:      cfg,
		db:       database,
		dex:      dex,
		reader:   reader,
		notifier: ntf,
		scoreFn:  DefaultScore,
		state:    types.StateUninitialized,
	}
}

// Init verifies that the persistence layer and the alert channel are
// reachable. It must be called exactly once before Start.
func (s *Service) Init(ctx context.Context) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if s.state != types.StateUninitialized {
		return fmt.Errorf("cannot initialize from state %s", s.state)
	}

	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	if err := s.notifier.Ping(ctx); err != nil {
		return fmt.Errorf("notifier unreachable: %w", err)
	}
	if err := s.dex.Ping(ctx); err != nil {
		return fmt.Errorf("listings feed unreachable: %w", err)
	}

	s.state = types.StateInitialized
	log.Ctx(ctx).Info().Msg("Service initialized")
	return nil
}

// Start runs the bootstrap pass and then arms the periodic tasks. The
// bootstrap completes before any poller ticks.
func (s *Service) Start(ctx context.Context) error {
	s.stateMu.Lock()
	if s.state != types.StateInitialized {
		s.stateMu.Unlock()
		return fmt.Errorf("cannot start from state %s", s.state)
	}
	s.state = types.StateRunning
	s.startedAt = time.Now()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stateMu.Unlock()

	if err := s.bootstrap(runCtx); err != nil {
		cancel()
		s.stateMu.Lock()
		s.state = types.StateInitialized
		s.cancel = nil
		s.stateMu.Unlock()
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	pollers := []*poller.Poller{
		poller.NewPoller("discovery", s.cfg.Monitor.ScanInterval,
			metrics.RecordPollerDuration("discovery", s.runDiscovery)),
		poller.NewPoller("milestone", s.cfg.Monitor.MilestoneInterval,
			metrics.RecordPollerDuration("milestone", s.runMilestoneCheck)),
		poller.NewPoller("actor", s.cfg.Monitor.ActorInterval,
			metrics.RecordPollerDuration("actor", s.runActorSweep)),
		poller.NewPoller("cleanup", s.cfg.Monitor.CleanupInterval,
			metrics.RecordPollerDuration("cleanup", s.runCleanup)),
	}
	for _, p := range pollers {
		go p.Start(runCtx)
	}

	s.stateMu.Lock()
	s.pollers = pollers
	s.stateMu.Unlock()

	go s.notifier.ListenCommands(runCtx, s.HandleCommand)

	log.Ctx(ctx).Info().Msg("Service started")
	return nil
}

// Stop shuts the pollers down and drains the alert queue. Calling Stop on a
// service that is not running is a no-op with a warning.
func (s *Service) Stop() {
	s.stateMu.Lock()
	if s.state != types.StateRunning {
		log.Warn().Str("state", s.state.String()).Msg("Stop called on a service that is not running")
		s.stateMu.Unlock()
		return
	}
	s.state = types.StateStopped
	cancel := s.cancel
	pollers := s.pollers
	s.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, p := range pollers {
		p.Stop()
	}
	s.notifier.Stop()

	log.Info().Msg("Service stopped")
}

// State returns the current lifecycle state.
func (s *Service) State() types.EngineState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}
