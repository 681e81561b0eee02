package poller

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Poller runs a single periodic task in isolation. A failing run is logged and
// never affects other pollers. A tick that arrives while the previous run of
// the same task is still in flight is skipped.
type Poller struct {
	name       string
	interval   time.Duration
	quit       chan struct{}
	pollMethod func(ctx context.Context) error
	inFlight   atomic.Bool
}

func NewPoller(name string, interval time.Duration, pollMethod func(ctx context.Context) error) *Poller {
	return &Poller{
		name:       name,
		interval:   interval,
		quit:       make(chan struct{}),
		pollMethod: pollMethod,
	}
}

func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Info().Str("poller", p.name).Msgf("Starting poller with interval %s", p.interval)

	for {
		select {
		case <-ticker.C:
			p.runOnce(ctx)
		case <-ctx.Done():
			log.Info().Str("poller", p.name).Msg("Poller stopped due to context cancellation")
			return
		case <-p.quit:
			log.Info().Str("poller", p.name).Msg("Poller stopped")
			return
		}
	}
}

func (p *Poller) runOnce(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		log.Debug().Str("poller", p.name).Msg("Previous run still in flight, skipping tick")
		return
	}

	go func() {
		defer p.inFlight.Store(false)
		if err := p.pollMethod(ctx); err != nil {
			log.Error().Err(err).Str("poller", p.name).Msg("Error polling")
		}
	}()
}

func (p *Poller) Stop() {
	close(p.quit)
}
