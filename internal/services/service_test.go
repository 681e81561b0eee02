package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaksimYurchanka/pump-monitor/internal/clients/dexclient"
	"github.com/MaksimYurchanka/pump-monitor/internal/config"
	"github.com/MaksimYurchanka/pump-monitor/internal/source"
	"github.com/MaksimYurchanka/pump-monitor/internal/types"
)

func testConfig() *config.Config {
	return &config.Config{
		Monitor: config.MonitorConfig{
			ScanInterval:       time.Hour,
			MilestoneInterval:  time.Hour,
			ActorInterval:      time.Hour,
			CleanupInterval:    time.Hour,
			MinLiquidityUsd:    1_000,
			InitialLookback:    time.Hour,
			BatchSize:          10,
			RetentionWindow:    24 * time.Hour,
			TokenMaxAge:        24 * time.Hour,
			MilestonePageLimit: 100,
			TopActorsLimit:     50,
		},
	}
}

func newTestService(fdb *fakeDB, fdex *fakeDex, fntf *fakeNotifier) *Service {
	cfg := testConfig()
	reader := source.NewReader(fdex, &cfg.Monitor)
	return NewService(cfg, fdb, fdex, reader, fntf)
}

func TestLifecycle(t *testing.T) {
	ctx := t.Context()

	fdb := newFakeDB()
	fntf := &fakeNotifier{}
	svc := newTestService(fdb, &fakeDex{}, fntf)

	assert.Equal(t, types.StateUninitialized, svc.State())

	// starting before init is rejected
	require.Error(t, svc.Start(ctx))

	require.NoError(t, svc.Init(ctx))
	assert.Equal(t, types.StateInitialized, svc.State())

	// double init is rejected
	require.Error(t, svc.Init(ctx))

	require.NoError(t, svc.Start(ctx))
	assert.Equal(t, types.StateRunning, svc.State())

	// bootstrap posted the startup digest
	messages := fntf.all()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "No tokens")

	svc.Stop()
	assert.Equal(t, types.StateStopped, svc.State())

	// stop is idempotent
	svc.Stop()
	assert.Equal(t, types.StateStopped, svc.State())
}

func TestInitFailsWhenDependenciesUnreachable(t *testing.T) {
	ctx := t.Context()

	t.Run("db down", func(t *testing.T) {
		fdb := newFakeDB()
		fdb.pingErr = assert.AnError
		svc := newTestService(fdb, &fakeDex{}, &fakeNotifier{})
		require.Error(t, svc.Init(ctx))
		assert.Equal(t, types.StateUninitialized, svc.State())
	})
	t.Run("notifier down", func(t *testing.T) {
		svc := newTestService(newFakeDB(), &fakeDex{}, &fakeNotifier{pingErr: assert.AnError})
		require.Error(t, svc.Init(ctx))
		assert.Equal(t, types.StateUninitialized, svc.State())
	})
}

func validPair(token, pair, creator string) dexclient.Pair {
	return dexclient.Pair{
		PairAddress: pair,
		BaseToken: dexclient.Token{
			Address: token,
			Name:    "Token " + token,
			Symbol:  "TK",
		},
		PriceUsd:      "0.0001",
		MarketCap:     20_000,
		Liquidity:     dexclient.Liquidity{Usd: 5_000},
		PairCreatedAt: time.Now().UnixMilli(),
		Creator:       creator,
	}
}

func TestRunDiscovery(t *testing.T) {
	ctx := t.Context()

	fdb := newFakeDB()
	fntf := &fakeNotifier{}
	fdex := &fakeDex{
		newPairs: []dexclient.Pair{
			validPair("tok1", "pair1", "alice"),
			validPair("tok2", "pair2", ""),
		},
	}
	svc := newTestService(fdb, fdex, fntf)

	require.NoError(t, svc.runDiscovery(ctx))

	assert.Equal(t, 2, fdb.upsertCalls)
	assert.Len(t, fntf.all(), 2)

	// the creator was attributed but is below the serial threshold
	actor, ok := fdb.actors["alice"]
	require.True(t, ok)
	assert.Equal(t, 1, actor.TokenCount)

	// unchanged source produces nothing new
	require.NoError(t, svc.runDiscovery(ctx))
	assert.Equal(t, 2, fdb.upsertCalls)
}

func TestRunMilestoneCheck(t *testing.T) {
	ctx := t.Context()

	setup := func(achieved []float64, marketCap float64) (*Service, *fakeDB, *fakeNotifier) {
		fdb := newFakeDB()
		doc := tokenDoc(&types.Candidate{
			TokenAddress: "tok1",
			PairAddress:  "pair1",
			Name:         "Token",
			Symbol:       "TK",
			PriceUsd:     0.0001,
			MarketCapUsd: 10_000,
			CreatedAt:    time.Now(),
		}, time.Now())
		doc.Achieved = achieved
		fdb.tokens["tok1"] = doc

		fdex := &fakeDex{pairs: map[string]*dexclient.Pair{
			"pair1": {PairAddress: "pair1", PriceUsd: "0.00055", MarketCap: marketCap},
		}}
		fntf := &fakeNotifier{}
		return newTestService(fdb, fdex, fntf), fdb, fntf
	}

	t.Run("records every covered rung, alerts the highest", func(t *testing.T) {
		svc, fdb, fntf := setup(nil, 55_000) // 5.5x

		require.NoError(t, svc.runMilestoneCheck(ctx))

		assert.Len(t, fdb.milestones, 3) // 2x, 3x, 5x
		require.Len(t, fdb.achievementCalls, 1)
		assert.Equal(t, []float64{2, 3, 5}, fdb.achievementCalls[0])

		messages := fntf.all()
		require.Len(t, messages, 1)
		assert.Contains(t, messages[0], "5x")
	})

	t.Run("tolerates an already recorded rung", func(t *testing.T) {
		svc, fdb, fntf := setup([]float64{}, 55_000)
		// 2x was recorded by an earlier run that failed before persisting
		// the achieved set
		require.NoError(t, fdb.RecordMilestone(ctx, tokenMilestone("tok1", 2)))

		require.NoError(t, svc.runMilestoneCheck(ctx))

		require.Len(t, fdb.achievementCalls, 1)
		assert.Equal(t, []float64{2, 3, 5}, fdb.achievementCalls[0])
		assert.Len(t, fntf.all(), 1)
	})

	t.Run("no new rungs below next threshold", func(t *testing.T) {
		svc, fdb, fntf := setup([]float64{2}, 25_000) // 2.5x, 2x already achieved

		require.NoError(t, svc.runMilestoneCheck(ctx))

		assert.Empty(t, fdb.achievementCalls)
		assert.Empty(t, fntf.all())
	})

	t.Run("skips graduated tokens", func(t *testing.T) {
		svc, _, fntf := setup(types.MilestoneLadder, 1_000_000)
		// a dex failure would surface if the token were checked
		svc.dex.(*fakeDex).getErr = assert.AnError

		require.NoError(t, svc.runMilestoneCheck(ctx))
		assert.Empty(t, fntf.all())
	})

	t.Run("skips tokens without a baseline", func(t *testing.T) {
		svc, fdb, fntf := setup(nil, 55_000)
		fdb.tokens["tok1"].InitialMarketCapUsd = 0

		require.NoError(t, svc.runMilestoneCheck(ctx))
		assert.Empty(t, fntf.all())
	})

	t.Run("a failing token does not abort the page", func(t *testing.T) {
		svc, fdb, fntf := setup(nil, 55_000)
		broken := tokenDoc(&types.Candidate{
			TokenAddress: "tok2",
			PairAddress:  "missing-pair",
			MarketCapUsd: 10_000,
			CreatedAt:    time.Now(),
		}, time.Now())
		fdb.tokens["tok2"] = broken

		require.NoError(t, svc.runMilestoneCheck(ctx))

		// the healthy token still alerted, the failure landed in the counter
		assert.Len(t, fntf.all(), 1)
		assert.Equal(t, int64(1), svc.StatusSnapshot().TaskErrors)
	})
}

func TestHandleCommand(t *testing.T) {
	svc := newTestService(newFakeDB(), &fakeDex{}, &fakeNotifier{})

	assert.Contains(t, svc.HandleCommand("status"), "State: UNINITIALIZED")
	assert.Contains(t, svc.HandleCommand("status"), "Task errors: 0")
	assert.Contains(t, svc.HandleCommand("help"), "/status")
	assert.Contains(t, svc.HandleCommand("start"), "online")
	assert.Empty(t, svc.HandleCommand("bogus"))
}

func TestRunCleanup(t *testing.T) {
	ctx := t.Context()

	fdb := newFakeDB()
	fdb.purgedResult = 3
	svc := newTestService(fdb, &fakeDex{}, &fakeNotifier{})

	require.NoError(t, svc.runCleanup(ctx))
	assert.Equal(t, int64(3), svc.StatusSnapshot().TokensPurged)
}
