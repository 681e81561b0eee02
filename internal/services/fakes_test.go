package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MaksimYurchanka/pump-monitor/internal/clients/dexclient"
	"github.com/MaksimYurchanka/pump-monitor/internal/db"
	"github.com/MaksimYurchanka/pump-monitor/internal/db/model"
)

// fakeDB is an in-memory stand-in for the persistence gateway. Individual
// methods can be overridden per test through the function hooks.
type fakeDB struct {
	mu sync.Mutex

	tokens     map[string]*model.TokenDocument
	milestones map[string]*model.MilestoneDocument
	actors     map[string]*model.ActorDocument

	recordMilestoneErr func(doc *model.MilestoneDocument) error
	pingErr            error

	upsertCalls      int
	achievementCalls [][]float64
	purgedResult     int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		tokens:     make(map[string]*model.TokenDocument),
		milestones: make(map[string]*model.MilestoneDocument),
		actors:     make(map[string]*model.ActorDocument),
	}
}

func (f *fakeDB) Ping(ctx context.Context) error  { return f.pingErr }
func (f *fakeDB) Close(ctx context.Context) error { return nil }

func (f *fakeDB) UpsertToken(ctx context.Context, doc *model.TokenDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	if _, ok := f.tokens[doc.TokenAddress]; !ok {
		cp := *doc
		f.tokens[doc.TokenAddress] = &cp
	}
	return nil
}

func (f *fakeDB) BulkUpsertTokens(ctx context.Context, docs []*model.TokenDocument, batchSize int) error {
	for _, doc := range docs {
		if err := f.UpsertToken(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeDB) GetToken(ctx context.Context, tokenAddress string) (*model.TokenDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.tokens[tokenAddress]
	if !ok {
		return nil, &db.NotFoundError{Key: tokenAddress, Message: "token not found"}
	}
	cp := *doc
	return &cp, nil
}

func (f *fakeDB) GetTokensByAgeWindow(ctx context.Context, maxAge time.Duration, limit int64) ([]model.TokenDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.TokenDocument
	for _, doc := range f.tokens {
		out = append(out, *doc)
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeDB) UpdateTokenAchievements(
	ctx context.Context, tokenAddress string, achieved []float64, lastPriceUsd, lastMarketCapUsd float64,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.tokens[tokenAddress]
	if !ok {
		return &db.NotFoundError{Key: tokenAddress, Message: "token not found"}
	}
	doc.Achieved = achieved
	doc.LastPriceUsd = lastPriceUsd
	doc.LastMarketCapUsd = lastMarketCapUsd
	f.achievementCalls = append(f.achievementCalls, achieved)
	return nil
}

func (f *fakeDB) PurgeTokensOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.purgedResult, nil
}

func (f *fakeDB) RecordMilestone(ctx context.Context, doc *model.MilestoneDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordMilestoneErr != nil {
		if err := f.recordMilestoneErr(doc); err != nil {
			return err
		}
	}
	id := model.MilestoneID(doc.TokenAddress, doc.Multiplier)
	if _, ok := f.milestones[id]; ok {
		return &db.DuplicateKeyError{Key: id, Message: "milestone already recorded"}
	}
	cp := *doc
	f.milestones[id] = &cp
	return nil
}

func (f *fakeDB) GetOrCreateActor(ctx context.Context, address string, now time.Time) (*model.ActorDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	actor, ok := f.actors[address]
	if !ok {
		actor = &model.ActorDocument{
			Address:         address,
			FirstSeenAt:     now,
			LastTokenAt:     now,
			ReputationScore: model.NeutralReputation,
		}
		f.actors[address] = actor
	}
	cp := *actor
	return &cp, nil
}

func (f *fakeDB) AddTokenToActor(ctx context.Context, address, tokenAddress string, at time.Time) (*model.ActorDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	actor, ok := f.actors[address]
	if !ok {
		return nil, &db.NotFoundError{Key: address, Message: "actor not found"}
	}
	known := false
	for _, addr := range actor.TokenAddresses {
		if addr == tokenAddress {
			known = true
			break
		}
	}
	if !known {
		actor.TokenAddresses = append(actor.TokenAddresses, tokenAddress)
		actor.TokenCount++
		actor.LastTokenAt = at
	}
	cp := *actor
	return &cp, nil
}

func (f *fakeDB) UpdateActorReputation(ctx context.Context, address string, score int, blacklisted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	actor, ok := f.actors[address]
	if !ok {
		return &db.NotFoundError{Key: address, Message: "actor not found"}
	}
	actor.ReputationScore = score
	actor.Blacklisted = blacklisted
	return nil
}

func (f *fakeDB) TopActorsByTokenCount(ctx context.Context, limit int64) ([]model.ActorDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ActorDocument
	for _, actor := range f.actors {
		out = append(out, *actor)
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

// fakeNotifier records every queued message.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	pingErr  error
}

func (f *fakeNotifier) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeNotifier) EnqueueMessage(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
}

func (f *fakeNotifier) ListenCommands(ctx context.Context, handle func(command string) string) {
	<-ctx.Done()
}

func (f *fakeNotifier) Stop() {}

func (f *fakeNotifier) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.messages...)
}

// fakeDex serves pair snapshots from a map.
type fakeDex struct {
	mu       sync.Mutex
	newPairs []dexclient.Pair
	pairs    map[string]*dexclient.Pair
	getErr   error
}

func (f *fakeDex) Ping(ctx context.Context) error { return nil }

func (f *fakeDex) GetNewPairs(ctx context.Context, since time.Time) ([]dexclient.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.newPairs, nil
}

func (f *fakeDex) GetPair(ctx context.Context, pairAddress string) (*dexclient.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	pair, ok := f.pairs[pairAddress]
	if !ok {
		return nil, fmt.Errorf("pair %s not found", pairAddress)
	}
	return pair, nil
}
