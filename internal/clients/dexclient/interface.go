package dexclient

import (
	"context"
	"time"
)

type DexInterface interface {
	// Ping verifies the listings feed is reachable.
	Ping(ctx context.Context) error
	// GetNewPairs returns pairs listed after the given time.
	GetNewPairs(ctx context.Context, since time.Time) ([]Pair, error)
	// GetPair returns the current snapshot of a single pair.
	GetPair(ctx context.Context, pairAddress string) (*Pair, error)
}
