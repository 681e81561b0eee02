package types

import "time"

// Candidate is a normalized snapshot of a newly listed pair returned by the
// listings feed after validity filtering.
type Candidate struct {
	TokenAddress string
	PairAddress  string
	Name         string
	Symbol       string
	PriceUsd     float64
	MarketCapUsd float64
	LiquidityUsd float64
	Volume24hUsd float64
	CreatedAt    time.Time
	Creator      string
	URL          string
}
