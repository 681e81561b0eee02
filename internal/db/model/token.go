package model

import "time"

const TokenCollection = "tokens"

// TokenDocument is a tracked token. The initial_* fields are captured at first
// detection and never mutated afterwards; only milestone updates touch the
// achieved set and the last_* fields.
type TokenDocument struct {
	TokenAddress        string    `bson:"_id"`
	PairAddress         string    `bson:"pair_address"`
	Name                string    `bson:"name"`
	Symbol              string    `bson:"symbol"`
	InitialPriceUsd     float64   `bson:"initial_price_usd"`
	InitialMarketCapUsd float64   `bson:"initial_market_cap_usd"`
	LastPriceUsd        float64   `bson:"last_price_usd"`
	LastMarketCapUsd    float64   `bson:"last_market_cap_usd"`
	LiquidityUsd        float64   `bson:"liquidity_usd"`
	Volume24hUsd        float64   `bson:"volume_24h_usd"`
	// Achieved milestone multipliers, sorted ascending, no duplicates.
	Achieved  []float64 `bson:"achieved_multipliers"`
	Creator   string    `bson:"creator"`
	URL       string    `bson:"url"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}
