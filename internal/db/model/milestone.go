package model

import (
	"fmt"
	"time"
)

const MilestoneCollection = "milestones"

// MilestoneDocument is an immutable record of a single milestone crossing.
// The _id is the natural key (token, multiplier), which makes recording
// idempotent: a retried insert surfaces as a duplicate key error.
type MilestoneDocument struct {
	ID           string    `bson:"_id"`
	TokenAddress string    `bson:"token_address"`
	Multiplier   float64   `bson:"multiplier"`
	AchievedAt   time.Time `bson:"achieved_at"`
	PriceUsd     float64   `bson:"price_usd"`
	MarketCapUsd float64   `bson:"market_cap_usd"`
}

func MilestoneID(tokenAddress string, multiplier float64) string {
	return fmt.Sprintf("%s:%gx", tokenAddress, multiplier)
}
