package model

import "time"

const ActorCollection = "actors"

const NeutralReputation = 50

// ActorDocument tracks a wallet that creates tokens. TokenAddresses preserves
// insertion order (creation order) with no duplicates. Blacklisted is one-way:
// the engine never clears it.
type ActorDocument struct {
	Address         string    `bson:"_id"`
	TokenAddresses  []string  `bson:"token_addresses"`
	TokenCount      int       `bson:"token_count"`
	FirstSeenAt     time.Time `bson:"first_seen_at"`
	LastTokenAt     time.Time `bson:"last_token_at"`
	Blacklisted     bool      `bson:"blacklisted"`
	ReputationScore int       `bson:"reputation_score"`
}
