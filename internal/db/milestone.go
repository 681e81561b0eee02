package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/MaksimYurchanka/pump-monitor/internal/db/model"
	"github.com/MaksimYurchanka/pump-monitor/internal/observability/metrics"
)

// RecordMilestone inserts a milestone event. The natural-key _id makes the
// call idempotent: recording the same (token, multiplier) twice yields a
// DuplicateKeyError instead of a second logical record.
func (db *Database) RecordMilestone(ctx context.Context, doc *model.MilestoneDocument) error {
	start := time.Now()

	if doc.ID == "" {
		doc.ID = model.MilestoneID(doc.TokenAddress, doc.Multiplier)
	}

	_, err := db.collection(model.MilestoneCollection).InsertOne(ctx, doc)
	metrics.RecordDBLatency("RecordMilestone", start, err)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     doc.ID,
						Message: "milestone already recorded",
					}
				}
			}
		}
		return fmt.Errorf("failed to insert milestone %s: %w", doc.ID, err)
	}
	return nil
}
