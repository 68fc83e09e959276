package service

import (
	"context"
	"fmt"

	"remindme/internal/events"
	"remindme/internal/metrics"

	"go.uber.org/zap"
)

// Changes stamps writes with a revision and publishes them to live
// subscribers. A failed publish is logged but does not fail the write that
// already succeeded.
type Changes struct {
	broker events.Broker
	revs   events.Revisions
	logger *zap.Logger
}

func NewChanges(broker events.Broker, revs events.Revisions, logger *zap.Logger) *Changes {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Changes{broker: broker, revs: revs, logger: logger.Named("changes")}
}

// Next returns the revision for the next write by userID.
func (c *Changes) Next(ctx context.Context, userID string) (int64, error) {
	rev, err := c.revs.Next(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("next revision: %w", err)
	}
	return rev, nil
}

func (c *Changes) Publish(ctx context.Context, userID string, ch events.Change) {
	err := c.broker.Publish(ctx, userID, ch)
	result := "success"
	if err != nil {
		result = "error"
		c.logger.Warn("publish change failed",
			zap.String("user_id", userID),
			zap.String("collection", ch.Collection),
			zap.String("doc_id", ch.DocID),
			zap.Error(err),
		)
	}
	metrics.ChangesPublished.WithLabelValues(ch.Collection, string(ch.Kind), result).Inc()
}
