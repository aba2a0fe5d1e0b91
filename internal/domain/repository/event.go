package repository

import "context"

// ProcessedEventRepository records event ids whose effects a consumer group
// has already applied. Records are never updated; they may be pruned after a
// retention window for storage bounds only.
type ProcessedEventRepository interface {
	IsProcessed(ctx context.Context, consumerGroup, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, consumerGroup, eventID string) error
}
