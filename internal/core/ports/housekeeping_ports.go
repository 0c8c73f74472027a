package ports

import (
	"context"
	"time"
)

type HousekeepingRepository interface {
	// SoftDeleteInactive marks polls deleted that were last touched before
	// cutoff, have no option starting after now, and whose owner holds no
	// active subscription. Returns the number of polls marked.
	SoftDeleteInactive(ctx context.Context, cutoff, now time.Time) (int64, error)
	// PurgeDeleted hard-deletes at most batchSize polls soft-deleted before
	// cutoff, cascading to options, participants, votes and comments.
	PurgeDeleted(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)
}

type HousekeepingService interface {
	SoftDeleteInactive(ctx context.Context) (int64, error)
	Purge(ctx context.Context) (int64, error)
}
