package calllog

import (
	"context"
	"time"
)

// PendingSummary is the placeholder written when a call starts, before
// any summary exists.
const PendingSummary = "Call in progress..."

type InsertPendingInput struct {
	OwnerID   string
	StartedAt time.Time
}

type FinalizeCallInput struct {
	OwnerID         string
	StartedAt       time.Time
	DurationSeconds int64
	Summary         string
}

// Repository persists call log records. Rows are keyed by owner and call
// date/time taken from StartedAt. Write failures are logged by callers
// and never block a call's lifecycle.
type Repository interface {
	InsertPending(ctx context.Context, input InsertPendingInput) error
	FinalizeCall(ctx context.Context, input FinalizeCallInput) error
}
