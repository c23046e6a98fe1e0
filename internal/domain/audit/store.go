package audit

import "context"

// Store persists Log rows. Append is the only write path: logs are
// append-only and never updated or deleted in scope.
type Store interface {
	// Append writes one Log row and returns its assigned id (the trace_id
	// returned to the caller). Fails only on catastrophic store failure;
	// a failure here must never alter a decision already computed by the
	// caller.
	Append(ctx context.Context, log Log) (int64, error)

	// List returns the most recently written logs, newest first, bounded
	// by limit. Read-only admin convenience; not required by any
	// evaluation path.
	List(ctx context.Context, limit int) ([]Log, error)
}
