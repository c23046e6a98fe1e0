package policy

import (
	"context"
	"errors"
)

// Sentinel errors for policy store operations. Interface owned by the
// domain package, implementations live in adapter/outbound (hexagonal
// architecture, same layering as the role and audit packages).
var (
	// ErrNotFound is returned when a policy id does not exist.
	ErrNotFound = errors.New("policy not found")
)

// Store persists Policy versions. Create auto-versions within a Name,
// Activate enforces the single-active invariant across the whole store in
// one serializable transaction, List returns versions newest-first.
type Store interface {
	// Create computes the next version for Name (1 + max existing version,
	// or 1 if none exist) and persists the policy inactive.
	Create(ctx context.Context, name string, content Content) (*Policy, error)

	// Activate deactivates every currently active policy and activates id,
	// as a single serializable transaction. Returns ErrNotFound (no state
	// change) if id does not exist.
	Activate(ctx context.Context, id int64) (*Policy, error)

	// Active returns the single active policy, or nil if none is active.
	Active(ctx context.Context) (*Policy, error)

	// Get returns a policy by id. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id int64) (*Policy, error)

	// List returns policies ordered by version descending, paginated.
	List(ctx context.Context, skip, limit int) ([]Policy, error)
}
