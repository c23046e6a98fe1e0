// Package service wires the domain ports together into the authorization
// decision pipeline described by the system design.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/authzgate/authzgate/internal/domain/policy"
)

// PolicyRegistry handles creation (auto-versioning), activation (mutual
// exclusion), listing, and lookup of policies. Activation keeps the
// ActivePolicyCache coherent: by the time Activate returns, the cache
// slot already equals the newly active policy.
type PolicyRegistry struct {
	store  policy.Store
	cache  *ActivePolicyCache
	logger *slog.Logger
}

// NewPolicyRegistry creates a PolicyRegistry backed by store, keeping
// cache coherent across activations.
func NewPolicyRegistry(store policy.Store, cache *ActivePolicyCache, logger *slog.Logger) *PolicyRegistry {
	return &PolicyRegistry{store: store, cache: cache, logger: logger}
}

// Create persists a new, inactive policy version for name.
func (r *PolicyRegistry) Create(ctx context.Context, name string, content policy.Content) (*policy.Policy, error) {
	p, err := r.store.Create(ctx, name, content)
	if err != nil {
		return nil, fmt.Errorf("create policy: %w", err)
	}
	r.logger.Info("policy created", "name", p.Name, "version", p.Version, "id", p.ID)
	return p, nil
}

// Activate deactivates every currently active policy and activates id in
// one serializable transaction, then installs the result in the
// ActivePolicyCache before returning. Returns policy.ErrNotFound if id
// does not exist; in that case no state changes.
func (r *PolicyRegistry) Activate(ctx context.Context, id int64) (*policy.Policy, error) {
	p, err := r.store.Activate(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Set(p)
	r.logger.Info("policy activated", "name", p.Name, "version", p.Version, "id", p.ID)
	return p, nil
}

// Active returns the single active policy, or nil if none is active.
func (r *PolicyRegistry) Active(ctx context.Context) (*policy.Policy, error) {
	return r.store.Active(ctx)
}

// Get returns a single policy version by id.
func (r *PolicyRegistry) Get(ctx context.Context, id int64) (*policy.Policy, error) {
	return r.store.Get(ctx, id)
}

// List returns policies ordered by version descending, paginated.
func (r *PolicyRegistry) List(ctx context.Context, skip, limit int) ([]policy.Policy, error) {
	return r.store.List(ctx, skip, limit)
}
