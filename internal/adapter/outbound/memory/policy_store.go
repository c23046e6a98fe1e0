// Package memory provides in-memory implementations of outbound ports.
// These back service-layer unit tests and local development; the durable
// backend is internal/adapter/outbound/sqlstore.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/authzgate/authzgate/internal/domain/policy"
)

// PolicyStore implements policy.Store with an in-memory map, keyed by id.
// Thread-safe for concurrent access. Not durable — for tests and dev only.
type PolicyStore struct {
	mu       sync.Mutex
	policies map[int64]*policy.Policy
	nextID   int64
}

// NewPolicyStore creates an empty in-memory PolicyStore.
func NewPolicyStore() *PolicyStore {
	return &PolicyStore{policies: make(map[int64]*policy.Policy)}
}

// Create computes the next version for name and persists the policy inactive.
func (s *PolicyStore) Create(ctx context.Context, name string, content policy.Content) (*policy.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxVersion := 0
	for _, p := range s.policies {
		if p.Name == name && p.Version > maxVersion {
			maxVersion = p.Version
		}
	}

	s.nextID++
	p := &policy.Policy{
		ID:        s.nextID,
		Name:      name,
		Version:   maxVersion + 1,
		Content:   content,
		IsActive:  false,
		CreatedAt: time.Now().UTC(),
	}
	s.policies[p.ID] = p

	cp := *p
	return &cp, nil
}

// Activate deactivates every active policy and activates id as one unit,
// mirroring the mutual-exclusion transaction the SQL store runs.
func (s *PolicyStore) Activate(ctx context.Context, id int64) (*policy.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.policies[id]
	if !ok {
		return nil, policy.ErrNotFound
	}

	for _, p := range s.policies {
		p.IsActive = false
	}
	target.IsActive = true

	cp := *target
	return &cp, nil
}

// Active returns the single active policy, or nil if none is active.
func (s *PolicyStore) Active(ctx context.Context) (*policy.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.policies {
		if p.IsActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// Get returns a policy by id.
func (s *PolicyStore) Get(ctx context.Context, id int64) (*policy.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.policies[id]
	if !ok {
		return nil, policy.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// List returns policies ordered by version descending, paginated.
func (s *PolicyStore) List(ctx context.Context, skip, limit int) ([]policy.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]policy.Policy, 0, len(s.policies))
	for _, p := range s.policies {
		all = append(all, *p)
	}
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].Version > all[j-1].Version; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}

	if skip >= len(all) {
		return []policy.Policy{}, nil
	}
	end := skip + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[skip:end], nil
}

// Compile-time interface verification.
var _ policy.Store = (*PolicyStore)(nil)
