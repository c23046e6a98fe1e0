package memory

import (
	"context"
	"sync"

	"github.com/authzgate/authzgate/internal/domain/role"
)

// RoleStore implements role.Store with an in-memory map, keyed by name.
// Thread-safe for concurrent access. Not durable — for tests and dev only.
type RoleStore struct {
	mu     sync.Mutex
	byName map[string]*role.Role
	nextID int64
}

// NewRoleStore creates an empty in-memory RoleStore.
func NewRoleStore() *RoleStore {
	return &RoleStore{byName: make(map[string]*role.Role)}
}

// GetByName returns a role by name.
func (s *RoleStore) GetByName(ctx context.Context, name string) (*role.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byName[name]
	if !ok {
		return nil, role.ErrNotFound
	}
	cp := *r
	cp.Parents = append([]string(nil), r.Parents...)
	return &cp, nil
}

// CreateRole persists a new role with the given parent names.
func (s *RoleStore) CreateRole(ctx context.Context, name, description string, parentNames []string) (*role.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[name]; exists {
		return nil, role.ErrConflict
	}

	s.nextID++
	r := &role.Role{
		ID:          s.nextID,
		Name:        name,
		Description: description,
		Parents:     append([]string(nil), parentNames...),
	}
	s.byName[name] = r

	cp := *r
	cp.Parents = append([]string(nil), r.Parents...)
	return &cp, nil
}

// AncestorClosure returns the full transitive set of ancestor names
// reachable from name by walking parent edges to completion.
func (s *RoleStore) AncestorClosure(ctx context.Context, name string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	closure := make(map[string]struct{})
	queue := []string{name}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		r, ok := s.byName[current]
		if !ok {
			continue
		}
		for _, parent := range r.Parents {
			if _, seen := closure[parent]; seen {
				continue
			}
			closure[parent] = struct{}{}
			queue = append(queue, parent)
		}
	}
	return closure, nil
}

// Children returns the names of roles that directly declare name as a parent.
func (s *RoleStore) Children(ctx context.Context, name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var children []string
	for _, r := range s.byName {
		for _, parent := range r.Parents {
			if parent == name {
				children = append(children, r.Name)
				break
			}
		}
	}
	return children, nil
}

// Compile-time interface verification.
var _ role.Store = (*RoleStore)(nil)
