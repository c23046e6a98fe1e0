package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/authzgate/authzgate/internal/domain/role"
)

// RoleGraphService implements role.Graph over a role.Store. Cycle
// prevention at creation time requires walking the full ancestor closure
// of each declared parent, which is store-layer work; runtime Expand
// stays single-hop by contract (see role.Graph.Expand) and therefore
// needs no Store closure walk at all.
type RoleGraphService struct {
	store role.Store
}

// NewRoleGraphService creates a RoleGraphService backed by store.
func NewRoleGraphService(store role.Store) *RoleGraphService {
	return &RoleGraphService{store: store}
}

// Create validates name against direct and indirect cycles before
// delegating the write to the Store.
func (g *RoleGraphService) Create(ctx context.Context, name, description string, parentNames []string) (*role.Role, error) {
	for _, p := range parentNames {
		if p == name {
			return nil, &role.CycleError{Name: name}
		}
	}

	for _, parentName := range parentNames {
		parent, err := g.store.GetByName(ctx, parentName)
		if err != nil {
			if errors.Is(err, role.ErrNotFound) {
				return nil, &role.UnknownParentError{Name: parentName}
			}
			return nil, fmt.Errorf("look up parent %q: %w", parentName, err)
		}

		// Defense in depth (§9 open question 3): since parents must
		// pre-exist, indirect cycles cannot normally form, but reject
		// explicitly if this parent's ancestor closure already contains
		// the role being created.
		closure, err := g.store.AncestorClosure(ctx, parent.Name)
		if err != nil {
			return nil, fmt.Errorf("compute ancestor closure for %q: %w", parentName, err)
		}
		if _, ok := closure[name]; ok {
			return nil, &role.CycleError{Name: name}
		}
	}

	return g.store.CreateRole(ctx, name, description, parentNames)
}

// Expand returns {name} plus name's immediate parents only — one hop, not
// the transitive closure. If name has no Role row, Expand returns {name}
// with no error so unmaterialized role names still work against wildcard
// and exact-string rules.
func (g *RoleGraphService) Expand(ctx context.Context, name string) (map[string]struct{}, error) {
	result := map[string]struct{}{name: {}}

	r, err := g.store.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, role.ErrNotFound) {
			return result, nil
		}
		return nil, fmt.Errorf("look up role %q: %w", name, err)
	}

	for _, parent := range r.Parents {
		result[parent] = struct{}{}
	}
	return result, nil
}

// Children returns the names of roles that directly declare name as a parent.
func (g *RoleGraphService) Children(ctx context.Context, name string) ([]string, error) {
	return g.store.Children(ctx, name)
}

// Compile-time interface verification.
var _ role.Graph = (*RoleGraphService)(nil)
