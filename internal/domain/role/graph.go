package role

import "context"

// Graph is a read-through view over Store's roles and edges. It answers
// ancestor expansion for policy evaluation and enforces acyclicity on
// insert. Runtime expansion is deliberately single-hop: see Expand.
type Graph interface {
	// Create validates name against cycles, resolves parentNames against
	// the Store, and persists the role. Returns:
	//   - *CycleError if name appears in parentNames (self-loop), or if
	//     any declared parent's ancestor closure already contains name.
	//   - *UnknownParentError if a declared parent does not exist.
	//   - ErrConflict if name is already taken.
	Create(ctx context.Context, name, description string, parentNames []string) (*Role, error)

	// Expand returns the set containing name and the names of its
	// immediate parents only (one hop). If name does not exist as a Role
	// row, Expand returns {name} and no error — this lets callers
	// authorize against role names that are not yet materialized, which
	// then simply fail to match any non-wildcard rule.
	Expand(ctx context.Context, name string) (map[string]struct{}, error)

	// Children returns the names of roles that directly declare name as a
	// parent.
	Children(ctx context.Context, name string) ([]string, error)
}
