// Package role contains domain types and store contracts for the role
// inheritance hierarchy used by RBAC evaluation.
package role

// Role is a named node in the directed, acyclic parent graph. Edges are
// directed child->parent: Parents lists the roles this role inherits from.
type Role struct {
	// ID is the stable integer identity assigned by the Store.
	ID int64
	// Name is non-empty and globally unique.
	Name string
	// Description is optional free text.
	Description string
	// Parents are the names of this role's immediate parents, as declared
	// at creation time.
	Parents []string
}
