package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/authzgate/authzgate/internal/domain/role"
)

// RoleStore implements role.Store against the roles/role_inheritance tables.
type RoleStore struct {
	db *DB
}

// NewRoleStore wraps db as a role.Store.
func NewRoleStore(db *DB) *RoleStore {
	return &RoleStore{db: db}
}

// GetByName returns a role by name, with its immediate parent names.
func (s *RoleStore) GetByName(ctx context.Context, name string) (*role.Role, error) {
	var r role.Role
	row := s.db.conn.QueryRowContext(ctx, `SELECT id, name, description FROM roles WHERE name = ?`, name)
	if err := row.Scan(&r.ID, &r.Name, &r.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, role.ErrNotFound
		}
		return nil, fmt.Errorf("query role %q: %w", name, err)
	}

	parents, err := s.parentNames(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	r.Parents = parents
	return &r, nil
}

func (s *RoleStore) parentNames(ctx context.Context, childID int64) ([]string, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT roles.name FROM role_inheritance
		JOIN roles ON roles.id = role_inheritance.parent_id
		WHERE role_inheritance.child_id = ?`, childID)
	if err != nil {
		return nil, fmt.Errorf("query parents of role %d: %w", childID, err)
	}
	defer rows.Close()

	var parents []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan parent name: %w", err)
		}
		parents = append(parents, name)
	}
	return parents, rows.Err()
}

// CreateRole persists a new role with the given parent names in one
// transaction: the row, then one edge per parent.
func (s *RoleStore) CreateRole(ctx context.Context, name, description string, parentNames []string) (*role.Role, error) {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	row := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles WHERE name = ?`, name)
	if err := row.Scan(&exists); err != nil {
		return nil, fmt.Errorf("check existing role: %w", err)
	}
	if exists > 0 {
		return nil, role.ErrConflict
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO roles (name, description) VALUES (?, ?)`, name, description)
	if err != nil {
		return nil, fmt.Errorf("insert role: %w", err)
	}
	childID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read inserted id: %w", err)
	}

	for _, parentName := range parentNames {
		var parentID int64
		row := tx.QueryRowContext(ctx, `SELECT id FROM roles WHERE name = ?`, parentName)
		if err := row.Scan(&parentID); err != nil {
			return nil, fmt.Errorf("look up parent %q: %w", parentName, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO role_inheritance (parent_id, child_id) VALUES (?, ?)`, parentID, childID); err != nil {
			return nil, fmt.Errorf("insert edge %q -> %q: %w", parentName, name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &role.Role{ID: childID, Name: name, Description: description, Parents: append([]string(nil), parentNames...)}, nil
}

// AncestorClosure walks the parent edges to completion with a recursive
// common table expression, used only for creation-time cycle prevention.
func (s *RoleStore) AncestorClosure(ctx context.Context, name string) (map[string]struct{}, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
		WITH RECURSIVE ancestors(id) AS (
			SELECT role_inheritance.parent_id
			FROM role_inheritance
			JOIN roles ON roles.id = role_inheritance.child_id
			WHERE roles.name = ?
			UNION
			SELECT role_inheritance.parent_id
			FROM role_inheritance
			JOIN ancestors ON ancestors.id = role_inheritance.child_id
		)
		SELECT roles.name FROM roles JOIN ancestors ON ancestors.id = roles.id`, name)
	if err != nil {
		return nil, fmt.Errorf("query ancestor closure of %q: %w", name, err)
	}
	defer rows.Close()

	closure := make(map[string]struct{})
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan ancestor name: %w", err)
		}
		closure[n] = struct{}{}
	}
	return closure, rows.Err()
}

// Children returns the names of roles that directly declare name as a parent.
func (s *RoleStore) Children(ctx context.Context, name string) ([]string, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT roles.name FROM role_inheritance
		JOIN roles ON roles.id = role_inheritance.child_id
		JOIN roles AS parent_role ON parent_role.id = role_inheritance.parent_id
		WHERE parent_role.name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("query children of %q: %w", name, err)
	}
	defer rows.Close()

	var children []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan child name: %w", err)
		}
		children = append(children, n)
	}
	return children, rows.Err()
}

// Compile-time interface verification.
var _ role.Store = (*RoleStore)(nil)
