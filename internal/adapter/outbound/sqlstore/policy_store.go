package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/authzgate/authzgate/internal/domain/policy"
)

// PolicyStore implements policy.Store against the policies table.
type PolicyStore struct {
	db *DB
}

// NewPolicyStore wraps db as a policy.Store.
func NewPolicyStore(db *DB) *PolicyStore {
	return &PolicyStore{db: db}
}

// Create computes the next version for name and persists the policy inactive.
func (s *PolicyStore) Create(ctx context.Context, name string, content policy.Content) (*policy.Policy, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("marshal content: %w", err)
	}

	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var maxVersion sql.NullInt64
	row := tx.QueryRowContext(ctx, `SELECT MAX(version) FROM policies WHERE name = ?`, name)
	if err := row.Scan(&maxVersion); err != nil {
		return nil, fmt.Errorf("query max version: %w", err)
	}
	version := int(maxVersion.Int64) + 1

	res, err := tx.ExecContext(ctx,
		`INSERT INTO policies (name, version, content, is_active, created_at) VALUES (?, ?, ?, 0, CURRENT_TIMESTAMP)`,
		name, version, string(raw))
	if err != nil {
		return nil, fmt.Errorf("insert policy: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read inserted id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return s.Get(ctx, id)
}

// Activate deactivates every currently active policy and activates id in
// one serializable transaction.
func (s *PolicyStore) Activate(ctx context.Context, id int64) (*policy.Policy, error) {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	row := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM policies WHERE id = ?`, id)
	if err := row.Scan(&exists); err != nil {
		return nil, fmt.Errorf("check existence: %w", err)
	}
	if exists == 0 {
		return nil, policy.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `UPDATE policies SET is_active = 0 WHERE is_active = 1`); err != nil {
		return nil, fmt.Errorf("deactivate current: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE policies SET is_active = 1 WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("activate %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return s.Get(ctx, id)
}

// Active returns the single active policy, or nil if none is active.
func (s *PolicyStore) Active(ctx context.Context) (*policy.Policy, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT id, name, version, content, is_active, created_at FROM policies WHERE is_active = 1 LIMIT 1`)
	p, err := scanPolicy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query active policy: %w", err)
	}
	return p, nil
}

// Get returns a policy by id.
func (s *PolicyStore) Get(ctx context.Context, id int64) (*policy.Policy, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT id, name, version, content, is_active, created_at FROM policies WHERE id = ?`, id)
	p, err := scanPolicy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, policy.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query policy %d: %w", id, err)
	}
	return p, nil
}

// List returns policies ordered by version descending, paginated.
func (s *PolicyStore) List(ctx context.Context, skip, limit int) ([]policy.Policy, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, name, version, content, is_active, created_at FROM policies ORDER BY version DESC LIMIT ? OFFSET ?`,
		limit, skip)
	if err != nil {
		return nil, fmt.Errorf("query policies: %w", err)
	}
	defer rows.Close()

	var out []policy.Policy
	for rows.Next() {
		p, err := scanPolicyRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan policy row: %w", err)
		}
		out = append(out, *p)
	}
	if out == nil {
		out = []policy.Policy{}
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPolicy(row scanner) (*policy.Policy, error) {
	return scanPolicyRow(row)
}

func scanPolicyRow(row scanner) (*policy.Policy, error) {
	var (
		p        policy.Policy
		rawJSON  string
		isActive int
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Version, &rawJSON, &isActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.IsActive = isActive != 0
	if err := json.Unmarshal([]byte(rawJSON), &p.Content); err != nil {
		return nil, fmt.Errorf("unmarshal content: %w", err)
	}
	return &p, nil
}

// Compile-time interface verification.
var _ policy.Store = (*PolicyStore)(nil)
