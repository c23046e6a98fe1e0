package sqlstore

import (
	"context"
	"fmt"

	"github.com/authzgate/authzgate/internal/domain/audit"
)

// AuditStore implements audit.Store against the append-only audit_logs table.
type AuditStore struct {
	db *DB
}

// NewAuditStore wraps db as an audit.Store.
func NewAuditStore(db *DB) *AuditStore {
	return &AuditStore{db: db}
}

// Append writes one Log row and returns its assigned id.
func (s *AuditStore) Append(ctx context.Context, log audit.Log) (int64, error) {
	res, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO audit_logs (subject, action, resource, decision, explanation, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		log.Subject, log.Action, log.Resource, log.Decision, log.Explanation, log.Timestamp)
	if err != nil {
		return 0, fmt.Errorf("insert audit log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}
	return id, nil
}

// List returns the most recently written logs, newest first, bounded by limit.
func (s *AuditStore) List(ctx context.Context, limit int) ([]audit.Log, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, subject, action, resource, decision, explanation, timestamp FROM audit_logs ORDER BY id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var out []audit.Log
	for rows.Next() {
		var l audit.Log
		if err := rows.Scan(&l.ID, &l.Subject, &l.Action, &l.Resource, &l.Decision, &l.Explanation, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit log row: %w", err)
		}
		out = append(out, l)
	}
	if out == nil {
		out = []audit.Log{}
	}
	return out, rows.Err()
}

// Compile-time interface verification.
var _ audit.Store = (*AuditStore)(nil)
