// Package audit contains domain types for the append-only decision audit
// log.
package audit

import "time"

// Log is a single, immutable record of a non-dry-run authorization
// decision. Logs are append-only: never updated or deleted in scope.
type Log struct {
	// ID is the stable integer identity; also used as the response's
	// trace_id.
	ID int64
	// Subject is the stable textual rendering of the request's subject map.
	Subject string
	// Action is the request's action string.
	Action string
	// Resource is the stable textual rendering of the request's resource map.
	Resource string
	// Decision is the allow/deny outcome that was computed.
	Decision bool
	// Explanation is the reason string produced by the evaluator.
	Explanation string
	// Timestamp is server-assigned at write time.
	Timestamp time.Time
}
