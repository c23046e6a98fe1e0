// Package authzgate provides a Go SDK for the authz-gate decision API.
//
// authz-gate evaluates authorization requests against role hierarchies and
// versioned policies. This SDK lets Go services call /authorize before
// performing a sensitive action, rather than re-implementing the decision
// logic client-side. It uses only the Go standard library (net/http) with
// zero external dependencies.
//
// Quick start:
//
//	// Set AUTHZGATE_SERVER_ADDR and AUTHZGATE_API_KEY env vars, then:
//	client := authzgate.NewClient()
//
//	resp, err := client.Authorize(ctx, authzgate.Request{
//	    Subject: map[string]any{"role": "editor"},
//	    Action:  "write",
//	})
//	if err != nil {
//	    var denied *DeniedError
//	    if errors.As(err, &denied) {
//	        fmt.Println("denied:", denied.Reason)
//	    }
//	}
package authzgate

// Request mirrors the JSON body accepted by POST /authorize.
type Request struct {
	// Subject carries the calling identity's attributes. The server reads
	// its "role" key for RBAC matching; policy conditions match Resource
	// attributes, not Subject attributes.
	Subject map[string]any `json:"subject"`

	// Resource carries the target resource's attributes.
	Resource map[string]any `json:"resource,omitempty"`

	// Action is the operation being attempted (e.g. "read", "write").
	Action string `json:"action"`

	// DryRun evaluates the request against the active policy without
	// writing an audit log entry.
	DryRun bool `json:"dry_run,omitempty"`
}

// Response mirrors the JSON body returned by POST /authorize.
type Response struct {
	// Decision is true when the request is allowed.
	Decision bool `json:"decision"`

	// Reason explains why the decision was made.
	Reason string `json:"reason"`

	// TraceID identifies the audit log entry recorded for this decision,
	// or nil for a DryRun request.
	TraceID *int64 `json:"trace_id,omitempty"`
}
