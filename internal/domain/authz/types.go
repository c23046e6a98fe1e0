// Package authz contains the core request/response types for the
// authorization decision pipeline. These are the types the transport
// layer marshals requests into and responses out of; they carry no
// transport concerns (no JSON tags are required by the core itself).
package authz

// Request describes a subject, an action, and a resource to authorize.
type Request struct {
	// Subject carries recognized key "role" (string). Missing or empty
	// defaults to "guest" when the request is processed.
	Subject map[string]interface{}
	// Action is the action being attempted.
	Action string
	// Resource maps attribute name to scalar attribute value.
	Resource map[string]interface{}
	// DryRun, when true, computes the decision but does not audit it.
	DryRun bool
}

// Role returns the subject's declared role, defaulting to "guest" when
// the "role" key is absent, empty, or not a string.
func (r Request) Role() string {
	v, ok := r.Subject["role"]
	if !ok {
		return "guest"
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "guest"
	}
	return s
}

// Response is the result of authorizing one Request.
type Response struct {
	// Decision is the allow/deny outcome.
	Decision bool
	// Reason is a human-readable explanation of the decision.
	Reason string
	// TraceID is the id of the audit log row written for this decision.
	// Nil when the request was a dry run (no audit was written).
	TraceID *int64
}
