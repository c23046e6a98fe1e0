// Package policy contains domain types and the pure evaluation logic for
// RBAC+ABAC authorization policies.
package policy

import (
	"encoding/json"
	"time"
)

// Effect is the outcome a matching rule produces.
type Effect string

const (
	// EffectAllow permits the request.
	EffectAllow Effect = "allow"
	// EffectDeny blocks the request.
	EffectDeny Effect = "deny"
)

// Rule is a single entry in a Policy's ordered rule list. Rules are
// evaluated first-match-wins; a Rule's position in Content.Rules is its
// zero-based index, used verbatim in Decision.Reason.
type Rule struct {
	// Role is a specific role name or the wildcard "*".
	Role string `json:"role"`
	// Action is a specific action name or the wildcard "*".
	Action string `json:"action"`
	// Effect is "allow" or "deny".
	Effect Effect `json:"effect"`
	// ResourceMatch maps attribute names to required values. Absent or
	// empty means the rule matches any resource.
	ResourceMatch map[string]interface{} `json:"resource_match,omitempty"`
}

// Content is the structured document stored in Policy.Content. The only
// recognized key is "rules".
type Content struct {
	Rules []Rule `json:"rules"`
}

// UnmarshalJSON tolerates a "rules" value that is not a JSON array by
// treating it as an empty rule list instead of failing. This mirrors
// Evaluate's own tolerance for malformed policy content.
func (c *Content) UnmarshalJSON(data []byte) error {
	var raw struct {
		Rules json.RawMessage `json:"rules"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Rules) == 0 {
		c.Rules = nil
		return nil
	}
	var parsed []Rule
	if err := json.Unmarshal(raw.Rules, &parsed); err != nil {
		c.Rules = nil
		return nil
	}
	c.Rules = parsed
	return nil
}

// Policy is a versioned, named collection of rules.
type Policy struct {
	// ID is the stable integer identity assigned by the Store.
	ID int64
	// Name groups a family of versions.
	Name string
	// Version is positive and strictly increasing within Name, starting at 1.
	Version int
	// Content holds the ordered rule sequence.
	Content Content
	// IsActive is true for at most one Policy across the entire store.
	IsActive bool
	// CreatedAt is the server-assigned creation timestamp.
	CreatedAt time.Time
}

// Decision is the outcome of evaluating a request against a Policy.
type Decision struct {
	// Allowed is true if the request is permitted.
	Allowed bool
	// Reason is a human-readable explanation; see Evaluate for exact formats.
	Reason string
}
