package policy

import "fmt"

// ReasonNoActivePolicy is returned by the decision path (not by Evaluate
// itself) when no policy is active at all.
const ReasonNoActivePolicy = "System Error: No active policy found."

// reasonImplicitDeny is returned when no rule in the sequence matches.
const reasonImplicitDeny = "Implicit Deny: No matching rule found."

// Evaluate is a pure, deterministic, first-match-wins evaluator. It has no
// I/O and no reference to any Store, so it can be called directly from
// tests and safely run concurrently across goroutines.
//
// expandedRoles is the subject's declared role together with its immediate
// parent roles (see role.Graph.Expand). action and resourceAttrs describe
// the request. rules is the active policy's ordered rule sequence.
//
// A rule whose Role or Action field is empty never matches a concrete
// value and never matches "*" either, since the field itself is absent
// rather than explicitly wildcarded.
func Evaluate(expandedRoles map[string]struct{}, action string, resourceAttrs map[string]interface{}, rules []Rule) Decision {
	for i, rule := range rules {
		if !roleMatches(rule.Role, expandedRoles) {
			continue
		}
		if !actionMatches(rule.Action, action) {
			continue
		}
		if !attributesMatch(rule.ResourceMatch, resourceAttrs) {
			continue
		}

		return Decision{
			Allowed: rule.Effect == EffectAllow,
			Reason:  fmt.Sprintf("Matched Rule #%d (Role: %s, Action: %s).", i, rule.Role, rule.Action),
		}
	}

	return Decision{Allowed: false, Reason: reasonImplicitDeny}
}

func roleMatches(ruleRole string, expandedRoles map[string]struct{}) bool {
	if ruleRole == "" {
		return false
	}
	if ruleRole == "*" {
		return true
	}
	_, ok := expandedRoles[ruleRole]
	return ok
}

func actionMatches(ruleAction, requestAction string) bool {
	if ruleAction == "" {
		return false
	}
	return ruleAction == "*" || ruleAction == requestAction
}

func attributesMatch(required map[string]interface{}, resource map[string]interface{}) bool {
	if len(required) == 0 {
		return true
	}
	for k, v := range required {
		got, ok := resource[k]
		if !ok || !valuesEqual(got, v) {
			return false
		}
	}
	return true
}

// valuesEqual compares two JSON-decoded scalar values for equality. Values
// arriving from encoding/json are limited to string, float64, bool, nil,
// and (nested) map/slice, all of which compare correctly with ==, except
// maps and slices which are not comparable; resource_match values are
// documented as scalars, so this is not a concern in practice.
func valuesEqual(a, b interface{}) bool {
	return a == b
}
