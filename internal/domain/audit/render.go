package audit

import (
	"fmt"
	"sort"
	"strings"
)

// RenderAttrs produces a stable textual rendering of an attribute map for
// audit persistence, with keys sorted lexicographically so that two
// requests with the same attributes always diff identically. The Python
// original this system was distilled from does not canonicalize (it
// stores insertion-order-dependent str(dict) output); this implementation
// deliberately diverges per the design notes' recommendation.
func RenderAttrs(attrs map[string]interface{}) string {
	if len(attrs) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", k, attrs[k])
	}
	b.WriteByte('}')
	return b.String()
}
