package domain

import (
	"sort"
	"strings"
)

// Violations maps a form field to a human-readable problem. Empty means the
// form is valid.
type Violations map[string]string

func (v Violations) OK() bool {
	return len(v) == 0
}

// Fields returns the offending field names in a stable order.
func (v Violations) Fields() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (v Violations) String() string {
	parts := make([]string, 0, len(v))
	for _, f := range v.Fields() {
		parts = append(parts, f+": "+v[f])
	}
	return strings.Join(parts, "; ")
}
