// Package strings holds small string helpers used by configuration parsing.
package strings

import (
	"strings"
)

// SplitList splits v on sep, trims each element and drops empty and
// repeated elements. Order is preserved.
//
//	SplitList(" mq1:9092, mq2:9092,,mq1:9092", ",")
//	// []string{"mq1:9092", "mq2:9092"}
func SplitList(v, sep string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, sep)
	seen := make(map[string]struct{}, len(parts))
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
