// Package strings parses list-valued settings such as KAFKA_BROKERS.
package strings

import (
	"slices"
	"strings"
)

// SplitList splits s on sep and cleans the parts with DedupeAndTrim. A blank
// s yields nil, so an unset variable reads as "not configured".
//
//	SplitList("broker-1:9092, broker-2:9092,,broker-1:9092", ",")
//	// []string{"broker-1:9092", "broker-2:9092"}
func SplitList(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return DedupeAndTrim(strings.Split(s, sep))
}

// DedupeAndTrim trims every value and drops blanks and exact repeats, keeping
// first-seen order.
func DedupeAndTrim(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
