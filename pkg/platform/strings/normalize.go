// Package strings holds list normalization shared by config and request
// parsing.
package strings

import (
	"strings"
)

// Normalize trims every element, drops empties and removes duplicates while
// keeping first-seen order. Comma-joined elements are split, so a list read
// from a single environment variable normalizes the same as a YAML list.
func Normalize(values []string) []string {
	return normalize(values, false)
}

// NormalizeFold is Normalize with case-insensitive duplicate detection. The
// first spelling of each element is kept.
func NormalizeFold(values []string) []string {
	return normalize(values, true)
}

func normalize(values []string, fold bool) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			key := part
			if fold {
				key = strings.ToLower(part)
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}
