package jagriti

import "strings"

// matchText finds needle among candidates: exact case-insensitive match
// first, then case-insensitive substring in either direction, first match in
// source order winning. No fuzzy scoring beyond that.
func matchText(needle string, candidates []string) (int, bool) {
	target := strings.ToLower(strings.TrimSpace(needle))
	if target == "" {
		return 0, false
	}

	for i, candidate := range candidates {
		if strings.ToLower(strings.TrimSpace(candidate)) == target {
			return i, true
		}
	}

	for i, candidate := range candidates {
		lower := strings.ToLower(strings.TrimSpace(candidate))
		if strings.Contains(lower, target) || strings.Contains(target, lower) {
			return i, true
		}
	}

	return 0, false
}
