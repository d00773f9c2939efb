// Package recipient validates and filters the raw email field of a posting.
package recipient

import (
	"regexp"
	"strings"
)

const (
	prefixStartsWith = "starts_with:"
	prefixContains   = "contains:"
)

var addressPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Valid reports whether email is local@labels.tld with a TLD of at least two
// letters and no consecutive dots in the domain.
func Valid(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || !addressPattern.MatchString(email) {
		return false
	}
	return !strings.Contains(Domain(email), "..")
}

// Extract splits a comma-separated field into lowercase valid addresses,
// keeping the first occurrence of each.
func Extract(raw string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		email := strings.ToLower(strings.TrimSpace(part))
		if email == "" {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		if !Valid(email) {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}

// Matches reports whether email matches a single filter pattern. Patterns
// without a known prefix are treated as substrings.
func Matches(email, pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if email == "" || pattern == "" {
		return false
	}
	email = strings.ToLower(email)

	switch {
	case strings.HasPrefix(pattern, prefixStartsWith):
		return strings.HasPrefix(email, strings.ToLower(pattern[len(prefixStartsWith):]))
	case strings.HasPrefix(pattern, prefixContains):
		return strings.Contains(email, strings.ToLower(pattern[len(prefixContains):]))
	default:
		return strings.Contains(email, strings.ToLower(pattern))
	}
}

// KnownPattern reports whether pattern uses a starts_with: or contains: prefix.
func KnownPattern(pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	return strings.HasPrefix(pattern, prefixStartsWith) || strings.HasPrefix(pattern, prefixContains)
}

// Rejected reports whether email matches any of patterns.
func Rejected(email string, patterns []string) bool {
	for _, pattern := range patterns {
		if Matches(email, pattern) {
			return true
		}
	}
	return false
}

// Filter extracts valid addresses from raw and drops those matching any pattern.
func Filter(raw string, patterns []string) []string {
	valid := Extract(raw)
	if len(patterns) == 0 {
		return valid
	}
	out := valid[:0]
	for _, email := range valid {
		if Rejected(email, patterns) {
			continue
		}
		out = append(out, email)
	}
	return out
}

// Domain returns the part after '@', or "" when there is none.
func Domain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return email[at+1:]
}
