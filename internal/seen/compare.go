// Package seen derives posting identities and deduplicates posting lists,
// including against a saved history file.
package seen

import (
	"net/url"
	"strings"

	"github.com/jimezsa/jobmail/internal/models"
)

const keySeparator = "::"

// DiffStats captures stats for A-B unseen filtering.
type DiffStats struct {
	TotalNew    int
	TotalSeen   int
	InvalidNew  int
	InvalidSeen int
	Unseen      int
}

// InvalidSkipped returns the total invalid records skipped during comparison.
func (s DiffStats) InvalidSkipped() int {
	return s.InvalidNew + s.InvalidSeen
}

// MergeStats captures stats for seen history updates.
type MergeStats struct {
	TotalSeen    int
	TotalInput   int
	InvalidSeen  int
	InvalidInput int
	Added        int
	TotalOut     int
}

// InvalidSkipped returns the total invalid records skipped during merge.
func (s MergeStats) InvalidSkipped() int {
	return s.InvalidSeen + s.InvalidInput
}

// Normalize lowercases value and collapses whitespace.
func Normalize(value string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(value)))
	return strings.Join(fields, " ")
}

// NormalizeURL drops the query, fragment and trailing slash, and lowercases
// the scheme and host. Unparseable input is returned trimmed.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String()
}

// Key identifies a posting by its URL, or by title and company when the
// URL is missing.
func Key(posting models.Posting) (string, bool) {
	if key := NormalizeURL(posting.URL); key != "" {
		return key, true
	}
	title := Normalize(posting.Title)
	company := Normalize(posting.Company)
	if title == "" || company == "" {
		return "", false
	}
	return title + keySeparator + company, true
}

// Dedupe keeps the first posting for each key and drops postings without one.
func Dedupe(postings []models.Posting) []models.Posting {
	keys := make(map[string]struct{}, len(postings))
	out := make([]models.Posting, 0, len(postings))
	for _, posting := range postings {
		key, ok := Key(posting)
		if !ok {
			continue
		}
		if _, exists := keys[key]; exists {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, posting)
	}
	return out
}

// Diff returns unseen postings from newPostings using existing seen keys.
func Diff(newPostings []models.Posting, seenPostings []models.Posting) ([]models.Posting, DiffStats) {
	stats := DiffStats{
		TotalNew:  len(newPostings),
		TotalSeen: len(seenPostings),
	}

	seenKeys := make(map[string]struct{}, len(seenPostings))
	for _, posting := range seenPostings {
		key, ok := Key(posting)
		if !ok {
			stats.InvalidSeen++
			continue
		}
		seenKeys[key] = struct{}{}
	}

	newKeys := make(map[string]struct{}, len(newPostings))
	unseen := make([]models.Posting, 0, len(newPostings))
	for _, posting := range newPostings {
		key, ok := Key(posting)
		if !ok {
			stats.InvalidNew++
			continue
		}
		if _, exists := newKeys[key]; exists {
			continue
		}
		newKeys[key] = struct{}{}
		if _, exists := seenKeys[key]; exists {
			continue
		}
		unseen = append(unseen, posting)
	}

	stats.Unseen = len(unseen)
	return unseen, stats
}

// Merge appends unique new postings into the seen history.
// Existing seen entries win collisions.
func Merge(existingSeen []models.Posting, inputPostings []models.Posting) ([]models.Posting, MergeStats) {
	stats := MergeStats{
		TotalSeen:  len(existingSeen),
		TotalInput: len(inputPostings),
	}

	keys := make(map[string]struct{}, len(existingSeen)+len(inputPostings))
	out := make([]models.Posting, 0, len(existingSeen)+len(inputPostings))

	for _, posting := range existingSeen {
		key, ok := Key(posting)
		if !ok {
			stats.InvalidSeen++
			out = append(out, posting)
			continue
		}
		if _, exists := keys[key]; exists {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, posting)
	}

	for _, posting := range inputPostings {
		key, ok := Key(posting)
		if !ok {
			stats.InvalidInput++
			continue
		}
		if _, exists := keys[key]; exists {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, posting)
		stats.Added++
	}

	stats.TotalOut = len(out)
	return out, stats
}
