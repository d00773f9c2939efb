package scraper

import (
	"strings"

	"github.com/jimezsa/jobmail/internal/models"
	"github.com/jimezsa/jobmail/internal/recipient"
	"github.com/jimezsa/jobmail/internal/seen"
)

// Filters holds the post-scrape rejection rules.
type Filters struct {
	RejectTitles  []string
	EmailPatterns []string
}

// Counts tracks how many postings survive each filter stage.
type Counts struct {
	Raw        int
	AfterEmail int
	AfterTitle int
	Final      int
}

// RejectTitle reports whether title contains any of patterns, ignoring case.
func RejectTitle(title string, patterns []string) bool {
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" {
		return false
	}
	for _, pattern := range patterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern != "" && strings.Contains(title, pattern) {
			return true
		}
	}
	return false
}

// FilterPostings keeps postings with at least one valid address, drops
// rejected titles, rewrites the email field to the addresses that pass the
// patterns and finally removes duplicate posting URLs, first one winning.
func FilterPostings(postings []models.Posting, filters Filters) ([]models.Posting, Counts) {
	counts := Counts{Raw: len(postings)}

	withEmail := make([]models.Posting, 0, len(postings))
	for _, posting := range postings {
		if len(recipient.Extract(posting.Emails)) > 0 {
			withEmail = append(withEmail, posting)
		}
	}
	counts.AfterEmail = len(withEmail)

	titled := withEmail[:0]
	for _, posting := range withEmail {
		if RejectTitle(posting.Title, filters.RejectTitles) {
			continue
		}
		titled = append(titled, posting)
	}
	counts.AfterTitle = len(titled)

	kept := titled[:0]
	for _, posting := range titled {
		valid := recipient.Filter(posting.Emails, filters.EmailPatterns)
		if len(valid) == 0 {
			continue
		}
		posting.Emails = strings.Join(valid, ",")
		kept = append(kept, posting)
	}

	out := seen.Dedupe(kept)
	counts.Final = len(out)
	return out, counts
}
