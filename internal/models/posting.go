package models

import (
	"strings"
	"time"
)

// Posting is the normalized job listing returned by scrapers and consumed once per run.
type Posting struct {
	ID          string    `json:"id,omitempty"`
	Site        string    `json:"site"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	URL         string    `json:"job_url"`
	Remote      bool      `json:"is_remote,omitempty"`
	JobType     string    `json:"job_type,omitempty"`
	Salary      string    `json:"salary,omitempty"`
	Emails      string    `json:"emails,omitempty"`
	Description string    `json:"description,omitempty"`
	Snippet     string    `json:"snippet,omitempty"`
	PostedAt    time.Time `json:"posted_at,omitempty"`
	PostedAtRaw string    `json:"posted_at_raw,omitempty"`
}

// EmailList splits the raw comma-separated emails field without validating it.
func (p Posting) EmailList() []string {
	var out []string
	for _, part := range strings.Split(p.Emails, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
