package models

import "time"

// DateLayout is the ISO date format used for SentRecord.DateSent.
const DateLayout = "2006-01-02"

// SentRecord is one row of outreach history. Rows are append-only.
type SentRecord struct {
	Email    string `json:"email"`
	Domain   string `json:"domain"`
	Company  string `json:"company"`
	DateSent string `json:"date_sent"`
	JobTitle string `json:"job_title"`
	JobURL   string `json:"job_url"`
	Location string `json:"location"`
	IsRemote bool   `json:"is_remote"`
}

// ScrapedJob is a posting as persisted after a scrape.
type ScrapedJob struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	JobURL      string `json:"job_url"`
	Email       string `json:"email"`
	DateScraped string `json:"date_scraped"`
	Board       string `json:"board"`
	IsRemote    bool   `json:"is_remote"`
}

// ScrapedJobFromPosting converts a posting into its persisted form.
func ScrapedJobFromPosting(p Posting, scrapedAt time.Time) ScrapedJob {
	return ScrapedJob{
		Title:       p.Title,
		Company:     p.Company,
		Location:    p.Location,
		JobURL:      p.URL,
		Email:       p.Emails,
		DateScraped: scrapedAt.Format(DateLayout),
		Board:       p.Site,
		IsRemote:    p.Remote,
	}
}

// RunStats summarizes one pipeline run.
type RunStats struct {
	RunID         string        `json:"run_id"`
	Timestamp     time.Time     `json:"timestamp"`
	Mode          Mode          `json:"mode"`
	TotalScraped  int           `json:"total_scraped"`
	TotalEmailed  int           `json:"total_emailed"`
	TotalErrors   int           `json:"total_errors"`
	TotalSkipped  int           `json:"total_skipped"`
	TotalFiltered int           `json:"total_filtered"`
	Duration      time.Duration `json:"duration_seconds"`
	BoardsQueried []string      `json:"boards_queried"`
	DryRun        bool          `json:"dry_run"`
}
