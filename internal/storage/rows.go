package storage

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jimezsa/jobmail/internal/models"
)

const (
	timestampLayout = time.RFC3339
	noBoards        = "none"
)

var (
	sentEmailColumns  = []string{"email", "domain", "company", "date_sent", "job_title", "job_url", "location", "is_remote"}
	scrapedJobColumns = []string{"title", "company", "location", "job_url", "email", "date_scraped", "board", "is_remote"}
	runStatsColumns   = []string{"run_id", "timestamp", "mode", "total_scraped", "total_emailed", "total_errors", "total_skipped", "total_filtered", "duration_seconds", "boards_queried", "dry_run"}
)

// runStatsRow is the flat persisted shape of models.RunStats.
type runStatsRow struct {
	RunID           string  `json:"run_id"`
	Timestamp       string  `json:"timestamp"`
	Mode            string  `json:"mode"`
	TotalScraped    int     `json:"total_scraped"`
	TotalEmailed    int     `json:"total_emailed"`
	TotalErrors     int     `json:"total_errors"`
	TotalSkipped    int     `json:"total_skipped"`
	TotalFiltered   int     `json:"total_filtered"`
	DurationSeconds float64 `json:"duration_seconds"`
	BoardsQueried   string  `json:"boards_queried"`
	DryRun          bool    `json:"dry_run"`
}

func toRunStatsRow(stats models.RunStats) runStatsRow {
	boards := noBoards
	if len(stats.BoardsQueried) > 0 {
		boards = strings.Join(stats.BoardsQueried, ", ")
	}
	seconds := math.Round(stats.Duration.Seconds()*10) / 10
	return runStatsRow{
		RunID:           stats.RunID,
		Timestamp:       stats.Timestamp.Truncate(time.Second).Format(timestampLayout),
		Mode:            string(stats.Mode),
		TotalScraped:    stats.TotalScraped,
		TotalEmailed:    stats.TotalEmailed,
		TotalErrors:     stats.TotalErrors,
		TotalSkipped:    stats.TotalSkipped,
		TotalFiltered:   stats.TotalFiltered,
		DurationSeconds: seconds,
		BoardsQueried:   boards,
		DryRun:          stats.DryRun,
	}
}

func (r runStatsRow) stats() models.RunStats {
	ts, _ := time.Parse(timestampLayout, r.Timestamp)
	var boards []string
	if r.BoardsQueried != "" && r.BoardsQueried != noBoards {
		for _, board := range strings.Split(r.BoardsQueried, ",") {
			if board = strings.TrimSpace(board); board != "" {
				boards = append(boards, board)
			}
		}
	}
	return models.RunStats{
		RunID:         r.RunID,
		Timestamp:     ts,
		Mode:          models.Mode(r.Mode),
		TotalScraped:  r.TotalScraped,
		TotalEmailed:  r.TotalEmailed,
		TotalErrors:   r.TotalErrors,
		TotalSkipped:  r.TotalSkipped,
		TotalFiltered: r.TotalFiltered,
		Duration:      time.Duration(math.Round(r.DurationSeconds * float64(time.Second))),
		BoardsQueried: boards,
		DryRun:        r.DryRun,
	}
}

func (r runStatsRow) values() []string {
	return []string{
		r.RunID,
		r.Timestamp,
		r.Mode,
		strconv.Itoa(r.TotalScraped),
		strconv.Itoa(r.TotalEmailed),
		strconv.Itoa(r.TotalErrors),
		strconv.Itoa(r.TotalSkipped),
		strconv.Itoa(r.TotalFiltered),
		strconv.FormatFloat(r.DurationSeconds, 'f', 1, 64),
		r.BoardsQueried,
		formatBool(r.DryRun),
	}
}

func runStatsRowFrom(get func(string) string) runStatsRow {
	seconds, _ := strconv.ParseFloat(get("duration_seconds"), 64)
	return runStatsRow{
		RunID:           get("run_id"),
		Timestamp:       get("timestamp"),
		Mode:            get("mode"),
		TotalScraped:    atoi(get("total_scraped")),
		TotalEmailed:    atoi(get("total_emailed")),
		TotalErrors:     atoi(get("total_errors")),
		TotalSkipped:    atoi(get("total_skipped")),
		TotalFiltered:   atoi(get("total_filtered")),
		DurationSeconds: seconds,
		BoardsQueried:   get("boards_queried"),
		DryRun:          parseBool(get("dry_run")),
	}
}

func sentEmailValues(r models.SentRecord) []string {
	return []string{r.Email, r.Domain, r.Company, r.DateSent, r.JobTitle, r.JobURL, r.Location, formatBool(r.IsRemote)}
}

func sentEmailFrom(get func(string) string) models.SentRecord {
	return models.SentRecord{
		Email:    get("email"),
		Domain:   get("domain"),
		Company:  get("company"),
		DateSent: get("date_sent"),
		JobTitle: get("job_title"),
		JobURL:   get("job_url"),
		Location: get("location"),
		IsRemote: parseBool(get("is_remote")),
	}
}

func scrapedJobValues(j models.ScrapedJob) []string {
	return []string{j.Title, j.Company, j.Location, j.JobURL, j.Email, j.DateScraped, j.Board, formatBool(j.IsRemote)}
}

func formatBool(value bool) string {
	if value {
		return "TRUE"
	}
	return "FALSE"
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y", "t":
		return true
	}
	return false
}

func atoi(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func columnMismatch(table string, want, got []string) error {
	return fmt.Errorf("%s: header %v does not match %v", table, got, want)
}
