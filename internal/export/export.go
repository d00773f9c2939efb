// Package export renders postings, outreach history and run statistics in the
// CLI output formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/muesli/termenv"

	"github.com/jimezsa/jobmail/internal/models"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

// ParseFormat maps a flag value to a Format, defaulting to table.
func ParseFormat(value string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatCSV:
		return FormatCSV
	case FormatJSON:
		return FormatJSON
	case FormatMarkdown, "markdown":
		return FormatMarkdown
	case FormatTSV:
		return FormatTSV
	default:
		return FormatTable
	}
}

type WriteOptions struct {
	ColorEnabled bool
	Hyperlinks   bool
	LinkStyle    LinkStyle
}

type LinkStyle string

const (
	LinkStyleShort LinkStyle = "short"
	LinkStyleFull  LinkStyle = "full"
)

// sheet is the tabular form shared by the csv, tsv, table and md writers.
type sheet struct {
	header []string
	rows   [][]string
	// tableCols selects the columns shown in the terminal table.
	tableCols []int
	// urlCol is the column rendered as a link, or -1.
	urlCol int
	// titleCol and subtitleCol head each markdown entry.
	titleCol    int
	subtitleCol int
}

// WritePostings renders scraped postings.
func WritePostings(w io.Writer, postings []models.Posting, format Format, opts WriteOptions) error {
	if format == FormatJSON {
		return writeJSON(w, postings)
	}
	s := sheet{
		header:      []string{"site", "title", "company", "location", "url", "remote", "job_type", "salary", "emails", "posted_at", "posted_at_raw", "snippet"},
		tableCols:   []int{0, 1, 2, 8, 4},
		urlCol:      4,
		titleCol:    1,
		subtitleCol: 2,
	}
	for _, p := range postings {
		s.rows = append(s.rows, []string{
			safe(p.Site),
			safe(p.Title),
			safe(p.Company),
			safe(p.Location),
			safe(p.URL),
			boolString(p.Remote),
			safe(p.JobType),
			safe(p.Salary),
			safe(p.Emails),
			formatTime(p.PostedAt),
			safe(p.PostedAtRaw),
			safe(p.Snippet),
		})
	}
	return s.write(w, format, opts)
}

// WriteSentRecords renders outreach history rows.
func WriteSentRecords(w io.Writer, records []models.SentRecord, format Format, opts WriteOptions) error {
	if format == FormatJSON {
		return writeJSON(w, records)
	}
	s := sheet{
		header:      []string{"date_sent", "email", "company", "domain", "job_title", "location", "remote", "job_url"},
		tableCols:   []int{0, 1, 2, 4, 7},
		urlCol:      7,
		titleCol:    4,
		subtitleCol: 2,
	}
	for _, r := range records {
		s.rows = append(s.rows, []string{
			safe(r.DateSent),
			safe(r.Email),
			safe(r.Company),
			safe(r.Domain),
			safe(r.JobTitle),
			safe(r.Location),
			boolString(r.IsRemote),
			safe(r.JobURL),
		})
	}
	return s.write(w, format, opts)
}

// WriteRunStats renders run statistics rows.
func WriteRunStats(w io.Writer, stats []models.RunStats, format Format, opts WriteOptions) error {
	if format == FormatJSON {
		return writeJSON(w, stats)
	}
	s := sheet{
		header:      []string{"timestamp", "mode", "scraped", "filtered", "emailed", "skipped", "errors", "duration_s", "boards", "dry_run", "run_id"},
		tableCols:   []int{0, 1, 2, 4, 5, 6, 7, 9},
		urlCol:      -1,
		titleCol:    0,
		subtitleCol: 1,
	}
	for _, st := range stats {
		s.rows = append(s.rows, []string{
			formatTime(st.Timestamp),
			string(st.Mode),
			strconv.Itoa(st.TotalScraped),
			strconv.Itoa(st.TotalFiltered),
			strconv.Itoa(st.TotalEmailed),
			strconv.Itoa(st.TotalSkipped),
			strconv.Itoa(st.TotalErrors),
			strconv.FormatFloat(st.Duration.Seconds(), 'f', 1, 64),
			strings.Join(st.BoardsQueried, " "),
			boolString(st.DryRun),
			st.RunID,
		})
	}
	return s.write(w, format, opts)
}

func (s sheet) write(w io.Writer, format Format, opts WriteOptions) error {
	switch format {
	case FormatCSV:
		return s.writeCSV(w, ',')
	case FormatTSV:
		return s.writeCSV(w, '\t')
	case FormatMarkdown:
		return s.writeMarkdown(w)
	default:
		return s.writeTable(w, opts)
	}
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func (s sheet) writeCSV(w io.Writer, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(s.header); err != nil {
		return err
	}
	for _, row := range s.rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (s sheet) writeTable(w io.Writer, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := make([]string, 0, len(s.tableCols))
	for _, col := range s.tableCols {
		header = append(header, s.header[col])
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	output := termenv.NewOutput(w)
	for _, row := range s.rows {
		cells := make([]string, 0, len(s.tableCols))
		for _, col := range s.tableCols {
			cell := row[col]
			if col == s.urlCol {
				cell = linkCell(cell, output, opts)
			} else if cell == "" {
				cell = "-"
			}
			cells = append(cells, cell)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func (s sheet) writeMarkdown(w io.Writer) error {
	if len(s.rows) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for _, row := range s.rows {
		lines := []string{fmt.Sprintf("- **%s** (%s)", orDash(row[s.titleCol]), orDash(row[s.subtitleCol]))}
		for col, name := range s.header {
			if col == s.titleCol || col == s.subtitleCol || row[col] == "" || row[col] == "false" {
				continue
			}
			value := row[col]
			if col == s.urlCol {
				value = fmt.Sprintf("[Open listing](<%s>)", value)
			}
			lines = append(lines, fmt.Sprintf("  %s: %s", name, value))
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func linkCell(raw string, output *termenv.Output, opts WriteOptions) string {
	const linkColor = "#87CEEB"

	if raw == "" {
		return "-"
	}
	display := raw
	if opts.LinkStyle == LinkStyleShort && opts.Hyperlinks {
		display = shortURLLabel(raw)
	}
	if opts.ColorEnabled {
		display = output.String(display).Foreground(output.Color(linkColor)).String()
	}
	if opts.Hyperlinks {
		display = hyperlink(raw, display)
	}
	return display
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func boolString(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

func safe(value string) string {
	return strings.TrimSpace(value)
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func hyperlink(url string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + url + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}

func shortURLLabel(raw string) string {
	const maxLen = 60
	label := strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil {
		host := strings.TrimPrefix(parsed.Host, "www.")
		if host != "" {
			label = host + parsed.Path
		}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = raw
	}
	if len(label) > maxLen {
		label = label[:maxLen-3] + "..."
	}
	return label
}
