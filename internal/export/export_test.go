package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jimezsa/jobmail/internal/models"
)

func samplePostings() []models.Posting {
	return []models.Posting{
		{
			Site:     "indeed",
			Title:    "Backend Engineer",
			Company:  "Acme",
			Location: "Berlin",
			URL:      "https://www.example.com/jobs/1?ref=x",
			Emails:   "jobs@acme.io",
			Remote:   true,
			PostedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		},
		{Site: "linkedin", Title: "SRE", Company: "Globex"},
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":         FormatTable,
		"CSV":      FormatCSV,
		"tsv":      FormatTSV,
		"json":     FormatJSON,
		"markdown": FormatMarkdown,
		"md":       FormatMarkdown,
		"other":    FormatTable,
	}
	for in, want := range cases {
		if got := ParseFormat(in); got != want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWritePostingsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePostings(&buf, samplePostings(), FormatCSV, WriteOptions{}); err != nil {
		t.Fatalf("WritePostings: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "site" || rows[1][8] != "jobs@acme.io" || rows[1][5] != "true" {
		t.Fatalf("unexpected rows: %v", rows[:2])
	}
	if rows[1][9] != "2026-03-01T09:00:00Z" {
		t.Fatalf("posted_at = %q", rows[1][9])
	}
}

func TestWritePostingsTSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePostings(&buf, samplePostings()[:1], FormatTSV, WriteOptions{}); err != nil {
		t.Fatalf("WritePostings: %v", err)
	}
	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if !strings.HasPrefix(first, "site\ttitle\tcompany") {
		t.Fatalf("unexpected header %q", first)
	}
}

func TestWritePostingsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePostings(&buf, samplePostings(), FormatJSON, WriteOptions{}); err != nil {
		t.Fatalf("WritePostings: %v", err)
	}
	var decoded []models.Posting
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 2 || decoded[0].URL != "https://www.example.com/jobs/1?ref=x" {
		t.Fatalf("unexpected decode: %+v", decoded)
	}
}

func TestWritePostingsTableShortLinks(t *testing.T) {
	var buf bytes.Buffer
	opts := WriteOptions{Hyperlinks: true, LinkStyle: LinkStyleShort}
	if err := WritePostings(&buf, samplePostings(), FormatTable, opts); err != nil {
		t.Fatalf("WritePostings: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "example.com/jobs/1") {
		t.Fatalf("expected short label, got %q", out)
	}
	if !strings.Contains(out, "\x1b]8;;https://www.example.com/jobs/1?ref=x") {
		t.Fatalf("expected hyperlink escape, got %q", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[2], "-") {
		t.Fatalf("empty cells should render as '-': %q", lines[2])
	}
}

func TestWriteMarkdownEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSentRecords(&buf, nil, FormatMarkdown, WriteOptions{}); err != nil {
		t.Fatalf("WriteSentRecords: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No results." {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestWriteSentRecordsMarkdown(t *testing.T) {
	records := []models.SentRecord{{
		Email:    "hr@acme.io",
		Domain:   "acme.io",
		Company:  "Acme",
		DateSent: "2026-03-02",
		JobTitle: "Go Developer",
		JobURL:   "https://acme.io/careers/1",
	}}
	var buf bytes.Buffer
	if err := WriteSentRecords(&buf, records, FormatMarkdown, WriteOptions{}); err != nil {
		t.Fatalf("WriteSentRecords: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"- **Go Developer** (Acme)", "email: hr@acme.io", "[Open listing](<https://acme.io/careers/1>)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
	if strings.Contains(out, "remote:") {
		t.Fatalf("false flags should be omitted: %q", out)
	}
}

func TestWriteRunStatsCSV(t *testing.T) {
	stats := []models.RunStats{{
		RunID:         "r1",
		Timestamp:     time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC),
		Mode:          models.ModeRemote,
		TotalScraped:  40,
		TotalEmailed:  5,
		Duration:      90 * time.Second,
		BoardsQueried: []string{"indeed", "linkedin"},
	}}
	var buf bytes.Buffer
	if err := WriteRunStats(&buf, stats, FormatCSV, WriteOptions{}); err != nil {
		t.Fatalf("WriteRunStats: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	row := rows[1]
	if row[1] != "remote" || row[2] != "40" || row[4] != "5" || row[7] != "90.0" || row[8] != "indeed linkedin" {
		t.Fatalf("unexpected row %v", row)
	}
}

func TestShortURLLabelTruncates(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("a", 100)
	label := shortURLLabel(long)
	if len(label) != 60 || !strings.HasSuffix(label, "...") {
		t.Fatalf("unexpected label %q", label)
	}
}
