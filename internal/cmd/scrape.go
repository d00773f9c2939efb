package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jimezsa/jobmail/internal/export"
	"github.com/jimezsa/jobmail/internal/models"
	"github.com/jimezsa/jobmail/internal/outreach"
	"github.com/jimezsa/jobmail/internal/scraper"
	"github.com/jimezsa/jobmail/internal/seen"
	"github.com/jimezsa/jobmail/internal/ui"
)

type ScrapeCmd struct {
	Mode       string `arg:"" enum:"onsite,remote" help:"Run mode: onsite or remote."`
	Boards     string `help:"Comma-separated boards overriding the mode config."`
	Proxies    string `help:"Comma-separated proxy URLs." env:"JOBMAIL_PROXIES"`
	Format     string `help:"Output format: table, csv, tsv, json, md." enum:",table,csv,tsv,json,md" default:""`
	Links      string `help:"Table link display: short or full." enum:"short,full" default:"full"`
	Output     string `name:"out" short:"o" help:"Write postings to a file."`
	Seen       string `help:"Path to seen postings JSON file."`
	NewOnly    bool   `help:"Output only unseen postings (requires --seen)."`
	SeenUpdate bool   `help:"Merge unseen postings into the --seen file after scraping (requires --seen)."`
}

func (s *ScrapeCmd) Run(ctx *Context) error {
	if s.NewOnly && strings.TrimSpace(s.Seen) == "" {
		return fmt.Errorf("--new-only requires --seen")
	}
	if s.SeenUpdate && strings.TrimSpace(s.Seen) == "" {
		return fmt.Errorf("--seen-update requires --seen")
	}
	if strings.TrimSpace(s.Seen) != "" && pathsEqual(s.Output, s.Seen) {
		return fmt.Errorf("--out path must differ from --seen")
	}

	mode, err := models.ParseMode(s.Mode)
	if err != nil {
		return err
	}
	mc := ctx.Config.ModeConfig(mode)
	if boards := splitList(s.Boards); len(boards) > 0 {
		mc.Boards = boards
	}

	progress := ctx.UI.StartProgress("Scraping")
	defer progress.Stop()

	collector, err := newCollector(ctx.Config, s.Proxies, ctx.Logger, progress.Update)
	if err != nil {
		return err
	}
	result, err := collector.Scrape(ctx.context(), outreach.PlanFor(mc, filtersFromConfig(ctx.Config)))
	progress.Stop()
	if err != nil {
		return err
	}

	postings := result.Postings
	var unseen []models.Posting
	if strings.TrimSpace(s.Seen) != "" {
		seenPostings, err := seen.ReadPostingsAllowMissing(s.Seen)
		if err != nil {
			return fmt.Errorf("read --seen: %w", err)
		}
		unseen, _ = seen.Diff(postings, seenPostings)
		if s.NewOnly {
			postings = unseen
		}
	}

	if err := s.write(ctx, postings); err != nil {
		return err
	}

	if s.SeenUpdate {
		if err := updateSeenHistory(s.Seen, unseen); err != nil {
			return err
		}
	}

	printScrapeSummary(ctx, result.Counts, postings)
	return nil
}

func (s *ScrapeCmd) write(ctx *Context, postings []models.Posting) error {
	if s.Output != "" && s.Format == "" && !ctx.PlainText && strings.EqualFold(filepath.Ext(s.Output), ".json") {
		return seen.WritePostings(s.Output, postings)
	}

	format := resolveFormat(ctx, s.Format, s.Output)
	writer := ctx.Out
	if s.Output != "" {
		file, err := os.Create(s.Output)
		if err != nil {
			return err
		}
		defer file.Close()
		writer = file
	}

	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled && s.Output == ""
	linkStyle := export.LinkStyleShort
	if strings.EqualFold(s.Links, string(export.LinkStyleFull)) {
		linkStyle = export.LinkStyleFull
	}
	return export.WritePostings(writer, postings, format, export.WriteOptions{
		ColorEnabled: colorEnabled,
		Hyperlinks:   colorEnabled && ui.IsTTY(writer),
		LinkStyle:    linkStyle,
	})
}

// resolveFormat picks the output format from the global flags, --format,
// and whether output goes to a file or a terminal.
func resolveFormat(ctx *Context, flag string, outputPath string) export.Format {
	if ctx.JSONOutput {
		return export.FormatJSON
	}
	if ctx.PlainText {
		return export.FormatTSV
	}
	if flag != "" {
		return export.ParseFormat(flag)
	}
	if outputPath != "" || !ui.IsTTY(ctx.Out) {
		return export.FormatCSV
	}
	return export.FormatTable
}

func pathsEqual(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil {
		return absA == absB
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func updateSeenHistory(seenPath string, postings []models.Posting) error {
	seenPostings, err := seen.ReadPostingsAllowMissing(seenPath)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}

	merged, _ := seen.Merge(seenPostings, postings)
	if err := seen.WritePostings(seenPath, merged); err != nil {
		return fmt.Errorf("write --seen: %w", err)
	}
	return nil
}

func printScrapeSummary(ctx *Context, counts scraper.Counts, postings []models.Posting) {
	if ctx == nil || ctx.Err == nil {
		return
	}
	_, _ = fmt.Fprintln(ctx.Err, formatScrapeSummary(counts, postings))
}

func formatScrapeSummary(counts scraper.Counts, postings []models.Posting) string {
	bySite := "none"
	if siteCounts := countPostingsBySite(postings); len(siteCounts) > 0 {
		parts := make([]string, 0, len(siteCounts))
		for _, count := range siteCounts {
			parts = append(parts, fmt.Sprintf("%s:%d", count.site, count.total))
		}
		bySite = strings.Join(parts, ", ")
	}
	return fmt.Sprintf(
		"summary: scraped=%d with_email=%d after_title=%d final=%d shown=%d by_site=%s",
		counts.Raw, counts.AfterEmail, counts.AfterTitle, counts.Final, len(postings), bySite,
	)
}

type siteCount struct {
	site  string
	total int
}

func countPostingsBySite(postings []models.Posting) []siteCount {
	totals := make(map[string]int, len(postings))
	for _, posting := range postings {
		site := strings.ToLower(strings.TrimSpace(posting.Site))
		if site == "" {
			site = "unknown"
		}
		totals[site]++
	}

	counts := make([]siteCount, 0, len(totals))
	for site, total := range totals {
		counts = append(counts, siteCount{site: site, total: total})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].site < counts[j].site
	})
	return counts
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
