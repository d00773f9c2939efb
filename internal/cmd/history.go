package cmd

import (
	"sort"

	"github.com/jimezsa/jobmail/internal/export"
	"github.com/jimezsa/jobmail/internal/models"
)

type HistoryCmd struct {
	Sent  HistorySentCmd  `cmd:"" help:"List recorded outreach emails."`
	Stats HistoryStatsCmd `cmd:"" help:"List recorded run statistics."`
}

type HistoryOptions struct {
	Format string `help:"Output format: table, csv, tsv, json, md." enum:",table,csv,tsv,json,md" default:""`
	Limit  int    `help:"Show only the most recent N rows (0 for all)." default:"50"`
}

type HistorySentCmd struct {
	HistoryOptions
	Company string `help:"Only rows for this company (case-insensitive)."`
}

type HistoryStatsCmd struct {
	HistoryOptions
	Mode string `help:"Only runs of this mode." enum:",onsite,remote" default:""`
}

func (h *HistorySentCmd) Run(ctx *Context) error {
	store, err := openStore(ctx.context(), ctx.Config, ctx.Logger)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.SentEmails(ctx.context())
	if err != nil {
		return err
	}
	records = filterSent(records, h.Company)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DateSent > records[j].DateSent
	})
	records = lastN(records, h.Limit)

	return export.WriteSentRecords(ctx.Out, records, resolveFormat(ctx, h.Format, ""), historyWriteOptions(ctx))
}

func (h *HistoryStatsCmd) Run(ctx *Context) error {
	store, err := openStore(ctx.context(), ctx.Config, ctx.Logger)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.RunStats(ctx.context())
	if err != nil {
		return err
	}
	if h.Mode != "" {
		kept := stats[:0]
		for _, s := range stats {
			if string(s.Mode) == h.Mode {
				kept = append(kept, s)
			}
		}
		stats = kept
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Timestamp.After(stats[j].Timestamp)
	})
	stats = lastN(stats, h.Limit)

	return export.WriteRunStats(ctx.Out, stats, resolveFormat(ctx, h.Format, ""), historyWriteOptions(ctx))
}

func historyWriteOptions(ctx *Context) export.WriteOptions {
	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled
	return export.WriteOptions{
		ColorEnabled: colorEnabled,
		Hyperlinks:   colorEnabled,
		LinkStyle:    export.LinkStyleShort,
	}
}

func filterSent(records []models.SentRecord, company string) []models.SentRecord {
	company = normalizeKey(company)
	if company == "" {
		return records
	}
	out := make([]models.SentRecord, 0, len(records))
	for _, record := range records {
		if normalizeKey(record.Company) == company {
			out = append(out, record)
		}
	}
	return out
}

// lastN keeps the first n rows of an already newest-first slice.
func lastN[T any](rows []T, n int) []T {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	return rows[:n]
}
