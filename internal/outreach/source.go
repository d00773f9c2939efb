package outreach

import (
	"context"
	"fmt"

	"github.com/jimezsa/jobmail/internal/config"
	"github.com/jimezsa/jobmail/internal/models"
	"github.com/jimezsa/jobmail/internal/scraper"
	"github.com/jimezsa/jobmail/internal/seen"
)

// Source yields the filtered postings for one run.
type Source interface {
	Fetch(ctx context.Context, mode models.Mode, mc config.ModeConfig) (scraper.Result, error)
}

// PlanFor turns a mode configuration into a scrape plan.
func PlanFor(mc config.ModeConfig, filters scraper.Filters) scraper.Plan {
	return scraper.Plan{
		Terms:     mc.SearchTerms,
		Locations: mc.Locations,
		Boards:    mc.Boards,
		Params: models.SearchParams{
			Country:   mc.Country,
			Limit:     mc.ResultsWanted,
			Remote:    mc.IsRemote,
			JobType:   mc.JobType,
			Hours:     mc.HoursOld,
			EasyApply: mc.EasyApply,
		},
		Filters: filters,
	}
}

// ScrapeSource scrapes the configured boards live.
type ScrapeSource struct {
	Collector *scraper.Collector
	Filters   scraper.Filters
}

func (s ScrapeSource) Fetch(ctx context.Context, _ models.Mode, mc config.ModeConfig) (scraper.Result, error) {
	return s.Collector.Scrape(ctx, PlanFor(mc, s.Filters))
}

// FileSource replays a saved postings file through the scrape filters.
type FileSource struct {
	Path    string
	Filters scraper.Filters
}

func (s FileSource) Fetch(_ context.Context, _ models.Mode, _ config.ModeConfig) (scraper.Result, error) {
	postings, err := seen.ReadPostings(s.Path)
	if err != nil {
		return scraper.Result{}, fmt.Errorf("read postings: %w", err)
	}

	filtered, counts := scraper.FilterPostings(postings, s.Filters)

	var boards []string
	known := map[string]struct{}{}
	for _, posting := range postings {
		if posting.Site == "" {
			continue
		}
		if _, ok := known[posting.Site]; ok {
			continue
		}
		known[posting.Site] = struct{}{}
		boards = append(boards, posting.Site)
	}

	return scraper.Result{Postings: filtered, BoardsQueried: boards, Counts: counts}, nil
}
