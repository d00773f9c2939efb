package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jimezsa/jobmail/internal/models"
)

const defaultConcurrency = 4

// Plan describes one scrape: every location × term × board combination is
// searched with Params as the base request.
type Plan struct {
	Terms     []string
	Locations []string
	Boards    []string
	Params    models.SearchParams
	Filters   Filters
}

// Result is the filtered posting table plus per-stage counts.
type Result struct {
	Postings      []models.Posting
	BoardsQueried []string
	Counts
}

type Collector struct {
	scrapers    map[string]Scraper
	concurrency int
	logger      zerolog.Logger
	progress    func(done, total int)
}

type CollectorOption func(*Collector)

// WithConcurrency bounds how many searches run at once.
func WithConcurrency(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func WithCollectorLogger(logger zerolog.Logger) CollectorOption {
	return func(c *Collector) { c.logger = logger }
}

// WithProgress registers a callback invoked after each finished search.
func WithProgress(fn func(done, total int)) CollectorOption {
	return func(c *Collector) { c.progress = fn }
}

func NewCollector(scrapers map[string]Scraper, opts ...CollectorOption) *Collector {
	c := &Collector{
		scrapers:    scrapers,
		concurrency: defaultConcurrency,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type combination struct {
	location string
	term     string
	board    string
}

func (p Plan) combinations() []combination {
	var out []combination
	for _, location := range p.Locations {
		for _, term := range p.Terms {
			for _, board := range p.Boards {
				out = append(out, combination{location: location, term: term, board: board})
			}
		}
	}
	return out
}

// Scrape runs every combination of plan and filters the merged postings.
// A failing board is logged and skipped. Only cancellation or an unknown
// board aborts the scrape.
func (c *Collector) Scrape(ctx context.Context, plan Plan) (Result, error) {
	boards := NormalizeSites(plan.Boards)
	for _, board := range boards {
		if _, err := Lookup(c.scrapers, board); err != nil {
			return Result{}, err
		}
	}
	plan.Boards = boards

	combos := plan.combinations()
	found := make([][]models.Posting, len(combos))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, combo := range combos {
		i, combo := i, combo
		g.Go(func() error {
			defer func() {
				if c.progress != nil {
					c.progress(int(done.Add(1)), len(combos))
				}
			}()

			params := plan.Params
			params.Query = combo.term
			params.Location = combo.location
			params = AdaptParams(combo.board, params)

			log := c.logger.With().
				Str("board", combo.board).
				Str("location", combo.location).
				Str("term", combo.term).
				Logger()
			log.Info().Msg("scraping")

			postings, err := c.scrapers[combo.board].Search(gctx, params)
			switch {
			case err == nil:
			case gctx.Err() != nil:
				return gctx.Err()
			case errors.Is(err, ErrNotImplemented):
				log.Warn().Msg("board not implemented, skipping")
				return nil
			default:
				log.Error().Err(err).Msg("scrape failed")
				return nil
			}

			log.Info().Int("results", len(postings)).Msg("scraped")
			found[i] = postings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("scrape: %w", err)
	}

	var merged []models.Posting
	var queried []string
	queriedSet := map[string]struct{}{}
	for i, postings := range found {
		if len(postings) == 0 {
			continue
		}
		merged = append(merged, postings...)
		board := combos[i].board
		if _, ok := queriedSet[board]; !ok {
			queriedSet[board] = struct{}{}
			queried = append(queried, board)
		}
	}

	filtered, counts := FilterPostings(merged, plan.Filters)
	c.logger.Info().
		Int("raw", counts.Raw).
		Int("after_email", counts.AfterEmail).
		Int("after_title", counts.AfterTitle).
		Int("final", counts.Final).
		Msg("scrape filtered")

	return Result{
		Postings:      filtered,
		BoardsQueried: queried,
		Counts:        counts,
	}, nil
}
