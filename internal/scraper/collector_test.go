package scraper

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jimezsa/jobmail/internal/models"
)

type fakeScraper struct {
	name    string
	err     error
	results map[string][]models.Posting

	mu    sync.Mutex
	calls []models.SearchParams
}

func (f *fakeScraper) Name() string { return f.name }

func (f *fakeScraper) Search(_ context.Context, params models.SearchParams) ([]models.Posting, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.results[params.Location+"|"+params.Query], nil
}

func TestCollectorScrapeMergesInCombinationOrder(t *testing.T) {
	indeed := &fakeScraper{name: SiteIndeed, results: map[string][]models.Posting{
		"Austin|go": {{Title: "Go Dev", Company: "A", URL: "https://a/1", Emails: "jobs@a.com"}},
		"Denver|go": {{Title: "Go Dev", Company: "A", URL: "https://a/1", Emails: "second@a.com"}},
	}}
	linkedin := &fakeScraper{name: SiteLinkedIn, results: map[string][]models.Posting{
		"Austin|go": {{Title: "SRE", Company: "B", URL: "https://b/1", Emails: "hr@b.com"}},
	}}
	broken := &fakeScraper{name: SiteGlassdoor, err: errors.New("http 403")}

	var progress []int
	var mu sync.Mutex
	collector := NewCollector(
		map[string]Scraper{SiteIndeed: indeed, SiteLinkedIn: linkedin, SiteGlassdoor: broken},
		WithConcurrency(2),
		WithProgress(func(done, total int) {
			mu.Lock()
			progress = append(progress, done)
			mu.Unlock()
			if total != 6 {
				t.Errorf("total = %d, want 6", total)
			}
		}),
	)

	result, err := collector.Scrape(context.Background(), Plan{
		Terms:     []string{"go"},
		Locations: []string{"Austin", "Denver"},
		Boards:    []string{"glassdoor", "Indeed", "linkedin"},
		Params:    models.SearchParams{Limit: 10, Hours: 24, JobType: "fulltime"},
	})
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	if len(result.Postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(result.Postings))
	}
	if result.Postings[0].Emails != "jobs@a.com" || result.Postings[1].Company != "B" {
		t.Fatalf("unexpected merge order: %+v", result.Postings)
	}
	if result.Raw != 3 || result.Final != 2 {
		t.Fatalf("unexpected counts: %+v", result.Counts)
	}
	if len(result.BoardsQueried) != 2 || result.BoardsQueried[0] != SiteIndeed || result.BoardsQueried[1] != SiteLinkedIn {
		t.Fatalf("unexpected boards queried: %v", result.BoardsQueried)
	}
	if len(progress) != 6 {
		t.Fatalf("expected 6 progress callbacks, got %d", len(progress))
	}

	for _, call := range indeed.calls {
		if call.Hours != 0 {
			t.Fatalf("expected indeed hours dropped when job type is set, got %+v", call)
		}
	}
}

func TestCollectorScrapeUnknownBoard(t *testing.T) {
	collector := NewCollector(map[string]Scraper{})
	_, err := collector.Scrape(context.Background(), Plan{
		Terms:     []string{"go"},
		Locations: []string{"Austin"},
		Boards:    []string{"monster"},
	})
	if !errors.Is(err, ErrUnknownBoard) {
		t.Fatalf("expected ErrUnknownBoard, got %v", err)
	}
}

func TestCollectorScrapeSkipsNotImplemented(t *testing.T) {
	stub := &fakeScraper{name: SiteGoogleJobs, err: ErrNotImplemented}
	collector := NewCollector(map[string]Scraper{SiteGoogleJobs: stub})
	result, err := collector.Scrape(context.Background(), Plan{
		Terms:     []string{"go"},
		Locations: []string{"Remote"},
		Boards:    []string{SiteGoogleJobs},
	})
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(result.Postings) != 0 || len(result.BoardsQueried) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if stub.calls[0].Query != "remote go jobs" {
		t.Fatalf("expected adapted google query, got %q", stub.calls[0].Query)
	}
}

func TestCollectorScrapeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &fakeScraper{name: SiteIndeed, err: context.Canceled}
	collector := NewCollector(map[string]Scraper{SiteIndeed: stub})
	_, err := collector.Scrape(ctx, Plan{
		Terms:     []string{"go"},
		Locations: []string{"Austin"},
		Boards:    []string{SiteIndeed},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
