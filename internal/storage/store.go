// Package storage persists outreach history, run statistics and scraped
// postings behind one append-only record store interface.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jimezsa/jobmail/internal/models"
	"github.com/rs/zerolog"
)

const (
	BackendCSV      = "csv"
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
)

const (
	tableSentEmails  = "sent_emails"
	tableScrapedJobs = "scraped_jobs"
	tableRunStats    = "run_stats"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Store is an append-only record store. Reads return every row.
type Store interface {
	Name() string
	SentEmails(ctx context.Context) ([]models.SentRecord, error)
	AddSentEmail(ctx context.Context, record models.SentRecord) error
	RunStats(ctx context.Context) ([]models.RunStats, error)
	AddRunStats(ctx context.Context, stats models.RunStats) error
	AddScrapedJobs(ctx context.Context, jobs []models.ScrapedJob) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend     string
	Dir         string
	SQLitePath  string
	SupabaseURL string
	SupabaseKey string
}

// Backends lists the accepted backend names.
func Backends() []string {
	return []string{BackendCSV, BackendSQLite, BackendSupabase}
}

// Open builds the configured backend. A sqlite or supabase backend that
// fails to initialise is replaced by the CSV store in opts.Dir.
func Open(ctx context.Context, opts Options, logger zerolog.Logger) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	logger = logger.With().Str("component", "storage").Logger()

	var (
		store Store
		err   error
	)
	switch backend {
	case "", BackendCSV:
		return NewCSVStore(opts.Dir)
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(opts.Dir, "jobmail.db")
		}
		store, err = OpenSQLite(ctx, path)
	case BackendSupabase:
		store, err = NewSupabaseStore(opts.SupabaseURL, opts.SupabaseKey)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err == nil {
		logger.Debug().Str("backend", store.Name()).Msg("record store ready")
		return store, nil
	}

	logger.Warn().Err(err).Str("backend", backend).Msg("record store unavailable, falling back to csv")
	return NewCSVStore(opts.Dir)
}
