package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jimezsa/jobmail/internal/models"
	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var version int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&version); err != nil {
		return err
	}
	if version >= 1 {
		return tx.Commit()
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS sent_emails (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL,
  domain TEXT NOT NULL DEFAULT '',
  company TEXT NOT NULL DEFAULT '',
  date_sent TEXT NOT NULL,
  job_title TEXT NOT NULL DEFAULT '',
  job_url TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  is_remote INTEGER NOT NULL DEFAULT 0
);`,
		`CREATE INDEX IF NOT EXISTS idx_sent_emails_domain ON sent_emails(domain);`,
		`CREATE TABLE IF NOT EXISTS scraped_jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  company TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  job_url TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  date_scraped TEXT NOT NULL,
  board TEXT NOT NULL DEFAULT '',
  is_remote INTEGER NOT NULL DEFAULT 0
);`,
		`CREATE TABLE IF NOT EXISTS run_stats (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id TEXT NOT NULL,
  timestamp TEXT NOT NULL,
  mode TEXT NOT NULL,
  total_scraped INTEGER NOT NULL DEFAULT 0,
  total_emailed INTEGER NOT NULL DEFAULT 0,
  total_errors INTEGER NOT NULL DEFAULT 0,
  total_skipped INTEGER NOT NULL DEFAULT 0,
  total_filtered INTEGER NOT NULL DEFAULT 0,
  duration_seconds REAL NOT NULL DEFAULT 0,
  boards_queried TEXT NOT NULL DEFAULT 'none',
  dry_run INTEGER NOT NULL DEFAULT 0
);`,
		`PRAGMA user_version = 1;`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Name() string { return BackendSQLite }

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) SentEmails(ctx context.Context) ([]models.SentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT email, domain, company, date_sent, job_title, job_url, location, is_remote
FROM sent_emails ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query sent_emails: %w", err)
	}
	defer rows.Close()

	var out []models.SentRecord
	for rows.Next() {
		var r models.SentRecord
		if err := rows.Scan(&r.Email, &r.Domain, &r.Company, &r.DateSent, &r.JobTitle, &r.JobURL, &r.Location, &r.IsRemote); err != nil {
			return nil, fmt.Errorf("scan sent_emails: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddSentEmail(ctx context.Context, r models.SentRecord) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sent_emails (email, domain, company, date_sent, job_title, job_url, location, is_remote)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Email, r.Domain, r.Company, r.DateSent, r.JobTitle, r.JobURL, r.Location, r.IsRemote)
	if err != nil {
		return fmt.Errorf("insert sent_emails: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RunStats(ctx context.Context) ([]models.RunStats, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, timestamp, mode, total_scraped, total_emailed, total_errors, total_skipped,
       total_filtered, duration_seconds, boards_queried, dry_run
FROM run_stats ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query run_stats: %w", err)
	}
	defer rows.Close()

	var out []models.RunStats
	for rows.Next() {
		var r runStatsRow
		if err := rows.Scan(&r.RunID, &r.Timestamp, &r.Mode, &r.TotalScraped, &r.TotalEmailed, &r.TotalErrors,
			&r.TotalSkipped, &r.TotalFiltered, &r.DurationSeconds, &r.BoardsQueried, &r.DryRun); err != nil {
			return nil, fmt.Errorf("scan run_stats: %w", err)
		}
		out = append(out, r.stats())
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddRunStats(ctx context.Context, stats models.RunStats) error {
	r := toRunStatsRow(stats)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO run_stats (run_id, timestamp, mode, total_scraped, total_emailed, total_errors,
                       total_skipped, total_filtered, duration_seconds, boards_queried, dry_run)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Timestamp, r.Mode, r.TotalScraped, r.TotalEmailed, r.TotalErrors,
		r.TotalSkipped, r.TotalFiltered, r.DurationSeconds, r.BoardsQueried, r.DryRun)
	if err != nil {
		return fmt.Errorf("insert run_stats: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddScrapedJobs(ctx context.Context, jobs []models.ScrapedJob) error {
	if len(jobs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO scraped_jobs (title, company, location, job_url, email, date_scraped, board, is_remote)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, j := range jobs {
		if _, err := stmt.ExecContext(ctx, j.Title, j.Company, j.Location, j.JobURL, j.Email, j.DateScraped, j.Board, j.IsRemote); err != nil {
			return fmt.Errorf("insert scraped_jobs: %w", err)
		}
	}
	return tx.Commit()
}
