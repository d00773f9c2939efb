package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jimezsa/jobmail/internal/models"
	supabase "github.com/nedpals/supabase-go"
)

// SupabaseStore persists rows into three Supabase tables. The SDK does not
// accept a context, so calls only check ctx before starting.
type SupabaseStore struct {
	client *supabase.Client
}

func NewSupabaseStore(url, key string) (*SupabaseStore, error) {
	url = strings.TrimSpace(url)
	key = strings.TrimSpace(key)
	if url == "" || key == "" {
		return nil, errors.New("supabase url and key must be provided")
	}
	return &SupabaseStore{client: supabase.CreateClient(url, key)}, nil
}

func (s *SupabaseStore) Name() string { return BackendSupabase }

func (s *SupabaseStore) Close() error { return nil }

func (s *SupabaseStore) SentEmails(ctx context.Context) ([]models.SentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []models.SentRecord
	if err := s.client.DB.From(tableSentEmails).Select("*").Execute(&out); err != nil {
		return nil, fmt.Errorf("select %s: %w", tableSentEmails, err)
	}
	return out, nil
}

func (s *SupabaseStore) AddSentEmail(ctx context.Context, record models.SentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var results []models.SentRecord
	if err := s.client.DB.From(tableSentEmails).Insert(record).Execute(&results); err != nil {
		return fmt.Errorf("insert %s: %w", tableSentEmails, err)
	}
	return nil
}

func (s *SupabaseStore) RunStats(ctx context.Context) ([]models.RunStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []runStatsRow
	if err := s.client.DB.From(tableRunStats).Select("*").Execute(&rows); err != nil {
		return nil, fmt.Errorf("select %s: %w", tableRunStats, err)
	}
	out := make([]models.RunStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.stats())
	}
	return out, nil
}

func (s *SupabaseStore) AddRunStats(ctx context.Context, stats models.RunStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var results []runStatsRow
	if err := s.client.DB.From(tableRunStats).Insert(toRunStatsRow(stats)).Execute(&results); err != nil {
		return fmt.Errorf("insert %s: %w", tableRunStats, err)
	}
	return nil
}

func (s *SupabaseStore) AddScrapedJobs(ctx context.Context, jobs []models.ScrapedJob) error {
	if len(jobs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var results []models.ScrapedJob
	if err := s.client.DB.From(tableScrapedJobs).Insert(jobs).Execute(&results); err != nil {
		return fmt.Errorf("insert %s: %w", tableScrapedJobs, err)
	}
	return nil
}
