package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jimezsa/jobmail/internal/models"
)

// CSVStore keeps one CSV file per table in a directory. Headers are written
// when a file is first created.
type CSVStore struct {
	dir  string
	mu   sync.Mutex
	open func(path string) (appendFile, error)
}

type appendFile interface {
	io.Writer
	Stat() (os.FileInfo, error)
	Close() error
}

func openAppend(path string) (appendFile, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func NewCSVStore(dir string) (*CSVStore, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &CSVStore{dir: dir, open: openAppend}, nil
}

func (s *CSVStore) Name() string { return BackendCSV }

func (s *CSVStore) Close() error { return nil }

// Path returns the file backing table.
func (s *CSVStore) Path(table string) string {
	return filepath.Join(s.dir, table+".csv")
}

func (s *CSVStore) SentEmails(_ context.Context) ([]models.SentRecord, error) {
	var out []models.SentRecord
	err := s.read(tableSentEmails, sentEmailColumns, func(get func(string) string) {
		out = append(out, sentEmailFrom(get))
	})
	return out, err
}

func (s *CSVStore) AddSentEmail(_ context.Context, record models.SentRecord) error {
	return s.append(tableSentEmails, sentEmailColumns, [][]string{sentEmailValues(record)})
}

func (s *CSVStore) RunStats(_ context.Context) ([]models.RunStats, error) {
	var out []models.RunStats
	err := s.read(tableRunStats, runStatsColumns, func(get func(string) string) {
		out = append(out, runStatsRowFrom(get).stats())
	})
	return out, err
}

func (s *CSVStore) AddRunStats(_ context.Context, stats models.RunStats) error {
	return s.append(tableRunStats, runStatsColumns, [][]string{toRunStatsRow(stats).values()})
}

func (s *CSVStore) AddScrapedJobs(_ context.Context, jobs []models.ScrapedJob) error {
	if len(jobs) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, scrapedJobValues(job))
	}
	return s.append(tableScrapedJobs, scrapedJobColumns, rows)
}

func (s *CSVStore) read(table string, columns []string, each func(get func(string) string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.Path(table))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", table, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("read %s header: %w", table, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.ToLower(name))] = i
	}
	if _, ok := index[columns[0]]; !ok {
		return columnMismatch(table, columns, header)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", table, err)
		}
		each(func(column string) string {
			i, ok := index[column]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		})
	}
}

func (s *CSVStore) append(table string, columns []string, rows [][]string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.open(s.Path(table))
	if err != nil {
		return fmt.Errorf("open %s: %w", table, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", table, cerr)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", table, err)
	}

	writer := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := writer.Write(columns); err != nil {
			return fmt.Errorf("write %s header: %w", table, err)
		}
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("append %s: %w", table, err)
	}
	return nil
}
