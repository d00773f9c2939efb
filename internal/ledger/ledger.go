// Package ledger decides whether a recipient may be contacted, based on
// the outreach history kept in a record store.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jimezsa/jobmail/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
)

// DefaultCooldownDays is the minimum number of days between two contacts
// with the same domain.
const DefaultCooldownDays = 5

// Store is the subset of the record store the ledger needs.
type Store interface {
	SentEmails(ctx context.Context) ([]models.SentRecord, error)
	AddSentEmail(ctx context.Context, record models.SentRecord) error
}

// Entry describes a send about to be recorded.
type Entry struct {
	Email    string
	Domain   string
	Company  string
	JobTitle string
	JobURL   string
	Location string
	IsRemote bool
}

// Ledger caches the sent history in memory. It is not safe for concurrent use.
type Ledger struct {
	store    Store
	cooldown int
	now      func() time.Time
	logger   zerolog.Logger

	records []models.SentRecord
	loaded  bool
}

type Option func(*Ledger)

func WithCooldownDays(days int) Option {
	return func(l *Ledger) {
		if days > 0 {
			l.cooldown = days
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		cooldown: DefaultCooldownDays,
		now:      time.Now,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Invalidate drops the cache; the next call reloads it from the store.
func (l *Ledger) Invalidate() {
	l.records = nil
	l.loaded = false
}

func (l *Ledger) load(ctx context.Context) error {
	if l.loaded {
		return nil
	}
	records, err := l.store.SentEmails(ctx)
	if err != nil {
		return fmt.Errorf("load sent history: %w", err)
	}
	l.records = records
	l.loaded = true
	l.logger.Debug().Int("records", len(records)).Msg("sent history loaded")
	return nil
}

// CanSend reports whether the (email, domain, company) triple may be
// contacted today. When it may not, reason names the rule that matched.
func (l *Ledger) CanSend(ctx context.Context, email, domain, company string) (bool, string, error) {
	if err := l.load(ctx); err != nil {
		return false, "", err
	}

	email = normalize(email)
	domain = fold(domain)
	company = fold(company)
	today := l.today()

	for _, record := range l.records {
		if email != "" && normalize(record.Email) == email {
			return false, fmt.Sprintf("already sent to %s", email), nil
		}
	}

	for _, record := range l.records {
		sent, ok := parseDate(record.DateSent)
		if !ok {
			continue
		}
		days := int(today.Sub(sent).Hours() / 24)

		if domain != "" && fold(record.Domain) == domain && days < l.cooldown {
			return false, fmt.Sprintf("domain %s contacted %dd ago (cooldown: %dd)", domain, days, l.cooldown), nil
		}
		if company != "" && fold(record.Company) == company && days == 0 {
			return false, fmt.Sprintf("company %s already contacted today", record.Company), nil
		}
	}

	return true, "", nil
}

// MarkSent appends a record dated today to the store, then to the cache.
// A store failure is returned and the cache is left untouched.
func (l *Ledger) MarkSent(ctx context.Context, entry Entry) error {
	if err := l.load(ctx); err != nil {
		return err
	}
	record := l.record(entry)
	if err := l.store.AddSentEmail(ctx, record); err != nil {
		return fmt.Errorf("record sent email to %s: %w", record.Email, err)
	}
	l.records = append(l.records, record)
	return nil
}

// Remember adds a record dated today to the cache only. Later checks in the
// same run see it; persistent history does not.
func (l *Ledger) Remember(ctx context.Context, entry Entry) error {
	if err := l.load(ctx); err != nil {
		return err
	}
	l.records = append(l.records, l.record(entry))
	return nil
}

func (l *Ledger) record(entry Entry) models.SentRecord {
	return models.SentRecord{
		Email:    normalize(entry.Email),
		Domain:   strings.ToLower(strings.TrimSpace(entry.Domain)),
		Company:  strings.TrimSpace(entry.Company),
		DateSent: l.now().Format(models.DateLayout),
		JobTitle: entry.JobTitle,
		JobURL:   entry.JobURL,
		Location: entry.Location,
		IsRemote: entry.IsRemote,
	}
}

func (l *Ledger) today() time.Time {
	day, _ := time.Parse(models.DateLayout, l.now().Format(models.DateLayout))
	return day
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if len(value) > len(models.DateLayout) {
		if ts, err := time.Parse(time.RFC3339, value); err == nil {
			value = ts.Format(models.DateLayout)
		} else {
			value = value[:len(models.DateLayout)]
		}
	}
	day, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func fold(value string) string {
	return cases.Fold().String(strings.TrimSpace(value))
}
