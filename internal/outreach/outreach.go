// Package outreach drives one pipeline run: fetch postings, pick a
// recipient, check the ledger, compose, deliver, record and report.
package outreach

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jimezsa/jobmail/internal/compose"
	"github.com/jimezsa/jobmail/internal/config"
	"github.com/jimezsa/jobmail/internal/ledger"
	"github.com/jimezsa/jobmail/internal/mailer"
	"github.com/jimezsa/jobmail/internal/models"
	"github.com/jimezsa/jobmail/internal/recipient"
)

// Ledger decides whether a recipient may be contacted and records sends.
type Ledger interface {
	CanSend(ctx context.Context, email, domain, company string) (bool, string, error)
	MarkSent(ctx context.Context, entry ledger.Entry) error
	Remember(ctx context.Context, entry ledger.Entry) error
}

type Composer interface {
	Compose(ctx context.Context, job compose.Job, applicantContext string) models.EmailDraft
}

type Sender interface {
	Send(ctx context.Context, to, subject, body, attachmentPath string) error
}

type Reporter interface {
	Report(ctx context.Context, stats models.RunStats) bool
}

// ScrapedStore persists the postings fetched by a run.
type ScrapedStore interface {
	AddScrapedJobs(ctx context.Context, jobs []models.ScrapedJob) error
}

// Deps are the collaborators of a run. Scraped may be nil.
type Deps struct {
	Source   Source
	Ledger   Ledger
	Composer Composer
	Sender   Sender
	Reporter Reporter
	Scraped  ScrapedStore
}

// Settings are the run-wide knobs shared by both modes.
type Settings struct {
	EmailPatterns []string
	ContextPath   string
	ResumePath    string
	Interval      time.Duration
	SkipWeekends  bool
	DryRun        bool
	// DryRunRecordsSent persists dry-run sends to the history. When false a
	// dry-run send only lives in the ledger cache for the rest of the run.
	DryRunRecordsSent bool
}

// SettingsFromConfig extracts the run settings from cfg.
func SettingsFromConfig(cfg config.Config) Settings {
	return Settings{
		EmailPatterns:     cfg.Filters.EmailPatterns,
		ContextPath:       cfg.Email.ContextPath,
		ResumePath:        cfg.Email.ResumePath,
		Interval:          time.Duration(cfg.Email.IntervalSeconds) * time.Second,
		SkipWeekends:      cfg.SkipWeekends,
		DryRun:            cfg.DryRun,
		DryRunRecordsSent: cfg.DryRunRecordsSent,
	}
}

// Summary is the outcome of Run. Skipped is set when the calendar rule
// suppressed the run.
type Summary struct {
	Stats   models.RunStats `json:"stats"`
	Skipped bool            `json:"skipped,omitempty"`
}

type outcome string

const (
	outcomeEmailed  outcome = "emailed"
	outcomeFiltered outcome = "filtered"
	outcomeSkipped  outcome = "skipped"
	outcomeError    outcome = "error"
)

type Option func(*Orchestrator)

func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithSleep replaces the pacing sleep.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(o *Orchestrator) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

func WithRunID(newID func() string) Option {
	return func(o *Orchestrator) {
		if newID != nil {
			o.newID = newID
		}
	}
}

// Orchestrator runs the pipeline for either mode. It is not safe for
// concurrent runs.
type Orchestrator struct {
	deps     Deps
	settings Settings
	logger   zerolog.Logger
	now      func() time.Time
	sleep    func(context.Context, time.Duration) error
	newID    func() string
}

func New(deps Deps, settings Settings, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		deps:     deps,
		settings: settings,
		logger:   zerolog.Nop(),
		now:      time.Now,
		sleep:    mailer.Sleep,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With().Str("component", "outreach").Logger()
	return o
}

// Run executes one run for mode. A non-nil error means the run ended early
// on a fatal condition; the report has still been produced.
func (o *Orchestrator) Run(ctx context.Context, mode models.Mode, mc config.ModeConfig) (Summary, error) {
	start := o.now()
	if o.settings.SkipWeekends && isWeekend(start) {
		o.logger.Info().Str("mode", string(mode)).Str("weekday", start.Weekday().String()).Msg("weekend, skipping run")
		runsCounter.WithLabelValues(string(mode), "skipped").Inc()
		return Summary{Skipped: true}, nil
	}

	stats := models.RunStats{
		RunID:  o.newID(),
		Mode:   mode,
		DryRun: o.settings.DryRun,
	}
	log := o.logger.With().Str("mode", string(mode)).Str("run_id", stats.RunID).Logger()
	log.Info().Bool("dry_run", stats.DryRun).Int("cap", mc.MaxEmailsPerDay).Msg("run started")

	applicant := o.loadContext(log)
	err := o.process(ctx, log, mode, mc, applicant, &stats)
	if err != nil {
		stats.TotalErrors++
		log.Error().Err(err).Msg("run aborted")
	}

	end := o.now()
	stats.Timestamp = end
	stats.Duration = end.Sub(start)
	if o.deps.Reporter != nil {
		o.deps.Reporter.Report(context.WithoutCancel(ctx), stats)
	}

	result := "ok"
	if err != nil {
		result = "failed"
	}
	runsCounter.WithLabelValues(string(mode), result).Inc()
	runDurationHist.WithLabelValues(string(mode)).Observe(stats.Duration.Seconds())

	log.Info().
		Int("scraped", stats.TotalScraped).
		Int("emailed", stats.TotalEmailed).
		Int("filtered", stats.TotalFiltered).
		Int("skipped", stats.TotalSkipped).
		Int("errors", stats.TotalErrors).
		Dur("duration", stats.Duration).
		Msg("run finished")

	return Summary{Stats: stats}, err
}

func (o *Orchestrator) process(ctx context.Context, log zerolog.Logger, mode models.Mode, mc config.ModeConfig, applicant string, stats *models.RunStats) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	result, err := o.deps.Source.Fetch(ctx, mode, mc)
	if err != nil {
		return fmt.Errorf("fetch postings: %w", err)
	}
	stats.TotalScraped = len(result.Postings)
	stats.BoardsQueried = result.BoardsQueried
	o.recordScraped(ctx, log, result.Postings)

	if len(result.Postings) == 0 {
		log.Info().Msg("no postings after filtering")
		return nil
	}

	limit := mc.MaxEmailsPerDay
	sent := 0
	for _, posting := range result.Postings {
		if sent >= limit {
			log.Info().Int("cap", limit).Msg("reached max emails")
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		got, err := o.handle(ctx, log, mode, posting, applicant)
		postingsCounter.WithLabelValues(string(mode), string(got)).Inc()
		if err != nil {
			// The message went out even though the ledger write failed.
			if got == outcomeEmailed {
				stats.TotalEmailed++
			}
			return err
		}

		switch got {
		case outcomeFiltered:
			stats.TotalFiltered++
		case outcomeSkipped:
			stats.TotalSkipped++
		case outcomeError:
			stats.TotalErrors++
		case outcomeEmailed:
			stats.TotalEmailed++
			sent++
			if sent < limit && !o.settings.DryRun && o.settings.Interval > 0 {
				log.Debug().Dur("interval", o.settings.Interval).Msg("pacing")
				if err := o.sleep(ctx, o.settings.Interval); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// handle processes one posting. A returned error is fatal for the run.
func (o *Orchestrator) handle(ctx context.Context, log zerolog.Logger, runMode models.Mode, posting models.Posting, applicant string) (outcome, error) {
	recipients := recipient.Filter(posting.Emails, o.settings.EmailPatterns)
	if len(recipients) == 0 {
		log.Debug().Str("job_url", posting.URL).Msg("no valid recipient")
		return outcomeFiltered, nil
	}

	primary := recipients[0]
	domain := recipient.Domain(primary)

	ok, reason, err := o.deps.Ledger.CanSend(ctx, primary, domain, posting.Company)
	if err != nil {
		return outcomeError, fmt.Errorf("check ledger: %w", err)
	}
	if !ok {
		log.Debug().Str("to", primary).Str("reason", reason).Msg("skipping recipient")
		return outcomeSkipped, nil
	}

	draft := o.deps.Composer.Compose(ctx, compose.Job{
		Title:       posting.Title,
		Company:     posting.Company,
		Description: posting.Description,
	}, applicant)

	entry := ledger.Entry{
		Email:    primary,
		Domain:   domain,
		Company:  posting.Company,
		JobTitle: posting.Title,
		JobURL:   posting.URL,
		Location: posting.Location,
		IsRemote: posting.Remote,
	}
	mode := string(runMode)

	if o.settings.DryRun {
		log.Info().
			Str("to", primary).
			Str("title", posting.Title).
			Str("company", posting.Company).
			Str("draft", string(draft.Mode)).
			Str("subject", draft.Subject).
			Msg("dry run: would send")
		record := o.deps.Ledger.Remember
		if o.settings.DryRunRecordsSent {
			record = o.deps.Ledger.MarkSent
		}
		if err := record(ctx, entry); err != nil {
			return outcomeError, fmt.Errorf("record dry-run send to %s: %w", primary, err)
		}
		emailsCounter.WithLabelValues(mode, "dry_run").Inc()
		return outcomeEmailed, nil
	}

	if err := o.deps.Sender.Send(ctx, primary, draft.Subject, draft.Body, o.settings.ResumePath); err != nil {
		emailsCounter.WithLabelValues(mode, "failed").Inc()
		if errors.Is(err, mailer.ErrAuthFailed) {
			log.Error().Err(err).Str("to", primary).Msg("smtp authentication failed")
		} else {
			log.Error().Err(err).Str("to", primary).Msg("failed to send")
		}
		return outcomeError, nil
	}
	emailsCounter.WithLabelValues(mode, "sent").Inc()

	if err := o.deps.Ledger.MarkSent(ctx, entry); err != nil {
		return outcomeEmailed, fmt.Errorf("record send to %s: %w", primary, err)
	}
	log.Info().
		Str("to", primary).
		Str("title", posting.Title).
		Str("company", posting.Company).
		Str("draft", string(draft.Mode)).
		Msg("email sent")
	return outcomeEmailed, nil
}

// loadContext reads the applicant profile. A missing file yields an empty
// context.
func (o *Orchestrator) loadContext(log zerolog.Logger) string {
	if o.settings.ContextPath == "" {
		return ""
	}
	data, err := os.ReadFile(o.settings.ContextPath)
	if err != nil {
		log.Warn().Err(err).Str("path", o.settings.ContextPath).Msg("applicant context unavailable, using empty context")
		return ""
	}
	return string(data)
}

func (o *Orchestrator) recordScraped(ctx context.Context, log zerolog.Logger, postings []models.Posting) {
	if o.deps.Scraped == nil || len(postings) == 0 {
		return
	}
	now := o.now()
	jobs := make([]models.ScrapedJob, 0, len(postings))
	for _, posting := range postings {
		jobs = append(jobs, models.ScrapedJobFromPosting(posting, now))
	}
	if err := o.deps.Scraped.AddScrapedJobs(ctx, jobs); err != nil {
		log.Warn().Err(err).Msg("failed to record scraped jobs")
	}
}

func isWeekend(t time.Time) bool {
	day := t.Weekday()
	return day == time.Saturday || day == time.Sunday
}
