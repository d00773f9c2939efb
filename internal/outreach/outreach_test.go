package outreach

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimezsa/jobmail/internal/compose"
	"github.com/jimezsa/jobmail/internal/config"
	"github.com/jimezsa/jobmail/internal/ledger"
	"github.com/jimezsa/jobmail/internal/mailer"
	"github.com/jimezsa/jobmail/internal/models"
	"github.com/jimezsa/jobmail/internal/scraper"
)

// Monday.
var monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeSource struct {
	result scraper.Result
	err    error
}

func (f fakeSource) Fetch(context.Context, models.Mode, config.ModeConfig) (scraper.Result, error) {
	return f.result, f.err
}

type memoryStore struct {
	mu      sync.Mutex
	records []models.SentRecord
	addErr  error
	scraped []models.ScrapedJob
}

func (m *memoryStore) SentEmails(context.Context) ([]models.SentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SentRecord(nil), m.records...), nil
}

func (m *memoryStore) AddSentEmail(_ context.Context, record models.SentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *memoryStore) AddScrapedJobs(_ context.Context, jobs []models.ScrapedJob) error {
	m.scraped = append(m.scraped, jobs...)
	return nil
}

type fakeComposer struct {
	calls []compose.Job
	panic bool
}

func (f *fakeComposer) Compose(_ context.Context, job compose.Job, applicant string) models.EmailDraft {
	if f.panic {
		panic("composer exploded")
	}
	f.calls = append(f.calls, job)
	return models.EmailDraft{
		Subject: "Application: " + job.Title,
		Body:    "Hello " + job.Company + "\n" + applicant,
		Mode:    models.DraftFallback,
	}
}

type sentMail struct {
	to, subject, body, attachment string
}

type fakeSender struct {
	sent []sentMail
	fail map[string]error
}

func (f *fakeSender) Send(_ context.Context, to, subject, body, attachment string) error {
	if err := f.fail[to]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body, attachment: attachment})
	return nil
}

type fakeReporter struct {
	reports []models.RunStats
	ctxErr  error
}

func (f *fakeReporter) Report(ctx context.Context, stats models.RunStats) bool {
	f.ctxErr = ctx.Err()
	f.reports = append(f.reports, stats)
	return true
}

type harness struct {
	store    *memoryStore
	composer *fakeComposer
	sender   *fakeSender
	reporter *fakeReporter
	sleeps   []time.Duration
	now      time.Time
}

func newHarness() *harness {
	return &harness{
		store:    &memoryStore{},
		composer: &fakeComposer{},
		sender:   &fakeSender{fail: map[string]error{}},
		reporter: &fakeReporter{},
		now:      monday,
	}
}

func (h *harness) orchestrator(source Source, settings Settings) *Orchestrator {
	clock := func() time.Time { return h.now }
	l := ledger.New(h.store, ledger.WithClock(clock))
	return New(Deps{
		Source:   source,
		Ledger:   l,
		Composer: h.composer,
		Sender:   h.sender,
		Reporter: h.reporter,
		Scraped:  h.store,
	}, settings,
		WithClock(clock),
		WithRunID(func() string { return "run-1" }),
		WithSleep(func(_ context.Context, d time.Duration) error {
			h.sleeps = append(h.sleeps, d)
			return nil
		}),
	)
}

func posting(n int, email string) models.Posting {
	return models.Posting{
		Site:        "indeed",
		Title:       fmt.Sprintf("Engineer %d", n),
		Company:     fmt.Sprintf("Company %d", n),
		URL:         fmt.Sprintf("https://example.com/jobs/%d", n),
		Location:    "Austin, TX",
		Description: "Build Go services",
		Emails:      email,
	}
}

func modeConfig(limit int) config.ModeConfig {
	return config.ModeConfig{MaxEmailsPerDay: limit}
}

func TestRunNoPostingsStillReports(t *testing.T) {
	h := newHarness()
	o := h.orchestrator(fakeSource{result: scraper.Result{BoardsQueried: []string{"indeed"}}}, Settings{})

	summary, err := o.Run(context.Background(), models.ModeOnsite, modeConfig(10))
	require.NoError(t, err)
	require.Len(t, h.reporter.reports, 1)

	stats := h.reporter.reports[0]
	assert.Equal(t, "run-1", stats.RunID)
	assert.Equal(t, models.ModeOnsite, stats.Mode)
	assert.Zero(t, stats.TotalScraped)
	assert.Zero(t, stats.TotalEmailed)
	assert.Zero(t, stats.TotalErrors)
	assert.Equal(t, []string{"indeed"}, stats.BoardsQueried)
	assert.Equal(t, stats, summary.Stats)
	assert.Empty(t, h.sender.sent)
}

func TestRunSendsUntilCap(t *testing.T) {
	h := newHarness()
	source := fakeSource{result: scraper.Result{Postings: []models.Posting{
		posting(1, "jobs@one.com"),
		posting(2, "jobs@two.com"),
		posting(3, "jobs@three.com"),
	}}}
	o := h.orchestrator(source, Settings{Interval: 30 * time.Second, ResumePath: "resume.pdf"})

	summary, err := o.Run(context.Background(), models.ModeRemote, modeConfig(2))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Stats.TotalScraped)
	assert.Equal(t, 2, summary.Stats.TotalEmailed)
	require.Len(t, h.sender.sent, 2)
	assert.Equal(t, "jobs@one.com", h.sender.sent[0].to)
	assert.Equal(t, "resume.pdf", h.sender.sent[0].attachment)
	assert.Equal(t, "Application: Engineer 1", h.sender.sent[0].subject)
	assert.Equal(t, []time.Duration{30 * time.Second}, h.sleeps, "no pause after the last allowed send")
	assert.Len(t, h.store.records, 2)
	assert.Len(t, h.store.scraped, 3)
}

func TestRunZeroCapSendsNothing(t *testing.T) {
	h := newHarness()
	o := h.orchestrator(fakeSource{result: scraper.Result{Postings: []models.Posting{posting(1, "jobs@one.com")}}}, Settings{})

	summary, err := o.Run(context.Background(), models.ModeOnsite, modeConfig(0))
	require.NoError(t, err)
	assert.Zero(t, summary.Stats.TotalEmailed)
	assert.Empty(t, h.composer.calls)
}

func TestRunSameDomainSeesEarlierSend(t *testing.T) {
	h := newHarness()
	first := posting(1, "alice@acme.com")
	second := posting(2, "bob@acme.com")
	o := h.orchestrator(fakeSource{result: scraper.Result{Postings: []models.Posting{first, second}}}, Settings{})

	summary, err := o.Run(context.Background(), models.ModeOnsite, modeConfig(10))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Stats.TotalEmailed)
	assert.Equal(t, 1, summary.Stats.TotalSkipped)
	assert.Len(t, h.composer.calls, 1, "skipped postings are never composed")
}

func TestRunFiltersPostingsWithoutRecipient(t *testing.T) {
	h := newHarness()
	source := fakeSource{result: scraper.Result{Postings: []models.Posting{
		posting(1, "noreply@one.com, broken"),
		posting(2, "Hiring@Two.com"),
	}}}
	o := h.orchestrator(source, Settings{EmailPatterns: []string{"contains:noreply"}})

	summary, err := o.Run(context.Background(), models.ModeOnsite, modeConfig(10))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Stats.TotalFiltered)
	assert.Equal(t, 1, summary.Stats.TotalEmailed)
	require.Len(t, h.sender.sent, 1)
	assert.Equal(t, "hiring@two.com", h.sender.sent[0].to)
	assert.Equal(t, "two.com", h.store.records[0].Domain)
}

func TestRunSendFailureDoesNotCountAgainstCap(t *testing.T) {
	h := newHarness()
	h.sender.fail["jobs@one.com"] = fmt.Errorf("dial: %w", mailer.ErrAttemptsExhausted)
	h.sender.fail["jobs@two.com"] = mailer.ErrAuthFailed
	source := fakeSource{result: scraper.Result{Postings: []models.Posting{
		posting(1, "jobs@one.com"),
		posting(2, "jobs@two.com"),
		posting(3, "jobs@three.com"),
	}}}
	o := h.orchestrator(source, Settings{})

	summary, err := o.Run(context.Background(), models.ModeOnsite, modeConfig(1))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Stats.TotalErrors)
	assert.Equal(t, 1, summary.Stats.TotalEmailed)
	require.Len(t, h.store.records, 1)
	assert.Equal(t, "jobs@three.com", h.store.records[0].Email)
}

func TestRunDryRunRemembersWithoutPersisting(t *testing.T) {
	h := newHarness()
	source := fakeSource{result: scraper.Result{Postings: []models.Posting{
		posting(1, "alice@acme.com"),
		posting(2, "bob@acme.com"),
		posting(3, "jobs@other.com"),
	}}}
	o := h.orchestrator(source, Settings{DryRun: true, Interval: time.Minute})

	summary, err := o.Run(context.Background(), models.ModeOnsite, modeConfig(10))
	require.NoError(t, err)

	assert.True(t, summary.Stats.DryRun)
	assert.Equal(t, 2, summary.Stats.TotalEmailed)
	assert.Equal(t, 1, summary.Stats.TotalSkipped, "same-run cooldown still applies")
	assert.Empty(t, h.sender.sent)
	assert.Empty(t, h.store.records)
	assert.Empty(t, h.sleeps, "dry runs are not paced")
}

func TestRunDryRunRecordsSentWhenConfigured(t *testing.T) {
	h := newHarness()
	source := fakeSource{result: scraper.Result{Postings: []models.Posting{posting(1, "alice@acme.com")}}}
	o := h.orchestrator(source, Settings{DryRun: true, DryRunRecordsSent: true})

	summary, err := o.Run(context.Background(), models.ModeOnsite, modeConfig(10))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Stats.TotalEmailed)
	assert.Empty(t, h.sender.sent)
	require.Len(t, h.store.records, 1)
	assert.Equal(t, "alice@acme.com", h.store.records[0].Email)
}

func TestRunSourceFailureIsFatal(t *testing.T) {
	h := newHarness()
	o := h.orchestrator(fakeSource{err: scraper.ErrUnknownBoard}, Settings{})

	summary, err := o.Run(context.Background(), models.ModeOnsite, modeConfig(10))
	require.ErrorIs(t, err, scraper.ErrUnknownBoard)

	require.Len(t, h.reporter.reports, 1)
	assert.Equal(t, 1, h.reporter.reports[0].TotalErrors)
	assert.Equal(t, 1, summary.Stats.TotalErrors)
}

func TestRunLedgerWriteFailureIsFatal(t *testing.T) {
	h := newHarness()
	h.store.addErr = errors.New("disk full")
	source := fakeSource{result: scraper.Result{Postings: []models.Posting{
		posting(1, "jobs@one.com"),
		posting(2, "jobs@two.com"),
	}}}
	o := h.orchestrator(source, Settings{})

	summary, err := o.Run(context.Background(), models.ModeOnsite, modeConfig(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Len(t, h.sender.sent, 1, "run stops after the first unrecorded send")
	assert.Equal(t, 1, summary.Stats.TotalErrors)
	assert.Equal(t, 1, summary.Stats.TotalEmailed, "the delivered message is still counted")
	require.Len(t, h.reporter.reports, 1)
	assert.Equal(t, 1, h.reporter.reports[0].TotalEmailed)
}

func TestRunRecoversFromPanic(t *testing.T) {
	h := newHarness()
	h.composer.panic = true
	o := h.orchestrator(fakeSource{result: scraper.Result{Postings: []models.Posting{posting(1, "jobs@one.com")}}}, Settings{})

	_, err := o.Run(context.Background(), models.ModeOnsite, modeConfig(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "composer exploded")
	require.Len(t, h.reporter.reports, 1)
	assert.Equal(t, 1, h.reporter.reports[0].TotalErrors)
}

func TestRunCancelledStillReports(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := h.orchestrator(fakeSource{result: scraper.Result{Postings: []models.Posting{posting(1, "jobs@one.com")}}}, Settings{})

	_, err := o.Run(ctx, models.ModeOnsite, modeConfig(10))
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, h.reporter.reports, 1)
	assert.NoError(t, h.reporter.ctxErr, "report runs on a context detached from cancellation")
}

func TestRunSkipsWeekend(t *testing.T) {
	h := newHarness()
	h.now = time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC) // Saturday
	o := h.orchestrator(fakeSource{result: scraper.Result{Postings: []models.Posting{posting(1, "jobs@one.com")}}}, Settings{SkipWeekends: true})

	summary, err := o.Run(context.Background(), models.ModeOnsite, modeConfig(10))
	require.NoError(t, err)
	assert.True(t, summary.Skipped)
	assert.Empty(t, h.reporter.reports)
	assert.Empty(t, h.sender.sent)
}

func TestRunLoadsApplicantContext(t *testing.T) {
	h := newHarness()
	path := filepath.Join(t.TempDir(), "profile.md")
	require.NoError(t, os.WriteFile(path, []byte("Go engineer, 6 years."), 0o644))

	o := h.orchestrator(fakeSource{result: scraper.Result{Postings: []models.Posting{posting(1, "jobs@one.com")}}}, Settings{ContextPath: path})
	_, err := o.Run(context.Background(), models.ModeOnsite, modeConfig(10))
	require.NoError(t, err)

	require.Len(t, h.sender.sent, 1)
	assert.Contains(t, h.sender.sent[0].body, "Go engineer, 6 years.")
}

func TestRunMissingContextIsNotFatal(t *testing.T) {
	h := newHarness()
	o := h.orchestrator(fakeSource{result: scraper.Result{Postings: []models.Posting{posting(1, "jobs@one.com")}}}, Settings{ContextPath: filepath.Join(t.TempDir(), "missing.md")})

	summary, err := o.Run(context.Background(), models.ModeOnsite, modeConfig(10))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Stats.TotalEmailed)
}
