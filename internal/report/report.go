// Package report records run statistics and sends the end-of-run summary.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/jimezsa/jobmail/internal/mailer"
	"github.com/jimezsa/jobmail/internal/models"
	"github.com/rs/zerolog"
)

const senderName = "jobmail"

// Store persists run statistics.
type Store interface {
	AddRunStats(ctx context.Context, stats models.RunStats) error
}

// Notifier pushes a short text summary to a chat channel.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type Option func(*Reporter)

func WithTransport(transport mailer.Transport, fromAddress, recipient string) Option {
	return func(r *Reporter) {
		r.transport = transport
		r.fromAddress = fromAddress
		r.recipient = strings.TrimSpace(recipient)
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(r *Reporter) { r.notifier = notifier }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Reporter) { r.logger = logger.With().Str("component", "reporter").Logger() }
}

// Reporter never returns errors: every failure is logged.
type Reporter struct {
	store       Store
	transport   mailer.Transport
	fromAddress string
	recipient   string
	notifier    Notifier
	logger      zerolog.Logger
}

func New(store Store, opts ...Option) *Reporter {
	r := &Reporter{store: store, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report stores the stats row, then emails and pushes the summary. It
// returns true when the report email was delivered.
func (r *Reporter) Report(ctx context.Context, stats models.RunStats) bool {
	if r.store != nil {
		if err := r.store.AddRunStats(ctx, stats); err != nil {
			r.logger.Error().Err(err).Msg("failed to record run stats")
		} else {
			r.logger.Info().Str("run_id", stats.RunID).Msg("run stats recorded")
		}
	}

	subject := Subject(stats)
	body := Body(stats)

	if r.notifier != nil {
		if err := r.notifier.Notify(ctx, subject+"\n\n"+body); err != nil {
			r.logger.Warn().Err(err).Msg("failed to send telegram report")
		}
	}

	if r.recipient == "" || r.transport == nil {
		r.logger.Warn().Msg("no report recipient configured, skipping report email")
		return false
	}

	msg := mailer.Message{
		FromName:    senderName,
		FromAddress: r.fromAddress,
		To:          r.recipient,
		Subject:     subject,
		Body:        body,
	}
	if err := r.transport.Deliver(ctx, msg); err != nil {
		r.logger.Error().Err(err).Str("to", r.recipient).Msg("failed to send report email")
		return false
	}
	r.logger.Info().Str("to", r.recipient).Msg("report email sent")
	return true
}

// Subject is the report email subject line.
func Subject(stats models.RunStats) string {
	prefix := ""
	if stats.DryRun {
		prefix = "[DRY RUN] "
	}
	return fmt.Sprintf("%sjobmail report: %s - %d emails sent", prefix, strings.ToUpper(string(stats.Mode)), stats.TotalEmailed)
}

// Body renders the plain-text report table.
func Body(stats models.RunStats) string {
	status := "LIVE"
	if stats.DryRun {
		status = "DRY RUN"
	}
	boards := "none"
	if len(stats.BoardsQueried) > 0 {
		boards = strings.Join(stats.BoardsQueried, ", ")
	}
	seconds := stats.Duration.Seconds()

	var b strings.Builder
	b.WriteString("jobmail run report\n")
	b.WriteString(strings.Repeat("=", 40) + "\n\n")
	fmt.Fprintf(&b, "Mode:            %s (%s)\n", strings.ToUpper(string(stats.Mode)), status)
	fmt.Fprintf(&b, "Run ID:          %s\n", stats.RunID)
	fmt.Fprintf(&b, "Timestamp:       %s\n", stats.Timestamp.Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, "Duration:        %.1f minutes (%.0fs)\n", seconds/60, seconds)
	fmt.Fprintf(&b, "Boards queried:  %s\n\n", boards)
	b.WriteString("Pipeline summary\n")
	b.WriteString(strings.Repeat("-", 40) + "\n")
	fmt.Fprintf(&b, "Total scraped:   %d\n", stats.TotalScraped)
	fmt.Fprintf(&b, "Filtered out:    %d\n", stats.TotalFiltered)
	fmt.Fprintf(&b, "Skipped (dedup): %d\n", stats.TotalSkipped)
	fmt.Fprintf(&b, "Emails sent:     %d\n", stats.TotalEmailed)
	fmt.Fprintf(&b, "Errors:          %d\n\n", stats.TotalErrors)
	fmt.Fprintf(&b, "Success rate:    %s\n", SuccessRate(stats.TotalEmailed, stats.TotalEmailed+stats.TotalErrors))
	return b.String()
}

// SuccessRate formats success/total as a percentage, or "N/A" when total is zero.
func SuccessRate(success, total int) string {
	if total == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", float64(success)/float64(total)*100)
}
