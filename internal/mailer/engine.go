// Package mailer builds outreach messages and delivers them over SMTP with a
// bounded retry policy.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 5 * time.Second
)

// ErrAttemptsExhausted is returned after every attempt failed transiently.
var ErrAttemptsExhausted = errors.New("delivery attempts exhausted")

// Sender identifies the From address of outgoing mail.
type Sender struct {
	Name    string
	Address string
}

type Option func(*Engine)

func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(e *Engine) { e.retryDelay = d }
}

// WithSleep replaces the wait between attempts.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(e *Engine) { e.sleep = sleep }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger.With().Str("component", "mailer").Logger() }
}

// Engine delivers messages through a Transport:
// auth failures stop at once, other failures retry after a fixed delay.
type Engine struct {
	transport   Transport
	sender      Sender
	maxAttempts int
	retryDelay  time.Duration
	sleep       func(context.Context, time.Duration) error
	readFile    func(string) ([]byte, error)
	logger      zerolog.Logger
}

func NewEngine(transport Transport, sender Sender, opts ...Option) *Engine {
	e := &Engine{
		transport:   transport,
		sender:      sender,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		sleep:       Sleep,
		readFile:    os.ReadFile,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Send delivers one email with an optional resume attachment. A missing
// attachment file is logged and the email is sent without it.
func (e *Engine) Send(ctx context.Context, to, subject, body, attachmentPath string) error {
	msg := Message{
		FromName:    e.sender.Name,
		FromAddress: e.sender.Address,
		To:          to,
		Subject:     subject,
		Body:        body,
	}
	if attachmentPath != "" {
		data, err := e.readFile(attachmentPath)
		if err != nil {
			e.logger.Warn().Err(err).Str("path", attachmentPath).Msg("resume attachment not found, sending without it")
		} else {
			msg.Attachments = append(msg.Attachments, PDFAttachment(attachmentPath, data))
		}
	}
	return e.Deliver(ctx, msg)
}

// Deliver runs the retry loop for a prepared message.
func (e *Engine) Deliver(ctx context.Context, msg Message) error {
	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		err := e.transport.Deliver(ctx, msg)
		if err == nil {
			e.logger.Info().Str("to", msg.To).Int("attempt", attempt).Msg("email sent")
			return nil
		}
		if errors.Is(err, ErrAuthFailed) {
			e.logger.Error().Err(err).Str("to", msg.To).Msg("smtp authentication failed")
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		lastErr = err
		e.logger.Warn().Err(err).Str("to", msg.To).Int("attempt", attempt).Int("max_attempts", e.maxAttempts).Msg("send attempt failed")
		if attempt < e.maxAttempts {
			if err := e.sleep(ctx, e.retryDelay); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("failed to send to %s after %d attempts: %w: %v", msg.To, e.maxAttempts, ErrAttemptsExhausted, lastErr)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
