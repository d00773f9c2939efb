package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/rs/zerolog"
)

const (
	DefaultHost = "smtp.gmail.com"
	DefaultPort = 587
	implicitTLS = 465
)

// ErrAuthFailed marks a delivery attempt rejected for bad credentials.
var ErrAuthFailed = errors.New("authentication failed")

// Transport performs one synchronous delivery attempt. Authentication
// rejections wrap ErrAuthFailed; any other error is transient.
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

// SMTPTransport opens one connection per Deliver call.
type SMTPTransport struct {
	Host     string
	Port     int
	Username string
	Password string
	TLS      *tls.Config
	Logger   zerolog.Logger

	dialer func() (*smtp.Client, error)
}

func (t SMTPTransport) addr() string {
	host := t.Host
	if host == "" {
		host = DefaultHost
	}
	port := t.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func (t SMTPTransport) tlsConfig() *tls.Config {
	if t.TLS != nil {
		return t.TLS
	}
	host := t.Host
	if host == "" {
		host = DefaultHost
	}
	return &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host}
}

func (t SMTPTransport) dial() (*smtp.Client, error) {
	if t.dialer != nil {
		return t.dialer()
	}
	if t.Port == implicitTLS {
		return smtp.DialTLS(t.addr(), t.tlsConfig())
	}
	return smtp.DialStartTLS(t.addr(), t.tlsConfig())
}

func (t SMTPTransport) Deliver(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := msg.Bytes()
	if err != nil {
		return err
	}

	client, err := t.dial()
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", t.addr(), err)
	}
	defer client.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = client.Close()
		case <-done:
		}
	}()

	if t.Username != "" {
		if err := client.Auth(sasl.NewPlainClient("", t.Username, t.Password)); err != nil {
			if isAuthError(err) {
				return fmt.Errorf("%w: %v", ErrAuthFailed, err)
			}
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.SendMail(msg.FromAddress, []string{msg.To}, bytes.NewReader(raw)); err != nil {
		if isAuthError(err) {
			return fmt.Errorf("%w: %v", ErrAuthFailed, err)
		}
		return fmt.Errorf("smtp send: %w", err)
	}

	// The server has accepted the message; a failed QUIT must not trigger a resend.
	if err := client.Quit(); err != nil {
		t.Logger.Warn().Err(err).Str("to", msg.To).Msg("smtp quit failed after delivery")
	}
	return nil
}

func isAuthError(err error) bool {
	var smtpErr *smtp.SMTPError
	if errors.As(err, &smtpErr) {
		switch smtpErr.Code {
		case 530, 534, 535:
			return true
		}
	}
	return false
}
