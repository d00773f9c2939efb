// Package secrets keeps the SMTP password and LLM API key in the OS keyring.
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zalando/go-keyring"

	"github.com/jimezsa/jobmail/internal/config"
)

// KeyringService groups jobmail entries in the OS keychain.
const KeyringService = "jobmail"

// Kind names a stored secret.
type Kind string

const (
	KindSMTP Kind = "smtp"
	KindLLM  Kind = "llm"
)

var ErrNotFound = errors.New("secret not found")

// ParseKind accepts "smtp" or "llm".
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindSMTP:
		return KindSMTP, nil
	case KindLLM:
		return KindLLM, nil
	}
	return "", fmt.Errorf("unknown secret %q (want smtp or llm)", value)
}

// Account is the keyring account for kind under cfg.
func Account(kind Kind, cfg config.Config) string {
	switch kind {
	case KindSMTP:
		return fmt.Sprintf("jobmail:smtp:%s@%s", cfg.SMTP.Username, cfg.SMTP.Host)
	default:
		return fmt.Sprintf("jobmail:llm:%s", cfg.LLM.BaseURL)
	}
}

func Get(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	value, err := keyring.Get(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && strings.TrimSpace(value) == "") {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	err := keyring.Delete(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Resolve fills an empty SMTP password or LLM API key from the keyring.
// Keyring problems are logged and leave the field empty.
func Resolve(cfg *config.Config, logger zerolog.Logger) {
	if cfg.SMTP.Password == "" && cfg.SMTP.Username != "" {
		if value, err := Get(Account(KindSMTP, *cfg)); err == nil {
			cfg.SMTP.Password = value
		} else if !errors.Is(err, ErrNotFound) {
			logger.Warn().Err(err).Msg("keyring lookup for smtp password failed")
		}
	}
	if cfg.LLM.APIKey == "" {
		if value, err := Get(Account(KindLLM, *cfg)); err == nil {
			cfg.LLM.APIKey = value
		} else if !errors.Is(err, ErrNotFound) {
			logger.Warn().Err(err).Msg("keyring lookup for llm api key failed")
		}
	}
}
