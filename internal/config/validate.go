package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jimezsa/jobmail/internal/recipient"
)

var validate = validator.New()

// Validate reports every problem in cfg joined into one error.
func (c Config) Validate() error {
	var problems []error

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				problems = append(problems, fmt.Errorf("%s: failed %q check (value %v)", fieldPath(fe.Namespace()), fe.Tag(), fe.Value()))
			}
		} else {
			problems = append(problems, err)
		}
	}

	return errors.Join(problems...)
}

// Warnings lists settings that are accepted but probably unintended.
func (c Config) Warnings() []string {
	var out []string
	for _, pattern := range c.Filters.EmailPatterns {
		if !recipient.KnownPattern(pattern) {
			out = append(out, fmt.Sprintf("filters.email_patterns: %q has no starts_with: or contains: prefix and is matched as a substring", pattern))
		}
	}
	if c.Storage.Backend == "supabase" && (c.Storage.SupabaseURL == "" || c.Storage.SupabaseKey == "") {
		out = append(out, "storage: supabase backend without url/key falls back to csv")
	}
	if c.LLM.Mode == "llm" && c.LLM.APIKey == "" {
		out = append(out, "llm.api_key is empty; generation will fail and use the fallback template")
	}
	return out
}

// ValidateLive checks what a non-dry run needs on top of Validate.
func (c Config) ValidateLive() error {
	var problems []error
	if strings.TrimSpace(c.SMTP.Username) == "" {
		problems = append(problems, errors.New("smtp.username is required to send email"))
	}
	if strings.TrimSpace(c.SMTP.Password) == "" {
		problems = append(problems, errors.New("smtp.password is not set (config, JOBMAIL_SMTP_PASSWORD or keyring)"))
	}
	return errors.Join(problems...)
}

func fieldPath(namespace string) string {
	namespace = strings.TrimPrefix(namespace, "Config.")
	return strings.ToLower(namespace)
}
