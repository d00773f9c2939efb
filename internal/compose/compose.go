// Package compose turns a job posting into an outreach email, preferring a
// language model and falling back to a configured template.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jimezsa/jobmail/internal/models"
	"github.com/rs/zerolog"
)

// GeneratorMode selects how drafts are produced.
type GeneratorMode string

const (
	ModeLLM      GeneratorMode = "llm"
	ModeFallback GeneratorMode = "fallback"
)

// Generator is the generative-text capability. It returns raw model output.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Contact is the applicant information used in templates and footers.
type Contact struct {
	Name       string
	Phone      string
	Portfolio  string
	GitHub     string
	Codolio    string
	LinkedIn   string
	ResumeLink string
}

// Settings configures a Composer.
type Settings struct {
	Mode            GeneratorMode
	Model           string
	MinWords        int
	MaxWords        int
	Contact         Contact
	FallbackSubject string
	FallbackBody    string
	CleanupPatterns []string
}

// Job is the part of a posting the composer reads.
type Job struct {
	Title       string
	Company     string
	Description string
}

const (
	footerTemplate = "\n\n{contact_name}\n{contact_phone}\nPortfolio: {contact_portfolio}\nGitHub: {contact_github}"
	footerResume   = "\n\nResume: {resume_drive_link}\n{contact_name}\n{contact_phone}\nPortfolio: {contact_portfolio}\nGitHub: {contact_github}"
)

var (
	errEmptyResponse     = errors.New("model returned empty response")
	errMalformedResponse = errors.New("model response has no subject or body")
)

type Composer struct {
	settings Settings
	gen      Generator
	replacer *strings.Replacer
	footer   string
	cleanup  Pipeline
	logger   zerolog.Logger
}

// New builds a Composer. gen may be nil, in which case every draft uses the
// fallback template.
func New(settings Settings, gen Generator, logger zerolog.Logger) (*Composer, error) {
	patterns := settings.CleanupPatterns
	if patterns == nil {
		patterns = DefaultCleanupPatterns
	}
	removals, err := CompileCleanupPatterns(patterns, settings.Contact.Name)
	if err != nil {
		return nil, err
	}

	replacer := contactReplacer(settings.Contact)
	footer := footerTemplate
	if strings.TrimSpace(settings.Contact.ResumeLink) != "" {
		footer = footerResume
	}
	footer = replacer.Replace(footer)

	budget := settings.MaxWords - WordCount(footer)
	return &Composer{
		settings: settings,
		gen:      gen,
		replacer: replacer,
		footer:   footer,
		cleanup: Pipeline{
			StripMarkup,
			RemovePatterns(removals),
			CollapseWhitespace,
			TruncateWords(budget),
		},
		logger: logger.With().Str("component", "composer").Logger(),
	}, nil
}

// Compose produces a draft for job. Any generation problem is logged and
// answered with the fallback template; Compose itself never fails.
func (c *Composer) Compose(ctx context.Context, job Job, applicantContext string) models.EmailDraft {
	if c.settings.Mode == ModeFallback || c.gen == nil {
		return c.fallback()
	}

	draft, err := c.generate(ctx, job, applicantContext)
	if err != nil {
		c.logger.Warn().Err(err).Str("company", job.Company).Msg("generation failed, using fallback")
		return c.fallback()
	}
	c.logger.Info().Int("words", draft.WordCount).Str("subject", clip(draft.Subject, 50)).Msg("generated email")
	return draft
}

func (c *Composer) generate(ctx context.Context, job Job, applicantContext string) (models.EmailDraft, error) {
	prompt, err := buildPrompt(job, applicantContext, c.settings.MinWords, c.settings.MaxWords)
	if err != nil {
		return models.EmailDraft{}, fmt.Errorf("build prompt: %w", err)
	}

	raw, err := c.gen.Generate(ctx, c.settings.Model, prompt)
	if err != nil {
		return models.EmailDraft{}, err
	}
	if strings.TrimSpace(raw) == "" {
		return models.EmailDraft{}, errEmptyResponse
	}

	subject, body := parseResponse(raw)
	body = c.cleanup.Apply(body)
	if subject == "" || body == "" {
		return models.EmailDraft{}, errMalformedResponse
	}

	body += c.footer
	return models.EmailDraft{
		Subject:   subject,
		Body:      body,
		Mode:      models.DraftGenerated,
		WordCount: WordCount(body),
	}, nil
}

func (c *Composer) fallback() models.EmailDraft {
	subject := c.replacer.Replace(c.settings.FallbackSubject)
	body := strings.ReplaceAll(c.settings.FallbackBody, `\n`, "\n")
	body = c.replacer.Replace(body)
	body = truncateWords(body, c.settings.MaxWords)

	draft := models.EmailDraft{
		Subject:   strings.TrimSpace(subject),
		Body:      body,
		Mode:      models.DraftFallback,
		WordCount: WordCount(body),
	}
	c.logger.Info().Int("words", draft.WordCount).Str("subject", clip(draft.Subject, 50)).Msg("fallback email")
	return draft
}

func contactReplacer(contact Contact) *strings.Replacer {
	return strings.NewReplacer(
		"{contact_name}", contact.Name,
		"{contact_phone}", contact.Phone,
		"{contact_portfolio}", contact.Portfolio,
		"{contact_github}", contact.GitHub,
		"{contact_codolio}", contact.Codolio,
		"{contact_linkedin}", contact.LinkedIn,
		"{resume_drive_link}", contact.ResumeLink,
	)
}

func clip(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}
