package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jimezsa/jobmail/internal/compose"
)

type PreviewCmd struct {
	Title           string `help:"Job title." required:""`
	Company         string `help:"Company name." required:""`
	DescriptionFile string `name:"description-file" help:"File holding the job description." type:"existingfile"`
	Fallback        bool   `help:"Skip the model and render the fallback template."`
}

func (p *PreviewCmd) Run(ctx *Context) error {
	var description string
	if p.DescriptionFile != "" {
		data, err := os.ReadFile(p.DescriptionFile)
		if err != nil {
			return fmt.Errorf("read --description-file: %w", err)
		}
		description = string(data)
	}

	composer, err := newComposer(ctx.Config, ctx.Logger, p.Fallback)
	if err != nil {
		return err
	}

	applicant := readApplicantContext(ctx, ctx.Config.Email.ContextPath)
	draft := composer.Compose(ctx.context(), compose.Job{
		Title:       p.Title,
		Company:     p.Company,
		Description: description,
	}, applicant)

	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(draft)
	}

	fmt.Fprintf(ctx.Out, "%s %s\n", ctx.UI.Bold("Subject:"), draft.Subject)
	fmt.Fprintf(ctx.Out, "%s\n\n", strings.Repeat("-", 40))
	fmt.Fprintln(ctx.Out, draft.Body)
	fmt.Fprintf(ctx.Err, "\n(%s, %d words)\n", draft.Mode, draft.WordCount)
	return nil
}

// readApplicantContext returns the applicant context file, or "" when it is
// unset or unreadable.
func readApplicantContext(ctx *Context, path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			ctx.Logger.Warn().Err(err).Str("path", path).Msg("cannot read applicant context")
		}
		return ""
	}
	return string(data)
}
