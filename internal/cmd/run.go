package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jimezsa/jobmail/internal/config"
	"github.com/jimezsa/jobmail/internal/models"
	"github.com/jimezsa/jobmail/internal/outreach"
	"github.com/jimezsa/jobmail/internal/runlock"
)

type RunCmd struct {
	Mode          string `arg:"" enum:"onsite,remote" help:"Run mode: onsite or remote."`
	DryRun        bool   `name:"dry-run" help:"Compose emails without sending them."`
	Postings      string `help:"Replay postings from a JSON file instead of scraping." type:"existingfile"`
	RecordDryRun  bool   `name:"record-dry-run" help:"Record dry-run sends in the outreach history."`
	IgnoreWeekend bool   `name:"ignore-weekend" help:"Run even on Saturday and Sunday."`
}

// apply folds the command flags into a copy of cfg.
func (r *RunCmd) apply(cfg config.Config) config.Config {
	if r.DryRun {
		cfg.DryRun = true
	}
	if r.RecordDryRun {
		cfg.DryRunRecordsSent = true
	}
	if r.IgnoreWeekend {
		cfg.SkipWeekends = false
	}
	return cfg
}

func (r *RunCmd) Run(ctx *Context) error {
	mode, err := models.ParseMode(r.Mode)
	if err != nil {
		return err
	}
	cfg := r.apply(ctx.Config)
	if err := checkRunnable(ctx, cfg); err != nil {
		return err
	}

	lock, err := runlock.Acquire(cfg.Storage.Dir)
	if err != nil {
		return err
	}
	defer lock.Release()

	p, err := buildPipeline(ctx.context(), cfg, ctx.Logger, pipelineOptions{postingsPath: r.Postings})
	if err != nil {
		return err
	}
	defer p.Close()

	summary, runErr := p.orchestrator.Run(ctx.context(), mode, cfg.ModeConfig(mode))

	if err := printSummary(ctx, summary); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("%s run failed: %w", mode, runErr)
	}
	return nil
}

// checkRunnable validates cfg for a run and surfaces warnings.
func checkRunnable(ctx *Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !cfg.DryRun {
		if err := cfg.ValidateLive(); err != nil {
			return fmt.Errorf("cannot send: %w", err)
		}
	}
	for _, warning := range cfg.Warnings() {
		ctx.Logger.Warn().Msg(warning)
	}
	return nil
}

func printSummary(ctx *Context, summary outreach.Summary) error {
	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	if summary.Skipped {
		ctx.UI.Infof("Weekend, run skipped.")
		return nil
	}

	stats := summary.Stats
	prefix := ""
	if stats.DryRun {
		prefix = "[dry run] "
	}
	line := fmt.Sprintf("%s%s run %s: scraped=%d filtered=%d emailed=%d skipped=%d errors=%d boards=%s duration=%s",
		prefix,
		stats.Mode,
		stats.RunID,
		stats.TotalScraped,
		stats.TotalFiltered,
		stats.TotalEmailed,
		stats.TotalSkipped,
		stats.TotalErrors,
		strings.Join(stats.BoardsQueried, ","),
		stats.Duration.Round(time.Second),
	)
	if stats.TotalErrors > 0 {
		ctx.UI.Warnf("%s", line)
		return nil
	}
	ctx.UI.Successf("%s", line)
	return nil
}
