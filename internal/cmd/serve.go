package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jimezsa/jobmail/internal/config"
	"github.com/jimezsa/jobmail/internal/httpapi"
	"github.com/jimezsa/jobmail/internal/models"
	"github.com/jimezsa/jobmail/internal/outreach"
	"github.com/jimezsa/jobmail/internal/runlock"
	"github.com/jimezsa/jobmail/internal/scheduler"
)

type ServeCmd struct {
	Addr   string `help:"Health server listen address (overrides scheduler.health_addr)."`
	DryRun bool   `name:"dry-run" help:"Compose emails without sending them."`
	RunNow string `name:"run-now" help:"Trigger one run for this mode right after startup." enum:",onsite,remote" default:""`
}

func (s *ServeCmd) Run(ctx *Context) error {
	cfg := ctx.Config
	if s.DryRun {
		cfg.DryRun = true
	}
	if s.Addr != "" {
		cfg.Scheduler.HealthAddr = s.Addr
	}
	if err := checkRunnable(ctx, cfg); err != nil {
		return err
	}

	sched, err := scheduler.New(cfg.Scheduler, scheduledRunner(cfg, ctx), scheduler.WithLogger(ctx.Logger))
	if err != nil {
		return err
	}

	runCtx := ctx.context()
	sched.Start(runCtx)
	for _, next := range sched.Next() {
		ctx.Logger.Info().Time("next", next).Msg("next scheduled run")
	}
	if s.RunNow != "" {
		go sched.Trigger(runCtx, models.Mode(s.RunNow))
	}

	router := httpapi.NewRouter(cfg.Scheduler.HealthPath, ctx.Version, sched, ctx.Logger)
	serveErr := httpapi.Serve(runCtx, cfg.Scheduler.HealthAddr, router, ctx.Logger)

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		ctx.Logger.Warn().Err(err).Msg("gave up waiting for the running job")
	}
	return serveErr
}

// scheduledRunner builds a fresh pipeline for every run so the ledger cache
// and store connection never outlive a run.
func scheduledRunner(cfg config.Config, ctx *Context) scheduler.Runner {
	return func(runCtx context.Context, mode models.Mode) (outreach.Summary, error) {
		lock, err := runlock.Acquire(cfg.Storage.Dir)
		if err != nil {
			return outreach.Summary{}, err
		}
		defer lock.Release()

		p, err := buildPipeline(runCtx, cfg, ctx.Logger, pipelineOptions{})
		if err != nil {
			return outreach.Summary{}, fmt.Errorf("build pipeline: %w", err)
		}
		defer p.Close()

		return p.orchestrator.Run(runCtx, mode, cfg.ModeConfig(mode))
	}
}
