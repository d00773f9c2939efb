package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jimezsa/jobmail/internal/compose"
	"github.com/jimezsa/jobmail/internal/config"
	"github.com/jimezsa/jobmail/internal/ledger"
	"github.com/jimezsa/jobmail/internal/llm"
	"github.com/jimezsa/jobmail/internal/mailer"
	"github.com/jimezsa/jobmail/internal/network"
	"github.com/jimezsa/jobmail/internal/outreach"
	"github.com/jimezsa/jobmail/internal/report"
	"github.com/jimezsa/jobmail/internal/scraper"
	"github.com/jimezsa/jobmail/internal/storage"
)

const (
	proxyBanDuration = 10 * time.Minute
	// Requests per second allowed against a single board host.
	hostRatePerSecond = 1.0
	hostRateBurst     = 3
)

// pipeline bundles an orchestrator with the store it writes to.
type pipeline struct {
	store        storage.Store
	orchestrator *outreach.Orchestrator
}

func (p *pipeline) Close() error {
	if p == nil || p.store == nil {
		return nil
	}
	return p.store.Close()
}

// pipelineOptions are the per-invocation overrides on top of the config.
type pipelineOptions struct {
	postingsPath string
}

func filtersFromConfig(cfg config.Config) scraper.Filters {
	return scraper.Filters{
		RejectTitles:  cfg.Filters.RejectTitles,
		EmailPatterns: cfg.Filters.EmailPatterns,
	}
}

func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (storage.Store, error) {
	return storage.Open(ctx, storage.Options{
		Backend:     cfg.Storage.Backend,
		Dir:         cfg.Storage.Dir,
		SQLitePath:  cfg.Storage.SQLitePath,
		SupabaseURL: cfg.Storage.SupabaseURL,
		SupabaseKey: cfg.Storage.SupabaseKey,
	}, logger)
}

// newCollector builds the board registry behind a collector. proxyFlag
// overrides the configured proxy list when set.
func newCollector(cfg config.Config, proxyFlag string, logger zerolog.Logger, progress func(done, total int)) (*scraper.Collector, error) {
	proxies, err := config.LoadProxies(proxyFlag, cfg.Proxies)
	if err != nil {
		return nil, err
	}

	var rotator *network.Rotator
	if len(proxies) > 0 {
		rotator, err = network.NewRotator(proxies, proxyBanDuration)
		if err != nil {
			return nil, err
		}
		logger.Debug().Int("proxies", rotator.Len()).Msg("proxy rotation enabled")
	}

	registry, err := scraper.Registry(rotator, network.NewHostLimiter(hostRatePerSecond, hostRateBurst))
	if err != nil {
		return nil, err
	}
	opts := []scraper.CollectorOption{scraper.WithCollectorLogger(logger)}
	if progress != nil {
		opts = append(opts, scraper.WithProgress(progress))
	}
	return scraper.NewCollector(registry, opts...), nil
}

func newComposer(cfg config.Config, logger zerolog.Logger, forceFallback bool) (*compose.Composer, error) {
	settings := compose.Settings{
		Mode:     compose.GeneratorMode(cfg.LLM.Mode),
		Model:    cfg.LLM.Model,
		MinWords: cfg.Email.MinWords,
		MaxWords: cfg.Email.MaxWords,
		Contact: compose.Contact{
			Name:       cfg.Contact.Name,
			Phone:      cfg.Contact.Phone,
			Portfolio:  cfg.Contact.Portfolio,
			GitHub:     cfg.Contact.GitHub,
			Codolio:    cfg.Contact.Codolio,
			LinkedIn:   cfg.Contact.LinkedIn,
			ResumeLink: cfg.Contact.ResumeLink,
		},
		FallbackSubject: cfg.Email.FallbackSubject,
		FallbackBody:    cfg.Email.FallbackBody,
		CleanupPatterns: cfg.Email.CleanupPatterns,
	}
	if forceFallback {
		settings.Mode = compose.ModeFallback
	}

	var gen compose.Generator
	switch {
	case settings.Mode == compose.ModeFallback:
	case strings.TrimSpace(cfg.LLM.APIKey) == "":
		logger.Warn().Msg("llm api key not set, every email uses the fallback template")
	default:
		gen = llm.New(cfg.LLM.BaseURL, cfg.LLM.APIKey, llm.WithSystemPrompt(compose.SystemPrompt))
	}
	return compose.New(settings, gen, logger)
}

func smtpTransport(cfg config.Config, logger zerolog.Logger) mailer.SMTPTransport {
	return mailer.SMTPTransport{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		Logger:   logger.With().Str("component", "smtp").Logger(),
	}
}

func senderIdentity(cfg config.Config) mailer.Sender {
	name := strings.TrimSpace(cfg.Email.SenderName)
	if name == "" {
		name = cfg.Contact.Name
	}
	address := strings.TrimSpace(cfg.SMTP.Username)
	if address == "" {
		address = cfg.Contact.Email
	}
	return mailer.Sender{Name: name, Address: address}
}

func newReporter(cfg config.Config, store storage.Store, transport mailer.Transport, logger zerolog.Logger) *report.Reporter {
	opts := []report.Option{
		report.WithLogger(logger),
		report.WithTransport(transport, senderIdentity(cfg).Address, cfg.Report.Email),
	}
	if cfg.Report.TelegramToken != "" && cfg.Report.TelegramChatID != 0 {
		notifier, err := report.NewTelegramNotifier(cfg.Report.TelegramToken, cfg.Report.TelegramChatID)
		if err != nil {
			logger.Warn().Err(err).Msg("telegram notifier disabled")
		} else {
			opts = append(opts, report.WithNotifier(notifier))
		}
	}
	return report.New(store, opts...)
}

// buildPipeline wires every collaborator of a run from cfg.
func buildPipeline(ctx context.Context, cfg config.Config, logger zerolog.Logger, opts pipelineOptions) (*pipeline, error) {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	filters := filtersFromConfig(cfg)
	var source outreach.Source
	if opts.postingsPath != "" {
		source = outreach.FileSource{Path: opts.postingsPath, Filters: filters}
	} else {
		collector, err := newCollector(cfg, "", logger, nil)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		source = outreach.ScrapeSource{Collector: collector, Filters: filters}
	}

	composer, err := newComposer(cfg, logger, false)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("composer: %w", err)
	}

	transport := smtpTransport(cfg, logger)
	engine := mailer.NewEngine(transport, senderIdentity(cfg), mailer.WithLogger(logger))

	orchestrator := outreach.New(outreach.Deps{
		Source:   source,
		Ledger:   ledger.New(store, ledger.WithCooldownDays(cfg.Dedup.CooldownDays), ledger.WithLogger(logger)),
		Composer: composer,
		Sender:   engine,
		Reporter: newReporter(cfg, store, transport, logger),
		Scraped:  store,
	}, outreach.SettingsFromConfig(cfg), outreach.WithLogger(logger))

	return &pipeline{store: store, orchestrator: orchestrator}, nil
}
