package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jimezsa/jobmail/internal/models"
	"github.com/joho/godotenv"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"gopkg.in/yaml.v3"
)

const (
	DirName         = "jobmail"
	ConfigFileName  = "config.json"
	ProxiesFileName = "proxies.txt"
)

// Config is loaded once at startup and passed to every component.
type Config struct {
	SMTP              SMTPConfig      `json:"smtp" yaml:"smtp"`
	LLM               LLMConfig       `json:"llm" yaml:"llm"`
	Contact           ContactConfig   `json:"contact" yaml:"contact"`
	Email             EmailConfig     `json:"email" yaml:"email"`
	Storage           StorageConfig   `json:"storage" yaml:"storage"`
	Report            ReportConfig    `json:"report" yaml:"report"`
	Dedup             DedupConfig     `json:"dedup" yaml:"dedup"`
	Filters           FilterConfig    `json:"filters" yaml:"filters"`
	Scheduler         SchedulerConfig `json:"scheduler" yaml:"scheduler"`
	Onsite            ModeConfig      `json:"onsite" yaml:"onsite"`
	Remote            ModeConfig      `json:"remote" yaml:"remote"`
	Proxies           []string        `json:"proxies,omitempty" yaml:"proxies,omitempty"`
	SkipWeekends      bool            `json:"skip_weekends" yaml:"skip_weekends"`
	DryRun            bool            `json:"dry_run" yaml:"dry_run"`
	DryRunRecordsSent bool            `json:"dry_run_records_sent" yaml:"dry_run_records_sent"`
	LogLevel          string          `json:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

type SMTPConfig struct {
	Host     string `json:"host" yaml:"host" validate:"required"`
	Port     int    `json:"port" yaml:"port" validate:"min=1,max=65535"`
	Username string `json:"username" yaml:"username" validate:"omitempty,email"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

type LLMConfig struct {
	Mode    string `json:"mode" yaml:"mode" validate:"oneof=llm fallback"`
	BaseURL string `json:"base_url" yaml:"base_url" validate:"required,url"`
	Model   string `json:"model" yaml:"model" validate:"required"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

type ContactConfig struct {
	Name       string `json:"name" yaml:"name"`
	Email      string `json:"email" yaml:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" yaml:"phone"`
	Portfolio  string `json:"portfolio" yaml:"portfolio"`
	GitHub     string `json:"github" yaml:"github"`
	LinkedIn   string `json:"linkedin" yaml:"linkedin"`
	Codolio    string `json:"codolio" yaml:"codolio"`
	ResumeLink string `json:"resume_link" yaml:"resume_link"`
}

type EmailConfig struct {
	MinWords        int      `json:"min_words" yaml:"min_words" validate:"min=1"`
	MaxWords        int      `json:"max_words" yaml:"max_words" validate:"gtefield=MinWords"`
	IntervalSeconds int      `json:"interval_seconds" yaml:"interval_seconds" validate:"min=0"`
	SenderName      string   `json:"sender_name" yaml:"sender_name"`
	FallbackSubject string   `json:"fallback_subject" yaml:"fallback_subject" validate:"required"`
	FallbackBody    string   `json:"fallback_body" yaml:"fallback_body"`
	ContextPath     string   `json:"context_path" yaml:"context_path"`
	ResumePath      string   `json:"resume_path" yaml:"resume_path"`
	CleanupPatterns []string `json:"cleanup_patterns,omitempty" yaml:"cleanup_patterns,omitempty"`
}

type StorageConfig struct {
	Backend     string `json:"backend" yaml:"backend" validate:"oneof=csv sqlite supabase"`
	Dir         string `json:"dir" yaml:"dir" validate:"required"`
	SQLitePath  string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
	SupabaseURL string `json:"supabase_url,omitempty" yaml:"supabase_url,omitempty" validate:"omitempty,url"`
	SupabaseKey string `json:"supabase_key,omitempty" yaml:"supabase_key,omitempty"`
}

type ReportConfig struct {
	Email          string `json:"email" yaml:"email" validate:"omitempty,email"`
	TelegramToken  string `json:"telegram_token,omitempty" yaml:"telegram_token,omitempty"`
	TelegramChatID int64  `json:"telegram_chat_id,omitempty" yaml:"telegram_chat_id,omitempty"`
}

// DedupConfig controls how often the same domain may be contacted.
type DedupConfig struct {
	CooldownDays int `json:"cooldown_days" yaml:"cooldown_days" validate:"min=1"`
}

type FilterConfig struct {
	RejectTitles  []string `json:"reject_titles" yaml:"reject_titles"`
	EmailPatterns []string `json:"email_patterns" yaml:"email_patterns"`
}

type SchedulerConfig struct {
	OnsiteCron string `json:"onsite_cron" yaml:"onsite_cron" validate:"required"`
	RemoteCron string `json:"remote_cron" yaml:"remote_cron" validate:"required"`
	HealthAddr string `json:"health_addr" yaml:"health_addr" validate:"required"`
	HealthPath string `json:"health_path" yaml:"health_path" validate:"required,startswith=/"`
}

// ModeConfig holds everything that differs between the onsite and remote runs.
type ModeConfig struct {
	SearchTerms     []string `json:"search_terms" yaml:"search_terms" validate:"min=1,dive,required"`
	Locations       []string `json:"locations" yaml:"locations" validate:"min=1,dive,required"`
	Boards          []string `json:"boards" yaml:"boards" validate:"min=1,dive,oneof=indeed linkedin glassdoor google google_jobs ziprecruiter stepstone"`
	JobType         string   `json:"job_type" yaml:"job_type"`
	Country         string   `json:"country" yaml:"country"`
	ResultsWanted   int      `json:"results_wanted" yaml:"results_wanted" validate:"min=1"`
	MaxEmailsPerDay int      `json:"max_emails_per_day" yaml:"max_emails_per_day" validate:"min=0"`
	IsRemote        bool     `json:"is_remote" yaml:"is_remote"`
	HoursOld        int      `json:"hours_old,omitempty" yaml:"hours_old,omitempty" validate:"min=0"`
	EasyApply       bool     `json:"easy_apply,omitempty" yaml:"easy_apply,omitempty"`
}

// ModeConfig returns the settings for mode.
func (c Config) ModeConfig(mode models.Mode) ModeConfig {
	if mode == models.ModeRemote {
		return c.Remote
	}
	return c.Onsite
}

func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	if env := strings.TrimSpace(os.Getenv("JOBMAIL_CONFIG")); env != "" {
		return env, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func ProxiesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProxiesFileName), nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load reads path (or the default location when empty) on top of the
// built-in defaults, then applies JOBMAIL_* environment overrides.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, err
	case len(strings.TrimSpace(string(data))) > 0:
		if err := decode(path, data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	applyListDefaults(&cfg)
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json5.Unmarshal(data, cfg)
	}
}

// Init writes default config.json and proxies.txt if they don't already exist.
func Init() ([]string, error) {
	var created []string

	dir, err := ConfigDir()
	if err != nil {
		return created, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return created, err
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(configPath, DefaultConfig()); err != nil {
			return created, err
		}
		created = append(created, configPath)
	}

	proxiesPath := filepath.Join(dir, ProxiesFileName)
	if _, err := os.Stat(proxiesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(proxiesPath, []byte(""), 0o644); err != nil {
			return created, err
		}
		created = append(created, proxiesPath)
	}

	return created, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// LoadProxies resolves the proxy list from the flag, JOBMAIL_PROXIES, the
// config value, then proxies.txt, in that order.
func LoadProxies(flagValue string, configured []string) ([]string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return splitCSV(flagValue), nil
	}

	if env := strings.TrimSpace(os.Getenv("JOBMAIL_PROXIES")); env != "" {
		return splitCSV(env), nil
	}

	if len(configured) > 0 {
		return configured, nil
	}

	path, err := ProxiesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
