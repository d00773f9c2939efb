package config

import (
	"os"
	"strconv"
	"strings"
)

func applyEnv(cfg *Config) {
	cfg.SMTP.Host = envString("JOBMAIL_SMTP_HOST", cfg.SMTP.Host)
	cfg.SMTP.Port = envInt("JOBMAIL_SMTP_PORT", cfg.SMTP.Port)
	cfg.SMTP.Username = envString("JOBMAIL_SMTP_USERNAME", cfg.SMTP.Username)
	cfg.SMTP.Password = envString("JOBMAIL_SMTP_PASSWORD", cfg.SMTP.Password)

	cfg.LLM.Mode = envString("JOBMAIL_EMAIL_GENERATOR_MODE", cfg.LLM.Mode)
	cfg.LLM.BaseURL = envString("JOBMAIL_LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Model = envString("JOBMAIL_LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.APIKey = envString("JOBMAIL_LLM_API_KEY", cfg.LLM.APIKey)

	cfg.Contact.Name = envString("JOBMAIL_CONTACT_NAME", cfg.Contact.Name)
	cfg.Contact.Email = envString("JOBMAIL_CONTACT_EMAIL", cfg.Contact.Email)
	cfg.Contact.Phone = envString("JOBMAIL_CONTACT_PHONE", cfg.Contact.Phone)
	cfg.Contact.Portfolio = envString("JOBMAIL_CONTACT_PORTFOLIO", cfg.Contact.Portfolio)
	cfg.Contact.GitHub = envString("JOBMAIL_CONTACT_GITHUB", cfg.Contact.GitHub)
	cfg.Contact.LinkedIn = envString("JOBMAIL_CONTACT_LINKEDIN", cfg.Contact.LinkedIn)
	cfg.Contact.Codolio = envString("JOBMAIL_CONTACT_CODOLIO", cfg.Contact.Codolio)
	cfg.Contact.ResumeLink = envString("JOBMAIL_RESUME_DRIVE_LINK", cfg.Contact.ResumeLink)

	cfg.Email.MinWords = envInt("JOBMAIL_MIN_EMAIL_WORDS", cfg.Email.MinWords)
	cfg.Email.MaxWords = envInt("JOBMAIL_MAX_EMAIL_WORDS", cfg.Email.MaxWords)
	cfg.Email.IntervalSeconds = envInt("JOBMAIL_EMAIL_INTERVAL_SECONDS", cfg.Email.IntervalSeconds)
	cfg.Email.SenderName = envString("JOBMAIL_APPLICATION_SENDER_NAME", cfg.Email.SenderName)
	cfg.Email.FallbackSubject = envString("JOBMAIL_FALLBACK_EMAIL_SUBJECT", cfg.Email.FallbackSubject)
	cfg.Email.FallbackBody = envString("JOBMAIL_FALLBACK_EMAIL_BODY", cfg.Email.FallbackBody)
	cfg.Email.ContextPath = envString("JOBMAIL_CONTEXT_FILE_PATH", cfg.Email.ContextPath)
	cfg.Email.ResumePath = envString("JOBMAIL_RESUME_FILE_PATH", cfg.Email.ResumePath)

	cfg.Storage.Backend = envString("JOBMAIL_STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Dir = envString("JOBMAIL_DATA_DIR", cfg.Storage.Dir)
	cfg.Storage.SQLitePath = envString("JOBMAIL_SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.SupabaseURL = envString("JOBMAIL_SUPABASE_URL", cfg.Storage.SupabaseURL)
	cfg.Storage.SupabaseKey = envString("JOBMAIL_SUPABASE_KEY", cfg.Storage.SupabaseKey)

	cfg.Report.Email = envString("JOBMAIL_REPORT_EMAIL", cfg.Report.Email)
	cfg.Report.TelegramToken = envString("JOBMAIL_TELEGRAM_TOKEN", cfg.Report.TelegramToken)
	cfg.Report.TelegramChatID = envInt64("JOBMAIL_TELEGRAM_CHAT_ID", cfg.Report.TelegramChatID)

	cfg.Dedup.CooldownDays = envInt("JOBMAIL_DEDUP_COOLDOWN_DAYS", cfg.Dedup.CooldownDays)

	cfg.Filters.RejectTitles = envList("JOBMAIL_REJECT_TITLES", cfg.Filters.RejectTitles)
	cfg.Filters.EmailPatterns = envList("JOBMAIL_EMAIL_FILTER_PATTERNS", cfg.Filters.EmailPatterns)

	cfg.Scheduler.OnsiteCron = envString("JOBMAIL_SCHEDULER_ONSITE_CRON", cfg.Scheduler.OnsiteCron)
	cfg.Scheduler.RemoteCron = envString("JOBMAIL_SCHEDULER_REMOTE_CRON", cfg.Scheduler.RemoteCron)
	cfg.Scheduler.HealthAddr = envString("JOBMAIL_HEALTH_ADDR", cfg.Scheduler.HealthAddr)
	cfg.Scheduler.HealthPath = envString("JOBMAIL_HEALTH_PATH", cfg.Scheduler.HealthPath)

	applyModeEnv("JOBMAIL_ONSITE_", &cfg.Onsite)
	applyModeEnv("JOBMAIL_REMOTE_", &cfg.Remote)
	if location := envString("JOBMAIL_REMOTE_LOCATION", ""); location != "" {
		cfg.Remote.Locations = []string{location}
	}

	cfg.SkipWeekends = envBool("JOBMAIL_SKIP_WEEKENDS", cfg.SkipWeekends)
	cfg.DryRun = envBool("JOBMAIL_DRY_RUN", cfg.DryRun)
	cfg.DryRunRecordsSent = envBool("JOBMAIL_DRY_RUN_RECORDS_SENT", cfg.DryRunRecordsSent)
	cfg.LogLevel = strings.ToLower(envString("JOBMAIL_LOG_LEVEL", cfg.LogLevel))
}

func applyModeEnv(prefix string, mode *ModeConfig) {
	mode.SearchTerms = envList(prefix+"SEARCH_TERMS", mode.SearchTerms)
	mode.Locations = envList(prefix+"LOCATIONS", mode.Locations)
	mode.Boards = envList(prefix+"JOB_BOARDS", mode.Boards)
	mode.JobType = envString(prefix+"JOB_TYPE", mode.JobType)
	mode.Country = envString(prefix+"COUNTRY", mode.Country)
	mode.ResultsWanted = envInt(prefix+"RESULTS_WANTED", mode.ResultsWanted)
	mode.MaxEmailsPerDay = envInt(prefix+"MAX_EMAILS_PER_DAY", mode.MaxEmailsPerDay)
	mode.IsRemote = envBool(prefix+"IS_REMOTE", mode.IsRemote)
	mode.HoursOld = envInt(prefix+"HOURS_OLD", mode.HoursOld)
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt64(key string, fallback int64) int64 {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envList(key string, fallback []string) []string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return splitCSV(val)
	}
	return fallback
}
