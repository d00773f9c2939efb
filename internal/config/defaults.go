package config

// DefaultRejectTitles are matched case-insensitively as substrings of job titles.
var DefaultRejectTitles = []string{
	"teacher", "professor", "instructor", "tutor", "nurse", "nursing",
	"medical assistant", "healthcare", "cashier", "retail associate",
	"sales associate", "customer service", "call center", "receptionist",
	"driver", "delivery driver", "truck driver", "security guard", "cleaning",
	"janitor", "marketing coordinator", "social media manager", "hr manager",
	"hr coordinator", "recruiter", "talent acquisition", "accountant", "auditor",
	"lawyer", "paralegal", "chef", "cook", "restaurant", "warehouse",
	"electrician", "plumber", "mechanic",
}

// DefaultEmailPatterns drop addresses that never reach a hiring person.
var DefaultEmailPatterns = []string{
	"starts_with:accommodation@",
	"contains:accessibility",
	"contains:accommodation",
	"contains:no-reply",
	"contains:noreply",
	"contains:do-not-reply",
}

const defaultFallbackBody = `Hi,\n\nI came across your opening and would love to be considered. ` +
	`I build reliable backend services and enjoy shipping product end to end.\n\n` +
	`My resume is attached and my work is at {contact_portfolio}. ` +
	`I would welcome a short conversation about how I could help your team.\n\n` +
	`Thanks,\n{contact_name}\n{contact_phone}`

func DefaultConfig() Config {
	return Config{
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		LLM: LLMConfig{
			Mode:    "llm",
			BaseURL: "https://openrouter.ai/api/v1",
			Model:   "qwen/qwen3-next-80b-a3b-instruct:free",
		},
		Email: EmailConfig{
			MinWords:        120,
			MaxWords:        300,
			IntervalSeconds: 30,
			FallbackSubject: "Software Engineer - Exploring Opportunities",
			FallbackBody:    defaultFallbackBody,
			ContextPath:     "contexts/profile.md",
			ResumePath:      "resume.pdf",
		},
		Storage: StorageConfig{
			Backend: "csv",
			Dir:     "data",
		},
		Dedup: DedupConfig{
			CooldownDays: 5,
		},
		Filters: FilterConfig{
			RejectTitles:  append([]string(nil), DefaultRejectTitles...),
			EmailPatterns: append([]string(nil), DefaultEmailPatterns...),
		},
		Scheduler: SchedulerConfig{
			OnsiteCron: "30 2 * * *",
			RemoteCron: "0 13 * * *",
			HealthAddr: ":10000",
			HealthPath: "/health",
		},
		Onsite: ModeConfig{
			SearchTerms:     []string{"software engineer"},
			Locations:       []string{"India"},
			Boards:          []string{"indeed", "linkedin"},
			JobType:         "fulltime",
			Country:         "india",
			ResultsWanted:   100,
			MaxEmailsPerDay: 100,
		},
		Remote: ModeConfig{
			SearchTerms:     []string{"software engineer"},
			Locations:       []string{"Remote"},
			Boards:          []string{"indeed", "linkedin"},
			JobType:         "fulltime",
			Country:         "usa",
			ResultsWanted:   100,
			MaxEmailsPerDay: 80,
			IsRemote:        true,
		},
		SkipWeekends: true,
		LogLevel:     "info",
	}
}

func applyListDefaults(cfg *Config) {
	if len(cfg.Filters.RejectTitles) == 0 {
		cfg.Filters.RejectTitles = append([]string(nil), DefaultRejectTitles...)
	}
	if len(cfg.Filters.EmailPatterns) == 0 {
		cfg.Filters.EmailPatterns = append([]string(nil), DefaultEmailPatterns...)
	}
}
