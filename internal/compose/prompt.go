package compose

import (
	_ "embed"
	"strings"
	"text/template"
)

// MaxDescriptionChars bounds the job description embedded in the prompt.
const MaxDescriptionChars = 3000

const noKeywordsHint = "general software role"

// SystemPrompt is sent alongside every generation request.
const SystemPrompt = "You are a professional job applicant writing cold emails. " +
	"Write naturally in first person. No markdown formatting. " +
	"No HTML. No bold/italic. Plain text only."

//go:embed prompt.md
var promptRaw string

var promptTemplate = template.Must(template.New("outreach_email").Parse(promptRaw))

type promptData struct {
	Context     string
	JobTitle    string
	Company     string
	Description string
	Keywords    string
	MinWords    int
	MaxWords    int
}

func buildPrompt(job Job, applicantContext string, minWords, maxWords int) (string, error) {
	description := truncateChars(job.Description, MaxDescriptionChars)
	hint := noKeywordsHint
	if keywords := Keywords(description, MaxKeywords); len(keywords) > 0 {
		hint = strings.Join(keywords, ", ")
	}

	var b strings.Builder
	err := promptTemplate.Execute(&b, promptData{
		Context:     applicantContext,
		JobTitle:    job.Title,
		Company:     job.Company,
		Description: description,
		Keywords:    hint,
		MinWords:    minWords,
		MaxWords:    maxWords,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func truncateChars(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}
