package compose

import (
	"regexp"
	"strings"
)

var subjectLine = regexp.MustCompile(`(?i)^SUBJECT:\s*(.+?)[ \t]*(?:\n\n|\n|$)`)

// parseResponse splits a model response into subject and body. Without a
// SUBJECT: line the first line is used as the subject.
func parseResponse(raw string) (string, string) {
	raw = strings.TrimSpace(raw)

	var subject, body string
	if loc := subjectLine.FindStringSubmatchIndex(raw); loc != nil {
		subject = raw[loc[2]:loc[3]]
		body = raw[loc[1]:]
	} else {
		first, rest, _ := strings.Cut(raw, "\n")
		subject, body = first, rest
	}

	subject = strings.Trim(strings.TrimSpace(subject), `"'`)
	return strings.TrimSpace(subject), strings.TrimSpace(body)
}
