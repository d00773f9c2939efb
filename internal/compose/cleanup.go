package compose

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Step is one text transform of the cleanup pipeline.
type Step func(string) string

// Pipeline applies its steps in order.
type Pipeline []Step

func (p Pipeline) Apply(text string) string {
	for _, step := range p {
		text = step(text)
	}
	return text
}

// DefaultCleanupPatterns strip signature blocks and boilerplate that models
// tend to inject. {contact_name} is replaced by the quoted contact name.
var DefaultCleanupPatterns = []string{
	`Best regards,?\s*{contact_name}\s*\+?\d*\s*`,
	`{contact_name}\s*\+?\d*\s*$`,
	`I'm comfortable taking products from idea.*$`,
}

const contactNamePlaceholder = "{contact_name}"

var (
	htmlTag         = regexp.MustCompile(`<[^>]+>`)
	markdownBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	markdownItalic  = regexp.MustCompile(`\*(.+?)\*`)
	markdownCode    = regexp.MustCompile("`(.+?)`")
	markdownLink    = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	markdownHeading = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// StripMarkup removes HTML tags and markdown syntax, keeping inner text and
// at most one blank line between paragraphs.
func StripMarkup(text string) string {
	text = htmlTag.ReplaceAllString(text, " ")
	text = markdownBold.ReplaceAllString(text, "$1")
	text = markdownItalic.ReplaceAllString(text, "$1")
	text = markdownCode.ReplaceAllString(text, "$1")
	text = markdownLink.ReplaceAllString(text, "$1")
	text = markdownHeading.ReplaceAllString(text, "")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// CollapseWhitespace squeezes runs of spaces and tabs and trims the result.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(horizontalSpace.ReplaceAllString(text, " "))
}

// RemovePatterns deletes every match of the given expressions.
func RemovePatterns(patterns []*regexp.Regexp) Step {
	return func(text string) string {
		for _, pattern := range patterns {
			text = pattern.ReplaceAllString(text, "")
		}
		return text
	}
}

// TruncateWords returns a step that keeps at most max words.
func TruncateWords(max int) Step {
	return func(text string) string {
		return truncateWords(text, max)
	}
}

// CompileCleanupPatterns builds case-insensitive multiline expressions,
// substituting the contact name. Patterns that reference the name are
// dropped when no name is configured.
func CompileCleanupPatterns(patterns []string, contactName string) ([]*regexp.Regexp, error) {
	contactName = strings.TrimSpace(contactName)
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		if strings.Contains(pattern, contactNamePlaceholder) {
			if contactName == "" {
				continue
			}
			pattern = strings.ReplaceAll(pattern, contactNamePlaceholder, regexp.QuoteMeta(contactName))
		}
		compiled, err := regexp.Compile("(?im)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("cleanup pattern %q: %w", pattern, err)
		}
		out = append(out, compiled)
	}
	return out, nil
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// truncateWords cuts text after the max-th word, keeping the original
// spacing before it. Text already within the limit is returned unchanged.
func truncateWords(text string, max int) string {
	if max < 1 {
		return ""
	}
	if WordCount(text) <= max {
		return text
	}

	words := 0
	inWord := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			if inWord {
				words++
				inWord = false
				if words == max {
					return text[:i]
				}
			}
			continue
		}
		inWord = true
	}
	return text
}
