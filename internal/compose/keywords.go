package compose

import (
	"regexp"
	"sort"
	"strings"
)

const (
	MaxKeywords      = 15
	minKeywordLength = 3
	maxKeywordLength = 30
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

var stopWords = toSet(
	"the", "a", "an", "is", "are", "was", "were", "to", "of", "in", "for", "and", "or",
	"with", "on", "at", "by", "this", "that", "you", "your", "we", "our", "team", "role",
	"job", "work", "looking", "seeking", "experience", "years", "plus", "must", "required",
	"qualification", "skill", "skills", "will", "can", "should", "would", "could", "may",
	"about", "from", "into", "through", "during", "before", "after", "above", "below",
	"between", "under", "again", "further", "then", "once", "here", "there", "when",
	"where", "why", "how", "all", "each", "other", "some", "such", "no", "nor", "not",
	"only", "own", "same", "so", "than", "too", "very", "just", "am",
)

// Keywords returns up to topN lowercase alphanumeric tokens from text ranked
// by frequency. Ties keep first-seen order. Stop words, tokens shorter than
// three characters and tokens longer than thirty are ignored.
func Keywords(text string, topN int) []string {
	if topN <= 0 {
		return nil
	}

	counts := map[string]int{}
	var order []string
	for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if len(token) < minKeywordLength || len(token) > maxKeywordLength {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topN {
		order = order[:topN]
	}
	return order
}

func toSet(values ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		out[value] = struct{}{}
	}
	return out
}
