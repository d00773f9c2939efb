package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/jobmail/internal/models"
	"github.com/jimezsa/jobmail/internal/network"
)

const snippetLength = 240

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)*\.[a-zA-Z]{2,}`)

func fetchDocument(ctx context.Context, client *network.Client, target string, headers map[string]string) (*goquery.Document, error) {
	body, err := client.Get(ctx, target, withDefaultHeaders(headers))
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

func withDefaultHeaders(headers map[string]string) map[string]string {
	out := map[string]string{
		"accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"accept-language": "en-US,en;q=0.9",
	}
	for key, value := range headers {
		out[key] = value
	}
	return out
}

func cleanText(value string) string {
	value = html.UnescapeString(value)
	return strings.Join(strings.Fields(value), " ")
}

// htmlText renders an HTML fragment, as found in JSON-LD descriptions, to
// whitespace-collapsed plain text.
func htmlText(fragment string) string {
	fragment = html.UnescapeString(fragment)
	if !strings.ContainsAny(fragment, "<>") {
		return cleanText(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return cleanText(fragment)
	}
	doc.Find("br, p, li, div").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return cleanText(doc.Text())
}

// ExtractEmails returns the distinct lowercased addresses found in texts,
// joined by ",", in first-seen order.
func ExtractEmails(texts ...string) string {
	var out []string
	seen := map[string]struct{}{}
	for _, text := range texts {
		for _, match := range emailPattern.FindAllString(text, -1) {
			email := strings.ToLower(match)
			if _, ok := seen[email]; ok {
				continue
			}
			seen[email] = struct{}{}
			out = append(out, email)
		}
	}
	return strings.Join(out, ",")
}

// mailtoAddresses collects addresses from mailto links in doc.
func mailtoAddresses(doc *goquery.Document) string {
	var parts []string
	doc.Find("a[href^='mailto:']").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimPrefix(s.AttrOr("href", ""), "mailto:")
		if at := strings.IndexByte(href, '?'); at >= 0 {
			href = href[:at]
		}
		if decoded, err := url.PathUnescape(href); err == nil {
			href = decoded
		}
		parts = append(parts, href)
	})
	return strings.Join(parts, " ")
}

// descriptionFromJSONLD returns the plain-text description of the first
// JobPosting embedded in doc.
func descriptionFromJSONLD(doc *goquery.Document) string {
	var description string
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		data, err := decodeJSONLD(s.Text())
		if err != nil {
			return true
		}
		for _, posting := range extractPostingsFromJSONLD(data, "") {
			if posting.Description != "" {
				description = posting.Description
				return false
			}
		}
		return true
	})
	return description
}

// finalizePosting fills the derived fields every board shares.
func finalizePosting(posting *models.Posting) {
	if posting.Snippet == "" && posting.Description != "" {
		posting.Snippet = truncate(posting.Description, snippetLength)
	}
	if posting.Emails == "" {
		posting.Emails = ExtractEmails(posting.Description, posting.Snippet)
	}
	if !posting.Remote {
		posting.Remote = isRemote(posting.Location, posting.Snippet)
	}
}

// detailParser pulls the description out of a detail page.
type detailParser func(doc *goquery.Document) string

// fillDescriptions fetches the detail page of every posting that has no
// description yet. A failed fetch keeps the card data.
func fillDescriptions(ctx context.Context, client *network.Client, postings []models.Posting, detailURL func(string) string, parse detailParser, headers map[string]string) {
	for i := range postings {
		if ctx.Err() != nil {
			return
		}
		if postings[i].Description != "" || postings[i].URL == "" {
			finalizePosting(&postings[i])
			continue
		}
		target := postings[i].URL
		if detailURL != nil {
			target = detailURL(target)
		}
		doc, err := fetchDocument(ctx, client, target, headers)
		if err == nil {
			postings[i].Description = parse(doc)
			if postings[i].Description == "" {
				postings[i].Description = descriptionFromJSONLD(doc)
			}
			postings[i].Emails = ExtractEmails(postings[i].Emails, postings[i].Description, mailtoAddresses(doc))
		}
		finalizePosting(&postings[i])
	}
}

func absoluteURL(base string, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

func parsePostedAt(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02",
		"2006-01-02T15:04:05-0700",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %s", value)
}

func parseJSONLDPostings(doc *goquery.Document, site string) []models.Posting {
	var postings []models.Posting
	seen := map[string]struct{}{}

	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		data, err := decodeJSONLD(raw)
		if err != nil {
			return
		}

		for _, posting := range extractPostingsFromJSONLD(data, site) {
			key := postingKey(posting)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			postings = append(postings, posting)
		}
	})

	return postings
}

func decodeJSONLD(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "<!--")
	raw = strings.TrimSuffix(raw, "-->")
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, "\u2028", "")
	raw = strings.ReplaceAll(raw, "\u2029", "")

	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return data, nil
}

func extractPostingsFromJSONLD(data any, site string) []models.Posting {
	var postings []models.Posting

	switch value := data.(type) {
	case []any:
		for _, item := range value {
			postings = append(postings, extractPostingsFromJSONLD(item, site)...)
		}
	case map[string]any:
		if typ := strings.ToLower(stringValue(value["@type"], value["type"])); typ != "" {
			switch typ {
			case "jobposting":
				postings = append(postings, postingFromJobPosting(value, site))
				return postings
			case "itemlist":
				postings = append(postings, postingsFromItemList(value, site)...)
			}
		}
		if graph, ok := value["@graph"]; ok {
			postings = append(postings, extractPostingsFromJSONLD(graph, site)...)
		}
		if main, ok := value["mainEntity"]; ok {
			postings = append(postings, extractPostingsFromJSONLD(main, site)...)
		}
	}

	return postings
}

func postingsFromItemList(value map[string]any, site string) []models.Posting {
	items, ok := value["itemListElement"]
	if !ok {
		return nil
	}

	var postings []models.Posting
	switch list := items.(type) {
	case []any:
		for _, item := range list {
			postings = append(postings, extractPostingsFromJSONLD(item, site)...)
		}
	case map[string]any:
		postings = append(postings, extractPostingsFromJSONLD(list, site)...)
	}
	return postings
}

func postingFromJobPosting(value map[string]any, site string) models.Posting {
	posting := models.Posting{Site: site}
	posting.Title = stringValue(value["title"], value["name"])
	posting.Company = stringValue(mapValue(value["hiringOrganization"], "name"))
	posting.URL = stringValue(value["url"], value["@id"])
	posting.JobType = stringValue(value["employmentType"])
	posting.Salary = salaryFromJSONLD(value["baseSalary"])
	posting.PostedAtRaw = stringValue(value["datePosted"])
	if posting.PostedAtRaw != "" {
		if ts, err := parsePostedAt(posting.PostedAtRaw); err == nil {
			posting.PostedAt = ts
		}
	}
	posting.Location = locationFromJSONLD(value["jobLocation"])
	posting.Description = htmlText(stringValue(value["description"]))
	posting.Snippet = truncate(posting.Description, snippetLength)
	posting.Remote = strings.Contains(strings.ToLower(posting.Location), "remote") ||
		strings.EqualFold(stringValue(value["jobLocationType"]), "TELECOMMUTE")
	posting.Emails = ExtractEmails(posting.Description, stringValue(value["email"], mapValue(value["applicationContact"], "email")))
	return posting
}

func salaryFromJSONLD(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case map[string]any:
		if amount := mapValue(v["value"], "value"); amount != nil {
			return stringValue(amount)
		}
		if amount := mapValue(v["value"], "minValue"); amount != nil {
			max := mapValue(v["value"], "maxValue")
			currency := stringValue(v["currency"])
			minStr := stringValue(amount)
			maxStr := stringValue(max)
			if maxStr != "" {
				return strings.TrimSpace(minStr + " - " + maxStr + " " + currency)
			}
			return strings.TrimSpace(minStr + " " + currency)
		}
	case string:
		return v
	}
	return ""
}

func locationFromJSONLD(value any) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case []any:
		var parts []string
		for _, item := range v {
			loc := locationFromJSONLD(item)
			if loc != "" {
				parts = append(parts, loc)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		address := v["address"]
		if addressMap, ok := address.(map[string]any); ok {
			return joinAddress(addressMap)
		}
		return joinAddress(v)
	case string:
		return v
	}

	return ""
}

func joinAddress(value map[string]any) string {
	parts := []string{
		stringValue(value["streetAddress"]),
		stringValue(value["addressLocality"]),
		stringValue(value["addressRegion"]),
		stringValue(value["postalCode"]),
		stringValue(value["addressCountry"]),
	}
	var cleaned []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cleaned = append(cleaned, part)
	}
	return strings.Join(cleaned, ", ")
}

func stringValue(values ...any) string {
	for _, value := range values {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		case float64:
			return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
		case int:
			return fmt.Sprintf("%d", v)
		case int64:
			return fmt.Sprintf("%d", v)
		case json.Number:
			return v.String()
		case fmt.Stringer:
			if v.String() != "" {
				return strings.TrimSpace(v.String())
			}
		case map[string]any:
			if name := stringValue(v["name"]); name != "" {
				return name
			}
		}
	}
	return ""
}

func mapValue(value any, key string) any {
	if value == nil {
		return nil
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}

func truncate(value string, max int) string {
	if max <= 0 {
		return value
	}
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	return strings.TrimSpace(value[:max]) + "..."
}

func filterRemote(postings []models.Posting) []models.Posting {
	filtered := postings[:0]
	for _, posting := range postings {
		if posting.Remote {
			filtered = append(filtered, posting)
		}
	}
	return filtered
}

// postingKey is the per-page identity used while a board is still paging.
func postingKey(posting models.Posting) string {
	if posting.URL != "" {
		return posting.URL
	}
	key := strings.ToLower(posting.Title + "|" + posting.Company + "|" + posting.Location)
	if key == "||" {
		return ""
	}
	return key
}

func dedupePostings(postings []models.Posting) []models.Posting {
	seen := map[string]struct{}{}
	out := make([]models.Posting, 0, len(postings))
	for _, posting := range postings {
		key := postingKey(posting)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, posting)
	}
	return out
}

func limitPostings(postings []models.Posting, limit int) []models.Posting {
	if limit > 0 && len(postings) > limit {
		return postings[:limit]
	}
	return postings
}

func hoursToDays(hours int) int {
	days := (hours + 23) / 24
	if days < 1 {
		days = 1
	}
	return days
}

func isRemote(location string, snippet string) bool {
	value := strings.ToLower(location + " " + snippet)
	return strings.Contains(value, "remote")
}
