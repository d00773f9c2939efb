package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/jobmail/internal/models"
	"github.com/jimezsa/jobmail/internal/network"
)

const indeedPageSize = 10

// indeedJobTypes maps the configured job type to Indeed's jt values.
var indeedJobTypes = map[string]string{
	"fulltime":   "fulltime",
	"full-time":  "fulltime",
	"parttime":   "parttime",
	"part-time":  "parttime",
	"contract":   "contract",
	"internship": "internship",
	"temporary":  "temporary",
}

type Indeed struct {
	client *network.Client
}

func NewIndeed(client *network.Client) *Indeed {
	return &Indeed{client: client}
}

func (i *Indeed) Name() string {
	return SiteIndeed
}

func (i *Indeed) Search(ctx context.Context, params models.SearchParams) ([]models.Posting, error) {
	var postings []models.Posting
	seen := map[string]struct{}{}
	offset := params.Offset

	for params.Limit <= 0 || len(postings) < params.Limit {
		page := params
		page.Offset = offset
		doc, err := fetchDocument(ctx, i.client, buildIndeedURL(page), nil)
		if err != nil {
			if len(postings) > 0 {
				break
			}
			return nil, fmt.Errorf("indeed: %w", err)
		}

		added := 0
		for _, posting := range parseIndeedJobs(doc, params.Country) {
			if params.Remote && !posting.Remote {
				continue
			}
			if _, ok := seen[posting.URL]; ok {
				continue
			}
			seen[posting.URL] = struct{}{}
			if posting.JobType == "" {
				posting.JobType = params.JobType
			}
			postings = append(postings, posting)
			added++
		}
		if added == 0 || params.Limit <= 0 {
			break
		}
		offset += indeedPageSize
	}

	postings = limitPostings(postings, params.Limit)
	fillDescriptions(ctx, i.client, postings, nil, parseIndeedDescription, nil)
	return postings, nil
}

func parseIndeedJobs(doc *goquery.Document, country string) []models.Posting {
	var postings []models.Posting
	doc.Find("a.tapItem").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find("h2.jobTitle span").First().Text())
		company := strings.TrimSpace(s.Find("span.companyName").First().Text())
		location := strings.TrimSpace(s.Find("div.companyLocation").First().Text())
		snippet := strings.TrimSpace(s.Find("div.job-snippet").Text())
		posted := strings.TrimSpace(s.Find("span.date").Text())

		link, _ := s.Attr("href")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = baseIndeedURL(country) + link
		}
		if title == "" || link == "" {
			return
		}

		postings = append(postings, models.Posting{
			Site:        SiteIndeed,
			Title:       title,
			Company:     company,
			Location:    location,
			URL:         link,
			Snippet:     normalizeSnippet(snippet),
			PostedAtRaw: posted,
			Remote:      isRemote(location, snippet),
		})
	})
	return postings
}

func parseIndeedDescription(doc *goquery.Document) string {
	return cleanText(doc.Find("#jobDescriptionText").First().Text())
}

func buildIndeedURL(params models.SearchParams) string {
	base := baseIndeedURL(params.Country)
	values := url.Values{}
	values.Set("q", params.Query)
	if params.Location != "" {
		values.Set("l", params.Location)
	}
	if params.Offset > 0 {
		values.Set("start", fmt.Sprintf("%d", params.Offset))
	}
	if jt := indeedJobTypes[strings.ToLower(params.JobType)]; jt != "" {
		values.Set("jt", jt)
	}
	if params.Remote {
		values.Set("sc", "0kf:attr(DSQF7);")
	}
	if params.Hours > 0 {
		values.Set("fromage", fmt.Sprintf("%d", hoursToDays(params.Hours)))
	}
	if params.EasyApply {
		values.Set("iafilter", "1")
	}
	return fmt.Sprintf("%s/jobs?%s", base, values.Encode())
}

func baseIndeedURL(country string) string {
	country = strings.TrimSpace(strings.ToLower(country))
	switch country {
	case "", "usa", "us", "united states":
		return "https://www.indeed.com"
	case "uk", "united kingdom":
		return "https://uk.indeed.com"
	}
	return fmt.Sprintf("https://%s.indeed.com", country)
}

func normalizeSnippet(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
