package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/jobmail/internal/models"
	"github.com/jimezsa/jobmail/internal/network"
)

const (
	linkedInSearchURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"
	linkedInDetailAPI = "https://www.linkedin.com/jobs-guest/jobs/api/jobPosting/"
	linkedInPageSize  = 25
)

var (
	linkedInJobID = regexp.MustCompile(`(\d+)/?$`)

	linkedInJobTypes = map[string]string{
		"fulltime":   "F",
		"full-time":  "F",
		"parttime":   "P",
		"part-time":  "P",
		"contract":   "C",
		"internship": "I",
		"temporary":  "T",
	}
)

type LinkedIn struct {
	client *network.Client
}

func NewLinkedIn(client *network.Client) *LinkedIn {
	return &LinkedIn{client: client}
}

func (l *LinkedIn) Name() string {
	return SiteLinkedIn
}

func (l *LinkedIn) Search(ctx context.Context, params models.SearchParams) ([]models.Posting, error) {
	var postings []models.Posting
	seen := map[string]struct{}{}
	start := params.Offset

	for params.Limit <= 0 || len(postings) < params.Limit {
		doc, err := fetchDocument(ctx, l.client, buildLinkedInURL(params, start), nil)
		if err != nil {
			if len(postings) > 0 {
				break
			}
			return nil, fmt.Errorf("linkedin: %w", err)
		}

		page := parseLinkedInJobs(doc)
		added := 0
		for _, posting := range page {
			if params.Remote && !posting.Remote {
				continue
			}
			if _, ok := seen[posting.URL]; ok {
				continue
			}
			seen[posting.URL] = struct{}{}
			posting.JobType = params.JobType
			postings = append(postings, posting)
			added++
		}
		if added == 0 || len(page) < linkedInPageSize || params.Limit <= 0 {
			break
		}
		start += len(page)
	}

	postings = limitPostings(postings, params.Limit)
	fillDescriptions(ctx, l.client, postings, linkedInDetailURL, parseLinkedInDescription, nil)
	return postings, nil
}

func buildLinkedInURL(params models.SearchParams, start int) string {
	values := url.Values{}
	values.Set("keywords", params.Query)
	if params.Location != "" {
		values.Set("location", params.Location)
	}
	if start > 0 {
		values.Set("start", fmt.Sprintf("%d", start))
	}
	if params.Hours > 0 {
		values.Set("f_TPR", fmt.Sprintf("r%d", params.Hours*3600))
	}
	if params.Remote {
		values.Set("f_WT", "2")
	}
	if jt := linkedInJobTypes[strings.ToLower(params.JobType)]; jt != "" {
		values.Set("f_JT", jt)
	}
	return linkedInSearchURL + "?" + values.Encode()
}

func parseLinkedInJobs(doc *goquery.Document) []models.Posting {
	var postings []models.Posting

	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		link := strings.TrimSpace(s.Find("a.base-card__full-link").First().AttrOr("href", ""))
		title := cleanText(s.Find("h3.base-search-card__title").First().Text())
		if link == "" || title == "" {
			return
		}

		company := cleanText(s.Find("h4.base-search-card__subtitle").First().Text())
		location := cleanText(s.Find("span.job-search-card__location").First().Text())
		snippet := cleanText(s.Find(".job-search-card__snippet").First().Text())
		posted := strings.TrimSpace(s.Find("time").First().AttrOr("datetime", ""))

		posting := models.Posting{
			Site:        SiteLinkedIn,
			ID:          linkedInID(link),
			Title:       title,
			Company:     company,
			Location:    location,
			URL:         absoluteURL("https://www.linkedin.com", link),
			Snippet:     snippet,
			PostedAtRaw: posted,
			Remote:      isRemote(location, snippet),
		}
		if ts, err := parsePostedAt(posted); err == nil {
			posting.PostedAt = ts
		}
		postings = append(postings, posting)
	})

	return postings
}

func linkedInID(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	match := linkedInJobID.FindStringSubmatch(u.Path)
	if match == nil {
		return ""
	}
	return match[1]
}

// linkedInDetailURL maps a public job view URL to the guest posting API.
func linkedInDetailURL(link string) string {
	id := linkedInID(link)
	if id == "" {
		return link
	}
	return linkedInDetailAPI + id
}

func parseLinkedInDescription(doc *goquery.Document) string {
	return cleanText(doc.Find(".show-more-less-html__markup").First().Text())
}
