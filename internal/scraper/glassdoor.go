package scraper

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/jobmail/internal/models"
	"github.com/jimezsa/jobmail/internal/network"
)

type Glassdoor struct {
	client *network.Client
}

func NewGlassdoor(client *network.Client) *Glassdoor {
	return &Glassdoor{client: client}
}

func (g *Glassdoor) Name() string {
	return SiteGlassdoor
}

func (g *Glassdoor) Search(ctx context.Context, params models.SearchParams) ([]models.Posting, error) {
	searchURL := buildGlassdoorURL(params)
	doc, err := fetchDocument(ctx, g.client, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("glassdoor: %w", err)
	}

	postings := parseJSONLDPostings(doc, SiteGlassdoor)
	postings = append(postings, parseGlassdoorJobs(doc)...)
	postings = dedupePostings(postings)

	if params.Remote {
		postings = filterRemote(postings)
	}
	postings = limitPostings(postings, params.Limit)
	fillDescriptions(ctx, g.client, postings, nil, parseGlassdoorDescription, nil)
	return postings, nil
}

func buildGlassdoorURL(params models.SearchParams) string {
	values := url.Values{}
	values.Set("sc.keyword", params.Query)
	if params.Location != "" {
		values.Set("locKeyword", params.Location)
	}
	if params.Hours > 0 {
		values.Set("fromAge", fmt.Sprintf("%d", hoursToDays(params.Hours)))
	}
	if params.Remote {
		values.Set("remoteWorkType", "1")
	}
	return fmt.Sprintf("https://www.glassdoor.com/Job/jobs.htm?%s", values.Encode())
}

func parseGlassdoorJobs(doc *goquery.Document) []models.Posting {
	var postings []models.Posting

	doc.Find(".react-job-listing").Each(func(_ int, s *goquery.Selection) {
		title := cleanText(s.Find(".jobLink").First().Text())
		if title == "" {
			title = cleanText(s.Find("[data-test='job-title']").First().Text())
		}

		company := cleanText(s.Find(".jobEmployerName").First().Text())
		if company == "" {
			company = cleanText(s.Find(".jobEmpolyerName").First().Text())
		}
		if company == "" {
			company = cleanText(s.Find("[data-test='job-link']").First().Text())
		}

		location := cleanText(s.Find(".jobLocation").First().Text())
		if location == "" {
			location = cleanText(s.Find("[data-test='emp-location']").First().Text())
		}

		salary := cleanText(s.Find(".salarySnippet").First().Text())
		link := s.Find("a.jobLink").First().AttrOr("href", "")
		link = absoluteURL("https://www.glassdoor.com", link)

		if title == "" || link == "" {
			return
		}

		postings = append(postings, models.Posting{
			Site:     SiteGlassdoor,
			Title:    title,
			Company:  company,
			Location: location,
			URL:      link,
			Salary:   salary,
			Remote:   isRemote(location, ""),
		})
	})

	return postings
}

func parseGlassdoorDescription(doc *goquery.Document) string {
	return cleanText(doc.Find(".jobDescriptionContent, [class*='JobDetails_jobDescription']").First().Text())
}
