package scraper

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/jobmail/internal/models"
	"github.com/jimezsa/jobmail/internal/network"
)

const zipRecruiterBase = "https://www.ziprecruiter.com"

type ZipRecruiter struct {
	client *network.Client
}

func NewZipRecruiter(client *network.Client) *ZipRecruiter {
	return &ZipRecruiter{client: client}
}

func (z *ZipRecruiter) Name() string {
	return SiteZipRecruiter
}

func (z *ZipRecruiter) Search(ctx context.Context, params models.SearchParams) ([]models.Posting, error) {
	var postings []models.Posting
	seen := map[string]struct{}{}

	for page := 1; params.Limit <= 0 || len(postings) < params.Limit; page++ {
		doc, err := fetchDocument(ctx, z.client, buildZipRecruiterURL(params, page), nil)
		if err != nil {
			if len(postings) > 0 {
				break
			}
			return nil, fmt.Errorf("ziprecruiter: %w", err)
		}

		found := parseZipRecruiterJobs(doc)
		found = append(found, parseJSONLDPostings(doc, SiteZipRecruiter)...)
		added := 0
		for _, posting := range dedupePostings(found) {
			if params.Remote && !posting.Remote {
				continue
			}
			if _, ok := seen[posting.URL]; ok {
				continue
			}
			seen[posting.URL] = struct{}{}
			postings = append(postings, posting)
			added++
		}
		if added == 0 || params.Limit <= 0 {
			break
		}
	}

	postings = limitPostings(postings, params.Limit)
	fillDescriptions(ctx, z.client, postings, nil, parseZipRecruiterDescription, nil)
	return postings, nil
}

func buildZipRecruiterURL(params models.SearchParams, page int) string {
	values := url.Values{}
	values.Set("search", params.Query)
	if params.Location != "" {
		values.Set("location", params.Location)
	}
	if params.Hours > 0 {
		values.Set("days", fmt.Sprintf("%d", hoursToDays(params.Hours)))
	}
	if params.Remote {
		values.Set("refine_by_location_type", "only_remote")
	}
	if page > 1 {
		values.Set("page", fmt.Sprintf("%d", page))
	}
	return zipRecruiterBase + "/jobs-search?" + values.Encode()
}

func parseZipRecruiterJobs(doc *goquery.Document) []models.Posting {
	var postings []models.Posting

	doc.Find("article.job_result").Each(func(_ int, s *goquery.Selection) {
		anchor := s.Find("a.job_link").First()
		title := cleanText(anchor.Text())
		link := absoluteURL(zipRecruiterBase, anchor.AttrOr("href", ""))
		if title == "" || link == "" {
			return
		}

		location := cleanText(s.Find(".location").First().Text())
		snippet := cleanText(s.Find(".job_snippet").First().Text())
		postings = append(postings, models.Posting{
			Site:     SiteZipRecruiter,
			Title:    title,
			Company:  cleanText(s.Find("a.t_org_link").First().Text()),
			Location: location,
			URL:      link,
			Snippet:  snippet,
			Remote:   isRemote(location, snippet),
		})
	})

	return postings
}

func parseZipRecruiterDescription(doc *goquery.Document) string {
	return cleanText(doc.Find(".job_description, .jobDescriptionSection").First().Text())
}
