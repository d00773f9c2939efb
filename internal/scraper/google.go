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

const googleBase = "https://www.google.com"

var googleCountries = map[string]string{
	"usa":            "us",
	"united states":  "us",
	"uk":             "gb",
	"united kingdom": "gb",
	"germany":        "de",
	"canada":         "ca",
	"india":          "in",
	"australia":      "au",
}

type GoogleJobs struct {
	client *network.Client
}

func NewGoogleJobs(client *network.Client) *GoogleJobs {
	return &GoogleJobs{client: client}
}

func (g *GoogleJobs) Name() string {
	return SiteGoogleJobs
}

// Search expects the location already folded into the query phrase.
func (g *GoogleJobs) Search(ctx context.Context, params models.SearchParams) ([]models.Posting, error) {
	doc, err := fetchDocument(ctx, g.client, buildGoogleJobsURL(params), nil)
	if err != nil {
		return nil, fmt.Errorf("google: %w", err)
	}

	postings := parseJSONLDPostings(doc, SiteGoogleJobs)
	postings = append(postings, parseGoogleJobsAnchors(doc)...)
	postings = dedupePostings(postings)
	if params.Remote {
		postings = filterRemote(postings)
	}
	postings = limitPostings(postings, params.Limit)
	for i := range postings {
		finalizePosting(&postings[i])
	}
	return postings, nil
}

func buildGoogleJobsURL(params models.SearchParams) string {
	values := url.Values{}
	values.Set("q", params.Query)
	values.Set("ibp", "htl;jobs")
	values.Set("hl", "en")
	if gl := countryToGoogleGL(params.Country); gl != "" {
		values.Set("gl", gl)
	}
	if params.Hours > 0 {
		values.Set("tbs", fmt.Sprintf("qdr:d%d", hoursToDays(params.Hours)))
	}
	return googleBase + "/search?" + values.Encode()
}

func countryToGoogleGL(country string) string {
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		return ""
	}
	if gl, ok := googleCountries[country]; ok {
		return gl
	}
	return country
}

func parseGoogleJobsAnchors(doc *goquery.Document) []models.Posting {
	var postings []models.Posting

	doc.Find("a[href*='htidocid']").Each(func(_ int, s *goquery.Selection) {
		title := cleanText(s.Text())
		link := absoluteURL(googleBase, s.AttrOr("href", ""))
		if title == "" || link == "" {
			return
		}
		postings = append(postings, models.Posting{
			Site:  SiteGoogleJobs,
			Title: title,
			URL:   link,
		})
	})

	return postings
}
