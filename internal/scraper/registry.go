package scraper

import (
	"fmt"
	"strings"

	"github.com/jimezsa/jobmail/internal/network"
)

const (
	SiteLinkedIn     = "linkedin"
	SiteIndeed       = "indeed"
	SiteGlassdoor    = "glassdoor"
	SiteZipRecruiter = "ziprecruiter"
	SiteGoogleJobs   = "google"
	SiteStepstone    = "stepstone"
)

// Sites lists every supported board name.
func Sites() []string {
	return []string{SiteIndeed, SiteLinkedIn, SiteGlassdoor, SiteGoogleJobs, SiteZipRecruiter, SiteStepstone}
}

// Registry builds one scraper per board, each with its own client so cookie
// jars stay separate. limiter may be nil.
func Registry(rotator *network.Rotator, limiter *network.HostLimiter) (map[string]Scraper, error) {
	constructors := map[string]func(*network.Client) Scraper{
		SiteLinkedIn:     func(c *network.Client) Scraper { return NewLinkedIn(c) },
		SiteIndeed:       func(c *network.Client) Scraper { return NewIndeed(c) },
		SiteGlassdoor:    func(c *network.Client) Scraper { return NewGlassdoor(c) },
		SiteZipRecruiter: func(c *network.Client) Scraper { return NewZipRecruiter(c) },
		SiteGoogleJobs:   func(c *network.Client) Scraper { return NewGoogleJobs(c) },
		SiteStepstone:    func(c *network.Client) Scraper { return NewStepstone(c) },
	}

	registry := make(map[string]Scraper, len(constructors))
	for site, build := range constructors {
		client, err := network.NewClient(rotator, network.WithLimiter(limiter))
		if err != nil {
			return nil, fmt.Errorf("%s client: %w", site, err)
		}
		registry[site] = build(client)
	}
	return registry, nil
}

// Lookup returns the scraper registered for site.
func Lookup(registry map[string]Scraper, site string) (Scraper, error) {
	s, ok := registry[site]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBoard, site)
	}
	return s, nil
}

func NormalizeSites(sites []string) []string {
	out := make([]string, 0, len(sites))
	for _, site := range sites {
		site = strings.ToLower(strings.TrimSpace(site))
		if site == "" {
			continue
		}
		site = strings.TrimPrefix(site, "www.")
		if site == "google_jobs" || site == "googlejobs" {
			site = SiteGoogleJobs
		}
		out = append(out, site)
	}
	return out
}
