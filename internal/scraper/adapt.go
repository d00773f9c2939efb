package scraper

import (
	"strings"

	"github.com/jimezsa/jobmail/internal/models"
)

// AdaptParams trims params to what site accepts in a single request.
//
// Indeed takes one filter group per request. Job type plus remote wins over
// recency, and recency wins over easy apply. LinkedIn ignores easy apply.
// Google Jobs has no location field, so the location is folded into the
// query phrase.
func AdaptParams(site string, params models.SearchParams) models.SearchParams {
	adapted := params

	switch site {
	case SiteIndeed:
		switch {
		case adapted.JobType != "" || adapted.Remote:
			adapted.Hours = 0
			adapted.EasyApply = false
		case adapted.Hours > 0:
			adapted.EasyApply = false
		}
	case SiteLinkedIn:
		adapted.EasyApply = false
	case SiteGoogleJobs:
		adapted.Query = googleQuery(adapted.Query, adapted.Location)
		adapted.Location = ""
		adapted.EasyApply = false
	default:
		adapted.EasyApply = false
	}

	return adapted
}

func googleQuery(term, location string) string {
	term = strings.TrimSpace(term)
	location = strings.TrimSpace(location)
	switch {
	case location == "":
		return term + " jobs"
	case strings.EqualFold(location, "remote"):
		return "remote " + term + " jobs"
	default:
		return term + " jobs near " + location
	}
}
