package outreach

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimezsa/jobmail/internal/config"
	"github.com/jimezsa/jobmail/internal/models"
	"github.com/jimezsa/jobmail/internal/scraper"
	"github.com/jimezsa/jobmail/internal/seen"
)

func TestPlanFor(t *testing.T) {
	mc := config.ModeConfig{
		SearchTerms:   []string{"golang"},
		Locations:     []string{"Remote"},
		Boards:        []string{"indeed"},
		JobType:       "fulltime",
		Country:       "usa",
		ResultsWanted: 50,
		IsRemote:      true,
		HoursOld:      72,
	}
	plan := PlanFor(mc, scraper.Filters{RejectTitles: []string{"nurse"}})

	assert.Equal(t, []string{"golang"}, plan.Terms)
	assert.Equal(t, []string{"Remote"}, plan.Locations)
	assert.Equal(t, models.SearchParams{Country: "usa", Limit: 50, Remote: true, JobType: "fulltime", Hours: 72}, plan.Params)
	assert.Equal(t, []string{"nurse"}, plan.Filters.RejectTitles)
}

func TestFileSourceFiltersSavedPostings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postings.json")
	require.NoError(t, seen.WritePostings(path, []models.Posting{
		{Site: "linkedin", Title: "Go Dev", Company: "A", URL: "https://a/1", Emails: "jobs@a.com"},
		{Site: "indeed", Title: "Nurse", Company: "B", URL: "https://b/1", Emails: "hr@b.com"},
		{Site: "linkedin", Title: "SRE", Company: "C", URL: "https://c/1"},
	}))

	source := FileSource{Path: path, Filters: scraper.Filters{RejectTitles: []string{"nurse"}}}
	result, err := source.Fetch(context.Background(), models.ModeOnsite, config.ModeConfig{})
	require.NoError(t, err)

	require.Len(t, result.Postings, 1)
	assert.Equal(t, "Go Dev", result.Postings[0].Title)
	assert.Equal(t, []string{"linkedin", "indeed"}, result.BoardsQueried)
	assert.Equal(t, scraper.Counts{Raw: 3, AfterEmail: 2, AfterTitle: 1, Final: 1}, result.Counts)
}

func TestFileSourceMissingFile(t *testing.T) {
	source := FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}
	_, err := source.Fetch(context.Background(), models.ModeOnsite, config.ModeConfig{})
	require.Error(t, err)
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DryRun = true
	settings := SettingsFromConfig(cfg)

	assert.True(t, settings.DryRun)
	assert.False(t, settings.DryRunRecordsSent)
	assert.Equal(t, "contexts/profile.md", settings.ContextPath)
	assert.Equal(t, 30, int(settings.Interval.Seconds()))
	assert.Equal(t, config.DefaultEmailPatterns, settings.EmailPatterns)
}
