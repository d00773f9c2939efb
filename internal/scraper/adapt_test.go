package scraper

import (
	"testing"

	"github.com/jimezsa/jobmail/internal/models"
)

func TestAdaptParamsIndeed(t *testing.T) {
	cases := []struct {
		name string
		in   models.SearchParams
		want models.SearchParams
	}{
		{
			name: "job type and remote win",
			in:   models.SearchParams{JobType: "fulltime", Remote: true, Hours: 72, EasyApply: true},
			want: models.SearchParams{JobType: "fulltime", Remote: true},
		},
		{
			name: "hours when no job type group",
			in:   models.SearchParams{Hours: 72, EasyApply: true},
			want: models.SearchParams{Hours: 72},
		},
		{
			name: "easy apply alone",
			in:   models.SearchParams{EasyApply: true},
			want: models.SearchParams{EasyApply: true},
		},
	}

	for _, tc := range cases {
		got := AdaptParams(SiteIndeed, tc.in)
		if got != tc.want {
			t.Fatalf("%s: AdaptParams() = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestAdaptParamsLinkedInDropsEasyApply(t *testing.T) {
	in := models.SearchParams{Query: "go", Hours: 24, JobType: "contract", EasyApply: true}
	got := AdaptParams(SiteLinkedIn, in)
	if got.EasyApply {
		t.Fatalf("expected easy apply dropped")
	}
	if got.Hours != 24 || got.JobType != "contract" {
		t.Fatalf("unexpected params: %+v", got)
	}
}

func TestAdaptParamsGoogleFoldsLocation(t *testing.T) {
	got := AdaptParams(SiteGoogleJobs, models.SearchParams{Query: "golang developer", Location: "Austin, TX"})
	if got.Query != "golang developer jobs near Austin, TX" || got.Location != "" {
		t.Fatalf("unexpected params: %+v", got)
	}

	got = AdaptParams(SiteGoogleJobs, models.SearchParams{Query: "golang developer", Location: "Remote"})
	if got.Query != "remote golang developer jobs" {
		t.Fatalf("unexpected remote query: %q", got.Query)
	}
}

func TestAdaptParamsDoesNotMutateInput(t *testing.T) {
	in := models.SearchParams{Query: "sre", Location: "Berlin", EasyApply: true}
	_ = AdaptParams(SiteGoogleJobs, in)
	if in.Query != "sre" || in.Location != "Berlin" || !in.EasyApply {
		t.Fatalf("input mutated: %+v", in)
	}
}
