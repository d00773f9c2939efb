package scraper

import "testing"

func TestParseZipRecruiterJobs(t *testing.T) {
	html := `
<article class="job_result">
  <a class="job_link" href="/c/example/job/123">Platform Engineer</a>
  <a class="t_org_link">Zip Co</a>
  <div class="location">Remote</div>
  <div class="job_snippet">Build systems</div>
</article>`

	doc := mustDoc(t, html)
	postings := parseZipRecruiterJobs(doc)
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	if postings[0].Title != "Platform Engineer" {
		t.Fatalf("unexpected title: %q", postings[0].Title)
	}
	if postings[0].URL != "https://www.ziprecruiter.com/c/example/job/123" {
		t.Fatalf("unexpected url: %q", postings[0].URL)
	}
	if !postings[0].Remote {
		t.Fatalf("expected remote to be true")
	}
}

func TestBuildZipRecruiterURL(t *testing.T) {
	params := defaultParams()
	params.Query = "golang"
	params.Location = "Denver, CO"
	params.Hours = 72

	got := buildZipRecruiterURL(params, 2)
	if !containsAll(got, []string{"search=golang", "location=Denver%2C+CO", "days=3", "page=2"}) {
		t.Fatalf("unexpected ziprecruiter url: %s", got)
	}
}
