package scraper

import (
	"strings"
	"testing"

	"github.com/jimezsa/jobmail/internal/models"
)

func TestBuildIndeedURL(t *testing.T) {
	params := defaultParams()
	params.Query = "golang"
	params.Location = "New York, NY"
	params.Country = "us"
	params.Offset = 20
	params.JobType = "fulltime"

	url := buildIndeedURL(params)
	if url == "" {
		t.Fatalf("expected URL to be built")
	}
	if !containsAll(url, []string{"q=golang", "l=New+York%2C+NY", "start=20", "jt=fulltime"}) {
		t.Fatalf("unexpected indeed url: %s", url)
	}
	if strings.Contains(url, "fromage") {
		t.Fatalf("unexpected recency filter in %s", url)
	}
}

func TestBuildIndeedURL_Hours(t *testing.T) {
	params := defaultParams()
	params.Query = "sre"
	params.Hours = 25

	url := buildIndeedURL(params)
	if !strings.Contains(url, "fromage=2") {
		t.Fatalf("expected fromage=2 in %s", url)
	}
}

func TestBaseIndeedURL(t *testing.T) {
	cases := map[string]string{
		"":    "https://www.indeed.com",
		"USA": "https://www.indeed.com",
		"uk":  "https://uk.indeed.com",
		"de":  "https://de.indeed.com",
	}
	for input, want := range cases {
		if got := baseIndeedURL(input); got != want {
			t.Fatalf("baseIndeedURL(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseIndeedJobs(t *testing.T) {
	html := `
<div>
  <a class="tapItem" href="/rc/clk?jk=abc">
    <h2 class="jobTitle"><span>Backend Engineer</span></h2>
    <span class="companyName">Acme</span>
    <div class="companyLocation">Remote in Austin, TX</div>
    <div class="job-snippet">Email jobs@acme.com with
      your resume</div>
  </a>
  <a class="tapItem" href="/rc/clk?jk=def"><span class="companyName">No Title</span></a>
</div>`

	postings := parseIndeedJobs(mustDoc(t, html), "us")
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	got := postings[0]
	if got.URL != "https://www.indeed.com/rc/clk?jk=abc" {
		t.Fatalf("unexpected url: %q", got.URL)
	}
	if got.Snippet != "Email jobs@acme.com with your resume" {
		t.Fatalf("unexpected snippet: %q", got.Snippet)
	}
	if !got.Remote {
		t.Fatalf("expected remote posting")
	}
}

func TestParseIndeedDescription(t *testing.T) {
	doc := mustDoc(t, `<div id="jobDescriptionText"><p>Run Go services.</p>
	<p>Apply: hr@acme.com</p></div>`)
	got := parseIndeedDescription(doc)
	if got != "Run Go services. Apply: hr@acme.com" {
		t.Fatalf("unexpected description: %q", got)
	}
}

func TestNormalizeSnippet(t *testing.T) {
	input := "  hello  \n world  "
	got := normalizeSnippet(input)
	if got != "hello world" {
		t.Fatalf("expected normalized snippet, got %q", got)
	}
}

func defaultParams() models.SearchParams { return models.SearchParams{} }

func containsAll(value string, parts []string) bool {
	for _, part := range parts {
		if !strings.Contains(value, part) {
			return false
		}
	}
	return true
}
