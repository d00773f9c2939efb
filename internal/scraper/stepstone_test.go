package scraper

import (
	"testing"

	"github.com/jimezsa/jobmail/internal/models"
)

func TestStepstoneParseCard_ExtractsTeaserSnippet(t *testing.T) {
	html := `
<article>
  <h2>Platform Engineer</h2>
  <div>Example GmbH</div>
  <div>Munich, Bavaria, Germany</div>
  <p data-at="job-item-teaser">Build distributed backend services.</p>
  <time>vor 2 Tagen</time>
</article>`

	doc := mustDoc(t, html)
	card := doc.Find("article").First()
	company, location, snippet, posted, remote := stepstoneParseCard(card, "Platform Engineer")

	if company != "Example GmbH" {
		t.Fatalf("unexpected company: %q", company)
	}
	if location != "Munich, Bavaria, Germany" {
		t.Fatalf("unexpected location: %q", location)
	}
	if snippet != "Build distributed backend services." {
		t.Fatalf("unexpected snippet: %q", snippet)
	}
	if posted != "vor 2 Tagen" {
		t.Fatalf("unexpected posted: %q", posted)
	}
	if remote {
		t.Fatalf("expected remote false")
	}
}

func TestStepstoneParseCard_DoesNotUseLocationAsSnippet(t *testing.T) {
	html := `
<article>
  <h2>Platform Engineer</h2>
  <div>Example GmbH</div>
  <div>Munich, Bavaria, Germany</div>
  <div data-testid="job-item-teaser">Munich, Bavaria, Germany</div>
</article>`

	doc := mustDoc(t, html)
	card := doc.Find("article").First()
	_, _, snippet, _, _ := stepstoneParseCard(card, "Platform Engineer")

	if snippet != "" {
		t.Fatalf("expected empty snippet, got %q", snippet)
	}
}

func TestParseStepstoneDescription(t *testing.T) {
	html := `<div data-at="jobad-description">Build APIs for enterprise integrations.</div>`
	doc := mustDoc(t, html)

	got := parseStepstoneDescription(doc)
	if got != "Build APIs for enterprise integrations." {
		t.Fatalf("unexpected description: %q", got)
	}
}

func TestParseStepstoneDescription_FallsBackToJSONLD(t *testing.T) {
	html := `
<script type="application/ld+json">
{
  "@context": "http://schema.org",
  "@type": "JobPosting",
  "title": "Platform Engineer",
  "hiringOrganization": {"name": "Example GmbH"},
  "url": "https://www.stepstone.de/stellenangebote--platform-engineer-example",
  "description": "Design and operate resilient services."
}
</script>`
	doc := mustDoc(t, html)

	got := parseStepstoneDescription(doc)
	if got != "Design and operate resilient services." {
		t.Fatalf("unexpected description: %q", got)
	}
}

func TestBuildStepstoneURL(t *testing.T) {
	params := models.SearchParams{Query: "Go Entwickler", Location: "München"}
	if got := buildStepstoneURL(params, 1); got != "https://www.stepstone.de/jobs/go-entwickler/in-m%C3%BCnchen" {
		t.Fatalf("unexpected url: %q", got)
	}
	if got := buildStepstoneURL(models.SearchParams{Query: "sre"}, 3); got != "https://www.stepstone.de/jobs/sre?page=3" {
		t.Fatalf("unexpected paged url: %q", got)
	}
}

func TestStepstonePageFromOffset(t *testing.T) {
	cases := map[int]int{0: 1, -5: 1, stepstonePageSize - 1: 1, stepstonePageSize: 2}
	for offset, want := range cases {
		if got := stepstonePageFromOffset(offset); got != want {
			t.Fatalf("stepstonePageFromOffset(%d) = %d, want %d", offset, got, want)
		}
	}
}

func TestParseStepstoneJobCards(t *testing.T) {
	html := `
<article>
  <a href="/stellenangebote--platform-engineer-munich-example--123-inline.html">Platform Engineer</a>
  <div>Example GmbH</div>
  <div>Munich</div>
  <p data-at="job-item-teaser">Teilweise Homeoffice. Build distributed backend services.</p>
</article>
<article>
  <a href="/stellenangebote--platform-engineer-munich-example--123-inline.html">Platform Engineer</a>
</article>`

	postings := parseStepstoneJobCards(mustDoc(t, html))
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	got := postings[0]
	if got.Site != SiteStepstone || got.Company != "Example GmbH" {
		t.Fatalf("unexpected posting: %+v", got)
	}
	if got.URL != "https://www.stepstone.de/stellenangebote--platform-engineer-munich-example--123-inline.html" {
		t.Fatalf("unexpected url: %q", got.URL)
	}
	if !got.Remote {
		t.Fatalf("expected homeoffice teaser to mark the posting remote")
	}
}
