package scraper

import (
	"testing"

	"github.com/jimezsa/jobmail/internal/models"
)

func TestRejectTitle(t *testing.T) {
	patterns := []string{"Nurse", " recruiter "}
	if !RejectTitle("Senior NURSE Practitioner", patterns) {
		t.Fatalf("expected nurse title rejected")
	}
	if !RejectTitle("Technical Recruiter", patterns) {
		t.Fatalf("expected recruiter title rejected")
	}
	if RejectTitle("Backend Engineer", patterns) {
		t.Fatalf("expected engineer title kept")
	}
	if RejectTitle("", patterns) {
		t.Fatalf("empty title must not be rejected")
	}
}

func TestFilterPostings(t *testing.T) {
	postings := []models.Posting{
		{Title: "Go Engineer", Company: "Acme", URL: "https://example.com/1", Emails: "Jobs@Acme.com, noreply@acme.com"},
		{Title: "Go Engineer", Company: "Acme", URL: "https://example.com/1", Emails: "other@acme.com"},
		{Title: "Staff Nurse", Company: "Clinic", URL: "https://example.com/2", Emails: "hr@clinic.org"},
		{Title: "SRE", Company: "Beta", URL: "https://example.com/3", Emails: "not-an-email"},
		{Title: "SRE", Company: "Gamma", URL: "https://example.com/4", Emails: "no-reply@gamma.io"},
		{Title: "Platform", Company: "Delta", URL: "https://example.com/5", Emails: "talent@delta.dev"},
	}

	got, counts := FilterPostings(postings, Filters{
		RejectTitles:  []string{"nurse"},
		EmailPatterns: []string{"contains:noreply", "contains:no-reply"},
	})

	want := Counts{Raw: 6, AfterEmail: 5, AfterTitle: 4, Final: 2}
	if counts != want {
		t.Fatalf("counts = %+v, want %+v", counts, want)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(got))
	}
	if got[0].Emails != "jobs@acme.com" {
		t.Fatalf("expected rewritten emails, got %q", got[0].Emails)
	}
	if got[1].Company != "Delta" {
		t.Fatalf("unexpected second posting: %+v", got[1])
	}
}

func TestFilterPostingsEmpty(t *testing.T) {
	got, counts := FilterPostings(nil, Filters{})
	if len(got) != 0 || counts != (Counts{}) {
		t.Fatalf("expected empty result, got %d postings and %+v", len(got), counts)
	}
}
