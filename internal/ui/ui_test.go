package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestNormalizeColorMode(t *testing.T) {
	cases := map[string]ColorMode{
		"":        ColorAuto,
		"ALWAYS":  ColorAlways,
		" never ": ColorNever,
		"bogus":   ColorAuto,
	}
	for in, want := range cases {
		if got := NormalizeColorMode(in); got != want {
			t.Fatalf("NormalizeColorMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPlainMessagesHaveNoEscapes(t *testing.T) {
	var out, errOut bytes.Buffer
	u := New(&out, &errOut, ColorAlways, true)
	u.Infof("sent %d\n", 3)
	u.Errorf("boom")

	if out.String() != "sent 3\n" {
		t.Fatalf("unexpected stdout %q", out.String())
	}
	if errOut.String() != "boom\n" {
		t.Fatalf("unexpected stderr %q", errOut.String())
	}
}

func TestProgressIsNoopWithoutTTY(t *testing.T) {
	var out, errOut bytes.Buffer
	u := New(&out, &errOut, ColorNever, false)
	p := u.StartProgress("Scraping")
	p.Update(1, 4)
	time.Sleep(250 * time.Millisecond)
	p.Stop()
	p.Stop()

	if errOut.Len() != 0 {
		t.Fatalf("expected no output, got %q", errOut.String())
	}
}

func TestProgressLine(t *testing.T) {
	p := &Progress{label: "Scraping"}
	if got := p.line(3 * time.Second); got != "Scraping... 3s" {
		t.Fatalf("unexpected line %q", got)
	}
	p.Update(2, 6)
	if got := p.line(5 * time.Second); !strings.HasPrefix(got, "Scraping... 2/6") {
		t.Fatalf("unexpected line %q", got)
	}
}
