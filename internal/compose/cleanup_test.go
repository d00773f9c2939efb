package compose

import "testing"

func TestStripMarkup(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<p>Hello</p>", "Hello"},
		{"**bold** and *italic*", "bold and italic"},
		{"use `go test` daily", "use go test daily"},
		{"see [my site](https://x.dev)", "see my site"},
		{"## Heading\nbody", "Heading\nbody"},
		{"a    b\t\tc", "a b c"},
		{"one\n\n\n\n\ntwo", "one\n\ntwo"},
	}
	for _, tc := range cases {
		if got := StripMarkup(tc.in); got != tc.want {
			t.Fatalf("StripMarkup(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncateWords(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"one two three", 5, "one two three"},
		{"one two three", 3, "one two three"},
		{"one two three four", 2, "one two"},
		{"one\n\ntwo three", 2, "one\n\ntwo"},
		{"one two", 0, ""},
		{"", 3, ""},
	}
	for _, tc := range cases {
		if got := truncateWords(tc.in, tc.max); got != tc.want {
			t.Fatalf("truncateWords(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestCleanupPatternsUseContactName(t *testing.T) {
	patterns, err := CompileCleanupPatterns(DefaultCleanupPatterns, "Arin K.")
	if err != nil {
		t.Fatalf("CompileCleanupPatterns() error = %v", err)
	}
	step := RemovePatterns(patterns)

	got := CollapseWhitespace(step("Thanks for reading.\nbest regards, Arin K. +15550100"))
	if got != "Thanks for reading." {
		t.Fatalf("cleanup = %q, want %q", got, "Thanks for reading.")
	}
	got = CollapseWhitespace(step("Thanks.\nArin Kx"))
	if got != "Thanks.\nArin Kx" {
		t.Fatalf("cleanup = %q, want name pattern to match literally", got)
	}
}

func TestCleanupPatternsWithoutContactName(t *testing.T) {
	patterns, err := CompileCleanupPatterns(DefaultCleanupPatterns, " ")
	if err != nil {
		t.Fatalf("CompileCleanupPatterns() error = %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("len(patterns) = %d, want 1", len(patterns))
	}
}

func TestPipelineAppliesInOrder(t *testing.T) {
	pipeline := Pipeline{
		func(s string) string { return s + "a" },
		func(s string) string { return s + "b" },
	}
	if got := pipeline.Apply("x"); got != "xab" {
		t.Fatalf("Pipeline.Apply() = %q, want %q", got, "xab")
	}
}
