package compose

import "testing"

func TestParseResponse(t *testing.T) {
	cases := []struct {
		raw     string
		subject string
		body    string
	}{
		{"SUBJECT: Hello\n\nBody text", "Hello", "Body text"},
		{"subject: \"Quoted\"\nBody", "Quoted", "Body"},
		{"Subject line\nrest of body\nmore", "Subject line", "rest of body\nmore"},
		{"SUBJECT: Only", "Only", ""},
		{"  \n SUBJECT: 'Padded' \n\n  Body  ", "Padded", "Body"},
		{"SUBJECT:\n\nHello there\n\nBody text", "Hello there", "Body text"},
	}
	for _, tc := range cases {
		subject, body := parseResponse(tc.raw)
		if subject != tc.subject || body != tc.body {
			t.Fatalf("parseResponse(%q) = (%q, %q), want (%q, %q)", tc.raw, subject, body, tc.subject, tc.body)
		}
	}
}
