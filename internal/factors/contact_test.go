package factors

import (
	"testing"

	"github.com/pagefactor/pagefactor/internal/analysis"
)

func htmlInput(body string) Input {
	return NewInput(analysis.PageData{
		URL:       "https://example.com",
		RawMarkup: "<html><head></head><body>" + body + "</body></html>",
	})
}

func TestAnalyzeContactChannels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantScore int
	}{
		{
			name:      "contact link only",
			body:      `<a href="/contact">Contact</a>`,
			wantScore: 40,
		},
		{
			name:      "contact link plus email",
			body:      `<a href="/contact">Contact</a><a href="mailto:team@example.com">Email us</a>`,
			wantScore: 70,
		},
		{
			name: "all four channels capped at 100",
			body: `<a href="/contact-us">Contact</a>` +
				`<a href="mailto:team@example.com">Email</a>` +
				`<a href="tel:+15551234567">Call</a>` +
				`<p>Visit us at 123 Main Street, Springfield</p>`,
			wantScore: 100,
		},
		{
			name:      "email only",
			body:      `<p>Reach the editors at tips@example.org for corrections.</p>`,
			wantScore: 30,
		},
		{
			name:      "phone only via tel link",
			body:      `<a href="tel:+441632960961">Ring the desk</a>`,
			wantScore: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := analyzeContact(htmlInput(tt.body))
			if out.score != tt.wantScore {
				t.Fatalf("score = %d, want %d (evidence: %v)", out.score, tt.wantScore, out.evidence)
			}
			if out.confidence != 80 {
				t.Fatalf("confidence = %d, want 80", out.confidence)
			}
		})
	}
}

func TestAnalyzeContactNoSignals(t *testing.T) {
	t.Parallel()

	out := analyzeContact(htmlInput(`<p>Just an essay about gardening with no way to reach anyone.</p>`))
	if out.score != 0 {
		t.Fatalf("score = %d, want 0 (evidence: %v)", out.score, out.evidence)
	}
	if len(out.evidence) != 1 || out.evidence[0] != "No contact information found" {
		t.Fatalf("evidence = %v", out.evidence)
	}
	if len(out.recommendations) != 3 {
		t.Fatalf("recommendations = %v, want exactly 3", out.recommendations)
	}
}

func TestContactPathMatching(t *testing.T) {
	t.Parallel()

	tests := []struct {
		href string
		want bool
	}{
		{"/contact", true},
		{"/contact/", true},
		{"https://example.com/contact-us", true},
		{"/get-in-touch", true},
		{"/contact-sales-team", false},
		{"/about", false},
	}
	for _, tt := range tests {
		if got := isContactPath(tt.href); got != tt.want {
			t.Fatalf("isContactPath(%q) = %v, want %v", tt.href, got, tt.want)
		}
	}
}
