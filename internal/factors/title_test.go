package factors

import (
	"strings"
	"testing"

	"github.com/pagefactor/pagefactor/internal/analysis"
)

func titleInput(title string) Input {
	return Input{Page: analysis.PageData{Title: title}}
}

func TestAnalyzeTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		title     string
		wantScore int
	}{
		{
			// 51 chars, 9 words, ": " separator, "complete"/"guide"/"how",
			// digits: 60+15+10+10+5.
			name:      "every bonus",
			title:     "Complete Guide: How to Start a Vegetable Garden 101",
			wantScore: 100,
		},
		{
			// 34 chars (acceptable band), 6 words, no separator, no
			// engagement keyword, no digits: 40+15.
			name:      "acceptable length only",
			title:     "My Homepage About Things and Stuff",
			wantScore: 55,
		},
		{
			// 2 chars falls through every band.
			name:      "unusable length",
			title:     "Hi",
			wantScore: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := analyzeTitle(titleInput(tt.title))
			if out.score != tt.wantScore {
				t.Fatalf("score = %d, want %d (evidence: %v)", out.score, tt.wantScore, out.evidence)
			}
			if out.confidence != 90 {
				t.Fatalf("confidence = %d, want 90", out.confidence)
			}
		})
	}
}

func TestAnalyzeTitleMissing(t *testing.T) {
	t.Parallel()

	out := analyzeTitle(titleInput("   "))
	if out.score != 0 {
		t.Fatalf("score = %d, want 0", out.score)
	}
	if len(out.recommendations) != 2 {
		t.Fatalf("recommendations = %v, want 2 entries", out.recommendations)
	}
}

func TestAnalyzeTitleKeywordIsWholeWord(t *testing.T) {
	t.Parallel()

	// "showcase" contains "how" as a substring but not as a word.
	out := analyzeTitle(titleInput("Product Showcase for Autumn Collection"))
	for _, ev := range out.evidence {
		if strings.Contains(ev, "engagement") {
			t.Fatalf("substring match credited as keyword: %v", out.evidence)
		}
	}
}
