package factors

import (
	"strings"
	"testing"

	"github.com/pagefactor/pagefactor/internal/analysis"
)

// twelveWordSentence keeps the average sentence length inside the readable
// 10-25 band.
const twelveWordSentence = "The garden rewards patience with steady growth across every single warm season."

func articleBody(paragraphs int) string {
	para := "<p>" + strings.Repeat(twelveWordSentence+" ", 5) + "</p>"
	return strings.Repeat(para, paragraphs)
}

func TestAnalyzeWordCountModerateArticle(t *testing.T) {
	t.Parallel()

	// 7 paragraphs x 60 words = 420 words: band 60 + 5 sentence length
	// + 5 paragraph structure.
	out := analyzeWordCount(htmlInput(articleBody(7)))
	if out.score != 70 {
		t.Fatalf("score = %d, want 70 (evidence: %v)", out.score, out.evidence)
	}
	if out.confidence != 85 {
		t.Fatalf("confidence = %d, want 85", out.confidence)
	}
}

func TestAnalyzeWordCountDeepArticleBonus(t *testing.T) {
	t.Parallel()

	// 18 paragraphs x 60 words = 1080 words: band 90 + 5 article depth
	// + 5 sentence length + 5 paragraphs, clamped to 100.
	out := analyzeWordCount(htmlInput(articleBody(18)))
	if out.score != 100 {
		t.Fatalf("score = %d, want 100 (evidence: %v)", out.score, out.evidence)
	}
}

func TestAnalyzeWordCountThin(t *testing.T) {
	t.Parallel()

	out := analyzeWordCount(htmlInput(`<p>One. Two. Three. Four.</p>`))
	// 4 words with one-word sentences: band 20, no bonuses.
	if out.score != 20 {
		t.Fatalf("score = %d, want 20 (evidence: %v)", out.score, out.evidence)
	}
	if len(out.recommendations) == 0 {
		t.Fatal("expected an expansion recommendation")
	}
}

func TestAnalyzeWordCountUtilityCap(t *testing.T) {
	t.Parallel()

	in := NewInput(analysis.PageData{
		Title:     "Mortgage Payment Calculator",
		RawMarkup: "<html><body>" + articleBody(40) + "</body></html>",
	})
	out := analyzeWordCount(in)
	if out.score != 80 {
		t.Fatalf("score = %d, want 80 (evidence: %v)", out.score, out.evidence)
	}
	joined := strings.Join(out.evidence, " ")
	if !strings.Contains(joined, "Utility page detected") {
		t.Fatalf("missing cap evidence: %v", out.evidence)
	}
}

func TestIsUtilityPageFormDominated(t *testing.T) {
	t.Parallel()

	body := `<form><input><input><select></select><textarea></textarea><input></form>` +
		`<p>Fill in the form.</p>`
	in := htmlInput(body)
	if !isUtilityPage(in, in.View.Paragraphs()) {
		t.Fatal("form-dominated page not detected as utility")
	}

	article := htmlInput(articleBody(5))
	if isUtilityPage(article, article.View.Paragraphs()) {
		t.Fatal("article misdetected as utility")
	}
}
