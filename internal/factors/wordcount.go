package factors

import (
	"fmt"
	"strings"
)

var utilityPageWords = []string{
	"calculator", "converter", "generator", "login", "sign in", "checkout",
	"dashboard", "tool",
}

// analyzeWordCount scores content depth in bands, modulated by a page-type
// heuristic: utility pages are capped rather than rewarded for raw length,
// while article-like pages earn extra for sustained depth. Sentence length
// and paragraph structure act as secondary checks.
func analyzeWordCount(in Input) outcome {
	text := in.Page.RawMarkup
	var paragraphs []string
	if in.View != nil {
		text = in.View.Text()
		paragraphs = in.View.Paragraphs()
	} else {
		text = stripMarkup(text)
	}

	words := strings.Fields(text)
	count := len(words)

	var score int
	var evidence []string
	var recs []string

	switch {
	case count < 150:
		score = 20
		evidence = append(evidence, fmt.Sprintf("Insufficient content (%d words)", count))
		recs = append(recs, "Expand the page to at least 300 words of substantive content")
	case count < 300:
		score = 40
		evidence = append(evidence, fmt.Sprintf("Thin content (%d words)", count))
		recs = append(recs, "Expand the page toward 600+ words")
	case count < 600:
		score = 60
		evidence = append(evidence, fmt.Sprintf("Moderate content depth (%d words)", count))
	case count < 1000:
		score = 75
		evidence = append(evidence, fmt.Sprintf("Good content depth (%d words)", count))
	case count < 2000:
		score = 90
		evidence = append(evidence, fmt.Sprintf("Strong content depth (%d words)", count))
	default:
		score = 100
		evidence = append(evidence, fmt.Sprintf("Comprehensive content (%d words)", count))
	}

	utility := isUtilityPage(in, paragraphs)
	if !utility && count >= 1000 {
		score += 5
		evidence = append(evidence, "Article-like page rewarded for sustained depth")
	}

	// Secondary checks.
	if avg := averageSentenceLength(text); avg >= 10 && avg <= 25 {
		score += 5
		evidence = append(evidence, fmt.Sprintf("Average sentence length %.1f words is readable", avg))
	} else if count >= 150 {
		recs = append(recs, "Aim for an average sentence length of 10-25 words")
	}

	substantial := 0
	for _, p := range paragraphs {
		if len(strings.Fields(p)) > 50 {
			substantial++
		}
	}
	if substantial >= 3 {
		score += 5
		evidence = append(evidence, fmt.Sprintf("%d substantial paragraphs", substantial))
	} else if count >= 150 {
		recs = append(recs, "Break the content into at least 3 substantial paragraphs")
	}

	score = clamp(score)
	// Very long utility pages are capped: raw length adds noise, not value.
	if utility && score > 80 {
		score = 80
		evidence = append(evidence, "Utility page detected; depth score capped")
	}

	return outcome{
		score:           score,
		confidence:      85,
		evidence:        evidence,
		recommendations: recs,
	}
}

// isUtilityPage uses cheap signals: tool vocabulary in the title or a page
// dominated by form controls rather than prose.
func isUtilityPage(in Input, paragraphs []string) bool {
	lowerTitle := strings.ToLower(in.Page.Title)
	if hasAnySubstring(lowerTitle, utilityPageWords) {
		return true
	}
	if in.View != nil {
		forms := in.View.Count("form, input, select, textarea")
		if forms > 5 && len(paragraphs) < 3 {
			return true
		}
	}
	return false
}

func averageSentenceLength(text string) float64 {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	total := 0
	counted := 0
	for _, s := range sentences {
		n := len(strings.Fields(s))
		if n == 0 {
			continue
		}
		total += n
		counted++
	}
	if counted == 0 {
		return 0
	}
	return float64(total) / float64(counted)
}
