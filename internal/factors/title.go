package factors

import (
	"fmt"
	"strings"
)

var titleEngagementWords = []string{
	"guide", "how", "best", "top", "review", "complete", "ultimate",
	"essential", "tips", "learn", "why", "what", "new", "free", "easy",
	"proven", "simple",
}

var titleSeparators = []string{" | ", " - ", " – ", " — ", ": "}

// analyzeTitle applies the length-banded title policy: peak reward for
// 50-60 characters with graded falloff, plus additive bonuses for word
// balance, a brand separator, engagement keywords, and distinctive
// characters. The sum is capped at 100.
func analyzeTitle(in Input) outcome {
	title := strings.TrimSpace(in.Page.Title)
	if title == "" {
		return outcome{
			score:      0,
			confidence: 90,
			evidence:   []string{"Page has no title"},
			recommendations: []string{
				"Add a descriptive <title> of 50-60 characters",
				"Lead with the page topic and end with the brand name",
			},
		}
	}

	length := len([]rune(title))
	var score int
	var evidence []string
	var recs []string

	switch {
	case length >= 50 && length <= 60:
		score = 60
		evidence = append(evidence, fmt.Sprintf("Title length %d is in the ideal 50-60 range", length))
	case length >= 30 && length <= 80:
		score = 40
		evidence = append(evidence, fmt.Sprintf("Title length %d is acceptable but outside the ideal 50-60 range", length))
		recs = append(recs, "Adjust the title toward 50-60 characters")
	case length >= 10 && length <= 100:
		score = 20
		evidence = append(evidence, fmt.Sprintf("Title length %d is far from the ideal range", length))
		recs = append(recs, "Rewrite the title to 50-60 characters")
	default:
		score = 10
		evidence = append(evidence, fmt.Sprintf("Title length %d is unusable for search results", length))
		recs = append(recs, "Rewrite the title to 50-60 characters")
	}

	words := strings.Fields(title)
	if len(words) >= 3 && len(words) <= 12 {
		score += 15
		evidence = append(evidence, fmt.Sprintf("Balanced word count (%d words)", len(words)))
	} else {
		recs = append(recs, "Aim for 3-12 words in the title")
	}

	if hasAnySubstring(title, titleSeparators) {
		score += 10
		evidence = append(evidence, "Title uses a brand-style separator")
	}

	lower := strings.ToLower(title)
	if containsAnyWord(lower, titleEngagementWords) {
		score += 10
		evidence = append(evidence, "Title contains descriptive or engagement keywords")
	} else {
		recs = append(recs, "Consider an engagement keyword such as \"guide\" or \"how\"")
	}

	if strings.ContainsAny(title, "0123456789?!%$&()") {
		score += 5
		evidence = append(evidence, "Title contains digits or distinctive punctuation")
	}

	return outcome{
		score:           score,
		confidence:      90,
		evidence:        evidence,
		recommendations: recs,
	}
}

func hasAnySubstring(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// containsAnyWord checks whole-word membership against a lowercase keyword
// list; the input must already be lowercased.
func containsAnyWord(lower string, keywords []string) bool {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	for _, kw := range keywords {
		if _, ok := set[kw]; ok {
			return true
		}
	}
	return false
}
