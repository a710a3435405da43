package factors

import (
	"fmt"
	"strings"
)

var metaCallToActionWords = []string{
	"learn", "discover", "find", "get", "try", "start", "explore", "read",
	"see", "compare", "download", "join", "shop", "buy", "book", "save",
}

var metaQuestionWords = []string{"how", "what", "why", "when", "where", "which", "who"}

// analyzeMeta mirrors the title policy for the meta description: length
// banding centered on 150-160 characters plus bonuses for call-to-action
// verbs, numerals, question words, and terminal punctuation.
func analyzeMeta(in Input) outcome {
	meta := strings.TrimSpace(in.Page.MetaDescription)
	if meta == "" {
		return outcome{
			score:      0,
			confidence: 90,
			evidence:   []string{"Page has no meta description"},
			recommendations: []string{
				"Add a meta description of 150-160 characters",
				"Summarize the page value and end with a call to action",
			},
		}
	}

	length := len([]rune(meta))
	var score int
	var evidence []string
	var recs []string

	switch {
	case length >= 150 && length <= 160:
		score = 60
		evidence = append(evidence, fmt.Sprintf("Meta description length %d is in the ideal 150-160 range", length))
	case (length >= 120 && length <= 149) || (length >= 161 && length <= 185):
		score = 40
		evidence = append(evidence, fmt.Sprintf("Meta description length %d is close to the ideal range", length))
		recs = append(recs, "Adjust the meta description toward 150-160 characters")
	case (length >= 80 && length <= 119) || (length >= 186 && length <= 220):
		score = 20
		evidence = append(evidence, fmt.Sprintf("Meta description length %d is far from the ideal range", length))
		recs = append(recs, "Rewrite the meta description to 150-160 characters")
	default:
		score = 10
		evidence = append(evidence, fmt.Sprintf("Meta description length %d is unusable for search snippets", length))
		recs = append(recs, "Rewrite the meta description to 150-160 characters")
	}

	lower := strings.ToLower(meta)
	if containsAnyWord(lower, metaCallToActionWords) {
		score += 15
		evidence = append(evidence, "Meta description contains a call-to-action verb")
	} else {
		recs = append(recs, "Open with an action verb such as \"discover\" or \"learn\"")
	}

	if strings.ContainsAny(meta, "0123456789") {
		score += 10
		evidence = append(evidence, "Meta description contains numerals")
	}

	if containsAnyWord(lower, metaQuestionWords) {
		score += 10
		evidence = append(evidence, "Meta description contains a question word")
	}

	if strings.HasSuffix(meta, ".") || strings.HasSuffix(meta, "!") || strings.HasSuffix(meta, "?") {
		score += 5
		evidence = append(evidence, "Meta description ends with terminal punctuation")
	} else {
		recs = append(recs, "End the meta description with a full sentence")
	}

	return outcome{
		score:           score,
		confidence:      90,
		evidence:        evidence,
		recommendations: recs,
	}
}
