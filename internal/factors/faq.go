package factors

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var faqContextWords = []string{
	"faq", "frequently asked", "common questions", "q&a", "questions and answers",
}

var questionPatternRe = regexp.MustCompile(`(?i)\b(how|what|why|when|where|which|who|can|does|is|should)\b[^.?!]{3,120}\?`)

// analyzeFAQ credits a dedicated FAQPage schema first, then incidental FAQ
// markup. Stray interrogative sentences only count when FAQ-context
// vocabulary co-occurs or their count clears a minimum, so a single
// rhetorical question never earns credit.
func analyzeFAQ(in Input) outcome {
	var blocks []string
	text := ""
	if in.View != nil {
		blocks = in.View.StructuredDataBlocks()
		text = in.View.Text()
	}

	score := 0
	var evidence []string
	var recs []string

	questions, longAnswer := faqSchemaQuestions(blocks)
	switch {
	case questions >= 10:
		score += 80
	case questions >= 5:
		score += 65
	case questions >= 3:
		score += 50
	case questions >= 1:
		score += 40
	}
	if questions > 0 {
		evidence = append(evidence, fmt.Sprintf("FAQPage schema found with %d question(s)", questions))
		if longAnswer {
			score += 10
			evidence = append(evidence, "At least one answer is substantive (over 100 characters)")
		} else {
			recs = append(recs, "Expand FAQ answers beyond one-line replies")
		}
	}

	// Markup-level FAQ sections: classes, ids, or headings naming FAQs.
	markupFAQ := false
	if in.View != nil {
		if in.View.Count(`[class*="faq"], [id*="faq"], section[aria-label*="FAQ"]`) > 0 {
			markupFAQ = true
		} else {
			for _, h := range in.View.Headings() {
				if hasAnySubstring(strings.ToLower(h.Text), faqContextWords) {
					markupFAQ = true
					break
				}
			}
		}
	}
	if markupFAQ {
		score += 15
		evidence = append(evidence, "FAQ section pattern found in markup")
	}

	// Incidental question patterns are only credited alongside FAQ-context
	// vocabulary or in sufficient number.
	lower := strings.ToLower(text)
	questionHits := len(questionPatternRe.FindAllString(text, -1))
	if questionHits > 0 && (hasAnySubstring(lower, faqContextWords) || questionHits >= 3) {
		score += 10
		evidence = append(evidence, fmt.Sprintf("%d question pattern(s) found in content", questionHits))
	}

	if score == 0 {
		return outcome{
			score:      0,
			confidence: 85,
			evidence:   []string{"No FAQ content detected"},
			recommendations: []string{
				"Add an FAQ section answering common questions about the topic",
				"Mark the section up with FAQPage structured data",
			},
		}
	}
	if questions == 0 {
		recs = append(recs, "Mark the FAQ content up with FAQPage structured data")
	}

	return outcome{
		score:           clamp(score),
		confidence:      85,
		evidence:        evidence,
		recommendations: recs,
	}
}

// faqSchemaQuestions walks every parseable block for FAQPage nodes
// (including @graph wrappers) and returns the total question count plus
// whether any accepted answer exceeds 100 characters.
func faqSchemaQuestions(blocks []string) (int, bool) {
	total := 0
	longAnswer := false
	for _, block := range blocks {
		var doc any
		if err := json.Unmarshal([]byte(block), &doc); err != nil {
			continue
		}
		walkFAQNodes(doc, &total, &longAnswer)
	}
	return total, longAnswer
}

func walkFAQNodes(doc any, total *int, longAnswer *bool) {
	switch node := doc.(type) {
	case map[string]any:
		if isFAQPage(node) {
			if entities, ok := node["mainEntity"].([]any); ok {
				*total += len(entities)
				for _, entity := range entities {
					if answerLength(entity) > 100 {
						*longAnswer = true
					}
				}
			} else if entity, ok := node["mainEntity"].(map[string]any); ok {
				*total++
				if answerLength(entity) > 100 {
					*longAnswer = true
				}
			}
		}
		for _, value := range node {
			walkFAQNodes(value, total, longAnswer)
		}
	case []any:
		for _, item := range node {
			walkFAQNodes(item, total, longAnswer)
		}
	}
}

func isFAQPage(node map[string]any) bool {
	switch typed := node["@type"].(type) {
	case string:
		return strings.EqualFold(typed, "FAQPage")
	case []any:
		for _, item := range typed {
			if s, ok := item.(string); ok && strings.EqualFold(s, "FAQPage") {
				return true
			}
		}
	}
	return false
}

func answerLength(entity any) int {
	question, ok := entity.(map[string]any)
	if !ok {
		return 0
	}
	answer, ok := question["acceptedAnswer"].(map[string]any)
	if !ok {
		return 0
	}
	if text, ok := answer["text"].(string); ok {
		return len([]rune(text))
	}
	return 0
}
