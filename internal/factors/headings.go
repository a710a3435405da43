package factors

import (
	"fmt"
	"strings"

	"github.com/pagefactor/pagefactor/internal/markup"
)

// analyzeHeadings scores the heading outline: a single h1, a hierarchy
// without skipped levels, balanced heading word counts, and a healthy total
// count. Each shortfall carries its own remediation message.
func analyzeHeadings(in Input) outcome {
	var headings []markup.Heading
	if in.View != nil {
		headings = in.View.Headings()
	}

	if len(headings) == 0 {
		return outcome{
			score:      0,
			confidence: 85,
			evidence:   []string{"No headings found on the page"},
			recommendations: []string{
				"Structure the page with a single h1 and descriptive subheadings",
			},
		}
	}

	var evidence []string
	var recs []string
	score := 0

	// Top-level heading presence.
	h1Count := 0
	for _, h := range headings {
		if h.Level == 1 {
			h1Count++
		}
	}
	switch {
	case h1Count == 1:
		score += 40
		evidence = append(evidence, "Exactly one h1 heading")
	case h1Count == 0:
		score += 10
		evidence = append(evidence, "No h1 heading present")
		recs = append(recs, "Add a single h1 that states the page topic")
	default:
		score += 20
		evidence = append(evidence, fmt.Sprintf("Multiple h1 headings (%d)", h1Count))
		recs = append(recs, "Keep a single h1 and demote the others to h2")
	}

	// Hierarchy continuity: any transition that goes more than one level
	// deeper is a break.
	breaks := 0
	for i := 1; i < len(headings); i++ {
		if headings[i].Level > headings[i-1].Level+1 {
			breaks++
			evidence = append(evidence, fmt.Sprintf(
				"Hierarchy break: h%d followed by h%d", headings[i-1].Level, headings[i].Level))
		}
	}
	hierarchy := 30 - breaks*10
	if hierarchy < 0 {
		hierarchy = 0
	}
	if breaks > 0 {
		recs = append(recs, "Do not skip heading levels; step down one level at a time")
	}

	// Structural smells.
	deep := 0
	h2s := 0
	for _, h := range headings {
		if h.Level >= 5 {
			deep++
		}
		if h.Level == 2 {
			h2s++
		}
	}
	if float64(deep) > 0.6*float64(len(headings)) {
		hierarchy -= 5
		evidence = append(evidence, "Most headings sit at h5/h6, suggesting a flat outline")
		recs = append(recs, "Promote important headings to higher levels")
	}
	if h2s > 10 {
		hierarchy -= 5
		evidence = append(evidence, fmt.Sprintf("Excessive h2 count (%d) suggests fragmentation", h2s))
		recs = append(recs, "Group related h2 sections under fewer headings")
	}
	if hierarchy < 0 {
		hierarchy = 0
	}
	score += hierarchy

	if h1Count == 1 && breaks == 0 {
		score += 10
		evidence = append(evidence, "Well-structured heading hierarchy")
	}

	// Average heading word count.
	totalWords := 0
	for _, h := range headings {
		totalWords += len(strings.Fields(h.Text))
	}
	avgWords := float64(totalWords) / float64(len(headings))
	if avgWords >= 2 && avgWords <= 8 {
		score += 10
		evidence = append(evidence, fmt.Sprintf("Average heading length %.1f words is in the 2-8 range", avgWords))
	} else {
		recs = append(recs, "Keep headings between 2 and 8 words")
	}

	// Total heading count.
	switch n := len(headings); {
	case n >= 3 && n <= 15:
		score += 10
		evidence = append(evidence, fmt.Sprintf("Healthy heading count (%d)", n))
	case n <= 25:
		score += 5
		evidence = append(evidence, fmt.Sprintf("Heading count %d is outside the ideal 3-15 range", n))
		recs = append(recs, "Aim for 3-15 headings on a page of this size")
	default:
		evidence = append(evidence, fmt.Sprintf("Heading count %d is excessive", n))
		recs = append(recs, "Reduce the number of headings; consolidate related sections")
	}

	return outcome{
		score:           clamp(score),
		confidence:      85,
		evidence:        evidence,
		recommendations: recs,
	}
}
