package factors

import (
	"fmt"
	"math"
	"strings"
)

// analyzeImages scores alt-text coverage. Pages without images are treated
// neutrally unless they read like long-form articles, which benefit from
// imagery. Decorative images (explicit alt="") are tracked separately and
// never penalized.
func analyzeImages(in Input) outcome {
	if in.View == nil {
		return outcome{
			score:      0,
			confidence: 50,
			evidence:   []string{"Markup could not be parsed for images"},
		}
	}

	images := in.View.Images()
	if len(images) == 0 {
		words := len(strings.Fields(in.View.Text()))
		if words >= 800 {
			return outcome{
				score:      60,
				confidence: 90,
				evidence:   []string{"No images on a long-form page"},
				recommendations: []string{
					"Add illustrative images with descriptive alt text to support the article",
				},
			}
		}
		return outcome{
			score:      80,
			confidence: 90,
			evidence:   []string{"No images on the page; nothing to describe"},
		}
	}

	withAlt := 0
	decorative := 0
	missing := 0
	var altTexts []string
	for _, img := range images {
		switch {
		case img.HasAlt && img.Alt == "":
			decorative++
		case img.HasAlt:
			withAlt++
			altTexts = append(altTexts, img.Alt)
		default:
			missing++
		}
	}

	denominator := len(images) - decorative
	var coverage float64
	if denominator <= 0 {
		coverage = 1.0
	} else {
		coverage = float64(withAlt) / float64(denominator)
	}

	var score int
	switch {
	case coverage >= 1.0:
		score = 100
	case coverage >= 0.8:
		score = 80
	case coverage >= 0.5:
		score = 60
	default:
		score = int(math.Round(coverage * 100))
	}

	evidence := []string{
		fmt.Sprintf("%d of %d images have alt text (%d decorative, %d missing)",
			withAlt, len(images), decorative, missing),
	}
	var recs []string
	if missing > 0 {
		recs = append(recs, fmt.Sprintf("Add alt text to the %d image(s) missing it", missing))
	}

	// Alt length quality: 10-125 characters reads naturally and fits
	// assistive technology limits.
	if len(altTexts) > 0 {
		ideal := 0
		for _, alt := range altTexts {
			if l := len(alt); l >= 10 && l <= 125 {
				ideal++
			}
		}
		if ideal*2 > len(altTexts) {
			score += 10
			evidence = append(evidence, "Most alt text is a healthy length (10-125 characters)")
		} else {
			recs = append(recs, "Write alt text of 10-125 characters per image")
		}

		if stuffed := countStuffedAlts(altTexts); stuffed > 0 {
			score -= 10
			evidence = append(evidence, fmt.Sprintf("%d alt text(s) look keyword-stuffed", stuffed))
			recs = append(recs, "Rewrite repetitive alt text to describe the image naturally")
		}
	}

	return outcome{
		score:           clamp(score),
		confidence:      90,
		evidence:        evidence,
		recommendations: recs,
	}
}

// countStuffedAlts flags long alt strings with low lexical diversity, the
// signature of keyword stuffing.
func countStuffedAlts(alts []string) int {
	stuffed := 0
	for _, alt := range alts {
		if len(alt) <= 40 {
			continue
		}
		words := strings.Fields(strings.ToLower(alt))
		if len(words) == 0 {
			continue
		}
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		if float64(len(unique))/float64(len(words)) < 0.6 {
			stuffed++
		}
	}
	return stuffed
}
