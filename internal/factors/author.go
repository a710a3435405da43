package factors

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Byline patterns are matched against markup with script, style, and
// structured-data blocks stripped first so names embedded in JSON never
// surface as false positives.
var bylinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)written\s+by\s+([A-Z][\w'.-]*(?:\s+[A-Z][\w'.-]*){0,3})`),
	regexp.MustCompile(`(?i)posted\s+by\s+([A-Z][\w'.-]*(?:\s+[A-Z][\w'.-]*){0,3})`),
	regexp.MustCompile(`(?i)authored\s+by\s+([A-Z][\w'.-]*(?:\s+[A-Z][\w'.-]*){0,3})`),
	regexp.MustCompile(`(?i)author:?\s+([A-Z][\w'.-]*(?:\s+[A-Z][\w'.-]*){0,3})`),
	regexp.MustCompile(`\bBy\s+([A-Z][\w'.-]*(?:\s+[A-Z][\w'.-]*){0,3})`),
}

// nameShape accepts 1-4 capitalized tokens, which is what a real byline
// name looks like after the pattern capture.
var nameShape = regexp.MustCompile(`^[A-Z][\w'.-]*(?:\s+[A-Z][\w'.-]*){0,3}$`)

// authorStopWords filters common capture false positives such as "By The
// Numbers" or "By Clicking Here".
var authorStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "this": {}, "that": {}, "our": {},
	"their": {}, "your": {}, "all": {}, "any": {}, "clicking": {},
	"continuing": {}, "using": {}, "subscribing": {}, "signing": {},
	"default": {}, "design": {}, "law": {}, "now": {}, "far": {},
	"definition": {}, "contrast": {}, "comparison": {}, "numbers": {},
}

var credentialWords = []string{
	"bio", "biography", "about the author", "credential", "expert",
	"expertise", "experience", "phd", "ph.d", "md", "editor", "journalist",
	"contributor", "certified", "professor", "contact the author",
}

// analyzeAuthor extracts byline candidates, filters them through the name
// shape and stop-word list, and scores additively: base for any author,
// bonus for multiple authors, bonus for credential vocabulary nearby.
func analyzeAuthor(in Input) outcome {
	text := in.Page.RawMarkup
	if in.View != nil {
		text = in.View.Text()
	} else {
		text = stripMarkup(text)
	}

	candidates := make(map[string]struct{})
	for _, pattern := range bylinePatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			if name, ok := cleanAuthorName(match[1]); ok {
				candidates[name] = struct{}{}
			}
		}
	}
	if in.View != nil {
		for _, content := range in.View.MetaContent("author") {
			if name, ok := cleanAuthorName(content); ok {
				candidates[name] = struct{}{}
			}
		}
	}

	if len(candidates) == 0 {
		return outcome{
			score:      0,
			confidence: 70,
			evidence:   []string{"No author byline detected"},
			recommendations: []string{
				"Add a visible byline such as \"Written by Jane Doe\"",
				"Include an author bio with credentials near the article",
			},
		}
	}

	names := make([]string, 0, len(candidates))
	for name := range candidates {
		names = append(names, name)
	}
	sort.Strings(names)

	score := 50
	evidence := []string{fmt.Sprintf("Author byline detected: %s", strings.Join(names, ", "))}
	var recs []string

	if len(names) >= 2 {
		score += 20
		evidence = append(evidence, fmt.Sprintf("Multiple authors found (%d)", len(names)))
	}

	lower := strings.ToLower(text)
	if hasAnySubstring(lower, credentialWords) {
		score += 30
		evidence = append(evidence, "Author credential or bio vocabulary present")
	} else {
		recs = append(recs, "Add author credentials or a short bio to strengthen authority")
	}

	return outcome{
		score:           score,
		confidence:      70,
		evidence:        evidence,
		recommendations: recs,
	}
}

func cleanAuthorName(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	name = strings.Trim(name, ".,;:")
	if name == "" || !nameShape.MatchString(name) {
		return "", false
	}
	for _, token := range strings.Fields(name) {
		if _, stop := authorStopWords[strings.ToLower(strings.Trim(token, ".,'"))]; stop {
			return "", false
		}
	}
	return name, true
}

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
)

// stripMarkup is the regex fallback used when no parsed view is available.
func stripMarkup(raw string) string {
	out := scriptBlockRe.ReplaceAllString(raw, " ")
	out = styleBlockRe.ReplaceAllString(out, " ")
	out = tagRe.ReplaceAllString(out, " ")
	return whitespaceCollapse(out)
}

var collapseRe = regexp.MustCompile(`\s+`)

func whitespaceCollapse(s string) string {
	return collapseRe.ReplaceAllString(strings.TrimSpace(s), " ")
}
