package factors

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

var highValueTypes = map[string]struct{}{
	"article": {}, "newsarticle": {}, "blogposting": {}, "organization": {},
	"product": {}, "faqpage": {}, "event": {}, "breadcrumblist": {},
	"website": {}, "person": {}, "localbusiness": {}, "howto": {},
	"recipe": {}, "review": {},
}

// analyzeStructuredData extracts every embedded JSON-LD block, counts the
// distinct schema types found (including nested and @graph-wrapped ones),
// and adds flat bonuses for secondary markup signals. Malformed blocks are
// reported as evidence but never abort the scan.
func analyzeStructuredData(in Input) outcome {
	var blocks []string
	if in.View != nil {
		blocks = in.View.StructuredDataBlocks()
	}

	valid := 0
	invalid := 0
	types := make(map[string]struct{})
	for _, block := range blocks {
		var doc any
		if err := json.Unmarshal([]byte(block), &doc); err != nil {
			invalid++
			continue
		}
		valid++
		collectSchemaTypes(doc, types)
	}

	score := 0
	var evidence []string
	var recs []string

	if valid > 0 {
		score += 30
		evidence = append(evidence, fmt.Sprintf("%d valid structured data block(s) found", valid))
	}
	if invalid > 0 {
		evidence = append(evidence, fmt.Sprintf("%d invalid structured data block(s) could not be parsed", invalid))
		recs = append(recs, "Fix the malformed JSON-LD blocks so machines can read them")
	}

	if len(types) > 0 {
		typeBonus := len(types) * 10
		if typeBonus > 40 {
			typeBonus = 40
		}
		score += typeBonus
		evidence = append(evidence, fmt.Sprintf("Schema types present: %s", strings.Join(sortedTypes(types), ", ")))

		if len(types) >= 4 {
			score += 10
			evidence = append(evidence, "Comprehensive schema tagging (4+ distinct types)")
		}
		for _, t := range sortedTypes(types) {
			if _, ok := highValueTypes[strings.ToLower(t)]; ok {
				score += 10
				evidence = append(evidence, fmt.Sprintf("High-value schema type present: %s", t))
				break
			}
		}
	}

	if in.View != nil {
		if in.View.HasMicrodata() {
			score += 5
			evidence = append(evidence, "Microdata attributes present")
		}
		if in.View.OpenGraphTagCount() > 0 {
			score += 5
			evidence = append(evidence, "Open Graph tags present")
		}
		if in.View.TwitterTagCount() > 0 {
			score += 5
			evidence = append(evidence, "Twitter card tags present")
		}
	}

	if score == 0 {
		return outcome{
			score:      0,
			confidence: 90,
			evidence:   []string{"No structured data found"},
			recommendations: []string{
				"Add JSON-LD structured data describing the page",
				"Start with an Organization or Article schema block",
			},
		}
	}
	if valid == 0 && invalid == 0 {
		recs = append(recs, "Add JSON-LD structured data describing the page")
	}

	return outcome{
		score:           clamp(score),
		confidence:      90,
		evidence:        evidence,
		recommendations: recs,
	}
}

// collectSchemaTypes walks a decoded JSON-LD document and records every
// @type value, descending through objects, arrays, and @graph wrappers.
func collectSchemaTypes(doc any, out map[string]struct{}) {
	switch node := doc.(type) {
	case map[string]any:
		switch typed := node["@type"].(type) {
		case string:
			if typed != "" {
				out[typed] = struct{}{}
			}
		case []any:
			for _, item := range typed {
				if s, ok := item.(string); ok && s != "" {
					out[s] = struct{}{}
				}
			}
		}
		for key, value := range node {
			if key == "@type" {
				continue
			}
			collectSchemaTypes(value, out)
		}
	case []any:
		for _, item := range node {
			collectSchemaTypes(item, out)
		}
	}
}

func sortedTypes(types map[string]struct{}) []string {
	out := make([]string, 0, len(types))
	for t := range types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
