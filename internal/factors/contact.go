package factors

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/pagefactor/pagefactor/internal/markup"
)

// Channel contributions. The four channels are independent and their sum is
// capped at 100.
const (
	contactLinkPoints    = 40
	contactEmailPoints   = 30
	contactPhonePoints   = 20
	contactAddressPoints = 15
)

var contactPagePaths = map[string]struct{}{
	"/contact":      {},
	"/contact-us":   {},
	"/get-in-touch": {},
	"/reach-us":     {},
}

var (
	emailRe = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)
	// Covers +1 555 123 4567, (555) 123-4567, 555.123.4567, and common
	// international groupings.
	phoneRe = regexp.MustCompile(`(?:\+?\d{1,3}[\s.-]?)?(?:\(\d{2,4}\)[\s.-]?)?\d{3,4}[\s.-]\d{3,4}(?:[\s.-]\d{2,4})?`)
	telRe   = regexp.MustCompile(`(?i)href\s*=\s*["']tel:([^"']+)["']`)
	// <number> <street name> <suffix>
	streetRe = regexp.MustCompile(`(?i)\b\d{1,5}\s+[A-Za-z][A-Za-z.\s]{2,40}\s+(?:street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|place|pl|way|plaza|square|strasse|stra\x{00df}e|rue|via|calle|camino)\b`)
)

// analyzeContact sums four independent signal channels: contact-page links,
// email addresses, phone numbers, and physical-address indicators.
func analyzeContact(in Input) outcome {
	raw := in.Page.RawMarkup
	var links []markup.Link
	text := raw
	if in.View != nil {
		links = in.View.Links()
		text = in.View.Text()
	}

	score := 0
	var evidence []string

	if href, ok := findContactLink(links, raw); ok {
		score += contactLinkPoints
		evidence = append(evidence, fmt.Sprintf("Contact page link found: %s", href))
	}

	if email, ok := findEmail(links, raw, text); ok {
		score += contactEmailPoints
		evidence = append(evidence, fmt.Sprintf("Email address found: %s", email))
	}

	if phone, ok := findPhone(links, raw, text); ok {
		score += contactPhonePoints
		evidence = append(evidence, fmt.Sprintf("Phone number found: %s", phone))
	}

	if addr, ok := findAddress(text); ok {
		score += contactAddressPoints
		evidence = append(evidence, fmt.Sprintf("Physical address indicator found: %s", addr))
	}

	if score == 0 {
		return outcome{
			score:      0,
			confidence: 80,
			evidence:   []string{"No contact information found"},
			recommendations: []string{
				"Add a dedicated contact page linked from every page",
				"Publish a contact email address",
				"List a phone number or physical address",
			},
		}
	}

	return outcome{
		score:      clamp(score),
		confidence: 80,
		evidence:   evidence,
	}
}

func findContactLink(links []markup.Link, raw string) (string, bool) {
	for _, link := range links {
		if isContactPath(link.Href) {
			return link.Href, true
		}
	}
	// Fallback scan for href attributes when no parsed links exist.
	if len(links) == 0 {
		for _, match := range regexp.MustCompile(`(?i)href\s*=\s*["']([^"']+)["']`).FindAllStringSubmatch(raw, -1) {
			if isContactPath(match[1]) {
				return match[1], true
			}
		}
	}
	return "", false
}

func isContactPath(href string) bool {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	path := strings.ToLower(strings.TrimSuffix(parsed.Path, "/"))
	if path == "" && parsed.Path != "" {
		path = "/"
	}
	_, ok := contactPagePaths[path]
	return ok
}

func findEmail(links []markup.Link, raw, text string) (string, bool) {
	for _, link := range links {
		if strings.HasPrefix(strings.ToLower(link.Href), "mailto:") {
			addr := strings.TrimPrefix(link.Href, "mailto:")
			addr = strings.SplitN(addr, "?", 2)[0]
			if emailRe.MatchString(addr) {
				return addr, true
			}
		}
	}
	if m := regexp.MustCompile(`(?i)mailto:([^"'?\s>]+)`).FindStringSubmatch(raw); m != nil {
		if emailRe.MatchString(m[1]) {
			return m[1], true
		}
	}
	if m := emailRe.FindString(text); m != "" {
		return m, true
	}
	return "", false
}

func findPhone(links []markup.Link, raw, text string) (string, bool) {
	for _, link := range links {
		if strings.HasPrefix(strings.ToLower(link.Href), "tel:") {
			if number := strings.TrimPrefix(link.Href, "tel:"); number != "" {
				return number, true
			}
		}
	}
	if m := telRe.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	if m := phoneRe.FindString(text); m != "" && digitCount(m) >= 7 {
		return strings.TrimSpace(m), true
	}
	return "", false
}

func findAddress(text string) (string, bool) {
	if m := streetRe.FindString(text); m != "" {
		return strings.TrimSpace(m), true
	}
	return "", false
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
