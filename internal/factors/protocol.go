package factors

import (
	"net/url"
	"strings"
)

// analyzeProtocol scores 100 for https URLs and 0 for anything else. The
// scheme is unambiguous, so confidence is always 100.
func analyzeProtocol(in Input) outcome {
	raw := strings.TrimSpace(in.Page.URL)
	if raw == "" {
		return outcome{
			score:      0,
			confidence: 100,
			evidence:   []string{"No URL available to check"},
			recommendations: []string{
				"Serve the page over HTTPS so crawlers and browsers can trust it",
			},
		}
	}

	parsed, err := url.Parse(raw)
	if err == nil && strings.EqualFold(parsed.Scheme, "https") {
		return outcome{
			score:      100,
			confidence: 100,
			evidence:   []string{"Page is served over HTTPS"},
		}
	}
	return outcome{
		score:      0,
		confidence: 100,
		evidence:   []string{"Page is not served over HTTPS"},
		recommendations: []string{
			"Serve the page over HTTPS so crawlers and browsers can trust it",
		},
	}
}
