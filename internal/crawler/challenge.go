package crawler

import (
	"strings"

	"github.com/sneakerdata/stockx-crawler/internal/parser"
)

// challengeHeading is the first-level heading the site's anti-bot
// interstitial renders, normalized for comparison.
const challengeHeading = "please verify you are a human"

// ChallengeDetector classifies a rendered page as blocked or normal.
type ChallengeDetector struct {
	parser *parser.StockXParser
}

func NewChallengeDetector(p *parser.StockXParser) *ChallengeDetector {
	return &ChallengeDetector{parser: p}
}

// Blocked reports whether the page is the challenge interstitial. A
// page without a first-level heading is a normal page: absence of a
// heading is evidence of ordinary content, not of a block.
func (d *ChallengeDetector) Blocked(html string) bool {
	heading := d.parser.Heading(html)
	if heading == "" {
		return false
	}

	normalized := strings.ToLower(strings.Join(strings.Fields(heading), " "))
	return normalized == challengeHeading
}
