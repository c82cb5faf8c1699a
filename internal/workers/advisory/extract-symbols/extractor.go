// internal/workers/advisory/extract-symbols/extractor.go
package extractsymbols

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9&]{1,9}\b`)

// DefaultAllowlist covers the large NSE names the fallback tables mention plus
// common US tickers.
var DefaultAllowlist = []string{
	"RELIANCE", "TCS", "INFY", "HDFCBANK", "ICICIBANK", "SBIN", "ITC", "HINDUNILVR",
	"BHARTIARTL", "LT", "KOTAKBANK", "AXISBANK", "ASIANPAINT", "MARUTI", "TITAN",
	"NESTLEIND", "SUNPHARMA", "POWERGRID", "NTPC", "ONGC", "COALINDIA", "WIPRO",
	"HCLTECH", "BAJFINANCE", "TATAMOTORS", "TATASTEEL", "M&M", "TRENT", "ZOMATO",
	"DIXON", "POLYCAB", "PERSISTENT", "DMART",
	"AAPL", "MSFT", "GOOGL", "AMZN", "META", "NVDA", "TSLA", "NFLX", "JPM",
}

// Extractor matches uppercase ticker-shaped tokens against an allowlist.
type Extractor struct {
	allowed map[string]struct{}
	limit   int
}

// NewExtractor builds an extractor; limit <= 0 means no cap.
func NewExtractor(allowlist []string, limit int) *Extractor {
	if len(allowlist) == 0 {
		allowlist = DefaultAllowlist
	}
	allowed := make(map[string]struct{}, len(allowlist))
	for _, s := range allowlist {
		allowed[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	return &Extractor{allowed: allowed, limit: limit}
}

// Extract returns allowlisted symbols in order of first appearance, without
// duplicates. Unknown tokens are dropped silently.
func (e *Extractor) Extract(text string) []string {
	symbols := []string{}
	seen := map[string]bool{}
	for _, tok := range tokenPattern.FindAllString(text, -1) {
		if seen[tok] {
			continue
		}
		if _, ok := e.allowed[tok]; !ok {
			continue
		}
		seen[tok] = true
		symbols = append(symbols, tok)
		if e.limit > 0 && len(symbols) == e.limit {
			break
		}
	}
	return symbols
}
