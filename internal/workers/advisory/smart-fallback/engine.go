// internal/workers/advisory/smart-fallback/engine.go
package smartfallback

import (
	"fmt"
	"strings"
	"unicode"

	"advisory-workers/internal/models"
)

type Route string

const (
	RouteStocks Route = "stocks"
	RouteFunds  Route = "funds"
	RouteBoth   Route = "both"
	RouteTip    Route = "tip"
)

var (
	intentTriggers = []string{
		"recommend", "recommends", "recommendation", "recommendations",
		"suggest", "suggestion", "suggestions",
		"best", "top", "picks",
		"give me", "show me", "which",
		"should i buy", "to buy", "what to buy",
		"where to invest", "where should i invest", "invest my money", "investment options",
	}
	stockKeywords = []string{
		"stock", "stocks", "share", "shares", "equity", "equities",
		"nifty", "sensex", "bse", "nse", "bluechip", "blue chip",
		"large cap", "largecap", "mid cap", "midcap", "small cap", "smallcap",
	}
	fundKeywords = []string{
		"mutual fund", "mutual funds", "mf", "mfs", "sip", "sips", "funds",
		"index fund", "index funds", "elss", "debt fund", "equity fund",
		"hybrid fund", "flexi cap",
	}
)

var sentimentMarkers = map[models.MarketSentiment]string{
	models.SentimentBullish: "📈 **Market Sentiment: BULLISH** - Positive news flow in financial markets",
	models.SentimentBearish: "📉 **Market Sentiment: BEARISH** - Negative news flow, consider defensive positions",
	models.SentimentNeutral: "➡️ **Market Sentiment: NEUTRAL** - Mixed signals in the market",
}

// Intent is the classification of a message by the three keyword families.
type Intent struct {
	Recommendation bool
	Stocks         bool
	Funds          bool
}

// Classify evaluates each keyword family independently on word boundaries.
func Classify(message string) Intent {
	norm := normalize(message)
	return Intent{
		Recommendation: containsAny(norm, intentTriggers),
		Stocks:         containsAny(norm, stockKeywords),
		Funds:          containsAny(norm, fundKeywords),
	}
}

func (i Intent) Route() Route {
	switch {
	case !i.Recommendation:
		return RouteTip
	case i.Stocks && !i.Funds:
		return RouteStocks
	case i.Funds && !i.Stocks:
		return RouteFunds
	default:
		return RouteBoth
	}
}

type Result struct {
	Text            string                     `json:"text"`
	Route           Route                      `json:"route"`
	Recommendations []models.RecommendationSet `json:"recommendations,omitempty"`
}

// Respond is deterministic: the same (message, tier, sentiment) always yields
// byte-identical text.
func Respond(message string, tier models.RiskTolerance, sentiment models.MarketSentiment) Result {
	tier = models.ParseRiskTolerance(string(tier))
	sentiment = models.ParseSentiment(string(sentiment))

	route := Classify(message).Route()
	if route == RouteTip {
		return Result{Text: selectTip(message, tier) + models.Disclaimer, Route: route}
	}

	var sets []models.RecommendationSet
	var bodies []string
	if route == RouteStocks || route == RouteBoth {
		p := stockPools[tier]
		defensive := sentiment == models.SentimentBearish
		if defensive {
			p = withDefensive(p)
		}
		sets = append(sets, flatten(models.KindStocks, tier, sentiment, defensive, p))
		bodies = append(bodies, render(fmt.Sprintf("**Stock Recommendations for %s Investors**", tier.Title()), p))
	}
	if route == RouteFunds || route == RouteBoth {
		p := fundPools[tier]
		sets = append(sets, flatten(models.KindFunds, tier, sentiment, false, p))
		bodies = append(bodies, render(fmt.Sprintf("**Mutual Fund Recommendations for %s Investors**", tier.Title()), p))
	}

	text := sentimentMarkers[sentiment] + "\n\n" + strings.Join(bodies, "\n\n---\n\n") + models.Disclaimer
	return Result{Text: text, Route: route, Recommendations: sets}
}

// withDefensive appends the defensive section, skipping names the tier pool already holds.
func withDefensive(p pool) pool {
	have := map[string]bool{}
	for _, s := range p {
		for _, r := range s.items {
			have[r.Name] = true
		}
	}

	extra := section{title: defensiveSupplement.title}
	for _, r := range defensiveSupplement.items {
		if !have[r.Name] {
			extra.items = append(extra.items, r)
		}
	}

	out := make(pool, len(p), len(p)+1)
	copy(out, p)
	if len(extra.items) > 0 {
		out = append(out, extra)
	}
	return out
}

func flatten(kind models.RecommendationKind, tier models.RiskTolerance, sentiment models.MarketSentiment, defensive bool, p pool) models.RecommendationSet {
	set := models.RecommendationSet{Kind: kind, Tier: tier, Sentiment: sentiment, Defensive: defensive}
	for _, s := range p {
		set.Items = append(set.Items, s.items...)
	}
	return set
}

func render(heading string, p pool) string {
	var b strings.Builder
	b.WriteString(heading)
	for _, s := range p {
		b.WriteString("\n\n### ")
		b.WriteString(s.title)
		b.WriteString("\n\n| Name | Category | Rationale |\n|------|----------|-----------|")
		for _, r := range s.items {
			fmt.Fprintf(&b, "\n| **%s** | %s | %s |", r.Name, r.Category, r.Rationale)
		}
	}
	return b.String()
}

func selectTip(message string, tier models.RiskTolerance) string {
	norm := normalize(message)
	for _, t := range tips {
		if !containsAny(norm, t.phrases) {
			continue
		}
		if t.generic {
			return t.text
		}
		return t.text + fmt.Sprintf("\n\n**Based on your %s risk profile**, %s", tier, tierAdvice[tier])
	}
	return defaultTip
}

// normalize lowercases message, turns punctuation into spaces and pads it so
// phrases can be matched on word boundaries with a plain substring search.
func normalize(message string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&' {
			return unicode.ToLower(r)
		}
		return ' '
	}, message)
	return " " + strings.Join(strings.Fields(mapped), " ") + " "
}

func containsAny(norm string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(norm, " "+p+" ") {
			return true
		}
	}
	return false
}
