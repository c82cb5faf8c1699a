package smartfallback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisory-workers/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		message string
		want    Route
	}{
		{"recommend some stocks", RouteStocks},
		{"Recommend mutual funds", RouteFunds},
		{"which SIP or shares should I pick?", RouteBoth},
		{"give me something to invest in", RouteBoth},
		{"where should I invest my bonus", RouteBoth},
		{"what is a SIP", RouteTip},
		{"how do stocks work", RouteTip},
		{"this is a test", RouteTip},
		{"bestseller books", RouteTip},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.message).Route())
		})
	}
}

func TestRespond_ScenarioModerateBullishStocks(t *testing.T) {
	res := Respond("recommend some stocks", models.RiskModerate, models.SentimentBullish)

	assert.Equal(t, RouteStocks, res.Route)
	assert.True(t, strings.HasPrefix(res.Text, sentimentMarkers[models.SentimentBullish]))
	assert.True(t, strings.HasSuffix(res.Text, models.Disclaimer))
	assert.Contains(t, res.Text, "Stock Recommendations for Moderate Investors")
	assert.Contains(t, res.Text, "**Reliance Industries**")
	assert.NotContains(t, res.Text, defensiveSupplement.title)
	assert.NotContains(t, res.Text, "Mutual Fund Recommendations")

	require.Len(t, res.Recommendations, 1)
	set := res.Recommendations[0]
	assert.False(t, set.Defensive)
	assert.Equal(t, flatten(models.KindStocks, models.RiskModerate, models.SentimentBullish, false, stockPools[models.RiskModerate]).Items, set.Items)
}

func TestRespond_ScenarioConservativeBearishFunds(t *testing.T) {
	res := Respond("recommend mutual funds", models.RiskConservative, models.SentimentBearish)

	assert.Equal(t, RouteFunds, res.Route)
	assert.True(t, strings.HasPrefix(res.Text, sentimentMarkers[models.SentimentBearish]))
	assert.True(t, strings.HasSuffix(res.Text, models.Disclaimer))
	assert.Contains(t, res.Text, "Mutual Fund Recommendations for Conservative Investors")
	assert.NotContains(t, res.Text, "Stock Recommendations")
	assert.NotContains(t, res.Text, defensiveSupplement.title)
}

func TestRespond_BearishAugmentsStocksWithoutDuplicates(t *testing.T) {
	res := Respond("best stocks to buy", models.RiskConservative, models.SentimentBearish)
	require.Len(t, res.Recommendations, 1)
	set := res.Recommendations[0]
	assert.True(t, set.Defensive)

	counts := map[string]int{}
	for _, r := range set.Items {
		counts[r.Name]++
	}
	for name, n := range counts {
		assert.Equal(t, 1, n, "duplicate %s", name)
	}
	assert.Equal(t, 1, counts["Sun Pharma"])
	assert.Equal(t, len(flatten(models.KindStocks, "", "", false, stockPools[models.RiskConservative]).Items)+1, len(set.Items))

	// the tier pool keeps its character: every original pick is still there, in order
	for i, r := range stockPools[models.RiskConservative][0].items {
		assert.Equal(t, r, set.Items[i])
	}
}

func TestRespond_BothTablesStocksFirst(t *testing.T) {
	res := Respond("suggest where to invest", models.RiskAggressive, models.SentimentNeutral)
	assert.Equal(t, RouteBoth, res.Route)
	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, models.KindStocks, res.Recommendations[0].Kind)
	assert.Equal(t, models.KindFunds, res.Recommendations[1].Kind)
	assert.Less(t, strings.Index(res.Text, "Stock Recommendations"), strings.Index(res.Text, "Mutual Fund Recommendations"))
}

func TestRespond_Tips(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		contains    string
		personalise bool
	}{
		{"sip question", "what is a SIP?", "Systematic Investment Plans", true},
		{"retirement", "How should I plan for retirement", "Retirement Planning", true},
		{"tax", "how to save tax", "Tax Saving", true},
		{"greeting", "hi there", "Hello!", false},
		{"nothing matches", "tell me a joke", "Getting Started", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Respond(tt.message, models.RiskAggressive, models.SentimentBearish)
			assert.Equal(t, RouteTip, res.Route)
			assert.Contains(t, res.Text, tt.contains)
			assert.Empty(t, res.Recommendations)
			assert.True(t, strings.HasSuffix(res.Text, models.Disclaimer))
			assert.NotContains(t, res.Text, "Market Sentiment")
			assert.Equal(t, tt.personalise, strings.Contains(res.Text, "Based on your aggressive risk profile"))
		})
	}
}

func TestRespond_Deterministic(t *testing.T) {
	messages := []string{"recommend some stocks", "best funds", "what is a SIP", "give me picks"}
	tiers := []models.RiskTolerance{models.RiskConservative, models.RiskModerate, models.RiskAggressive}
	sentiments := []models.MarketSentiment{models.SentimentBullish, models.SentimentBearish, models.SentimentNeutral}

	for _, m := range messages {
		for _, tier := range tiers {
			for _, s := range sentiments {
				first := Respond(m, tier, s)
				for i := 0; i < 3; i++ {
					assert.Equal(t, first, Respond(m, tier, s))
				}
			}
		}
	}
}

func TestRespond_UnknownTierAndSentimentDefault(t *testing.T) {
	res := Respond("recommend stocks", "yolo", "")
	assert.True(t, strings.HasPrefix(res.Text, sentimentMarkers[models.SentimentNeutral]))
	assert.Equal(t, models.RiskModerate, res.Recommendations[0].Tier)
}
