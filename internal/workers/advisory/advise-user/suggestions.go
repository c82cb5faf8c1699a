package adviseuser

import "advisory-workers/internal/models"

const maxSuggestions = 8

var baseSuggestions = []string{
	"How should I allocate my investments based on my risk profile?",
	"What's the difference between mutual funds and ETFs?",
	"How much should I save for retirement?",
	"Should I pay off debt or invest first?",
	"What are the best tax-saving investment options?",
}

// FollowUps returns the questions offered after a reply, personalised by
// whatever the profile records. A nil profile gets the generic set, and an
// unset age adds nothing.
func FollowUps(p *models.UserProfile) []string {
	out := make([]string, 0, maxSuggestions)
	if p != nil && !p.HasEmergencyFund {
		out = append(out, "How do I build an emergency fund?")
	}
	out = append(out, baseSuggestions...)
	if p == nil {
		return out
	}

	switch p.Tier() {
	case models.RiskConservative:
		out = append(out, "What are safe investment options for conservative investors?")
	case models.RiskAggressive:
		out = append(out, "What high-growth investment options should I consider?")
	}
	switch {
	case p.Age > 0 && p.Age < 35:
		out = append(out, "How should young investors approach wealth building?")
	case p.Age > 50:
		out = append(out, "How should I plan for retirement in the next 10-15 years?")
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
