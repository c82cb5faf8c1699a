// internal/workers/advisory/assemble-context/assembler.go
package assemblecontext

import (
	"fmt"
	"strings"

	"advisory-workers/internal/finance"
	"advisory-workers/internal/models"
)

const sectionSeparator = "\n\n---\n\n"

// Payload is the structured prompt context. Empty sections are left blank and
// dropped when rendered.
type Payload struct {
	Profile   string `json:"profile,omitempty"`
	Knowledge string `json:"knowledge,omitempty"`
	Market    string `json:"market,omitempty"`
}

// String renders the sections in fixed order: profile, knowledge, market.
func (p Payload) String() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Profile, p.Knowledge, p.Market} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sectionSeparator)
}

func (p Payload) Empty() bool {
	return p.Profile == "" && p.Knowledge == "" && p.Market == ""
}

// Assemble is pure: the same inputs always render the same payload.
func Assemble(profile *models.UserProfile, docs []models.RetrievedDocument, quotes []models.MarketQuote) Payload {
	return Payload{
		Profile:   profileSection(profile),
		Knowledge: knowledgeSection(docs),
		Market:    marketSection(quotes),
	}
}

func profileSection(p *models.UserProfile) string {
	if p == nil {
		return ""
	}
	alloc := finance.RecommendedAllocation(*p)

	var b strings.Builder
	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Age: %d\n", p.Age)
	fmt.Fprintf(&b, "- Annual Income: %s\n", money(p.AnnualIncome))
	fmt.Fprintf(&b, "- Risk Tolerance: %s\n", p.Tier())
	fmt.Fprintf(&b, "- Investment Horizon: %d years\n", p.InvestmentHorizon)
	if len(p.Goals) > 0 {
		fmt.Fprintf(&b, "- Financial Goals: %s\n", strings.Join(p.Goals, ", "))
	}
	fmt.Fprintf(&b, "- Current Savings: %s\n", money(p.Savings))
	if p.Debt > 0 {
		fmt.Fprintf(&b, "- Debt: %s\n", money(p.Debt))
	}
	fmt.Fprintf(&b, "- Monthly Investment Capacity: %s\n", money(p.MonthlyInvestment))
	fmt.Fprintf(&b, "- Emergency Fund: %s\n", yesNo(p.HasEmergencyFund))
	fmt.Fprintf(&b, "- Retirement Account: %s\n", yesNo(p.HasRetirementAccount))
	fmt.Fprintf(&b, "- Risk Score: %d/10\n", finance.RiskScore(*p))
	fmt.Fprintf(&b, "- Suggested Allocation (%s): %d%% stocks, %d%% bonds, %d%% cash, %d%% alternatives",
		alloc.Profile, alloc.Stocks, alloc.Bonds, alloc.Cash, alloc.Alternatives)
	return b.String()
}

func knowledgeSection(docs []models.RetrievedDocument) string {
	if len(docs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Relevant Financial Knowledge:\n")
	for _, d := range docs {
		b.WriteString("\n")
		if title := d.Metadata["title"]; title != "" {
			b.WriteString(title + ": ")
		}
		b.WriteString(strings.TrimSpace(d.Content))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func marketSection(quotes []models.MarketQuote) string {
	if len(quotes) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(quotes))
	for _, q := range quotes {
		lines := []string{
			fmt.Sprintf("Market data for %s:", q.Symbol),
			fmt.Sprintf("Current Price: %.2f (%+.2f%% change)", q.Price, q.ChangePercent),
		}
		if q.Name != "" {
			company := "Company: " + q.Name
			if q.Sector != "" {
				company += " (" + q.Sector + ")"
			}
			lines = append(lines, company)
		}
		if q.PERatio != nil {
			lines = append(lines, fmt.Sprintf("P/E Ratio: %.2f", *q.PERatio))
		}
		if !q.AsOf.IsZero() {
			lines = append(lines, "As of: "+q.AsOf.Format("2006-01-02"))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
