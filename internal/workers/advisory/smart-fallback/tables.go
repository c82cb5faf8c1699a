// internal/workers/advisory/smart-fallback/tables.go
package smartfallback

import "advisory-workers/internal/models"

type section struct {
	title string
	items []models.Recommendation
}

type pool []section

func rec(name, category, rationale string) models.Recommendation {
	return models.Recommendation{Name: name, Category: category, Rationale: rationale}
}

var stockPools = map[models.RiskTolerance]pool{
	models.RiskConservative: {
		{"Large Cap Blue Chips (70% of equity)", []models.Recommendation{
			rec("HDFC Bank", "Banking", "Largest private lender with a long record of steady return on equity"),
			rec("TCS", "IT Services", "Market leader with stable margins and a regular dividend"),
			rec("Hindustan Unilever", "FMCG", "Defensive consumer franchise with a wide brand portfolio"),
			rec("Asian Paints", "Paints", "Dominant market share and pricing power"),
			rec("Nestle India", "FMCG", "Recession-resistant demand, suited to staggered buying"),
		}},
		{"High Dividend Yield (30% of equity)", []models.Recommendation{
			rec("ITC", "FMCG/Hotels", "High payout with a growing consumer business"),
			rec("Coal India", "Mining", "Among the highest dividend yields in the large-cap space"),
			rec("Power Grid", "Power", "Regulated returns and predictable cash flows"),
			rec("ONGC", "Oil & Gas", "Consistent dividends and a hedge against crude prices"),
		}},
	},
	models.RiskModerate: {
		{"Core Large Caps (50%)", []models.Recommendation{
			rec("Reliance Industries", "Conglomerate", "Telecom and retail growth backed by refining cash flows"),
			rec("ICICI Bank", "Banking", "Strong asset quality and digital distribution"),
			rec("Infosys", "IT Services", "Large deal wins and investment in AI services"),
			rec("Bharti Airtel", "Telecom", "5G rollout and improving revenue per user"),
			rec("Larsen & Toubro", "Infrastructure", "Large order book and execution record"),
		}},
		{"Mid Cap Growth (30%)", []models.Recommendation{
			rec("Tata Elxsi", "IT Services", "Automotive software and media engineering"),
			rec("Coforge", "IT Services", "Healthy deal pipeline focused on financial services"),
			rec("Max Healthcare", "Healthcare", "Hospital capacity expansion with rising occupancy"),
			rec("Tube Investments", "Auto Ancillary", "Diversifying into electric vehicle components"),
		}},
		{"Tactical Picks (20%)", []models.Recommendation{
			rec("Tata Motors", "Auto", "Domestic EV leadership and a recovering luxury arm"),
			rec("SBI", "Banking", "Reasonable valuation with stable margins"),
			rec("NTPC", "Power", "Renewable capacity additions"),
			rec("HAL", "Defence", "Multi-year order visibility from indigenisation"),
		}},
	},
	models.RiskAggressive: {
		{"Growth Stocks (40%)", []models.Recommendation{
			rec("Trent", "Retail", "Rapid store expansion driving revenue growth"),
			rec("Zomato", "Food Tech", "Category leader moving towards sustained profitability"),
			rec("Dixon Technologies", "Electronics", "Manufacturing incentives and export contracts"),
			rec("Persistent Systems", "IT", "Digital transformation deal momentum"),
			rec("Polycab", "Cables", "Beneficiary of infrastructure and housing spend"),
		}},
		{"Mid Cap Opportunities (35%)", []models.Recommendation{
			rec("KEI Industries", "Cables", "Real estate revival and export growth"),
			rec("Astral", "Pipes", "Brand-led building materials franchise"),
			rec("APL Apollo", "Steel Tubes", "Market leader tied to infrastructure build-out"),
			rec("KPIT Technologies", "Auto Tech", "Software partner for the EV transition"),
		}},
		{"High Risk, High Reward (25%)", []models.Recommendation{
			rec("PB Fintech", "Fintech", "Insurance distribution platform nearing profitability"),
			rec("Delhivery", "Logistics", "Operating leverage as parcel volumes scale"),
		}},
	},
}

// defensiveSupplement is added to the stock pool, never replacing it, when
// market sentiment is bearish.
var defensiveSupplement = section{
	title: "Defensive Additions (bearish market)",
	items: []models.Recommendation{
		rec("Hindustan Unilever", "FMCG", "Staple demand holds up in downturns"),
		rec("ITC", "FMCG", "Cash-rich with a high payout"),
		rec("Nestle India", "FMCG", "Low earnings volatility"),
		rec("Sun Pharma", "Pharma", "Healthcare spending is largely non-discretionary"),
		rec("Power Grid", "Utilities", "Regulated earnings insulated from the cycle"),
	},
}

var fundPools = map[models.RiskTolerance]pool{
	models.RiskConservative: {
		{"Debt Funds (60%)", []models.Recommendation{
			rec("HDFC Short Term Debt Fund", "Short Duration", "Low volatility core"),
			rec("ICICI Pru Corporate Bond Fund", "Corporate Bond", "High-quality issuers"),
			rec("SBI Magnum Gilt Fund", "Gilt", "Sovereign credit, no default risk"),
		}},
		{"Balanced Advantage (25%)", []models.Recommendation{
			rec("ICICI Pru Balanced Advantage", "Balanced Advantage", "Rebalances equity and debt automatically"),
			rec("HDFC Balanced Advantage", "Balanced Advantage", "Consistent long-run performer"),
		}},
		{"Large Cap Index (15%)", []models.Recommendation{
			rec("UTI Nifty 50 Index Fund", "Index", "Low-cost core equity exposure"),
			rec("HDFC Index Nifty 50", "Index", "Low expense ratio"),
		}},
	},
	models.RiskModerate: {
		{"Large Cap Core (35%)", []models.Recommendation{
			rec("Mirae Asset Large Cap", "Large Cap", "Diversified large-cap portfolio"),
			rec("UTI Nifty 50 Index Fund", "Index", "Low-cost market exposure"),
			rec("Canara Robeco Bluechip", "Large Cap", "Quality-focused stock selection"),
		}},
		{"Flexi Cap (30%)", []models.Recommendation{
			rec("Parag Parikh Flexi Cap", "Flexi Cap", "Value style with international holdings"),
			rec("HDFC Flexi Cap Fund", "Flexi Cap", "Large, consistent fund"),
		}},
		{"Mid Cap Growth (20%)", []models.Recommendation{
			rec("Kotak Emerging Equity", "Mid Cap", "Quality mid-cap companies"),
			rec("Axis Mid Cap Fund", "Mid Cap", "Growth-oriented mid-cap selection"),
		}},
		{"Debt Stability (15%)", []models.Recommendation{
			rec("HDFC Short Term Debt Fund", "Short Duration", "Stability anchor"),
			rec("ICICI Pru Corporate Bond Fund", "Corporate Bond", "Alternative to fixed deposits"),
		}},
	},
	models.RiskAggressive: {
		{"Small & Mid Cap (40%)", []models.Recommendation{
			rec("Quant Small Cap Fund", "Small Cap", "High-conviction small-cap strategy"),
			rec("Nippon India Small Cap", "Small Cap", "Broad small-cap diversification"),
			rec("Kotak Emerging Equity", "Mid Cap", "Quality mid-cap companies"),
		}},
		{"Flexi & Multi Cap (35%)", []models.Recommendation{
			rec("Parag Parikh Flexi Cap", "Flexi Cap", "International exposure"),
			rec("Quant Active Fund", "Multi Cap", "Momentum-driven allocation"),
			rec("HDFC Flexi Cap Fund", "Flexi Cap", "Long track record"),
		}},
		{"Sectoral & Thematic (25%)", []models.Recommendation{
			rec("ICICI Pru Technology", "Technology", "Digital adoption theme"),
			rec("Nippon India Pharma", "Healthcare", "Defensive growth"),
			rec("Invesco India PSU Equity", "PSU", "Government capital expenditure theme"),
		}},
	},
}

type tip struct {
	phrases []string
	text    string
	// generic tips are not personalised by tier
	generic bool
}

// Ordered: the first tip whose phrase matches wins.
var tips = []tip{
	{phrases: []string{"retire", "retirement", "pension", "nps"}, text: "**Retirement Planning**\n\n" +
		"1. Estimate monthly expenses in retirement and grow them for inflation at 6-7% a year.\n" +
		"2. Plan for 25-30 years after you stop working.\n" +
		"3. Use NPS, PPF and EPF for tax-advantaged saving, and equity funds for long-term growth.\n" +
		"4. Aim to set aside 15-20% of income and shift towards debt as retirement approaches."},
	{phrases: []string{"tax", "taxes", "80c", "elss"}, text: "**Tax Saving**\n\n" +
		"1. Section 80C allows up to Rs.1.5 lakh through ELSS funds, PPF, life cover premiums and tax-saving FDs.\n" +
		"2. Section 80CCD(1B) adds Rs.50,000 for NPS contributions, and 80D covers health insurance.\n" +
		"3. Hold equity for more than a year to qualify for long-term capital gains treatment."},
	{phrases: []string{"emergency fund", "emergency", "rainy day"}, text: "**Emergency Fund**\n\n" +
		"1. Keep 3-6 months of expenses, more if income is irregular or you have dependents.\n" +
		"2. Park it in a savings account, liquid funds or short fixed deposits.\n" +
		"3. Build it before investing and use it only for genuine emergencies."},
	{phrases: []string{"budget", "budgeting", "save", "saving", "expenses"}, text: "**Budgeting with 50/30/20**\n\n" +
		"1. 50% for needs: rent or EMI, groceries, utilities, insurance.\n" +
		"2. 30% for wants: dining out, entertainment, travel.\n" +
		"3. 20% for savings and investments, automated on payday."},
	{phrases: []string{"sip", "sips", "systematic investment"}, text: "**Systematic Investment Plans**\n\n" +
		"1. A SIP invests a fixed amount every month, buying more units when prices are low.\n" +
		"2. It builds discipline and lets compounding work; you can start with Rs.500 a month.\n" +
		"3. Stay invested for at least 5-7 years and raise the amount as income grows."},
	{phrases: []string{"mutual fund", "mutual funds", "mf", "index fund", "funds"}, text: "**Mutual Funds**\n\n" +
		"1. Equity funds aim for growth, debt funds for stability, hybrid funds mix both.\n" +
		"2. Index funds track a market index at low cost.\n" +
		"3. Compare expense ratio, 3-5 year returns and fund manager record before choosing."},
	{phrases: []string{"goal", "goals", "target", "education", "house"}, text: "**Goal-Based Planning**\n\n" +
		"1. Under 3 years: fixed deposits, liquid and debt funds.\n" +
		"2. 3-7 years: hybrid funds and conservative equity.\n" +
		"3. Over 7 years: diversified equity funds through SIPs.\n" +
		"4. Put a number and a date on each goal, then work out the monthly amount needed."},
	{phrases: []string{"investment", "investing", "invest"}, text: "**Investment Basics**\n\n" +
		"1. Diversify across equity for growth, debt for stability and gold as an inflation hedge.\n" +
		"2. A common split is 30/60/10 (conservative), 50/40/10 (moderate) or 70/20/10 (aggressive) across equity, debt and gold.\n" +
		"3. Mutual fund SIPs, PPF, NPS and ELSS are the usual building blocks."},
	{phrases: []string{"stock", "stocks", "share", "shares", "equity"}, text: "**Investing in Stocks**\n\n" +
		"1. Build an emergency fund first and invest only money you will not need for 5+ years.\n" +
		"2. Look at P/E, P/B, dividend yield and debt to equity before buying.\n" +
		"3. Diversify across sectors and avoid borrowing to invest."},
	{phrases: []string{"hello", "hi", "hey", "namaste"}, generic: true, text: "Hello! I can help with investment planning, " +
		"budgeting, goal planning and tax saving. What would you like to know?"},
	{phrases: []string{"help"}, generic: true, text: "**What you can ask me**\n\n" +
		"- \"Recommend some stocks for me\"\n" +
		"- \"Which mutual funds should I start a SIP in?\"\n" +
		"- \"How much do I need for retirement?\"\n" +
		"- \"How can I save tax under 80C?\""},
}

const defaultTip = "**Getting Started**\n\n" +
	"I can help with stock and mutual fund recommendations, SIP planning, goal planning and tax saving.\n" +
	"Try asking \"Give me stock recommendations\" or \"How should I plan for retirement?\""

var tierAdvice = map[models.RiskTolerance]string{
	models.RiskConservative: "focus on debt instruments and stable, income-generating investments.",
	models.RiskModerate:     "a balanced mix of equity and debt should suit you well.",
	models.RiskAggressive:   "you can consider a higher equity allocation for growth.",
}
