package guardrailcheck

type Mode string

const (
	ModeInput  Mode = "input"
	ModeOutput Mode = "output"
)

type Input struct {
	Mode Mode   `json:"mode"`
	Text string `json:"text"`
}

type Output struct {
	Passed      bool   `json:"passed"`
	Text        string `json:"text"`
	Topic       string `json:"topic,omitempty"`
	Replaced    bool   `json:"replaced,omitempty"`
	RiskWarning bool   `json:"riskWarning,omitempty"`
}
