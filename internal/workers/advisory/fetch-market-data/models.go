package fetchmarketdata

type Input struct {
	Symbols          []string `json:"symbols"`
	IncludeSentiment *bool    `json:"includeSentiment,omitempty"`
}

type Output struct {
	Snapshot
}
