package extractsymbols

type Input struct {
	Message string `json:"message"`
}

type Output struct {
	Symbols []string `json:"symbols"`
}
