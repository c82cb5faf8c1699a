package retrieveknowledge

import "advisory-workers/internal/models"

type Input struct {
	Query string `json:"query"`
	TopK  int    `json:"topK,omitempty"`
}

type Output struct {
	Documents []models.RetrievedDocument `json:"documents"`
	Available bool                       `json:"retrievalAvailable"`
}
