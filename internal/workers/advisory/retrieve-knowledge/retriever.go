// internal/workers/advisory/retrieve-knowledge/retriever.go
package retrieveknowledge

import (
	"context"
	"strings"

	"advisory-workers/internal/common/database"
	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/models"
)

// Retriever runs similarity search over the knowledge index.
type Retriever struct {
	es        *database.ElasticsearchClient
	embedder  Embedder
	index     string
	topK      int
	threshold float64
}

func NewRetriever(es *database.ElasticsearchClient, embedder Embedder, config *Config) *Retriever {
	return &Retriever{
		es:        es,
		embedder:  embedder,
		index:     config.Index,
		topK:      config.TopK,
		threshold: config.ScoreThreshold,
	}
}

// Search returns at most k documents scoring at least the threshold, best
// first. Any embedding or search failure is reported as RETRIEVAL_UNAVAILABLE.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]models.RetrievedDocument, error) {
	if strings.TrimSpace(query) == "" {
		return []models.RetrievedDocument{}, nil
	}
	if k <= 0 || k > r.topK {
		k = r.topK
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, apperrors.NewRetrievalUnavailableError(err)
	}

	docs, err := knnSearch(ctx, r.es.Client, r.index, vector, k)
	if err != nil {
		return nil, apperrors.NewRetrievalUnavailableError(err)
	}
	return rank(docs, r.threshold, k), nil
}
