// internal/workers/advisory/retrieve-knowledge/search.go
package retrieveknowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"advisory-workers/internal/models"
)

// EmbeddingField is the dense_vector field the knowledge index is built with.
const EmbeddingField = "embedding"

type knowledgeSource struct {
	DocID    string `json:"doc_id"`
	Seq      int64  `json:"seq"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Score  float64         `json:"_score"`
			Source knowledgeSource `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildKNNRequest(index string, vector []float32, k int) (*esapi.SearchRequest, error) {
	candidates := k * 10
	if candidates < 50 {
		candidates = 50
	}
	body, err := json.Marshal(map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          EmbeddingField,
			"query_vector":   vector,
			"k":              k,
			"num_candidates": candidates,
		},
		"_source": []string{"doc_id", "seq", "title", "category", "content"},
	})
	if err != nil {
		return nil, err
	}

	size := k
	return &esapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}, nil
}

func knnSearch(ctx context.Context, es *elasticsearch.Client, index string, vector []float32, k int) ([]models.RetrievedDocument, error) {
	req, err := buildKNNRequest(index, vector, k)
	if err != nil {
		return nil, err
	}

	res, err := req.Do(ctx, es)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("search %s: %s: %s", index, res.Status(), raw)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]models.RetrievedDocument, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id := h.Source.DocID
		if id == "" {
			id = h.ID
		}
		docs = append(docs, models.RetrievedDocument{
			ID:       id,
			Content:  h.Source.Content,
			Score:    cosineFromScore(h.Score),
			Sequence: h.Source.Seq,
			Metadata: map[string]string{"title": h.Source.Title, "category": h.Source.Category},
		})
	}
	return docs, nil
}

// cosineFromScore undoes Elasticsearch's cosine scoring, _score = (1 + cos) / 2,
// and clamps to [0, 1].
func cosineFromScore(score float64) float64 {
	cos := 2*score - 1
	switch {
	case cos < 0:
		return 0
	case cos > 1:
		return 1
	}
	return cos
}

// rank keeps documents at or above threshold, orders them by descending score
// with ties broken by sequence then id, and caps the result at k.
func rank(docs []models.RetrievedDocument, threshold float64, k int) []models.RetrievedDocument {
	kept := make([]models.RetrievedDocument, 0, len(docs))
	for _, d := range docs {
		if d.Score >= threshold {
			kept = append(kept, d)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		if kept[i].Sequence != kept[j].Sequence {
			return kept[i].Sequence < kept[j].Sequence
		}
		return kept[i].ID < kept[j].ID
	})
	if len(kept) > k {
		kept = kept[:k]
	}
	return kept
}
