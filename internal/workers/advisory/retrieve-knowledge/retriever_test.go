package retrieveknowledge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisory-workers/internal/common/config"
	"advisory-workers/internal/common/database"
	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/common/logger"
	"advisory-workers/internal/models"
)

type stubEmbedder struct {
	calls atomic.Int32
	err   error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []float32{float32(len(text)), 0.5, -0.25}, nil
}

type hit struct {
	id    string
	seq   int64
	score float64
}

// newFakeES serves kNN searches with fixed hits and records the last request body.
func newFakeES(t *testing.T, hits []hit, status int, lastBody *map[string]interface{}) *database.ElasticsearchClient {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if !strings.HasSuffix(r.URL.Path, "/_search") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if lastBody != nil {
			_ = json.NewDecoder(r.Body).Decode(lastBody)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"type":"search_phase_execution_exception"}}`))
			return
		}

		out := []map[string]interface{}{}
		for _, h := range hits {
			out = append(out, map[string]interface{}{
				"_id":    "es-" + h.id,
				"_score": h.score,
				"_source": map[string]interface{}{
					"doc_id": h.id, "seq": h.seq, "title": "T " + h.id, "category": "basics", "content": "content " + h.id,
				},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"hits": map[string]interface{}{"hits": out}})
	}))
	t.Cleanup(srv.Close)

	es, err := database.NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)
	return es
}

func TestRetriever_SearchFiltersSortsAndCaps(t *testing.T) {
	// _score 0.9 -> cosine 0.8, 0.6 -> 0.2 (below threshold), 0.75 -> 0.5
	hits := []hit{
		{"b", 2, 0.75},
		{"low", 1, 0.6},
		{"a", 3, 0.9},
		{"c", 1, 0.75},
		{"d", 4, 0.7},
	}
	var body map[string]interface{}
	es := newFakeES(t, hits, http.StatusOK, &body)
	r := NewRetriever(es, &stubEmbedder{}, LoadConfig())

	docs, err := r.Search(context.Background(), "what is an index fund", 0)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "a", docs[0].ID)
	assert.InDelta(t, 0.8, docs[0].Score, 1e-9)
	// equal scores: lower sequence first
	assert.Equal(t, "c", docs[1].ID)
	assert.Equal(t, "b", docs[2].ID)
	for i, d := range docs {
		assert.GreaterOrEqual(t, d.Score, 0.3)
		if i > 0 {
			assert.GreaterOrEqual(t, docs[i-1].Score, d.Score)
		}
	}
	assert.Equal(t, "T a", docs[0].Metadata["title"])

	knn := body["knn"].(map[string]interface{})
	assert.Equal(t, EmbeddingField, knn["field"])
	assert.EqualValues(t, 3, knn["k"])
}

func TestRetriever_FailuresAreRetrievalUnavailable(t *testing.T) {
	t.Run("search error", func(t *testing.T) {
		es := newFakeES(t, nil, http.StatusInternalServerError, nil)
		_, err := NewRetriever(es, &stubEmbedder{}, LoadConfig()).Search(context.Background(), "q", 3)
		assert.True(t, errors.Is(err, apperrors.ErrRetrievalUnavailable))
	})

	t.Run("embedding error", func(t *testing.T) {
		es := newFakeES(t, nil, http.StatusOK, nil)
		_, err := NewRetriever(es, &stubEmbedder{err: errors.New("ollama down")}, LoadConfig()).Search(context.Background(), "q", 3)
		assert.True(t, errors.Is(err, apperrors.ErrRetrievalUnavailable))
	})
}

func TestRank(t *testing.T) {
	docs := []models.RetrievedDocument{
		{ID: "x", Score: 0.3, Sequence: 1},
		{ID: "y", Score: 0.29999, Sequence: 0},
		{ID: "w", Score: 0.3, Sequence: 1},
	}
	got := rank(docs, 0.3, 3)
	require.Len(t, got, 2)
	assert.Equal(t, "w", got[0].ID)
	assert.Equal(t, "x", got[1].ID)
}

func TestCosineFromScore(t *testing.T) {
	assert.Equal(t, 0.0, cosineFromScore(0.2))
	assert.Equal(t, 1.0, cosineFromScore(1.2))
	assert.InDelta(t, 0.5, cosineFromScore(0.75), 1e-12)
}

func TestCachedEmbedder(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	inner := &stubEmbedder{}
	c := NewCachedEmbedder(inner, database.NewRedisFromClient(rdb), "all-minilm", time.Hour, logger.NewTestLogger(t))

	first, err := c.Embed(context.Background(), "sip basics")
	require.NoError(t, err)
	second, err := c.Embed(context.Background(), "sip basics")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.calls.Load())
	assert.True(t, mr.Exists(c.key("sip basics")))

	mr.FastForward(2 * time.Hour)
	_, err = c.Embed(context.Background(), "sip basics")
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedEmbedder_CacheDownStillEmbeds(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })
	mr.Close()

	inner := &stubEmbedder{}
	c := NewCachedEmbedder(inner, database.NewRedisFromClient(rdb), "m", time.Hour, logger.NewTestLogger(t))
	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, 3)
}

func TestHandler_ExecuteDegrades(t *testing.T) {
	es := newFakeES(t, nil, http.StatusServiceUnavailable, nil)
	h := NewHandler(LoadConfig(), NewRetriever(es, &stubEmbedder{}, LoadConfig()), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Query: "retirement"})
	require.NoError(t, err)
	assert.False(t, out.Available)
	assert.Empty(t, out.Documents)
}
