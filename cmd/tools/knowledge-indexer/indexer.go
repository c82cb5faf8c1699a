// cmd/tools/knowledge-indexer/indexer.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"advisory-workers/internal/common/database"
	retrieveknowledge "advisory-workers/internal/workers/advisory/retrieve-knowledge"
)

type KnowledgeBase struct {
	Version   string          `json:"version"`
	Documents []KnowledgeItem `json:"documents"`
}

type KnowledgeItem struct {
	DocID    string `json:"docId"`
	Seq      int64  `json:"seq"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

func loadKnowledgeBase(path string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var kb KnowledgeBase
	if err := json.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &kb, nil
}

func validateKnowledgeBase(kb *KnowledgeBase) error {
	if len(kb.Documents) == 0 {
		return fmt.Errorf("knowledge base contains no documents")
	}
	ids := map[string]bool{}
	seqs := map[int64]string{}
	for i, d := range kb.Documents {
		switch {
		case d.DocID == "":
			return fmt.Errorf("document %d: docId is required", i)
		case d.Title == "" || d.Content == "":
			return fmt.Errorf("document %s: title and content are required", d.DocID)
		case d.Seq < 0:
			return fmt.Errorf("document %s: seq must not be negative", d.DocID)
		}
		if ids[d.DocID] {
			return fmt.Errorf("duplicate docId %q", d.DocID)
		}
		if other, ok := seqs[d.Seq]; ok {
			return fmt.Errorf("documents %s and %s share seq %d", other, d.DocID, d.Seq)
		}
		ids[d.DocID] = true
		seqs[d.Seq] = d.DocID
	}
	return nil
}

// indexMapping stores embeddings as a cosine dense_vector so the retriever
// can turn _score back into a cosine similarity.
func indexMapping(dims int) map[string]interface{} {
	return map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"doc_id":   map[string]string{"type": "keyword"},
				"seq":      map[string]string{"type": "long"},
				"title":    map[string]string{"type": "text"},
				"category": map[string]string{"type": "keyword"},
				"content":  map[string]string{"type": "text"},
				retrieveknowledge.EmbeddingField: map[string]interface{}{
					"type":       "dense_vector",
					"dims":       dims,
					"index":      true,
					"similarity": "cosine",
				},
			},
		},
	}
}

type Indexer struct {
	es       *database.ElasticsearchClient
	embedder retrieveknowledge.Embedder
	index    string
	retries  uint64
	interval time.Duration
}

func NewIndexer(es *database.ElasticsearchClient, embedder retrieveknowledge.Embedder, index string) *Indexer {
	return &Indexer{es: es, embedder: embedder, index: index, retries: 3, interval: 500 * time.Millisecond}
}

// Run embeds every document, creates the index when missing (or always, with
// recreate) and writes the documents. It returns the number written.
func (ix *Indexer) Run(ctx context.Context, kb *KnowledgeBase, recreate bool) (int, error) {
	vectors := make([][]float32, len(kb.Documents))
	for i, d := range kb.Documents {
		vec, err := ix.embedder.Embed(ctx, d.Title+"\n"+d.Content)
		if err != nil {
			return 0, fmt.Errorf("embed %s: %w", d.DocID, err)
		}
		if i > 0 && len(vec) != len(vectors[0]) {
			return 0, fmt.Errorf("embed %s: got %d dims, want %d", d.DocID, len(vec), len(vectors[0]))
		}
		vectors[i] = vec
	}

	if err := ix.ensureIndex(ctx, len(vectors[0]), recreate); err != nil {
		return 0, err
	}

	for i, d := range kb.Documents {
		body, err := json.Marshal(map[string]interface{}{
			"doc_id":                         d.DocID,
			"seq":                            d.Seq,
			"title":                          d.Title,
			"category":                       d.Category,
			"content":                        d.Content,
			retrieveknowledge.EmbeddingField: vectors[i],
		})
		if err != nil {
			return i, err
		}
		req := esapi.IndexRequest{Index: ix.index, DocumentID: d.DocID, Body: bytes.NewReader(body)}
		if err := ix.do(ctx, "index "+d.DocID, func() (*esapi.Response, error) {
			req.Body = bytes.NewReader(body)
			return req.Do(ctx, ix.es.Client)
		}); err != nil {
			return i, err
		}
	}

	refresh := esapi.IndicesRefreshRequest{Index: []string{ix.index}}
	if err := ix.do(ctx, "refresh", func() (*esapi.Response, error) { return refresh.Do(ctx, ix.es.Client) }); err != nil {
		return len(kb.Documents), err
	}
	return len(kb.Documents), nil
}

func (ix *Indexer) ensureIndex(ctx context.Context, dims int, recreate bool) error {
	exists, err := ix.es.IndexExists(ctx, ix.index)
	if err != nil {
		return err
	}
	if exists && recreate {
		del := esapi.IndicesDeleteRequest{Index: []string{ix.index}}
		if err := ix.do(ctx, "delete index", func() (*esapi.Response, error) { return del.Do(ctx, ix.es.Client) }); err != nil {
			return err
		}
		exists = false
	}
	if exists {
		return nil
	}

	mapping, err := json.Marshal(indexMapping(dims))
	if err != nil {
		return err
	}
	return ix.do(ctx, "create index", func() (*esapi.Response, error) {
		create := esapi.IndicesCreateRequest{Index: ix.index, Body: bytes.NewReader(mapping)}
		return create.Do(ctx, ix.es.Client)
	})
}

// do retries transport errors and 429/5xx answers; other error statuses are permanent.
func (ix *Indexer) do(ctx context.Context, what string, call func() (*esapi.Response, error)) error {
	op := func() error {
		res, err := call()
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if !res.IsError() {
			_, _ = io.Copy(io.Discard, res.Body)
			return nil
		}
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		err = fmt.Errorf("%s: %s: %s", what, res.Status(), raw)
		if res.StatusCode == 429 || res.StatusCode >= 500 {
			return err
		}
		return backoff.Permanent(err)
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = ix.interval
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(exp, ix.retries), ctx))
}
