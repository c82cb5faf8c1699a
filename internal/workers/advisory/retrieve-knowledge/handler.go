// internal/workers/advisory/retrieve-knowledge/handler.go
package retrieveknowledge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"advisory-workers/internal/common/camunda"
	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/common/logger"
	"advisory-workers/internal/common/metrics"
	"advisory-workers/internal/models"
)

const TaskType = "retrieve-knowledge"

type Handler struct {
	config     *Config
	retriever  *Retriever
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, retriever *Retriever, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		retriever:  retriever,
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errHandler.HandleJobError(ctx, client, job, apperrors.NewInvalidInputError("variables", fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, _ := h.Execute(ctx, &input)
	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err})
	}
}

// Execute degrades to an empty document list when retrieval is down so the
// process can carry on without knowledge context.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	docs, err := h.retriever.Search(ctx, input.Query, input.TopK)
	if err != nil {
		metrics.ProviderFailures.WithLabelValues("elasticsearch").Inc()
		h.logger.Warn("retrieval unavailable", map[string]interface{}{"error": err})
		return &Output{Documents: []models.RetrievedDocument{}, Available: false}, nil
	}
	h.logger.Debug("documents retrieved", map[string]interface{}{"count": len(docs)})
	return &Output{Documents: docs, Available: true}, nil
}
