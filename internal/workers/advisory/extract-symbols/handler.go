// internal/workers/advisory/extract-symbols/handler.go
package extractsymbols

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"advisory-workers/internal/common/camunda"
	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/common/logger"
)

const TaskType = "extract-symbols"

type Handler struct {
	config     *Config
	extractor  *Extractor
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		extractor:  NewExtractor(config.Allowlist, config.MaxSymbols),
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

// Execute never fails; an empty symbol list is a valid result.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	symbols := h.extractor.Extract(input.Message)
	h.logger.Debug("symbols extracted", map[string]interface{}{"count": len(symbols)})
	return &Output{Symbols: symbols}, nil
}
