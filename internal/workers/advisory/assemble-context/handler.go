// internal/workers/advisory/assemble-context/handler.go
package assemblecontext

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

const TaskType = "assemble-context"

type Handler struct {
	config     *Config
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
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

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	payload := Assemble(input.Profile, input.Documents, input.Quotes)
	h.logger.Debug("context assembled", map[string]interface{}{
		"hasProfile":   payload.Profile != "",
		"hasKnowledge": payload.Knowledge != "",
		"hasMarket":    payload.Market != "",
	})
	return &Output{Context: payload.String(), Payload: payload}, nil
}
