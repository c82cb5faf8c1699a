// internal/workers/advisory/advise-user/handler.go
package adviseuser

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

// TaskType runs the whole chat pipeline in one job.
const TaskType = "advise-user"

type Handler struct {
	config     *Config
	pipeline   *Pipeline
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, deps Deps, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		pipeline:   NewPipeline(config, deps, log),
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

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}
	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	res, err := h.pipeline.Run(ctx, Request{
		UserID:  input.UserID,
		Message: input.Message,
		Profile: input.Profile,
		History: input.History,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("advisory response produced", map[string]interface{}{
		"userId":     input.UserID,
		"responseId": res.Response.ResponseID,
		"source":     res.Response.Source,
		"blocked":    res.GuardrailViolation,
		"documents":  len(res.Response.Documents),
	})

	return &Output{
		Response:           res.Response,
		ResponseText:       res.Response.Text,
		Source:             res.Response.Source,
		GuardrailViolation: res.GuardrailViolation,
		BlockedTopic:       res.BlockedTopic,
		FallbackRoute:      res.Route,
		Symbols:            res.Symbols,
		RetrievalAvailable: res.RetrievalAvailable,
		Suggestions:        res.Suggestions,
	}, nil
}
