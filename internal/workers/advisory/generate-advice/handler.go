// internal/workers/advisory/generate-advice/handler.go
package generateadvice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"advisory-workers/internal/common/camunda"
	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/common/logger"
)

const TaskType = "generate-advice"

type Handler struct {
	config       *Config
	orchestrator *Orchestrator
	logger       logger.Logger
	errHandler   *apperrors.ErrorHandler
}

func NewHandler(config *Config, orchestrator *Orchestrator, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		orchestrator: orchestrator,
		logger:       log,
		errHandler:   apperrors.NewErrorHandler(log),
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
	if strings.TrimSpace(input.Message) == "" {
		return nil, apperrors.NewInvalidInputError("message", "message is empty")
	}

	out := h.orchestrator.Respond(ctx, Request{
		Query:     input.Message,
		Context:   input.Context,
		History:   input.History,
		Tier:      input.RiskTolerance,
		Sentiment: input.Sentiment,
	})
	h.logger.Info("advice produced", map[string]interface{}{"source": out.Source, "state": h.orchestrator.State()})

	return &Output{ResponseText: out.Text, Source: out.Source, FallbackRoute: out.Route}, nil
}
