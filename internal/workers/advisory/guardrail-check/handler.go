// internal/workers/advisory/guardrail-check/handler.go
package guardrailcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"advisory-workers/internal/common/camunda"
	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/common/logger"
)

const (
	TaskType = "guardrail-check"
)

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
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

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

// Execute screens input or output text. A blocked input completes with
// Passed=false and the safe reply rather than failing.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Mode == ModeOutput {
		s := ScreenOutput(input.Text)
		return &Output{Passed: !s.Replaced, Text: s.Text, Replaced: s.Replaced, RiskWarning: s.RiskWarning}, nil
	}

	cleaned, err := CheckInput(input.Text)
	if err == nil {
		return &Output{Passed: true, Text: cleaned}, nil
	}

	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) && stdErr.Code == apperrors.ErrCodeGuardrailViolation {
		topic, _ := stdErr.Metadata["topic"].(string)
		h.logger.Warn("message blocked", map[string]interface{}{"topic": topic})
		return &Output{Passed: false, Text: stdErr.Message, Topic: topic}, nil
	}
	return nil, err
}
