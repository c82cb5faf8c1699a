// internal/workers/advisory/assemble-response/handler.go
package assembleresponse

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
)

const TaskType = "assemble-response"

type Handler struct {
	config     *Config
	assembler  *Assembler
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		assembler:  NewAssembler(),
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

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input.ResponseText == "" {
		return nil, apperrors.NewInvalidInputError("responseText", "response text is empty")
	}

	res := h.assembler.Assemble(Request{
		UserID:         input.UserID,
		Message:        input.Message,
		Text:           input.ResponseText,
		Source:         input.Source,
		Documents:      input.Documents,
		MarketDataUsed: input.MarketDataUsed,
		Sentiment:      input.Sentiment,
	})
	metrics.AdvisoryResponses.WithLabelValues(string(res.Response.Source)).Inc()
	if res.Screening.Replaced {
		h.logger.Warn("generated output replaced by guardrail", map[string]interface{}{"responseId": res.Response.ResponseID})
	}

	return &Output{
		Response:         res.Response,
		PersistenceEvent: res.Event,
		OutputReplaced:   res.Screening.Replaced,
	}, nil
}
