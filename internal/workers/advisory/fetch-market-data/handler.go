// internal/workers/advisory/fetch-market-data/handler.go
package fetchmarketdata

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

const TaskType = "fetch-market-data"

type Handler struct {
	config     *Config
	fetcher    *Fetcher
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, provider Provider, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		fetcher:    NewFetcher(provider, log),
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	symbols := input.Symbols
	if h.config.MaxSymbols > 0 && len(symbols) > h.config.MaxSymbols {
		symbols = symbols[:h.config.MaxSymbols]
	}
	withSentiment := input.IncludeSentiment == nil || *input.IncludeSentiment

	snap := h.fetcher.Fetch(ctx, symbols, withSentiment)
	h.logger.Info("market data fetched", map[string]interface{}{
		"quotes":    len(snap.Quotes),
		"sentiment": snap.Sentiment,
	})
	return &Output{Snapshot: snap}, nil
}
