// internal/workers/planning/summarize-portfolio/handler.go
package summarizeportfolio

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"advisory-workers/internal/common/camunda"
	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/common/logger"
	"advisory-workers/internal/finance"
	"advisory-workers/internal/models"
)

const TaskType = "summarize-portfolio"

// HoldingSource loads holdings when the job does not carry them.
type HoldingSource interface {
	ListHoldings(ctx context.Context, userID string) ([]models.Holding, error)
}

// ProfileSource loads the investor profile that drives rebalancing advice.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

type Handler struct {
	config     *Config
	holdings   HoldingSource
	profiles   ProfileSource
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, holdings HoldingSource, profiles ProfileSource, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		holdings:   holdings,
		profiles:   profiles,
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
	holdings := input.Holdings
	if holdings != nil {
		if err := finance.ValidateHoldings(holdings); err != nil {
			return nil, err
		}
	} else {
		if input.UserID == "" || h.holdings == nil {
			return nil, apperrors.NewInvalidInputError("holdings", "holdings or userId is required")
		}
		loaded, err := h.holdings.ListHoldings(ctx, input.UserID)
		if err != nil {
			return nil, err
		}
		holdings = loaded
	}

	summary := finance.SummarizePortfolio(holdings)
	h.logger.Debug("portfolio summarized", map[string]interface{}{
		"holdings":      len(summary.Holdings),
		"totalInvested": summary.TotalInvested,
	})
	out := &Output{Summary: summary}
	if profile := h.profile(ctx, input); profile != nil {
		out.Recommendation = finance.RecommendPortfolio(*profile, holdings)
	}
	return out, nil
}

// profile is best effort: without one the summary ships without a recommendation.
func (h *Handler) profile(ctx context.Context, input *Input) *models.UserProfile {
	if input.Profile != nil {
		return input.Profile
	}
	if input.UserID == "" || h.profiles == nil {
		return nil
	}
	profile, err := h.profiles.GetProfile(ctx, input.UserID)
	if err != nil {
		h.logger.Warn("profile unavailable, skipping rebalancing advice", map[string]interface{}{
			"userId": input.UserID,
			"error":  err.Error(),
		})
		return nil
	}
	return profile
}
