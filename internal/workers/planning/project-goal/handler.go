// internal/workers/planning/project-goal/handler.go
package projectgoal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"advisory-workers/internal/common/aws"
	"advisory-workers/internal/common/camunda"
	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/common/logger"
	"advisory-workers/internal/finance"
	"advisory-workers/internal/models"
)

const TaskType = "project-goal"

type GoalSource interface {
	GetGoal(ctx context.Context, userID, goalID string) (*models.Goal, error)
}

// GoalNotifier publishes status alerts. SNSNotifier implements it.
type GoalNotifier interface {
	NotifyGoal(ctx context.Context, alert aws.GoalAlert) (string, error)
}

type Handler struct {
	config     *Config
	goals      GoalSource
	notifier   GoalNotifier
	now        func() time.Time
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

// NewHandler accepts a nil notifier; alerts are then skipped.
func NewHandler(config *Config, goals GoalSource, notifier GoalNotifier, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		goals:      goals,
		notifier:   notifier,
		now:        time.Now,
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
	goal, err := h.resolveGoal(ctx, input)
	if err != nil {
		return nil, err
	}

	now := h.now()
	projection, err := finance.ProjectGoal(*goal, now)
	if err != nil {
		return nil, err
	}

	out := &Output{Projection: projection}
	if projection.Status != finance.StatusAchieved {
		out.Recommendation = finance.RecommendForGoal(*goal, now)
	}
	if projection.Status == finance.StatusBehind || projection.Status == finance.StatusAchieved {
		out.AlertMessageID = h.alert(ctx, input.UserID, goal, projection)
	}
	return out, nil
}

func (h *Handler) resolveGoal(ctx context.Context, input *Input) (*models.Goal, error) {
	if input.Goal != nil {
		return input.Goal, nil
	}
	if input.GoalID == "" || input.UserID == "" {
		return nil, apperrors.NewInvalidInputError("goalId", "goal or userId and goalId are required")
	}
	if h.goals == nil {
		return nil, apperrors.NewInvalidInputError("goal", "no goal store configured, goal must be inline")
	}
	return h.goals.GetGoal(ctx, input.UserID, input.GoalID)
}

// alert is best effort; a failed publish never fails the projection.
func (h *Handler) alert(ctx context.Context, userID string, goal *models.Goal, p *finance.GoalProjection) string {
	if h.notifier == nil || !h.config.AlertOnGoal {
		return ""
	}
	id, err := h.notifier.NotifyGoal(ctx, aws.GoalAlert{
		UserID:           userID,
		GoalID:           goal.ID,
		GoalName:         goal.Name,
		Status:           string(p.Status),
		ProgressPct:      p.ProgressPct,
		MonthlyShortfall: p.MonthlyShortfall,
	})
	if err != nil {
		h.logger.Warn("goal alert failed", map[string]interface{}{
			"goalId": goal.ID,
			"error":  apperrors.NewNotificationFailedError("sns", err),
		})
		return ""
	}
	return id
}
