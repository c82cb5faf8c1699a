// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/common/metrics"
	"advisory-workers/internal/common/observability"
)

// JobHandler is implemented by every worker's Handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// CompleteJob completes job with output as its variables, retrying
// transient gateway errors.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	request, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("serialize job variables: %w", err)
	}
	return Retry(ctx, fmt.Sprintf("complete job %d", job.Key), CompletionRetry, func(ctx context.Context) error {
		_, err := request.Send(ctx)
		return err
	})
}

// JobHandlerFunc adapts a function to JobHandler.
type JobHandlerFunc func(client worker.JobClient, job entities.Job)

func (f JobHandlerFunc) Handle(client worker.JobClient, job entities.Job) { f(client, job) }

// WithValidation checks job variables before h sees them. Rejected jobs go
// through errHandler as INVALID_INPUT and never reach h.
func WithValidation(taskType string, h JobHandler, validate func(taskType, variables string) error, errHandler *apperrors.ErrorHandler) JobHandler {
	return JobHandlerFunc(func(client worker.JobClient, job entities.Job) {
		if err := validate(taskType, job.Variables); err != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			errHandler.HandleJobError(ctx, client, job, err)
			return
		}
		h.Handle(client, job)
	})
}

// Instrument wraps a handler with job metrics and a panic guard.
func Instrument(taskType string, h JobHandler, obs *observability.Observability, log *zap.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		status := "completed"

		defer func() {
			if r := recover(); r != nil {
				status = "panic"
				log.Error("handler panicked",
					zap.String("taskType", taskType),
					zap.Int64("jobKey", job.Key),
					zap.Any("panic", r))
				metrics.WorkerJobsFailed.WithLabelValues(taskType, "PANIC").Inc()
				failCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_, _ = client.NewFailJobCommand().JobKey(job.Key).Retries(job.Retries - 1).
					ErrorMessage(fmt.Sprintf("panic: %v", r)).Send(failCtx)
			} else {
				metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
			}
			elapsed := time.Since(start)
			metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
			obs.RecordJobProcessed(context.Background(), taskType, status)
			obs.RecordJobDuration(context.Background(), taskType, elapsed, status)
		}()

		h.Handle(client, job)
	}
}

type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

// CamundaWorker is one open job worker for a task type.
type CamundaWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

func NewWorker(client zbc.Client, taskType string, handler worker.JobHandler, opts WorkerOptions, logger *zap.Logger) *CamundaWorker {
	builder := client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(opts.MaxJobsActive).
		Name(taskType + "-worker")
	if opts.Timeout > 0 {
		builder = builder.Timeout(opts.Timeout)
	}

	w := &CamundaWorker{
		worker:   builder.Open(),
		logger:   logger,
		taskType: taskType,
	}
	logger.Info("worker started", zap.String("taskType", taskType), zap.Int("maxJobsActive", opts.MaxJobsActive))
	return w
}

func (w *CamundaWorker) TaskType() string {
	return w.taskType
}

func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
	w.worker.AwaitClose()
}
