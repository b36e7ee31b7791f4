// internal/workers/catalog/college-lookup/handler.go
package collegelookup

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"collegeplan-workers/internal/catalog"
	apperrors "collegeplan-workers/internal/common/errors"
	"collegeplan-workers/internal/common/logger"
	"collegeplan-workers/internal/common/metrics"
)

const (
	TaskType = "college-lookup"
)

// CollegeScorer resolves a catalog name to its record and cached rating.
type CollegeScorer interface {
	Score(ctx context.Context, name string) (*catalog.ScoredCollege, error)
}

type Handler struct {
	config *Config
	scorer CollegeScorer
	logger logger.Logger
	errors *apperrors.ErrorHandler
}

func NewHandler(config *Config, scorer CollegeScorer, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		scorer: scorer,
		logger: scoped,
		errors: apperrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errors.HandleJobError(context.Background(), client, job,
			apperrors.NewScoringInputInvalidError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.CollegeName == "" {
		return nil, apperrors.NewScoringInputInvalidError("collegeName is required")
	}

	scored, err := h.scorer.Score(ctx, input.CollegeName)
	if err != nil {
		return nil, err
	}

	h.logger.Info("college resolved", map[string]interface{}{
		"collegeName": scored.College.Name,
		"score":       scored.Score,
	})

	return &Output{College: scored.College, CollegeScore: scored.Score}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

// Execute resolves a college without a job envelope.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
