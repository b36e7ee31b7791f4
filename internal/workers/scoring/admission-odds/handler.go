// internal/workers/scoring/admission-odds/handler.go
package admissionodds

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "collegeplan-workers/internal/common/errors"
	"collegeplan-workers/internal/common/logger"
	"collegeplan-workers/internal/common/metrics"
	"collegeplan-workers/internal/common/validation"
	"collegeplan-workers/internal/scoring"
)

const (
	TaskType = "admission-odds"
)

// inputSchema rejects payloads where a score is present but not numeric.
// Absent scores are fine and count as 0.
var inputSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"studentScore": map[string]interface{}{"type": "number"},
		"collegeScore": map[string]interface{}{"type": "number"},
	},
}

type Handler struct {
	config *Config
	logger logger.Logger
	errors *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		logger: scoped,
		errors: apperrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &raw); err != nil {
		h.errors.HandleJobError(context.Background(), client, job,
			apperrors.NewScoringInputInvalidError(fmt.Sprintf("parse input: %v", err)))
		return
	}
	if err := validation.ValidateAgainstSchema(raw, inputSchema); err != nil {
		h.errors.HandleJobError(context.Background(), client, job,
			apperrors.NewScoringInputInvalidError(err.Error()))
		return
	}

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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	odds := scoring.AdmissionOdds(input.StudentScore, input.CollegeScore)
	band := scoring.OddsBand(odds)

	h.logger.Info("admission odds calculated", map[string]interface{}{
		"studentScore": input.StudentScore,
		"collegeScore": input.CollegeScore,
		"odds":         odds,
		"band":         band,
	})

	return &Output{AdmissionOdds: odds, OddsBand: band}, nil
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

// Execute computes odds without a job envelope.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
