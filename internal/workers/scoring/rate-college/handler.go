// internal/workers/scoring/rate-college/handler.go
package ratecollege

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
	"collegeplan-workers/internal/scoring"
)

const (
	TaskType = "rate-college"
)

// CollegeScorer is the catalog capability this worker needs: look up a
// college by name and rate it, cached.
type CollegeScorer interface {
	Score(ctx context.Context, name string) (*catalog.ScoredCollege, error)
}

type Handler struct {
	config  *Config
	catalog CollegeScorer
	logger  logger.Logger
	errors  *apperrors.ErrorHandler
}

// NewHandler wires the worker. catalogScorer may be nil; only inline records
// can be rated then.
func NewHandler(config *Config, catalogScorer CollegeScorer, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		catalog: catalogScorer,
		logger:  scoped,
		errors:  apperrors.NewErrorHandler(scoped),
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
	if input.College != nil {
		score, breakdown := scoring.RateCollege(*input.College)
		h.logger.Info("college rated", map[string]interface{}{
			"collegeName": input.CollegeName,
			"score":       score,
			"source":      "inline",
		})
		return &Output{
			CollegeName:  input.CollegeName,
			CollegeScore: score,
			Breakdown:    breakdown,
			RatedFrom:    "inline",
		}, nil
	}

	if input.CollegeName == "" {
		return nil, apperrors.NewScoringInputInvalidError("neither college nor collegeName provided")
	}
	if h.catalog == nil {
		return nil, apperrors.NewScoringInputInvalidError("catalog lookup not available")
	}

	scored, err := h.catalog.Score(ctx, input.CollegeName)
	if err != nil {
		return nil, err
	}

	h.logger.Info("college rated", map[string]interface{}{
		"collegeName": scored.College.Name,
		"score":       scored.Score,
		"source":      "catalog",
	})

	return &Output{
		CollegeName:  scored.College.Name,
		CollegeScore: scored.Score,
		Breakdown:    scored.Breakdown,
		RatedFrom:    "catalog",
	}, nil
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

// Execute rates a college without a job envelope.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
