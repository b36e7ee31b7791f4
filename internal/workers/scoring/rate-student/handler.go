// internal/workers/scoring/rate-student/handler.go
package ratestudent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "collegeplan-workers/internal/common/errors"
	"collegeplan-workers/internal/common/logger"
	"collegeplan-workers/internal/common/metrics"
	"collegeplan-workers/internal/profile"
	"collegeplan-workers/internal/scoring"
)

const (
	TaskType = "rate-student"
)

// ProfileStore is the subset of the profile layer this worker touches.
type ProfileStore interface {
	Get(ctx context.Context, studentID string) (*profile.StudentProfile, error)
}

type Handler struct {
	config   *Config
	profiles ProfileStore
	rater    scoring.ActivityRater
	logger   logger.Logger
	errors   *apperrors.ErrorHandler
}

// NewHandler wires the worker. profiles and rater may both be nil; without a
// profile store only inline records can be rated, and without a rater the
// activities dimension uses the neutral default.
func NewHandler(config *Config, profiles ProfileStore, rater scoring.ActivityRater, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		profiles: profiles,
		rater:    rater,
		logger:   scoped,
		errors:   apperrors.NewErrorHandler(scoped),
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
	record, source, err := h.resolveRecord(ctx, input)
	if err != nil {
		return nil, err
	}

	score, breakdown := scoring.RateStudent(ctx, record, h.boundedRater())
	if breakdown.ActivityRating == scoring.NeutralActivityRating && scoring.FlattenActivities(record) != "" {
		metrics.ActivityRatingFallbacks.Inc()
	}

	h.logger.Info("student rated", map[string]interface{}{
		"studentId": input.StudentID,
		"score":     score,
		"source":    source,
	})

	return &Output{
		StudentScore: score,
		Breakdown:    breakdown,
		RatedFrom:    source,
	}, nil
}

func (h *Handler) resolveRecord(ctx context.Context, input *Input) (scoring.StudentRecord, string, error) {
	if input.Student != nil {
		return *input.Student, "inline", nil
	}
	if input.StudentID == "" {
		return scoring.StudentRecord{}, "", apperrors.NewScoringInputInvalidError("neither student nor studentId provided")
	}
	if h.profiles == nil {
		return scoring.StudentRecord{}, "", apperrors.NewScoringInputInvalidError("profile lookup not available")
	}
	p, err := h.profiles.Get(ctx, input.StudentID)
	if err != nil {
		return scoring.StudentRecord{}, "", err
	}
	return p.ScoringRecord(), "profile", nil
}

// boundedRater caps the rating call at its own timeout, shorter than the
// job deadline; a slow upstream falls back to the neutral default.
func (h *Handler) boundedRater() scoring.ActivityRater {
	if h.rater == nil {
		return nil
	}
	return raterWithTimeout{inner: h.rater, timeout: h.config.RatingTimeout}
}

type raterWithTimeout struct {
	inner   scoring.ActivityRater
	timeout time.Duration
}

func (r raterWithTimeout) Rate(ctx context.Context, text string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.inner.Rate(ctx, text)
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

// Execute rates a student without a job envelope. Used by tests and direct
// callers.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
