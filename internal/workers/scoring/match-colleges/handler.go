// internal/workers/scoring/match-colleges/handler.go
package matchcolleges

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"collegeplan-workers/internal/catalog"
	apperrors "collegeplan-workers/internal/common/errors"
	"collegeplan-workers/internal/common/logger"
	"collegeplan-workers/internal/common/metrics"
	"collegeplan-workers/internal/profile"
	"collegeplan-workers/internal/scoring"
)

const (
	TaskType = "match-colleges"
)

type ProfileStore interface {
	Get(ctx context.Context, studentID string) (*profile.StudentProfile, error)
}

type CollegeScorer interface {
	Score(ctx context.Context, name string) (*catalog.ScoredCollege, error)
}

// Catalog lists candidate colleges when the input names none.
type Catalog interface {
	All() []catalog.College
}

type Handler struct {
	config   *Config
	profiles ProfileStore
	scorer   CollegeScorer
	catalog  Catalog
	rater    scoring.ActivityRater
	logger   logger.Logger
	errors   *apperrors.ErrorHandler
}

func NewHandler(config *Config, profiles ProfileStore, scorer CollegeScorer, cat Catalog, rater scoring.ActivityRater, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		profiles: profiles,
		scorer:   scorer,
		catalog:  cat,
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
	record, err := h.resolveStudent(ctx, input)
	if err != nil {
		return nil, err
	}

	studentScore, _ := scoring.RateStudent(ctx, record, h.boundedRater())

	names := input.Colleges
	if len(names) == 0 {
		if h.catalog == nil {
			return nil, apperrors.NewScoringInputInvalidError("no colleges given and catalog not available")
		}
		for _, c := range h.catalog.All() {
			names = append(names, c.Name)
		}
	}

	matches := make([]Match, 0, len(names))
	for _, name := range names {
		scored, err := h.scorer.Score(ctx, name)
		if err != nil {
			// Unknown names are skipped rather than failing the batch.
			h.logger.Warn("skipping college", map[string]interface{}{
				"collegeName": name,
				"error":       err.Error(),
			})
			continue
		}
		odds := scoring.AdmissionOdds(float64(studentScore), float64(scored.Score))
		matches = append(matches, Match{
			CollegeName:   scored.College.Name,
			CollegeScore:  scored.Score,
			AdmissionOdds: odds,
			OddsBand:      scoring.OddsBand(odds),
		})
	}

	// Best odds first; ties break alphabetically so output is stable.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].AdmissionOdds != matches[j].AdmissionOdds {
			return matches[i].AdmissionOdds > matches[j].AdmissionOdds
		}
		return matches[i].CollegeName < matches[j].CollegeName
	})

	limit := input.Limit
	if limit <= 0 {
		limit = h.config.DefaultLimit
	}
	if limit > h.config.MaxLimit {
		limit = h.config.MaxLimit
	}
	considered := len(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	runID := uuid.New().String()

	h.logger.Info("colleges matched", map[string]interface{}{
		"matchRunId":   runID,
		"studentId":    input.StudentID,
		"studentScore": studentScore,
		"considered":   considered,
		"returned":     len(matches),
	})

	return &Output{
		MatchRunID:   runID,
		StudentScore: studentScore,
		Matches:      matches,
		Considered:   considered,
	}, nil
}

func (h *Handler) resolveStudent(ctx context.Context, input *Input) (scoring.StudentRecord, error) {
	if input.Student != nil {
		return *input.Student, nil
	}
	if input.StudentID == "" {
		return scoring.StudentRecord{}, apperrors.NewScoringInputInvalidError("neither student nor studentId provided")
	}
	if h.profiles == nil {
		return scoring.StudentRecord{}, apperrors.NewScoringInputInvalidError("profile lookup not available")
	}
	p, err := h.profiles.Get(ctx, input.StudentID)
	if err != nil {
		return scoring.StudentRecord{}, err
	}
	return p.ScoringRecord(), nil
}

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

// Execute matches colleges without a job envelope.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
