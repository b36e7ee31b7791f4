// Package profile fetches stored student academic profiles from Postgres,
// with a short-lived redis cache in front for repeated rating requests.
package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "collegeplan-workers/internal/common/errors"
	"collegeplan-workers/internal/common/logger"
	"collegeplan-workers/internal/scoring"
)

// StudentProfile is the persisted academic record keyed by student id.
type StudentProfile struct {
	StudentID      string             `json:"studentId"`
	GPA            float64            `json:"gpa"`
	Weighted       bool               `json:"weighted"`
	SAT            float64            `json:"sat"`
	ACT            float64            `json:"act"`
	APCourses      []scoring.APCourse `json:"apCourses"`
	Activities     []scoring.Activity `json:"activities"`
	ActivitiesText string             `json:"activitiesText"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// ScoringRecord maps the stored profile onto the rater's input shape.
func (p StudentProfile) ScoringRecord() scoring.StudentRecord {
	return scoring.StudentRecord{
		GPA:            p.GPA,
		Weighted:       p.Weighted,
		SAT:            p.SAT,
		ACT:            p.ACT,
		APCourses:      p.APCourses,
		Activities:     p.Activities,
		ActivitiesText: p.ActivitiesText,
	}
}

const profileCacheTTL = 5 * time.Minute

// Store reads profiles from Postgres through a redis cache-aside layer. The
// ap_courses and activities columns hold JSON arrays.
type Store struct {
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewStore(db *sql.DB, redisClient *redis.Client, log logger.Logger) *Store {
	return &Store{
		db:     db,
		redis:  redisClient,
		logger: log.With(map[string]interface{}{"component": "profile"}),
	}
}

func profileCacheKey(studentID string) string {
	return "profile:" + studentID
}

// Get fetches one student profile. Cache reads and writes are best effort;
// only the database is authoritative.
func (s *Store) Get(ctx context.Context, studentID string) (*StudentProfile, error) {
	cacheKey := profileCacheKey(studentID)
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached StudentProfile
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var p StudentProfile
	var apJSON, activitiesJSON []byte
	query := `SELECT student_id, gpa, weighted, sat, act, ap_courses, activities, activities_text, updated_at
		FROM student_profiles WHERE student_id = $1`
	err := s.db.QueryRowContext(ctx, query, studentID).Scan(
		&p.StudentID, &p.GPA, &p.Weighted, &p.SAT, &p.ACT,
		&apJSON, &activitiesJSON, &p.ActivitiesText, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewProfileNotFoundError(studentID)
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewProfileQueryTimeoutError()
		}
		return nil, apperrors.NewProfileFetchFailedError(fmt.Errorf("query profile %s: %w", studentID, err))
	}

	if len(apJSON) > 0 {
		if err := json.Unmarshal(apJSON, &p.APCourses); err != nil {
			s.logger.Warn("bad ap_courses payload, ignoring", map[string]interface{}{
				"studentId": studentID,
				"error":     err.Error(),
			})
		}
	}
	if len(activitiesJSON) > 0 {
		if err := json.Unmarshal(activitiesJSON, &p.Activities); err != nil {
			s.logger.Warn("bad activities payload, ignoring", map[string]interface{}{
				"studentId": studentID,
				"error":     err.Error(),
			})
		}
	}

	if s.redis != nil {
		if data, err := json.Marshal(p); err == nil {
			s.redis.Set(ctx, cacheKey, data, profileCacheTTL)
		}
	}
	return &p, nil
}

// Invalidate drops the cached copy after a profile update.
func (s *Store) Invalidate(ctx context.Context, studentID string) {
	if s.redis == nil {
		return
	}
	s.redis.Del(ctx, profileCacheKey(studentID))
}
