// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"collegeplan-workers/internal/catalog"
	"collegeplan-workers/internal/common/config"
	"collegeplan-workers/internal/common/database"
	"collegeplan-workers/internal/common/logger"
	"collegeplan-workers/internal/profile"
	"collegeplan-workers/internal/scoring"

	collegelookup "collegeplan-workers/internal/workers/catalog/college-lookup"
	admissionodds "collegeplan-workers/internal/workers/scoring/admission-odds"
	matchcolleges "collegeplan-workers/internal/workers/scoring/match-colleges"
	ratecollege "collegeplan-workers/internal/workers/scoring/rate-college"
	ratestudent "collegeplan-workers/internal/workers/scoring/rate-student"
)

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

func TestMain(m *testing.M) {
	var err error

	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         "localhost:26500",
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to Zeebe: %v", err))
	}

	zapLog, _ = zap.NewProduction()

	code := m.Run()

	zeebeClient.Close()
	os.Exit(code)
}

func TestFullE2E(t *testing.T) {
	_, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assertAllServicesConnectivity(t, cfg)
	createDatabaseTables(t, cfg)
	testAllWorkers(t, cfg, zapLog)
}

func assertAllServicesConnectivity(t *testing.T, cfg *config.Config) {
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"

	db, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	assert.NoError(t, db.Ping(context.Background()), "PostgreSQL ping failed")
	db.Close()

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis client creation failed")
	assert.NoError(t, rdb.Ping(context.Background()), "Redis ping failed")
	rdb.Close()

	_, err = zeebeClient.NewTopologyCommand().Send(context.Background())
	assert.NoError(t, err, "Zeebe topology request failed")
}

func createDatabaseTables(t *testing.T, cfg *config.Config) {
	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	db := dbClient.GetDB()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS student_profiles (
			student_id VARCHAR(255) PRIMARY KEY,
			gpa DOUBLE PRECISION NOT NULL DEFAULT 0,
			weighted BOOLEAN NOT NULL DEFAULT false,
			sat DOUBLE PRECISION NOT NULL DEFAULT 0,
			act DOUBLE PRECISION NOT NULL DEFAULT 0,
			ap_courses JSONB NOT NULL DEFAULT '[]',
			activities JSONB NOT NULL DEFAULT '[]',
			activities_text TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			t.Logf("Warning: Failed to create table: %v", err)
		}
	}

	testData := []string{
		`INSERT INTO student_profiles (student_id, gpa, weighted, sat, act, ap_courses, activities, activities_text)
		 VALUES ('e2e-student-1', 3.8, false, 1400, 0,
			'[{"course":"AP Calculus BC","score":5},{"course":"AP Physics 1","score":4}]',
			'[{"hours":10,"description":"debate team captain"}]', '')
		 ON CONFLICT (student_id) DO NOTHING`,
		`INSERT INTO student_profiles (student_id, gpa, weighted, sat, act)
		 VALUES ('e2e-student-untested', 4.0, false, 0, 0)
		 ON CONFLICT (student_id) DO NOTHING`,
	}

	for _, query := range testData {
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			t.Logf("Warning: Failed to insert test data: %v", err)
		}
	}
}

func testAllWorkers(t *testing.T, cfg *config.Config, log *zap.Logger) {
	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	rdbClient, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdbClient.Close()

	adapter := logger.NewZapAdapter(log)

	store := catalog.NewStore(adapter)
	require.NoError(t, store.LoadFile(findCatalogCSV(t, cfg)))

	cache := catalog.NewScoreCache(store, rdbClient.GetClient(),
		time.Duration(cfg.Catalog.CacheTTL)*time.Second, adapter)
	profiles := profile.NewStore(dbClient.GetDB(), rdbClient.GetClient(), adapter)

	t.Run("rate-student", func(t *testing.T) {
		handler := ratestudent.NewHandler(ratestudent.LoadConfig(), profiles, nil, adapter)

		out, err := handler.Execute(context.Background(), &ratestudent.Input{StudentID: "e2e-student-1"})
		require.NoError(t, err)
		assert.Greater(t, out.StudentScore, 0)
		assert.Equal(t, "profile", out.RatedFrom)
	})

	t.Run("rate-college", func(t *testing.T) {
		handler := ratecollege.NewHandler(ratecollege.LoadConfig(), cache, adapter)

		first := store.All()[0]
		out, err := handler.Execute(context.Background(), &ratecollege.Input{CollegeName: first.Name})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, out.CollegeScore, 0)
		assert.LessOrEqual(t, out.CollegeScore, 100)
	})

	t.Run("admission-odds", func(t *testing.T) {
		handler := admissionodds.NewHandler(admissionodds.LoadConfig(), adapter)

		out, err := handler.Execute(context.Background(), &admissionodds.Input{
			StudentScore: 70,
			CollegeScore: 70,
		})
		require.NoError(t, err)
		assert.Equal(t, 50, out.AdmissionOdds)
		assert.Equal(t, "target", out.OddsBand)
	})

	t.Run("match-colleges", func(t *testing.T) {
		handler := matchcolleges.NewHandler(matchcolleges.LoadConfig(), profiles, cache, store, nil, adapter)

		out, err := handler.Execute(context.Background(), &matchcolleges.Input{
			StudentID: "e2e-student-1",
			Limit:     5,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, out.MatchRunID)
		assert.LessOrEqual(t, len(out.Matches), 5)
	})

	t.Run("college-lookup", func(t *testing.T) {
		handler := collegelookup.NewHandler(collegelookup.LoadConfig(), cache, adapter)

		first := store.All()[0]
		out, err := handler.Execute(context.Background(), &collegelookup.Input{CollegeName: first.Name})
		require.NoError(t, err)
		assert.Equal(t, first.Name, out.College.Name)
	})
}

func findCatalogCSV(t *testing.T, cfg *config.Config) string {
	paths := []string{cfg.Catalog.CSVPath, "../" + cfg.Catalog.CSVPath, "../../" + cfg.Catalog.CSVPath}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	t.Skipf("catalog CSV not found near %s", cfg.Catalog.CSVPath)
	return ""
}

func BenchmarkHandler_AdmissionOdds(b *testing.B) {
	handler := admissionodds.NewHandler(admissionodds.LoadConfig(), logger.NewStructured("info", "json"))

	input := &admissionodds.Input{StudentScore: 71, CollegeScore: 88}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}

func BenchmarkHandler_RateStudent(b *testing.B) {
	handler := ratestudent.NewHandler(ratestudent.LoadConfig(), nil, nil, logger.NewStructured("info", "json"))

	input := &ratestudent.Input{
		Student: &scoring.StudentRecord{
			GPA: 3.8,
			SAT: 1400,
			APCourses: []scoring.APCourse{
				{Course: "AP Calculus BC", Score: 5},
				{Course: "AP Physics 1", Score: 4},
			},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}
