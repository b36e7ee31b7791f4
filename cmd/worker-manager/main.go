// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"collegeplan-workers/internal/catalog"
	"collegeplan-workers/internal/common/camunda"
	"collegeplan-workers/internal/common/config"
	"collegeplan-workers/internal/common/database"
	"collegeplan-workers/internal/common/logger"
	"collegeplan-workers/internal/common/observability"
	"collegeplan-workers/internal/genai"
	"collegeplan-workers/internal/profile"
	"collegeplan-workers/internal/scoring"

	cl "collegeplan-workers/internal/workers/catalog/college-lookup"
	ao "collegeplan-workers/internal/workers/scoring/admission-odds"
	mc "collegeplan-workers/internal/workers/scoring/match-colleges"
	rc "collegeplan-workers/internal/workers/scoring/rate-college"
	rs "collegeplan-workers/internal/workers/scoring/rate-student"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Load College Catalog ---
	catalogStore := catalog.NewStore(log)
	if err := catalogStore.LoadFile(cfg.Catalog.CSVPath); err != nil {
		zapLog.Fatal("catalog load failed", zap.Error(err))
	}
	zapLog.Info("College catalog loaded", zap.Int("colleges", catalogStore.Len()))

	scoreCache := catalog.NewScoreCache(
		catalogStore,
		redis.Client,
		time.Duration(cfg.Catalog.CacheTTL)*time.Second,
		log,
	)

	profileStore := profile.NewStore(pg.DB, redis.Client, log)

	// Rater stays nil when no credential is configured; student ratings then
	// use the neutral activities default.
	var rater scoring.ActivityRater
	genaiClient := genai.NewClient(cfg.APIs.GenAI, log)
	if genaiClient.Configured() {
		rater = genaiClient
		zapLog.Info("GenAI activity rater configured")
	} else {
		zapLog.Warn("GenAI credential missing, activity ratings will use the neutral default")
	}

	// --- Register Workers ---

	var jobWorkers []*camunda.CamundaWorker

	if cfg.Workers[rs.TaskType].Enabled {
		handler := rs.NewHandler(
			&rs.Config{
				Timeout:       time.Duration(cfg.Workers[rs.TaskType].Timeout) * time.Millisecond,
				RatingTimeout: time.Duration(cfg.APIs.GenAI.Timeout) * time.Millisecond,
			},
			profileStore, rater, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, rs.TaskType, cfg.Workers[rs.TaskType], handler, zapLog))
	}

	if cfg.Workers[rc.TaskType].Enabled {
		handler := rc.NewHandler(
			&rc.Config{
				Timeout: time.Duration(cfg.Workers[rc.TaskType].Timeout) * time.Millisecond,
			},
			scoreCache, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, rc.TaskType, cfg.Workers[rc.TaskType], handler, zapLog))
	}

	if cfg.Workers[ao.TaskType].Enabled {
		handler := ao.NewHandler(
			&ao.Config{
				Timeout: time.Duration(cfg.Workers[ao.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, ao.TaskType, cfg.Workers[ao.TaskType], handler, zapLog))
	}

	if cfg.Workers[mc.TaskType].Enabled {
		handler := mc.NewHandler(
			&mc.Config{
				Timeout:       time.Duration(cfg.Workers[mc.TaskType].Timeout) * time.Millisecond,
				RatingTimeout: time.Duration(cfg.APIs.GenAI.Timeout) * time.Millisecond,
				DefaultLimit:  10,
				MaxLimit:      50,
			},
			profileStore, scoreCache, catalogStore, rater, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, mc.TaskType, cfg.Workers[mc.TaskType], handler, zapLog))
	}

	if cfg.Workers[cl.TaskType].Enabled {
		handler := cl.NewHandler(
			&cl.Config{
				Timeout: time.Duration(cfg.Workers[cl.TaskType].Timeout) * time.Millisecond,
			},
			scoreCache, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, cl.TaskType, cfg.Workers[cl.TaskType], handler, zapLog))
	}

	zapLog.Info("All workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, w := range jobWorkers {
		w.Stop(shutdownCtx)
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler camunda.JobHandler, log *zap.Logger) *camunda.CamundaWorker {
	w := camunda.NewWorker(client, taskType, wcfg.MaxJobsActive, handler, log)
	w.Start()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return w
}
