// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	awsclients "coach-match-workers/internal/common/aws"
	"coach-match-workers/internal/common/camunda"
	"coach-match-workers/internal/common/config"
	"coach-match-workers/internal/common/database"
	"coach-match-workers/internal/common/kvstore"
	"coach-match-workers/internal/common/logger"
	"coach-match-workers/internal/common/observability"
	"coach-match-workers/pkg/registry"

	vs "coach-match-workers/internal/workers/billing/validate-subscription"
	sc "coach-match-workers/internal/workers/data-access/search-coaches"
	cms "coach-match-workers/internal/workers/matching/calculate-match-score"
	rc "coach-match-workers/internal/workers/matching/rank-coaches"
	mrt "coach-match-workers/internal/workers/reviews/manage-review-token"
	ncr "coach-match-workers/internal/workers/reviews/notify-coach-review"
)

const shutdownTimeout = 30 * time.Second

// dependencies are the shared clients every handler is built from.
type dependencies struct {
	pg       *database.PostgresClient
	es       *database.ElasticsearchClient
	redis    *database.RedisClient
	aws      *awsclients.Clients
	registry *registry.ActivityRegistry
	log      logger.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(observability.Config{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		SampleRatio:    cfg.Observability.SampleRatio,
	})
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	// --- Zeebe ---
	zeebeClient, err := camunda.Connect(ctx, camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.Plaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.ConnectionTimeout),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	deps, err := connect(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("dependency init failed", zap.Error(err))
	}
	defer deps.pg.Close()
	defer deps.redis.Close()

	// --- Workers ---
	var workers []worker.JobWorker
	for _, reg := range buildHandlers(cfg, deps) {
		if !config.IsWorkerEnabled(cfg, reg.taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", reg.taskType))
			continue
		}
		wcfg := config.GetWorkerConfig(cfg, reg.taskType)
		workers = append(workers, camunda.Open(zeebeClient, reg.taskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, reg.handler, log))
	}
	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              cfg.Observability.HTTPAddr,
		Handler:           newMux(zeebeClient, deps),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	for _, w := range workers {
		w.AwaitClose()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// connect dials every backing store, retrying transient failures, and loads
// the activity registry.
func connect(ctx context.Context, cfg *config.Config, log logger.Logger) (*dependencies, error) {
	deps := &dependencies{log: log}
	retry := camunda.RetryConfig{MaxRetries: 15, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	if err := camunda.Retry(ctx, retry, log, "postgres", pg.Ping); err != nil {
		return nil, err
	}
	deps.pg = pg

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return nil, err
	}
	if err := camunda.Retry(ctx, retry, log, "elasticsearch", es.Ping); err != nil {
		return nil, err
	}
	deps.es = es

	deps.redis = database.NewRedis(cfg.Database.Redis)
	if err := camunda.Retry(ctx, retry, log, "redis", deps.redis.Ping); err != nil {
		return nil, err
	}

	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		clients, err := awsclients.NewClients(ctx, cfg.Notifications.Region)
		if err != nil {
			return nil, err
		}
		deps.aws = clients
	}

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		log.Warn("activity registry unavailable, input schemas disabled", map[string]interface{}{
			"path":  cfg.Registry.Path,
			"error": err,
		})
		return deps, nil
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	deps.registry = reg
	return deps, nil
}

// inputSchema returns the compiled input schema registered for taskType, or nil.
func (d *dependencies) inputSchema(taskType string) *gojsonschema.Schema {
	if d.registry == nil {
		return nil
	}
	activity, err := d.registry.Find(taskType)
	if err != nil {
		d.log.Warn("task type not in registry", map[string]interface{}{"taskType": taskType})
		return nil
	}
	schema, err := activity.CompileInputSchema()
	if err != nil {
		d.log.Error("input schema does not compile", map[string]interface{}{
			"taskType": taskType,
			"error":    err,
		})
		return nil
	}
	return schema
}

type registration struct {
	taskType string
	handler  camunda.JobHandler
}

func buildHandlers(cfg *config.Config, deps *dependencies) []registration {
	timeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	var (
		email awsclients.EmailSender
		sms   awsclients.SMSPublisher
	)
	if deps.aws != nil {
		email, sms = deps.aws.SES, deps.aws.SNS
	}

	return []registration{
		{cms.TaskType, cms.NewHandler(&cms.Config{
			CacheTTL:    cfg.Matching.CacheTTL(),
			Timeout:     timeout(cms.TaskType),
			InputSchema: deps.inputSchema(cms.TaskType),
		}, deps.pg.DB, deps.redis.Client, deps.log)},

		{rc.TaskType, rc.NewHandler(&rc.Config{
			MaxItems:    cfg.Matching.RankLimit,
			MinScore:    cfg.Matching.MinScore,
			Parallelism: cfg.Matching.Parallelism,
			CacheTTL:    cfg.Matching.CacheTTL(),
			Timeout:     timeout(rc.TaskType),
			InputSchema: deps.inputSchema(rc.TaskType),
		}, deps.pg.DB, deps.redis.Client, deps.log)},

		{sc.TaskType, sc.NewHandler(&sc.Config{
			DefaultIndex: cfg.Database.Elasticsearch.CoachIndex,
			PageSize:     cfg.Matching.SearchPageSize,
			Timeout:      timeout(sc.TaskType),
			InputSchema:  deps.inputSchema(sc.TaskType),
		}, deps.es.Client, deps.log)},

		{vs.TaskType, vs.NewHandler(&vs.Config{
			Timeout:     timeout(vs.TaskType),
			CacheTTL:    5 * time.Minute,
			InputSchema: deps.inputSchema(vs.TaskType),
		}, deps.pg.DB, deps.redis.Client, deps.log)},

		{mrt.TaskType, mrt.NewHandler(&mrt.Config{
			TokenTTL:     cfg.Reviews.TokenTTL(),
			DismissalTTL: cfg.Reviews.DismissalTTL(),
			Timeout:      timeout(mrt.TaskType),
			InputSchema:  deps.inputSchema(mrt.TaskType),
		}, kvstore.NewRedisStore(deps.redis.Client, cfg.Reviews.KeyPrefix), deps.log)},

		{ncr.TaskType, ncr.NewHandler(&ncr.Config{
			EmailEnabled:       cfg.Notifications.Email.Enabled,
			SMSEnabled:         cfg.Notifications.SMS.Enabled,
			FromEmail:          cfg.Notifications.Email.FromEmail,
			SenderID:           cfg.Notifications.SMS.SenderID,
			LowRatingThreshold: cfg.Reviews.LowRatingThreshold,
			Timeout:            timeout(ncr.TaskType),
			InputSchema:        deps.inputSchema(ncr.TaskType),
		}, deps.pg.DB, deps.redis.Client, email, sms, deps.log)},
	}
}

// zeebePinger adapts the gateway topology call to database.Pinger.
type zeebePinger struct {
	client zbc.Client
}

func (z zeebePinger) Name() string { return "zeebe" }

func (z zeebePinger) Ping(ctx context.Context) error {
	return camunda.HealthCheck(ctx, z.client, 2*time.Second)
}

func newMux(zeebeClient zbc.Client, deps *dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		failures := database.CheckAll(r.Context(), 3*time.Second,
			deps.pg, deps.es, deps.redis, zeebePinger{zeebeClient})
		if len(failures) > 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":   "not ready",
				"failures": failures,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
