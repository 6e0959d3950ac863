// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"underwriting-workers/internal/common/aws"
	"underwriting-workers/internal/common/camunda"
	"underwriting-workers/internal/common/config"
	"underwriting-workers/internal/common/database"
	"underwriting-workers/internal/common/logger"
	"underwriting-workers/internal/common/messaging"
	"underwriting-workers/internal/common/metrics"
	"underwriting-workers/internal/common/observability"
	"underwriting-workers/internal/underwriting"
	"underwriting-workers/internal/underwriting/documents"
	"underwriting-workers/internal/underwriting/narrative"
	"underwriting-workers/internal/underwriting/riskmodel"
	"underwriting-workers/internal/underwriting/store"
	"underwriting-workers/pkg/registry"

	aiu "underwriting-workers/internal/workers/underwriting/ai-underwriting"
	ccs "underwriting-workers/internal/workers/underwriting/calculate-credit-score"
	nd "underwriting-workers/internal/workers/underwriting/notify-decision"
)

func main() {
	bootLog := logger.New("info", "console", "stdout")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	log.Info("Starting worker manager...", map[string]interface{}{"environment": cfg.App.Environment})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer func() { _ = obs.Shutdown(context.Background()) }()

	retry := camunda.RetryConfig{MaxAttempts: 15, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second}

	// --- Init PostgreSQL with retry ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres config invalid", zap.Error(err))
	}
	defer pg.Close()
	if err := camunda.Retry(ctx, retry, "PostgreSQL connection", log, pg.Ping); err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	log.Info("PostgreSQL connected successfully", nil)

	repo := store.NewPostgresRepository(pg.DB, log)
	if err := repo.Migrate(ctx); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}

	// --- Init Redis with retry ---
	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	if err := camunda.Retry(ctx, retry, "Redis connection", log, rdb.Ping); err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	log.Info("Redis connected successfully", nil)

	deps := aiu.Dependencies{
		Repository: repo,
		Cache:      store.NewCache(rdb.Client, time.Duration(cfg.Underwriting.CacheTTL)*time.Second),
		Scores:     obs,
	}

	// --- Init Elasticsearch (optional) ---
	if cfg.Database.Elasticsearch.Enabled() {
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("elasticsearch config invalid", zap.Error(err))
		}
		if err := camunda.Retry(ctx, retry, "Elasticsearch connection", log, esClient.Ping); err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		deps.Indexer = store.NewIndexer(esClient.Client, cfg.Underwriting.Index)
		log.Info("Elasticsearch connected successfully", nil)
	}

	// --- Init Kafka producer (optional) ---
	if cfg.Kafka.Enabled {
		producer, err := messaging.NewProducer(cfg.Kafka)
		if err != nil {
			zapLog.Fatal("kafka producer init failed", zap.Error(err))
		}
		defer producer.Close()
		deps.Events = store.NewEventPublisher(producer, cfg.Underwriting.EventsTopic)
		log.Info("Kafka producer ready", map[string]interface{}{"brokers": cfg.Kafka.Brokers})
	}

	// --- Underwriting pipeline ---
	genai := cfg.APIs.GenAI
	if genai.APIKey == "" {
		log.Warn("GenAI API key not set, narrative analysis will use the fallback", nil)
	}
	narrator := narrative.NewGenerator(
		narrative.NewOpenAIClient(narrative.ClientConfig{
			BaseURL:    genai.BaseURL,
			APIKey:     genai.APIKey,
			Model:      genai.Model,
			Timeout:    config.GetDuration(genai.Timeout),
			MaxRetries: genai.MaxRetries,
		}),
		narrative.ChatOptions{Temperature: genai.Temperature, MaxTokens: genai.MaxTokens},
	)

	deps.Assessor = underwriting.NewService(
		documents.NewAnalyzer(),
		newRiskModel(cfg.APIs.RiskModel, log),
		narrator,
		log,
		underwriting.WithModelTimeout(config.GetDuration(cfg.Underwriting.ModelTimeout)),
		underwriting.WithNarrativeTimeout(config.GetDuration(cfg.Underwriting.NarrativeTimeout)),
		underwriting.WithRecorder(metrics.UnderwritingRecorder{}),
	)

	// --- Init Zeebe Client with retry ---
	zeebeClient, err := camunda.Connect(ctx, camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		Retry:                  camunda.DefaultRetryConfig,
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	log.Info("Zeebe client connected successfully", nil)

	// --- Register workers ---
	activities, err := registry.Default()
	if err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}
	for _, taskType := range []string{aiu.TaskType, ccs.TaskType, nd.TaskType} {
		a, ok := activities.Find(taskType)
		if !ok {
			zapLog.Fatal("activity not registered", zap.String("taskType", taskType))
		}
		log.Debug("activity", map[string]interface{}{
			"taskType": taskType,
			"version":  a.Version,
			"status":   a.ImplementationStatus,
		})
	}

	var workers []worker.JobWorker
	register := func(w worker.JobWorker) {
		if w != nil {
			workers = append(workers, w)
		}
	}

	{
		aiCfg := aiu.FromWorkerConfig(config.GetWorkerConfig(cfg, aiu.TaskType))
		if err := aiCfg.Validate(); err != nil {
			zapLog.Fatal("invalid ai-underwriting worker config", zap.Error(err))
		}
		handler := aiu.NewHandler(aiCfg, deps, log)
		register(camunda.StartWorker(zeebeClient, aiu.TaskType, aiCfg.WorkerConfig(), handler.Handle, obs, log))
	}
	{
		wcfg := config.GetWorkerConfig(cfg, ccs.TaskType)
		handler := ccs.NewHandler(ccs.LoadConfig(wcfg), log)
		register(camunda.StartWorker(zeebeClient, ccs.TaskType, wcfg, handler.Handle, obs, log))
	}
	{
		wcfg := config.GetWorkerConfig(cfg, nd.TaskType)
		sms := cfg.Notifications.SMS
		var snsClient nd.SNSService
		if sms.Enabled && config.IsWorkerEnabled(cfg, nd.TaskType) {
			c, err := aws.NewSNSClient(ctx, sms.Region)
			if err != nil {
				zapLog.Fatal("failed to create SNS client", zap.Error(err))
			}
			snsClient = c
		}
		handler := nd.NewHandler(nd.LoadConfig(sms, wcfg), snsClient, log)
		register(camunda.StartWorker(zeebeClient, nd.TaskType, wcfg, handler.Handle, obs, log))
	}
	log.Info("Workers registered", map[string]interface{}{"count": len(workers)})

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.App.HTTPPort),
		Handler:           newMux(zeebeClient, pg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("Shutdown signal received, stopping workers...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
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

	log.Info("Worker manager stopped gracefully", nil)
}

func newRiskModel(cfg config.RiskModelConfig, log logger.Logger) riskmodel.Model {
	if cfg.Provider == config.RiskModelRemote {
		log.Info("using remote risk model", map[string]interface{}{"baseUrl": cfg.BaseURL})
		return riskmodel.NewRemoteModel(cfg.BaseURL, config.GetDuration(cfg.Timeout))
	}
	log.Info("using weighted risk model", nil)
	return riskmodel.NewWeightedModel()
}

func newMux(zeebeClient zbc.Client, pg *database.PostgresClient) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := pg.Ping(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "postgres unavailable")
			return
		}
		if err := camunda.HealthCheck(ctx, zeebeClient, 3*time.Second); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "zeebe unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
