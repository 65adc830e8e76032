package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/whisper/sentinel/internal/audit"
	"github.com/whisper/sentinel/internal/classifier"
	"github.com/whisper/sentinel/internal/config"
	"github.com/whisper/sentinel/internal/messaging"
	"github.com/whisper/sentinel/internal/metrics"
	"github.com/whisper/sentinel/internal/pipeline"
	"github.com/whisper/sentinel/internal/strikes"
)

func main() {
	log.Println("Starting Sentinel moderator service...")

	configPath := "config.yaml"
	if v := os.Getenv("SENTINEL_CONFIG"); v != "" {
		configPath = v
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Redis setup.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(ctx).Err(); err != nil {
		cancel()
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	cancel()

	// Postgres setup.
	db, err := sql.Open("postgres", cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("failed to open Postgres: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}
	if err := audit.Migrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	auditStore := audit.NewStore(db)

	// NATS setup.
	natsConfig := messaging.DefaultConfig()
	natsConfig.URL = cfg.NATS.URL
	natsConfig.Name = "sentinel-moderator"
	natsClient, err := messaging.NewClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	// Classification backend.
	var backend pipeline.Classifier
	switch cfg.Classifier.Backend {
	case "openrouter":
		if cfg.Classifier.APIKey == "" {
			log.Fatalf("classifier.api_key is required for the openrouter backend")
		}
		backend = classifier.NewOpenRouter(classifier.OpenRouterConfig{
			APIKey:  cfg.Classifier.APIKey,
			Model:   cfg.Classifier.Model,
			Timeout: cfg.Classifier.Timeout,
		})
	case "rules", "":
		backend = classifier.NewRules()
	default:
		log.Fatalf("unknown classifier backend %q", cfg.Classifier.Backend)
	}
	if cfg.Classifier.CacheTTL > 0 {
		backend = classifier.NewCache(rdb, backend, cfg.Classifier.CacheTTL)
	}

	pipe := pipeline.New(backend)
	strikeStore := strikes.NewStore(rdb)

	// Subscribe to moderation check requests.
	err = natsClient.SubscribeCheck(func(data []byte) {
		var req messaging.CheckRequest
		if err := json.Unmarshal(data, &req); err != nil {
			log.Printf("[moderator] failed to unmarshal request: %v", err)
			return
		}

		runCtx, cancel := context.WithTimeout(context.Background(), cfg.Moderator.CheckTimeout)
		defer cancel()

		start := time.Now()
		state, err := pipe.Run(runCtx, req.Content)
		metrics.ClassificationLatency.Observe(time.Since(start).Seconds())

		result := messaging.CheckResult{
			SessionID:    req.SessionID,
			SubmissionID: req.SubmissionID,
		}

		if err != nil {
			metrics.ClassificationFailures.Inc()
			metrics.SubmissionsTotal.WithLabelValues("error").Inc()
			log.Printf("[moderator] FAILED session=%s submission=%s: %v",
				req.SessionID, req.SubmissionID, err)
			result.Error = "classification failed, please retry"
		} else {
			metrics.SubmissionsTotal.WithLabelValues(string(state.Action)).Inc()
			log.Printf("[moderator] %s session=%s submission=%s severity=%s",
				state.Action, req.SessionID, req.SubmissionID, state.Severity)

			result.Severity = string(state.Severity)
			result.Action = string(state.Action)
			result.Explanation = state.Explanation
			result.Metadata = state.Metadata

			if recErr := auditStore.Record(runCtx, &audit.Decision{
				SessionID:    req.SessionID,
				SubmissionID: req.SubmissionID,
				ContentHash:  audit.HashContent(req.Content),
				Severity:     result.Severity,
				Action:       result.Action,
				Explanation:  result.Explanation,
				Metadata:     state.Metadata,
			}); recErr != nil {
				log.Printf("[moderator] audit record failed session=%s: %v", req.SessionID, recErr)
			}

			if state.Action == pipeline.ActionEscalate {
				metrics.StrikesTotal.Inc()
				if blocked, duration, strikeErr := strikeStore.Record(runCtx, req.SessionID, "harmful content"); strikeErr != nil {
					log.Printf("[moderator] strike record failed session=%s: %v", req.SessionID, strikeErr)
				} else if blocked {
					log.Printf("[moderator] BLOCKED session=%s for %s", req.SessionID, duration)
				}
			}
		}

		respData, err := json.Marshal(result)
		if err != nil {
			log.Printf("[moderator] failed to marshal result: %v", err)
			return
		}
		if err := natsClient.PublishResult(req.SessionID, respData); err != nil {
			log.Printf("[moderator] failed to publish result: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("failed to subscribe to moderation checks: %v", err)
	}

	// Metrics endpoint.
	metricsSrv := &http.Server{Addr: cfg.Moderator.MetricsAddr, Handler: metrics.Handler()}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[moderator] metrics server: %v", err)
		}
	}()

	log.Printf("Sentinel moderator service running")
	log.Printf("  redis_addr:   %s", cfg.Redis.Addr)
	log.Printf("  nats_url:     %s", cfg.NATS.URL)
	log.Printf("  backend:      %s", cfg.Classifier.Backend)
	log.Printf("  metrics_addr: %s", cfg.Moderator.MetricsAddr)

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	metricsSrv.Shutdown(shutdownCtx)
	shutdownCancel()

	natsClient.Close()
	rdb.Close()
	db.Close()
}
