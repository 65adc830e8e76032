package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/whisper/sentinel/internal/config"
	"github.com/whisper/sentinel/internal/gateway"
	"github.com/whisper/sentinel/internal/messaging"
	"github.com/whisper/sentinel/internal/metrics"
	"github.com/whisper/sentinel/internal/ratelimit"
	"github.com/whisper/sentinel/internal/strikes"
)

func main() {
	log.Println("Starting Sentinel gateway...")

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

	// NATS setup.
	natsConfig := messaging.DefaultConfig()
	natsConfig.URL = cfg.NATS.URL
	natsConfig.Name = "sentinel-gateway"
	natsClient, err := messaging.NewClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	server := gateway.NewServer(gateway.Config{
		ListenAddr:     cfg.Gateway.ListenAddr,
		MaxConnections: cfg.Gateway.MaxConnections,
		WriteTimeout:   cfg.Gateway.WriteTimeout,
	}, natsClient, ratelimit.NewLimiter(rdb), strikes.NewStore(rdb))

	// Metrics endpoint.
	metricsSrv := &http.Server{Addr: cfg.Gateway.MetricsAddr, Handler: metrics.Handler()}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[gateway] metrics server: %v", err)
		}
	}()

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("gateway server failed: %v", err)
		}
	}()

	log.Printf("Sentinel gateway running")
	log.Printf("  listen_addr:  %s", cfg.Gateway.ListenAddr)
	log.Printf("  metrics_addr: %s", cfg.Gateway.MetricsAddr)
	log.Printf("  nats_url:     %s", cfg.NATS.URL)
	log.Printf("  redis_addr:   %s", cfg.Redis.Addr)

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	server.Shutdown(shutdownCtx)
	metricsSrv.Shutdown(shutdownCtx)
	natsClient.Close()
	rdb.Close()
}
