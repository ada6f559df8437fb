package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wudi/texkit/compiler"
	"github.com/wudi/texkit/config"
	"github.com/wudi/texkit/observability"
	"github.com/wudi/texkit/server"
)

const serverName = "texkit/1.0"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	configPath := flag.String("config", os.Getenv("TEXKIT_CONFIG"), "Path to YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if listen := os.Getenv("TEXKIT_LISTEN"); listen != "" {
		cfg.Server.Listen = listen
	}

	zl, err := observability.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}
	defer zl.Sync()
	logger := observability.NewZap(zl)

	var metrics observability.Metrics = observability.NopMetrics{}
	srvOpts := []server.Option{
		server.WithLogger(logger),
		server.WithTimeout(cfg.Server.RequestTimeout.Std()),
		server.WithMaxBody(cfg.Server.MaxBodyBytes),
	}
	if cfg.Metrics.Enabled {
		pm := observability.NewPrometheusMetrics(cfg.Metrics.Namespace)
		metrics = pm
		srvOpts = append(srvOpts, server.WithMetrics(pm, server.MetricsHandler(pm)))
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	c, closeCompiler, err := compiler.FromConfig(startCtx, cfg, logger, metrics)
	cancel()
	if err != nil {
		zl.Fatal("Failed to create compiler", zap.Error(err))
	}

	srv := server.New(c, srvOpts...).NewFastHTTPServer(serverName)

	serverErrors := make(chan error, 1)
	go func() {
		zl.Info("texkit server listening",
			zap.String("addr", cfg.Server.Listen),
			zap.String("backend", cfg.Render.Backend),
			zap.String("cache", cfg.Cache.Type))
		if err := srv.ListenAndServe(cfg.Server.Listen); err != nil {
			serverErrors <- fmt.Errorf("listen %s: %w", cfg.Server.Listen, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		zl.Info("Shutting down texkit server...")
	case err := <-serverErrors:
		zl.Error("Server failed, initiating shutdown", zap.Error(err))
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Error("Server shutdown error", zap.Error(err))
	}
	if err := closeCompiler(); err != nil {
		zl.Error("Failed to release compiler resources", zap.Error(err))
	}
	zl.Info("texkit server stopped")
}
