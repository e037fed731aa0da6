package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sjsage522/newsworker/config"
	"sjsage522/newsworker/helpers"
	"sjsage522/newsworker/internal"
	"sjsage522/newsworker/internal/crawler"
	"sjsage522/newsworker/logger"
	"sjsage522/newsworker/services/cache"
	"sjsage522/newsworker/services/images"
	"sjsage522/newsworker/services/publisher"
	"sjsage522/newsworker/services/report"
	"sjsage522/newsworker/services/worker"
	"sjsage522/newsworker/services/workitems"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("search_base_url", cfg.SearchBaseURL).
		Str("browser_mode", cfg.BrowserMode).
		Str("workitems_source", cfg.WorkItemsSource).
		Str("output_dir", cfg.OutputDir).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	w := newWorker(ctx, cfg, services)

	// Start worker in a goroutine
	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting news worker")
		workerDone <- w.Start()
	}()

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	log.Info().Msg("Shutting down gracefully...")
}

// newWorker wires the scrape pipeline around the initialized services
func newWorker(ctx context.Context, cfg *config.Config, services *Services) *worker.Worker {
	deps := services.Dependencies()
	return worker.NewWorker(
		ctx,
		deps,
		crawler.NewViewFactory(cfg),
		images.NewFetcher(cfg.OutputDir, deps.Cache, cfg.ImageBlockTime),
		report.NewExcelWriter(cfg.OutputDir, cfg.ReportFile),
		helpers.NewErrorLog(cfg.ErrorLogFile),
		crawler.SelectorsFromConfig(cfg),
		cfg.MaxPages,
	)
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Source    workitems.Source
}

// Dependencies exposes the services to the worker
func (s *Services) Dependencies() internal.Dependencies {
	return internal.Dependencies{
		Cache:     s.Cache,
		Publisher: s.Publisher,
		Source:    s.Source,
	}
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Source != nil {
		s.Source.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	// Memcache only backs the image host block, so the worker runs without it
	if cfg.MemcacheAddr != "" {
		memcacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := memcacheService.Ping(); err != nil {
			logger.Warn("Memcache at %s unavailable, image rate limits will not be remembered: %v", cfg.MemcacheAddr, err)
		} else {
			services.Cache = memcacheService
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	if cfg.PublishArticles {
		services.Publisher = publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisOutputStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)
		logger.Info("Publishing articles to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisOutputStream)
	}

	switch cfg.WorkItemsSource {
	case config.SourceRedis:
		source, err := workitems.NewRedisSource(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisItemsStream, cfg.RedisItemsGroup, cfg.RedisConsumer)
		if err != nil {
			services.Cleanup()
			return nil, err
		}
		services.Source = source
		logger.Info("Reading work items from Redis stream %s (group: %s, consumer: %s)",
			cfg.RedisItemsStream, cfg.RedisItemsGroup, cfg.RedisConsumer)
	case config.SourceFile:
		source, err := workitems.NewFileSource(cfg.WorkItemsFile)
		if err != nil {
			services.Cleanup()
			return nil, err
		}
		services.Source = source
	default:
		services.Cleanup()
		return nil, fmt.Errorf("unknown work items source %q", cfg.WorkItemsSource)
	}

	return services, nil
}
