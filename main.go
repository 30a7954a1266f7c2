package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ytsummarizer/cache"
	"ytsummarizer/config"
	"ytsummarizer/handlers"
	"ytsummarizer/llm"
	"ytsummarizer/logger"
	"ytsummarizer/pipeline"
	"ytsummarizer/summarizer"
	"ytsummarizer/transcriber"
	"ytsummarizer/validation"
	"ytsummarizer/video"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, logWriter, err := logger.New(cfg.LogDir, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize cache store: %v", err)
	}
	defer store.Close()

	transcribe, err := newTranscriber(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize transcriber: %v", err)
	}

	llmClient := llm.NewHTTPClient(llm.Config{
		BaseURL:           cfg.LLM.BaseURL,
		APIKey:            cfg.LLM.APIKey,
		Model:             cfg.LLM.Model,
		MaxTokens:         cfg.LLM.MaxTokens,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	})

	summarizeService := summarizer.NewService(llmClient, summarizer.Config{
		ChunkLimit:  cfg.Summarizer.ChunkLimit,
		Concurrency: cfg.Summarizer.Concurrency,
	}, appLogger)

	coordinator := pipeline.NewCoordinator(
		store,
		video.NewInnertubeResolver(appLogger, []string{"en"}),
		transcribe,
		summarizeService,
		validation.NewValidator(),
		pipeline.Config{
			TranscriptTTL: cfg.Cache.TranscriptTTL,
			SummaryTTL:    cfg.Cache.SummaryTTL,
		},
		appLogger,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		ErrorHandler:          handlers.ErrorHandler(appLogger),
		DisableStartupMessage: !cfg.Debug,
		AppName:               "ytsummarizer " + cfg.Version,
	})

	setupMiddleware(app, cfg, logWriter)

	summaryHandler := handlers.NewSummaryHandler(coordinator, cfg.RequestTimeout)
	app.Post("/api/summarize", summaryHandler.Summarize)
	app.Get("/health", handlers.HealthCheck)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		appLogger.Info("Shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			appLogger.WithError(err).Error("Server shutdown error")
		}
		if err := store.Close(); err != nil {
			appLogger.WithError(err).Error("Cache store shutdown error")
		}
	}()

	serverAddr := ":" + cfg.ServerPort
	if cfg.Debug {
		appLogger.Infof("Server starting on http://localhost%s", serverAddr)
	}

	if err := app.Listen(serverAddr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

func newStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
	case "sqlite":
		return cache.NewSQLiteStore(cfg.Cache.SQLitePath)
	default:
		return cache.NewMemoryStore(time.Minute), nil
	}
}

func newTranscriber(cfg *config.Config, appLogger *logrus.Logger) (transcriber.Transcriber, error) {
	audio, err := transcriber.NewAudioFetcher(cfg.Transcriber.AudioCommand, cfg.Transcriber.TempDir, appLogger)
	if err != nil {
		return nil, err
	}
	switch cfg.Transcriber.Backend {
	case "whisper":
		return transcriber.NewWhisper(cfg.Transcriber.WhisperCommand, cfg.Transcriber.WhisperModel, audio, appLogger), nil
	default:
		return transcriber.NewAssemblyAI(cfg.Transcriber.AssemblyAIKey, audio, cfg.Transcriber.PollingInterval, appLogger), nil
	}
}

func setupMiddleware(app *fiber.App, cfg *config.Config, logWriter io.Writer) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.Debug,
	}))

	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return uuid.New().String()
		},
	}))

	app.Use(fiberLogger.New(fiberLogger.Config{
		Output: logWriter,
	}))

	app.Use(cors.New())

	if cfg.RateLimit.Enabled {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit.RequestsPerMinute,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"success": false,
					"error":   "Rate limit exceeded",
				})
			},
		}))
	}
}
