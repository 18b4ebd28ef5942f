package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"where2eat-worker/config"
	"where2eat-worker/domain/models"
	"where2eat-worker/domain/ports"
	"where2eat-worker/infrastructure/ai"
	"where2eat-worker/infrastructure/consumer"
	"where2eat-worker/infrastructure/fetcher"
	"where2eat-worker/infrastructure/messenger"
	"where2eat-worker/infrastructure/repository"
	"where2eat-worker/infrastructure/youtube"
	"where2eat-worker/use_cases"
)

// Container - Dependency Injection Container
type Container struct {
	Config *config.Config

	// External connections
	NATSConn *nats.Conn
	Postgres *repository.PostgresClient

	// Ports (Interfaces)
	LLM        ports.LLMPort
	Transcript ports.TranscriptFetcherPort
	Detector   ports.HallucinationDetectorPort
	Listing    ports.VideoListingPort
	Consumer   ports.ConsumerPort
	Progress   ports.ProgressPort

	// Use Cases
	Pipeline     *use_cases.VideoPipeline
	Orchestrator *use_cases.Orchestrator

	// Internal
	geminiClient *ai.GeminiClient
	logger       *slog.Logger
}

func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{
		Config: cfg,
		logger: slog.Default().With("component", "container"),
	}

	var err error

	// ─────────────────────────────────────────────────────────────────────────────
	// 1. External Connections
	// ─────────────────────────────────────────────────────────────────────────────

	// NATS Connection (progress publishing; the consumer holds its own)
	c.NATSConn, err = nats.Connect(cfg.NATS.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*1000*1000*1000), // 2 seconds in nanoseconds
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	c.logger.Info("Connected to NATS", "url", cfg.NATS.URL)

	// Database Connection
	if cfg.Database.URL != "" {
		c.Postgres, err = repository.NewPostgresClient(cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := c.Postgres.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		c.logger.Info("Connected to database")
	} else {
		c.logger.Warn("DATABASE_URL not set, persistence disabled")
	}

	// ─────────────────────────────────────────────────────────────────────────────
	// 2. Infrastructure Layer
	// ─────────────────────────────────────────────────────────────────────────────

	// LLM backend (selected once, held behind the port)
	switch cfg.LLM.Provider {
	case "openai":
		c.LLM = ai.NewOpenAIClient(cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIBaseURL)
		c.logger.Info("OpenAI client created", "model", cfg.LLM.Model)
	case "gemini", "":
		c.geminiClient, err = ai.NewGeminiClient(ctx, cfg.LLM.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		c.LLM = c.geminiClient
		c.logger.Info("Gemini client created", "model", cfg.LLM.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.LLM.Provider)
	}

	// Transcript Fetcher (rate limited, one slot per interval)
	limiter := fetcher.NewMinIntervalLimiter(cfg.Transcript.MinInterval)
	c.Transcript = fetcher.NewTranscriptFetcher(cfg.Transcript.URL, limiter)
	c.logger.Info("Transcript fetcher created", "url", cfg.Transcript.URL)

	// Hallucination Detector
	if cfg.Verity.URL != "" {
		c.Detector = fetcher.NewVerityClient(cfg.Verity.URL)
		c.logger.Info("Verity client created", "url", cfg.Verity.URL)
	} else {
		c.Detector = fetcher.NoopDetector{}
		c.logger.Warn("VERITY_API_URL not set, hallucination screening disabled")
	}

	// YouTube Data API Client
	listing, err := youtube.NewClient(ctx, cfg.YouTube.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}
	c.Listing = listing
	c.logger.Info("YouTube client created")

	// NATS Consumer (submission queue)
	consumerImpl, err := consumer.NewNATSConsumer(consumer.NATSConsumerConfig{
		URL:          cfg.NATS.URL,
		Stream:       cfg.NATS.Stream,
		Subject:      cfg.NATS.Subject,
		ConsumerName: cfg.NATS.Consumer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}
	c.Consumer = consumerImpl
	c.logger.Info("NATS consumer created", "stream", cfg.NATS.Stream)

	// NATS Messenger (Progress Publisher)
	c.Progress = messenger.NewNATSPublisher(c.NATSConn)
	c.logger.Info("NATS messenger created")

	// ─────────────────────────────────────────────────────────────────────────────
	// 3. Use Cases Layer
	// ─────────────────────────────────────────────────────────────────────────────

	// Persistence ports are nil when the database is disabled; the use
	// cases treat them as optional.
	var restaurantRepo ports.RestaurantRepositoryPort
	var jobStore ports.JobStorePort
	if c.Postgres != nil {
		restaurantRepo = c.Postgres
		jobStore = c.Postgres
	}

	c.Pipeline = use_cases.NewVideoPipeline(
		c.LLM,
		c.Transcript,
		c.Detector,
		restaurantRepo,
		use_cases.PipelineConfig{
			ChunkSize:    cfg.Pipeline.ChunkSize,
			ChunkOverlap: cfg.Pipeline.ChunkOverlap,
			Languages:    cfg.Transcript.Languages,
			Model: ports.ModelConfig{
				Model:       cfg.LLM.Model,
				Temperature: float32(cfg.LLM.Temperature),
				MaxTokens:   cfg.LLM.MaxTokens,
			},
		},
	)
	c.logger.Info("Video pipeline created")

	c.Orchestrator = use_cases.NewOrchestrator(
		c.Pipeline,
		c.Listing,
		jobStore,
		c.Progress,
		use_cases.OrchestratorConfig{
			MaxConcurrentJobs:      cfg.Jobs.MaxConcurrent,
			BatchSize:              cfg.Jobs.BatchSize,
			DefaultMinutesPerVideo: cfg.Jobs.DefaultMinutesPerVideo,
		},
	)
	c.logger.Info("Orchestrator created")

	// Recover persisted jobs from a previous run before accepting new ones.
	if jobStore != nil {
		if err := c.Orchestrator.Restore(ctx); err != nil {
			c.logger.Warn("Job restore failed", "error", err)
		}
	}

	// Wire handler to consumer
	c.Consumer.SetHandler(func(ctx context.Context, sub *models.ChannelSubmission) error {
		_, err := c.Orchestrator.Submit(ctx, sub.ChannelRef, sub.Filters)
		return err
	})

	c.logger.Info("Container initialized successfully")
	return c, nil
}

// Start runs the consumer loop (blocking until ctx is cancelled).
func (c *Container) Start(ctx context.Context) error {
	c.logger.Info("Starting container services...")

	if err := c.Consumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	return nil
}

// Stop drains in-flight work and closes external connections.
func (c *Container) Stop() {
	c.logger.Info("Stopping container services...")

	c.Consumer.Stop()
	c.logger.Info("Consumer stopped")

	// Let running jobs finish before closing their persistence target.
	c.Orchestrator.Wait()
	c.logger.Info("Orchestrator drained")

	if c.geminiClient != nil {
		c.geminiClient.Close()
		c.logger.Info("Gemini client closed")
	}

	if c.Postgres != nil {
		c.Postgres.Close()
		c.logger.Info("Database connection closed")
	}

	if c.NATSConn != nil {
		c.NATSConn.Close()
		c.logger.Info("NATS connection closed")
	}

	c.logger.Info("Container stopped")
}
