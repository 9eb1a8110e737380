package bootstrap

import (
	"context"
	"log"

	"ai-interview-be/internal/config"
	"ai-interview-be/internal/controller"
	"ai-interview-be/internal/handler"
	"ai-interview-be/internal/pkg/logger"
	"ai-interview-be/internal/repository/unitofwork"
	"ai-interview-be/internal/service"
	"ai-interview-be/internal/websocket"
	"ai-interview-be/pkg/analysis"
	"ai-interview-be/pkg/framework"
	"ai-interview-be/pkg/llm/factory"
	"ai-interview-be/pkg/questionbank"
	"ai-interview-be/pkg/transcriber/whisper"

	pktNats "ai-interview-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	PracticeController controller.IPracticeController
	AnalysisController controller.IAnalysisController
	ReportController   controller.IReportController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Domain Building Blocks
	registry := framework.NewRegistry()
	bank := questionbank.NewBank()

	// LLM provider powers the content-quality judge and report synthesis.
	llmBaseURL := cfg.Ai.OpenAIBaseURL
	if cfg.Ai.LLMProvider == "ollama" {
		llmBaseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Ai.OpenAIKey,
	)
	if err != nil {
		// A missing API key should not take the whole service down: the
		// analyzers degrade to heuristics when the provider is nil.
		log.Printf("[WARN] LLM provider unavailable: %v (heuristic fallbacks active)", err)
		llmProvider = nil
	} else {
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	speechToText := whisper.NewWhisperTranscriber(
		cfg.Ai.OpenAIBaseURL,
		cfg.Ai.OpenAIKey,
		cfg.Ai.WhisperModel,
		cfg.Ai.WhisperTimeout,
	)

	aggregator := analysis.NewAggregator(
		cfg.Analysis.PerKindTimeout,
		analysis.NewContentQualityAnalyzer(llmProvider),
		analysis.NewCompletenessAnalyzer(),
		analysis.NewPaceAnalyzer(),
		analysis.NewPauseAnalyzer(),
	)

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Analysis.EventTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Analysis.EventTopic,
		uowFactory,
		wsHub,
		wsLogger,
	)

	practiceService := service.NewPracticeService(
		uowFactory,
		registry,
		bank,
		speechToText,
		natsPub,
		sysLogger,
	)
	analysisService := service.NewAnalysisService(
		uowFactory,
		registry,
		aggregator,
		publisherService,
		natsPub,
		sysLogger,
	)
	reportService := service.NewReportService(
		uowFactory,
		llmProvider,
		natsPub,
		sysLogger,
	)

	notifHandler := handler.NewNotificationHandler(wsHub, wsLogger)

	return &Container{
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
		PracticeController:  controller.NewPracticeController(practiceService),
		AnalysisController:  controller.NewAnalysisController(analysisService),
		ReportController:    controller.NewReportController(reportService),

		ConsumerService: consumerService,
	}
}
