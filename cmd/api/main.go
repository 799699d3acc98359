package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/algorank/algorank-api/internal/config"
	"github.com/algorank/algorank-api/internal/database"
	"github.com/algorank/algorank-api/internal/handler"
	"github.com/algorank/algorank-api/internal/middleware"
	"github.com/algorank/algorank-api/internal/models"
	"github.com/algorank/algorank-api/internal/repository"
	"github.com/algorank/algorank-api/internal/router"
	"github.com/algorank/algorank-api/internal/service"
	"github.com/algorank/algorank-api/pkg/judge0"
	"github.com/algorank/algorank-api/pkg/testcases"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Problem{},
		&models.SolvedRecord{},
		&models.Submission{},
		&models.TestCaseResult{},
		&models.Contest{},
		&models.ContestProblem{},
		&models.ContestParticipant{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, standings cache disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats url not configured, judged events stay node-local")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	judgeClient := judge0.New(judge0.Config{
		BaseURL:         cfg.JudgeBaseURL,
		APIKey:          cfg.JudgeAPIKey,
		APIHost:         cfg.JudgeAPIHost,
		PollInterval:    cfg.JudgePollInterval,
		MaxPollAttempts: cfg.JudgeMaxPollAttempts,
		CPUTimeLimitSec: cfg.JudgeCPUTimeLimitSec,
		MemoryLimitKB:   cfg.JudgeMemoryLimitKB,
	}, logger)

	problemRepo := repository.NewProblemRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	contestRepo := repository.NewContestRepository(db)

	runCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()

	eventService := service.NewJudgedEventService(natsConn, "", logger)
	eventService.Start(runCtx)

	contestService := service.NewContestService(contestRepo, redisClient, cfg.StandingsCacheTTL, logger)
	scoringService := service.NewScoringService(submissionRepo, problemRepo, contestRepo, contestService, eventService, logger)
	submissionService := service.NewSubmissionService(
		validate,
		problemRepo,
		submissionRepo,
		scoringService,
		judgeClient,
		testcases.NewFSStore(cfg.TestCasesRoot),
		cfg.JudgeAcceptedStatusID,
		logger,
	)
	problemService := service.NewProblemService(problemRepo, logger)

	syncService, err := service.NewProblemSyncService(cfg.ProblemsRoot, problemRepo, logger)
	if err != nil {
		log.Fatalf("failed to build problem sync service: %v", err)
	}
	if report, err := syncService.Sync(runCtx); err != nil {
		log.Fatalf("failed to sync problem catalog: %v", err)
	} else {
		logger.Info().Int("synced", report.Synced).Int("skipped", report.Skipped).Msg("problem catalog ready")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ProblemHandler:         handler.NewProblemHandler(problemService, logger),
		SubmissionHandler:      handler.NewSubmissionHandler(submissionService, logger),
		ContestHandler:         handler.NewContestHandler(contestService, logger),
		StandingsStreamHandler: handler.NewStandingsStreamHandler(eventService, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
