package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/somang-edu/eduportal-backend/internal/config"
	"github.com/somang-edu/eduportal-backend/internal/database"
	"github.com/somang-edu/eduportal-backend/internal/handler"
	"github.com/somang-edu/eduportal-backend/internal/logger"
	"github.com/somang-edu/eduportal-backend/internal/repository"
	"github.com/somang-edu/eduportal-backend/internal/router"
	"github.com/somang-edu/eduportal-backend/internal/service"
	"github.com/somang-edu/eduportal-backend/internal/validator"
	"github.com/somang-edu/eduportal-backend/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting EduPortal Backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	noticeRepo := repository.NewNoticeRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	resourceRepo := repository.NewResourceRepository(pool)
	videoRepo := repository.NewVideoRepository(pool)
	qnaRepo := repository.NewQnaRepository(pool)

	// Services
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(userRepo, authService, log)
	examService := service.NewExamService(examRepo, resultRepo, rdb, log)
	attemptService := service.NewAttemptService(examService, resultRepo, rdb, cfg, log)
	resultService := service.NewResultService(examService, resultRepo, rdb, log)
	noticeService := service.NewNoticeService(noticeRepo, log)
	courseService := service.NewCourseService(courseRepo, log)
	resourceService := service.NewResourceService(resourceRepo, log)
	videoService := service.NewVideoService(videoRepo, log)
	qnaService := service.NewQnaService(qnaRepo, log)
	mediaService := service.NewMediaService(cfg)

	// Handlers
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService, userService, cfg),
		User:     handler.NewUserHandler(userService),
		Exam:     handler.NewExamHandler(examService, resultService),
		Attempt:  handler.NewAttemptHandler(examService, attemptService),
		Notice:   handler.NewNoticeHandler(noticeService),
		Course:   handler.NewCourseHandler(courseService),
		Resource: handler.NewResourceHandler(resourceService),
		Video:    handler.NewVideoHandler(videoService),
		Qna:      handler.NewQnaHandler(qnaService),
		Media:    handler.NewMediaHandler(mediaService),
		WS:       handler.NewWSHandler(examService, attemptService, log, cfg.AllowedOrigins),
	}

	// Background workers: the deadline sweeper guarantees every entered
	// attempt ends in a result; the stats worker keeps reports warm.
	workerCtx, workerCancel := context.WithCancel(context.Background())

	deadlineWorker := worker.NewDeadlineWorker(attemptService, examService, userService, log)
	statsWorker := worker.NewStatsWorker(resultService, rdb, log)

	go deadlineWorker.Start(workerCtx)
	go statsWorker.Start(workerCtx)

	// Load every exam into Redis BEFORE accepting traffic so the first
	// student into a window never races a cold cache.
	if err := examService.PrewarmAllCaches(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	r := router.SetupRouter(authService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Stop background workers and let them drain.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
