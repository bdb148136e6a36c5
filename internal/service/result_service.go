package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/somang-edu/eduportal-backend/internal/config"
	"github.com/somang-edu/eduportal-backend/internal/exam"
	"github.com/somang-edu/eduportal-backend/internal/repository"
)

// ErrResultNotFound is returned when a result row does not exist.
var ErrResultNotFound = errors.New("result not found")

// ResultService builds and caches the aggregated report for an exam. The
// report is recomputed by the stats worker after every submission; reads are
// served from Redis.
type ResultService struct {
	examSvc    *ExamService
	resultRepo *repository.ResultRepository
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(
	examSvc *ExamService,
	resultRepo *repository.ResultRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *ResultService {
	return &ResultService{
		examSvc:    examSvc,
		resultRepo: resultRepo,
		rdb:        rdb,
		log:        log.With().Str("component", "result_service").Logger(),
	}
}

// Report returns the aggregated report for an exam, from cache when fresh.
func (s *ResultService) Report(ctx context.Context, examID uuid.UUID) (*exam.Report, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.ExamStatsKey(examID.String())).Bytes()
	if err == nil {
		var report exam.Report
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		return &report, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return s.Refresh(ctx, examID)
}

// Refresh recomputes the report from PostgreSQL and stores it in Redis.
func (s *ResultService) Refresh(ctx context.Context, examID uuid.UUID) (*exam.Report, error) {
	questions, err := s.examSvc.GetQuestionsWithKey(ctx, examID)
	if err != nil {
		return nil, err
	}
	results, err := s.resultRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	report := exam.BuildReport(questions, results)

	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.ExamStatsKey(examID.String()), data, 0).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Failed to cache report")
	}

	s.log.Debug().
		Str("exam_id", examID.String()).
		Int("attempts", report.Stats.Attempts).
		Msg("Report refreshed")
	return &report, nil
}

// Delete removes a single result and queues a stats refresh. Deleting the
// last result unlocks the exam definition for editing again.
func (s *ResultService) Delete(ctx context.Context, examID, resultID uuid.UUID) error {
	deleted, err := s.resultRepo.Delete(ctx, examID, resultID)
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	if !deleted {
		return ErrResultNotFound
	}

	if err := s.rdb.RPush(ctx, config.WorkerKey.RefreshStatsQueue, examID.String()).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Failed to enqueue stats refresh")
	}

	s.log.Info().Str("exam_id", examID.String()).Str("result_id", resultID.String()).Msg("Result deleted")
	return nil
}
