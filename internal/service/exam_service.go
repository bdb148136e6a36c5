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
	"github.com/somang-edu/eduportal-backend/internal/model"
	"github.com/somang-edu/eduportal-backend/internal/repository"
)

// Domain errors.
var (
	ErrExamNotFound      = errors.New("exam not found")
	ErrExamLocked        = errors.New("exam already has submitted results")
	ErrDuplicateQuestion = errors.New("duplicate question id in exam")
	ErrBadAnswerKey      = errors.New("choice answer key must be one of the labels 1-5")
)

var choiceKeyLabels = map[string]bool{"1": true, "2": true, "3": true, "4": true, "5": true}

// ExamService handles exam authoring and the Redis caches that attempt
// traffic reads from instead of PostgreSQL.
type ExamService struct {
	examRepo   *repository.ExamRepository
	resultRepo *repository.ResultRepository
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	examRepo *repository.ExamRepository,
	resultRepo *repository.ResultRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		examRepo:   examRepo,
		resultRepo: resultRepo,
		rdb:        rdb,
		log:        log.With().Str("component", "exam_service").Logger(),
	}
}

// GetByID retrieves an exam with its full question list, answer key
// included. Admin use only.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrExamNotFound
	}
	return exam, nil
}

// List retrieves all exams without question lists.
func (s *ExamService) List(ctx context.Context) ([]model.Exam, error) {
	exams, err := s.examRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, nil
}

// Create inserts a new exam and warms its caches.
func (s *ExamService) Create(ctx context.Context, req *model.CreateExamRequest) (*model.Exam, error) {
	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	exam := &model.Exam{
		Title:            req.Title,
		TimeLimitMinutes: req.TimeLimitMinutes,
		WindowStart:      req.WindowStart,
		WindowEnd:        req.WindowEnd,
		PaperImages:      req.PaperImages,
		Questions:        questions,
	}
	if exam.PaperImages == nil {
		exam.PaperImages = []string{}
	}

	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	if err := s.WarmExamCache(ctx, exam); err != nil {
		s.log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("Failed to warm cache after create")
	}

	s.log.Info().Str("exam_id", exam.ID.String()).Str("title", exam.Title).Msg("Exam created")
	return exam, nil
}

// Update rewrites an exam definition. Refused once any result exists, so
// submitted scores always refer to the paper their students saw.
func (s *ExamService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrExamNotFound
	}

	locked, err := s.resultRepo.ExistsForExam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("check results: %w", err)
	}
	if locked {
		return nil, ErrExamLocked
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.TimeLimitMinutes != 0 {
		exam.TimeLimitMinutes = req.TimeLimitMinutes
	}
	if req.WindowStart != nil {
		exam.WindowStart = *req.WindowStart
	}
	if req.WindowEnd != nil {
		exam.WindowEnd = *req.WindowEnd
	}
	if !exam.WindowEnd.After(exam.WindowStart) {
		return nil, errors.New("window end must be after window start")
	}
	if req.PaperImages != nil {
		exam.PaperImages = req.PaperImages
	}
	if req.Questions != nil {
		questions, err := buildQuestions(req.Questions)
		if err != nil {
			return nil, err
		}
		exam.Questions = questions
	}

	if err := s.examRepo.Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("update exam: %w", err)
	}

	if err := s.WarmExamCache(ctx, exam); err != nil {
		s.log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("Failed to rewarm cache after update")
	}

	s.log.Info().Str("exam_id", exam.ID.String()).Msg("Exam updated")
	return exam, nil
}

// Delete removes an exam with no results yet, along with its caches.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.examRepo.GetByID(ctx, id); err != nil {
		return ErrExamNotFound
	}

	locked, err := s.resultRepo.ExistsForExam(ctx, id)
	if err != nil {
		return fmt.Errorf("check results: %w", err)
	}
	if locked {
		return ErrExamLocked
	}

	if err := s.examRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}

	examID := id.String()
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.ExamPaperKey(examID))
	pipe.Del(ctx, config.CacheKey.ExamAnswerKeyKey(examID))
	pipe.Del(ctx, config.CacheKey.ExamWindowKey(examID))
	pipe.Del(ctx, config.CacheKey.ExamStatsKey(examID))
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID).Msg("Failed to drop exam caches")
	}

	s.log.Info().Str("exam_id", examID).Msg("Exam deleted")
	return nil
}

// WarmExamCache loads an exam's student paper, answer key and window into
// Redis in one pipeline so attempt traffic never touches PostgreSQL.
func (s *ExamService) WarmExamCache(ctx context.Context, exam *model.Exam) error {
	studentQuestions := make([]model.QuestionForStudent, len(exam.Questions))
	for i, q := range exam.Questions {
		studentQuestions[i] = model.QuestionForStudent{
			ID:    q.ID,
			Kind:  q.Kind,
			Score: q.Score,
		}
	}

	paper := model.ExamPaper{
		ExamID:           exam.ID,
		Title:            exam.Title,
		TimeLimitMinutes: exam.TimeLimitMinutes,
		WindowStart:      exam.WindowStart,
		WindowEnd:        exam.WindowEnd,
		PaperImages:      exam.PaperImages,
		Questions:        studentQuestions,
	}
	paperJSON, err := json.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshal paper: %w", err)
	}

	keyJSON, err := json.Marshal(exam.Questions)
	if err != nil {
		return fmt.Errorf("marshal answer key: %w", err)
	}

	window := model.ExamWindow{
		Title:            exam.Title,
		TimeLimitMinutes: exam.TimeLimitMinutes,
		WindowStart:      exam.WindowStart,
		WindowEnd:        exam.WindowEnd,
	}
	windowJSON, err := json.Marshal(window)
	if err != nil {
		return fmt.Errorf("marshal window: %w", err)
	}

	examID := exam.ID.String()
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.ExamPaperKey(examID), paperJSON, 0)
	pipe.Set(ctx, config.CacheKey.ExamAnswerKeyKey(examID), keyJSON, 0)
	pipe.Set(ctx, config.CacheKey.ExamWindowKey(examID), windowJSON, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("exam_id", examID).
		Int("questions", len(exam.Questions)).
		Msg("Cache warmed")
	return nil
}

// PrewarmAllCaches loads every exam into Redis on application startup so
// the first student into an exam never races a cold cache.
func (s *ExamService) PrewarmAllCaches(ctx context.Context) error {
	exams, err := s.examRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list exams: %w", err)
	}

	if len(exams) == 0 {
		s.log.Info().Msg("No exams to prewarm")
		return nil
	}

	warmed := 0
	for i := range exams {
		full, err := s.examRepo.GetByID(ctx, exams[i].ID)
		if err != nil {
			s.log.Warn().Err(err).Str("exam_id", exams[i].ID.String()).Msg("Failed to load exam, skipping")
			continue
		}
		if err := s.WarmExamCache(ctx, full); err != nil {
			s.log.Warn().Err(err).Str("exam_id", exams[i].ID.String()).Msg("Failed to warm exam, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().Int("warmed", warmed).Int("total", len(exams)).Msg("Prewarming complete")
	return nil
}

// GetPaper retrieves the cached student-facing paper, falling back to
// PostgreSQL and rewarming on a cache miss.
func (s *ExamService) GetPaper(ctx context.Context, examID uuid.UUID) (*model.ExamPaper, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.ExamPaperKey(examID.String())).Bytes()
	if err == nil {
		var paper model.ExamPaper
		if err := json.Unmarshal(data, &paper); err != nil {
			return nil, fmt.Errorf("unmarshal paper: %w", err)
		}
		return &paper, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get paper: %w", err)
	}

	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, ErrExamNotFound
	}
	if err := s.WarmExamCache(ctx, exam); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Failed to rewarm cache on miss")
	}

	studentQuestions := make([]model.QuestionForStudent, len(exam.Questions))
	for i, q := range exam.Questions {
		studentQuestions[i] = model.QuestionForStudent{ID: q.ID, Kind: q.Kind, Score: q.Score}
	}
	return &model.ExamPaper{
		ExamID:           exam.ID,
		Title:            exam.Title,
		TimeLimitMinutes: exam.TimeLimitMinutes,
		WindowStart:      exam.WindowStart,
		WindowEnd:        exam.WindowEnd,
		PaperImages:      exam.PaperImages,
		Questions:        studentQuestions,
	}, nil
}

// GetQuestionsWithKey retrieves the cached question list including correct
// answers, used by grading paths. Falls back to PostgreSQL on a miss.
func (s *ExamService) GetQuestionsWithKey(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.ExamAnswerKeyKey(examID.String())).Bytes()
	if err == nil {
		var questions []model.Question
		if err := json.Unmarshal(data, &questions); err != nil {
			return nil, fmt.Errorf("unmarshal answer key: %w", err)
		}
		return questions, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get answer key: %w", err)
	}

	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, ErrExamNotFound
	}
	return exam.Questions, nil
}

// GetWindow retrieves the cached window and time limit for an exam.
func (s *ExamService) GetWindow(ctx context.Context, examID uuid.UUID) (*model.ExamWindow, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.ExamWindowKey(examID.String())).Bytes()
	if err == nil {
		var window model.ExamWindow
		if err := json.Unmarshal(data, &window); err != nil {
			return nil, fmt.Errorf("unmarshal window: %w", err)
		}
		return &window, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get window: %w", err)
	}

	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, ErrExamNotFound
	}
	return &model.ExamWindow{
		Title:            exam.Title,
		TimeLimitMinutes: exam.TimeLimitMinutes,
		WindowStart:      exam.WindowStart,
		WindowEnd:        exam.WindowEnd,
	}, nil
}

func buildQuestions(inputs []model.QuestionInput) ([]model.Question, error) {
	seen := make(map[int]bool, len(inputs))
	questions := make([]model.Question, len(inputs))
	for i, in := range inputs {
		if seen[in.ID] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateQuestion, in.ID)
		}
		seen[in.ID] = true
		if model.QuestionKind(in.Kind) == model.QuestionKindChoice && !choiceKeyLabels[in.CorrectAnswer] {
			return nil, fmt.Errorf("%w: question %d", ErrBadAnswerKey, in.ID)
		}
		questions[i] = model.Question{
			ID:            in.ID,
			Kind:          model.QuestionKind(in.Kind),
			Score:         in.Score,
			CorrectAnswer: in.CorrectAnswer,
		}
	}
	return questions, nil
}
