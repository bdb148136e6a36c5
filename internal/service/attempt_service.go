package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/somang-edu/eduportal-backend/internal/config"
	"github.com/somang-edu/eduportal-backend/internal/exam"
	"github.com/somang-edu/eduportal-backend/internal/model"
	"github.com/somang-edu/eduportal-backend/internal/repository"
)

// Domain errors.
var (
	ErrExamNotOpenYet  = errors.New("exam window has not opened")
	ErrExamWindowEnded = errors.New("exam window has closed")
	ErrAlreadyTaken    = errors.New("exam already submitted by this student")
	ErrNoActiveAttempt = errors.New("no active attempt for this exam")
)

// StudentExam is one row of a student's exam list: the definition minus the
// answer key, the gate position right now and whether a result exists.
type StudentExam struct {
	ID               uuid.UUID           `json:"id"`
	Title            string              `json:"title"`
	TimeLimitMinutes int                 `json:"time_limit_minutes"`
	WindowStart      time.Time           `json:"window_start"`
	WindowEnd        time.Time           `json:"window_end"`
	Gate             exam.Gate           `json:"gate"`
	Status           model.AttemptStatus `json:"status"`
}

// attemptClock is the value stored at the attempt clock key. Start and
// budget live in one value written by a single SETNX, so a reader that sees
// the clock always sees the complete clock.
type attemptClock struct {
	StartUnix int64 `json:"start_unix"`
	Budget    int   `json:"budget"`
}

// AttemptState is what a student gets on entering (or re-entering) an exam:
// the granted countdown and any autosaved answers to restore.
type AttemptState struct {
	ExamID           uuid.UUID       `json:"exam_id"`
	StartedAt        time.Time       `json:"started_at"`
	BudgetSeconds    int             `json:"budget_seconds"`
	RemainingSeconds int             `json:"remaining_seconds"`
	Answers          model.AnswerMap `json:"answers"`
}

// AttemptService coordinates the attempt lifecycle: the scheduling gate, the
// Redis-tracked entry clock, autosave, and the authoritative submission path.
//
// The countdown a client renders is advisory. The entry timestamp recorded
// here is what elapsed time and deadline enforcement are computed from, so a
// skewed or tampered client clock cannot stretch an attempt.
type AttemptService struct {
	examSvc    *ExamService
	resultRepo *repository.ResultRepository
	rdb        *redis.Client
	cfg        *config.Config
	log        zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	examSvc *ExamService,
	resultRepo *repository.ResultRepository,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		examSvc:    examSvc,
		resultRepo: resultRepo,
		rdb:        rdb,
		cfg:        cfg,
		log:        log.With().Str("component", "attempt_service").Logger(),
	}
}

// ListForStudent returns every exam with its gate position and the student's
// attempt status, newest window first.
func (s *AttemptService) ListForStudent(ctx context.Context, userID int) ([]StudentExam, error) {
	exams, err := s.examSvc.List(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]StudentExam, 0, len(exams))
	for i := range exams {
		e := &exams[i]
		status, err := s.Status(ctx, e.ID, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, StudentExam{
			ID:               e.ID,
			Title:            e.Title,
			TimeLimitMinutes: e.TimeLimitMinutes,
			WindowStart:      e.WindowStart,
			WindowEnd:        e.WindowEnd,
			Gate:             exam.Classify(e, now),
			Status:           *status,
		})
	}
	return out, nil
}

// Status reports whether the student already holds a result for the exam.
func (s *AttemptService) Status(ctx context.Context, examID uuid.UUID, userID int) (*model.AttemptStatus, error) {
	res, err := s.resultRepo.GetByExamAndUser(ctx, examID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.AttemptStatus{Taken: false}, nil
		}
		return nil, err
	}
	return &model.AttemptStatus{
		Taken:       true,
		Score:       &res.Score,
		SubmittedAt: &res.SubmittedAt,
	}, nil
}

// Enter opens (or resumes) an attempt. The first entry records the student's
// entry timestamp and grants a budget of min(time limit, window remainder);
// re-entry within the window keeps the original clock running.
func (s *AttemptService) Enter(ctx context.Context, examID uuid.UUID, userID int) (*AttemptState, error) {
	status, err := s.Status(ctx, examID, userID)
	if err != nil {
		return nil, err
	}
	if status.Taken {
		return nil, ErrAlreadyTaken
	}

	window, err := s.examSvc.GetWindow(ctx, examID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	gate := exam.Classify(&model.Exam{
		TimeLimitMinutes: window.TimeLimitMinutes,
		WindowStart:      window.WindowStart,
		WindowEnd:        window.WindowEnd,
	}, now)

	switch gate.State {
	case exam.GateWaiting:
		return nil, ErrExamNotOpenYet
	case exam.GateEnded:
		return nil, ErrExamWindowEnded
	}

	id := examID.String()

	// Attempt state must outlive the window long enough for the deadline
	// worker to sweep it.
	ttl := time.Until(window.WindowEnd) + time.Duration(window.TimeLimitMinutes)*time.Minute + s.cfg.SubmitGrace + time.Hour

	clockJSON, err := json.Marshal(attemptClock{StartUnix: now.Unix(), Budget: gate.SecondsRemaining})
	if err != nil {
		return nil, fmt.Errorf("marshal clock: %w", err)
	}

	// SetNX makes the first entry win; a concurrent or reconnecting entry
	// reads the winner's clock.
	created, err := s.rdb.SetNX(ctx, config.CacheKey.AttemptClockKey(id, userID), clockJSON, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("record entry: %w", err)
	}

	if created {
		pipe := s.rdb.Pipeline()
		pipe.SAdd(ctx, config.CacheKey.ActiveAttemptsKey(id), userID)
		pipe.SAdd(ctx, config.CacheKey.OpenExamsKey(), id)
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("register attempt: %w", err)
		}
		s.log.Info().Str("exam_id", id).Int("user_id", userID).
			Int("budget", gate.SecondsRemaining).Msg("Attempt started")
	}

	return s.State(ctx, examID, userID)
}

// State reads the attempt clock and autosaved answers for a running attempt.
func (s *AttemptService) State(ctx context.Context, examID uuid.UUID, userID int) (*AttemptState, error) {
	clock, err := s.readClock(ctx, examID.String(), userID)
	if err != nil {
		return nil, err
	}

	startedAt := time.Unix(clock.StartUnix, 0)
	remaining := clock.Budget - int(time.Since(startedAt)/time.Second)
	if remaining < 0 {
		remaining = 0
	}

	answers, err := s.autosavedAnswers(ctx, examID, userID)
	if err != nil {
		return nil, err
	}

	return &AttemptState{
		ExamID:           examID,
		StartedAt:        startedAt,
		BudgetSeconds:    clock.Budget,
		RemainingSeconds: remaining,
		Answers:          answers,
	}, nil
}

// readClock loads the attempt clock, translating a missing key into
// ErrNoActiveAttempt.
func (s *AttemptService) readClock(ctx context.Context, examID string, userID int) (*attemptClock, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.AttemptClockKey(examID, userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoActiveAttempt
		}
		return nil, fmt.Errorf("get attempt clock: %w", err)
	}
	var clock attemptClock
	if err := json.Unmarshal(data, &clock); err != nil {
		return nil, fmt.Errorf("unmarshal attempt clock: %w", err)
	}
	return &clock, nil
}

// Autosave stores a student's in-progress answers. Overwrite semantics: the
// latest save wins in full.
func (s *AttemptService) Autosave(ctx context.Context, examID uuid.UUID, userID int, answers model.AnswerMap) error {
	id := examID.String()
	clockKey := config.CacheKey.AttemptClockKey(id, userID)
	exists, err := s.rdb.Exists(ctx, clockKey).Result()
	if err != nil {
		return fmt.Errorf("check attempt: %w", err)
	}
	if exists == 0 {
		return ErrNoActiveAttempt
	}

	data, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	ttl, err := s.rdb.TTL(ctx, clockKey).Result()
	if err != nil || ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return s.rdb.Set(ctx, config.CacheKey.AttemptAnswersKey(id, userID), data, ttl).Err()
}

// Submit grades and persists an attempt. The server recomputes elapsed time
// from the recorded entry timestamp, clamped to the granted budget plus the
// configured grace. Exactly one submission wins per (exam, user); a second
// trigger of any kind gets the stored result back with alreadyTaken set.
func (s *AttemptService) Submit(ctx context.Context, examID uuid.UUID, userID int, studentName string, answers model.AnswerMap, forced bool) (*model.Result, bool, error) {
	id := examID.String()
	clock, err := s.readClock(ctx, id, userID)
	if err != nil {
		if !errors.Is(err, ErrNoActiveAttempt) {
			return nil, false, err
		}
		// No attempt clock: either never entered, or already swept. A
		// stored result turns this into the idempotent replay path.
		if res, rerr := s.resultRepo.GetByExamAndUser(ctx, examID, userID); rerr == nil {
			return res, true, nil
		}
		return nil, false, ErrNoActiveAttempt
	}

	now := time.Now()
	elapsed := now.Sub(time.Unix(clock.StartUnix, 0))
	maxElapsed := time.Duration(clock.Budget)*time.Second + s.cfg.SubmitGrace
	if elapsed > maxElapsed {
		elapsed = maxElapsed
	}
	if elapsed < 0 {
		elapsed = 0
	}

	questions, err := s.examSvc.GetQuestionsWithKey(ctx, examID)
	if err != nil {
		return nil, false, err
	}
	if answers == nil {
		answers = model.AnswerMap{}
	}
	summary := exam.Score(questions, answers)

	result := &model.Result{
		ExamID:      examID,
		UserID:      userID,
		StudentName: studentName,
		Score:       summary.Earned,
		Answers:     answers,
		TimeTaken:   exam.FormatElapsed(elapsed),
		SubmittedAt: now,
	}

	inserted, err := s.resultRepo.CreateIfAbsent(ctx, result)
	if err != nil {
		return nil, false, fmt.Errorf("store result: %w", err)
	}

	if !inserted {
		existing, err := s.resultRepo.GetByExamAndUser(ctx, examID, userID)
		if err != nil {
			return nil, false, fmt.Errorf("load stored result: %w", err)
		}
		s.cleanupAttempt(ctx, id, userID)
		return existing, true, nil
	}

	s.cleanupAttempt(ctx, id, userID)

	if err := s.rdb.RPush(ctx, config.WorkerKey.RefreshStatsQueue, id).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", id).Msg("Failed to enqueue stats refresh")
	}

	s.log.Info().
		Str("exam_id", id).
		Int("user_id", userID).
		Int("score", result.Score).
		Bool("forced", forced).
		Msg("Attempt submitted")
	return result, false, nil
}

func (s *AttemptService) cleanupAttempt(ctx context.Context, examID string, userID int) {
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.AttemptClockKey(examID, userID))
	pipe.Del(ctx, config.CacheKey.AttemptAnswersKey(examID, userID))
	pipe.SRem(ctx, config.CacheKey.ActiveAttemptsKey(examID), userID)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID).Int("user_id", userID).Msg("Failed to clean attempt keys")
	}
}

func (s *AttemptService) autosavedAnswers(ctx context.Context, examID uuid.UUID, userID int) (model.AnswerMap, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.AttemptAnswersKey(examID.String(), userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.AnswerMap{}, nil
		}
		return nil, fmt.Errorf("get autosave: %w", err)
	}
	var answers model.AnswerMap
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("unmarshal autosave: %w", err)
	}
	return answers, nil
}

// AutosavedAnswers exposes the latest autosave, used by the deadline worker
// when it force-submits an expired attempt.
func (s *AttemptService) AutosavedAnswers(ctx context.Context, examID uuid.UUID, userID int) (model.AnswerMap, error) {
	return s.autosavedAnswers(ctx, examID, userID)
}

// AttemptDeadline computes the wall-clock instant an open attempt must be
// submitted by: entry time plus budget, never past the window end, plus the
// configured grace. Returns ErrNoActiveAttempt when no clock is recorded.
func (s *AttemptService) AttemptDeadline(ctx context.Context, examID uuid.UUID, userID int, window *model.ExamWindow) (time.Time, error) {
	clock, err := s.readClock(ctx, examID.String(), userID)
	if err != nil {
		return time.Time{}, err
	}

	deadline := time.Unix(clock.StartUnix, 0).Add(time.Duration(clock.Budget) * time.Second)
	if deadline.After(window.WindowEnd) {
		deadline = window.WindowEnd
	}
	return deadline.Add(s.cfg.SubmitGrace), nil
}

// ActiveExamIDs lists exam IDs that have at least one open attempt.
func (s *AttemptService) ActiveExamIDs(ctx context.Context) ([]string, error) {
	return s.rdb.SMembers(ctx, config.CacheKey.OpenExamsKey()).Result()
}

// ActiveUserIDs lists user IDs with an open attempt on the exam.
func (s *AttemptService) ActiveUserIDs(ctx context.Context, examID string) ([]int, error) {
	members, err := s.rdb.SMembers(ctx, config.CacheKey.ActiveAttemptsKey(examID)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(members))
	for _, m := range members {
		id, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CloseExamIfIdle drops an exam from the open set once no attempts remain.
func (s *AttemptService) CloseExamIfIdle(ctx context.Context, examID string) error {
	count, err := s.rdb.SCard(ctx, config.CacheKey.ActiveAttemptsKey(examID)).Result()
	if err != nil {
		return err
	}
	if count == 0 {
		return s.rdb.SRem(ctx, config.CacheKey.OpenExamsKey(), examID).Err()
	}
	return nil
}
