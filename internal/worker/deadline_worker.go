package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/somang-edu/eduportal-backend/internal/service"
)

const deadlineSweepInterval = 5 * time.Second

// DeadlineWorker sweeps open attempts and force-submits the ones whose
// deadline has passed, grading whatever was last autosaved. This is what
// guarantees a result exists for every student who entered, even if their
// connection died mid-attempt.
type DeadlineWorker struct {
	attemptSvc *service.AttemptService
	examSvc    *service.ExamService
	userSvc    *service.UserService
	log        zerolog.Logger
}

func NewDeadlineWorker(
	attemptSvc *service.AttemptService,
	examSvc *service.ExamService,
	userSvc *service.UserService,
	log zerolog.Logger,
) *DeadlineWorker {
	return &DeadlineWorker{
		attemptSvc: attemptSvc,
		examSvc:    examSvc,
		userSvc:    userSvc,
		log:        log.With().Str("component", "deadline_worker").Logger(),
	}
}

func (w *DeadlineWorker) Start(ctx context.Context) {
	w.log.Info().Msg("DeadlineWorker started")

	ticker := time.NewTicker(deadlineSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Final sweep...")
			sweepCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			w.sweep(sweepCtx)
			cancel()
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *DeadlineWorker) sweep(ctx context.Context) {
	examIDs, err := w.attemptSvc.ActiveExamIDs(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("List open exams failed")
		return
	}

	now := time.Now()
	for _, rawID := range examIDs {
		w.sweepExam(ctx, rawID, now)
	}
}

func (w *DeadlineWorker) sweepExam(ctx context.Context, rawExamID string, now time.Time) {
	examID, err := uuid.Parse(rawExamID)
	if err != nil {
		w.log.Error().Str("exam_id", rawExamID).Msg("Invalid exam id in open set")
		return
	}

	window, err := w.examSvc.GetWindow(ctx, examID)
	if err != nil {
		w.log.Error().Err(err).Str("exam_id", rawExamID).Msg("Load window failed")
		return
	}

	userIDs, err := w.attemptSvc.ActiveUserIDs(ctx, rawExamID)
	if err != nil {
		w.log.Error().Err(err).Str("exam_id", rawExamID).Msg("List active attempts failed")
		return
	}

	for _, userID := range userIDs {
		deadline, err := w.attemptSvc.AttemptDeadline(ctx, examID, userID, window)
		if err != nil {
			if errors.Is(err, service.ErrNoActiveAttempt) {
				continue
			}
			w.log.Error().Err(err).Str("exam_id", rawExamID).Int("user_id", userID).Msg("Read attempt clock failed")
			continue
		}
		if now.Before(deadline) {
			continue
		}
		w.forceSubmit(ctx, examID, userID)
	}

	if err := w.attemptSvc.CloseExamIfIdle(ctx, rawExamID); err != nil {
		w.log.Warn().Err(err).Str("exam_id", rawExamID).Msg("Close idle exam failed")
	}
}

func (w *DeadlineWorker) forceSubmit(ctx context.Context, examID uuid.UUID, userID int) {
	answers, err := w.attemptSvc.AutosavedAnswers(ctx, examID, userID)
	if err != nil {
		w.log.Error().Err(err).Str("exam_id", examID.String()).Int("user_id", userID).Msg("Load autosave failed")
		return
	}

	name := ""
	if user, err := w.userSvc.GetByID(ctx, userID); err == nil {
		name = user.Name
	}

	result, alreadyTaken, err := w.attemptSvc.Submit(ctx, examID, userID, name, answers, true)
	if err != nil {
		w.log.Error().Err(err).Str("exam_id", examID.String()).Int("user_id", userID).Msg("Force submit failed")
		return
	}
	if alreadyTaken {
		return
	}

	w.log.Info().
		Str("exam_id", examID.String()).
		Int("user_id", userID).
		Int("score", result.Score).
		Msg("Expired attempt force submitted")
}
