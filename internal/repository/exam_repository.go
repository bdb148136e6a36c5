package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/somang-edu/eduportal-backend/internal/model"
)

// ExamRepository handles exam definition data access. Questions live in
// their own table but are always written and read together with their exam.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// Create inserts an exam and its questions in one transaction so a failing
// question write never leaves a half-saved exam behind.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO exams (title, time_limit_minutes, window_start, window_end, paper_images)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		e.Title, e.TimeLimitMinutes, e.WindowStart, e.WindowEnd, e.PaperImages,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert exam: %w", err)
	}

	if err := insertQuestions(ctx, tx, e.ID, e.Questions); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Update rewrites an exam and replaces its question list in one transaction.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE exams
		 SET title = $1, time_limit_minutes = $2, window_start = $3, window_end = $4,
		     paper_images = $5, updated_at = NOW()
		 WHERE id = $6`,
		e.Title, e.TimeLimitMinutes, e.WindowStart, e.WindowEnd, e.PaperImages, e.ID)
	if err != nil {
		return fmt.Errorf("update exam: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE exam_id = $1`, e.ID); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}
	if err := insertQuestions(ctx, tx, e.ID, e.Questions); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertQuestions(ctx context.Context, tx pgx.Tx, examID uuid.UUID, questions []model.Question) error {
	for _, q := range questions {
		_, err := tx.Exec(ctx,
			`INSERT INTO questions (exam_id, id, kind, score, correct_answer)
			 VALUES ($1, $2, $3, $4, $5)`,
			examID, q.ID, q.Kind, q.Score, q.CorrectAnswer)
		if err != nil {
			return fmt.Errorf("insert question %d: %w", q.ID, err)
		}
	}
	return nil
}

// GetByID retrieves an exam with its full question list (answer key
// included; callers strip it for student-facing views).
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, time_limit_minutes, window_start, window_end, paper_images, created_at, updated_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.TimeLimitMinutes, &e.WindowStart, &e.WindowEnd, &e.PaperImages, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, kind, score, correct_answer
		 FROM questions WHERE exam_id = $1
		 ORDER BY id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Kind, &q.Score, &q.CorrectAnswer); err != nil {
			return nil, err
		}
		e.Questions = append(e.Questions, q)
	}
	return e, rows.Err()
}

// List retrieves all exams without their question lists, newest window first.
func (r *ExamRepository) List(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, time_limit_minutes, window_start, window_end, paper_images, created_at, updated_at
		 FROM exams
		 ORDER BY window_start DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.TimeLimitMinutes, &e.WindowStart, &e.WindowEnd, &e.PaperImages, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// Delete removes an exam. Questions cascade with it.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	return err
}
