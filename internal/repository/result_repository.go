package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/somang-edu/eduportal-backend/internal/model"
)

// ResultRepository handles persisted attempt outcomes. The results table
// carries a UNIQUE (exam_id, user_id) index, which is what makes the
// idempotency guard atomic instead of check-then-insert.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// CreateIfAbsent inserts a result unless one already exists for the
// (exam, user) pair. Returns true when the row was inserted; false means a
// concurrent or earlier submission won and the stored result is untouched.
func (r *ResultRepository) CreateIfAbsent(ctx context.Context, res *model.Result) (bool, error) {
	answersJSON, err := json.Marshal(res.Answers)
	if err != nil {
		return false, fmt.Errorf("marshal answers: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO results (exam_id, user_id, student_name, score, answers, time_taken, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (exam_id, user_id) DO NOTHING
		 RETURNING id`,
		res.ExamID, res.UserID, res.StudentName, res.Score, answersJSON, res.TimeTaken, res.SubmittedAt,
	).Scan(&res.ID)
	if err != nil {
		// DO NOTHING yields no row on conflict, which QueryRow reports as
		// ErrNoRows: the earlier submission stands.
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetByExamAndUser retrieves the stored result for one student on one exam.
func (r *ResultRepository) GetByExamAndUser(ctx context.Context, examID uuid.UUID, userID int) (*model.Result, error) {
	res := &model.Result{}
	var answersJSON []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, user_id, student_name, score, answers, time_taken, submitted_at
		 FROM results
		 WHERE exam_id = $1 AND user_id = $2`, examID, userID,
	).Scan(&res.ID, &res.ExamID, &res.UserID, &res.StudentName, &res.Score, &answersJSON, &res.TimeTaken, &res.SubmittedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answersJSON, &res.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	return res, nil
}

// ListByExam retrieves all results for an exam ordered by submission time,
// the stable order the aggregator ranks from.
func (r *ResultRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, user_id, student_name, score, answers, time_taken, submitted_at
		 FROM results
		 WHERE exam_id = $1
		 ORDER BY submitted_at ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		var res model.Result
		var answersJSON []byte
		if err := rows.Scan(&res.ID, &res.ExamID, &res.UserID, &res.StudentName, &res.Score, &answersJSON, &res.TimeTaken, &res.SubmittedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(answersJSON, &res.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// ExistsForExam reports whether any result exists for the exam, used to
// freeze exam definitions once attempts are on record.
func (r *ResultRepository) ExistsForExam(ctx context.Context, examID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM results WHERE exam_id = $1)`, examID).Scan(&exists)
	return exists, err
}

// Delete removes a single result (admin correction tool).
func (r *ResultRepository) Delete(ctx context.Context, examID, resultID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM results WHERE id = $1 AND exam_id = $2`, resultID, examID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
