package model

import (
	"time"

	"github.com/google/uuid"
)

// Result is the persisted, authoritative outcome of a completed attempt.
// At most one exists per (exam, user), enforced by a unique index.
type Result struct {
	ID          uuid.UUID `json:"id"`
	ExamID      uuid.UUID `json:"exam_id"`
	UserID      int       `json:"user_id"`
	StudentName string    `json:"student_name"`
	Score       int       `json:"score"`
	Answers     AnswerMap `json:"answers"`
	TimeTaken   string    `json:"time_taken"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// SubmitRequest carries a student's raw answers. The reported elapsed time is
// advisory; the server recomputes it from the recorded entry timestamp.
type SubmitRequest struct {
	Answers        AnswerMap `json:"answers" binding:"required"`
	ElapsedSeconds int       `json:"elapsed_seconds" binding:"min=0"`
}

// AttemptStatus tells a student whether they already hold a result for an
// exam, checked before the attempt machine allows entry.
type AttemptStatus struct {
	Taken       bool       `json:"taken"`
	Score       *int       `json:"score,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}
