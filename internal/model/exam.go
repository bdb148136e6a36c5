package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam represents an exam definition: the window during which it may be
// entered, the per-attempt time limit, the scanned paper images and the
// question list with its answer key.
type Exam struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	WindowStart      time.Time  `json:"window_start"`
	WindowEnd        time.Time  `json:"window_end"`
	PaperImages      []string   `json:"paper_images"`
	Questions        []Question `json:"questions,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ExamPaper is the student-facing view of an exam: paper images and the
// question list without correct answers. Cached in Redis once the window is
// relevant so attempt traffic bypasses PostgreSQL.
type ExamPaper struct {
	ExamID           uuid.UUID            `json:"exam_id"`
	Title            string               `json:"title"`
	TimeLimitMinutes int                  `json:"time_limit_minutes"`
	WindowStart      time.Time            `json:"window_start"`
	WindowEnd        time.Time            `json:"window_end"`
	PaperImages      []string             `json:"paper_images"`
	Questions        []QuestionForStudent `json:"questions"`
}

// ExamWindow is the cached slice of an exam the attempt gate and the
// deadline worker need: when it opens, when it closes, how long one
// attempt may run.
type ExamWindow struct {
	Title            string    `json:"title"`
	TimeLimitMinutes int       `json:"time_limit_minutes"`
	WindowStart      time.Time `json:"window_start"`
	WindowEnd        time.Time `json:"window_end"`
}

// CreateExamRequest is the payload for creating an exam.
type CreateExamRequest struct {
	Title            string          `json:"title" binding:"required,min=2,max=255"`
	TimeLimitMinutes int             `json:"time_limit_minutes" binding:"required,min=1,max=480"`
	WindowStart      time.Time       `json:"window_start" binding:"required"`
	WindowEnd        time.Time       `json:"window_end" binding:"required,gtfield=WindowStart"`
	PaperImages      []string        `json:"paper_images" binding:"omitempty,dive,max=512"`
	Questions        []QuestionInput `json:"questions" binding:"required,min=1,dive"`
}

// UpdateExamRequest is the payload for updating an exam that has no results.
type UpdateExamRequest struct {
	Title            string          `json:"title" binding:"omitempty,min=2,max=255"`
	TimeLimitMinutes int             `json:"time_limit_minutes" binding:"omitempty,min=1,max=480"`
	WindowStart      *time.Time      `json:"window_start" binding:"omitempty"`
	WindowEnd        *time.Time      `json:"window_end" binding:"omitempty"`
	PaperImages      []string        `json:"paper_images" binding:"omitempty,dive,max=512"`
	Questions        []QuestionInput `json:"questions" binding:"omitempty,min=1,dive"`
}
