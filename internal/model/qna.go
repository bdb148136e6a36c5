package model

import "time"

// QnaPost is a student question on the Q&A board. The author identity always
// comes from the verified JWT claims of the creating request, never from
// client-supplied fields.
type QnaPost struct {
	ID         int        `json:"id"`
	AuthorID   int        `json:"author_id"`
	AuthorName string     `json:"author_name"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	Answer     *string    `json:"answer,omitempty"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CreateQnaRequest is the payload for posting a question.
type CreateQnaRequest struct {
	Title string `json:"title" binding:"required,min=2,max=255"`
	Body  string `json:"body" binding:"required"`
}

// AnswerQnaRequest is the payload for an admin answering a question.
type AnswerQnaRequest struct {
	Answer string `json:"answer" binding:"required"`
}
