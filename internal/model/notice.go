package model

import "time"

// Notice is a portal announcement shown on the public pages and the student
// dashboard.
type Notice struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateNoticeRequest is the payload for creating a notice.
type CreateNoticeRequest struct {
	Title  string `json:"title" binding:"required,min=2,max=255"`
	Body   string `json:"body" binding:"required"`
	Pinned bool   `json:"pinned"`
}

// UpdateNoticeRequest is the payload for updating a notice.
type UpdateNoticeRequest struct {
	Title  string `json:"title" binding:"required,min=2,max=255"`
	Body   string `json:"body" binding:"required"`
	Pinned bool   `json:"pinned"`
}
