package model

import "time"

// Video is a review video available to approved students.
type Video struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	VideoURL  string    `json:"video_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateVideoRequest is the payload for creating a review video entry.
type CreateVideoRequest struct {
	Title    string `json:"title" binding:"required,min=2,max=255"`
	VideoURL string `json:"video_url" binding:"required,max=512"`
}

// UpdateVideoRequest is the payload for updating a review video entry.
type UpdateVideoRequest struct {
	Title    string `json:"title" binding:"required,min=2,max=255"`
	VideoURL string `json:"video_url" binding:"required,max=512"`
}
