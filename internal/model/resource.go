package model

import "time"

// Resource is a downloadable study material available to approved students.
type Resource struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	FileURL   string    `json:"file_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateResourceRequest is the payload for creating a resource. The file is
// uploaded separately through the media endpoint; only its URL is stored.
type CreateResourceRequest struct {
	Title   string `json:"title" binding:"required,min=2,max=255"`
	FileURL string `json:"file_url" binding:"required,max=512"`
}

// UpdateResourceRequest is the payload for updating a resource.
type UpdateResourceRequest struct {
	Title   string `json:"title" binding:"required,min=2,max=255"`
	FileURL string `json:"file_url" binding:"required,max=512"`
}
