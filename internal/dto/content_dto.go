package dto

import (
	"time"

	"github.com/aulavirtual/aula-api/internal/models"
)

// FileResponse is the serialized representation of uploaded course content.
// The storage key stays server-side; clients see the display name and URL.
type FileResponse struct {
	ID          uint      `json:"id"`
	CourseID    uint      `json:"course_id"`
	DisplayName string    `json:"display_name"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewFileResponse converts a model into a DTO.
func NewFileResponse(model models.CourseFile) FileResponse {
	return FileResponse{
		ID:          model.ID,
		CourseID:    model.CourseID,
		DisplayName: model.DisplayName,
		URL:         model.URL,
		ContentType: model.ContentType,
		SizeBytes:   model.SizeBytes,
		CreatedAt:   model.CreatedAt,
	}
}

// NewFileResponseSlice converts a slice of models into DTOs.
func NewFileResponseSlice(files []models.CourseFile) []FileResponse {
	responses := make([]FileResponse, 0, len(files))
	for _, file := range files {
		responses = append(responses, NewFileResponse(file))
	}

	return responses
}
