package dto

import (
	"time"

	"github.com/aulavirtual/aula-api/internal/models"
)

// CourseCreateRequest describes the payload for creating a course. The
// acting teacher becomes the owner.
type CourseCreateRequest struct {
	Name        string `form:"name" json:"name" validate:"required,min=3,max=255"`
	Description string `form:"description" json:"description" validate:"max=10000"`
}

// CourseUpdateRequest describes the payload for editing a course.
type CourseUpdateRequest struct {
	Name        *string `form:"name" json:"name" validate:"omitempty,min=3,max=255"`
	Description *string `form:"description" json:"description" validate:"omitempty,max=10000"`
}

// RosterRequest carries the full replacement roster for a course. An empty
// set is valid and clears the roster.
type RosterRequest struct {
	StudentIDs []uint `form:"student_ids" json:"student_ids"`
}

// CourseResponse is the serialized representation returned to API clients.
type CourseResponse struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Teacher     AccountResponse   `json:"teacher"`
	Students    []AccountResponse `json:"students,omitempty"`
	Files       []FileResponse    `json:"files,omitempty"`
	Exams       []ExamResponse    `json:"exams,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	response := CourseResponse{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Teacher:     NewAccountResponse(model.Teacher),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}

	if len(model.Students) > 0 {
		response.Students = NewAccountResponseSlice(model.Students)
	}
	if len(model.Files) > 0 {
		response.Files = NewFileResponseSlice(model.Files)
	}
	if len(model.Exams) > 0 {
		response.Exams = NewExamResponseSlice(model.Exams)
	}

	return response
}

// NewCourseResponseSlice converts a slice of models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}

	return responses
}
