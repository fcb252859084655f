package dto

import (
	"time"

	"github.com/aulavirtual/aula-api/internal/models"
)

// ExamCreateRequest describes the payload for creating an exam.
type ExamCreateRequest struct {
	Title string `form:"title" json:"title" validate:"required,min=3,max=255"`
}

// OptionPayload describes one option of a multiple-choice question.
type OptionPayload struct {
	Text      string `form:"text" json:"text" validate:"required,max=255"`
	IsCorrect bool   `form:"is_correct" json:"is_correct"`
}

// QuestionCreateRequest describes the payload for adding a question to an
// exam. Options are only meaningful for multiple-choice questions.
type QuestionCreateRequest struct {
	Text    string          `form:"text" json:"text" validate:"required"`
	Kind    string          `form:"kind" json:"kind" validate:"required,oneof=open multiple_choice"`
	Options []OptionPayload `json:"options" validate:"dive"`
}

// OptionCreateRequest describes the payload for appending an option to an
// existing multiple-choice question.
type OptionCreateRequest struct {
	Text      string `form:"text" json:"text" validate:"required,max=255"`
	IsCorrect bool   `form:"is_correct" json:"is_correct"`
}

// AnswerSubmitRequest describes a student's submission against a question.
// Exactly one of the two payload shapes is meaningful, depending on the
// question kind.
type AnswerSubmitRequest struct {
	AnswerText        string `form:"answer_text" json:"answer_text"`
	SelectedOptionIDs []uint `json:"selected_option_ids"`
}

// OptionResponse is the serialized representation of an option. Whether the
// option is correct is never exposed to students; the teacher-facing answer
// listing carries it separately.
type OptionResponse struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// QuestionResponse is the serialized representation of a question.
type QuestionResponse struct {
	ID      uint             `json:"id"`
	ExamID  uint             `json:"exam_id"`
	Text    string           `json:"text"`
	Kind    string           `json:"kind"`
	Options []OptionResponse `json:"options,omitempty"`
}

// ExamResponse is the serialized representation of an exam.
type ExamResponse struct {
	ID        uint               `json:"id"`
	CourseID  uint               `json:"course_id"`
	Title     string             `json:"title"`
	Questions []QuestionResponse `json:"questions,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// AnswerResponse is the serialized representation of a recorded answer.
type AnswerResponse struct {
	ID                uint      `json:"id"`
	QuestionID        uint      `json:"question_id"`
	StudentID         uint      `json:"student_id"`
	AnswerText        string    `json:"answer_text,omitempty"`
	SelectedOptionIDs []uint    `json:"selected_option_ids,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewOptionResponse converts a model into a DTO.
func NewOptionResponse(model models.Option) OptionResponse {
	return OptionResponse{ID: model.ID, Text: model.Text}
}

// NewQuestionResponse converts a model into a DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	response := QuestionResponse{
		ID:     model.ID,
		ExamID: model.ExamID,
		Text:   model.Text,
		Kind:   model.Kind,
	}
	for _, option := range model.Options {
		response.Options = append(response.Options, NewOptionResponse(option))
	}

	return response
}

// NewExamResponse converts a model into a DTO.
func NewExamResponse(model models.Exam) ExamResponse {
	response := ExamResponse{
		ID:        model.ID,
		CourseID:  model.CourseID,
		Title:     model.Title,
		CreatedAt: model.CreatedAt,
	}
	for _, question := range model.Questions {
		response.Questions = append(response.Questions, NewQuestionResponse(question))
	}

	return response
}

// NewExamResponseSlice converts a slice of models into DTOs.
func NewExamResponseSlice(exams []models.Exam) []ExamResponse {
	responses := make([]ExamResponse, 0, len(exams))
	for _, exam := range exams {
		responses = append(responses, NewExamResponse(exam))
	}

	return responses
}

// NewAnswerResponse converts a model into a DTO.
func NewAnswerResponse(model models.StudentAnswer) (AnswerResponse, error) {
	selected, err := model.SelectedOptions()
	if err != nil {
		return AnswerResponse{}, err
	}

	return AnswerResponse{
		ID:                model.ID,
		QuestionID:        model.QuestionID,
		StudentID:         model.StudentID,
		AnswerText:        model.AnswerText,
		SelectedOptionIDs: selected,
		CreatedAt:         model.CreatedAt,
	}, nil
}

// NewAnswerResponseSlice converts a slice of models into DTOs.
func NewAnswerResponseSlice(answers []models.StudentAnswer) ([]AnswerResponse, error) {
	responses := make([]AnswerResponse, 0, len(answers))
	for _, answer := range answers {
		response, err := NewAnswerResponse(answer)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}

	return responses, nil
}
