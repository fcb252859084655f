package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Question kinds. Open questions collect free text, multiple-choice
// questions collect a selection among their options.
const (
	QuestionKindOpen           = "open"
	QuestionKindMultipleChoice = "multiple_choice"
)

// ValidQuestionKind reports whether the kind is supported.
func ValidQuestionKind(kind string) bool {
	return kind == QuestionKindOpen || kind == QuestionKindMultipleChoice
}

// Exam groups the questions a teacher publishes for a course.
type Exam struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CourseID  uint       `gorm:"not null;index" json:"course_id"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Questions []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Resolvable reports whether a student can answer the exam. An exam with no
// questions is still a draft.
func (e Exam) Resolvable() bool {
	return len(e.Questions) > 0
}

// Question belongs to an exam and is either open or multiple-choice.
type Question struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ExamID    uint      `gorm:"not null;index" json:"exam_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Kind      string    `gorm:"size:32;not null" json:"kind"`
	Options   []Option  `gorm:"constraint:OnDelete:CASCADE" json:"options,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsMultipleChoice reports whether the question carries options.
func (q Question) IsMultipleChoice() bool {
	return q.Kind == QuestionKindMultipleChoice
}

// Option is one selectable choice of a multiple-choice question.
type Option struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Text       string    `gorm:"size:255;not null" json:"text"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
}

// StudentAnswer records one submission of a student against a question.
// Submissions are append-only; resubmitting inserts a new row.
type StudentAnswer struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	QuestionID        uint           `gorm:"not null;index" json:"question_id"`
	StudentID         uint           `gorm:"not null;index" json:"student_id"`
	AnswerText        string         `gorm:"type:text" json:"answer_text,omitempty"`
	SelectedOptionIDs datatypes.JSON `gorm:"column:selected_option_ids" json:"selected_option_ids,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// SetSelectedOptions stores the chosen option identifiers as a JSON array.
func (a *StudentAnswer) SetSelectedOptions(ids []uint) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	a.SelectedOptionIDs = datatypes.JSON(raw)
	return nil
}

// SelectedOptions decodes the stored option identifiers.
func (a StudentAnswer) SelectedOptions() ([]uint, error) {
	if len(a.SelectedOptionIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	if err := json.Unmarshal(a.SelectedOptionIDs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
