package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/aulavirtual/aula-api/internal/models"
)

// AnswerRepository defines persistence operations for recorded student
// answers. The store is append-only.
type AnswerRepository interface {
	Create(ctx context.Context, answer *models.StudentAnswer) error
	ListByQuestion(ctx context.Context, questionID uint) ([]models.StudentAnswer, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.StudentAnswer, error)
}

type answerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository instantiates a GORM-backed repository.
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(ctx context.Context, answer *models.StudentAnswer) error {
	return r.db.WithContext(ctx).Create(answer).Error
}

func (r *answerRepository) ListByQuestion(ctx context.Context, questionID uint) ([]models.StudentAnswer, error) {
	var answers []models.StudentAnswer
	err := r.db.WithContext(ctx).Where("question_id = ?", questionID).
		Order("created_at ASC").Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.StudentAnswer, error) {
	var answers []models.StudentAnswer
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).
		Order("created_at ASC").Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}
