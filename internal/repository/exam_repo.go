package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/aulavirtual/aula-api/internal/models"
)

// ExamRepository defines persistence operations for exams, questions and
// options.
type ExamRepository interface {
	CreateExam(ctx context.Context, exam *models.Exam) error
	GetExam(ctx context.Context, id uint) (models.Exam, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.Exam, error)
	AddQuestion(ctx context.Context, question *models.Question) error
	GetQuestion(ctx context.Context, id uint) (models.Question, error)
	AddOption(ctx context.Context, option *models.Option) error
}

type examRepository struct {
	db *gorm.DB
}

// NewExamRepository instantiates a GORM-backed repository.
func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) CreateExam(ctx context.Context, exam *models.Exam) error {
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *examRepository) GetExam(ctx context.Context, id uint) (models.Exam, error) {
	var exam models.Exam
	err := r.db.WithContext(ctx).
		Preload("Questions.Options").
		First(&exam, id).Error
	if err != nil {
		return models.Exam{}, err
	}
	return exam, nil
}

func (r *examRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Exam, error) {
	var exams []models.Exam
	err := r.db.WithContext(ctx).Where("course_id = ?", courseID).
		Order("created_at ASC").Find(&exams).Error
	if err != nil {
		return nil, err
	}
	return exams, nil
}

// AddQuestion persists the question together with any options in a single
// transaction, so a failed option write never leaves a bare multiple-choice
// question behind.
func (r *examRepository) AddQuestion(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(question).Error
	})
}

func (r *examRepository) GetQuestion(ctx context.Context, id uint) (models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).Preload("Options").First(&question, id).Error
	if err != nil {
		return models.Question{}, err
	}
	return question, nil
}

func (r *examRepository) AddOption(ctx context.Context, option *models.Option) error {
	return r.db.WithContext(ctx).Create(option).Error
}
