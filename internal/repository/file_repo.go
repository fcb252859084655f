package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/aulavirtual/aula-api/internal/models"
)

// FileRepository defines persistence operations for uploaded course content.
type FileRepository interface {
	Create(ctx context.Context, file *models.CourseFile) error
	GetByID(ctx context.Context, id uint) (models.CourseFile, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.CourseFile, error)
	Delete(ctx context.Context, id uint) error
}

type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository instantiates a GORM-backed repository.
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *models.CourseFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *fileRepository) GetByID(ctx context.Context, id uint) (models.CourseFile, error) {
	var file models.CourseFile
	if err := r.db.WithContext(ctx).First(&file, id).Error; err != nil {
		return models.CourseFile{}, err
	}
	return file, nil
}

func (r *fileRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.CourseFile, error) {
	var files []models.CourseFile
	err := r.db.WithContext(ctx).Where("course_id = ?", courseID).
		Order("created_at ASC").Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.CourseFile{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
