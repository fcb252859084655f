package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/aulavirtual/aula-api/internal/models"
)

// CourseRepository defines persistence operations for courses and their
// enrolled-student roster.
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint) (models.Course, error)
	GetDetailed(ctx context.Context, id uint) (models.Course, error)
	ListAll(ctx context.Context) ([]models.Course, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Course, error)
	ListEnrolled(ctx context.Context, studentID uint) ([]models.Course, error)
	ReplaceStudents(ctx context.Context, course *models.Course, students []models.User) error
	IsEnrolled(ctx context.Context, courseID, studentID uint) (bool, error)
	Delete(ctx context.Context, course *models.Course) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Model(course).
		Select("name", "description").
		Updates(map[string]interface{}{
			"name":        course.Name,
			"description": course.Description,
		}).Error
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Preload("Teacher").First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) GetDetailed(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Students").
		Preload("Files").
		Preload("Exams.Questions.Options").
		First(&course, id).Error
	if err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) ListAll(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).Preload("Teacher").Order("name ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).Preload("Teacher").
		Where("teacher_id = ?", teacherID).Order("name ASC").Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) ListEnrolled(ctx context.Context, studentID uint) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).Preload("Teacher").
		Joins("JOIN course_students ON course_students.course_id = courses.id").
		Where("course_students.user_id = ?", studentID).
		Order("name ASC").Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// ReplaceStudents overwrites the course roster with the given set. The
// relation is assigned wholesale, never merged.
func (r *courseRepository) ReplaceStudents(ctx context.Context, course *models.Course, students []models.User) error {
	return r.db.WithContext(ctx).Model(course).Association("Students").Replace(students)
}

func (r *courseRepository) IsEnrolled(ctx context.Context, courseID, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("course_students").
		Where("course_id = ? AND user_id = ?", courseID, studentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes the course and everything it owns in one transaction:
// roster links, files, exams with their questions, options and recorded
// answers. Blob removal is the caller's concern.
func (r *courseRepository) Delete(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var examIDs []uint
		if err := tx.Model(&models.Exam{}).Where("course_id = ?", course.ID).
			Pluck("id", &examIDs).Error; err != nil {
			return err
		}

		if len(examIDs) > 0 {
			var questionIDs []uint
			if err := tx.Model(&models.Question{}).Where("exam_id IN ?", examIDs).
				Pluck("id", &questionIDs).Error; err != nil {
				return err
			}
			if len(questionIDs) > 0 {
				if err := tx.Where("question_id IN ?", questionIDs).
					Delete(&models.StudentAnswer{}).Error; err != nil {
					return err
				}
				if err := tx.Where("question_id IN ?", questionIDs).
					Delete(&models.Option{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("exam_id IN ?", examIDs).Delete(&models.Question{}).Error; err != nil {
				return err
			}
			if err := tx.Where("course_id = ?", course.ID).Delete(&models.Exam{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("course_id = ?", course.ID).Delete(&models.CourseFile{}).Error; err != nil {
			return err
		}
		if err := tx.Model(course).Association("Students").Clear(); err != nil {
			return err
		}
		return tx.Delete(course).Error
	})
}
