package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aulavirtual/aula-api/internal/dto"
	"github.com/aulavirtual/aula-api/internal/models"
	"github.com/aulavirtual/aula-api/internal/policy"
	"github.com/aulavirtual/aula-api/internal/repository"
)

// BlobStore abstracts the backing object store for uploaded content.
type BlobStore interface {
	Put(ctx context.Context, key string, reader io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CourseService exposes course catalog use cases.
type CourseService interface {
	Create(ctx context.Context, actor models.User, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Update(ctx context.Context, actor models.User, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error)
	Delete(ctx context.Context, actor models.User, id uint) error
	Get(ctx context.Context, actor models.User, id uint) (dto.CourseResponse, error)
	List(ctx context.Context, actor models.User) ([]dto.CourseResponse, error)
}

type courseService struct {
	courses   repository.CourseRepository
	files     repository.FileRepository
	policy    *policy.Policy
	blobs     BlobStore
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCourseService builds a new course service.
func NewCourseService(courses repository.CourseRepository, files repository.FileRepository, pol *policy.Policy, blobs BlobStore, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:   courses,
		files:     files,
		policy:    pol,
		blobs:     blobs,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

// Create makes the acting teacher the owner of the new course.
func (s *courseService) Create(ctx context.Context, actor models.User, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionCreateCourse, nil); err != nil {
		return dto.CourseResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Name:        strings.TrimSpace(payload.Name),
		Description: s.sanitizer.Sanitize(payload.Description),
		TeacherID:   actor.ID,
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}
	course.Teacher = actor

	s.logger.Info().Uint("course_id", course.ID).Uint("teacher_id", actor.ID).Msg("course created")

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Update(ctx context.Context, actor models.User, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.getCourse(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	if err := s.policy.Authorize(actor, policy.ActionEditCourse, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	if payload.Name != nil {
		course.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Description != nil {
		course.Description = s.sanitizer.Sanitize(*payload.Description)
	}

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Msg("course updated")

	return dto.NewCourseResponse(course), nil
}

// Delete removes the course with everything it owns. The database rows go
// first in one transaction; backing blobs are removed afterwards best-effort,
// since a leaked orphan blob is the accepted failure mode.
func (s *courseService) Delete(ctx context.Context, actor models.User, id uint) error {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return err
	}

	if err := s.policy.Authorize(actor, policy.ActionDeleteCourse, &course); err != nil {
		return err
	}

	files, err := s.files.ListByCourse(ctx, course.ID)
	if err != nil {
		return err
	}

	if err := s.courses.Delete(ctx, &course); err != nil {
		return err
	}

	for _, file := range files {
		if err := s.blobs.Delete(ctx, file.StorageKey); err != nil {
			s.logger.Warn().Err(err).Str("key", file.StorageKey).Msg("blob cleanup failed")
		}
	}

	s.logger.Info().Uint("course_id", course.ID).Int("files", len(files)).Msg("course deleted")
	return nil
}

// Get returns the course with its files and exams. Admins and the owning
// teacher always see it; students must be enrolled.
func (s *courseService) Get(ctx context.Context, actor models.User, id uint) (dto.CourseResponse, error) {
	course, err := s.courses.GetDetailed(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	if !s.mayView(ctx, actor, course) {
		return dto.CourseResponse{}, &policy.DeniedError{
			Action: policy.ActionViewCourse,
			Reason: "not enrolled in this course",
		}
	}

	return dto.NewCourseResponse(course), nil
}

// List returns the role-appropriate course set: admins see every course,
// teachers their own, students the courses they are enrolled in.
func (s *courseService) List(ctx context.Context, actor models.User) ([]dto.CourseResponse, error) {
	var (
		courses []models.Course
		err     error
	)

	switch actor.Role {
	case models.RoleAdmin:
		courses, err = s.courses.ListAll(ctx)
	case models.RoleTeacher:
		courses, err = s.courses.ListByTeacher(ctx, actor.ID)
	case models.RoleStudent:
		courses, err = s.courses.ListEnrolled(ctx, actor.ID)
	default:
		return nil, &policy.DeniedError{Action: policy.ActionViewCourse, Reason: "unknown role"}
	}
	if err != nil {
		return nil, err
	}

	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) mayView(ctx context.Context, actor models.User, course models.Course) bool {
	if actor.IsAdmin() || course.OwnedBy(actor) {
		return true
	}
	if !actor.IsStudent() {
		return false
	}

	enrolled, err := s.courses.IsEnrolled(ctx, course.ID, actor.ID)
	if err != nil {
		s.logger.Error().Err(err).Uint("course_id", course.ID).Msg("enrollment lookup failed")
		return false
	}
	return enrolled
}

func (s *courseService) getCourse(ctx context.Context, id uint) (models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}
