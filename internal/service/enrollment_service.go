package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aulavirtual/aula-api/internal/dto"
	"github.com/aulavirtual/aula-api/internal/models"
	"github.com/aulavirtual/aula-api/internal/policy"
	"github.com/aulavirtual/aula-api/internal/repository"
)

// EnrollmentService manages the course roster.
type EnrollmentService interface {
	SetRoster(ctx context.Context, actor models.User, courseID uint, payload dto.RosterRequest) ([]dto.AccountResponse, error)
	IsEnrolled(ctx context.Context, courseID, studentID uint) (bool, error)
}

type enrollmentService struct {
	courses   repository.CourseRepository
	users     repository.UserRepository
	policy    *policy.Policy
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEnrollmentService builds a new enrollment service.
func NewEnrollmentService(courses repository.CourseRepository, users repository.UserRepository, pol *policy.Policy, validate *validator.Validate, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		courses:   courses,
		users:     users,
		policy:    pol,
		validator: validate,
		logger:    logger.With().Str("component", "enrollment_service").Logger(),
	}
}

// SetRoster replaces the course roster with the submitted student set. The
// assignment is a wholesale overwrite, never a merge; an empty set clears
// the roster.
func (s *enrollmentService) SetRoster(ctx context.Context, actor models.User, courseID uint, payload dto.RosterRequest) ([]dto.AccountResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if err := s.policy.Authorize(actor, policy.ActionAssignRoster, &course); err != nil {
		return nil, err
	}

	students, err := s.users.ListByIDs(ctx, dedupe(payload.StudentIDs))
	if err != nil {
		return nil, err
	}
	if len(students) != len(dedupe(payload.StudentIDs)) {
		return nil, fmt.Errorf("%w: unknown student id in roster", ErrValidation)
	}
	for _, student := range students {
		if !student.IsStudent() {
			return nil, fmt.Errorf("%w: account %d is not a student", ErrValidation, student.ID)
		}
	}

	if err := s.courses.ReplaceStudents(ctx, &course, students); err != nil {
		return nil, err
	}

	s.logger.Info().Uint("course_id", course.ID).Int("students", len(students)).Msg("roster replaced")

	return dto.NewAccountResponseSlice(students), nil
}

func (s *enrollmentService) IsEnrolled(ctx context.Context, courseID, studentID uint) (bool, error) {
	return s.courses.IsEnrolled(ctx, courseID, studentID)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
