package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aulavirtual/aula-api/internal/dto"
	"github.com/aulavirtual/aula-api/internal/models"
	"github.com/aulavirtual/aula-api/internal/policy"
	"github.com/aulavirtual/aula-api/internal/repository"
)

// ContentService manages uploaded course files.
type ContentService interface {
	Upload(ctx context.Context, actor models.User, courseID uint, file *multipart.FileHeader) (dto.FileResponse, error)
	Delete(ctx context.Context, actor models.User, fileID uint) error
	ListByCourse(ctx context.Context, actor models.User, courseID uint) ([]dto.FileResponse, error)
}

type contentService struct {
	files   repository.FileRepository
	courses repository.CourseRepository
	policy  *policy.Policy
	blobs   BlobStore
	logger  zerolog.Logger
}

// NewContentService builds a new content service.
func NewContentService(files repository.FileRepository, courses repository.CourseRepository, pol *policy.Policy, blobs BlobStore, logger zerolog.Logger) ContentService {
	return &contentService{
		files:   files,
		courses: courses,
		policy:  pol,
		blobs:   blobs,
		logger:  logger.With().Str("component", "content_service").Logger(),
	}
}

// Upload stores the file bytes under a server-generated key and records the
// catalog entry. The client filename is kept as display metadata only, so it
// can never influence the storage location.
func (s *contentService) Upload(ctx context.Context, actor models.User, courseID uint, file *multipart.FileHeader) (dto.FileResponse, error) {
	if file == nil {
		return dto.FileResponse{}, fmt.Errorf("%w: content file is required", ErrValidation)
	}

	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return dto.FileResponse{}, err
	}

	if err := s.policy.Authorize(actor, policy.ActionUploadContent, &course); err != nil {
		return dto.FileResponse{}, err
	}

	contentType, err := sniffContentType(file)
	if err != nil {
		return dto.FileResponse{}, err
	}

	reader, err := file.Open()
	if err != nil {
		return dto.FileResponse{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	key := uuid.NewString()
	url, err := s.blobs.Put(ctx, key, reader)
	if err != nil {
		return dto.FileResponse{}, fmt.Errorf("failed to store file: %w", err)
	}

	record := models.CourseFile{
		CourseID:    course.ID,
		DisplayName: file.Filename,
		StorageKey:  key,
		URL:         url,
		ContentType: contentType,
		SizeBytes:   file.Size,
	}

	if err := s.files.Create(ctx, &record); err != nil {
		// The metadata write failed after the blob write; remove the blob so
		// the failure leaks nothing.
		if cleanupErr := s.blobs.Delete(ctx, key); cleanupErr != nil {
			s.logger.Warn().Err(cleanupErr).Str("key", key).Msg("orphan blob cleanup failed")
		}
		return dto.FileResponse{}, err
	}

	s.logger.Info().Uint("file_id", record.ID).Uint("course_id", course.ID).Msg("content uploaded")

	return dto.NewFileResponse(record), nil
}

// Delete removes the catalog entry and then the backing blob. A blob that is
// already gone is tolerated.
func (s *contentService) Delete(ctx context.Context, actor models.User, fileID uint) error {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		return err
	}

	course, err := s.getCourse(ctx, file.CourseID)
	if err != nil {
		return err
	}

	if err := s.policy.Authorize(actor, policy.ActionDeleteContent, &course); err != nil {
		return err
	}

	if err := s.files.Delete(ctx, file.ID); err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, file.StorageKey); err != nil {
		s.logger.Warn().Err(err).Str("key", file.StorageKey).Msg("blob delete failed")
	}

	s.logger.Info().Uint("file_id", file.ID).Msg("content deleted")
	return nil
}

func (s *contentService) ListByCourse(ctx context.Context, actor models.User, courseID uint) ([]dto.FileResponse, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && !course.OwnedBy(actor) {
		enrolled, err := s.courses.IsEnrolled(ctx, course.ID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, &policy.DeniedError{Action: policy.ActionViewCourse, Reason: "not enrolled in this course"}
		}
	}

	files, err := s.files.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return dto.NewFileResponseSlice(files), nil
}

func (s *contentService) getCourse(ctx context.Context, id uint) (models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}

func sniffContentType(file *multipart.FileHeader) (string, error) {
	reader, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}

	allowed := []string{
		"application/pdf",
		"application/zip",
		"application/x-zip-compressed",
		"text/plain",
		"image/png",
		"image/jpeg",
	}
	for _, a := range allowed {
		if mime.Is(a) {
			return mime.String(), nil
		}
	}

	return "", fmt.Errorf("%w: unsupported file type %s", ErrValidation, mime.String())
}
