package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/aulavirtual/aula-api/internal/dto"
	"github.com/aulavirtual/aula-api/internal/models"
	"github.com/aulavirtual/aula-api/internal/observability"
	"github.com/aulavirtual/aula-api/internal/policy"
	"github.com/aulavirtual/aula-api/internal/repository"
)

// ExamService manages exams, questions, options and recorded answers.
// Answers are recorded, never scored.
type ExamService interface {
	CreateExam(ctx context.Context, actor models.User, courseID uint, payload dto.ExamCreateRequest) (dto.ExamResponse, error)
	GetExam(ctx context.Context, actor models.User, examID uint) (dto.ExamResponse, error)
	AddQuestion(ctx context.Context, actor models.User, examID uint, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	AddOption(ctx context.Context, actor models.User, questionID uint, payload dto.OptionCreateRequest) (dto.OptionResponse, error)
	SubmitAnswer(ctx context.Context, actor models.User, questionID uint, payload dto.AnswerSubmitRequest) (dto.AnswerResponse, error)
	ListAnswers(ctx context.Context, actor models.User, questionID uint) ([]dto.AnswerResponse, error)
	ListMyAnswers(ctx context.Context, actor models.User) ([]dto.AnswerResponse, error)
}

type examService struct {
	exams     repository.ExamRepository
	answers   repository.AnswerRepository
	courses   repository.CourseRepository
	policy    *policy.Policy
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewExamService builds a new exam service.
func NewExamService(exams repository.ExamRepository, answers repository.AnswerRepository, courses repository.CourseRepository, pol *policy.Policy, validate *validator.Validate, logger zerolog.Logger) ExamService {
	return &examService{
		exams:     exams,
		answers:   answers,
		courses:   courses,
		policy:    pol,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "exam_service").Logger(),
		tracer:    otel.Tracer("github.com/aulavirtual/aula-api/internal/service/exam"),
	}
}

func (s *examService) CreateExam(ctx context.Context, actor models.User, courseID uint, payload dto.ExamCreateRequest) (dto.ExamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamResponse{}, err
	}

	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return dto.ExamResponse{}, err
	}

	if err := s.policy.Authorize(actor, policy.ActionCreateExam, &course); err != nil {
		return dto.ExamResponse{}, err
	}

	exam := models.Exam{
		CourseID: course.ID,
		Title:    strings.TrimSpace(payload.Title),
	}

	if err := s.exams.CreateExam(ctx, &exam); err != nil {
		return dto.ExamResponse{}, err
	}

	s.logger.Info().Uint("exam_id", exam.ID).Uint("course_id", course.ID).Msg("exam created")

	return dto.NewExamResponse(exam), nil
}

// GetExam returns the exam with its questions. Admins and the owning teacher
// always see it; enrolled students only see exams that are resolvable, so a
// draft without questions stays invisible to them.
func (s *examService) GetExam(ctx context.Context, actor models.User, examID uint) (dto.ExamResponse, error) {
	exam, err := s.getExam(ctx, examID)
	if err != nil {
		return dto.ExamResponse{}, err
	}

	course, err := s.getCourse(ctx, exam.CourseID)
	if err != nil {
		return dto.ExamResponse{}, err
	}

	if !actor.IsAdmin() && !course.OwnedBy(actor) {
		enrolled, err := s.courses.IsEnrolled(ctx, course.ID, actor.ID)
		if err != nil {
			return dto.ExamResponse{}, err
		}
		if !enrolled {
			return dto.ExamResponse{}, &policy.DeniedError{Action: policy.ActionViewCourse, Reason: "not enrolled in this course"}
		}
		if !exam.Resolvable() {
			return dto.ExamResponse{}, ErrExamNotFound
		}
	}

	return dto.NewExamResponse(exam), nil
}

// AddQuestion appends a question to the exam. For multiple-choice questions
// the options persist together with the question in one transaction, so a
// failure never leaves a bare multiple-choice question behind. Options on an
// open question are a validation error.
func (s *examService) AddQuestion(ctx context.Context, actor models.User, examID uint, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "exam.add_question", trace.WithAttributes(
		attribute.Int("exam.id", int(examID)),
		attribute.String("question.kind", payload.Kind),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	exam, err := s.getExam(ctx, examID)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	course, err := s.getCourse(ctx, exam.CourseID)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := s.policy.Authorize(actor, policy.ActionEditExam, &course); err != nil {
		return dto.QuestionResponse{}, err
	}

	question := models.Question{
		ExamID: exam.ID,
		Text:   strings.TrimSpace(s.sanitizer.Sanitize(payload.Text)),
		Kind:   payload.Kind,
	}
	if question.Text == "" {
		return dto.QuestionResponse{}, fmt.Errorf("%w: question text empty after sanitization", ErrValidation)
	}

	switch payload.Kind {
	case models.QuestionKindOpen:
		if len(payload.Options) > 0 {
			return dto.QuestionResponse{}, fmt.Errorf("%w: open questions cannot carry options", ErrValidation)
		}

	case models.QuestionKindMultipleChoice:
		if len(payload.Options) < 2 {
			return dto.QuestionResponse{}, fmt.Errorf("%w: multiple-choice questions need at least two options", ErrValidation)
		}
		correct := false
		for _, option := range payload.Options {
			question.Options = append(question.Options, models.Option{
				Text:      strings.TrimSpace(option.Text),
				IsCorrect: option.IsCorrect,
			})
			correct = correct || option.IsCorrect
		}
		if !correct {
			return dto.QuestionResponse{}, fmt.Errorf("%w: at least one option must be correct", ErrValidation)
		}
	}

	if err := s.exams.AddQuestion(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	s.logger.Info().Uint("question_id", question.ID).Uint("exam_id", exam.ID).Str("kind", question.Kind).Msg("question added")

	return dto.NewQuestionResponse(question), nil
}

// AddOption appends an option to an existing multiple-choice question.
func (s *examService) AddOption(ctx context.Context, actor models.User, questionID uint, payload dto.OptionCreateRequest) (dto.OptionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.OptionResponse{}, err
	}

	question, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return dto.OptionResponse{}, err
	}

	exam, err := s.getExam(ctx, question.ExamID)
	if err != nil {
		return dto.OptionResponse{}, err
	}

	course, err := s.getCourse(ctx, exam.CourseID)
	if err != nil {
		return dto.OptionResponse{}, err
	}

	if err := s.policy.Authorize(actor, policy.ActionEditExam, &course); err != nil {
		return dto.OptionResponse{}, err
	}

	if !question.IsMultipleChoice() {
		return dto.OptionResponse{}, fmt.Errorf("%w: cannot add options to an open question", ErrValidation)
	}

	option := models.Option{
		QuestionID: question.ID,
		Text:       strings.TrimSpace(payload.Text),
		IsCorrect:  payload.IsCorrect,
	}

	if err := s.exams.AddOption(ctx, &option); err != nil {
		return dto.OptionResponse{}, err
	}

	s.logger.Info().Uint("option_id", option.ID).Uint("question_id", question.ID).Msg("option added")

	return dto.NewOptionResponse(option), nil
}

// SubmitAnswer records one submission of an enrolled student against a
// question. Submissions are append-only; nothing is scored.
func (s *examService) SubmitAnswer(ctx context.Context, actor models.User, questionID uint, payload dto.AnswerSubmitRequest) (dto.AnswerResponse, error) {
	ctx, span := s.tracer.Start(ctx, "exam.submit_answer", trace.WithAttributes(
		attribute.Int("question.id", int(questionID)),
		attribute.Int("student.id", int(actor.ID)),
	))
	defer span.End()

	if err := s.policy.Authorize(actor, policy.ActionResolveExam, nil); err != nil {
		return dto.AnswerResponse{}, err
	}

	question, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return dto.AnswerResponse{}, err
	}

	exam, err := s.getExam(ctx, question.ExamID)
	if err != nil {
		return dto.AnswerResponse{}, err
	}

	enrolled, err := s.courses.IsEnrolled(ctx, exam.CourseID, actor.ID)
	if err != nil {
		return dto.AnswerResponse{}, err
	}
	if !enrolled {
		return dto.AnswerResponse{}, &policy.DeniedError{Action: policy.ActionResolveExam, Reason: "not enrolled in this course"}
	}

	answer := models.StudentAnswer{
		QuestionID: question.ID,
		StudentID:  actor.ID,
	}

	if question.IsMultipleChoice() {
		if len(payload.SelectedOptionIDs) == 0 {
			return dto.AnswerResponse{}, fmt.Errorf("%w: a multiple-choice answer must select at least one option", ErrValidation)
		}
		valid := make(map[uint]struct{}, len(question.Options))
		for _, option := range question.Options {
			valid[option.ID] = struct{}{}
		}
		selected := dedupe(payload.SelectedOptionIDs)
		for _, id := range selected {
			if _, ok := valid[id]; !ok {
				return dto.AnswerResponse{}, fmt.Errorf("%w: option %d does not belong to the question", ErrValidation, id)
			}
		}
		if err := answer.SetSelectedOptions(selected); err != nil {
			return dto.AnswerResponse{}, err
		}
	} else {
		text := strings.TrimSpace(payload.AnswerText)
		if text == "" {
			return dto.AnswerResponse{}, fmt.Errorf("%w: an open answer must carry text", ErrValidation)
		}
		answer.AnswerText = text
	}

	if err := s.answers.Create(ctx, &answer); err != nil {
		return dto.AnswerResponse{}, err
	}

	observability.AnswersRecorded().Inc()
	s.logger.Info().Uint("answer_id", answer.ID).Uint("question_id", question.ID).Uint("student_id", actor.ID).Msg("answer recorded")

	return dto.NewAnswerResponse(answer)
}

// ListAnswers returns the recorded answers of a question to the owning
// teacher or an administrator.
func (s *examService) ListAnswers(ctx context.Context, actor models.User, questionID uint) ([]dto.AnswerResponse, error) {
	question, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	exam, err := s.getExam(ctx, question.ExamID)
	if err != nil {
		return nil, err
	}

	course, err := s.getCourse(ctx, exam.CourseID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Authorize(actor, policy.ActionReadAnswers, &course); err != nil {
		return nil, err
	}

	answers, err := s.answers.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	return dto.NewAnswerResponseSlice(answers)
}

// ListMyAnswers returns every answer the acting account has recorded, in
// submission order.
func (s *examService) ListMyAnswers(ctx context.Context, actor models.User) ([]dto.AnswerResponse, error) {
	answers, err := s.answers.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	return dto.NewAnswerResponseSlice(answers)
}

func (s *examService) getExam(ctx context.Context, id uint) (models.Exam, error) {
	exam, err := s.exams.GetExam(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Exam{}, ErrExamNotFound
		}
		return models.Exam{}, err
	}
	return exam, nil
}

func (s *examService) getQuestion(ctx context.Context, id uint) (models.Question, error) {
	question, err := s.exams.GetQuestion(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Question{}, ErrQuestionNotFound
		}
		return models.Question{}, err
	}
	return question, nil
}

func (s *examService) getCourse(ctx context.Context, id uint) (models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}
