package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/aulavirtual/aula-api/internal/dto"
	"github.com/aulavirtual/aula-api/internal/handler"
	"github.com/aulavirtual/aula-api/internal/models"
	"github.com/aulavirtual/aula-api/internal/policy"
	"github.com/aulavirtual/aula-api/internal/service"
)

type mockCourseService struct {
	course    dto.CourseResponse
	courses   []dto.CourseResponse
	err       error
	lastActor models.User
	deleted   []uint
}

func (m *mockCourseService) Create(_ context.Context, actor models.User, _ dto.CourseCreateRequest) (dto.CourseResponse, error) {
	m.lastActor = actor
	if m.err != nil {
		return dto.CourseResponse{}, m.err
	}
	return m.course, nil
}

func (m *mockCourseService) Update(_ context.Context, actor models.User, _ uint, _ dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	m.lastActor = actor
	if m.err != nil {
		return dto.CourseResponse{}, m.err
	}
	return m.course, nil
}

func (m *mockCourseService) Delete(_ context.Context, actor models.User, id uint) error {
	m.lastActor = actor
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockCourseService) Get(_ context.Context, actor models.User, _ uint) (dto.CourseResponse, error) {
	m.lastActor = actor
	if m.err != nil {
		return dto.CourseResponse{}, m.err
	}
	return m.course, nil
}

func (m *mockCourseService) List(_ context.Context, actor models.User) ([]dto.CourseResponse, error) {
	m.lastActor = actor
	if m.err != nil {
		return nil, m.err
	}
	return m.courses, nil
}

type mockEnrollmentService struct {
	roster      []dto.AccountResponse
	err         error
	lastPayload dto.RosterRequest
}

func (m *mockEnrollmentService) SetRoster(_ context.Context, _ models.User, _ uint, payload dto.RosterRequest) ([]dto.AccountResponse, error) {
	m.lastPayload = payload
	if m.err != nil {
		return nil, m.err
	}
	return m.roster, nil
}

func (m *mockEnrollmentService) IsEnrolled(_ context.Context, _, _ uint) (bool, error) {
	return false, nil
}

func newCourseApp(courses service.CourseService, enrollment service.EnrollmentService, session fiber.Handler) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/courses")
	if session != nil {
		group.Use(session)
	}
	handler.NewCourseHandler(courses, enrollment, testLogger()).Register(group)
	return app
}

func TestCourseHandlerCreate(t *testing.T) {
	svc := &mockCourseService{course: dto.CourseResponse{ID: 1, Name: "Algebra"}}
	app := newCourseApp(svc, &mockEnrollmentService{}, stubSession(7, models.RoleTeacher))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/courses",
		strings.NewReader(`{"name":"Algebra","description":"Math"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, uint(7), svc.lastActor.ID)
	require.Equal(t, models.RoleTeacher, svc.lastActor.Role)

	var body envelope
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "course created", body.Message)
}

func TestCourseHandlerRequiresSession(t *testing.T) {
	app := newCourseApp(&mockCourseService{}, &mockEnrollmentService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCourseHandlerPolicyDenialMapsToForbidden(t *testing.T) {
	svc := &mockCourseService{err: &policy.DeniedError{
		Action: policy.ActionDeleteCourse,
		Reason: "only the owning teacher can modify the course",
	}}
	app := newCourseApp(svc, &mockEnrollmentService{}, stubSession(9, models.RoleTeacher))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/courses/3", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var body envelope
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Contains(t, body.Message, "owning teacher")
}

func TestCourseHandlerMissingCourseMapsToNotFound(t *testing.T) {
	svc := &mockCourseService{err: service.ErrCourseNotFound}
	app := newCourseApp(svc, &mockEnrollmentService{}, stubSession(7, models.RoleTeacher))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses/42", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCourseHandlerBadIdentifier(t *testing.T) {
	app := newCourseApp(&mockCourseService{}, &mockEnrollmentService{}, stubSession(7, models.RoleTeacher))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses/abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCourseHandlerSetRoster(t *testing.T) {
	enrollment := &mockEnrollmentService{roster: []dto.AccountResponse{{ID: 3}}}
	app := newCourseApp(&mockCourseService{}, enrollment, stubSession(1, models.RoleAdmin))

	req := httptest.NewRequest(http.MethodPut, "/api/v1/courses/5/roster",
		strings.NewReader(`{"student_ids":[3]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, []uint{3}, enrollment.lastPayload.StudentIDs)

	var body envelope
	decodeResponse(t, resp, &body)
	require.Equal(t, "roster replaced", body.Message)
}

func TestCourseHandlerValidationErrorMapsToBadRequest(t *testing.T) {
	enrollment := &mockEnrollmentService{err: service.ErrValidation}
	app := newCourseApp(&mockCourseService{}, enrollment, stubSession(1, models.RoleAdmin))

	req := httptest.NewRequest(http.MethodPut, "/api/v1/courses/5/roster",
		strings.NewReader(`{"student_ids":[99]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
