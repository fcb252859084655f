package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aulavirtual/aula-api/internal/models"
	"github.com/aulavirtual/aula-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type memoryUserRepo struct {
	users  map[uint]models.User
	nextID uint
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uint]models.User), nextID: 1}
}

func (m *memoryUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.users[user.ID] = *user
	m.nextID++
	return nil
}

func (m *memoryUserRepo) GetByID(_ context.Context, id uint) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) ListByRole(_ context.Context, role string) ([]models.User, error) {
	results := make([]models.User, 0)
	for _, user := range m.users {
		if user.Role == role {
			results = append(results, user)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryUserRepo) ListByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	results := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			results = append(results, user)
		}
	}
	return results, nil
}

func (m *memoryUserRepo) mustAdd(user models.User) models.User {
	if user.ID == 0 {
		user.ID = m.nextID
	}
	if user.ID >= m.nextID {
		m.nextID = user.ID + 1
	}
	m.users[user.ID] = user
	return user
}

type memoryCourseRepo struct {
	courses map[uint]models.Course
	rosters map[uint][]models.User
	nextID  uint
}

func newMemoryCourseRepo() *memoryCourseRepo {
	return &memoryCourseRepo{
		courses: make(map[uint]models.Course),
		rosters: make(map[uint][]models.User),
		nextID:  1,
	}
}

func (m *memoryCourseRepo) Create(_ context.Context, course *models.Course) error {
	course.ID = m.nextID
	course.CreatedAt = time.Now()
	course.UpdatedAt = time.Now()
	m.courses[course.ID] = *course
	m.nextID++
	return nil
}

func (m *memoryCourseRepo) Update(_ context.Context, course *models.Course) error {
	stored, ok := m.courses[course.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Name = course.Name
	stored.Description = course.Description
	stored.UpdatedAt = time.Now()
	m.courses[course.ID] = stored
	return nil
}

func (m *memoryCourseRepo) GetByID(_ context.Context, id uint) (models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (m *memoryCourseRepo) GetDetailed(ctx context.Context, id uint) (models.Course, error) {
	course, err := m.GetByID(ctx, id)
	if err != nil {
		return models.Course{}, err
	}
	course.Students = append([]models.User(nil), m.rosters[id]...)
	return course, nil
}

func (m *memoryCourseRepo) ListAll(_ context.Context) ([]models.Course, error) {
	results := make([]models.Course, 0, len(m.courses))
	for _, course := range m.courses {
		results = append(results, course)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryCourseRepo) ListByTeacher(_ context.Context, teacherID uint) ([]models.Course, error) {
	results := make([]models.Course, 0)
	for _, course := range m.courses {
		if course.TeacherID == teacherID {
			results = append(results, course)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryCourseRepo) ListEnrolled(_ context.Context, studentID uint) ([]models.Course, error) {
	results := make([]models.Course, 0)
	for id, roster := range m.rosters {
		for _, student := range roster {
			if student.ID == studentID {
				results = append(results, m.courses[id])
				break
			}
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryCourseRepo) ReplaceStudents(_ context.Context, course *models.Course, students []models.User) error {
	if _, ok := m.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.rosters[course.ID] = append([]models.User(nil), students...)
	return nil
}

func (m *memoryCourseRepo) IsEnrolled(_ context.Context, courseID, studentID uint) (bool, error) {
	for _, student := range m.rosters[courseID] {
		if student.ID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryCourseRepo) Delete(_ context.Context, course *models.Course) error {
	if _, ok := m.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.courses, course.ID)
	delete(m.rosters, course.ID)
	return nil
}

type memoryFileRepo struct {
	files  map[uint]models.CourseFile
	nextID uint
}

func newMemoryFileRepo() *memoryFileRepo {
	return &memoryFileRepo{files: make(map[uint]models.CourseFile), nextID: 1}
}

func (m *memoryFileRepo) Create(_ context.Context, file *models.CourseFile) error {
	file.ID = m.nextID
	file.CreatedAt = time.Now()
	m.files[file.ID] = *file
	m.nextID++
	return nil
}

func (m *memoryFileRepo) GetByID(_ context.Context, id uint) (models.CourseFile, error) {
	file, ok := m.files[id]
	if !ok {
		return models.CourseFile{}, gorm.ErrRecordNotFound
	}
	return file, nil
}

func (m *memoryFileRepo) ListByCourse(_ context.Context, courseID uint) ([]models.CourseFile, error) {
	results := make([]models.CourseFile, 0)
	for _, file := range m.files {
		if file.CourseID == courseID {
			results = append(results, file)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryFileRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.files[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.files, id)
	return nil
}

type memoryExamRepo struct {
	exams     map[uint]models.Exam
	questions map[uint]models.Question
	nextID    uint
}

func newMemoryExamRepo() *memoryExamRepo {
	return &memoryExamRepo{
		exams:     make(map[uint]models.Exam),
		questions: make(map[uint]models.Question),
		nextID:    1,
	}
}

func (m *memoryExamRepo) CreateExam(_ context.Context, exam *models.Exam) error {
	exam.ID = m.nextID
	exam.CreatedAt = time.Now()
	exam.UpdatedAt = time.Now()
	m.exams[exam.ID] = *exam
	m.nextID++
	return nil
}

func (m *memoryExamRepo) GetExam(_ context.Context, id uint) (models.Exam, error) {
	exam, ok := m.exams[id]
	if !ok {
		return models.Exam{}, gorm.ErrRecordNotFound
	}
	exam.Questions = nil
	for _, question := range m.questions {
		if question.ExamID == id {
			exam.Questions = append(exam.Questions, question)
		}
	}
	sort.Slice(exam.Questions, func(i, j int) bool { return exam.Questions[i].ID < exam.Questions[j].ID })
	return exam, nil
}

func (m *memoryExamRepo) ListByCourse(_ context.Context, courseID uint) ([]models.Exam, error) {
	results := make([]models.Exam, 0)
	for _, exam := range m.exams {
		if exam.CourseID == courseID {
			results = append(results, exam)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryExamRepo) AddQuestion(_ context.Context, question *models.Question) error {
	question.ID = m.nextID
	m.nextID++
	for i := range question.Options {
		question.Options[i].ID = m.nextID
		question.Options[i].QuestionID = question.ID
		m.nextID++
	}
	m.questions[question.ID] = *question
	return nil
}

func (m *memoryExamRepo) GetQuestion(_ context.Context, id uint) (models.Question, error) {
	question, ok := m.questions[id]
	if !ok {
		return models.Question{}, gorm.ErrRecordNotFound
	}
	return question, nil
}

func (m *memoryExamRepo) AddOption(_ context.Context, option *models.Option) error {
	question, ok := m.questions[option.QuestionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	option.ID = m.nextID
	m.nextID++
	question.Options = append(question.Options, *option)
	m.questions[question.ID] = question
	return nil
}

type memoryAnswerRepo struct {
	answers map[uint]models.StudentAnswer
	nextID  uint
}

func newMemoryAnswerRepo() *memoryAnswerRepo {
	return &memoryAnswerRepo{answers: make(map[uint]models.StudentAnswer), nextID: 1}
}

func (m *memoryAnswerRepo) Create(_ context.Context, answer *models.StudentAnswer) error {
	answer.ID = m.nextID
	answer.CreatedAt = time.Now()
	m.answers[answer.ID] = *answer
	m.nextID++
	return nil
}

func (m *memoryAnswerRepo) ListByQuestion(_ context.Context, questionID uint) ([]models.StudentAnswer, error) {
	results := make([]models.StudentAnswer, 0)
	for _, answer := range m.answers {
		if answer.QuestionID == questionID {
			results = append(results, answer)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryAnswerRepo) ListByStudent(_ context.Context, studentID uint) ([]models.StudentAnswer, error) {
	results := make([]models.StudentAnswer, 0)
	for _, answer := range m.answers {
		if answer.StudentID == studentID {
			results = append(results, answer)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

type stubBlobStore struct {
	stored  map[string][]byte
	deleted []string
	putErr  error
}

func newStubBlobStore() *stubBlobStore {
	return &stubBlobStore{stored: make(map[string][]byte)}
}

func (s *stubBlobStore) Put(_ context.Context, key string, reader io.Reader) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.stored[key] = data
	return fmt.Sprintf("https://cdn.example.com/%s", key), nil
}

func (s *stubBlobStore) Delete(_ context.Context, key string) error {
	delete(s.stored, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *stubBlobStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.stored[key]
	return ok, nil
}

type stubNotifier struct {
	sent []string
	err  error
}

func (s *stubNotifier) Send(_ context.Context, recipientEmail, _, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, recipientEmail)
	return nil
}
