package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aulavirtual/aula-api/internal/models"
)

// Each test gets its own named in-memory database so parallel packages do
// not share tables.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CourseFile{},
		&models.Exam{},
		&models.Question{},
		&models.Option{},
		&models.StudentAnswer{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, email, role string) models.User {
	t.Helper()

	user := models.User{Name: name, Email: email, Role: role}
	require.NoError(t, user.SetPassword("password"))
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, teacherID uint, name string) models.Course {
	t.Helper()

	course := models.Course{Name: name, TeacherID: teacherID}
	require.NoError(t, db.Create(&course).Error)
	return course
}
