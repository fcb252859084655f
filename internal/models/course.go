package models

import "time"

// Course is a teacher-owned container of content and exams with an
// enrolled-student roster.
type Course struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	TeacherID   uint         `gorm:"not null;index" json:"teacher_id"`
	Teacher     User         `gorm:"constraint:OnUpdate:CASCADE" json:"teacher"`
	Students    []User       `gorm:"many2many:course_students" json:"students,omitempty"`
	Files       []CourseFile `gorm:"constraint:OnDelete:CASCADE" json:"files,omitempty"`
	Exams       []Exam       `gorm:"constraint:OnDelete:CASCADE" json:"exams,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// OwnedBy reports whether the given account owns the course.
func (c Course) OwnedBy(u User) bool {
	return u.IsTeacher() && c.TeacherID == u.ID
}

// CourseFile stores metadata about an uploaded piece of course content.
// StorageKey is always generated server-side; DisplayName is the
// client-supplied filename kept for presentation only.
type CourseFile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	DisplayName string    `gorm:"size:255;not null" json:"display_name"`
	StorageKey  string    `gorm:"size:128;uniqueIndex;not null" json:"-"`
	URL         string    `gorm:"size:512" json:"url"`
	ContentType string    `gorm:"size:128" json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}
