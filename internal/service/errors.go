package service

import "errors"

// Sentinel errors shared across services. Handlers map them onto HTTP
// statuses; none of them ever leaves a partial write behind.
var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password, so a caller cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrValidation marks malformed or semantically invalid input. Concrete
	// causes wrap it with a descriptive message.
	ErrValidation = errors.New("validation failed")

	ErrAccountNotFound  = errors.New("account not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrFileNotFound     = errors.New("file not found")
	ErrExamNotFound     = errors.New("exam not found")
	ErrQuestionNotFound = errors.New("question not found")
)
