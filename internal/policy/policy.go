// Package policy implements the role and ownership checks consulted by every
// mutating operation. Services call Authorize before touching any store, so a
// denial never leaves a partial write behind.
package policy

import (
	"errors"
	"fmt"

	"github.com/aulavirtual/aula-api/internal/models"
)

// Action identifies an operation subject to authorization.
type Action string

// Actions known to the policy.
const (
	ActionCreateAccount Action = "account:create"
	ActionCreateCourse  Action = "course:create"
	ActionEditCourse    Action = "course:edit"
	ActionDeleteCourse  Action = "course:delete"
	ActionAssignRoster  Action = "course:assign_roster"
	ActionUploadContent Action = "content:upload"
	ActionDeleteContent Action = "content:delete"
	ActionCreateExam    Action = "exam:create"
	ActionEditExam      Action = "exam:edit"
	ActionReadAnswers   Action = "exam:read_answers"
	ActionResolveExam   Action = "exam:resolve"

	// ActionViewCourse is evaluated by the course service itself since the
	// enrollment lookup needs store access; it is declared here so denials
	// carry a stable action name.
	ActionViewCourse Action = "course:view"
)

// Roster assignment variants. The upstream behaviour diverged between an
// admin-only flow and a teacher-capable one, so the active variant is a
// configuration knob rather than a hardcoded rule.
const (
	EnrollmentPolicyAdmin   = "admin"
	EnrollmentPolicyTeacher = "teacher"
)

// DeniedError is returned when the actor may not perform the action.
type DeniedError struct {
	Action Action
	Reason string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("action %s denied: %s", e.Action, e.Reason)
}

// IsDenied reports whether the error is an authorization denial.
func IsDenied(err error) bool {
	var denied *DeniedError
	return errors.As(err, &denied)
}

// Policy evaluates whether an actor may perform an action, optionally against
// a target course.
type Policy struct {
	enrollment string
}

// New builds a policy with the given roster-assignment variant. An unknown
// variant falls back to admin-only.
func New(enrollmentVariant string) *Policy {
	if enrollmentVariant != EnrollmentPolicyTeacher {
		enrollmentVariant = EnrollmentPolicyAdmin
	}
	return &Policy{enrollment: enrollmentVariant}
}

// Authorize returns nil when the actor may perform the action, or a
// *DeniedError describing why not. Actions scoped to a course require the
// target to be non-nil.
func (p *Policy) Authorize(actor models.User, action Action, course *models.Course) error {
	switch action {
	case ActionCreateAccount:
		if !actor.IsAdmin() {
			return deny(action, "only administrators can create accounts")
		}

	case ActionCreateCourse:
		if !actor.IsTeacher() {
			return deny(action, "only teachers can create courses")
		}

	case ActionEditCourse, ActionDeleteCourse:
		if course == nil {
			return deny(action, "no course given")
		}
		if !course.OwnedBy(actor) {
			return deny(action, "only the owning teacher can modify the course")
		}

	case ActionAssignRoster:
		if actor.IsAdmin() {
			return nil
		}
		if p.enrollment == EnrollmentPolicyTeacher && course != nil && course.OwnedBy(actor) {
			return nil
		}
		return deny(action, "not allowed to assign the course roster")

	case ActionUploadContent, ActionDeleteContent, ActionCreateExam, ActionEditExam:
		if course == nil {
			return deny(action, "no course given")
		}
		if !course.OwnedBy(actor) {
			return deny(action, "only the owning teacher can manage course material")
		}

	case ActionReadAnswers:
		if actor.IsAdmin() {
			return nil
		}
		if course == nil || !course.OwnedBy(actor) {
			return deny(action, "only the owning teacher can read recorded answers")
		}

	case ActionResolveExam:
		if !actor.IsStudent() {
			return deny(action, "only students can answer exams")
		}

	default:
		return deny(action, "unknown action")
	}

	return nil
}

func deny(action Action, reason string) error {
	return &DeniedError{Action: action, Reason: reason}
}
