package booking

import "tutorhive/models"

// Actor roles.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID    string
	Role  string
	Admin bool
}

// CanAccess reports whether the actor may read or mutate the booking:
// the booking's student, its teacher, or an administrator.
func (a Actor) CanAccess(b *models.Booking) bool {
	if a.Admin {
		return true
	}
	return a.ID != "" && (a.ID == b.StudentID || a.ID == b.TeacherID)
}

// IsTeacherOf reports whether the actor is the teacher side of the booking.
func (a Actor) IsTeacherOf(b *models.Booking) bool {
	return a.ID != "" && a.ID == b.TeacherID
}

// IsStudentOf reports whether the actor is the student side of the booking.
func (a Actor) IsStudentOf(b *models.Booking) bool {
	return a.ID != "" && a.ID == b.StudentID
}

// GuardAccess fails with an AuthorizationError if the actor may not touch the
// booking. It never narrows the operation silently.
func GuardAccess(b *models.Booking, actor Actor) error {
	if !actor.CanAccess(b) {
		return NewAuthorizationError("you do not have access to this booking")
	}
	return nil
}
