package service

import (
	"doc-portal/backend/internal/model"
	apperr "doc-portal/backend/pkg/errors"
)

var (
	ErrUnknownRole     = apperr.New(apperr.KindForbidden, "Unknown account role")
	ErrStudentRequired = apperr.New(apperr.KindForbidden, "Student access required")
	ErrDoctorRequired  = apperr.New(apperr.KindForbidden, "Doctor access required")
)

// Principal is the authenticated caller. It is either a Student or a Doctor;
// role-specific operations take the concrete type.
type Principal interface {
	Account() *model.Account
	principal()
}

// Student is a caller with the student role.
type Student struct {
	account *model.Account
}

// Account returns the resolved account.
func (s Student) Account() *model.Account { return s.account }

func (Student) principal() {}

// Doctor is a caller with the doctor role.
type Doctor struct {
	account *model.Account
}

// Account returns the resolved account.
func (d Doctor) Account() *model.Account { return d.account }

func (Doctor) principal() {}

// Courses returns the course codes the doctor reviews. Never nil, so it can
// be used directly as a query restriction.
func (d Doctor) Courses() []string {
	if d.account.Courses == nil {
		return []string{}
	}
	return []string(d.account.Courses)
}

// Teaches reports whether the doctor may review documents of course.
func (d Doctor) Teaches(course string) bool {
	return d.account.HasCourse(course)
}

// NewPrincipal tags an account with its role.
func NewPrincipal(account *model.Account) (Principal, error) {
	switch account.Role {
	case model.RoleStudent:
		return Student{account: account}, nil
	case model.RoleDoctor:
		return Doctor{account: account}, nil
	default:
		return nil, ErrUnknownRole
	}
}

// AsStudent narrows p to a Student.
func AsStudent(p Principal) (Student, error) {
	switch v := p.(type) {
	case Student:
		return v, nil
	default:
		return Student{}, ErrStudentRequired
	}
}

// AsDoctor narrows p to a Doctor.
func AsDoctor(p Principal) (Doctor, error) {
	switch v := p.(type) {
	case Doctor:
		return v, nil
	default:
		return Doctor{}, ErrDoctorRequired
	}
}
