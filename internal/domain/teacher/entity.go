// Package teacher holds the Teacher aggregate.
package teacher

import (
	"context"
	"strings"
	"time"

	"github.com/asidocente/school-records/internal/domain/shared"
)

const domainName = "teacher"

// Teacher is a staff member of one school who may teach several subjects
// and act as homeroom teacher for sections.
type Teacher struct {
	shared.Audit

	FirstName      string
	LastName       string
	Identification string
	Email          string
	Phone          string
	Specialization string
	HireDate       time.Time
	IsActive       bool
	SchoolID       int64
}

// NewTeacherParams contains the inputs for hiring a teacher.
type NewTeacherParams struct {
	FirstName      string
	LastName       string
	Identification string
	Email          string
	Phone          string
	SchoolID       int64
	Specialization string

	// HireDate defaults to now when zero.
	HireDate time.Time
}

// NewTeacher validates the required fields and returns an active teacher.
func NewTeacher(params NewTeacherParams, now time.Time) (*Teacher, error) {
	const op = "NewTeacher"

	required := []struct {
		value   string
		message string
	}{
		{params.FirstName, "First name is required"},
		{params.LastName, "Last name is required"},
		{params.Identification, "Identification is required"},
		{params.Email, "Email is required"},
		{params.Phone, "Phone is required"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, shared.RuleViolation(domainName, op, r.message)
		}
	}
	if params.SchoolID <= 0 {
		return nil, shared.RuleViolation(domainName, op, "School is required")
	}

	hired := params.HireDate
	if hired.IsZero() {
		hired = now
	}

	return &Teacher{
		Audit:          shared.NewAudit(now),
		FirstName:      strings.TrimSpace(params.FirstName),
		LastName:       strings.TrimSpace(params.LastName),
		Identification: strings.TrimSpace(params.Identification),
		Email:          strings.TrimSpace(params.Email),
		Phone:          strings.TrimSpace(params.Phone),
		Specialization: strings.TrimSpace(params.Specialization),
		HireDate:       hired.UTC(),
		IsActive:       true,
		SchoolID:       params.SchoolID,
	}, nil
}

// UpdateInfo replaces names, contact details and specialization.
func (t *Teacher) UpdateInfo(firstName, lastName, email, phone, specialization string, now time.Time) error {
	const op = "UpdateInfo"

	first, err := shared.Require(domainName, op, firstName, "First name is required")
	if err != nil {
		return err
	}
	last, err := shared.Require(domainName, op, lastName, "Last name is required")
	if err != nil {
		return err
	}
	mail, err := shared.Require(domainName, op, email, "Email is required")
	if err != nil {
		return err
	}
	tel, err := shared.Require(domainName, op, phone, "Phone is required")
	if err != nil {
		return err
	}

	t.FirstName = first
	t.LastName = last
	t.Email = mail
	t.Phone = tel
	t.Specialization = strings.TrimSpace(specialization)
	t.Touch(now)
	return nil
}

// Activate re-enables the teacher.
func (t *Teacher) Activate(now time.Time) {
	t.IsActive = true
	t.Touch(now)
}

// Deactivate disables the teacher.
func (t *Teacher) Deactivate(now time.Time) {
	t.IsActive = false
	t.Touch(now)
}

// FullName returns "First Last".
func (t *Teacher) FullName() string {
	return shared.FullName(t.FirstName, t.LastName)
}

// Repository defines storage operations for teachers.
type Repository interface {
	// Add stores a teacher; a taken identification matches shared.ErrAlreadyExists.
	Add(ctx context.Context, t *Teacher) error
	GetByID(ctx context.Context, id int64) (*Teacher, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*Teacher, error)
}

var (
	// ErrTeacherNotFound is returned when a teacher lookup misses.
	ErrTeacherNotFound = shared.NotFound(domainName, "Teacher")

	// ErrDuplicateIdentification is returned when the identification is taken.
	ErrDuplicateIdentification = shared.NewDomainError(domainName, "Add", shared.ErrAlreadyExists,
		"A teacher with this identification already exists")
)
