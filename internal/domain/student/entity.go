package student

import (
	"fmt"
	"strings"
	"time"

	"github.com/asidocente/school-records/internal/domain/shared"
)

const domainName = "student"

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Student is a learner enrolled in exactly one school.
type Student struct {
	shared.Audit

	// FirstName and LastName are never empty.
	FirstName string
	LastName  string

	// Identification is the national id; unique across all students.
	Identification string

	GradeLevel  shared.GradeLevel
	DateOfBirth time.Time

	// Email and Phone are optional contact details.
	Email string
	Phone string

	// Address is zero until SetAddress is called.
	Address shared.Address

	IsActive bool

	SchoolID int64

	// SectionID is nil until the student is placed in a section.
	SectionID *int64
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewStudentParams contains the inputs for enrolling a student.
type NewStudentParams struct {
	FirstName      string
	LastName       string
	Identification string
	GradeLevel     shared.GradeLevel
	DateOfBirth    time.Time
	SchoolID       int64
	Email          string
	Phone          string
}

// NewStudent validates params and returns the student together with its
// pending StudentCreated event. Nothing is built when a rule fails.
func NewStudent(params NewStudentParams, now time.Time) (*Student, []shared.Event, error) {
	const op = "NewStudent"

	first, err := shared.Require(domainName, op, params.FirstName, "First name is required")
	if err != nil {
		return nil, nil, err
	}
	last, err := shared.Require(domainName, op, params.LastName, "Last name is required")
	if err != nil {
		return nil, nil, err
	}
	ident, err := shared.Require(domainName, op, params.Identification, "Identification is required")
	if err != nil {
		return nil, nil, err
	}
	if !params.DateOfBirth.Before(now) {
		return nil, nil, shared.RuleViolation(domainName, op, "Date of birth must be in the past")
	}
	if !params.GradeLevel.IsValid() {
		return nil, nil, shared.RuleViolation(domainName, op, "Invalid grade level")
	}
	if params.SchoolID <= 0 {
		return nil, nil, shared.RuleViolation(domainName, op, "School is required")
	}

	s := &Student{
		Audit:          shared.NewAudit(now),
		FirstName:      first,
		LastName:       last,
		Identification: ident,
		GradeLevel:     params.GradeLevel,
		DateOfBirth:    params.DateOfBirth.UTC(),
		Email:          strings.TrimSpace(params.Email),
		Phone:          strings.TrimSpace(params.Phone),
		IsActive:       true,
		SchoolID:       params.SchoolID,
	}

	created := shared.NewStudentCreatedEvent(s.SchoolID, s.Identification, s.FullName(), s.Email, now)
	return s, []shared.Event{created}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// UpdateInfo replaces the student's names and contact details.
func (s *Student) UpdateInfo(firstName, lastName, email, phone string, now time.Time) error {
	first, err := shared.Require(domainName, "UpdateInfo", firstName, "First name is required")
	if err != nil {
		return err
	}
	last, err := shared.Require(domainName, "UpdateInfo", lastName, "Last name is required")
	if err != nil {
		return err
	}

	s.FirstName = first
	s.LastName = last
	s.Email = strings.TrimSpace(email)
	s.Phone = strings.TrimSpace(phone)
	s.Touch(now)
	return nil
}

// UpdateGradeLevel moves the student to another school year.
func (s *Student) UpdateGradeLevel(level shared.GradeLevel, now time.Time) error {
	if !level.IsValid() {
		return shared.RuleViolation(domainName, "UpdateGradeLevel", "Invalid grade level")
	}
	s.GradeLevel = level
	s.Touch(now)
	return nil
}

// AssignToSection places the student in a section.
func (s *Student) AssignToSection(sectionID int64, now time.Time) error {
	if sectionID <= 0 {
		return shared.RuleViolation(domainName, "AssignToSection", "Section is required")
	}
	s.SectionID = &sectionID
	s.Touch(now)
	return nil
}

// SetAddress validates and stores the postal address.
func (s *Student) SetAddress(province, canton, district, detailed string, now time.Time) error {
	addr, err := shared.NewAddress(province, canton, district, detailed)
	if err != nil {
		return err
	}
	s.Address = addr
	s.Touch(now)
	return nil
}

// Deactivate withdraws the student.
func (s *Student) Deactivate(now time.Time) {
	s.IsActive = false
	s.Touch(now)
}

// Activate re-enrolls the student.
func (s *Student) Activate(now time.Time) {
	s.IsActive = true
	s.Touch(now)
}

// FullName returns "First Last".
func (s *Student) FullName() string {
	return shared.FullName(s.FirstName, s.LastName)
}

// AgeAt returns the completed years of age on the given instant.
func (s *Student) AgeAt(now time.Time) int {
	return AgeOn(s.DateOfBirth, now)
}

// AgeOn returns the completed years between dateOfBirth and now.
func AgeOn(dateOfBirth, now time.Time) int {
	now = now.UTC()
	age := now.Year() - dateOfBirth.Year()
	if now.Before(dateOfBirth.AddDate(age, 0, 0)) {
		age--
	}
	return age
}

// String returns a compact representation for logging.
func (s *Student) String() string {
	return fmt.Sprintf("Student{ID: %d, Identification: %s, School: %d, Active: %t}",
		s.ID, s.Identification, s.SchoolID, s.IsActive)
}

// Clone creates a deep copy of the student.
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}
	clone := *s
	if s.SectionID != nil {
		id := *s.SectionID
		clone.SectionID = &id
	}
	if s.UpdatedAt != nil {
		t := *s.UpdatedAt
		clone.UpdatedAt = &t
	}
	return &clone
}
