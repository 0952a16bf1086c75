// Package section holds the Section aggregate: a class group of one grade
// level in one school year.
package section

import (
	"context"
	"time"

	"github.com/asidocente/school-records/internal/domain/shared"
)

const domainName = "section"

// DefaultCapacity is used when a section is created without a capacity.
const DefaultCapacity = 30

// Plausible school-year bounds.
const (
	MinSchoolYear = 2000
	MaxSchoolYear = 2100
)

// Section is a class group. Enrolment is counted, never stored here.
type Section struct {
	shared.Audit

	Name       string
	GradeLevel shared.GradeLevel
	Capacity   int
	SchoolYear int
	IsActive   bool
	SchoolID   int64

	// HomeRoomTeacherID is nil until a homeroom teacher is assigned.
	HomeRoomTeacherID *int64
}

// NewSectionParams contains the inputs for opening a section.
type NewSectionParams struct {
	Name       string
	GradeLevel shared.GradeLevel
	SchoolYear int
	SchoolID   int64

	// Capacity defaults to DefaultCapacity when nil.
	Capacity *int
}

// NewSection validates the inputs and returns an active section.
func NewSection(params NewSectionParams, now time.Time) (*Section, error) {
	const op = "NewSection"

	name, err := shared.Require(domainName, op, params.Name, "Section name is required")
	if err != nil {
		return nil, err
	}
	capacity := DefaultCapacity
	if params.Capacity != nil {
		capacity = *params.Capacity
	}
	if capacity <= 0 {
		return nil, shared.RuleViolation(domainName, op, "Capacity must be greater than zero")
	}
	if !ValidSchoolYear(params.SchoolYear) {
		return nil, shared.RuleViolation(domainName, op, "Invalid school year")
	}
	if !params.GradeLevel.IsValid() {
		return nil, shared.RuleViolation(domainName, op, "Invalid grade level")
	}
	if params.SchoolID <= 0 {
		return nil, shared.RuleViolation(domainName, op, "School is required")
	}

	return &Section{
		Audit:      shared.NewAudit(now),
		Name:       name,
		GradeLevel: params.GradeLevel,
		Capacity:   capacity,
		SchoolYear: params.SchoolYear,
		IsActive:   true,
		SchoolID:   params.SchoolID,
	}, nil
}

// ValidSchoolYear reports whether year lies in the plausible range.
func ValidSchoolYear(year int) bool {
	return year >= MinSchoolYear && year <= MaxSchoolYear
}

// UpdateInfo renames the section and changes its capacity.
func (s *Section) UpdateInfo(name string, capacity int, now time.Time) error {
	n, err := shared.Require(domainName, "UpdateInfo", name, "Section name is required")
	if err != nil {
		return err
	}
	if capacity <= 0 {
		return shared.RuleViolation(domainName, "UpdateInfo", "Capacity must be greater than zero")
	}
	s.Name = n
	s.Capacity = capacity
	s.Touch(now)
	return nil
}

// AssignHomeRoomTeacher sets the section's homeroom teacher.
func (s *Section) AssignHomeRoomTeacher(teacherID int64, now time.Time) error {
	if teacherID <= 0 {
		return shared.RuleViolation(domainName, "AssignHomeRoomTeacher", "Teacher is required")
	}
	s.HomeRoomTeacherID = &teacherID
	s.Touch(now)
	return nil
}

// AvailableSlots returns capacity minus the enrolled count, never below zero.
func (s *Section) AvailableSlots(enrolled int) int {
	if free := s.Capacity - enrolled; free > 0 {
		return free
	}
	return 0
}

// HasAvailableCapacity reports whether one more student fits.
func (s *Section) HasAvailableCapacity(enrolled int) bool {
	return s.AvailableSlots(enrolled) > 0
}

// Repository defines storage operations for sections.
type Repository interface {
	Add(ctx context.Context, s *Section) error
	GetByID(ctx context.Context, id int64) (*Section, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*Section, error)
}

// ErrSectionNotFound is returned when a section lookup misses.
var ErrSectionNotFound = shared.NotFound(domainName, "Section")
