// Package subject holds the Subject aggregate.
package subject

import (
	"context"
	"strings"
	"time"

	"github.com/asidocente/school-records/internal/domain/shared"
)

const domainName = "subject"

// DefaultCredits is used when a subject is created without explicit credits.
const DefaultCredits = 1

// Subject is a course taught at a school; its code is unique per school.
type Subject struct {
	shared.Audit

	Name        string
	Code        string
	Description string
	Credits     int
	IsActive    bool
	SchoolID    int64
}

// NewSubjectParams contains the inputs for creating a subject.
type NewSubjectParams struct {
	Name        string
	Code        string
	SchoolID    int64
	Description string

	// Credits defaults to DefaultCredits when nil.
	Credits *int
}

// NewSubject validates the inputs and returns an active subject.
func NewSubject(params NewSubjectParams, now time.Time) (*Subject, error) {
	const op = "NewSubject"

	name, err := shared.Require(domainName, op, params.Name, "Subject name is required")
	if err != nil {
		return nil, err
	}
	code, err := shared.Require(domainName, op, params.Code, "Subject code is required")
	if err != nil {
		return nil, err
	}
	credits := DefaultCredits
	if params.Credits != nil {
		credits = *params.Credits
	}
	if credits < 0 {
		return nil, shared.RuleViolation(domainName, op, "Credits cannot be negative")
	}
	if params.SchoolID <= 0 {
		return nil, shared.RuleViolation(domainName, op, "School is required")
	}

	return &Subject{
		Audit:       shared.NewAudit(now),
		Name:        name,
		Code:        strings.ToUpper(code),
		Description: strings.TrimSpace(params.Description),
		Credits:     credits,
		IsActive:    true,
		SchoolID:    params.SchoolID,
	}, nil
}

// UpdateInfo replaces name, description and credits.
func (s *Subject) UpdateInfo(name, description string, credits int, now time.Time) error {
	n, err := shared.Require(domainName, "UpdateInfo", name, "Subject name is required")
	if err != nil {
		return err
	}
	if credits < 0 {
		return shared.RuleViolation(domainName, "UpdateInfo", "Credits cannot be negative")
	}
	s.Name = n
	s.Description = strings.TrimSpace(description)
	s.Credits = credits
	s.Touch(now)
	return nil
}

// Activate re-enables the subject.
func (s *Subject) Activate(now time.Time) {
	s.IsActive = true
	s.Touch(now)
}

// Deactivate retires the subject.
func (s *Subject) Deactivate(now time.Time) {
	s.IsActive = false
	s.Touch(now)
}

// Repository defines storage operations for subjects.
type Repository interface {
	// Add stores a subject; a code already used in the same school matches
	// shared.ErrAlreadyExists.
	Add(ctx context.Context, s *Subject) error
	GetByID(ctx context.Context, id int64) (*Subject, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*Subject, error)

	// AssignTeacher records that a teacher teaches the subject.
	AssignTeacher(ctx context.Context, subjectID, teacherID int64) error
}

var (
	// ErrSubjectNotFound is returned when a subject lookup misses.
	ErrSubjectNotFound = shared.NotFound(domainName, "Subject")

	// ErrDuplicateCode is returned when the code is taken within the school.
	ErrDuplicateCode = shared.NewDomainError(domainName, "Add", shared.ErrAlreadyExists,
		"A subject with this code already exists in the school")
)
