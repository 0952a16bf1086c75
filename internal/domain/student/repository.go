package student

import (
	"context"
	"strings"

	"github.com/asidocente/school-records/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines storage operations for students.
type Repository interface {
	// Add stores a new student and assigns its ID.
	// Returns an error matching shared.ErrAlreadyExists when the
	// identification is taken.
	Add(ctx context.Context, s *Student) error

	// Update persists changes to an existing student.
	Update(ctx context.Context, s *Student) error

	// GetByID returns ErrNotFound when no student has the id.
	GetByID(ctx context.Context, id int64) (*Student, error)

	// GetByIDs returns the students that exist among ids, keyed by id.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*Student, error)

	// ExistsByIdentification reports whether the identification is in use.
	ExistsByIdentification(ctx context.Context, identification string) (bool, error)

	// List returns one page of students ordered by last name, first name, id.
	List(ctx context.Context, filter ListFilter) ([]*Student, error)

	// Count returns how many students match the filter, ignoring paging.
	Count(ctx context.Context, filter ListFilter) (int, error)

	// CountBySection returns the number of active students in a section.
	CountBySection(ctx context.Context, sectionID int64) (int, error)

	// LinkParents records student↔parent relations. Existing pairs are kept.
	LinkParents(ctx context.Context, studentID int64, parentIDs []int64) error

	// ParentIDs returns the ids of the parents linked to a student.
	ParentIDs(ctx context.Context, studentID int64) ([]int64, error)
}

// ErrStudentNotFound is returned when a student lookup misses.
var ErrStudentNotFound = shared.NotFound(domainName, "Student")

// ErrDuplicateIdentification is returned when the identification is taken.
var ErrDuplicateIdentification = shared.NewDomainError(domainName, "Add", shared.ErrAlreadyExists,
	"A student with this identification already exists")

// ══════════════════════════════════════════════════════════════════════════════
// LIST FILTER
// ══════════════════════════════════════════════════════════════════════════════

// ListFilter narrows and pages a student listing. Nil pointers mean "any".
type ListFilter struct {
	SchoolID   *int64
	SectionID  *int64
	GradeLevel *shared.GradeLevel
	IsActive   *bool

	// SearchTerm matches first name, last name or identification,
	// case-insensitively, as a substring.
	SearchTerm string

	Offset int
	Limit  int
}

// NormalizedSearch returns the lowercased, trimmed search term.
func (f ListFilter) NormalizedSearch() string {
	return strings.ToLower(strings.TrimSpace(f.SearchTerm))
}

// Matches applies the non-paging part of the filter to a student.
func (f ListFilter) Matches(s *Student) bool {
	if s.IsDeleted {
		return false
	}
	if f.SchoolID != nil && s.SchoolID != *f.SchoolID {
		return false
	}
	if f.SectionID != nil && (s.SectionID == nil || *s.SectionID != *f.SectionID) {
		return false
	}
	if f.GradeLevel != nil && s.GradeLevel != *f.GradeLevel {
		return false
	}
	if f.IsActive != nil && s.IsActive != *f.IsActive {
		return false
	}
	term := f.NormalizedSearch()
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.FirstName), term) ||
		strings.Contains(strings.ToLower(s.LastName), term) ||
		strings.Contains(strings.ToLower(s.Identification), term)
}

// Less orders students by last name, then first name, then id.
func Less(a, b *Student) bool {
	if a.LastName != b.LastName {
		return a.LastName < b.LastName
	}
	if a.FirstName != b.FirstName {
		return a.FirstName < b.FirstName
	}
	return a.ID < b.ID
}
