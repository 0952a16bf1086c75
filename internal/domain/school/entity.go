// Package school holds the School aggregate, the root that owns students,
// teachers, sections, subjects and academic periods.
package school

import (
	"context"
	"strings"
	"time"

	"github.com/asidocente/school-records/internal/domain/shared"
)

const domainName = "school"

// School is an educational centre identified by a unique code.
type School struct {
	shared.Audit

	Name     string
	Code     string
	Director string
	Email    string
	Phone    string
	Address  shared.Address
	IsActive bool
}

// NewSchool validates the name and code and returns an active school.
func NewSchool(name, code string, now time.Time) (*School, error) {
	n, err := shared.Require(domainName, "NewSchool", name, "School name is required")
	if err != nil {
		return nil, err
	}
	c, err := shared.Require(domainName, "NewSchool", code, "School code is required")
	if err != nil {
		return nil, err
	}
	return &School{
		Audit:    shared.NewAudit(now),
		Name:     n,
		Code:     strings.ToUpper(c),
		IsActive: true,
	}, nil
}

// UpdateInfo replaces the descriptive fields.
func (s *School) UpdateInfo(name, director, email, phone string, now time.Time) error {
	n, err := shared.Require(domainName, "UpdateInfo", name, "School name is required")
	if err != nil {
		return err
	}
	s.Name = n
	s.Director = strings.TrimSpace(director)
	s.Email = strings.TrimSpace(email)
	s.Phone = strings.TrimSpace(phone)
	s.Touch(now)
	return nil
}

// SetAddress validates and stores the school address.
func (s *School) SetAddress(province, canton, district, detailed string, now time.Time) error {
	addr, err := shared.NewAddress(province, canton, district, detailed)
	if err != nil {
		return err
	}
	s.Address = addr
	s.Touch(now)
	return nil
}

// Activate reopens the school.
func (s *School) Activate(now time.Time) {
	s.IsActive = true
	s.Touch(now)
}

// Deactivate closes the school; it stops accepting enrolments.
func (s *School) Deactivate(now time.Time) {
	s.IsActive = false
	s.Touch(now)
}

// Repository defines storage operations for schools.
type Repository interface {
	// Add stores a school; a taken code matches shared.ErrAlreadyExists.
	Add(ctx context.Context, s *School) error
	Update(ctx context.Context, s *School) error
	GetByID(ctx context.Context, id int64) (*School, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*School, error)
}

var (
	// ErrSchoolNotFound is returned when a school lookup misses.
	ErrSchoolNotFound = shared.NotFound(domainName, "School")

	// ErrDuplicateCode is returned when the school code is taken.
	ErrDuplicateCode = shared.NewDomainError(domainName, "Add", shared.ErrAlreadyExists,
		"A school with this code already exists")
)
