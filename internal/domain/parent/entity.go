// Package parent holds the Parent aggregate: a guardian linked to one or
// more students.
package parent

import (
	"context"
	"strings"
	"time"

	"github.com/asidocente/school-records/internal/domain/shared"
)

const domainName = "parent"

// Parent is a guardian and contact person for students.
type Parent struct {
	shared.Audit

	FirstName      string
	LastName       string
	Identification string
	Email          string
	Phone          string
	AlternatePhone string
	Occupation     string

	// Relationship describes the bond, e.g. "Mother", "Guardian".
	Relationship string

	IsPrimaryContact bool
	IsActive         bool
}

// NewParentParams contains the inputs for registering a parent.
type NewParentParams struct {
	FirstName        string
	LastName         string
	Identification   string
	Email            string
	Phone            string
	Relationship     string
	IsPrimaryContact bool
}

// NewParent validates every contact field and returns an active parent.
func NewParent(params NewParentParams, now time.Time) (*Parent, error) {
	const op = "NewParent"

	required := []struct {
		value   string
		message string
	}{
		{params.FirstName, "First name is required"},
		{params.LastName, "Last name is required"},
		{params.Identification, "Identification is required"},
		{params.Email, "Email is required"},
		{params.Phone, "Phone is required"},
		{params.Relationship, "Relationship is required"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, shared.RuleViolation(domainName, op, r.message)
		}
	}

	return &Parent{
		Audit:            shared.NewAudit(now),
		FirstName:        strings.TrimSpace(params.FirstName),
		LastName:         strings.TrimSpace(params.LastName),
		Identification:   strings.TrimSpace(params.Identification),
		Email:            strings.TrimSpace(params.Email),
		Phone:            strings.TrimSpace(params.Phone),
		Relationship:     strings.TrimSpace(params.Relationship),
		IsPrimaryContact: params.IsPrimaryContact,
		IsActive:         true,
	}, nil
}

// UpdateInfo replaces names and contact details, including the optional
// alternate phone and occupation.
func (p *Parent) UpdateInfo(firstName, lastName, email, phone, alternatePhone, occupation string, now time.Time) error {
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

	p.FirstName = first
	p.LastName = last
	p.Email = mail
	p.Phone = tel
	p.AlternatePhone = strings.TrimSpace(alternatePhone)
	p.Occupation = strings.TrimSpace(occupation)
	p.Touch(now)
	return nil
}

// SetAsPrimaryContact marks the parent as the first one to call.
func (p *Parent) SetAsPrimaryContact(now time.Time) {
	p.IsPrimaryContact = true
	p.Touch(now)
}

// RemovePrimaryContact clears the primary-contact flag.
func (p *Parent) RemovePrimaryContact(now time.Time) {
	p.IsPrimaryContact = false
	p.Touch(now)
}

// Activate re-enables the parent.
func (p *Parent) Activate(now time.Time) {
	p.IsActive = true
	p.Touch(now)
}

// Deactivate disables the parent; inactive parents are not linked.
func (p *Parent) Deactivate(now time.Time) {
	p.IsActive = false
	p.Touch(now)
}

// FullName returns "First Last".
func (p *Parent) FullName() string {
	return shared.FullName(p.FirstName, p.LastName)
}

// Repository defines storage operations for parents.
type Repository interface {
	// Add stores a parent; a taken identification matches shared.ErrAlreadyExists.
	Add(ctx context.Context, p *Parent) error
	GetByID(ctx context.Context, id int64) (*Parent, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*Parent, error)
	ExistsByIdentification(ctx context.Context, identification string) (bool, error)
}

var (
	// ErrParentNotFound is returned when a parent lookup misses.
	ErrParentNotFound = shared.NotFound(domainName, "Parent")

	// ErrDuplicateIdentification is returned when the identification is taken.
	ErrDuplicateIdentification = shared.NewDomainError(domainName, "Add", shared.ErrAlreadyExists,
		"A parent with this identification already exists")
)
