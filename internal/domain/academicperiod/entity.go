// Package academicperiod holds the AcademicPeriod aggregate: a grading
// window (trimester, semester, ...) of a school year.
package academicperiod

import (
	"context"
	"fmt"
	"time"

	"github.com/asidocente/school-records/internal/domain/shared"
)

const domainName = "academicperiod"

// PeriodType is the length of a grading period.
type PeriodType int

const (
	PeriodTrimestre PeriodType = iota
	PeriodBimestre
	PeriodSemestre
	PeriodAnual
)

// IsValid checks if the period type is a known value.
func (p PeriodType) IsValid() bool {
	return p >= PeriodTrimestre && p <= PeriodAnual
}

// String returns the type name.
func (p PeriodType) String() string {
	switch p {
	case PeriodTrimestre:
		return "Trimestre"
	case PeriodBimestre:
		return "Bimestre"
	case PeriodSemestre:
		return "Semestre"
	case PeriodAnual:
		return "Anual"
	default:
		return fmt.Sprintf("PeriodType(%d)", int(p))
	}
}

// AcademicPeriod is a dated grading window of a school.
type AcademicPeriod struct {
	shared.Audit

	Name         string
	PeriodType   PeriodType
	SchoolYear   int
	PeriodNumber int
	StartDate    time.Time
	EndDate      time.Time
	IsActive     bool
	SchoolID     int64
}

// NewAcademicPeriodParams contains the inputs for opening a period.
type NewAcademicPeriodParams struct {
	Name         string
	PeriodType   PeriodType
	SchoolYear   int
	PeriodNumber int
	StartDate    time.Time
	EndDate      time.Time
	SchoolID     int64
}

// NewAcademicPeriod validates the inputs and returns an active period.
func NewAcademicPeriod(params NewAcademicPeriodParams, now time.Time) (*AcademicPeriod, error) {
	const op = "NewAcademicPeriod"

	name, err := shared.Require(domainName, op, params.Name, "Period name is required")
	if err != nil {
		return nil, err
	}
	if params.SchoolYear < 2000 || params.SchoolYear > 2100 {
		return nil, shared.RuleViolation(domainName, op, "Invalid school year")
	}
	if params.PeriodNumber <= 0 {
		return nil, shared.RuleViolation(domainName, op, "Period number must be greater than zero")
	}
	if !params.StartDate.Before(params.EndDate) {
		return nil, shared.RuleViolation(domainName, op, "Start date must be before end date")
	}
	if !params.PeriodType.IsValid() {
		return nil, shared.RuleViolation(domainName, op, "Invalid period type")
	}
	if params.SchoolID <= 0 {
		return nil, shared.RuleViolation(domainName, op, "School is required")
	}

	return &AcademicPeriod{
		Audit:        shared.NewAudit(now),
		Name:         name,
		PeriodType:   params.PeriodType,
		SchoolYear:   params.SchoolYear,
		PeriodNumber: params.PeriodNumber,
		StartDate:    params.StartDate.UTC(),
		EndDate:      params.EndDate.UTC(),
		IsActive:     true,
		SchoolID:     params.SchoolID,
	}, nil
}

// UpdateDates moves the window.
func (p *AcademicPeriod) UpdateDates(start, end time.Time, now time.Time) error {
	if !start.Before(end) {
		return shared.RuleViolation(domainName, "UpdateDates", "Start date must be before end date")
	}
	p.StartDate = start.UTC()
	p.EndDate = end.UTC()
	p.Touch(now)
	return nil
}

// IsCurrentAt reports whether the period is active and now lies in it.
func (p *AcademicPeriod) IsCurrentAt(now time.Time) bool {
	return p.IsActive && !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// Activate reopens the period.
func (p *AcademicPeriod) Activate(now time.Time) {
	p.IsActive = true
	p.Touch(now)
}

// Deactivate closes the period.
func (p *AcademicPeriod) Deactivate(now time.Time) {
	p.IsActive = false
	p.Touch(now)
}

// Repository defines storage operations for academic periods.
type Repository interface {
	Add(ctx context.Context, p *AcademicPeriod) error
	GetByID(ctx context.Context, id int64) (*AcademicPeriod, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*AcademicPeriod, error)
}

// ErrAcademicPeriodNotFound is returned when a period lookup misses.
var ErrAcademicPeriodNotFound = shared.NotFound(domainName, "Academic period")
