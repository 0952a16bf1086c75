// Package query contains read operations (CQRS - Queries).
//
// Queries never change state. Absence of a single requested row is a
// result.NotFound; list queries return plain values where an empty list is
// a valid answer.
package query

import (
	"time"

	"github.com/asidocente/school-records/internal/domain/grade"
	"github.com/asidocente/school-records/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT DTOs
// ══════════════════════════════════════════════════════════════════════════════

// StudentDTO is the full read model of one student.
type StudentDTO struct {
	ID              int64     `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	FullName        string    `json:"fullName"`
	Identification  string    `json:"identification"`
	GradeLevel      string    `json:"gradeLevel"`
	DateOfBirth     time.Time `json:"dateOfBirth"`
	Age             int       `json:"age"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Province        string    `json:"province,omitempty"`
	Canton          string    `json:"canton,omitempty"`
	District        string    `json:"district,omitempty"`
	DetailedAddress string    `json:"detailedAddress,omitempty"`
	IsActive        bool      `json:"isActive"`
	SchoolID        int64     `json:"schoolId"`
	SchoolName      string    `json:"schoolName"`
	SectionID       *int64    `json:"sectionId,omitempty"`
	SectionName     string    `json:"sectionName,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// StudentListDTO is the compact row used by paged listings.
type StudentListDTO struct {
	ID             int64  `json:"id"`
	FullName       string `json:"fullName"`
	Identification string `json:"identification"`
	GradeLevel     string `json:"gradeLevel"`
	SchoolName     string `json:"schoolName"`
	IsActive       bool   `json:"isActive"`
}

func newStudentDTO(s *student.Student, schoolName, sectionName string, now time.Time) StudentDTO {
	return StudentDTO{
		ID:              s.ID,
		FirstName:       s.FirstName,
		LastName:        s.LastName,
		FullName:        s.FullName(),
		Identification:  s.Identification,
		GradeLevel:      s.GradeLevel.String(),
		DateOfBirth:     s.DateOfBirth,
		Age:             s.AgeAt(now),
		Email:           s.Email,
		Phone:           s.Phone,
		Province:        s.Address.Province,
		Canton:          s.Address.Canton,
		District:        s.Address.District,
		DetailedAddress: s.Address.Detailed,
		IsActive:        s.IsActive,
		SchoolID:        s.SchoolID,
		SchoolName:      schoolName,
		SectionID:       s.SectionID,
		SectionName:     sectionName,
		CreatedAt:       s.CreatedAt,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADE DTO
// ══════════════════════════════════════════════════════════════════════════════

// GradeDTO is a grade enriched with names and derived values.
type GradeDTO struct {
	ID               int64     `json:"id"`
	Score            float64   `json:"score"`
	MaxScore         float64   `json:"maxScore"`
	Percentage       float64   `json:"percentage"`
	LetterGrade      string    `json:"letterGrade"`
	IsPassing        bool      `json:"isPassing"`
	Comments         string    `json:"comments,omitempty"`
	GradeDate        time.Time `json:"gradeDate"`
	StudentID        int64     `json:"studentId"`
	StudentName      string    `json:"studentName"`
	SubjectID        int64     `json:"subjectId"`
	SubjectName      string    `json:"subjectName"`
	AcademicPeriodID int64     `json:"academicPeriodId"`
	PeriodName       string    `json:"periodName"`
}

func newGradeDTO(g *grade.Grade) GradeDTO {
	return GradeDTO{
		ID:               g.ID,
		Score:            g.Score,
		MaxScore:         g.MaxScore,
		Percentage:       g.Percentage(),
		LetterGrade:      g.LetterGrade(),
		IsPassing:        g.IsPassing(),
		Comments:         g.Comments,
		GradeDate:        g.GradeDate,
		StudentID:        g.StudentID,
		SubjectID:        g.SubjectID,
		AcademicPeriodID: g.AcademicPeriodID,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PAGINATION
// ══════════════════════════════════════════════════════════════════════════════

// Paging defaults.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PaginatedList is one page of a larger ordered listing.
type PaginatedList[T any] struct {
	Items           []T  `json:"items"`
	PageNumber      int  `json:"pageNumber"`
	PageSize        int  `json:"pageSize"`
	TotalCount      int  `json:"totalCount"`
	TotalPages      int  `json:"totalPages"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// NewPaginatedList computes the page counters. items is never nil.
func NewPaginatedList[T any](items []T, total, pageNumber, pageSize int) PaginatedList[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return PaginatedList[T]{
		Items:           items,
		PageNumber:      pageNumber,
		PageSize:        pageSize,
		TotalCount:      total,
		TotalPages:      pages,
		HasPreviousPage: pageNumber > 1,
		HasNextPage:     pageNumber < pages,
	}
}
