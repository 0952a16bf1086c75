package query

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/asidocente/school-records/internal/domain/academicperiod"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/internal/domain/subject"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET GRADES BY STUDENT QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetGradesByStudentQuery lists a student's grades, optionally for one period.
type GetGradesByStudentQuery struct {
	StudentID        int64  `json:"studentId" validate:"gt=0"`
	AcademicPeriodID *int64 `json:"academicPeriodId,omitempty" validate:"omitempty,gt=0"`
}

// ValidationMessages implements validation.Messenger.
func (GetGradesByStudentQuery) ValidationMessages() map[string]string {
	return map[string]string{
		"studentId.gt":        "Student ID is required",
		"academicPeriodId.gt": "Academic period ID must be greater than 0",
	}
}

// GetGradesByStudentHandler handles the GetGradesByStudentQuery.
type GetGradesByStudentHandler struct {
	repos store.Repositories
}

// NewGetGradesByStudentHandler creates a new GetGradesByStudentHandler.
func NewGetGradesByStudentHandler(repos store.Repositories) *GetGradesByStudentHandler {
	return &GetGradesByStudentHandler{repos: repos}
}

// Handle returns the grades ordered by grade date. An unknown student has
// no grades.
func (h *GetGradesByStudentHandler) Handle(ctx context.Context, q GetGradesByStudentQuery) ([]GradeDTO, error) {
	grades, err := h.repos.Grades().ListByStudent(ctx, q.StudentID, q.AcademicPeriodID)
	if err != nil {
		return nil, fmt.Errorf("get_grades_by_student: %w", err)
	}
	if len(grades) == 0 {
		return []GradeDTO{}, nil
	}

	subjectIDs := make([]int64, 0, len(grades))
	periodIDs := make([]int64, 0, len(grades))
	for _, g := range grades {
		subjectIDs = append(subjectIDs, g.SubjectID)
		periodIDs = append(periodIDs, g.AcademicPeriodID)
	}

	var (
		studentName string
		subjects    map[int64]*subject.Subject
		periods     map[int64]*academicperiod.AcademicPeriod
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		s, err := h.repos.Students().GetByID(gctx, q.StudentID)
		if shared.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		studentName = s.FullName()
		return nil
	})
	eg.Go(func() error {
		var err error
		subjects, err = h.repos.Subjects().GetByIDs(gctx, subjectIDs)
		return err
	})
	eg.Go(func() error {
		var err error
		periods, err = h.repos.AcademicPeriods().GetByIDs(gctx, periodIDs)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("get_grades_by_student: enrich: %w", err)
	}

	out := make([]GradeDTO, 0, len(grades))
	for _, g := range grades {
		dto := newGradeDTO(g)
		dto.StudentName = studentName
		if s, ok := subjects[g.SubjectID]; ok {
			dto.SubjectName = s.Name
		}
		if p, ok := periods[g.AcademicPeriodID]; ok {
			dto.PeriodName = p.Name
		}
		out = append(out, dto)
	}
	return out, nil
}
