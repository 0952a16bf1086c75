package query

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENTS LIST QUERY
// The one paged read path. Ordering is last name, first name, id so the
// same filter always yields the same pages.
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentsListQuery filters and pages students. Zero page values mean
// the defaults.
type GetStudentsListQuery struct {
	PageNumber int    `json:"pageNumber" validate:"gte=0"`
	PageSize   int    `json:"pageSize" validate:"gte=0"`
	SchoolID   *int64 `json:"schoolId,omitempty" validate:"omitempty,gt=0"`
	SectionID  *int64 `json:"sectionId,omitempty" validate:"omitempty,gt=0"`
	GradeLevel *int   `json:"gradeLevel,omitempty" validate:"omitempty,gte=0,lte=15"`
	IsActive   *bool  `json:"isActive,omitempty"`
	SearchTerm string `json:"searchTerm,omitempty" validate:"omitempty,max=100"`
}

// ValidationMessages implements validation.Messenger.
func (GetStudentsListQuery) ValidationMessages() map[string]string {
	return map[string]string{
		"pageNumber.gte": "Page number must be greater than 0",
		"pageSize.gte":   "Page size must be greater than 0",
		"gradeLevel.gte": "Invalid grade level",
		"gradeLevel.lte": "Invalid grade level",
	}
}

// GetStudentsListHandler handles the GetStudentsListQuery.
type GetStudentsListHandler struct {
	repos       store.Repositories
	maxPageSize int
}

// NewGetStudentsListHandler creates a new GetStudentsListHandler. A
// non-positive maxPageSize means MaxPageSize.
func NewGetStudentsListHandler(repos store.Repositories, maxPageSize int) *GetStudentsListHandler {
	if maxPageSize <= 0 {
		maxPageSize = MaxPageSize
	}
	return &GetStudentsListHandler{repos: repos, maxPageSize: maxPageSize}
}

// Handle returns one page. Counting and fetching run concurrently.
func (h *GetStudentsListHandler) Handle(ctx context.Context, q GetStudentsListQuery) (PaginatedList[StudentListDTO], error) {
	page, size := h.normalize(q)

	filter := student.ListFilter{
		SchoolID:   q.SchoolID,
		SectionID:  q.SectionID,
		IsActive:   q.IsActive,
		SearchTerm: q.SearchTerm,
		Offset:     (page - 1) * size,
		Limit:      size,
	}
	if q.GradeLevel != nil {
		level := shared.GradeLevel(*q.GradeLevel)
		filter.GradeLevel = &level
	}

	var (
		total    int
		students []*student.Student
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := h.repos.Students().Count(gctx, filter)
		total = n
		return err
	})
	g.Go(func() error {
		list, err := h.repos.Students().List(gctx, filter)
		students = list
		return err
	})
	if err := g.Wait(); err != nil {
		return PaginatedList[StudentListDTO]{}, fmt.Errorf("get_students_list: %w", err)
	}

	schoolIDs := make([]int64, 0, len(students))
	for _, s := range students {
		schoolIDs = append(schoolIDs, s.SchoolID)
	}
	schools, err := h.repos.Schools().GetByIDs(ctx, schoolIDs)
	if err != nil {
		return PaginatedList[StudentListDTO]{}, fmt.Errorf("get_students_list: load schools: %w", err)
	}

	items := make([]StudentListDTO, 0, len(students))
	for _, s := range students {
		row := StudentListDTO{
			ID:             s.ID,
			FullName:       s.FullName(),
			Identification: s.Identification,
			GradeLevel:     s.GradeLevel.String(),
			IsActive:       s.IsActive,
		}
		if sch, ok := schools[s.SchoolID]; ok {
			row.SchoolName = sch.Name
		}
		items = append(items, row)
	}

	return NewPaginatedList(items, total, page, size), nil
}

func (h *GetStudentsListHandler) normalize(q GetStudentsListQuery) (page, size int) {
	page, size = q.PageNumber, q.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > h.maxPageSize {
		size = h.maxPageSize
	}
	return page, size
}
