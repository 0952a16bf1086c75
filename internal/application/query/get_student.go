package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/juju/clock"

	"github.com/asidocente/school-records/internal/application/result"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/internal/domain/student"
	"github.com/asidocente/school-records/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentQuery loads one student by id.
type GetStudentQuery struct {
	ID int64 `json:"id" validate:"gt=0"`
}

// ValidationMessages implements validation.Messenger.
func (GetStudentQuery) ValidationMessages() map[string]string {
	return map[string]string{"id.gt": "Student ID is required"}
}

// StudentCache stores StudentDTO read models. A miss is (nil, nil).
type StudentCache interface {
	GetStudent(ctx context.Context, id int64) (*StudentDTO, error)
	SetStudent(ctx context.Context, dto StudentDTO) error
}

// GetStudentHandler handles the GetStudentQuery.
type GetStudentHandler struct {
	repos store.Repositories
	cache StudentCache
	clock clock.Clock
}

// NewGetStudentHandler creates a new GetStudentHandler. cache may be nil.
func NewGetStudentHandler(repos store.Repositories, cache StudentCache, clk clock.Clock) *GetStudentHandler {
	return &GetStudentHandler{repos: repos, cache: cache, clock: clk}
}

// Handle returns the student DTO or a NotFound result.
func (h *GetStudentHandler) Handle(ctx context.Context, q GetStudentQuery) (result.Result[StudentDTO], error) {
	log := logger.FromContext(ctx)

	if h.cache != nil {
		cached, err := h.cache.GetStudent(ctx, q.ID)
		if err != nil {
			log.WarnContext(ctx, "student cache read failed", logger.StudentID(q.ID), logger.Err(err))
		} else if cached != nil {
			dto := *cached
			// The cached age may predate a birthday.
			dto.Age = student.AgeOn(dto.DateOfBirth, h.clock.Now())
			return result.Success(dto), nil
		}
	}

	s, err := h.repos.Students().GetByID(ctx, q.ID)
	if shared.IsNotFound(err) {
		return result.NotFound[StudentDTO]("Student not found"), nil
	}
	if err != nil {
		return result.Result[StudentDTO]{}, fmt.Errorf("get_student: %w", err)
	}

	var schoolName, sectionName string
	sch, err := h.repos.Schools().GetByID(ctx, s.SchoolID)
	switch {
	case err == nil:
		schoolName = sch.Name
	case !shared.IsNotFound(err):
		return result.Result[StudentDTO]{}, fmt.Errorf("get_student: load school: %w", err)
	}
	if s.SectionID != nil {
		sec, err := h.repos.Sections().GetByID(ctx, *s.SectionID)
		switch {
		case err == nil:
			sectionName = sec.Name
		case !shared.IsNotFound(err):
			return result.Result[StudentDTO]{}, fmt.Errorf("get_student: load section: %w", err)
		}
	}

	dto := newStudentDTO(s, schoolName, sectionName, h.clock.Now())

	if h.cache != nil {
		if err := h.cache.SetStudent(ctx, dto); err != nil {
			log.WarnContext(ctx, "student cache write failed", logger.StudentID(q.ID), logger.Err(err))
		} else {
			log.DebugContext(ctx, "student cached", slog.Int64("student_id", dto.ID))
		}
	}
	return result.Success(dto), nil
}
