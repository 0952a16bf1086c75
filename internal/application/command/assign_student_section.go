package command

import (
	"context"
	"log/slog"

	"github.com/juju/clock"

	"github.com/asidocente/school-records/internal/application/result"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSIGN STUDENT SECTION COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// AssignStudentSectionCommand places a student in a section of their school.
type AssignStudentSectionCommand struct {
	StudentID int64 `json:"studentId" validate:"gt=0"`
	SectionID int64 `json:"sectionId" validate:"gt=0"`
}

// ValidationMessages implements validation.Messenger.
func (AssignStudentSectionCommand) ValidationMessages() map[string]string {
	return map[string]string{
		"studentId.gt": "Student ID is required",
		"sectionId.gt": "Section ID is required",
	}
}

// StudentCacheInvalidator drops cached read models of a student.
type StudentCacheInvalidator interface {
	InvalidateStudent(ctx context.Context, studentID int64) error
}

// AssignStudentSectionHandler handles the AssignStudentSectionCommand.
type AssignStudentSectionHandler struct {
	store store.Store
	cache StudentCacheInvalidator
	clock clock.Clock
}

// NewAssignStudentSectionHandler creates a new AssignStudentSectionHandler.
// cache may be nil.
func NewAssignStudentSectionHandler(st store.Store, cache StudentCacheInvalidator, clk clock.Clock) *AssignStudentSectionHandler {
	return &AssignStudentSectionHandler{store: st, cache: cache, clock: clk}
}

// Handle executes the assignment. Returns the student id.
func (h *AssignStudentSectionHandler) Handle(ctx context.Context, cmd AssignStudentSectionCommand) (result.Result[int64], error) {
	const op, prefix = "assign_student_section", "Error assigning section: "
	now := h.clock.Now()

	_, err := h.store.Do(ctx, func(ctx context.Context, tx store.Repositories) ([]shared.Event, error) {
		st, err := tx.Students().GetByID(ctx, cmd.StudentID)
		if err != nil {
			return nil, err
		}
		sec, err := tx.Sections().GetByID(ctx, cmd.SectionID)
		if err != nil {
			return nil, err
		}
		if sec.SchoolID != st.SchoolID {
			return nil, ruleError("student", "AssignSection", "Section belongs to another school")
		}
		if st.SectionID != nil && *st.SectionID == sec.ID {
			return nil, nil
		}

		enrolled, err := tx.Students().CountBySection(ctx, sec.ID)
		if err != nil {
			return nil, err
		}
		if !sec.HasAvailableCapacity(enrolled) {
			return nil, ruleError("student", "AssignSection", "Section is full")
		}

		if err := st.AssignToSection(sec.ID, now); err != nil {
			return nil, err
		}
		return nil, tx.Students().Update(ctx, st)
	})
	if err != nil {
		return outcome[int64](op, prefix, err)
	}

	log := logger.FromContext(ctx)
	if h.cache != nil {
		if err := h.cache.InvalidateStudent(ctx, cmd.StudentID); err != nil {
			log.WarnContext(ctx, "failed to invalidate student cache",
				logger.StudentID(cmd.StudentID), logger.Err(err))
		}
	}

	log.InfoContext(ctx, "student assigned to section",
		logger.StudentID(cmd.StudentID),
		slog.Int64("section_id", cmd.SectionID),
	)
	return result.Success(cmd.StudentID), nil
}
