package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/juju/clock"

	"github.com/asidocente/school-records/internal/application/result"
	"github.com/asidocente/school-records/internal/application/validation"
	"github.com/asidocente/school-records/internal/domain/grade"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER GRADE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RegisterGradeCommand records a score for a student in a subject and period.
type RegisterGradeCommand struct {
	StudentID        int64   `json:"studentId" validate:"gt=0"`
	SubjectID        int64   `json:"subjectId" validate:"gt=0"`
	AcademicPeriodID int64   `json:"academicPeriodId" validate:"gt=0"`
	TeacherID        *int64  `json:"teacherId,omitempty" validate:"omitempty,gt=0"`
	Score            float64 `json:"score" validate:"gte=0"`
	MaxScore         float64 `json:"maxScore" validate:"gt=0"`
	Comments         string  `json:"comments,omitempty" validate:"omitempty,max=500"`
}

// ValidationMessages implements validation.Messenger.
func (RegisterGradeCommand) ValidationMessages() map[string]string {
	return map[string]string{
		"studentId.gt":        "Student ID is required",
		"subjectId.gt":        "Subject ID is required",
		"academicPeriodId.gt": "Academic period ID is required",
		"teacherId.gt":        "Teacher ID must be greater than 0",
		"score.gte":           "Score cannot be negative",
		"maxScore.gt":         "Max score must be greater than zero",
	}
}

// Check implements validation.Checker.
func (c RegisterGradeCommand) Check(time.Time) []validation.FieldError {
	if c.Score > c.MaxScore {
		return []validation.FieldError{{Field: "score", Message: "Score cannot exceed max score"}}
	}
	return nil
}

// RegisterGradeHandler handles the RegisterGradeCommand.
type RegisterGradeHandler struct {
	store store.Store
	clock clock.Clock
}

// NewRegisterGradeHandler creates a new RegisterGradeHandler.
func NewRegisterGradeHandler(st store.Store, clk clock.Clock) *RegisterGradeHandler {
	return &RegisterGradeHandler{store: st, clock: clk}
}

// Handle executes the register grade command and returns the new id.
// Every referenced row must exist; a missing one yields a NotFound result.
func (h *RegisterGradeHandler) Handle(ctx context.Context, cmd RegisterGradeCommand) (result.Result[int64], error) {
	const op, prefix = "register_grade", "Error registering grade: "
	now := h.clock.Now()

	var g *grade.Grade
	_, err := h.store.Do(ctx, func(ctx context.Context, tx store.Repositories) ([]shared.Event, error) {
		if err := h.checkReferences(ctx, tx, cmd); err != nil {
			return nil, err
		}

		var (
			events []shared.Event
			err    error
		)
		g, events, err = grade.NewGrade(grade.NewGradeParams{
			Score:            cmd.Score,
			MaxScore:         cmd.MaxScore,
			StudentID:        cmd.StudentID,
			SubjectID:        cmd.SubjectID,
			AcademicPeriodID: cmd.AcademicPeriodID,
			TeacherID:        cmd.TeacherID,
			Comments:         cmd.Comments,
		}, now)
		if err != nil {
			return nil, err
		}

		if err := tx.Grades().Add(ctx, g); err != nil {
			return nil, err
		}
		return shared.BindEvents(events, g.ID), nil
	})
	if err != nil {
		return outcome[int64](op, prefix, err)
	}

	logger.FromContext(ctx).InfoContext(ctx, "grade registered",
		slog.Int64("grade_id", g.ID),
		logger.StudentID(g.StudentID),
		slog.Float64("percentage", g.Percentage()),
	)
	return result.Success(g.ID), nil
}

func (h *RegisterGradeHandler) checkReferences(ctx context.Context, tx store.Repositories, cmd RegisterGradeCommand) error {
	if _, err := tx.Students().GetByID(ctx, cmd.StudentID); err != nil {
		return err
	}
	if _, err := tx.Subjects().GetByID(ctx, cmd.SubjectID); err != nil {
		return err
	}
	if _, err := tx.AcademicPeriods().GetByID(ctx, cmd.AcademicPeriodID); err != nil {
		return err
	}
	if cmd.TeacherID != nil {
		if _, err := tx.Teachers().GetByID(ctx, *cmd.TeacherID); err != nil {
			return err
		}
	}
	return nil
}
