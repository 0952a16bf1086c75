package command

import (
	"context"
	"log/slog"

	"github.com/juju/clock"

	"github.com/asidocente/school-records/internal/application/result"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/internal/domain/subject"
	"github.com/asidocente/school-records/pkg/logger"
)

// CreateSubjectCommand adds a subject to a school's curriculum, optionally
// with the teachers who teach it.
type CreateSubjectCommand struct {
	Name        string  `json:"name" validate:"required,notblank,max=200"`
	Code        string  `json:"code" validate:"required,notblank,max=20"`
	SchoolID    int64   `json:"schoolId" validate:"gt=0"`
	Description string  `json:"description,omitempty" validate:"omitempty,max=500"`
	Credits     *int    `json:"credits,omitempty" validate:"omitempty,gte=0"`
	TeacherIDs  []int64 `json:"teacherIds,omitempty" validate:"omitempty,dive,gt=0"`
}

// ValidationMessages implements validation.Messenger.
func (CreateSubjectCommand) ValidationMessages() map[string]string {
	return map[string]string{
		"name.required": "Subject name is required",
		"code.required": "Subject code is required",
		"credits.gte":   "Credits cannot be negative",
	}
}

// CreateSubjectHandler handles the CreateSubjectCommand.
type CreateSubjectHandler struct {
	store store.Store
	clock clock.Clock
}

// NewCreateSubjectHandler creates a new CreateSubjectHandler.
func NewCreateSubjectHandler(st store.Store, clk clock.Clock) *CreateSubjectHandler {
	return &CreateSubjectHandler{store: st, clock: clk}
}

// Handle creates the subject. Teachers from another school are rejected.
func (h *CreateSubjectHandler) Handle(ctx context.Context, cmd CreateSubjectCommand) (result.Result[int64], error) {
	const op, prefix = "create_subject", "Error creating subject: "
	now := h.clock.Now()

	var id int64
	_, err := h.store.Do(ctx, func(ctx context.Context, tx store.Repositories) ([]shared.Event, error) {
		if _, err := activeSchool(ctx, tx, cmd.SchoolID); err != nil {
			return nil, err
		}
		s, err := subject.NewSubject(subject.NewSubjectParams{
			Name:        cmd.Name,
			Code:        cmd.Code,
			SchoolID:    cmd.SchoolID,
			Description: cmd.Description,
			Credits:     cmd.Credits,
		}, now)
		if err != nil {
			return nil, err
		}
		if err := tx.Subjects().Add(ctx, s); err != nil {
			return nil, err
		}

		teacherIDs := uniqueIDs(cmd.TeacherIDs)
		if len(teacherIDs) > 0 {
			teachers, err := tx.Teachers().GetByIDs(ctx, teacherIDs)
			if err != nil {
				return nil, err
			}
			for _, tid := range teacherIDs {
				t, ok := teachers[tid]
				if !ok {
					return nil, notFoundError("subject", "Teacher")
				}
				if t.SchoolID != cmd.SchoolID {
					return nil, ruleError("subject", "AssignTeacher", "Teacher belongs to another school")
				}
				if err := tx.Subjects().AssignTeacher(ctx, s.ID, tid); err != nil {
					return nil, err
				}
			}
		}

		id = s.ID
		return nil, nil
	})
	if err != nil {
		return outcome[int64](op, prefix, err)
	}

	logger.FromContext(ctx).InfoContext(ctx, "subject created",
		slog.Int64("subject_id", id),
		slog.Int("teachers", len(cmd.TeacherIDs)),
	)
	return result.Success(id), nil
}
