package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/juju/clock"

	"github.com/asidocente/school-records/internal/application/result"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/internal/domain/teacher"
	"github.com/asidocente/school-records/pkg/logger"
)

// CreateTeacherCommand hires a teacher into a school.
type CreateTeacherCommand struct {
	FirstName      string    `json:"firstName" validate:"required,notblank,max=100"`
	LastName       string    `json:"lastName" validate:"required,notblank,max=100"`
	Identification string    `json:"identification" validate:"required,notblank,max=20"`
	Email          string    `json:"email" validate:"required,email,max=100"`
	Phone          string    `json:"phone" validate:"required,local_phone"`
	SchoolID       int64     `json:"schoolId" validate:"gt=0"`
	Specialization string    `json:"specialization,omitempty" validate:"omitempty,max=100"`
	HireDate       time.Time `json:"hireDate,omitempty" validate:"omitempty,not_future"`
}

// CreateTeacherHandler handles the CreateTeacherCommand.
type CreateTeacherHandler struct {
	store store.Store
	clock clock.Clock
}

// NewCreateTeacherHandler creates a new CreateTeacherHandler.
func NewCreateTeacherHandler(st store.Store, clk clock.Clock) *CreateTeacherHandler {
	return &CreateTeacherHandler{store: st, clock: clk}
}

// Handle creates the teacher. The school must exist and be active.
func (h *CreateTeacherHandler) Handle(ctx context.Context, cmd CreateTeacherCommand) (result.Result[int64], error) {
	const op, prefix = "create_teacher", "Error creating teacher: "
	now := h.clock.Now()

	email, err := normalizeEmail(cmd.Email)
	if err != nil {
		return outcome[int64](op, prefix, err)
	}
	phone, err := normalizePhone(cmd.Phone)
	if err != nil {
		return outcome[int64](op, prefix, err)
	}

	var id int64
	_, err = h.store.Do(ctx, func(ctx context.Context, tx store.Repositories) ([]shared.Event, error) {
		if _, err := activeSchool(ctx, tx, cmd.SchoolID); err != nil {
			return nil, err
		}
		t, err := teacher.NewTeacher(teacher.NewTeacherParams{
			FirstName:      cmd.FirstName,
			LastName:       cmd.LastName,
			Identification: cmd.Identification,
			Email:          email,
			Phone:          phone,
			SchoolID:       cmd.SchoolID,
			Specialization: cmd.Specialization,
			HireDate:       cmd.HireDate,
		}, now)
		if err != nil {
			return nil, err
		}
		if err := tx.Teachers().Add(ctx, t); err != nil {
			return nil, err
		}
		id = t.ID
		return nil, nil
	})
	if err != nil {
		return outcome[int64](op, prefix, err)
	}

	logger.FromContext(ctx).InfoContext(ctx, "teacher created", slog.Int64("teacher_id", id))
	return result.Success(id), nil
}
