package command

import (
	"context"
	"log/slog"

	"github.com/juju/clock"

	"github.com/asidocente/school-records/internal/application/result"
	"github.com/asidocente/school-records/internal/domain/section"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/pkg/logger"
)

// CreateSectionCommand opens a class group.
type CreateSectionCommand struct {
	Name              string `json:"name" validate:"required,notblank,max=50"`
	GradeLevel        int    `json:"gradeLevel" validate:"gte=0,lte=15"`
	SchoolYear        int    `json:"schoolYear" validate:"gte=2000,lte=2100"`
	SchoolID          int64  `json:"schoolId" validate:"gt=0"`
	Capacity          *int   `json:"capacity,omitempty" validate:"omitempty,gt=0"`
	HomeRoomTeacherID *int64 `json:"homeRoomTeacherId,omitempty" validate:"omitempty,gt=0"`
}

// ValidationMessages implements validation.Messenger.
func (CreateSectionCommand) ValidationMessages() map[string]string {
	return map[string]string{
		"name.required":  "Section name is required",
		"gradeLevel.gte": "Invalid grade level",
		"gradeLevel.lte": "Invalid grade level",
		"schoolYear.gte": "Invalid school year",
		"schoolYear.lte": "Invalid school year",
		"capacity.gt":    "Capacity must be greater than zero",
	}
}

// CreateSectionHandler handles the CreateSectionCommand.
type CreateSectionHandler struct {
	store store.Store
	clock clock.Clock
}

// NewCreateSectionHandler creates a new CreateSectionHandler.
func NewCreateSectionHandler(st store.Store, clk clock.Clock) *CreateSectionHandler {
	return &CreateSectionHandler{store: st, clock: clk}
}

// Handle creates the section and assigns the homeroom teacher when given.
func (h *CreateSectionHandler) Handle(ctx context.Context, cmd CreateSectionCommand) (result.Result[int64], error) {
	const op, prefix = "create_section", "Error creating section: "
	now := h.clock.Now()

	var id int64
	_, err := h.store.Do(ctx, func(ctx context.Context, tx store.Repositories) ([]shared.Event, error) {
		if _, err := activeSchool(ctx, tx, cmd.SchoolID); err != nil {
			return nil, err
		}
		s, err := section.NewSection(section.NewSectionParams{
			Name:       cmd.Name,
			GradeLevel: shared.GradeLevel(cmd.GradeLevel),
			SchoolYear: cmd.SchoolYear,
			SchoolID:   cmd.SchoolID,
			Capacity:   cmd.Capacity,
		}, now)
		if err != nil {
			return nil, err
		}

		if cmd.HomeRoomTeacherID != nil {
			t, err := tx.Teachers().GetByID(ctx, *cmd.HomeRoomTeacherID)
			if err != nil {
				return nil, err
			}
			if t.SchoolID != cmd.SchoolID {
				return nil, ruleError("section", "AssignHomeRoomTeacher", "Teacher belongs to another school")
			}
			if err := s.AssignHomeRoomTeacher(t.ID, now); err != nil {
				return nil, err
			}
		}

		if err := tx.Sections().Add(ctx, s); err != nil {
			return nil, err
		}
		id = s.ID
		return nil, nil
	})
	if err != nil {
		return outcome[int64](op, prefix, err)
	}

	logger.FromContext(ctx).InfoContext(ctx, "section created", slog.Int64("section_id", id))
	return result.Success(id), nil
}
