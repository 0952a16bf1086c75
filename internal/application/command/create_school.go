package command

import (
	"context"
	"log/slog"

	"github.com/juju/clock"

	"github.com/asidocente/school-records/internal/application/result"
	"github.com/asidocente/school-records/internal/domain/school"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/pkg/logger"
)

// CreateSchoolCommand registers a school.
type CreateSchoolCommand struct {
	Name     string `json:"name" validate:"required,notblank,max=200"`
	Code     string `json:"code" validate:"required,notblank,max=20"`
	Director string `json:"director,omitempty" validate:"omitempty,max=200"`
	Email    string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,local_phone"`

	Province        string `json:"province,omitempty" validate:"omitempty,max=100"`
	Canton          string `json:"canton,omitempty" validate:"omitempty,max=100"`
	District        string `json:"district,omitempty" validate:"omitempty,max=100"`
	DetailedAddress string `json:"detailedAddress,omitempty" validate:"omitempty,max=500"`
}

// ValidationMessages implements validation.Messenger.
func (CreateSchoolCommand) ValidationMessages() map[string]string {
	return map[string]string{
		"name.required": "School name is required",
		"code.required": "School code is required",
	}
}

// CreateSchoolHandler handles the CreateSchoolCommand.
type CreateSchoolHandler struct {
	store store.Store
	clock clock.Clock
}

// NewCreateSchoolHandler creates a new CreateSchoolHandler.
func NewCreateSchoolHandler(st store.Store, clk clock.Clock) *CreateSchoolHandler {
	return &CreateSchoolHandler{store: st, clock: clk}
}

// Handle creates the school. A taken code yields a Failure.
func (h *CreateSchoolHandler) Handle(ctx context.Context, cmd CreateSchoolCommand) (result.Result[int64], error) {
	const op, prefix = "create_school", "Error creating school: "
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
		s, err := school.NewSchool(cmd.Name, cmd.Code, now)
		if err != nil {
			return nil, err
		}
		if present(cmd.Director) || email != "" || phone != "" {
			if err := s.UpdateInfo(s.Name, cmd.Director, email, phone, now); err != nil {
				return nil, err
			}
		}
		if present(cmd.Province) && present(cmd.Canton) && present(cmd.District) {
			if err := s.SetAddress(cmd.Province, cmd.Canton, cmd.District, cmd.DetailedAddress, now); err != nil {
				return nil, err
			}
		}
		if err := tx.Schools().Add(ctx, s); err != nil {
			return nil, err
		}
		id = s.ID
		return nil, nil
	})
	if err != nil {
		return outcome[int64](op, prefix, err)
	}

	logger.FromContext(ctx).InfoContext(ctx, "school created", slog.Int64("school_id", id))
	return result.Success(id), nil
}

// activeSchool loads a school and rejects inactive ones as missing.
func activeSchool(ctx context.Context, tx store.Repositories, id int64) (*school.School, error) {
	s, err := tx.Schools().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.IsActive {
		return nil, errSchoolUnavailable
	}
	return s, nil
}
