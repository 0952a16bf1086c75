package command

import (
	"context"
	"log/slog"

	"github.com/juju/clock"

	"github.com/asidocente/school-records/internal/application/result"
	"github.com/asidocente/school-records/internal/domain/parent"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE PARENT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// CreateParentCommand contains the data to register a parent or guardian.
type CreateParentCommand struct {
	FirstName        string  `json:"firstName" validate:"required,notblank,max=100"`
	LastName         string  `json:"lastName" validate:"required,notblank,max=100"`
	Identification   string  `json:"identification" validate:"required,notblank,max=20"`
	Email            string  `json:"email" validate:"required,email,max=100"`
	Phone            string  `json:"phone" validate:"required,local_phone"`
	AlternatePhone   string  `json:"alternatePhone,omitempty" validate:"omitempty,local_phone"`
	Occupation       string  `json:"occupation,omitempty" validate:"omitempty,max=100"`
	Relationship     string  `json:"relationship" validate:"required,notblank,max=50"`
	IsPrimaryContact bool    `json:"isPrimaryContact"`
	StudentIDs       []int64 `json:"studentIds,omitempty" validate:"omitempty,dive,gt=0"`
}

// ValidationMessages implements validation.Messenger.
func (CreateParentCommand) ValidationMessages() map[string]string {
	return map[string]string{
		"phone.local_phone":          "Phone number must be 8 digits",
		"alternatePhone.local_phone": "Alternate phone number must be 8 digits",
	}
}

// CreateParentHandler handles the CreateParentCommand.
type CreateParentHandler struct {
	store store.Store
	clock clock.Clock
}

// NewCreateParentHandler creates a new CreateParentHandler.
func NewCreateParentHandler(st store.Store, clk clock.Clock) *CreateParentHandler {
	return &CreateParentHandler{store: st, clock: clk}
}

// Handle executes the create parent command and returns the new id.
func (h *CreateParentHandler) Handle(ctx context.Context, cmd CreateParentCommand) (result.Result[int64], error) {
	const op, prefix = "create_parent", "Error creating parent: "
	now := h.clock.Now()

	email, err := normalizeEmail(cmd.Email)
	if err != nil {
		return outcome[int64](op, prefix, err)
	}
	phone, err := normalizePhone(cmd.Phone)
	if err != nil {
		return outcome[int64](op, prefix, err)
	}
	altPhone, err := normalizePhone(cmd.AlternatePhone)
	if err != nil {
		return outcome[int64](op, prefix, err)
	}

	var id int64
	_, err = h.store.Do(ctx, func(ctx context.Context, tx store.Repositories) ([]shared.Event, error) {
		taken, err := tx.Parents().ExistsByIdentification(ctx, cmd.Identification)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, parent.ErrDuplicateIdentification
		}

		p, err := parent.NewParent(parent.NewParentParams{
			FirstName:        cmd.FirstName,
			LastName:         cmd.LastName,
			Identification:   cmd.Identification,
			Email:            email,
			Phone:            phone,
			Relationship:     cmd.Relationship,
			IsPrimaryContact: cmd.IsPrimaryContact,
		}, now)
		if err != nil {
			return nil, err
		}

		if altPhone != "" || present(cmd.Occupation) {
			if err := p.UpdateInfo(p.FirstName, p.LastName, p.Email, p.Phone, altPhone, cmd.Occupation, now); err != nil {
				return nil, err
			}
		}

		if err := tx.Parents().Add(ctx, p); err != nil {
			return nil, err
		}

		if studentIDs := uniqueIDs(cmd.StudentIDs); len(studentIDs) > 0 {
			students, err := tx.Students().GetByIDs(ctx, studentIDs)
			if err != nil {
				return nil, err
			}
			for _, sid := range studentIDs {
				s, ok := students[sid]
				if !ok || !s.IsActive {
					continue
				}
				if err := tx.Students().LinkParents(ctx, sid, []int64{p.ID}); err != nil {
					return nil, err
				}
			}
		}

		id = p.ID
		return nil, nil
	})
	if err != nil {
		return outcome[int64](op, prefix, err)
	}

	logger.FromContext(ctx).InfoContext(ctx, "parent created",
		slog.Int64("parent_id", id),
		slog.Int("linked_students", len(cmd.StudentIDs)),
	)
	return result.Success(id), nil
}
