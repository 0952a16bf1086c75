package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/juju/clock"

	"github.com/asidocente/school-records/internal/application/result"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/internal/domain/student"
	"github.com/asidocente/school-records/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE STUDENT COMMAND
// Enrolls a student in an active school, optionally with an address and
// links to existing parents.
// ══════════════════════════════════════════════════════════════════════════════

// CreateStudentCommand contains the data to enroll a student.
type CreateStudentCommand struct {
	FirstName      string    `json:"firstName" validate:"required,notblank,max=100"`
	LastName       string    `json:"lastName" validate:"required,notblank,max=100"`
	Identification string    `json:"identification" validate:"required,notblank,max=20"`
	GradeLevel     int       `json:"gradeLevel" validate:"gte=0,lte=15"`
	DateOfBirth    time.Time `json:"dateOfBirth" validate:"required,past_date,max_age=30"`
	SchoolID       int64     `json:"schoolId" validate:"gt=0"`

	// Optional contact details.
	Email string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Phone string `json:"phone,omitempty" validate:"omitempty,local_phone"`

	// Address is applied only when province, canton and district are all set.
	Province        string `json:"province,omitempty" validate:"omitempty,max=100"`
	Canton          string `json:"canton,omitempty" validate:"omitempty,max=100"`
	District        string `json:"district,omitempty" validate:"omitempty,max=100"`
	DetailedAddress string `json:"detailedAddress,omitempty" validate:"omitempty,max=500"`

	// ParentIDs lists parents to link; inactive or unknown ones are skipped.
	ParentIDs []int64 `json:"parentIds,omitempty" validate:"omitempty,dive,gt=0"`
}

// ValidationMessages implements validation.Messenger.
func (CreateStudentCommand) ValidationMessages() map[string]string {
	return map[string]string{
		"gradeLevel.gte":      "Invalid grade level",
		"gradeLevel.lte":      "Invalid grade level",
		"dateOfBirth.max_age": "Student must be younger than 30 years",
		"phone.local_phone":   "Phone number must be 8 digits",
	}
}

func (c CreateStudentCommand) hasAddress() bool {
	return present(c.Province) && present(c.Canton) && present(c.District)
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

var errSchoolUnavailable = shared.NewDomainError("student", "Create", shared.ErrNotFound,
	"School not found or inactive")

// CreateStudentHandler handles the CreateStudentCommand.
type CreateStudentHandler struct {
	store store.Store
	clock clock.Clock
}

// NewCreateStudentHandler creates a new CreateStudentHandler.
func NewCreateStudentHandler(st store.Store, clk clock.Clock) *CreateStudentHandler {
	return &CreateStudentHandler{store: st, clock: clk}
}

// Handle executes the create student command and returns the new id.
func (h *CreateStudentHandler) Handle(ctx context.Context, cmd CreateStudentCommand) (result.Result[int64], error) {
	now := h.clock.Now()

	email, err := normalizeEmail(cmd.Email)
	if err != nil {
		return outcome[int64]("create_student", "Error creating student: ", err)
	}
	phone, err := normalizePhone(cmd.Phone)
	if err != nil {
		return outcome[int64]("create_student", "Error creating student: ", err)
	}

	var id int64
	_, err = h.store.Do(ctx, func(ctx context.Context, tx store.Repositories) ([]shared.Event, error) {
		school, err := tx.Schools().GetByID(ctx, cmd.SchoolID)
		if shared.IsNotFound(err) || (err == nil && !school.IsActive) {
			return nil, errSchoolUnavailable
		}
		if err != nil {
			return nil, err
		}

		taken, err := tx.Students().ExistsByIdentification(ctx, cmd.Identification)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, student.ErrDuplicateIdentification
		}

		s, events, err := student.NewStudent(student.NewStudentParams{
			FirstName:      cmd.FirstName,
			LastName:       cmd.LastName,
			Identification: cmd.Identification,
			GradeLevel:     shared.GradeLevel(cmd.GradeLevel),
			DateOfBirth:    cmd.DateOfBirth,
			SchoolID:       cmd.SchoolID,
			Email:          email,
			Phone:          phone,
		}, now)
		if err != nil {
			return nil, err
		}

		if cmd.hasAddress() {
			if err := s.SetAddress(cmd.Province, cmd.Canton, cmd.District, cmd.DetailedAddress, now); err != nil {
				return nil, err
			}
		}

		if err := tx.Students().Add(ctx, s); err != nil {
			return nil, err
		}

		if parentIDs := uniqueIDs(cmd.ParentIDs); len(parentIDs) > 0 {
			parents, err := tx.Parents().GetByIDs(ctx, parentIDs)
			if err != nil {
				return nil, err
			}
			active := make([]int64, 0, len(parentIDs))
			for _, pid := range parentIDs {
				if p, ok := parents[pid]; ok && p.IsActive {
					active = append(active, pid)
				}
			}
			if err := tx.Students().LinkParents(ctx, s.ID, active); err != nil {
				return nil, err
			}
		}

		id = s.ID
		return shared.BindEvents(events, s.ID), nil
	})
	if err != nil {
		return outcome[int64]("create_student", "Error creating student: ", err)
	}

	logger.FromContext(ctx).InfoContext(ctx, "student created",
		logger.StudentID(id),
		slog.Int64("school_id", cmd.SchoolID),
	)
	return result.Success(id), nil
}
