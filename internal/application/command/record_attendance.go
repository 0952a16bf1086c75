package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/juju/clock"

	"github.com/asidocente/school-records/internal/application/result"
	"github.com/asidocente/school-records/internal/application/validation"
	"github.com/asidocente/school-records/internal/domain/attendance"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ATTENDANCE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RecordAttendanceCommand records one day of attendance for a student.
type RecordAttendanceCommand struct {
	StudentID int64     `json:"studentId" validate:"gt=0"`
	TeacherID *int64    `json:"teacherId,omitempty" validate:"omitempty,gt=0"`
	Date      time.Time `json:"date" validate:"required,not_future"`
	Status    int       `json:"status" validate:"gte=0,lte=4"`
	Notes     string    `json:"notes,omitempty" validate:"omitempty,max=500"`

	// ArrivalTime is "HH:MM", typically given for late arrivals.
	ArrivalTime string `json:"arrivalTime,omitempty" validate:"omitempty,clock_time"`
}

// ValidationMessages implements validation.Messenger.
func (RecordAttendanceCommand) ValidationMessages() map[string]string {
	return map[string]string{
		"studentId.gt":           "Student ID is required",
		"teacherId.gt":           "Teacher ID must be greater than 0",
		"date.required":          "Attendance date is required",
		"date.not_future":        "Attendance date cannot be in the future",
		"status.gte":             "Invalid attendance status",
		"status.lte":             "Invalid attendance status",
		"arrivalTime.clock_time": "Arrival time must use the HH:MM format",
	}
}

// RecordAttendanceHandler handles the RecordAttendanceCommand.
type RecordAttendanceHandler struct {
	store store.Store
	clock clock.Clock
}

// NewRecordAttendanceHandler creates a new RecordAttendanceHandler.
func NewRecordAttendanceHandler(st store.Store, clk clock.Clock) *RecordAttendanceHandler {
	return &RecordAttendanceHandler{store: st, clock: clk}
}

// Handle executes the record attendance command and returns the new id.
func (h *RecordAttendanceHandler) Handle(ctx context.Context, cmd RecordAttendanceCommand) (result.Result[int64], error) {
	const op, prefix = "record_attendance", "Error recording attendance: "
	now := h.clock.Now()

	var arrival *time.Duration
	if present(cmd.ArrivalTime) {
		d, err := validation.ParseClockTime(cmd.ArrivalTime)
		if err != nil {
			return result.Failure[int64](prefix + "Arrival time must use the HH:MM format"), nil
		}
		arrival = &d
	}

	var a *attendance.Attendance
	_, err := h.store.Do(ctx, func(ctx context.Context, tx store.Repositories) ([]shared.Event, error) {
		if _, err := tx.Students().GetByID(ctx, cmd.StudentID); err != nil {
			return nil, err
		}
		if cmd.TeacherID != nil {
			if _, err := tx.Teachers().GetByID(ctx, *cmd.TeacherID); err != nil {
				return nil, err
			}
		}

		var (
			events []shared.Event
			err    error
		)
		a, events, err = attendance.NewAttendance(attendance.NewAttendanceParams{
			Date:        cmd.Date,
			Status:      attendance.Status(cmd.Status),
			StudentID:   cmd.StudentID,
			TeacherID:   cmd.TeacherID,
			Notes:       cmd.Notes,
			ArrivalTime: arrival,
		}, now)
		if err != nil {
			return nil, err
		}

		if err := tx.Attendances().Add(ctx, a); err != nil {
			return nil, err
		}
		return shared.BindEvents(events, a.ID), nil
	})
	if err != nil {
		return outcome[int64](op, prefix, err)
	}

	logger.FromContext(ctx).InfoContext(ctx, "attendance recorded",
		slog.Int64("attendance_id", a.ID),
		logger.StudentID(a.StudentID),
		slog.String("status", a.Status.String()),
	)
	return result.Success(a.ID), nil
}
