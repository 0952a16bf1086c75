// Package attendance holds the Attendance aggregate: one daily presence
// mark for a student.
package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asidocente/school-records/internal/domain/shared"
)

const domainName = "attendance"

// Status is the presence state recorded for a day.
type Status int

const (
	StatusPresent Status = iota
	StatusAbsent
	StatusLate
	StatusExcused
	StatusMedical
)

// IsValid checks if the status is a known value.
func (s Status) IsValid() bool {
	return s >= StatusPresent && s <= StatusMedical
}

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPresent:
		return "Present"
	case StatusAbsent:
		return "Absent"
	case StatusLate:
		return "Late"
	case StatusExcused:
		return "Excused"
	case StatusMedical:
		return "Medical"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// CountsAsPresent is true for Present and Late.
func (s Status) CountsAsPresent() bool {
	return s == StatusPresent || s == StatusLate
}

// CountsAsExcused is true for Excused and Medical.
func (s Status) CountsAsExcused() bool {
	return s == StatusExcused || s == StatusMedical
}

// Attendance is a daily presence record.
type Attendance struct {
	shared.Audit

	// Date is truncated to the day in UTC.
	Date   time.Time
	Status Status
	Notes  string

	// ArrivalTime is the offset from midnight, set for late arrivals.
	ArrivalTime *time.Duration

	StudentID int64
	TeacherID *int64
}

// NewAttendanceParams contains the inputs for recording attendance.
type NewAttendanceParams struct {
	Date        time.Time
	Status      Status
	StudentID   int64
	TeacherID   *int64
	Notes       string
	ArrivalTime *time.Duration
}

// NewAttendance validates the inputs and returns the record together with
// its pending AttendanceRecorded event.
func NewAttendance(params NewAttendanceParams, now time.Time) (*Attendance, []shared.Event, error) {
	const op = "NewAttendance"

	if params.StudentID <= 0 {
		return nil, nil, shared.RuleViolation(domainName, op, "Student is required")
	}
	if !params.Status.IsValid() {
		return nil, nil, shared.RuleViolation(domainName, op, "Invalid attendance status")
	}
	if params.Date.IsZero() {
		return nil, nil, shared.RuleViolation(domainName, op, "Attendance date is required")
	}
	if err := checkArrival(op, params.ArrivalTime); err != nil {
		return nil, nil, err
	}

	a := &Attendance{
		Audit:       shared.NewAudit(now),
		Date:        TruncateToDay(params.Date),
		Status:      params.Status,
		Notes:       strings.TrimSpace(params.Notes),
		ArrivalTime: params.ArrivalTime,
		StudentID:   params.StudentID,
		TeacherID:   params.TeacherID,
	}

	recorded := shared.NewAttendanceRecordedEvent(a.StudentID, a.Date, a.Status.String(),
		a.WasPresent(), a.IsExcused(), now)
	return a, []shared.Event{recorded}, nil
}

func checkArrival(op string, arrival *time.Duration) error {
	if arrival != nil && (*arrival < 0 || *arrival >= 24*time.Hour) {
		return shared.RuleViolation(domainName, op, "Arrival time must be within the day")
	}
	return nil
}

// TruncateToDay drops the time of day, keeping the calendar date.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// UpdateStatus changes the status and notes.
func (a *Attendance) UpdateStatus(status Status, notes string, now time.Time) error {
	if !status.IsValid() {
		return shared.RuleViolation(domainName, "UpdateStatus", "Invalid attendance status")
	}
	a.Status = status
	a.Notes = strings.TrimSpace(notes)
	a.Touch(now)
	return nil
}

// SetArrivalTime records when the student arrived.
func (a *Attendance) SetArrivalTime(arrival time.Duration, now time.Time) error {
	if err := checkArrival("SetArrivalTime", &arrival); err != nil {
		return err
	}
	a.ArrivalTime = &arrival
	a.Touch(now)
	return nil
}

// WasPresent is true when the status is Present or Late.
func (a *Attendance) WasPresent() bool {
	return a.Status.CountsAsPresent()
}

// IsExcused is true when the status is Excused or Medical.
func (a *Attendance) IsExcused() bool {
	return a.Status.CountsAsExcused()
}

// Repository defines storage operations for attendance records.
type Repository interface {
	Add(ctx context.Context, a *Attendance) error
	GetByID(ctx context.Context, id int64) (*Attendance, error)
}

// ErrAttendanceNotFound is returned when an attendance lookup misses.
var ErrAttendanceNotFound = shared.NotFound(domainName, "Attendance")
