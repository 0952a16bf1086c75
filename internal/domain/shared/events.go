package shared

import (
	"context"
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each one marks a state transition other parts of the
// system may react to once it has been persisted.
const (
	EventStudentCreated     EventType = "student.created"
	EventGradeRegistered    EventType = "grade.registered"
	EventAttendanceRecorded EventType = "attendance.recorded"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	// It is zero until the aggregate has been assigned a storage identity.
	AggregateID() int64

	// WithAggregateID returns a copy of the event bound to the given identity.
	WithAggregateID(id int64) Event

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId int64     `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() int64 {
	return e.AggregateId
}

// NewBaseEvent creates a new base event stamped with the given instant.
func NewBaseEvent(eventType EventType, occurredAt time.Time) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		Timestamp: occurredAt.UTC(),
		Version:   1,
	}
}

// BindEvents binds every pending event to the aggregate identity assigned
// by storage.
func BindEvents(events []Event, id int64) []Event {
	if len(events) == 0 {
		return nil
	}
	bound := make([]Event, 0, len(events))
	for _, e := range events {
		bound = append(bound, e.WithAggregateID(id))
	}
	return bound
}

// ═══════════════════════════════════════════════════════════════════════════
// Student Events
// ═══════════════════════════════════════════════════════════════════════════

// StudentCreatedEvent is emitted when a student is enrolled.
type StudentCreatedEvent struct {
	BaseEvent
	SchoolID       int64  `json:"school_id"`
	Identification string `json:"identification"`
	FullName       string `json:"full_name"`
	Email          string `json:"email,omitempty"`
}

// WithAggregateID implements Event interface.
func (e StudentCreatedEvent) WithAggregateID(id int64) Event {
	e.AggregateId = id
	return e
}

// Payload implements Event interface.
func (e StudentCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":     e.AggregateId,
		"school_id":      e.SchoolID,
		"identification": e.Identification,
		"full_name":      e.FullName,
		"email":          e.Email,
	}
}

// NewStudentCreatedEvent creates a new StudentCreatedEvent.
func NewStudentCreatedEvent(schoolID int64, identification, fullName, email string, at time.Time) StudentCreatedEvent {
	return StudentCreatedEvent{
		BaseEvent:      NewBaseEvent(EventStudentCreated, at),
		SchoolID:       schoolID,
		Identification: identification,
		FullName:       fullName,
		Email:          email,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Grade Events
// ═══════════════════════════════════════════════════════════════════════════

// GradeRegisteredEvent is emitted when a grade is recorded for a student.
type GradeRegisteredEvent struct {
	BaseEvent
	StudentID        int64   `json:"student_id"`
	SubjectID        int64   `json:"subject_id"`
	AcademicPeriodID int64   `json:"academic_period_id"`
	Percentage       float64 `json:"percentage"`
	LetterGrade      string  `json:"letter_grade"`
	Passing          bool    `json:"passing"`
}

// WithAggregateID implements Event interface.
func (e GradeRegisteredEvent) WithAggregateID(id int64) Event {
	e.AggregateId = id
	return e
}

// Payload implements Event interface.
func (e GradeRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"grade_id":           e.AggregateId,
		"student_id":         e.StudentID,
		"subject_id":         e.SubjectID,
		"academic_period_id": e.AcademicPeriodID,
		"percentage":         e.Percentage,
		"letter_grade":       e.LetterGrade,
		"passing":            e.Passing,
	}
}

// NewGradeRegisteredEvent creates a new GradeRegisteredEvent.
func NewGradeRegisteredEvent(studentID, subjectID, periodID int64, percentage float64, letter string, passing bool, at time.Time) GradeRegisteredEvent {
	return GradeRegisteredEvent{
		BaseEvent:        NewBaseEvent(EventGradeRegistered, at),
		StudentID:        studentID,
		SubjectID:        subjectID,
		AcademicPeriodID: periodID,
		Percentage:       percentage,
		LetterGrade:      letter,
		Passing:          passing,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Attendance Events
// ═══════════════════════════════════════════════════════════════════════════

// AttendanceRecordedEvent is emitted when a daily attendance mark is taken.
type AttendanceRecordedEvent struct {
	BaseEvent
	StudentID int64     `json:"student_id"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	Present   bool      `json:"present"`
	Excused   bool      `json:"excused"`
}

// WithAggregateID implements Event interface.
func (e AttendanceRecordedEvent) WithAggregateID(id int64) Event {
	e.AggregateId = id
	return e
}

// Payload implements Event interface.
func (e AttendanceRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"attendance_id": e.AggregateId,
		"student_id":    e.StudentID,
		"date":          e.Date.Format(time.DateOnly),
		"status":        e.Status,
		"present":       e.Present,
		"excused":       e.Excused,
	}
}

// NewAttendanceRecordedEvent creates a new AttendanceRecordedEvent.
func NewAttendanceRecordedEvent(studentID int64, date time.Time, status string, present, excused bool, at time.Time) AttendanceRecordedEvent {
	return AttendanceRecordedEvent{
		BaseEvent: NewBaseEvent(EventAttendanceRecorded, at),
		StudentID: studentID,
		Date:      date,
		Status:    status,
		Present:   present,
		Excused:   excused,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID          string          `json:"id"`
	Type        EventType       `json:"type"`
	AggregateID int64           `json:"aggregate_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Payload     json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(ctx context.Context, event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish delivers committed events to subscribers.
	Publish(ctx context.Context, events ...Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
