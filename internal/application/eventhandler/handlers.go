// Package eventhandler reacts to committed domain events with side
// effects: welcome emails and notifications to parents. Delivery is
// best-effort; a failed send is logged and never reaches the command that
// raised the event.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/asidocente/school-records/internal/domain/attendance"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/pkg/logger"
)

// EmailSender sends a single email.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// NotificationSender delivers an in-app notification to several users.
type NotificationSender interface {
	SendBulkNotification(ctx context.Context, userIDs []string, title, message string) error
}

// Handlers holds the event consumers and their dependencies.
type Handlers struct {
	repos    store.Repositories
	email    EmailSender
	notifier NotificationSender
	logger   *slog.Logger
}

// New creates the consumers.
func New(repos store.Repositories, email EmailSender, notifier NotificationSender, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{
		repos:    repos,
		email:    email,
		notifier: notifier,
		logger:   log.With(logger.Component("event_handlers")),
	}
}

// Register subscribes every consumer to its event type.
func (h *Handlers) Register(sub shared.EventSubscriber) error {
	subs := map[shared.EventType]shared.EventHandler{
		shared.EventStudentCreated:     h.OnStudentCreated,
		shared.EventGradeRegistered:    h.OnGradeRegistered,
		shared.EventAttendanceRecorded: h.OnAttendanceRecorded,
	}
	for t, fn := range subs {
		if err := sub.Subscribe(t, fn); err != nil {
			return fmt.Errorf("subscribe %s: %w", t, err)
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT CREATED
// ══════════════════════════════════════════════════════════════════════════════

// OnStudentCreated sends a welcome email when the student has an address.
func (h *Handlers) OnStudentCreated(ctx context.Context, event shared.Event) error {
	e, ok := event.(shared.StudentCreatedEvent)
	if !ok {
		return fmt.Errorf("on_student_created: unexpected %T", event)
	}
	if e.Email == "" {
		return nil
	}

	body := fmt.Sprintf("Welcome %s! Your student record has been created.", e.FullName)
	if err := h.email.SendEmail(ctx, e.Email, "Welcome", body); err != nil {
		h.logger.WarnContext(ctx, "welcome email failed", logger.StudentID(e.AggregateID()), logger.Err(err))
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADE REGISTERED
// ══════════════════════════════════════════════════════════════════════════════

// OnGradeRegistered notifies the student's parents about a failing grade.
func (h *Handlers) OnGradeRegistered(ctx context.Context, event shared.Event) error {
	e, ok := event.(shared.GradeRegisteredEvent)
	if !ok {
		return fmt.Errorf("on_grade_registered: unexpected %T", event)
	}
	if e.Passing {
		return nil
	}

	s, err := h.repos.Students().GetByID(ctx, e.StudentID)
	if err != nil {
		return fmt.Errorf("on_grade_registered: load student: %w", err)
	}
	subjectName := "a subject"
	if sub, err := h.repos.Subjects().GetByID(ctx, e.SubjectID); err == nil {
		subjectName = sub.Name
	}

	msg := fmt.Sprintf("%s received a failing grade in %s: %s (%.2f%%).",
		s.FullName(), subjectName, e.LetterGrade, e.Percentage)
	return h.notifyParents(ctx, e.StudentID, "Failing grade", msg)
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE RECORDED
// ══════════════════════════════════════════════════════════════════════════════

// OnAttendanceRecorded notifies the student's parents of an absence or a
// late arrival.
func (h *Handlers) OnAttendanceRecorded(ctx context.Context, event shared.Event) error {
	e, ok := event.(shared.AttendanceRecordedEvent)
	if !ok {
		return fmt.Errorf("on_attendance_recorded: unexpected %T", event)
	}

	var title string
	switch e.Status {
	case attendance.StatusAbsent.String():
		title = "Absence recorded"
	case attendance.StatusLate.String():
		title = "Late arrival recorded"
	default:
		return nil
	}

	s, err := h.repos.Students().GetByID(ctx, e.StudentID)
	if err != nil {
		return fmt.Errorf("on_attendance_recorded: load student: %w", err)
	}

	msg := fmt.Sprintf("%s was marked %s on %s.", s.FullName(), e.Status, e.Date.Format("2006-01-02"))
	return h.notifyParents(ctx, e.StudentID, title, msg)
}

// notifyParents sends one bulk notification to every active parent linked
// to the student. Send failures are logged only.
func (h *Handlers) notifyParents(ctx context.Context, studentID int64, title, message string) error {
	ids, err := h.repos.Students().ParentIDs(ctx, studentID)
	if err != nil {
		return fmt.Errorf("load parent ids: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	parents, err := h.repos.Parents().GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load parents: %w", err)
	}

	recipients := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := parents[id]; ok && p.IsActive {
			recipients = append(recipients, "parent:"+strconv.FormatInt(id, 10))
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	if err := h.notifier.SendBulkNotification(ctx, recipients, title, message); err != nil {
		h.logger.WarnContext(ctx, "parent notification failed",
			logger.StudentID(studentID), slog.Int("recipients", len(recipients)), logger.Err(err))
	}
	return nil
}
