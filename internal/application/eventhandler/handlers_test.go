package eventhandler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/asidocente/school-records/internal/domain/parent"
	"github.com/asidocente/school-records/internal/domain/school"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/internal/domain/student"
	"github.com/asidocente/school-records/internal/infrastructure/persistence/memory"
	"github.com/asidocente/school-records/pkg/logger"
)

var now = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type mockEmail struct{ mock.Mock }

func (m *mockEmail) SendEmail(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) SendBulkNotification(ctx context.Context, userIDs []string, title, message string) error {
	return m.Called(ctx, userIDs, title, message).Error(0)
}

// seed creates one student with an active and an inactive parent.
func seed(t *testing.T) (*memory.Store, int64) {
	t.Helper()
	st := memory.New(nil, logger.Discard())

	var studentID int64
	_, err := st.Do(context.Background(), func(ctx context.Context, tx store.Repositories) ([]shared.Event, error) {
		sch, _ := school.NewSchool("Escuela", "E1", now)
		if err := tx.Schools().Add(ctx, sch); err != nil {
			return nil, err
		}
		s, _, err := student.NewStudent(student.NewStudentParams{
			FirstName: "Ana", LastName: "Mora", Identification: "1-1111-1111",
			GradeLevel: shared.GradeQuinto, DateOfBirth: now.AddDate(-10, 0, 0), SchoolID: sch.ID,
		}, now)
		require.NoError(t, err)
		if err := tx.Students().Add(ctx, s); err != nil {
			return nil, err
		}

		var ids []int64
		for i, ident := range []string{"2-2222-2222", "3-3333-3333"} {
			p, err := parent.NewParent(parent.NewParentParams{
				FirstName: "Luis", LastName: "Mora", Identification: ident,
				Email: "luis@example.com", Phone: "88887777", Relationship: "Father",
			}, now)
			require.NoError(t, err)
			if i == 1 {
				p.Deactivate(now)
			}
			if err := tx.Parents().Add(ctx, p); err != nil {
				return nil, err
			}
			ids = append(ids, p.ID)
		}
		studentID = s.ID
		return nil, tx.Students().LinkParents(ctx, s.ID, ids)
	})
	require.NoError(t, err)
	return st, studentID
}

func TestOnStudentCreated_SendsWelcomeEmail(t *testing.T) {
	email := &mockEmail{}
	email.On("SendEmail", mock.Anything, "ana@example.com", "Welcome", mock.MatchedBy(func(body string) bool {
		return assert.Contains(t, body, "Ana Mora")
	})).Return(nil).Once()

	h := New(memory.New(nil, logger.Discard()), email, &mockNotifier{}, logger.Discard())
	event := shared.NewStudentCreatedEvent(1, "1-1111-1111", "Ana Mora", "ana@example.com", now).WithAggregateID(1)

	require.NoError(t, h.OnStudentCreated(context.Background(), event))
	email.AssertExpectations(t)
}

func TestOnStudentCreated_NoEmailNoSend(t *testing.T) {
	email := &mockEmail{}
	h := New(memory.New(nil, logger.Discard()), email, &mockNotifier{}, logger.Discard())

	event := shared.NewStudentCreatedEvent(1, "1-1111-1111", "Ana Mora", "", now)
	require.NoError(t, h.OnStudentCreated(context.Background(), event))
	email.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOnStudentCreated_SendFailureIsSwallowed(t *testing.T) {
	email := &mockEmail{}
	email.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	h := New(memory.New(nil, logger.Discard()), email, &mockNotifier{}, logger.Discard())
	event := shared.NewStudentCreatedEvent(1, "1-1111-1111", "Ana Mora", "ana@example.com", now)
	assert.NoError(t, h.OnStudentCreated(context.Background(), event))
}

func TestOnGradeRegistered_NotifiesActiveParentsOfFailingGrade(t *testing.T) {
	st, studentID := seed(t)
	notifier := &mockNotifier{}
	notifier.On("SendBulkNotification", mock.Anything, []string{"parent:1"}, "Failing grade",
		mock.MatchedBy(func(msg string) bool { return assert.Contains(t, msg, "Ana Mora") })).
		Return(nil).Once()

	h := New(st, &mockEmail{}, notifier, logger.Discard())
	event := shared.NewGradeRegisteredEvent(studentID, 99, 1, 40, "F", false, now)

	require.NoError(t, h.OnGradeRegistered(context.Background(), event))
	notifier.AssertExpectations(t)
}

func TestOnGradeRegistered_PassingGradeIsQuiet(t *testing.T) {
	st, studentID := seed(t)
	notifier := &mockNotifier{}

	h := New(st, &mockEmail{}, notifier, logger.Discard())
	event := shared.NewGradeRegisteredEvent(studentID, 1, 1, 65, "D", true, now)

	require.NoError(t, h.OnGradeRegistered(context.Background(), event))
	notifier.AssertNotCalled(t, "SendBulkNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOnAttendanceRecorded(t *testing.T) {
	tests := []struct {
		status string
		title  string
	}{
		{"Absent", "Absence recorded"},
		{"Late", "Late arrival recorded"},
		{"Present", ""},
		{"Medical", ""},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			st, studentID := seed(t)
			notifier := &mockNotifier{}
			if tt.title != "" {
				notifier.On("SendBulkNotification", mock.Anything, []string{"parent:1"}, tt.title, mock.Anything).
					Return(nil).Once()
			}

			h := New(st, &mockEmail{}, notifier, logger.Discard())
			event := shared.NewAttendanceRecordedEvent(studentID, now, tt.status, false, false, now)

			require.NoError(t, h.OnAttendanceRecorded(context.Background(), event))
			notifier.AssertExpectations(t)
			if tt.title == "" {
				notifier.AssertNotCalled(t, "SendBulkNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestRegister_SubscribesEveryEvent(t *testing.T) {
	sub := &recordingSubscriber{}
	h := New(memory.New(nil, logger.Discard()), &mockEmail{}, &mockNotifier{}, logger.Discard())

	require.NoError(t, h.Register(sub))
	assert.ElementsMatch(t, []shared.EventType{
		shared.EventStudentCreated, shared.EventGradeRegistered, shared.EventAttendanceRecorded,
	}, sub.types)
}

type recordingSubscriber struct{ types []shared.EventType }

func (r *recordingSubscriber) Subscribe(t shared.EventType, _ shared.EventHandler) error {
	r.types = append(r.types, t)
	return nil
}

func (r *recordingSubscriber) SubscribeAll(shared.EventHandler) error { return nil }
