package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asidocente/school-records/internal/domain/shared"
)

var now = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		status  Status
		present bool
		excused bool
	}{
		{StatusPresent, true, false},
		{StatusLate, true, false},
		{StatusAbsent, false, false},
		{StatusExcused, false, true},
		{StatusMedical, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			a, _, err := NewAttendance(NewAttendanceParams{
				Date:      now,
				Status:    tt.status,
				StudentID: 1,
			}, now)
			require.NoError(t, err)
			assert.Equal(t, tt.present, a.WasPresent())
			assert.Equal(t, tt.excused, a.IsExcused())
		})
	}
}

func TestNewAttendance_TruncatesDate(t *testing.T) {
	at := time.Date(2025, 3, 9, 17, 45, 12, 500, time.UTC)
	a, events, err := NewAttendance(NewAttendanceParams{Date: at, Status: StatusAbsent, StudentID: 4}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), a.Date)

	require.Len(t, events, 1)
	ev := events[0].(shared.AttendanceRecordedEvent)
	assert.Equal(t, "Absent", ev.Status)
	assert.Equal(t, a.Date, ev.Date)
	assert.False(t, ev.Present)
}

func TestNewAttendance_Rejects(t *testing.T) {
	_, _, err := NewAttendance(NewAttendanceParams{Date: now, Status: Status(9), StudentID: 1}, now)
	assert.Equal(t, "Invalid attendance status", shared.MessageOf(err))

	_, _, err = NewAttendance(NewAttendanceParams{Date: now, Status: StatusPresent}, now)
	assert.True(t, shared.IsDomainRule(err))

	bad := 25 * time.Hour
	_, _, err = NewAttendance(NewAttendanceParams{Date: now, Status: StatusLate, StudentID: 1, ArrivalTime: &bad}, now)
	assert.Equal(t, "Arrival time must be within the day", shared.MessageOf(err))
}

func TestAttendance_UpdateStatus(t *testing.T) {
	a, _, err := NewAttendance(NewAttendanceParams{Date: now, Status: StatusAbsent, StudentID: 1}, now)
	require.NoError(t, err)

	require.NoError(t, a.UpdateStatus(StatusMedical, " doctor note ", now.Add(time.Hour)))
	assert.True(t, a.IsExcused())
	assert.Equal(t, "doctor note", a.Notes)
	assert.NotNil(t, a.UpdatedAt)

	require.NoError(t, a.SetArrivalTime(8*time.Hour+15*time.Minute, now))
	assert.Equal(t, 8*time.Hour+15*time.Minute, *a.ArrivalTime)
}
