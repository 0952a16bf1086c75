package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asidocente/school-records/internal/application/result"
	"github.com/asidocente/school-records/internal/domain/attendance"
	"github.com/asidocente/school-records/internal/domain/shared"
)

func TestRecordAttendance_LateWithArrivalTime(t *testing.T) {
	f := newFixture(t)
	studentID := f.student(f.school("E1"), "Ana", "Mora", "1-1111-1111")

	res, err := NewRecordAttendanceHandler(f.store, f.clock).Handle(f.ctx, RecordAttendanceCommand{
		StudentID:   studentID,
		Date:        t0,
		Status:      int(attendance.StatusLate),
		ArrivalTime: "07:45",
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), res.Errors())

	a, err := f.store.Attendances().GetByID(f.ctx, res.Value())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), a.Date)
	require.NotNil(t, a.ArrivalTime)
	assert.Equal(t, 7*time.Hour+45*time.Minute, *a.ArrivalTime)
	assert.True(t, a.WasPresent())
	assert.False(t, a.IsExcused())

	events := f.log.all()
	recorded, ok := events[len(events)-1].(shared.AttendanceRecordedEvent)
	require.True(t, ok)
	assert.Equal(t, "Late", recorded.Status)
	assert.True(t, recorded.Present)
}

func TestRecordAttendance_UnknownStudent(t *testing.T) {
	f := newFixture(t)

	res, err := NewRecordAttendanceHandler(f.store, f.clock).Handle(f.ctx, RecordAttendanceCommand{
		StudentID: 7, Date: t0, Status: int(attendance.StatusAbsent),
	})
	require.NoError(t, err)
	assert.Equal(t, result.KindNotFound, res.Kind())
	assert.Equal(t, []string{"Student not found"}, res.Errors())
	assert.Empty(t, f.log.all())
}
