package section

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asidocente/school-records/internal/domain/shared"
)

var now = time.Date(2025, 2, 3, 8, 0, 0, 0, time.UTC)

func TestNewSection_Defaults(t *testing.T) {
	s, err := NewSection(NewSectionParams{
		Name: "5-A", GradeLevel: shared.GradeQuinto, SchoolYear: 2025, SchoolID: 1,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, DefaultCapacity, s.Capacity)
	assert.True(t, s.IsActive)
}

func TestNewSection_Rules(t *testing.T) {
	zero := 0
	_, err := NewSection(NewSectionParams{Name: "5-A", SchoolYear: 2025, SchoolID: 1, Capacity: &zero}, now)
	assert.Equal(t, "Capacity must be greater than zero", shared.MessageOf(err))

	_, err = NewSection(NewSectionParams{Name: "5-A", SchoolYear: 1999, SchoolID: 1}, now)
	assert.Equal(t, "Invalid school year", shared.MessageOf(err))

	_, err = NewSection(NewSectionParams{Name: " ", SchoolYear: 2025, SchoolID: 1}, now)
	assert.Equal(t, "Section name is required", shared.MessageOf(err))
}

func TestSection_AvailableSlots(t *testing.T) {
	capacity := 3
	s, err := NewSection(NewSectionParams{Name: "5-A", SchoolYear: 2025, SchoolID: 1, Capacity: &capacity}, now)
	require.NoError(t, err)

	assert.Equal(t, 3, s.AvailableSlots(0))
	assert.Equal(t, 1, s.AvailableSlots(2))
	assert.True(t, s.HasAvailableCapacity(2))
	assert.False(t, s.HasAvailableCapacity(3))
	assert.Equal(t, 0, s.AvailableSlots(5))

	require.NoError(t, s.AssignHomeRoomTeacher(7, now))
	assert.Equal(t, int64(7), *s.HomeRoomTeacherID)
}
