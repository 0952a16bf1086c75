package student

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asidocente/school-records/internal/domain/shared"
)

var now = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

func params() NewStudentParams {
	return NewStudentParams{
		FirstName:      " María ",
		LastName:       "Rojas",
		Identification: "1-1111-1111",
		GradeLevel:     shared.GradeQuinto,
		DateOfBirth:    time.Date(2014, 6, 1, 0, 0, 0, 0, time.UTC),
		SchoolID:       1,
	}
}

func TestNewStudent(t *testing.T) {
	s, events, err := NewStudent(params(), now)
	require.NoError(t, err)

	assert.Equal(t, "María", s.FirstName)
	assert.Equal(t, "María Rojas", s.FullName())
	assert.True(t, s.IsActive)
	assert.Equal(t, now, s.CreatedAt)
	assert.Nil(t, s.UpdatedAt)

	require.Len(t, events, 1)
	ev := events[0].(shared.StudentCreatedEvent)
	assert.Equal(t, shared.EventStudentCreated, ev.EventType())
	assert.Equal(t, "1-1111-1111", ev.Identification)
}

func TestNewStudent_DateOfBirthMustBeInThePast(t *testing.T) {
	for _, dob := range []time.Time{now, now.Add(time.Second), now.AddDate(1, 0, 0)} {
		p := params()
		p.DateOfBirth = dob

		s, events, err := NewStudent(p, now)
		require.Error(t, err)
		assert.True(t, shared.IsDomainRule(err))
		assert.Equal(t, "Date of birth must be in the past", shared.MessageOf(err))
		assert.Nil(t, s)
		assert.Nil(t, events)
	}
}

func TestNewStudent_RequiredNames(t *testing.T) {
	p := params()
	p.FirstName = "  "
	_, _, err := NewStudent(p, now)
	assert.Equal(t, "First name is required", shared.MessageOf(err))

	p = params()
	p.LastName = ""
	_, _, err = NewStudent(p, now)
	assert.Equal(t, "Last name is required", shared.MessageOf(err))

	p = params()
	p.Identification = ""
	_, _, err = NewStudent(p, now)
	assert.Equal(t, "Identification is required", shared.MessageOf(err))
}

func TestStudent_AgeAt(t *testing.T) {
	s, _, err := NewStudent(params(), now)
	require.NoError(t, err)

	assert.Equal(t, 10, s.AgeAt(now))
	assert.Equal(t, 10, s.AgeAt(time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, 11, s.AgeAt(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
}

func TestStudent_Mutators(t *testing.T) {
	s, _, err := NewStudent(params(), now)
	require.NoError(t, err)
	later := now.Add(time.Hour)

	require.NoError(t, s.SetAddress("San José", "Escazú", "San Rafael", "", later))
	assert.Equal(t, "San José, Escazú, San Rafael", s.Address.Full())

	err = s.SetAddress("", "Escazú", "San Rafael", "", later)
	assert.Equal(t, "Province is required", shared.MessageOf(err))

	require.NoError(t, s.AssignToSection(9, later))
	require.NotNil(t, s.SectionID)
	assert.Equal(t, int64(9), *s.SectionID)

	assert.Error(t, s.UpdateGradeLevel(shared.GradeLevel(20), later))
	require.NoError(t, s.UpdateGradeLevel(shared.GradeSexto, later))

	s.Deactivate(later)
	assert.False(t, s.IsActive)
	require.NotNil(t, s.UpdatedAt)
	assert.Equal(t, later, *s.UpdatedAt)
}

func TestListFilter_Matches(t *testing.T) {
	s, _, err := NewStudent(params(), now)
	require.NoError(t, err)

	assert.True(t, ListFilter{SearchTerm: "MAR"}.Matches(s))
	assert.True(t, ListFilter{SearchTerm: "roj"}.Matches(s))
	assert.True(t, ListFilter{SearchTerm: "1111"}.Matches(s))
	assert.False(t, ListFilter{SearchTerm: "xyz"}.Matches(s))

	other := int64(2)
	assert.False(t, ListFilter{SchoolID: &other}.Matches(s))

	inactive := false
	assert.False(t, ListFilter{IsActive: &inactive}.Matches(s))

	section := int64(3)
	assert.False(t, ListFilter{SectionID: &section}.Matches(s))
	require.NoError(t, s.AssignToSection(section, now))
	assert.True(t, ListFilter{SectionID: &section}.Matches(s))
	assert.False(t, ListFilter{SectionID: &other}.Matches(s))
}
