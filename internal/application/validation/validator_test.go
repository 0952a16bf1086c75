package validation

import (
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asidocente/school-records/internal/domain/shared"
)

var now = time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC)

type enrollRequest struct {
	FirstName   string    `json:"firstName" validate:"required,notblank,max=5"`
	SchoolID    int64     `json:"schoolId" validate:"gt=0"`
	Phone       string    `json:"phone,omitempty" validate:"omitempty,local_phone"`
	DateOfBirth time.Time `json:"dateOfBirth" validate:"required,past_date,max_age=30"`
	Arrival     string    `json:"arrival,omitempty" validate:"omitempty,clock_time"`
	Seen        time.Time `json:"seen" validate:"omitempty,not_future"`
	Min, Max    int       `json:"-"`
}

func (r enrollRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"dateOfBirth.max_age": "Student must be younger than 30 years",
		"firstName.required":  "Name is required",
	}
}

func (r enrollRequest) Check(time.Time) []FieldError {
	if r.Min > r.Max {
		return []FieldError{{Field: "max", Message: "Max must not be below min"}}
	}
	return nil
}

func valid() enrollRequest {
	return enrollRequest{FirstName: "Ana", SchoolID: 1, DateOfBirth: now.AddDate(-10, 0, 0)}
}

func TestValidate_Valid(t *testing.T) {
	v := New(testclock.NewClock(now))
	assert.NoError(t, v.Validate(valid()))
	assert.NoError(t, v.Validate(nil))
}

func TestValidate_CollectsEveryViolation(t *testing.T) {
	v := New(testclock.NewClock(now))

	req := enrollRequest{FirstName: "Anastasia", Phone: "123", DateOfBirth: now, Arrival: "25:00", Min: 2, Max: 1}
	err := v.Validate(req)
	require.ErrorIs(t, err, shared.ErrValidation)

	ve, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, map[string][]string{
		"firstName":   {"First name must not exceed 5 characters"},
		"schoolId":    {"School ID must be greater than 0"},
		"phone":       {"Phone must be 8 digits"},
		"dateOfBirth": {"Date of birth must be in the past"},
		"arrival":     {"Arrival must use the HH:MM format"},
		"max":         {"Max must not be below min"},
	}, ve.Fields)
	assert.Equal(t, "First name must not exceed 5 characters", ve.Messages()[0])
}

func TestValidate_DateRules(t *testing.T) {
	clk := testclock.NewClock(now)
	v := New(clk)

	old := valid()
	old.DateOfBirth = now.AddDate(-31, 0, 0)
	ve, ok := AsError(v.Validate(old))
	require.True(t, ok)
	assert.Equal(t, []string{"Student must be younger than 30 years"}, ve.Fields["dateOfBirth"])

	later := valid()
	later.Seen = now.Add(10 * time.Hour)
	assert.NoError(t, v.Validate(later), "later today is not the future")

	later.Seen = now.AddDate(0, 0, 1)
	ve, ok = AsError(v.Validate(later))
	require.True(t, ok)
	assert.Equal(t, []string{"Seen cannot be in the future"}, ve.Fields["seen"])

	clk.Advance(48 * time.Hour)
	assert.NoError(t, v.Validate(later), "rules follow the injected clock")
}

func TestValidate_NotFutureUsesCallerCalendarDay(t *testing.T) {
	v := New(testclock.NewClock(now))
	cr := time.FixedZone("CST", -6*60*60)

	evening := valid()
	evening.Seen = time.Date(2024, 3, 4, 23, 0, 0, 0, cr)
	assert.NoError(t, v.Validate(evening), "still March 4 for the caller")

	tomorrow := valid()
	tomorrow.Seen = time.Date(2024, 3, 5, 0, 30, 0, 0, cr)
	ve, ok := AsError(v.Validate(tomorrow))
	require.True(t, ok)
	assert.Equal(t, []string{"Seen cannot be in the future"}, ve.Fields["seen"])
}

func TestValidate_BlankTextIsRequired(t *testing.T) {
	v := New(testclock.NewClock(now))

	for _, name := range []string{"", "   ", "\t\n"} {
		req := valid()
		req.FirstName = name
		ve, ok := AsError(v.Validate(req))
		require.True(t, ok, "%q", name)
		assert.Equal(t, map[string][]string{"firstName": {"Name is required"}}, ve.Fields, "%q", name)
	}
}

func TestError_AddSkipsDuplicates(t *testing.T) {
	e := NewError()
	e.Add("score", "Score cannot be negative")
	e.Add("score", "Score cannot be negative")
	e.Add("maxScore", "Max score must be greater than zero")

	assert.Equal(t, []string{"Score cannot be negative", "Max score must be greater than zero"}, e.Messages())
	assert.Equal(t, "validation failed: score: Score cannot be negative; maxScore: Max score must be greater than zero", e.Error())
}

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"FirstName":        "First name",
		"SchoolID":         "School ID",
		"AcademicPeriodID": "Academic period ID",
		"Score":            "Score",
	}
	for in, want := range tests {
		assert.Equal(t, want, Label(in), in)
	}
}

func TestParseClockTime(t *testing.T) {
	d, err := ParseClockTime(" 07:45 ")
	require.NoError(t, err)
	assert.Equal(t, 7*time.Hour+45*time.Minute, d)

	_, err = ParseClockTime("7h45")
	assert.Error(t, err)
}
