package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asidocente/school-records/internal/application/result"
)

func TestCreateSchool_DuplicateCode(t *testing.T) {
	f := newFixture(t)
	f.school("E1")

	res, err := NewCreateSchoolHandler(f.store, f.clock).Handle(f.ctx, CreateSchoolCommand{Name: "Otra", Code: "e1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A school with this code already exists"}, res.Errors())
}

func TestCreateTeacher(t *testing.T) {
	f := newFixture(t)
	schoolID := f.school("E1")
	h := NewCreateTeacherHandler(f.store, f.clock)

	cmd := CreateTeacherCommand{
		FirstName: "Rosa", LastName: "Solís", Identification: "4-4444-4444",
		Email: "ROSA@example.com", Phone: "8765-4321", SchoolID: schoolID,
	}
	res, err := h.Handle(f.ctx, cmd)
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), res.Errors())

	tc, err := f.store.Teachers().GetByID(f.ctx, res.Value())
	require.NoError(t, err)
	assert.Equal(t, "rosa@example.com", tc.Email)
	assert.Equal(t, t0, tc.HireDate)

	res, err = h.Handle(f.ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"A teacher with this identification already exists"}, res.Errors())

	cmd.Identification, cmd.SchoolID = "5", 77
	res, err = h.Handle(f.ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, result.KindNotFound, res.Kind())
	assert.Equal(t, []string{"School not found"}, res.Errors())
}

func TestCreateSubject_TeachersMustBelongToSchool(t *testing.T) {
	f := newFixture(t)
	schoolID := f.school("E1")
	other := f.school("E2")

	teacher, err := NewCreateTeacherHandler(f.store, f.clock).Handle(f.ctx, CreateTeacherCommand{
		FirstName: "Rosa", LastName: "Solís", Identification: "4", Email: "rosa@example.com",
		Phone: "87654321", SchoolID: other,
	})
	require.NoError(t, err)
	require.True(t, teacher.IsSuccess())

	h := NewCreateSubjectHandler(f.store, f.clock)
	res, err := h.Handle(f.ctx, CreateSubjectCommand{
		Name: "Ciencias", Code: "CIE", SchoolID: schoolID, TeacherIDs: []int64{teacher.Value()},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Error creating subject: Teacher belongs to another school"}, res.Errors())

	res, err = h.Handle(f.ctx, CreateSubjectCommand{Name: "Ciencias", Code: "CIE", SchoolID: schoolID})
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), "failed unit of work must not keep the code")

	res, err = h.Handle(f.ctx, CreateSubjectCommand{Name: "Ciencias 2", Code: "cie", SchoolID: schoolID})
	require.NoError(t, err)
	assert.Equal(t, []string{"A subject with this code already exists in the school"}, res.Errors())

	res, err = h.Handle(f.ctx, CreateSubjectCommand{Name: "Ciencias", Code: "CIE", SchoolID: other})
	require.NoError(t, err)
	assert.True(t, res.IsSuccess(), "codes are unique per school")
}

func TestCreateAcademicPeriod_DatesOrder(t *testing.T) {
	cmd := CreateAcademicPeriodCommand{
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	errs := cmd.Check(t0)
	require.Len(t, errs, 1)
	assert.Equal(t, "Start date must be before end date", errs[0].Message)

	f := newFixture(t)
	cmd.Name, cmd.SchoolYear, cmd.PeriodNumber, cmd.SchoolID = "I", 2024, 1, f.school("E1")
	res, err := NewCreateAcademicPeriodHandler(f.store, f.clock).Handle(f.ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"Error creating academic period: Start date must be before end date"}, res.Errors())
}
