package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asidocente/school-records/internal/application/result"
	"github.com/asidocente/school-records/internal/domain/shared"
)

func TestRegisterGrade_Success(t *testing.T) {
	f := newFixture(t)
	schoolID := f.school("E1")
	studentID := f.student(schoolID, "Ana", "Mora", "1-1111-1111")
	subjectID := f.subject(schoolID, "Matemáticas", "MAT")
	periodID := f.period(schoolID, "I Trimestre", 1)

	res, err := NewRegisterGradeHandler(f.store, f.clock).Handle(f.ctx, RegisterGradeCommand{
		StudentID: studentID, SubjectID: subjectID, AcademicPeriodID: periodID,
		Score: 58.5, MaxScore: 90, Comments: "Needs practice",
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), res.Errors())

	g, err := f.store.Grades().GetByID(f.ctx, res.Value())
	require.NoError(t, err)
	assert.Equal(t, 65.0, g.Percentage())
	assert.Equal(t, "D", g.LetterGrade())
	assert.True(t, g.IsPassing())

	var registered []shared.GradeRegisteredEvent
	for _, e := range f.log.all() {
		if ge, ok := e.(shared.GradeRegisteredEvent); ok {
			registered = append(registered, ge)
		}
	}
	require.Len(t, registered, 1)
	assert.Equal(t, res.Value(), registered[0].AggregateID())
	assert.True(t, registered[0].Passing)
}

func TestRegisterGrade_MissingReferences(t *testing.T) {
	f := newFixture(t)
	schoolID := f.school("E1")
	studentID := f.student(schoolID, "Ana", "Mora", "1-1111-1111")
	subjectID := f.subject(schoolID, "Matemáticas", "MAT")
	periodID := f.period(schoolID, "I Trimestre", 1)
	missing := int64(999)

	tests := []struct {
		name string
		cmd  RegisterGradeCommand
		want string
	}{
		{"student", RegisterGradeCommand{StudentID: missing, SubjectID: subjectID, AcademicPeriodID: periodID}, "Student not found"},
		{"subject", RegisterGradeCommand{StudentID: studentID, SubjectID: missing, AcademicPeriodID: periodID}, "Subject not found"},
		{"period", RegisterGradeCommand{StudentID: studentID, SubjectID: subjectID, AcademicPeriodID: missing}, "Academic period not found"},
		{"teacher", RegisterGradeCommand{StudentID: studentID, SubjectID: subjectID, AcademicPeriodID: periodID, TeacherID: &missing}, "Teacher not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cmd.Score, tt.cmd.MaxScore = 10, 20
			res, err := NewRegisterGradeHandler(f.store, f.clock).Handle(f.ctx, tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, result.KindNotFound, res.Kind())
			assert.Equal(t, []string{tt.want}, res.Errors())
		})
	}
}

func TestRegisterGrade_ScoreAboveMaxIsRule(t *testing.T) {
	f := newFixture(t)
	schoolID := f.school("E1")
	studentID := f.student(schoolID, "Ana", "Mora", "1-1111-1111")
	subjectID := f.subject(schoolID, "Matemáticas", "MAT")
	periodID := f.period(schoolID, "I Trimestre", 1)

	res, err := NewRegisterGradeHandler(f.store, f.clock).Handle(f.ctx, RegisterGradeCommand{
		StudentID: studentID, SubjectID: subjectID, AcademicPeriodID: periodID, Score: 101, MaxScore: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, result.KindRule, res.Kind())
	assert.Equal(t, []string{"Error registering grade: Score cannot exceed max score"}, res.Errors())
}

func TestRegisterGradeCommand_Check(t *testing.T) {
	assert.Empty(t, RegisterGradeCommand{Score: 100, MaxScore: 100}.Check(time.Time{}))

	errs := RegisterGradeCommand{Score: 101, MaxScore: 100}.Check(time.Time{})
	require.Len(t, errs, 1)
	assert.Equal(t, "score", errs[0].Field)
	assert.Equal(t, "Score cannot exceed max score", errs[0].Message)
}
