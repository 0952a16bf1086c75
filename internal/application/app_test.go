package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asidocente/school-records/internal/application/command"
	"github.com/asidocente/school-records/internal/application/pipeline"
	"github.com/asidocente/school-records/internal/application/query"
	"github.com/asidocente/school-records/internal/application/validation"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/infrastructure/messaging"
	"github.com/asidocente/school-records/internal/infrastructure/persistence/memory"
	"github.com/asidocente/school-records/pkg/logger"
)

var t0 = time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC)

type received struct {
	mu    sync.Mutex
	types []shared.EventType
}

func (r *received) handle(_ context.Context, e shared.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, e.EventType())
	return nil
}

func newApp(t *testing.T) (*App, *received) {
	t.Helper()
	clk := testclock.NewClock(t0)
	bus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{Logger: logger.Discard(), Clock: clk})
	rec := &received{}
	require.NoError(t, bus.SubscribeAll(rec.handle))

	return New(Deps{
		Store:   memory.New(bus, logger.Discard()),
		Clock:   clk,
		Logger:  logger.Discard(),
		Metrics: pipeline.NewMetrics(),
	}), rec
}

func TestApp_EnrollGradeAndRead(t *testing.T) {
	app, rec := newApp(t)
	ctx := context.Background()

	school, err := app.CreateSchool(ctx, command.CreateSchoolCommand{Name: "Escuela Central", Code: "EC"})
	require.NoError(t, err)
	require.True(t, school.IsSuccess())

	stu, err := app.CreateStudent(ctx, command.CreateStudentCommand{
		FirstName: "Ana", LastName: "Mora", Identification: "1-1111-1111",
		GradeLevel: int(shared.GradeQuinto), DateOfBirth: t0.AddDate(-10, 0, 0), SchoolID: school.Value(),
	})
	require.NoError(t, err)
	require.True(t, stu.IsSuccess(), stu.Errors())

	subj, err := app.CreateSubject(ctx, command.CreateSubjectCommand{Name: "Matemáticas", Code: "MAT", SchoolID: school.Value()})
	require.NoError(t, err)
	period, err := app.CreateAcademicPeriod(ctx, command.CreateAcademicPeriodCommand{
		Name: "I Trimestre", SchoolYear: 2024, PeriodNumber: 1, SchoolID: school.Value(),
		StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	grade, err := app.RegisterGrade(ctx, command.RegisterGradeCommand{
		StudentID: stu.Value(), SubjectID: subj.Value(), AcademicPeriodID: period.Value(), Score: 85, MaxScore: 100,
	})
	require.NoError(t, err)
	require.True(t, grade.IsSuccess(), grade.Errors())

	grades, err := app.GetGradesByStudent(ctx, query.GetGradesByStudentQuery{StudentID: stu.Value()})
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, "B", grades[0].LetterGrade)

	got, err := app.GetStudent(ctx, query.GetStudentQuery{ID: stu.Value()})
	require.NoError(t, err)
	assert.Equal(t, "Escuela Central", got.Value().SchoolName)

	assert.Equal(t, []shared.EventType{shared.EventStudentCreated, shared.EventGradeRegistered}, rec.types)
}

func TestApp_ValidationRejectsBeforeHandler(t *testing.T) {
	app, rec := newApp(t)

	_, err := app.RegisterGrade(context.Background(), command.RegisterGradeCommand{
		StudentID: 1, SubjectID: 1, AcademicPeriodID: 1, Score: -1, MaxScore: 100,
	})
	ve, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, map[string][]string{"score": {"Score cannot be negative"}}, ve.Fields)
	assert.Empty(t, rec.types)

	_, err = app.GetStudent(context.Background(), query.GetStudentQuery{})
	ve, ok = validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Student ID is required"}, ve.Fields["id"])
}
