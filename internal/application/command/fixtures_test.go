package command

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/require"

	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/infrastructure/persistence/memory"
	"github.com/asidocente/school-records/pkg/logger"
)

var t0 = time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC)

type eventLog struct {
	mu     sync.Mutex
	events []shared.Event
}

func (l *eventLog) Publish(_ context.Context, events ...shared.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, events...)
	return nil
}

func (l *eventLog) all() []shared.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]shared.Event(nil), l.events...)
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	clock *testclock.Clock
	log   *eventLog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	events := &eventLog{}
	return &fixture{
		t:     t,
		ctx:   context.Background(),
		store: memory.New(events, logger.Discard()),
		clock: testclock.NewClock(t0),
		log:   events,
	}
}

func (f *fixture) school(code string) int64 {
	f.t.Helper()
	res, err := NewCreateSchoolHandler(f.store, f.clock).Handle(f.ctx, CreateSchoolCommand{
		Name: "Escuela " + code,
		Code: code,
	})
	require.NoError(f.t, err)
	require.True(f.t, res.IsSuccess(), res.Errors())
	return res.Value()
}

func (f *fixture) student(schoolID int64, first, last, ident string) int64 {
	f.t.Helper()
	res, err := NewCreateStudentHandler(f.store, f.clock).Handle(f.ctx, CreateStudentCommand{
		FirstName:      first,
		LastName:       last,
		Identification: ident,
		GradeLevel:     int(shared.GradeQuinto),
		DateOfBirth:    t0.AddDate(-10, 0, 0),
		SchoolID:       schoolID,
	})
	require.NoError(f.t, err)
	require.True(f.t, res.IsSuccess(), res.Errors())
	return res.Value()
}

func (f *fixture) subject(schoolID int64, name, code string) int64 {
	f.t.Helper()
	res, err := NewCreateSubjectHandler(f.store, f.clock).Handle(f.ctx, CreateSubjectCommand{
		Name: name, Code: code, SchoolID: schoolID,
	})
	require.NoError(f.t, err)
	require.True(f.t, res.IsSuccess(), res.Errors())
	return res.Value()
}

func (f *fixture) period(schoolID int64, name string, number int) int64 {
	f.t.Helper()
	res, err := NewCreateAcademicPeriodHandler(f.store, f.clock).Handle(f.ctx, CreateAcademicPeriodCommand{
		Name:         name,
		SchoolYear:   2024,
		PeriodNumber: number,
		StartDate:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		SchoolID:     schoolID,
	})
	require.NoError(f.t, err)
	require.True(f.t, res.IsSuccess(), res.Errors())
	return res.Value()
}
