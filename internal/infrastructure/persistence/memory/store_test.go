package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asidocente/school-records/internal/domain/school"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/internal/domain/student"
	"github.com/asidocente/school-records/pkg/logger"
)

var now = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []shared.Event
}

func (r *recorder) Publish(_ context.Context, events ...shared.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *recorder) published() []shared.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shared.Event(nil), r.events...)
}

func addSchool(t *testing.T, s *Store) int64 {
	t.Helper()
	var id int64
	_, err := s.Do(context.Background(), func(ctx context.Context, tx store.Repositories) ([]shared.Event, error) {
		sch, err := school.NewSchool("Escuela Central", "ec-01", now)
		if err != nil {
			return nil, err
		}
		if err := tx.Schools().Add(ctx, sch); err != nil {
			return nil, err
		}
		id = sch.ID
		return nil, nil
	})
	require.NoError(t, err)
	return id
}

func newStudent(t *testing.T, schoolID int64, first, last, ident string) (*student.Student, []shared.Event) {
	t.Helper()
	st, events, err := student.NewStudent(student.NewStudentParams{
		FirstName:      first,
		LastName:       last,
		Identification: ident,
		GradeLevel:     shared.GradeQuinto,
		DateOfBirth:    time.Date(2014, 5, 10, 0, 0, 0, 0, time.UTC),
		SchoolID:       schoolID,
	}, now)
	require.NoError(t, err)
	return st, events
}

func TestStore_CommitPublishesAfterWrite(t *testing.T) {
	rec := &recorder{}
	s := New(rec, logger.Discard())
	schoolID := addSchool(t, s)

	rows, err := s.Do(context.Background(), func(ctx context.Context, tx store.Repositories) ([]shared.Event, error) {
		st, events := newStudent(t, schoolID, "Ana", "Mora", "1-1111-1111")
		if err := tx.Students().Add(ctx, st); err != nil {
			return nil, err
		}
		return shared.BindEvents(events, st.ID), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	got, err := s.Students().GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Mora", got.LastName)

	events := rec.published()
	require.Len(t, events, 1)
	assert.Equal(t, shared.EventStudentCreated, events[0].EventType())
	assert.Equal(t, int64(1), events[0].AggregateID())
}

func TestStore_FailedWorkLeavesNothing(t *testing.T) {
	rec := &recorder{}
	s := New(rec, logger.Discard())
	schoolID := addSchool(t, s)
	boom := errors.New("boom")

	_, err := s.Do(context.Background(), func(ctx context.Context, tx store.Repositories) ([]shared.Event, error) {
		st, events := newStudent(t, schoolID, "Ana", "Mora", "1-1111-1111")
		if err := tx.Students().Add(ctx, st); err != nil {
			return nil, err
		}
		return events, boom
	})
	require.ErrorIs(t, err, boom)

	n, err := s.Students().Count(context.Background(), student.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, rec.published())
}

func TestStore_CancelledWorkIsNotCommitted(t *testing.T) {
	rec := &recorder{}
	s := New(rec, logger.Discard())
	schoolID := addSchool(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := s.Do(ctx, func(ctx context.Context, tx store.Repositories) ([]shared.Event, error) {
		st, events := newStudent(t, schoolID, "Ana", "Mora", "1-1111-1111")
		if err := tx.Students().Add(ctx, st); err != nil {
			return nil, err
		}
		cancel()
		return shared.BindEvents(events, st.ID), nil
	})
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.Students().GetByID(context.Background(), 1)
	assert.True(t, shared.IsNotFound(err))
	assert.Empty(t, rec.published())
}

func TestStore_UniqueIdentification(t *testing.T) {
	s := New(nil, logger.Discard())
	schoolID := addSchool(t, s)

	add := func(ident string) error {
		_, err := s.Do(context.Background(), func(ctx context.Context, tx store.Repositories) ([]shared.Event, error) {
			st, _ := newStudent(t, schoolID, "Ana", "Mora", ident)
			return nil, tx.Students().Add(ctx, st)
		})
		return err
	}

	require.NoError(t, add("1-1111-1111"))
	err := add("1-1111-1111")
	require.Error(t, err)
	assert.True(t, shared.IsAlreadyExists(err))

	n, err := s.Students().Count(context.Background(), student.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_WritesOutsideDoAreRejected(t *testing.T) {
	s := New(nil, logger.Discard())
	sch, err := school.NewSchool("Escuela", "E1", now)
	require.NoError(t, err)

	err = s.Schools().Add(context.Background(), sch)
	assert.ErrorIs(t, err, errReadOnly)
}

func TestStore_ListOrdersAndPages(t *testing.T) {
	s := New(nil, logger.Discard())
	schoolID := addSchool(t, s)

	people := [][3]string{
		{"Mario", "Zúñiga", "1"},
		{"Ana", "Mora", "2"},
		{"Beto", "Mora", "3"},
		{"Carla", "Arias", "4"},
	}
	_, err := s.Do(context.Background(), func(ctx context.Context, tx store.Repositories) ([]shared.Event, error) {
		for _, p := range people {
			st, _ := newStudent(t, schoolID, p[0], p[1], p[2])
			if err := tx.Students().Add(ctx, st); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	require.NoError(t, err)

	list, err := s.Students().List(context.Background(), student.ListFilter{Offset: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ana", list[0].FirstName)
	assert.Equal(t, "Beto", list[1].FirstName)

	list, err = s.Students().List(context.Background(), student.ListFilter{Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, list)
}
