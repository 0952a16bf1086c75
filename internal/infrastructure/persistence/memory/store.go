// Package memory implements store.Store in process memory.
//
// It is used when no database is configured and by handler tests. A unit
// of work runs against a private copy of every table and replaces the
// committed tables only when it succeeds, so a failed or cancelled unit of
// work leaves nothing behind. Units of work are serialized; committed reads
// run concurrently.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/asidocente/school-records/internal/domain/academicperiod"
	"github.com/asidocente/school-records/internal/domain/attendance"
	"github.com/asidocente/school-records/internal/domain/grade"
	"github.com/asidocente/school-records/internal/domain/parent"
	"github.com/asidocente/school-records/internal/domain/school"
	"github.com/asidocente/school-records/internal/domain/section"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/internal/domain/student"
	"github.com/asidocente/school-records/internal/domain/subject"
	"github.com/asidocente/school-records/internal/domain/teacher"
	"github.com/asidocente/school-records/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// TABLES
// ══════════════════════════════════════════════════════════════════════════════

// table keeps rows by value. Entity mutators replace pointer fields instead
// of writing through them, so a shallow copy of a row is independent.
type table[T any] struct {
	rows map[int64]T
	seq  int64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[int64]T)}
}

func (t *table[T]) clone() *table[T] {
	return &table[T]{rows: maps.Clone(t.rows), seq: t.seq}
}

func (t *table[T]) next() int64 {
	t.seq++
	return t.seq
}

// links is a many-to-many relation addressed by id pairs.
type links map[int64]map[int64]struct{}

func (l links) clone() links {
	out := make(links, len(l))
	for k, v := range l {
		out[k] = maps.Clone(v)
	}
	return out
}

func (l links) add(left, right int64) bool {
	set, ok := l[left]
	if !ok {
		set = make(map[int64]struct{})
		l[left] = set
	}
	if _, exists := set[right]; exists {
		return false
	}
	set[right] = struct{}{}
	return true
}

type tables struct {
	schools         *table[school.School]
	students        *table[student.Student]
	parents         *table[parent.Parent]
	teachers        *table[teacher.Teacher]
	subjects        *table[subject.Subject]
	sections        *table[section.Section]
	periods         *table[academicperiod.AcademicPeriod]
	grades          *table[grade.Grade]
	attendances     *table[attendance.Attendance]
	studentParents  links
	subjectTeachers links
}

func newTables() *tables {
	return &tables{
		schools:         newTable[school.School](),
		students:        newTable[student.Student](),
		parents:         newTable[parent.Parent](),
		teachers:        newTable[teacher.Teacher](),
		subjects:        newTable[subject.Subject](),
		sections:        newTable[section.Section](),
		periods:         newTable[academicperiod.AcademicPeriod](),
		grades:          newTable[grade.Grade](),
		attendances:     newTable[attendance.Attendance](),
		studentParents:  make(links),
		subjectTeachers: make(links),
	}
}

func (t *tables) clone() *tables {
	return &tables{
		schools:         t.schools.clone(),
		students:        t.students.clone(),
		parents:         t.parents.clone(),
		teachers:        t.teachers.clone(),
		subjects:        t.subjects.clone(),
		sections:        t.sections.clone(),
		periods:         t.periods.clone(),
		grades:          t.grades.clone(),
		attendances:     t.attendances.clone(),
		studentParents:  t.studentParents.clone(),
		subjectTeachers: t.subjectTeachers.clone(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Store is an in-memory store.Store.
type Store struct {
	mu        sync.RWMutex
	committed *tables
	publisher shared.EventPublisher
	logger    *slog.Logger
}

var _ store.Store = (*Store)(nil)

// New creates an empty store. Events of committed units of work go to
// publisher, which may be nil.
func New(publisher shared.EventPublisher, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		committed: newTables(),
		publisher: publisher,
		logger:    log.With(logger.Component("memory_store")),
	}
}

// Do runs fn against a private copy of the tables and commits it on success.
func (s *Store) Do(ctx context.Context, fn store.TxFunc) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	next := s.committed.clone()
	work := &repos{tables: func() *tables { return next }, lock: noLock}
	events, err := fn(ctx, work)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.mu.Unlock()
		return 0, err
	}
	s.committed = next
	s.mu.Unlock()

	s.publish(ctx, events)
	return work.written, nil
}

// publish hands committed events to the publisher. The work is already
// committed, so a publishing failure is logged and not returned.
func (s *Store) publish(ctx context.Context, events []shared.Event) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), events...); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish events",
			slog.Int("count", len(events)), logger.Err(err))
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) readLock() func() {
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) Schools() school.Repository                 { return schoolRepo{s.committedView()} }
func (s *Store) Students() student.Repository               { return studentRepo{s.committedView()} }
func (s *Store) Parents() parent.Repository                 { return parentRepo{s.committedView()} }
func (s *Store) Teachers() teacher.Repository               { return teacherRepo{s.committedView()} }
func (s *Store) Subjects() subject.Repository               { return subjectRepo{s.committedView()} }
func (s *Store) Sections() section.Repository               { return sectionRepo{s.committedView()} }
func (s *Store) AcademicPeriods() academicperiod.Repository { return periodRepo{s.committedView()} }
func (s *Store) Grades() grade.Repository                   { return gradeRepo{s.committedView()} }
func (s *Store) Attendances() attendance.Repository         { return attendanceRepo{s.committedView()} }

// committedView reads the committed tables under the read lock. Writes
// outside Do are rejected.
func (s *Store) committedView() *repos {
	return &repos{
		lock:     s.readLock,
		readOnly: true,
		tables:   func() *tables { return s.committed },
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK VIEW
// ══════════════════════════════════════════════════════════════════════════════

var errReadOnly = fmt.Errorf("memory: writes must run inside Do")

// repos is the store.Repositories handed to a unit of work, or a read-only
// view of the committed tables.
type repos struct {
	tables   func() *tables
	lock     func() func()
	readOnly bool
	written  int
}

func noLock() func() { return func() {} }

// enter checks ctx, takes the lock and returns the tables and the release.
func (r *repos) enter(ctx context.Context, write bool) (*tables, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if write && r.readOnly {
		return nil, nil, errReadOnly
	}
	release := r.lock()
	return r.tables(), release, nil
}

func (r *repos) Schools() school.Repository                 { return schoolRepo{r} }
func (r *repos) Students() student.Repository               { return studentRepo{r} }
func (r *repos) Parents() parent.Repository                 { return parentRepo{r} }
func (r *repos) Teachers() teacher.Repository               { return teacherRepo{r} }
func (r *repos) Subjects() subject.Repository               { return subjectRepo{r} }
func (r *repos) Sections() section.Repository               { return sectionRepo{r} }
func (r *repos) AcademicPeriods() academicperiod.Repository { return periodRepo{r} }
func (r *repos) Grades() grade.Repository                   { return gradeRepo{r} }
func (r *repos) Attendances() attendance.Repository         { return attendanceRepo{r} }

// getMany copies the rows of t that exist among ids.
func getMany[T any](t *table[T], ids []int64) map[int64]*T {
	out := make(map[int64]*T, len(ids))
	for _, id := range ids {
		if row, ok := t.rows[id]; ok {
			out[id] = &row
		}
	}
	return out
}
