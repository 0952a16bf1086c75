package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/juju/clock"

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
	"github.com/asidocente/school-records/pkg/retry"
)

// errReadOnly is returned by writes made through the Store's committed
// view instead of a unit of work.
var errReadOnly = errors.New("postgres: writes must run inside Store.Do")

// ══════════════════════════════════════════════════════════════════════════════
// QUERY HANDLE
// ══════════════════════════════════════════════════════════════════════════════

// db is what every repository queries through. written is nil outside a
// unit of work, which makes the handle read-only.
type db struct {
	q       Querier
	written *int
}

func (d db) exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if d.written == nil {
		return 0, errReadOnly
	}
	tag, err := d.q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	*d.written += int(tag.RowsAffected())
	return tag.RowsAffected(), nil
}

// insert runs an INSERT ... RETURNING id.
func (d db) insert(ctx context.Context, sql string, args ...any) (int64, error) {
	if d.written == nil {
		return 0, errReadOnly
	}
	var id int64
	if err := d.q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, err
	}
	*d.written++
	return id, nil
}

var uniqueErrors = map[string]error{
	"uq_schools_code":            school.ErrDuplicateCode,
	"uq_students_identification": student.ErrDuplicateIdentification,
	"uq_parents_identification":  parent.ErrDuplicateIdentification,
	"uq_teachers_identification": teacher.ErrDuplicateIdentification,
	"uq_subjects_school_code":    subject.ErrDuplicateCode,
}

var foreignKeyErrors = map[string]error{
	"fk_teachers_school":          school.ErrSchoolNotFound,
	"fk_students_school":          school.ErrSchoolNotFound,
	"fk_students_section":         section.ErrSectionNotFound,
	"fk_student_parents_student":  student.ErrStudentNotFound,
	"fk_student_parents_parent":   parent.ErrParentNotFound,
	"fk_subjects_school":          school.ErrSchoolNotFound,
	"fk_subject_teachers_subject": subject.ErrSubjectNotFound,
	"fk_subject_teachers_teacher": teacher.ErrTeacherNotFound,
	"fk_sections_school":          school.ErrSchoolNotFound,
	"fk_sections_teacher":         teacher.ErrTeacherNotFound,
	"fk_academic_periods_school":  school.ErrSchoolNotFound,
	"fk_grades_student":           student.ErrStudentNotFound,
	"fk_grades_subject":           subject.ErrSubjectNotFound,
	"fk_grades_period":            academicperiod.ErrAcademicPeriodNotFound,
	"fk_grades_teacher":           teacher.ErrTeacherNotFound,
	"fk_attendances_student":      student.ErrStudentNotFound,
	"fk_attendances_teacher":      teacher.ErrTeacherNotFound,
}

// translate maps constraint violations to domain errors and wraps
// everything else with the operation name.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case IsUniqueViolation(err):
		if derr, ok := uniqueErrors[ConstraintName(err)]; ok {
			return derr
		}
	case IsForeignKeyViolation(err):
		if derr, ok := foreignKeyErrors[ConstraintName(err)]; ok {
			return derr
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Store is the PostgreSQL store.Store. Units of work run in serializable
// transactions and are retried as a whole on serialization failures and
// deadlocks.
type Store struct {
	repos
	conn      *Connection
	retrier   *retry.Retrier
	publisher shared.EventPublisher
	logger    *slog.Logger
}

var _ store.Store = (*Store)(nil)

// NewStore creates a Store over conn. publisher may be nil. opts tune the
// retry of transient transaction failures.
func NewStore(conn *Connection, publisher shared.EventPublisher, log *slog.Logger, clk clock.Clock, opts ...retry.Option) *Store {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Component("postgres_store"))

	return &Store{
		repos:     repos{db: db{q: conn}},
		conn:      conn,
		publisher: publisher,
		logger:    log,
		retrier: retry.DatabaseRetrier(IsTransient, append([]retry.Option{
			retry.WithClock(clk),
			retry.WithOnRetry(func(attempt int, err error, _ time.Duration) {
				log.Warn("retrying unit of work", slog.Int("attempt", attempt), logger.Err(err))
			}),
		}, opts...)...),
	}
}

// Do runs fn in one transaction, commits and then publishes the returned
// events. Nothing is published when fn fails, ctx ends or commit fails.
func (s *Store) Do(ctx context.Context, fn store.TxFunc) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var (
		events  []shared.Event
		written int
	)
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		events, written = nil, 0
		return s.conn.WithTx(ctx, serializable, func(tx pgx.Tx) error {
			evs, err := fn(ctx, repos{db: db{q: tx, written: &written}})
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			events = evs
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	if s.publisher != nil && len(events) > 0 {
		if err := s.publisher.Publish(context.WithoutCancel(ctx), events...); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish events",
				slog.Int("count", len(events)), logger.Err(err))
		}
	}
	return written, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// repos hands out repositories bound to one query handle.
type repos struct {
	db db
}

func (r repos) Schools() school.Repository   { return &SchoolRepository{db: r.db} }
func (r repos) Students() student.Repository { return &StudentRepository{db: r.db} }
func (r repos) Parents() parent.Repository   { return &ParentRepository{db: r.db} }
func (r repos) Teachers() teacher.Repository { return &TeacherRepository{db: r.db} }
func (r repos) Subjects() subject.Repository { return &SubjectRepository{db: r.db} }
func (r repos) Sections() section.Repository { return &SectionRepository{db: r.db} }
func (r repos) AcademicPeriods() academicperiod.Repository {
	return &AcademicPeriodRepository{db: r.db}
}
func (r repos) Grades() grade.Repository           { return &GradeRepository{db: r.db} }
func (r repos) Attendances() attendance.Repository { return &AttendanceRepository{db: r.db} }
