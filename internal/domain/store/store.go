// Package store defines the persistence boundary the application layer
// works against: per-aggregate repositories plus an atomic unit of work
// that dispatches domain events only after a successful commit.
package store

import (
	"context"

	"github.com/asidocente/school-records/internal/domain/academicperiod"
	"github.com/asidocente/school-records/internal/domain/attendance"
	"github.com/asidocente/school-records/internal/domain/grade"
	"github.com/asidocente/school-records/internal/domain/parent"
	"github.com/asidocente/school-records/internal/domain/school"
	"github.com/asidocente/school-records/internal/domain/section"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/student"
	"github.com/asidocente/school-records/internal/domain/subject"
	"github.com/asidocente/school-records/internal/domain/teacher"
)

// Repositories exposes one repository per aggregate.
type Repositories interface {
	Schools() school.Repository
	Students() student.Repository
	Parents() parent.Repository
	Teachers() teacher.Repository
	Subjects() subject.Repository
	Sections() section.Repository
	AcademicPeriods() academicperiod.Repository
	Grades() grade.Repository
	Attendances() attendance.Repository
}

// TxFunc runs inside a unit of work. It returns the domain events to
// dispatch once the work has been committed.
type TxFunc func(ctx context.Context, tx Repositories) ([]shared.Event, error)

// Store is the full persistence boundary.
//
// Reads made through the embedded Repositories see committed state only.
// Do runs fn atomically: either every write fn made is committed and the
// returned events are published, or nothing is kept and no event is
// published. A cancelled context aborts the unit of work before commit.
type Store interface {
	Repositories

	// Do executes fn in a transaction and returns the number of rows
	// written on success.
	Do(ctx context.Context, fn TxFunc) (int, error)

	// Ping checks that the backing storage is reachable.
	Ping(ctx context.Context) error
}
