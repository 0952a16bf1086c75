package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/asidocente/school-records/internal/domain/attendance"
	"github.com/asidocente/school-records/internal/domain/grade"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// GradeRepository implements grade.Repository for PostgreSQL.
type GradeRepository struct {
	db db
}

const gradeColumns = auditColumns + `, score, max_score, comments, grade_date,
	student_id, subject_id, academic_period_id, teacher_id`

// Add inserts the grade. Missing references come back as not-found errors.
func (r *GradeRepository) Add(ctx context.Context, g *grade.Grade) error {
	id, err := r.db.insert(ctx, `
		INSERT INTO grades (
			score, max_score, comments, grade_date, student_id, subject_id,
			academic_period_id, teacher_id, created_at, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		g.Score, g.MaxScore, g.Comments, g.GradeDate, g.StudentID, g.SubjectID,
		g.AcademicPeriodID, g.TeacherID, g.CreatedAt, g.CreatedBy,
	)
	if err != nil {
		return translate("add grade", err)
	}
	g.ID = id
	return nil
}

// GetByID returns a grade by ID.
func (r *GradeRepository) GetByID(ctx context.Context, id int64) (*grade.Grade, error) {
	return getOne(ctx, r.db, "get grade", grade.ErrGradeNotFound, scanGrade,
		"SELECT "+gradeColumns+" FROM grades WHERE id = $1 AND NOT is_deleted", id)
}

// ListByStudent returns grades ordered by grade date, then id.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID int64, periodID *int64) ([]*grade.Grade, error) {
	return getList(ctx, r.db, "list grades", scanGrade, `
		SELECT `+gradeColumns+` FROM grades
		WHERE student_id = $1 AND NOT is_deleted
		  AND ($2::BIGINT IS NULL OR academic_period_id = $2)
		ORDER BY grade_date, id
	`, studentID, periodID)
}

func scanGrade(row pgx.Row) (*grade.Grade, error) {
	var g grade.Grade
	dest := append(auditDest(&g.Audit),
		&g.Score, &g.MaxScore, &g.Comments, &g.GradeDate,
		&g.StudentID, &g.SubjectID, &g.AcademicPeriodID, &g.TeacherID,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	g.GradeDate = utc(g.GradeDate)
	utcAudit(&g.Audit)
	return &g, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AttendanceRepository implements attendance.Repository for PostgreSQL.
type AttendanceRepository struct {
	db db
}

const attendanceColumns = auditColumns + `, date, status, notes, arrival_time, student_id, teacher_id`

// Add inserts the attendance record.
func (r *AttendanceRepository) Add(ctx context.Context, a *attendance.Attendance) error {
	var arrival pgtype.Time
	if a.ArrivalTime != nil {
		arrival = pgtype.Time{Microseconds: a.ArrivalTime.Microseconds(), Valid: true}
	}

	id, err := r.db.insert(ctx, `
		INSERT INTO attendances (
			date, status, notes, arrival_time, student_id, teacher_id, created_at, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		pgtype.Date{Time: a.Date, Valid: true}, int(a.Status), a.Notes, arrival,
		a.StudentID, a.TeacherID, a.CreatedAt, a.CreatedBy,
	)
	if err != nil {
		return translate("add attendance", err)
	}
	a.ID = id
	return nil
}

// GetByID returns an attendance record by ID.
func (r *AttendanceRepository) GetByID(ctx context.Context, id int64) (*attendance.Attendance, error) {
	return getOne(ctx, r.db, "get attendance", attendance.ErrAttendanceNotFound, scanAttendance,
		"SELECT "+attendanceColumns+" FROM attendances WHERE id = $1 AND NOT is_deleted", id)
}

func scanAttendance(row pgx.Row) (*attendance.Attendance, error) {
	var (
		a       attendance.Attendance
		date    pgtype.Date
		status  int
		arrival pgtype.Time
	)
	dest := append(auditDest(&a.Audit),
		&date, &status, &a.Notes, &arrival, &a.StudentID, &a.TeacherID,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	a.Date = attendance.TruncateToDay(date.Time)
	a.Status = attendance.Status(status)
	if arrival.Valid {
		d := time.Duration(arrival.Microseconds) * time.Microsecond
		a.ArrivalTime = &d
	}
	utcAudit(&a.Audit)
	return &a, nil
}
