package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	db db
}

const studentColumns = auditColumns + `, first_name, last_name, identification,
	grade_level, date_of_birth, email, phone, province, canton, district,
	detailed_address, is_active, school_id, section_id`

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Add inserts the student and assigns its ID.
func (r *StudentRepository) Add(ctx context.Context, s *student.Student) error {
	id, err := r.db.insert(ctx, `
		INSERT INTO students (
			first_name, last_name, identification, grade_level, date_of_birth,
			email, phone, province, canton, district, detailed_address,
			is_active, school_id, section_id, created_at, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`,
		s.FirstName, s.LastName, s.Identification, int(s.GradeLevel), s.DateOfBirth,
		s.Email, s.Phone, s.Address.Province, s.Address.Canton, s.Address.District, s.Address.Detailed,
		s.IsActive, s.SchoolID, s.SectionID, s.CreatedAt, s.CreatedBy,
	)
	if err != nil {
		return translate("add student", err)
	}
	s.ID = id
	return nil
}

// Update persists every mutable column.
func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	n, err := r.db.exec(ctx, `
		UPDATE students SET
			first_name = $1, last_name = $2, grade_level = $3, email = $4, phone = $5,
			province = $6, canton = $7, district = $8, detailed_address = $9,
			is_active = $10, section_id = $11, is_deleted = $12,
			updated_at = $13, updated_by = $14
		WHERE id = $15
	`,
		s.FirstName, s.LastName, int(s.GradeLevel), s.Email, s.Phone,
		s.Address.Province, s.Address.Canton, s.Address.District, s.Address.Detailed,
		s.IsActive, s.SectionID, s.IsDeleted, s.UpdatedAt, s.UpdatedBy, s.ID,
	)
	if err != nil {
		return translate("update student", err)
	}
	if n == 0 {
		return student.ErrStudentNotFound
	}
	return nil
}

// GetByID returns a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*student.Student, error) {
	return getOne(ctx, r.db, "get student", student.ErrStudentNotFound, scanStudent,
		"SELECT "+studentColumns+" FROM students WHERE id = $1 AND NOT is_deleted", id)
}

// GetByIDs returns the students found among ids.
func (r *StudentRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*student.Student, error) {
	return getMany(ctx, r.db, "get students", "students", studentColumns, ids, scanStudent,
		func(s *student.Student) int64 { return s.ID })
}

// ExistsByIdentification checks the identification case-insensitively.
func (r *StudentRepository) ExistsByIdentification(ctx context.Context, identification string) (bool, error) {
	return exists(ctx, r.db, "student identification exists",
		"SELECT EXISTS(SELECT 1 FROM students WHERE LOWER(identification) = LOWER($1))",
		strings.TrimSpace(identification))
}

// ─────────────────────────────────────────────────────────────────────────────
// Search & Filter
// ─────────────────────────────────────────────────────────────────────────────

// List returns one page ordered by last name, first name, id. The "C"
// collation keeps the order byte-wise, independent of the server locale.
func (r *StudentRepository) List(ctx context.Context, filter student.ListFilter) ([]*student.Student, error) {
	where, args := buildStudentFilter(filter)
	sql := "SELECT " + studentColumns + " FROM students" + where +
		` ORDER BY last_name COLLATE "C", first_name COLLATE "C", id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return getList(ctx, r.db, "list students", scanStudent, sql, args...)
}

// Count returns how many students match the filter, ignoring paging.
func (r *StudentRepository) Count(ctx context.Context, filter student.ListFilter) (int, error) {
	where, args := buildStudentFilter(filter)
	var n int
	if err := r.db.q.QueryRow(ctx, "SELECT COUNT(*) FROM students"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return n, nil
}

// CountBySection counts the active students placed in a section.
func (r *StudentRepository) CountBySection(ctx context.Context, sectionID int64) (int, error) {
	var n int
	err := r.db.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM students
		WHERE section_id = $1 AND is_active AND NOT is_deleted
	`, sectionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count students by section: %w", err)
	}
	return n, nil
}

func buildStudentFilter(f student.ListFilter) (string, []any) {
	conds := []string{"NOT is_deleted"}
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.SchoolID != nil {
		add("school_id = $%d", *f.SchoolID)
	}
	if f.SectionID != nil {
		add("section_id = $%d", *f.SectionID)
	}
	if f.GradeLevel != nil {
		add("grade_level = $%d", int(*f.GradeLevel))
	}
	if f.IsActive != nil {
		add("is_active = $%d", *f.IsActive)
	}
	if term := f.NormalizedSearch(); term != "" {
		args = append(args, "%"+escapeLike(term)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(LOWER(first_name) LIKE $%[1]d OR LOWER(last_name) LIKE $%[1]d OR LOWER(identification) LIKE $%[1]d)", n))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ─────────────────────────────────────────────────────────────────────────────
// Parents
// ─────────────────────────────────────────────────────────────────────────────

// LinkParents records student↔parent pairs; existing pairs are kept.
func (r *StudentRepository) LinkParents(ctx context.Context, studentID int64, parentIDs []int64) error {
	for _, pid := range parentIDs {
		_, err := r.db.exec(ctx, `
			INSERT INTO student_parents (student_id, parent_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, studentID, pid)
		if err != nil {
			return translate("link parent", err)
		}
	}
	return nil
}

// ParentIDs returns the linked parent ids in ascending order.
func (r *StudentRepository) ParentIDs(ctx context.Context, studentID int64) ([]int64, error) {
	rows, err := r.db.q.Query(ctx,
		"SELECT parent_id FROM student_parents WHERE student_id = $1 ORDER BY parent_id", studentID)
	if err != nil {
		return nil, fmt.Errorf("list parent ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("list parent ids: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func scanStudent(row pgx.Row) (*student.Student, error) {
	var (
		s     student.Student
		level int
	)
	dest := append(auditDest(&s.Audit),
		&s.FirstName, &s.LastName, &s.Identification,
		&level, &s.DateOfBirth, &s.Email, &s.Phone,
		&s.Address.Province, &s.Address.Canton, &s.Address.District, &s.Address.Detailed,
		&s.IsActive, &s.SchoolID, &s.SectionID,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	s.GradeLevel = shared.GradeLevel(level)
	s.DateOfBirth = utc(s.DateOfBirth)
	utcAudit(&s.Audit)
	return &s, nil
}
