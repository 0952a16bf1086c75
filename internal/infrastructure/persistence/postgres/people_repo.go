package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/asidocente/school-records/internal/domain/parent"
	"github.com/asidocente/school-records/internal/domain/teacher"
)

// ══════════════════════════════════════════════════════════════════════════════
// PARENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ParentRepository implements parent.Repository for PostgreSQL.
type ParentRepository struct {
	db db
}

const parentColumns = auditColumns + `, first_name, last_name, identification, email,
	phone, alternate_phone, occupation, relationship, is_primary_contact, is_active`

// Add inserts the parent and assigns its ID.
func (r *ParentRepository) Add(ctx context.Context, p *parent.Parent) error {
	id, err := r.db.insert(ctx, `
		INSERT INTO parents (
			first_name, last_name, identification, email, phone, alternate_phone,
			occupation, relationship, is_primary_contact, is_active,
			created_at, updated_at, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`,
		p.FirstName, p.LastName, p.Identification, p.Email, p.Phone, p.AlternatePhone,
		p.Occupation, p.Relationship, p.IsPrimaryContact, p.IsActive,
		p.CreatedAt, p.UpdatedAt, p.CreatedBy,
	)
	if err != nil {
		return translate("add parent", err)
	}
	p.ID = id
	return nil
}

// GetByID returns a parent by ID.
func (r *ParentRepository) GetByID(ctx context.Context, id int64) (*parent.Parent, error) {
	return getOne(ctx, r.db, "get parent", parent.ErrParentNotFound, scanParent,
		"SELECT "+parentColumns+" FROM parents WHERE id = $1 AND NOT is_deleted", id)
}

// GetByIDs returns the parents found among ids.
func (r *ParentRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*parent.Parent, error) {
	return getMany(ctx, r.db, "get parents", "parents", parentColumns, ids, scanParent,
		func(p *parent.Parent) int64 { return p.ID })
}

// ExistsByIdentification checks the identification case-insensitively.
func (r *ParentRepository) ExistsByIdentification(ctx context.Context, identification string) (bool, error) {
	return exists(ctx, r.db, "parent identification exists",
		"SELECT EXISTS(SELECT 1 FROM parents WHERE LOWER(identification) = LOWER($1))",
		strings.TrimSpace(identification))
}

func scanParent(row pgx.Row) (*parent.Parent, error) {
	var p parent.Parent
	dest := append(auditDest(&p.Audit),
		&p.FirstName, &p.LastName, &p.Identification, &p.Email,
		&p.Phone, &p.AlternatePhone, &p.Occupation, &p.Relationship,
		&p.IsPrimaryContact, &p.IsActive,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	utcAudit(&p.Audit)
	return &p, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// TeacherRepository implements teacher.Repository for PostgreSQL.
type TeacherRepository struct {
	db db
}

const teacherColumns = auditColumns + `, first_name, last_name, identification, email,
	phone, specialization, hire_date, is_active, school_id`

// Add inserts the teacher and assigns its ID.
func (r *TeacherRepository) Add(ctx context.Context, t *teacher.Teacher) error {
	id, err := r.db.insert(ctx, `
		INSERT INTO teachers (
			first_name, last_name, identification, email, phone, specialization,
			hire_date, is_active, school_id, created_at, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`,
		t.FirstName, t.LastName, t.Identification, t.Email, t.Phone, t.Specialization,
		t.HireDate, t.IsActive, t.SchoolID, t.CreatedAt, t.CreatedBy,
	)
	if err != nil {
		return translate("add teacher", err)
	}
	t.ID = id
	return nil
}

// GetByID returns a teacher by ID.
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*teacher.Teacher, error) {
	return getOne(ctx, r.db, "get teacher", teacher.ErrTeacherNotFound, scanTeacher,
		"SELECT "+teacherColumns+" FROM teachers WHERE id = $1 AND NOT is_deleted", id)
}

// GetByIDs returns the teachers found among ids.
func (r *TeacherRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*teacher.Teacher, error) {
	return getMany(ctx, r.db, "get teachers", "teachers", teacherColumns, ids, scanTeacher,
		func(t *teacher.Teacher) int64 { return t.ID })
}

func scanTeacher(row pgx.Row) (*teacher.Teacher, error) {
	var t teacher.Teacher
	dest := append(auditDest(&t.Audit),
		&t.FirstName, &t.LastName, &t.Identification, &t.Email,
		&t.Phone, &t.Specialization, &t.HireDate, &t.IsActive, &t.SchoolID,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	t.HireDate = utc(t.HireDate)
	utcAudit(&t.Audit)
	return &t, nil
}
