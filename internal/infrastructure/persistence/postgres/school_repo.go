package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/asidocente/school-records/internal/domain/school"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHOOL REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SchoolRepository implements school.Repository for PostgreSQL.
type SchoolRepository struct {
	db db
}

const schoolColumns = auditColumns + `, name, code, director, email, phone,
	province, canton, district, detailed_address, is_active`

// Add inserts the school and assigns its ID.
func (r *SchoolRepository) Add(ctx context.Context, s *school.School) error {
	id, err := r.db.insert(ctx, `
		INSERT INTO schools (
			name, code, director, email, phone, province, canton, district,
			detailed_address, is_active, created_at, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`,
		s.Name, s.Code, s.Director, s.Email, s.Phone,
		s.Address.Province, s.Address.Canton, s.Address.District, s.Address.Detailed,
		s.IsActive, s.CreatedAt, s.CreatedBy,
	)
	if err != nil {
		return translate("add school", err)
	}
	s.ID = id
	return nil
}

// Update persists every mutable column.
func (r *SchoolRepository) Update(ctx context.Context, s *school.School) error {
	n, err := r.db.exec(ctx, `
		UPDATE schools SET
			name = $1, code = $2, director = $3, email = $4, phone = $5,
			province = $6, canton = $7, district = $8, detailed_address = $9,
			is_active = $10, is_deleted = $11, updated_at = $12, updated_by = $13
		WHERE id = $14
	`,
		s.Name, s.Code, s.Director, s.Email, s.Phone,
		s.Address.Province, s.Address.Canton, s.Address.District, s.Address.Detailed,
		s.IsActive, s.IsDeleted, s.UpdatedAt, s.UpdatedBy, s.ID,
	)
	if err != nil {
		return translate("update school", err)
	}
	if n == 0 {
		return school.ErrSchoolNotFound
	}
	return nil
}

// GetByID returns a school by ID.
func (r *SchoolRepository) GetByID(ctx context.Context, id int64) (*school.School, error) {
	return getOne(ctx, r.db, "get school", school.ErrSchoolNotFound, scanSchool,
		"SELECT "+schoolColumns+" FROM schools WHERE id = $1 AND NOT is_deleted", id)
}

// GetByIDs returns the schools found among ids.
func (r *SchoolRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*school.School, error) {
	return getMany(ctx, r.db, "get schools", "schools", schoolColumns, ids, scanSchool,
		func(s *school.School) int64 { return s.ID })
}

func scanSchool(row pgx.Row) (*school.School, error) {
	var s school.School
	dest := append(auditDest(&s.Audit),
		&s.Name, &s.Code, &s.Director, &s.Email, &s.Phone,
		&s.Address.Province, &s.Address.Canton, &s.Address.District, &s.Address.Detailed,
		&s.IsActive,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	utcAudit(&s.Audit)
	return &s, nil
}
