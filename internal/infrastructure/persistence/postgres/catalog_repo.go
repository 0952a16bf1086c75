package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/asidocente/school-records/internal/domain/academicperiod"
	"github.com/asidocente/school-records/internal/domain/section"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/subject"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SubjectRepository implements subject.Repository for PostgreSQL.
type SubjectRepository struct {
	db db
}

const subjectColumns = auditColumns + `, name, code, description, credits, is_active, school_id`

// Add inserts the subject and assigns its ID.
func (r *SubjectRepository) Add(ctx context.Context, s *subject.Subject) error {
	id, err := r.db.insert(ctx, `
		INSERT INTO subjects (
			name, code, description, credits, is_active, school_id, created_at, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		s.Name, s.Code, s.Description, s.Credits, s.IsActive, s.SchoolID, s.CreatedAt, s.CreatedBy,
	)
	if err != nil {
		return translate("add subject", err)
	}
	s.ID = id
	return nil
}

// GetByID returns a subject by ID.
func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*subject.Subject, error) {
	return getOne(ctx, r.db, "get subject", subject.ErrSubjectNotFound, scanSubject,
		"SELECT "+subjectColumns+" FROM subjects WHERE id = $1 AND NOT is_deleted", id)
}

// GetByIDs returns the subjects found among ids.
func (r *SubjectRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*subject.Subject, error) {
	return getMany(ctx, r.db, "get subjects", "subjects", subjectColumns, ids, scanSubject,
		func(s *subject.Subject) int64 { return s.ID })
}

// AssignTeacher records the subject↔teacher pair; an existing pair is kept.
func (r *SubjectRepository) AssignTeacher(ctx context.Context, subjectID, teacherID int64) error {
	_, err := r.db.exec(ctx, `
		INSERT INTO subject_teachers (subject_id, teacher_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, subjectID, teacherID)
	return translate("assign teacher", err)
}

func scanSubject(row pgx.Row) (*subject.Subject, error) {
	var s subject.Subject
	dest := append(auditDest(&s.Audit),
		&s.Name, &s.Code, &s.Description, &s.Credits, &s.IsActive, &s.SchoolID,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	utcAudit(&s.Audit)
	return &s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SECTION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SectionRepository implements section.Repository for PostgreSQL.
type SectionRepository struct {
	db db
}

const sectionColumns = auditColumns + `, name, grade_level, capacity, school_year,
	is_active, school_id, home_room_teacher_id`

// Add inserts the section and assigns its ID.
func (r *SectionRepository) Add(ctx context.Context, s *section.Section) error {
	id, err := r.db.insert(ctx, `
		INSERT INTO sections (
			name, grade_level, capacity, school_year, is_active, school_id,
			home_room_teacher_id, created_at, updated_at, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		s.Name, int(s.GradeLevel), s.Capacity, s.SchoolYear, s.IsActive, s.SchoolID,
		s.HomeRoomTeacherID, s.CreatedAt, s.UpdatedAt, s.CreatedBy,
	)
	if err != nil {
		return translate("add section", err)
	}
	s.ID = id
	return nil
}

// GetByID returns a section by ID.
func (r *SectionRepository) GetByID(ctx context.Context, id int64) (*section.Section, error) {
	return getOne(ctx, r.db, "get section", section.ErrSectionNotFound, scanSection,
		"SELECT "+sectionColumns+" FROM sections WHERE id = $1 AND NOT is_deleted", id)
}

// GetByIDs returns the sections found among ids.
func (r *SectionRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*section.Section, error) {
	return getMany(ctx, r.db, "get sections", "sections", sectionColumns, ids, scanSection,
		func(s *section.Section) int64 { return s.ID })
}

func scanSection(row pgx.Row) (*section.Section, error) {
	var (
		s     section.Section
		level int
	)
	dest := append(auditDest(&s.Audit),
		&s.Name, &level, &s.Capacity, &s.SchoolYear, &s.IsActive, &s.SchoolID, &s.HomeRoomTeacherID,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	s.GradeLevel = shared.GradeLevel(level)
	utcAudit(&s.Audit)
	return &s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ACADEMIC PERIOD REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AcademicPeriodRepository implements academicperiod.Repository for PostgreSQL.
type AcademicPeriodRepository struct {
	db db
}

const periodColumns = auditColumns + `, name, period_type, school_year, period_number,
	start_date, end_date, is_active, school_id`

// Add inserts the period and assigns its ID.
func (r *AcademicPeriodRepository) Add(ctx context.Context, p *academicperiod.AcademicPeriod) error {
	id, err := r.db.insert(ctx, `
		INSERT INTO academic_periods (
			name, period_type, school_year, period_number, start_date, end_date,
			is_active, school_id, created_at, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		p.Name, int(p.PeriodType), p.SchoolYear, p.PeriodNumber, p.StartDate, p.EndDate,
		p.IsActive, p.SchoolID, p.CreatedAt, p.CreatedBy,
	)
	if err != nil {
		return translate("add academic period", err)
	}
	p.ID = id
	return nil
}

// GetByID returns a period by ID.
func (r *AcademicPeriodRepository) GetByID(ctx context.Context, id int64) (*academicperiod.AcademicPeriod, error) {
	return getOne(ctx, r.db, "get academic period", academicperiod.ErrAcademicPeriodNotFound, scanPeriod,
		"SELECT "+periodColumns+" FROM academic_periods WHERE id = $1 AND NOT is_deleted", id)
}

// GetByIDs returns the periods found among ids.
func (r *AcademicPeriodRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*academicperiod.AcademicPeriod, error) {
	return getMany(ctx, r.db, "get academic periods", "academic_periods", periodColumns, ids, scanPeriod,
		func(p *academicperiod.AcademicPeriod) int64 { return p.ID })
}

func scanPeriod(row pgx.Row) (*academicperiod.AcademicPeriod, error) {
	var (
		p    academicperiod.AcademicPeriod
		kind int
	)
	dest := append(auditDest(&p.Audit),
		&p.Name, &kind, &p.SchoolYear, &p.PeriodNumber, &p.StartDate, &p.EndDate, &p.IsActive, &p.SchoolID,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.PeriodType = academicperiod.PeriodType(kind)
	p.StartDate, p.EndDate = utc(p.StartDate), utc(p.EndDate)
	utcAudit(&p.Audit)
	return &p, nil
}
