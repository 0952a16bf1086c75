package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: SCHOOLS AND PEOPLE
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS schools (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    code VARCHAR(20) NOT NULL,
    director VARCHAR(200) NOT NULL DEFAULT '',
    email VARCHAR(100) NOT NULL DEFAULT '',
    phone VARCHAR(20) NOT NULL DEFAULT '',
    province VARCHAR(50) NOT NULL DEFAULT '',
    canton VARCHAR(50) NOT NULL DEFAULT '',
    district VARCHAR(50) NOT NULL DEFAULT '',
    detailed_address VARCHAR(500) NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE,
    created_by VARCHAR(100) NOT NULL DEFAULT '',
    updated_by VARCHAR(100) NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_schools_code ON schools (UPPER(code));

CREATE TABLE IF NOT EXISTS parents (
    id BIGSERIAL PRIMARY KEY,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    identification VARCHAR(20) NOT NULL,
    email VARCHAR(100) NOT NULL,
    phone VARCHAR(20) NOT NULL,
    alternate_phone VARCHAR(20) NOT NULL DEFAULT '',
    occupation VARCHAR(100) NOT NULL DEFAULT '',
    relationship VARCHAR(50) NOT NULL,
    is_primary_contact BOOLEAN NOT NULL DEFAULT FALSE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE,
    created_by VARCHAR(100) NOT NULL DEFAULT '',
    updated_by VARCHAR(100) NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_parents_identification ON parents (LOWER(identification));

CREATE TABLE IF NOT EXISTS teachers (
    id BIGSERIAL PRIMARY KEY,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    identification VARCHAR(20) NOT NULL,
    email VARCHAR(100) NOT NULL,
    phone VARCHAR(20) NOT NULL,
    specialization VARCHAR(100) NOT NULL DEFAULT '',
    hire_date TIMESTAMP WITH TIME ZONE NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    school_id BIGINT NOT NULL,
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE,
    created_by VARCHAR(100) NOT NULL DEFAULT '',
    updated_by VARCHAR(100) NOT NULL DEFAULT '',

    CONSTRAINT fk_teachers_school FOREIGN KEY (school_id) REFERENCES schools(id)
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_teachers_identification ON teachers (LOWER(identification));
CREATE INDEX IF NOT EXISTS idx_teachers_school ON teachers(school_id);

CREATE TABLE IF NOT EXISTS students (
    id BIGSERIAL PRIMARY KEY,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    identification VARCHAR(20) NOT NULL,
    grade_level SMALLINT NOT NULL,
    date_of_birth TIMESTAMP WITH TIME ZONE NOT NULL,
    email VARCHAR(100) NOT NULL DEFAULT '',
    phone VARCHAR(20) NOT NULL DEFAULT '',
    province VARCHAR(50) NOT NULL DEFAULT '',
    canton VARCHAR(50) NOT NULL DEFAULT '',
    district VARCHAR(50) NOT NULL DEFAULT '',
    detailed_address VARCHAR(500) NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    school_id BIGINT NOT NULL,
    section_id BIGINT,
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE,
    created_by VARCHAR(100) NOT NULL DEFAULT '',
    updated_by VARCHAR(100) NOT NULL DEFAULT '',

    CONSTRAINT fk_students_school FOREIGN KEY (school_id) REFERENCES schools(id),
    CONSTRAINT valid_grade_level CHECK (grade_level BETWEEN 0 AND 15)
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_students_identification ON students (LOWER(identification));
CREATE INDEX IF NOT EXISTS idx_students_school ON students(school_id);
CREATE INDEX IF NOT EXISTS idx_students_section ON students(section_id) WHERE is_active AND NOT is_deleted;

-- Listing order: last name, first name, id.
CREATE INDEX IF NOT EXISTS idx_students_name_order ON students(last_name, first_name, id) WHERE NOT is_deleted;

CREATE TABLE IF NOT EXISTS student_parents (
    student_id BIGINT NOT NULL,
    parent_id BIGINT NOT NULL,
    PRIMARY KEY (student_id, parent_id),

    CONSTRAINT fk_student_parents_student FOREIGN KEY (student_id) REFERENCES students(id) ON DELETE CASCADE,
    CONSTRAINT fk_student_parents_parent FOREIGN KEY (parent_id) REFERENCES parents(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_student_parents_parent ON student_parents(parent_id);
`

const migration001Down = `
DROP TABLE IF EXISTS student_parents;
DROP TABLE IF EXISTS students;
DROP TABLE IF EXISTS teachers;
DROP TABLE IF EXISTS parents;
DROP TABLE IF EXISTS schools;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: SUBJECTS, SECTIONS AND ACADEMIC PERIODS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS subjects (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    code VARCHAR(20) NOT NULL,
    description VARCHAR(500) NOT NULL DEFAULT '',
    credits INTEGER NOT NULL DEFAULT 1,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    school_id BIGINT NOT NULL,
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE,
    created_by VARCHAR(100) NOT NULL DEFAULT '',
    updated_by VARCHAR(100) NOT NULL DEFAULT '',

    CONSTRAINT fk_subjects_school FOREIGN KEY (school_id) REFERENCES schools(id),
    CONSTRAINT valid_credits CHECK (credits >= 0)
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_subjects_school_code ON subjects (school_id, UPPER(code));

CREATE TABLE IF NOT EXISTS subject_teachers (
    subject_id BIGINT NOT NULL,
    teacher_id BIGINT NOT NULL,
    PRIMARY KEY (subject_id, teacher_id),

    CONSTRAINT fk_subject_teachers_subject FOREIGN KEY (subject_id) REFERENCES subjects(id) ON DELETE CASCADE,
    CONSTRAINT fk_subject_teachers_teacher FOREIGN KEY (teacher_id) REFERENCES teachers(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS sections (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(50) NOT NULL,
    grade_level SMALLINT NOT NULL,
    capacity INTEGER NOT NULL,
    school_year INTEGER NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    school_id BIGINT NOT NULL,
    home_room_teacher_id BIGINT,
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE,
    created_by VARCHAR(100) NOT NULL DEFAULT '',
    updated_by VARCHAR(100) NOT NULL DEFAULT '',

    CONSTRAINT fk_sections_school FOREIGN KEY (school_id) REFERENCES schools(id),
    CONSTRAINT fk_sections_teacher FOREIGN KEY (home_room_teacher_id) REFERENCES teachers(id),
    CONSTRAINT valid_capacity CHECK (capacity > 0)
);

CREATE INDEX IF NOT EXISTS idx_sections_school ON sections(school_id, school_year);

ALTER TABLE students
    ADD CONSTRAINT fk_students_section FOREIGN KEY (section_id) REFERENCES sections(id);

CREATE TABLE IF NOT EXISTS academic_periods (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    period_type SMALLINT NOT NULL,
    school_year INTEGER NOT NULL,
    period_number INTEGER NOT NULL,
    start_date TIMESTAMP WITH TIME ZONE NOT NULL,
    end_date TIMESTAMP WITH TIME ZONE NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    school_id BIGINT NOT NULL,
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE,
    created_by VARCHAR(100) NOT NULL DEFAULT '',
    updated_by VARCHAR(100) NOT NULL DEFAULT '',

    CONSTRAINT fk_academic_periods_school FOREIGN KEY (school_id) REFERENCES schools(id),
    CONSTRAINT valid_period_dates CHECK (start_date < end_date)
);

CREATE INDEX IF NOT EXISTS idx_academic_periods_school ON academic_periods(school_id, school_year);
`

const migration002Down = `
DROP TABLE IF EXISTS academic_periods;
ALTER TABLE students DROP CONSTRAINT IF EXISTS fk_students_section;
DROP TABLE IF EXISTS sections;
DROP TABLE IF EXISTS subject_teachers;
DROP TABLE IF EXISTS subjects;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: GRADES AND ATTENDANCE
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
CREATE TABLE IF NOT EXISTS grades (
    id BIGSERIAL PRIMARY KEY,
    score DOUBLE PRECISION NOT NULL,
    max_score DOUBLE PRECISION NOT NULL,
    comments VARCHAR(500) NOT NULL DEFAULT '',
    grade_date TIMESTAMP WITH TIME ZONE NOT NULL,
    student_id BIGINT NOT NULL,
    subject_id BIGINT NOT NULL,
    academic_period_id BIGINT NOT NULL,
    teacher_id BIGINT,
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE,
    created_by VARCHAR(100) NOT NULL DEFAULT '',
    updated_by VARCHAR(100) NOT NULL DEFAULT '',

    CONSTRAINT fk_grades_student FOREIGN KEY (student_id) REFERENCES students(id),
    CONSTRAINT fk_grades_subject FOREIGN KEY (subject_id) REFERENCES subjects(id),
    CONSTRAINT fk_grades_period FOREIGN KEY (academic_period_id) REFERENCES academic_periods(id),
    CONSTRAINT fk_grades_teacher FOREIGN KEY (teacher_id) REFERENCES teachers(id),
    CONSTRAINT valid_score CHECK (score >= 0 AND max_score > 0 AND score <= max_score)
);

CREATE INDEX IF NOT EXISTS idx_grades_student_date ON grades(student_id, grade_date, id) WHERE NOT is_deleted;
CREATE INDEX IF NOT EXISTS idx_grades_student_period ON grades(student_id, academic_period_id) WHERE NOT is_deleted;

CREATE TABLE IF NOT EXISTS attendances (
    id BIGSERIAL PRIMARY KEY,
    date DATE NOT NULL,
    status SMALLINT NOT NULL,
    notes VARCHAR(500) NOT NULL DEFAULT '',
    arrival_time TIME,
    student_id BIGINT NOT NULL,
    teacher_id BIGINT,
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE,
    created_by VARCHAR(100) NOT NULL DEFAULT '',
    updated_by VARCHAR(100) NOT NULL DEFAULT '',

    CONSTRAINT fk_attendances_student FOREIGN KEY (student_id) REFERENCES students(id),
    CONSTRAINT fk_attendances_teacher FOREIGN KEY (teacher_id) REFERENCES teachers(id),
    CONSTRAINT valid_status CHECK (status BETWEEN 0 AND 4)
);

CREATE INDEX IF NOT EXISTS idx_attendances_student_date ON attendances(student_id, date);
`

const migration003Down = `
DROP TABLE IF EXISTS attendances;
DROP TABLE IF EXISTS grades;
`
