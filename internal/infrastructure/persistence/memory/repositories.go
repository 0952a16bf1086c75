package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/asidocente/school-records/internal/domain/academicperiod"
	"github.com/asidocente/school-records/internal/domain/attendance"
	"github.com/asidocente/school-records/internal/domain/grade"
	"github.com/asidocente/school-records/internal/domain/parent"
	"github.com/asidocente/school-records/internal/domain/school"
	"github.com/asidocente/school-records/internal/domain/section"
	"github.com/asidocente/school-records/internal/domain/student"
	"github.com/asidocente/school-records/internal/domain/subject"
	"github.com/asidocente/school-records/internal/domain/teacher"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHOOLS
// ══════════════════════════════════════════════════════════════════════════════

type schoolRepo struct{ r *repos }

func (x schoolRepo) Add(ctx context.Context, s *school.School) error {
	t, release, err := x.r.enter(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	for _, row := range t.schools.rows {
		if strings.EqualFold(row.Code, s.Code) {
			return school.ErrDuplicateCode
		}
	}
	s.ID = t.schools.next()
	t.schools.rows[s.ID] = *s
	x.r.written++
	return nil
}

func (x schoolRepo) Update(ctx context.Context, s *school.School) error {
	t, release, err := x.r.enter(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := t.schools.rows[s.ID]; !ok {
		return school.ErrSchoolNotFound
	}
	t.schools.rows[s.ID] = *s
	x.r.written++
	return nil
}

func (x schoolRepo) GetByID(ctx context.Context, id int64) (*school.School, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()

	row, ok := t.schools.rows[id]
	if !ok || row.IsDeleted {
		return nil, school.ErrSchoolNotFound
	}
	return &row, nil
}

func (x schoolRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*school.School, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()
	return getMany(t.schools, ids), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

type studentRepo struct{ r *repos }

func (x studentRepo) Add(ctx context.Context, s *student.Student) error {
	t, release, err := x.r.enter(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	if identificationTaken(t.students.rows, s.Identification, func(v student.Student) string { return v.Identification }) {
		return student.ErrDuplicateIdentification
	}
	s.ID = t.students.next()
	t.students.rows[s.ID] = *s
	x.r.written++
	return nil
}

func (x studentRepo) Update(ctx context.Context, s *student.Student) error {
	t, release, err := x.r.enter(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := t.students.rows[s.ID]; !ok {
		return student.ErrStudentNotFound
	}
	t.students.rows[s.ID] = *s
	x.r.written++
	return nil
}

func (x studentRepo) GetByID(ctx context.Context, id int64) (*student.Student, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()

	row, ok := t.students.rows[id]
	if !ok || row.IsDeleted {
		return nil, student.ErrStudentNotFound
	}
	return &row, nil
}

func (x studentRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*student.Student, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()
	return getMany(t.students, ids), nil
}

func (x studentRepo) ExistsByIdentification(ctx context.Context, identification string) (bool, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return false, err
	}
	defer release()
	return identificationTaken(t.students.rows, identification, func(v student.Student) string { return v.Identification }), nil
}

func (x studentRepo) matching(t *tables, filter student.ListFilter) []*student.Student {
	var out []*student.Student
	for _, row := range t.students.rows {
		if filter.Matches(&row) {
			out = append(out, &row)
		}
	}
	slices.SortFunc(out, func(a, b *student.Student) int {
		switch {
		case student.Less(a, b):
			return -1
		case student.Less(b, a):
			return 1
		default:
			return 0
		}
	})
	return out
}

func (x studentRepo) List(ctx context.Context, filter student.ListFilter) ([]*student.Student, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()

	all := x.matching(t, filter)
	if filter.Offset >= len(all) {
		return []*student.Student{}, nil
	}
	all = all[max(filter.Offset, 0):]
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}
	return all, nil
}

func (x studentRepo) Count(ctx context.Context, filter student.ListFilter) (int, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return 0, err
	}
	defer release()

	n := 0
	for _, row := range t.students.rows {
		if filter.Matches(&row) {
			n++
		}
	}
	return n, nil
}

func (x studentRepo) CountBySection(ctx context.Context, sectionID int64) (int, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return 0, err
	}
	defer release()

	n := 0
	for _, row := range t.students.rows {
		if !row.IsDeleted && row.IsActive && row.SectionID != nil && *row.SectionID == sectionID {
			n++
		}
	}
	return n, nil
}

func (x studentRepo) LinkParents(ctx context.Context, studentID int64, parentIDs []int64) error {
	t, release, err := x.r.enter(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := t.students.rows[studentID]; !ok {
		return student.ErrStudentNotFound
	}
	for _, pid := range parentIDs {
		if _, ok := t.parents.rows[pid]; !ok {
			return parent.ErrParentNotFound
		}
		if t.studentParents.add(studentID, pid) {
			x.r.written++
		}
	}
	return nil
}

func (x studentRepo) ParentIDs(ctx context.Context, studentID int64) ([]int64, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()

	ids := make([]int64, 0, len(t.studentParents[studentID]))
	for id := range t.studentParents[studentID] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PARENTS
// ══════════════════════════════════════════════════════════════════════════════

type parentRepo struct{ r *repos }

func (x parentRepo) Add(ctx context.Context, p *parent.Parent) error {
	t, release, err := x.r.enter(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	if identificationTaken(t.parents.rows, p.Identification, func(v parent.Parent) string { return v.Identification }) {
		return parent.ErrDuplicateIdentification
	}
	p.ID = t.parents.next()
	t.parents.rows[p.ID] = *p
	x.r.written++
	return nil
}

func (x parentRepo) GetByID(ctx context.Context, id int64) (*parent.Parent, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()

	row, ok := t.parents.rows[id]
	if !ok || row.IsDeleted {
		return nil, parent.ErrParentNotFound
	}
	return &row, nil
}

func (x parentRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*parent.Parent, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()
	return getMany(t.parents, ids), nil
}

func (x parentRepo) ExistsByIdentification(ctx context.Context, identification string) (bool, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return false, err
	}
	defer release()
	return identificationTaken(t.parents.rows, identification, func(v parent.Parent) string { return v.Identification }), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHERS
// ══════════════════════════════════════════════════════════════════════════════

type teacherRepo struct{ r *repos }

func (x teacherRepo) Add(ctx context.Context, tc *teacher.Teacher) error {
	t, release, err := x.r.enter(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	if identificationTaken(t.teachers.rows, tc.Identification, func(v teacher.Teacher) string { return v.Identification }) {
		return teacher.ErrDuplicateIdentification
	}
	tc.ID = t.teachers.next()
	t.teachers.rows[tc.ID] = *tc
	x.r.written++
	return nil
}

func (x teacherRepo) GetByID(ctx context.Context, id int64) (*teacher.Teacher, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()

	row, ok := t.teachers.rows[id]
	if !ok || row.IsDeleted {
		return nil, teacher.ErrTeacherNotFound
	}
	return &row, nil
}

func (x teacherRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*teacher.Teacher, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()
	return getMany(t.teachers, ids), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECTS
// ══════════════════════════════════════════════════════════════════════════════

type subjectRepo struct{ r *repos }

func (x subjectRepo) Add(ctx context.Context, s *subject.Subject) error {
	t, release, err := x.r.enter(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	for _, row := range t.subjects.rows {
		if row.SchoolID == s.SchoolID && strings.EqualFold(row.Code, s.Code) {
			return subject.ErrDuplicateCode
		}
	}
	s.ID = t.subjects.next()
	t.subjects.rows[s.ID] = *s
	x.r.written++
	return nil
}

func (x subjectRepo) GetByID(ctx context.Context, id int64) (*subject.Subject, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()

	row, ok := t.subjects.rows[id]
	if !ok || row.IsDeleted {
		return nil, subject.ErrSubjectNotFound
	}
	return &row, nil
}

func (x subjectRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*subject.Subject, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()
	return getMany(t.subjects, ids), nil
}

func (x subjectRepo) AssignTeacher(ctx context.Context, subjectID, teacherID int64) error {
	t, release, err := x.r.enter(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := t.subjects.rows[subjectID]; !ok {
		return subject.ErrSubjectNotFound
	}
	if _, ok := t.teachers.rows[teacherID]; !ok {
		return teacher.ErrTeacherNotFound
	}
	if t.subjectTeachers.add(subjectID, teacherID) {
		x.r.written++
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SECTIONS & ACADEMIC PERIODS
// ══════════════════════════════════════════════════════════════════════════════

type sectionRepo struct{ r *repos }

func (x sectionRepo) Add(ctx context.Context, s *section.Section) error {
	t, release, err := x.r.enter(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	s.ID = t.sections.next()
	t.sections.rows[s.ID] = *s
	x.r.written++
	return nil
}

func (x sectionRepo) GetByID(ctx context.Context, id int64) (*section.Section, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()

	row, ok := t.sections.rows[id]
	if !ok || row.IsDeleted {
		return nil, section.ErrSectionNotFound
	}
	return &row, nil
}

func (x sectionRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*section.Section, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()
	return getMany(t.sections, ids), nil
}

type periodRepo struct{ r *repos }

func (x periodRepo) Add(ctx context.Context, p *academicperiod.AcademicPeriod) error {
	t, release, err := x.r.enter(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	p.ID = t.periods.next()
	t.periods.rows[p.ID] = *p
	x.r.written++
	return nil
}

func (x periodRepo) GetByID(ctx context.Context, id int64) (*academicperiod.AcademicPeriod, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()

	row, ok := t.periods.rows[id]
	if !ok || row.IsDeleted {
		return nil, academicperiod.ErrAcademicPeriodNotFound
	}
	return &row, nil
}

func (x periodRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*academicperiod.AcademicPeriod, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()
	return getMany(t.periods, ids), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADES & ATTENDANCE
// ══════════════════════════════════════════════════════════════════════════════

type gradeRepo struct{ r *repos }

func (x gradeRepo) Add(ctx context.Context, g *grade.Grade) error {
	t, release, err := x.r.enter(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := t.students.rows[g.StudentID]; !ok {
		return student.ErrStudentNotFound
	}
	if _, ok := t.subjects.rows[g.SubjectID]; !ok {
		return subject.ErrSubjectNotFound
	}
	if _, ok := t.periods.rows[g.AcademicPeriodID]; !ok {
		return academicperiod.ErrAcademicPeriodNotFound
	}
	g.ID = t.grades.next()
	t.grades.rows[g.ID] = *g
	x.r.written++
	return nil
}

func (x gradeRepo) GetByID(ctx context.Context, id int64) (*grade.Grade, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()

	row, ok := t.grades.rows[id]
	if !ok || row.IsDeleted {
		return nil, grade.ErrGradeNotFound
	}
	return &row, nil
}

func (x gradeRepo) ListByStudent(ctx context.Context, studentID int64, periodID *int64) ([]*grade.Grade, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()

	var out []*grade.Grade
	for _, row := range t.grades.rows {
		if row.IsDeleted || row.StudentID != studentID {
			continue
		}
		if periodID != nil && row.AcademicPeriodID != *periodID {
			continue
		}
		out = append(out, &row)
	}
	slices.SortFunc(out, func(a, b *grade.Grade) int {
		if c := a.GradeDate.Compare(b.GradeDate); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	return out, nil
}

type attendanceRepo struct{ r *repos }

func (x attendanceRepo) Add(ctx context.Context, a *attendance.Attendance) error {
	t, release, err := x.r.enter(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := t.students.rows[a.StudentID]; !ok {
		return student.ErrStudentNotFound
	}
	a.ID = t.attendances.next()
	t.attendances.rows[a.ID] = *a
	x.r.written++
	return nil
}

func (x attendanceRepo) GetByID(ctx context.Context, id int64) (*attendance.Attendance, error) {
	t, release, err := x.r.enter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer release()

	row, ok := t.attendances.rows[id]
	if !ok || row.IsDeleted {
		return nil, attendance.ErrAttendanceNotFound
	}
	return &row, nil
}

// identificationTaken scans live rows for a case-insensitive match.
func identificationTaken[T any](rows map[int64]T, identification string, key func(T) string) bool {
	identification = strings.TrimSpace(identification)
	for _, row := range rows {
		if strings.EqualFold(key(row), identification) {
			return true
		}
	}
	return false
}
