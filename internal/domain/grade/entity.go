// Package grade holds the Grade aggregate: a scored evaluation of one
// student in one subject during one academic period.
package grade

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/asidocente/school-records/internal/domain/shared"
)

const domainName = "grade"

// PassingPercentage is the minimum percentage that counts as a pass.
const PassingPercentage = 65.0

// Grade is an evaluation result. The percentage is always derived from
// Score and MaxScore, it is never stored on its own.
type Grade struct {
	shared.Audit

	Score     float64
	MaxScore  float64
	Comments  string
	GradeDate time.Time

	StudentID        int64
	SubjectID        int64
	AcademicPeriodID int64

	// TeacherID is nil when the grade was not attributed to a teacher.
	TeacherID *int64
}

// NewGradeParams contains the inputs for registering a grade.
type NewGradeParams struct {
	Score            float64
	MaxScore         float64
	StudentID        int64
	SubjectID        int64
	AcademicPeriodID int64
	TeacherID        *int64
	Comments         string
}

// NewGrade validates the score bounds and returns the grade together with
// its pending GradeRegistered event.
func NewGrade(params NewGradeParams, now time.Time) (*Grade, []shared.Event, error) {
	const op = "NewGrade"

	if err := checkScore(op, params.Score, params.MaxScore); err != nil {
		return nil, nil, err
	}
	switch {
	case params.StudentID <= 0:
		return nil, nil, shared.RuleViolation(domainName, op, "Student is required")
	case params.SubjectID <= 0:
		return nil, nil, shared.RuleViolation(domainName, op, "Subject is required")
	case params.AcademicPeriodID <= 0:
		return nil, nil, shared.RuleViolation(domainName, op, "Academic period is required")
	}

	g := &Grade{
		Audit:            shared.NewAudit(now),
		Score:            params.Score,
		MaxScore:         params.MaxScore,
		Comments:         strings.TrimSpace(params.Comments),
		GradeDate:        now.UTC(),
		StudentID:        params.StudentID,
		SubjectID:        params.SubjectID,
		AcademicPeriodID: params.AcademicPeriodID,
		TeacherID:        params.TeacherID,
	}

	registered := shared.NewGradeRegisteredEvent(g.StudentID, g.SubjectID, g.AcademicPeriodID,
		g.Percentage(), g.LetterGrade(), g.IsPassing(), now)
	return g, []shared.Event{registered}, nil
}

func checkScore(op string, score, maxScore float64) error {
	switch {
	case score < 0:
		return shared.RuleViolation(domainName, op, "Score cannot be negative")
	case maxScore <= 0:
		return shared.RuleViolation(domainName, op, "Max score must be greater than zero")
	case score > maxScore:
		return shared.RuleViolation(domainName, op, "Score cannot exceed max score")
	}
	return nil
}

// UpdateScore re-validates the new score against MaxScore.
func (g *Grade) UpdateScore(score float64, comments string, now time.Time) error {
	if err := checkScore("UpdateScore", score, g.MaxScore); err != nil {
		return err
	}
	g.Score = score
	g.Comments = strings.TrimSpace(comments)
	g.Touch(now)
	return nil
}

// Percentage returns score/maxScore*100 rounded to two decimals.
func (g *Grade) Percentage() float64 {
	return Percentage(g.Score, g.MaxScore)
}

// LetterGrade maps the percentage to A–F.
func (g *Grade) LetterGrade() string {
	return LetterFor(g.Percentage())
}

// IsPassing reports whether the percentage reaches PassingPercentage.
func (g *Grade) IsPassing() bool {
	return IsPassing(g.Percentage())
}

// Percentage computes round(score/maxScore*100, 2); zero when maxScore ≤ 0.
func Percentage(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	return math.RoundToEven(score/maxScore*100*100) / 100
}

// LetterFor maps a percentage to a letter with fixed thresholds.
func LetterFor(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 80:
		return "B"
	case percentage >= 70:
		return "C"
	case percentage >= PassingPercentage:
		return "D"
	default:
		return "F"
	}
}

// IsPassing reports whether a percentage is a pass.
func IsPassing(percentage float64) bool {
	return percentage >= PassingPercentage
}

// Repository defines storage operations for grades.
type Repository interface {
	Add(ctx context.Context, g *Grade) error
	GetByID(ctx context.Context, id int64) (*Grade, error)

	// ListByStudent returns the student's grades ordered by grade date
	// ascending, then id. A nil periodID means every period.
	ListByStudent(ctx context.Context, studentID int64, periodID *int64) ([]*Grade, error)
}

// ErrGradeNotFound is returned when a grade lookup misses.
var ErrGradeNotFound = shared.NotFound(domainName, "Grade")
