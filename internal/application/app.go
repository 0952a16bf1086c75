// Package application assembles command and query handlers behind the
// request pipeline. Callers (the HTTP layer, tests) only see the typed
// entry points exposed by App.
package application

import (
	"context"
	"log/slog"

	"github.com/juju/clock"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/asidocente/school-records/internal/application/command"
	"github.com/asidocente/school-records/internal/application/pipeline"
	"github.com/asidocente/school-records/internal/application/query"
	"github.com/asidocente/school-records/internal/application/result"
	"github.com/asidocente/school-records/internal/application/validation"
	"github.com/asidocente/school-records/internal/domain/store"
)

// Handler is a pipeline-wrapped command or query entry point.
type Handler[Req, Res any] func(ctx context.Context, req Req) (Res, error)

// StudentCache is the read-model cache shared by GetStudent and the
// commands that change a student.
type StudentCache interface {
	query.StudentCache
	command.StudentCacheInvalidator
}

// Deps holds what App needs. Only Store is required.
type Deps struct {
	Store  store.Store
	Clock  clock.Clock
	Logger *slog.Logger

	// StudentCache may be nil.
	StudentCache StudentCache

	// Metrics may be nil.
	Metrics *pipeline.Metrics

	// TracerProvider defaults to a no-op provider.
	TracerProvider trace.TracerProvider

	// MaxPageSize caps GetStudentsList pages.
	MaxPageSize int
}

// App exposes every command and query.
type App struct {
	CreateStudent        Handler[command.CreateStudentCommand, result.Result[int64]]
	CreateParent         Handler[command.CreateParentCommand, result.Result[int64]]
	RegisterGrade        Handler[command.RegisterGradeCommand, result.Result[int64]]
	RecordAttendance     Handler[command.RecordAttendanceCommand, result.Result[int64]]
	AssignStudentSection Handler[command.AssignStudentSectionCommand, result.Result[int64]]
	CreateSchool         Handler[command.CreateSchoolCommand, result.Result[int64]]
	CreateTeacher        Handler[command.CreateTeacherCommand, result.Result[int64]]
	CreateSubject        Handler[command.CreateSubjectCommand, result.Result[int64]]
	CreateSection        Handler[command.CreateSectionCommand, result.Result[int64]]
	CreateAcademicPeriod Handler[command.CreateAcademicPeriodCommand, result.Result[int64]]

	GetStudent         Handler[query.GetStudentQuery, result.Result[query.StudentDTO]]
	GetStudentsList    Handler[query.GetStudentsListQuery, query.PaginatedList[query.StudentListDTO]]
	GetGradesByStudent Handler[query.GetGradesByStudentQuery, []query.GradeDTO]
}

// New wires handlers behind a pipeline of logging, metrics, tracing and
// validation, in that order.
func New(d Deps) *App {
	if d.Clock == nil {
		d.Clock = clock.WallClock
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.TracerProvider == nil {
		d.TracerProvider = noop.NewTracerProvider()
	}

	behaviors := []pipeline.Behavior{pipeline.Logging(d.Logger, d.Clock)}
	if d.Metrics != nil {
		behaviors = append(behaviors, d.Metrics.Behavior(d.Clock))
	}
	behaviors = append(behaviors,
		pipeline.Tracing(d.TracerProvider),
		pipeline.Validation(validation.New(d.Clock)),
	)
	p := pipeline.New(behaviors...)

	// A nil interface must stay nil, not a typed nil.
	var invalidator command.StudentCacheInvalidator
	var cache query.StudentCache
	if d.StudentCache != nil {
		invalidator, cache = d.StudentCache, d.StudentCache
	}

	st, clk := d.Store, d.Clock
	return &App{
		CreateStudent:        pipeline.Handle(p, "CreateStudent", command.NewCreateStudentHandler(st, clk).Handle),
		CreateParent:         pipeline.Handle(p, "CreateParent", command.NewCreateParentHandler(st, clk).Handle),
		RegisterGrade:        pipeline.Handle(p, "RegisterGrade", command.NewRegisterGradeHandler(st, clk).Handle),
		RecordAttendance:     pipeline.Handle(p, "RecordAttendance", command.NewRecordAttendanceHandler(st, clk).Handle),
		AssignStudentSection: pipeline.Handle(p, "AssignStudentSection", command.NewAssignStudentSectionHandler(st, invalidator, clk).Handle),
		CreateSchool:         pipeline.Handle(p, "CreateSchool", command.NewCreateSchoolHandler(st, clk).Handle),
		CreateTeacher:        pipeline.Handle(p, "CreateTeacher", command.NewCreateTeacherHandler(st, clk).Handle),
		CreateSubject:        pipeline.Handle(p, "CreateSubject", command.NewCreateSubjectHandler(st, clk).Handle),
		CreateSection:        pipeline.Handle(p, "CreateSection", command.NewCreateSectionHandler(st, clk).Handle),
		CreateAcademicPeriod: pipeline.Handle(p, "CreateAcademicPeriod", command.NewCreateAcademicPeriodHandler(st, clk).Handle),

		GetStudent:         pipeline.Handle(p, "GetStudent", query.NewGetStudentHandler(st, cache, clk).Handle),
		GetStudentsList:    pipeline.Handle(p, "GetStudentsList", query.NewGetStudentsListHandler(st, d.MaxPageSize).Handle),
		GetGradesByStudent: pipeline.Handle(p, "GetGradesByStudent", query.NewGetGradesByStudentHandler(st).Handle),
	}
}
