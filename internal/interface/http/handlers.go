package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/asidocente/school-records/internal/application"
	"github.com/asidocente/school-records/internal/application/command"
	"github.com/asidocente/school-records/internal/application/query"
	"github.com/asidocente/school-records/internal/application/result"
	"github.com/asidocente/school-records/internal/application/validation"
	"github.com/asidocente/school-records/internal/interface/http/handlers"
	"github.com/asidocente/school-records/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		handlers.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		return
	}
	status := s.deps.HealthChecker.Check(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	handlers.WriteJSON(w, code, status)
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// create decodes a command body and answers 201 with the new id. When
// location is set the Location header points at location+id.
func create[Req any](s *Server, h application.Handler[Req, result.Result[int64]], location string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if !s.decode(w, r, &req) {
			return
		}
		res, err := h(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !res.IsSuccess() {
			writeFailure(w, res)
			return
		}
		if location != "" {
			w.Header().Set("Location", location+strconv.FormatInt(res.Value(), 10))
		}
		handlers.WriteJSON(w, http.StatusCreated, res.Value())
	}
}

type assignSectionBody struct {
	SectionID int64 `json:"sectionId"`
}

func (s *Server) handleAssignSection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Student ID")
	if !ok {
		return
	}
	var body assignSectionBody
	if !s.decode(w, r, &body) {
		return
	}

	res, err := s.deps.App.AssignStudentSection(r.Context(), command.AssignStudentSectionCommand{
		StudentID: id,
		SectionID: body.SectionID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !res.IsSuccess() {
		writeFailure(w, res)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERIES
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Student ID")
	if !ok {
		return
	}
	res, err := s.deps.App.GetStudent(r.Context(), query.GetStudentQuery{ID: id})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !res.IsSuccess() {
		writeFailure(w, res)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, res.Value())
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	q := query.GetStudentsListQuery{SearchTerm: r.URL.Query().Get("searchTerm")}

	bad := validation.NewError()
	q.PageNumber = intParam(r, "pageNumber", "Page number", 1, bad)
	q.PageSize = intParam(r, "pageSize", "Page size", 10, bad)
	q.SchoolID = int64Ptr(r, "schoolId", "School ID", bad)
	q.SectionID = int64Ptr(r, "sectionId", "Section ID", bad)
	if v := int64Ptr(r, "gradeLevel", "Grade level", bad); v != nil {
		level := int(*v)
		q.GradeLevel = &level
	}
	if raw := r.URL.Query().Get("isActive"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			bad.Add("isActive", "Is active must be true or false")
		} else {
			q.IsActive = &active
		}
	}
	if !bad.Empty() {
		writeValidation(w, bad)
		return
	}

	page, err := s.deps.App.GetStudentsList(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, page)
}

func (s *Server) handleGradesByStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "studentId", "Student ID")
	if !ok {
		return
	}
	bad := validation.NewError()
	q := query.GetGradesByStudentQuery{
		StudentID:        id,
		AcademicPeriodID: int64Ptr(r, "academicPeriodId", "Academic period ID", bad),
	}
	if !bad.Empty() {
		writeValidation(w, bad)
		return
	}

	grades, err := s.deps.App.GetGradesByStudent(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, grades)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

type failure interface {
	Errors() []string
	Kind() result.Kind
}

// writeFailure answers a Failure result: 404 for missing entities, 400
// for everything else.
func writeFailure(w http.ResponseWriter, res failure) {
	status := http.StatusBadRequest
	if res.Kind() == result.KindNotFound {
		status = http.StatusNotFound
	}
	handlers.WriteJSON(w, status, handlers.ErrorBody{Errors: res.Errors()})
}

func writeValidation(w http.ResponseWriter, ve *validation.Error) {
	handlers.WriteJSON(w, http.StatusBadRequest, handlers.ErrorBody{
		Message: "Validation failed",
		Errors:  ve.Fields,
	})
}

// writeError maps an error returned next to a result. Validation failures
// are the caller's fault; anything else is logged and hidden.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := validation.AsError(err); ok {
		writeValidation(w, ve)
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.logger.WarnContext(r.Context(), "request aborted",
			slog.String("path", r.URL.Path),
			slog.String(logger.RequestIDKey, logger.RequestIDFrom(r.Context())),
			logger.Err(err))
		handlers.WriteJSON(w, http.StatusServiceUnavailable, handlers.ErrorBody{Message: handlers.InternalErrorMessage})
		return
	}
	s.logger.ErrorContext(r.Context(), "unhandled error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String(logger.RequestIDKey, logger.RequestIDFrom(r.Context())),
		logger.Err(err))
	handlers.WriteInternalError(w)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decode reads a single JSON object into dst. Unknown fields are ignored.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err == nil {
		if dec.More() {
			err = errors.New("unexpected data after JSON object")
		}
	}
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		handlers.WriteJSON(w, http.StatusRequestEntityTooLarge, handlers.ErrorBody{Message: "Request body too large"})
		return false
	}
	msg := "Request body must be a JSON object"
	if errors.Is(err, io.EOF) {
		msg = "Request body is required"
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		bad := validation.NewError()
		bad.Add(typeErr.Field, fieldLabel(lastSegment(typeErr.Field))+" has an invalid value")
		writeValidation(w, bad)
		return false
	}
	handlers.WriteJSON(w, http.StatusBadRequest, handlers.ErrorBody{Message: msg})
	return false
}

// pathID parses an integer path value. Range checks are left to the
// request's own rule set.
func pathID(w http.ResponseWriter, r *http.Request, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		bad := validation.NewError()
		bad.Add(name, label+" must be an integer")
		writeValidation(w, bad)
		return 0, false
	}
	return id, true
}

func intParam(r *http.Request, name, label string, def int, bad *validation.Error) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		bad.Add(name, label+" must be an integer")
		return def
	}
	return v
}

func int64Ptr(r *http.Request, name, label string, bad *validation.Error) *int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		bad.Add(name, label+" must be an integer")
		return nil
	}
	return &v
}

func lastSegment(field string) string {
	if i := strings.LastIndexByte(field, '.'); i >= 0 {
		return field[i+1:]
	}
	return field
}

// fieldLabel turns a JSON name into sentence case: "maxScore" → "Max score".
func fieldLabel(name string) string {
	if name == "" {
		return name
	}
	return validation.Label(strings.ToUpper(name[:1]) + name[1:])
}
