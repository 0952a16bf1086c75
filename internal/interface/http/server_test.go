package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asidocente/school-records/internal/application"
	"github.com/asidocente/school-records/internal/application/pipeline"
	"github.com/asidocente/school-records/internal/application/query"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/internal/infrastructure/persistence/memory"
	"github.com/asidocente/school-records/internal/interface/http/handlers"
	"github.com/asidocente/school-records/pkg/logger"
)

var t0 = time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC)

type harness struct {
	t       *testing.T
	handler http.Handler
}

func newHarness(t *testing.T, st store.Store) *harness {
	t.Helper()
	clk := testclock.NewClock(t0)
	if st == nil {
		st = memory.New(nil, logger.Discard())
	}

	metrics := pipeline.NewMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics)

	checker := handlers.NewCompositeHealthChecker("test", clk)
	checker.AddCheck("database", handlers.NewDatabaseCheck(st))

	app := application.New(application.Deps{
		Store:   st,
		Clock:   clk,
		Logger:  logger.Discard(),
		Metrics: metrics,
	})
	srv := NewServer(DefaultConfig(), Dependencies{
		App:           app,
		HealthChecker: checker,
		Gatherer:      reg,
		Logger:        logger.Discard(),
		Clock:         clk,
	})
	return &harness{t: t, handler: srv.Handler()}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(h.t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) created(path string, body any) int64 {
	h.t.Helper()
	rec := h.do(http.MethodPost, path, body)
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	var id int64
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &id))
	return id
}

type errorBody struct {
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func studentBody(schoolID int64) map[string]any {
	return map[string]any{
		"firstName":      "Ana",
		"lastName":       "Mora",
		"identification": "1-1111-1111",
		"gradeLevel":     8,
		"dateOfBirth":    "2014-03-05T00:00:00Z",
		"schoolId":       schoolID,
	}
}

func TestServer_CreateAndGetStudent(t *testing.T) {
	h := newHarness(t, nil)
	schoolID := h.created("/api/schools", map[string]any{"name": "Escuela Central", "code": "EC"})

	rec := h.do(http.MethodPost, "/api/students", studentBody(schoolID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var id int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &id))
	assert.Equal(t, "/api/students/"+jsonInt(id), rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Header().Get(handlers.RequestIDHeader))

	rec = h.do(http.MethodGet, "/api/students/"+jsonInt(id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dto query.StudentDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "Ana Mora", dto.FullName)
	assert.Equal(t, "Escuela Central", dto.SchoolName)
	assert.Equal(t, 9, dto.Age)
}

func TestServer_ValidationFailure(t *testing.T) {
	h := newHarness(t, nil)

	body := studentBody(1)
	body["firstName"] = ""
	body["phone"] = "123"
	rec := h.do(http.MethodPost, "/api/students", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	got := decodeError(t, rec)
	assert.Equal(t, "Validation failed", got.Message)

	var fields map[string][]string
	require.NoError(t, json.Unmarshal(got.Errors, &fields))
	assert.Contains(t, fields, "firstName")
	assert.Equal(t, []string{"Phone number must be 8 digits"}, fields["phone"])
}

func TestServer_BlankNamesFailValidation(t *testing.T) {
	h := newHarness(t, nil)
	schoolID := h.created("/api/schools", map[string]any{"name": "Escuela Central", "code": "EC"})

	body := studentBody(schoolID)
	body["firstName"] = "   "
	body["identification"] = "\t"
	rec := h.do(http.MethodPost, "/api/students", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	got := decodeError(t, rec)
	assert.Equal(t, "Validation failed", got.Message)

	var fields map[string][]string
	require.NoError(t, json.Unmarshal(got.Errors, &fields))
	assert.Equal(t, []string{"First name is required"}, fields["firstName"])
	assert.Equal(t, []string{"Identification is required"}, fields["identification"])
}

func TestServer_FailureKinds(t *testing.T) {
	h := newHarness(t, nil)
	h.created("/api/schools", map[string]any{"name": "Escuela Central", "code": "EC"})

	t.Run("not found is 404", func(t *testing.T) {
		rec := h.do(http.MethodGet, "/api/students/99", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		var errs []string
		require.NoError(t, json.Unmarshal(decodeError(t, rec).Errors, &errs))
		assert.Equal(t, []string{"Student not found"}, errs)
	})

	t.Run("rule failure is 400", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/api/schools", map[string]any{"name": "Otra", "code": "ec"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var errs []string
		require.NoError(t, json.Unmarshal(decodeError(t, rec).Errors, &errs))
		require.Len(t, errs, 1)
	})

	t.Run("id zero goes through validation", func(t *testing.T) {
		rec := h.do(http.MethodGet, "/api/students/0", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var fields map[string][]string
		require.NoError(t, json.Unmarshal(decodeError(t, rec).Errors, &fields))
		assert.Equal(t, []string{"Student ID is required"}, fields["id"])
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/api/grades", "{")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Request body must be a JSON object", decodeError(t, rec).Message)
	})

	t.Run("wrong type names the field", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/api/grades", `{"score":"high"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var fields map[string][]string
		require.NoError(t, json.Unmarshal(decodeError(t, rec).Errors, &fields))
		assert.Equal(t, []string{"Score has an invalid value"}, fields["score"])
	})
}

func TestServer_ListAndGrades(t *testing.T) {
	h := newHarness(t, nil)
	schoolID := h.created("/api/schools", map[string]any{"name": "Escuela Central", "code": "EC"})
	studentID := h.created("/api/students", studentBody(schoolID))
	subjectID := h.created("/api/subjects", map[string]any{"name": "Matemáticas", "code": "MAT", "schoolId": schoolID})
	periodID := h.created("/api/academic-periods", map[string]any{
		"name": "I Trimestre", "periodType": 0, "schoolYear": 2024, "periodNumber": 1,
		"startDate": "2024-02-01T00:00:00Z", "endDate": "2024-05-01T00:00:00Z", "schoolId": schoolID,
	})
	h.created("/api/grades", map[string]any{
		"studentId": studentID, "subjectId": subjectID, "academicPeriodId": periodID,
		"score": 85, "maxScore": 100,
	})

	rec := h.do(http.MethodGet, "/api/students?searchTerm=mora&pageSize=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page query.PaginatedList[query.StudentListDTO]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.TotalCount)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Ana Mora", page.Items[0].FullName)

	rec = h.do(http.MethodGet, "/api/students?isActive=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodGet, "/api/grades/student/"+jsonInt(studentID)+"?academicPeriodId="+jsonInt(periodID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var grades []query.GradeDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grades))
	require.Len(t, grades, 1)
	assert.Equal(t, "B", grades[0].LetterGrade)

	rec = h.do(http.MethodGet, "/api/grades/student/12345", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestServer_AssignSection(t *testing.T) {
	h := newHarness(t, nil)
	schoolID := h.created("/api/schools", map[string]any{"name": "Escuela Central", "code": "EC"})
	studentID := h.created("/api/students", studentBody(schoolID))
	sectionID := h.created("/api/sections", map[string]any{
		"name": "5-1", "gradeLevel": 8, "schoolYear": 2024, "schoolId": schoolID, "capacity": 1,
	})

	other := studentBody(schoolID)
	other["firstName"], other["identification"] = "Beto", "2-2222-2222"
	h.created("/api/students", other)

	rec := h.do(http.MethodPut, "/api/students/"+jsonInt(studentID)+"/section", map[string]any{"sectionId": sectionID})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = h.do(http.MethodGet, "/api/students?sectionId="+jsonInt(sectionID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page query.PaginatedList[query.StudentListDTO]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.TotalCount)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Ana Mora", page.Items[0].FullName)

	rec = h.do(http.MethodGet, "/api/students?sectionId=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodPut, "/api/students/"+jsonInt(studentID)+"/section", map[string]any{"sectionId": 999})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type brokenStore struct{ store.Store }

func (brokenStore) Do(context.Context, store.TxFunc) (int, error) {
	return 0, errors.New("pq: relation \"students\" does not exist")
}

func (brokenStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestServer_InfrastructureErrorsAreHidden(t *testing.T) {
	h := newHarness(t, brokenStore{Store: memory.New(nil, logger.Discard())})

	rec := h.do(http.MethodPost, "/api/schools", map[string]any{"name": "Escuela Central", "code": "EC"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	got := decodeError(t, rec)
	assert.Equal(t, handlers.InternalErrorMessage, got.Message)
	assert.NotContains(t, rec.Body.String(), "relation")

	rec = h.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestServer_HealthAndMetrics(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status handlers.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Healthy)
	assert.True(t, status.Checks["database"].Healthy)

	h.do(http.MethodGet, "/api/students/1", nil)
	rec = h.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `school_records_requests_total{outcome="failure",request="GetStudent"} 1`))
}

func TestServer_KeepsCallerRequestID(t *testing.T) {
	h := newHarness(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(handlers.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(handlers.RequestIDHeader))
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
