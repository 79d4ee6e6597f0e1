package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfare/tripfare/internal/api/middleware"
	"github.com/tripfare/tripfare/internal/api/models"
	"github.com/tripfare/tripfare/internal/api/response"
)

// requestWithID returns a request whose context carries a request ID.
func requestWithID(t *testing.T, method, path string) *http.Request {
	t.Helper()
	var processed *http.Request
	middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		processed = r
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, path, http.NoBody))
	require.NotNil(t, processed)
	return processed
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) models.Problem {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var problem models.Problem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&problem))
	return problem
}

func TestJSON_IncludesRequestID(t *testing.T) {
	req := requestWithID(t, http.MethodGet, "/v1/vehicle-types")
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, map[string]string{"message": "xin chào"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, middleware.GetRequestID(req.Context()), rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"xin chào"}`, rec.Body.String())
}

func TestJSON_WithoutRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	response.JSON(rec, httptest.NewRequest(http.MethodGet, "/test", http.NoBody), http.StatusOK, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Request-Id"))
	assert.Zero(t, rec.Body.Len())
}

func TestCreated_SetsLocation(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Created(rec, requestWithID(t, http.MethodPost, "/v1/bookings"), "/v1/bookings/bk_1", map[string]string{"id": "bk_1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/v1/bookings/bk_1", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	response.NoContent(rec, requestWithID(t, http.MethodDelete, "/v1/admin/fare-configs/old"))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Zero(t, rec.Body.Len())
}

func TestProblemWriters(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, *http.Request)
		status int
		typ    string
	}{
		{
			name: "bad request",
			write: func(w http.ResponseWriter, r *http.Request) {
				response.BadRequest(w, r, "validation failed", []models.FieldError{{Field: "origin.lat", Message: "out of range"}})
			},
			status: http.StatusBadRequest,
			typ:    models.ProblemTypeValidation,
		},
		{
			name:   "insufficient input",
			write:  func(w http.ResponseWriter, r *http.Request) { response.InsufficientInput(w, r, "no coordinates") },
			status: http.StatusUnprocessableEntity,
			typ:    models.ProblemTypeInsufficientInput,
		},
		{
			name:   "not found",
			write:  func(w http.ResponseWriter, r *http.Request) { response.NotFound(w, r, "booking not found") },
			status: http.StatusNotFound,
			typ:    models.ProblemTypeNotFound,
		},
		{
			name:   "conflict",
			write:  func(w http.ResponseWriter, r *http.Request) { response.Conflict(w, r, "already exists") },
			status: http.StatusConflict,
			typ:    models.ProblemTypeConflict,
		},
		{
			name:   "internal",
			write:  func(w http.ResponseWriter, r *http.Request) { response.InternalError(w, r, "boom") },
			status: http.StatusInternalServerError,
			typ:    models.ProblemTypeInternal,
		},
		{
			name:   "unavailable",
			write:  func(w http.ResponseWriter, r *http.Request) { response.ServiceUnavailable(w, r, "database down") },
			status: http.StatusServiceUnavailable,
			typ:    models.ProblemTypeUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestWithID(t, http.MethodPost, "/v1/quotes")
			rec := httptest.NewRecorder()
			tt.write(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Equal(t, tt.status, problem.Status)
			assert.Equal(t, tt.typ, problem.Type)
			assert.Equal(t, "/v1/quotes", problem.Instance)
			assert.Equal(t, middleware.GetRequestID(req.Context()), problem.TraceID)
		})
	}
}

func TestBadRequest_CarriesFieldErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	response.BadRequest(rec, requestWithID(t, http.MethodPost, "/v1/bookings"), "validation failed", []models.FieldError{
		{Field: "customerPhone", Message: "is required"},
	})

	problem := decodeProblem(t, rec)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "customerPhone", problem.Errors[0].Field)
}

func TestDecode(t *testing.T) {
	type payload struct {
		DistanceKm float64 `json:"distanceKm"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
		want    float64
	}{
		{"valid", `{"distanceKm": 12.5}`, false, 12.5},
		{"empty", ``, true, 0},
		{"malformed", `{"distanceKm":`, true, 0},
		{"unknown field", `{"distanceKm": 1, "distance": 2}`, true, 0},
		{"trailing data", `{"distanceKm": 1}{}`, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/fares:compute", strings.NewReader(tt.body))
			var got payload
			err := response.Decode(httptest.NewRecorder(), req, &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got.DistanceKm, 1e-9)
		})
	}
}

func TestDecode_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/quotes", http.NoBody)
	var dst map[string]any
	assert.ErrorIs(t, response.Decode(httptest.NewRecorder(), req, &dst), response.ErrEmptyBody)
}

func TestDecode_TooLarge(t *testing.T) {
	body := `{"distanceKm": "` + strings.Repeat("x", response.MaxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/quotes", strings.NewReader(body))
	var dst map[string]any
	assert.Error(t, response.Decode(httptest.NewRecorder(), req, &dst))
}
