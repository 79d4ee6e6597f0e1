package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfare/tripfare/internal/api/models"
	"github.com/tripfare/tripfare/internal/distance"
	"github.com/tripfare/tripfare/internal/fare"
	"github.com/tripfare/tripfare/internal/geo"
)

func TestWriteError(t *testing.T) {
	invalidPoint := geo.Point{Lat: 91}.Validate()

	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"insufficient input", distance.ErrInsufficientInput, http.StatusUnprocessableEntity, "coordinates, a distance"},
		{
			"invalid point wins over insufficient input",
			fmt.Errorf("%w: origin: %w", distance.ErrInsufficientInput, invalidPoint),
			http.StatusBadRequest,
			"latitude",
		},
		{
			"coincident endpoints",
			fmt.Errorf("%w: %w", distance.ErrInsufficientInput, distance.ErrCoincidentEndpoints),
			http.StatusUnprocessableEntity,
			"same place",
		},
		{"unknown fare config", fare.ErrConfigNotFound, http.StatusBadRequest, ""},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/quotes", http.NoBody)

			writeError(rec, req, zerolog.Nop(), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var problem models.Problem
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&problem))
			assert.Equal(t, tt.status, problem.Status)
			if tt.detail != "" {
				assert.Contains(t, problem.Detail, tt.detail)
			}
		})
	}
}
