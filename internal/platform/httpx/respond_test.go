package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err      error
		status   int
		typeSlug string
	}{
		{ErrNotFound, http.StatusNotFound, "not-found"},
		{ErrDuplicate, http.StatusConflict, "duplicate"},
		{ErrValidation, http.StatusBadRequest, "validation-failed"},
		{ErrInvalidRange, http.StatusBadRequest, "invalid-range"},
		{ErrExternalSystem, http.StatusBadGateway, "external-system-failure"},
		{ErrPersistence, http.StatusServiceUnavailable, "persistence-failure"},
	}

	for _, tc := range cases {
		t.Run(tc.typeSlug, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, fmt.Errorf("%w: context", tc.err))

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var problem ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, problemTypeBase+tc.typeSlug, problem.Type)
			assert.Equal(t, tc.status, problem.Status)
		})
	}
}

func TestRespondErrorHidesUnknownDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, fmt.Errorf("internal detail that must not leak"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Empty(t, problem.Detail)
}
