package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubCheck struct {
	name string
	err  error
}

func (s stubCheck) Name() string { return s.name }
func (s stubCheck) Check() error { return s.err }

func setupRouter(checks ...HealthCheck) *gin.Engine {
	h := NewHealthHandler(checks...)
	r := gin.New()
	r.Any("/healthz", h.Health)
	return r
}

func TestHealth_GET(t *testing.T) {
	t.Parallel()

	router := setupRouter()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestHealth_Components(t *testing.T) {
	t.Parallel()

	router := setupRouter(
		stubCheck{name: "crypto"},
		stubCheck{name: "equities", err: errors.New("API key not found")},
	)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	// 劣化していてもライブネスは200
	require.Equal(t, http.StatusOK, w.Code)

	var res HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, map[string]string{"crypto": "ok", "equities": "API key not found"}, res.Components)
}

func TestHealth_ResponseStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method         string
		expectedStatus int
		emptyBody      bool
	}{
		{http.MethodGet, http.StatusOK, false},
		{http.MethodHead, http.StatusOK, true},
		{http.MethodOptions, http.StatusNoContent, true},
		{http.MethodPost, http.StatusOK, false},
		{http.MethodPut, http.StatusOK, false},
		{http.MethodDelete, http.StatusOK, false},
	}

	router := setupRouter(stubCheck{name: "crypto"})

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, "/healthz", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if tt.emptyBody {
				assert.Zero(t, w.Body.Len())
			}
		})
	}
}
