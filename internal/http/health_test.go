package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping() error { return p.err }

func healthStatus(t *testing.T, db Pinger) (int, HealthResponse) {
	t.Helper()

	router := gin.New()
	router.GET("/health", NewHealthController(db, "1.0.0").Status)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var response HealthResponse
	decode(t, w, &response)
	return w.Code, response
}

func TestHealthController_Status(t *testing.T) {
	t.Run("healthy when the store answers", func(t *testing.T) {
		code, resp := healthStatus(t, stubPinger{})
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "1.0.0", resp.Version)
		assert.Equal(t, "ok", resp.Checks["database"])
		assert.NotEmpty(t, resp.Time)
	})

	t.Run("not configured", func(t *testing.T) {
		code, resp := healthStatus(t, nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "not configured", resp.Checks["database"])
	})

	t.Run("unhealthy when ping fails", func(t *testing.T) {
		code, resp := healthStatus(t, stubPinger{err: errors.New("database is locked")})
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Contains(t, resp.Checks["database"], "database is locked")
	})
}

func TestHealth_ClosedManager(t *testing.T) {
	srv := setupServer(t)
	require.NoError(t, srv.manager.Close())

	w := srv.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "database is not open")
}
