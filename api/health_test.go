package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	router := newRouter(testConfig(), route{http.MethodGet, "/api/health", HealthCheck(map[string]Check{
		"postgres": okCheck,
		"redis":    okCheck,
	})})

	rec := do(router, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"services":{"postgres":true,"redis":true}}`, rec.Body.String())
}

func TestHealthCheck_Failure(t *testing.T) {
	router := newRouter(testConfig(), route{http.MethodGet, "/api/health", HealthCheck(map[string]Check{
		"postgres": okCheck,
		"s3":       failingCheck,
	})})

	rec := do(router, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"services":{"postgres":true,"s3":false}}`, rec.Body.String())
}

func TestHealthCheck_NoServices(t *testing.T) {
	router := newRouter(testConfig(), route{http.MethodGet, "/api/health", HealthCheck(nil)})

	rec := do(router, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"services":{}}`, rec.Body.String())
}

func TestHealthCheck_Timeout(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the health check timeout")
	}
	router := newRouter(testConfig(), route{http.MethodGet, "/api/health", HealthCheck(map[string]Check{
		"redis": okCheck,
		"slow":  blockingCheck,
	})})

	rec := do(router, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"services":{"redis":true,"slow":false}}`, rec.Body.String())
}
