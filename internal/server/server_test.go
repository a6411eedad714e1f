package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devconnect/internal/config"
	"devconnect/internal/middleware"
	"devconnect/internal/models"
	"devconnect/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server *Server
	app    *fiber.App
	redis  *miniredis.Miniredis
}

func testConfig() *config.Config {
	return &config.Config{
		Env:           "test",
		Port:          "0",
		JWTSecret:     "test-secret-that-is-long-enough-123",
		TokenTTL:      time.Hour,
		GitHubAPIURL:  "http://127.0.0.1:1",
		GitHubTimeout: time.Second,
	}
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})

	s, err := NewServerWithDeps(cfg, testutil.NewSQLiteDB(t), rdb)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	return &testEnv{server: s, app: s.NewApp(), redis: mr}
}

// do sends a request through the app and decodes the JSON answer into out when given.
func (e *testEnv) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

func TestNewServerWithDeps_RequiresDatabase(t *testing.T) {
	_, err := NewServerWithDeps(testConfig(), nil, nil)
	assert.Error(t, err)
}

func TestHealthChecks(t *testing.T) {
	env := newTestEnv(t)

	var live map[string]any
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/live", "", nil, &live))
	assert.Equal(t, "up", live["status"])

	var ready struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/ready", "", nil, &ready))
	assert.Equal(t, "healthy", ready.Status)
	assert.Equal(t, "healthy", ready.Checks["database"])
	assert.Equal(t, "healthy", ready.Checks["redis"])

	env.redis.Close()

	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/health", "", nil, &ready))
	assert.Equal(t, "unhealthy", ready.Status)
	assert.Equal(t, "unhealthy", ready.Checks["redis"])
}

func TestReadinessCheck_WithoutRedis(t *testing.T) {
	s, err := NewServerWithDeps(testConfig(), testutil.NewSQLiteDB(t), nil)
	require.NoError(t, err)
	env := &testEnv{server: s, app: s.NewApp()}

	var ready struct {
		Checks map[string]string `json:"checks"`
	}
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/ready", "", nil, &ready))
	assert.Equal(t, "disabled", ready.Checks["redis"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	var body models.ErrorResponse
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/nowhere", "", nil, &body))
	assert.NotEmpty(t, body.Error)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	env := newTestEnv(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/sessions/me"},
		{http.MethodGet, "/api/profiles/me"},
		{http.MethodPost, "/api/profiles"},
		{http.MethodDelete, "/api/profiles"},
		{http.MethodPut, "/api/profiles/experience"},
		{http.MethodDelete, "/api/profiles/experience/abc"},
		{http.MethodPut, "/api/profiles/education"},
		{http.MethodDelete, "/api/profiles/education/abc"},
		{http.MethodGet, "/api/posts"},
		{http.MethodGet, "/api/posts/1"},
		{http.MethodPost, "/api/posts"},
		{http.MethodDelete, "/api/posts/1"},
		{http.MethodPut, "/api/posts/likes/1"},
		{http.MethodPut, "/api/posts/unlikes/1"},
		{http.MethodPost, "/api/posts/comments/1"},
		{http.MethodDelete, "/api/posts/comments/1/abc"},
	}

	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			var body models.ErrorResponse
			assert.Equal(t, http.StatusUnauthorized, env.do(t, r.method, r.path, "", nil, &body))
			assert.Equal(t, "No token, authorization denied", body.Error)
		})
	}

	var body models.ErrorResponse
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/posts", "not-a-token", nil, &body))
	assert.Equal(t, "Token is not valid", body.Error)
}

func TestRegister_RateLimited(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.RateLimitEnabled = true })

	for i := 0; i < 3; i++ {
		status := env.do(t, http.MethodPost, "/api/identities", "", map[string]string{}, nil)
		assert.Equal(t, http.StatusBadRequest, status, "attempt %d", i+1)
	}

	var body models.ErrorResponse
	status := env.do(t, http.MethodPost, "/api/identities", "", map[string]string{}, &body)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", body.Code)
}

func TestRegister_RateLimitFailClosed(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.RateLimitEnabled = true
		c.RateLimitClosed = true
	})
	env.redis.Close()

	var body models.ErrorResponse
	status := env.do(t, http.MethodPost, "/api/identities", "", map[string]string{}, &body)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "SERVICE_UNAVAILABLE", body.Code)

	// logins fail open when configured to
	env = newTestEnv(t, func(c *config.Config) { c.RateLimitEnabled = true })
	env.redis.Close()

	status = env.do(t, http.MethodPost, "/api/sessions", "", map[string]string{}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "entry ID", humanizeParam("entryId"))
	assert.Equal(t, "comment ID", humanizeParam("commentId"))
	assert.Equal(t, "username", humanizeParam("username"))
}
