package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"yatube/internal/config"
	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLivenessCheck(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.get("/health/live", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "up", body["status"])
}

func TestReadinessCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		env := newTestEnv(t, true)
		resp := env.get("/health/ready", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "healthy", body.Checks["database"])
		assert.Equal(t, "healthy", body.Checks["redis"])
	})

	t.Run("without redis", func(t *testing.T) {
		env := newTestEnv(t, false)
		resp := env.get("/health/ready", nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("redis down", func(t *testing.T) {
		env := newTestEnv(t, true)
		env.redis.SetError("ERR server unavailable")
		resp := env.get("/health/ready", nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestNotFoundPage(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.get("/no/such/page/at/all/", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "misc/404", env.template())
	assert.Contains(t, readBody(t, resp), "/no/such/page/at/all/")
}

func TestServerErrorPage(t *testing.T) {
	env := newTestEnv(t, false)
	env.app.Get("/boom/a/b/", func(c *fiber.Ctx) error {
		return errors.New("database exploded")
	})

	resp := env.get("/boom/a/b/", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "misc/500", env.template())
	assert.NotContains(t, readBody(t, resp), "database exploded")
}

func TestErrorHandler_PlainStatuses(t *testing.T) {
	env := newTestEnv(t, false)
	env.app.Get("/forbidden/a/b/", func(c *fiber.Ctx) error {
		return models.NewForbiddenError("not yours")
	})
	env.app.Get("/teapot/a/b/", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	resp := env.get("/forbidden/a/b/", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "not yours", readBody(t, resp))

	resp = env.get("/teapot/a/b/", nil)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "short and stout", readBody(t, resp))
}

func TestMapServiceError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{models.NewNotFoundError("Post", 1), http.StatusNotFound},
		{models.NewValidationError("bad"), http.StatusBadRequest},
		{models.NewUnauthorizedError("who"), http.StatusUnauthorized},
		{models.NewForbiddenError("no"), http.StatusForbidden},
		{models.NewInternalError(errors.New("x")), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", models.NewNotFoundError("User", "leo")), http.StatusNotFound},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, mapServiceError(tc.err), tc.err.Error())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	env.get("/", nil)

	resp := env.get("/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "http_requests_total")
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.get("/", nil)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestRateLimitFailClosedWithoutRedis(t *testing.T) {
	failClosed := func(cfg *config.Config) {
		cfg.RateLimitEnabled = true
		cfg.RateLimitFailClosed = true
	}

	env := newTestEnv(t, false, failClosed)
	resp := env.postForm("/auth/login/", url.Values{"username": {"leo"}, "password": {"x"}}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	env = newTestEnv(t, false, func(cfg *config.Config) { cfg.RateLimitEnabled = true })
	resp = env.postForm("/auth/login/", url.Values{"username": {"leo"}, "password": {"x"}}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
