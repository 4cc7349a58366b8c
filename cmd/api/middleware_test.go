package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaafa/internal/auth"
)

func TestAdminOnly(t *testing.T) {
	hash, err := auth.HashPassword("hunter2")
	require.NoError(t, err)

	app := newTestApplication(t, func(c *config) {
		c.auth.admin = adminConfig{enabled: true, user: "admin", passwordHash: hash}
	})
	mux := app.mount()

	t.Run("public routes stay open", func(t *testing.T) {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, "/api/categories/user", nil), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, "/api/categories", nil), mux)
		checkResponseCode(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rr := executeRequest(req, mux)
		checkResponseCode(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rr := executeRequest(jsonRequest(t, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "wrong"}), mux)
		checkResponseCode(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("login then list", func(t *testing.T) {
		rr := executeRequest(jsonRequest(t, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "hunter2"}), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)
		var tok tokenResponse
		decodeData(t, rr, &tok)
		require.NotEmpty(t, tok.Token)

		req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
		req.Header.Set("Authorization", "Bearer "+tok.Token)
		rr = executeRequest(req, mux)
		checkResponseCode(t, http.StatusOK, rr.Code)
	})
}

func TestAdminRoutesOpenByDefault(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/api/products", nil), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)
}

func TestRateLimiterMiddleware(t *testing.T) {
	app := newTestApplication(t, func(c *config) {
		c.rateLimiter.Enabled = true
		c.rateLimiter.RequestsPerTimeFrame = 2
		c.rateLimiter.TimeFrame = time.Minute
	})
	mux := app.mount()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/offers/user", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := executeRequest(req, mux)
		checkResponseCode(t, http.StatusOK, rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/offers/user", nil)
	req.RemoteAddr = "10.0.0.1:5678"
	rr := executeRequest(req, mux)
	checkResponseCode(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	// another client has its own window
	req = httptest.NewRequest(http.MethodGet, "/api/offers/user", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rr = executeRequest(req, mux)
	checkResponseCode(t, http.StatusOK, rr.Code)
}

func TestHealthCheck(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/health", nil), mux)
	checkResponseCode(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.SetBasicAuth("ops", "secret")
	rr = executeRequest(req, mux)
	checkResponseCode(t, http.StatusOK, rr.Code)

	var data map[string]string
	decodeData(t, rr, &data)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "memory", data["store"])
	assert.Equal(t, version, data["version"])
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	executeRequest(httptest.NewRequest(http.MethodGet, "/api/brands/user", nil), mux)

	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/metrics", nil), mux)
	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `zaafa_http_requests_total{method="GET",route="/api/brands/user",status="200"} 1`)
}

func TestAdminLoginTurnstile(t *testing.T) {
	hash, err := auth.HashPassword("hunter2")
	require.NoError(t, err)

	verifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("secret") == "ts-secret" && r.PostForm.Get("response") == "good" {
			w.Write([]byte(`{"success":true,"hostname":"shop.test"}`))
			return
		}
		w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer verifier.Close()

	app := newTestApplication(t, func(c *config) {
		c.auth.admin = adminConfig{enabled: true, user: "admin", passwordHash: hash}
		c.turnstile = turnstileConfig{secretKey: "ts-secret", expectedHostname: "shop.test", verifyURL: verifier.URL}
	})
	mux := app.mount()

	login := func(token string) int {
		rr := executeRequest(jsonRequest(t, http.MethodPost, "/api/admin/login", map[string]string{
			"username": "admin", "password": "hunter2", "turnstileToken": token,
		}), mux)
		return rr.Code
	}

	assert.Equal(t, http.StatusForbidden, login(""))
	assert.Equal(t, http.StatusForbidden, login("bad"))
	assert.Equal(t, http.StatusOK, login("good"))
}
