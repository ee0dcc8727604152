package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/SulTenZ/Food-Recipe-App/internal/config"
	"github.com/SulTenZ/Food-Recipe-App/internal/handlers"
)

func newTestServer() *HTTPServer {
	gin.SetMode(gin.TestMode)
	cfg := &config.AppConfig{Environment: "test"}
	checks := map[string]handlers.Pinger{
		"cache": handlers.PingFunc(func(context.Context) error { return nil }),
	}
	set := handlers.NewHandlerSet(zerolog.Nop(), cfg, handlers.Services{}, checks)
	return NewHTTPServer(cfg, zerolog.Nop(), set)
}

func TestServerExposesHealthAndMetrics(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"))
}

func TestServerUnknownRoute(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"route not found"}`, rec.Body.String())
}

func TestServerRejectsAnonymousRecipeAccess(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recipes", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
