package router

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/mehdirazajaffri/leads-management-system/internal/http"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
	"github.com/mehdirazajaffri/leads-management-system/platform/metrics"
)

type routerConfig struct{}

func (routerConfig) GetHTTPAddr() string        { return ":0" }
func (routerConfig) GetCORSAllowAll() bool      { return false }
func (routerConfig) GetCORSOrigins() []string   { return []string{"http://localhost:3000"} }
func (routerConfig) GetCORSAllowCreds() bool    { return true }
func (routerConfig) GetRateLimitEnabled() bool  { return false }
func (routerConfig) GetJWTAccessSecret() string { return "secret" }

type pingModule struct{}

func (pingModule) Name() string { return "ping" }
func (pingModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	ctx.Admin.GET("/secret", func(c *gin.Context) { c.Status(http.StatusOK) })
}

func newTestApp(t *testing.T, health map[string]apphttp.HealthChecker) (*gin.Engine, *prometheus.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	app := &apphttp.App{
		Config:   routerConfig{},
		Logger:   logger.NewWriter("production", io.Discard),
		Health:   health,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Modules:  []apphttp.Module{pingModule{}},
	}
	return New(app), reg
}

func redisCheck(t *testing.T, addr string) apphttp.HealthChecker {
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	return apphttp.HealthCheckFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestReadiness(t *testing.T) {
	mr := miniredis.RunT(t)
	postgresOK := apphttp.HealthCheckFunc(func(context.Context) error { return nil })

	engine, _ := newTestApp(t, map[string]apphttp.HealthChecker{
		"postgres": postgresOK,
		"redis":    redisCheck(t, mr.Addr()),
	})

	w := get(engine, "/api/ready")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"postgres":"ok","redis":"ok"}}`, w.Body.String())

	mr.Close()
	w = get(engine, "/api/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"postgres":"ok"`)
	assert.Contains(t, w.Body.String(), `"status":"unavailable"`)
}

func TestReadinessReportsDatabaseFailure(t *testing.T) {
	engine, _ := newTestApp(t, map[string]apphttp.HealthChecker{
		"postgres": apphttp.HealthCheckFunc(func(context.Context) error { return errors.New("connection refused") }),
	})

	w := get(engine, "/api/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestRoutesAndMetrics(t *testing.T) {
	engine, _ := newTestApp(t, nil)

	assert.Equal(t, http.StatusOK, get(engine, "/api/health").Code)
	assert.Equal(t, "pong", get(engine, "/api/v1/ping").Body.String())
	assert.Equal(t, http.StatusUnauthorized, get(engine, "/api/v1/admin/secret").Code)

	body := get(engine, "/metrics").Body.String()
	assert.Contains(t, body, `leads_http_requests_total{method="GET",route="/api/v1/ping",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	engine, _ := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
