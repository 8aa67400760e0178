package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/domain"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopActions struct{}

func (noopActions) AcceptSuggestion(context.Context, string, string) error { return nil }

func (noopActions) RunSimulation(context.Context, domain.SimulationScenario) (*domain.SimulationResult, error) {
	return &domain.SimulationResult{}, nil
}

func testRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return BuildRouter(RouterDeps{
		ServiceName:    "railoptix-client",
		Version:        "test",
		AllowedOrigins: origins,
		State:          store.New(store.DefaultOptimisticPolicy(), domain.DefaultKPIs()),
		Actions:        noopActions{},
	})
}

func TestBuildRouter_Routes(t *testing.T) {
	r := testRouter(nil)

	for _, path := range []string{"/health", "/healthz", "/metrics", "/api/v1/state"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.NotEmpty(t, rr.Header().Get("X-Request-Id"), path)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBuildRouter_CORS(t *testing.T) {
	r := testRouter([]string{"https://railoptix.example"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/state", nil)
	req.Header.Set("Origin", "https://railoptix.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://railoptix.example", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/state", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := OpenRedis(context.Background(), RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())

	_, err = OpenRedis(context.Background(), RedisOptions{})
	require.Error(t, err)

	addr := mr.Addr()
	mr.Close()
	_, err = OpenRedis(context.Background(), RedisOptions{Addr: addr, PingTO: 200 * time.Millisecond})
	require.Error(t, err)
}

func TestSetGinMode(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	SetGinMode("Production")
	assert.Equal(t, gin.ReleaseMode, gin.Mode())
	SetGinMode("test")
	assert.Equal(t, gin.TestMode, gin.Mode())
	SetGinMode("development")
	assert.Equal(t, gin.DebugMode, gin.Mode())
}
