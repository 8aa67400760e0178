package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpstream struct {
	connected bool
	transport string
}

func (f fakeUpstream) Connected() bool   { return f.connected }
func (f fakeUpstream) Transport() string { return f.transport }

func doHealth(t *testing.T, upstream Connectivity, method string) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	NewHealthHandler("railoptix-client", "1.0.0", upstream).RegisterRoutes(router)

	req, err := http.NewRequest(method, "/health", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var resp HealthResponse
	if rr.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	}
	return rr, resp
}

func TestHealthCheck(t *testing.T) {
	t.Run("connected upstream", func(t *testing.T) {
		rr, resp := doHealth(t, fakeUpstream{connected: true, transport: "websocket"}, http.MethodGet)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "railoptix-client", resp.Service)
		assert.Equal(t, "1.0.0", resp.Version)
		assert.Equal(t, "connected", resp.Upstream)
		assert.Equal(t, "websocket", resp.Transport)
	})

	t.Run("lost upstream degrades", func(t *testing.T) {
		rr, resp := doHealth(t, fakeUpstream{}, http.MethodGet)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "disconnected", resp.Upstream)
		assert.Empty(t, resp.Transport)
	})

	t.Run("no upstream", func(t *testing.T) {
		_, resp := doHealth(t, nil, http.MethodGet)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "disabled", resp.Upstream)
	})
}

func TestHealthCheckMethodNotAllowed(t *testing.T) {
	rr, _ := doHealth(t, nil, http.MethodPost)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
