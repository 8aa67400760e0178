package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Upstream  string    `json:"upstream"`
	Transport string    `json:"transport,omitempty"`
}

// Connectivity reports the state of the realtime channel
type Connectivity interface {
	Connected() bool
	Transport() string
}

type HealthHandler struct {
	serviceName string
	version     string
	upstream    Connectivity
}

func NewHealthHandler(serviceName, version string, upstream Connectivity) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		upstream:    upstream,
	}
}

// HealthCheck always answers 200; a lost upstream degrades the status only
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Upstream:  "disabled",
	}
	if h.upstream != nil {
		if h.upstream.Connected() {
			resp.Upstream = "connected"
			resp.Transport = h.upstream.Transport()
		} else {
			resp.Status = "degraded"
			resp.Upstream = "disconnected"
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
