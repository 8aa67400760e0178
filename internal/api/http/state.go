package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/domain"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/notify"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StateSource is the reconciled view the mirror API exposes
type StateSource interface {
	Snapshot() store.Snapshot
	Subscribe() (<-chan uint64, func())
}

// Actions are the operator intents the mirror API forwards
type Actions interface {
	AcceptSuggestion(ctx context.Context, suggestionID, conflictID string) error
	RunSimulation(ctx context.Context, scenario domain.SimulationScenario) (*domain.SimulationResult, error)
}

// AlertHistory lists recently raised alerts
type AlertHistory interface {
	Recent(ctx context.Context, limit int) ([]notify.Alert, error)
}

// StateHandler serves the reconciled state and accepts intents for browser clients
type StateHandler struct {
	state     StateSource
	actions   Actions
	alerts    AlertHistory
	log       *zap.Logger
	keepAlive time.Duration
}

// NewStateHandler creates a StateHandler; alerts may be nil
func NewStateHandler(state StateSource, actions Actions, alerts AlertHistory, log *zap.Logger) *StateHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &StateHandler{
		state:     state,
		actions:   actions,
		alerts:    alerts,
		log:       log,
		keepAlive: 15 * time.Second,
	}
}

func (h *StateHandler) Register(r gin.IRouter) {
	r.GET("/state", h.GetState)
	r.GET("/state/stream", h.StreamState)
	r.POST("/suggestions/accept", h.AcceptSuggestion)
	r.POST("/simulations", h.RunSimulation)
	if h.alerts != nil {
		r.GET("/alerts", h.RecentAlerts)
	}
}

// GetState returns the current snapshot
func (h *StateHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.state.Snapshot())
}

// StreamState streams the snapshot using Server-Sent Events: one initial
// event, then one update per store version change.
func (h *StateHandler) StreamState(c *gin.Context) {
	updates, cancel := h.state.Subscribe()
	defer cancel()

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	snap := h.state.Snapshot()
	writeEvent(c, "initial", snap)
	flusher.Flush()
	lastVersion := snap.Version

	ctx := c.Request.Context()
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case _, open := <-updates:
			if !open {
				writeEvent(c, "closed", gin.H{"version": lastVersion})
				flusher.Flush()
				return
			}
			snap := h.state.Snapshot()
			if snap.Version == lastVersion {
				continue
			}
			lastVersion = snap.Version
			writeEvent(c, "update", snap)
			flusher.Flush()
		}
	}
}

func writeEvent(c *gin.Context, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(data))
}

type acceptRequest struct {
	SuggestionID string `json:"suggestion_id" binding:"required"`
	ConflictID   string `json:"conflict_id" binding:"required"`
}

// AcceptSuggestion forwards an acceptance to the backend
func (h *StateHandler) AcceptSuggestion(c *gin.Context) {
	var req acceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "suggestion_id and conflict_id are required"})
		return
	}

	err := h.actions.AcceptSuggestion(c.Request.Context(), req.SuggestionID, req.ConflictID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrMissingID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend did not accept the suggestion", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "accepted",
		"suggestion_id": req.SuggestionID,
		"conflict_id":   req.ConflictID,
		"kpis":          h.state.Snapshot().KPIs,
	})
}

// RunSimulation forwards a what-if scenario to the backend
func (h *StateHandler) RunSimulation(c *gin.Context) {
	scenario := domain.DefaultScenario()
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&scenario); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scenario body"})
			return
		}
	}

	res, err := h.actions.RunSimulation(c.Request.Context(), scenario)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"simulation": res})
	case errors.Is(err, domain.ErrInvalidScenario):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "simulation failed", "detail": err.Error()})
	}
}

// RecentAlerts lists the latest conflict alerts, newest first
func (h *StateHandler) RecentAlerts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	alerts, err := h.alerts.Recent(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("failed to list alerts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}
