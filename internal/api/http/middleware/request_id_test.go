package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GoSim-25-26J-441/railoptix-client/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func setupRouter(log *zap.Logger) (*gin.Engine, *string, *context.Context) {
	gin.SetMode(gin.TestMode)
	var seen string
	var reqCtx context.Context
	r := gin.New()
	r.Use(RequestID(log))
	r.GET("/ping", func(c *gin.Context) {
		seen = GetRequestID(c)
		reqCtx = c.Request.Context()
		c.Status(http.StatusNoContent)
	})
	return r, &seen, &reqCtx
}

func TestRequestID_Generated(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r, seen, reqCtx := setupRouter(zap.New(core))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

	rid := rr.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(rid)
	require.NoError(t, err)
	assert.Equal(t, rid, *seen)

	fromCtx, ok := logging.RequestID(*reqCtx)
	require.True(t, ok)
	assert.Equal(t, rid, fromCtx)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, rid, fields["request_id"])
	assert.Equal(t, "/ping", fields["path"])
	assert.EqualValues(t, http.StatusNoContent, fields["status"])
}

func TestRequestID_Propagated(t *testing.T) {
	r, seen, _ := setupRouter(zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "  client-supplied-id ")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, "client-supplied-id", rr.Header().Get(RequestIDHeader))
	assert.Equal(t, "client-supplied-id", *seen)
}
