package bootstrap

import (
	"time"

	httpapi "github.com/GoSim-25-26J-441/railoptix-client/internal/api/http"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/api/http/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	Logger         *zap.Logger
	AllowedOrigins []string

	Upstream httpapi.Connectivity
	State    httpapi.StateSource
	Actions  httpapi.Actions
	// Alerts is optional
	Alerts httpapi.AlertHistory
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	log := dep.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(dep.AllowedOrigins)))
	r.Use(middleware.RequestID(log.Named("http")))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Upstream)
	healthHandler.RegisterRoutes(r)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	stateHandler := httpapi.NewStateHandler(dep.State, dep.Actions, dep.Alerts, log.Named("api"))
	stateHandler.Register(api)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
