// Package app wires the store, the realtime channel, the backend client and
// the notifiers into one explicitly owned unit.
package app

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/GoSim-25-26J-441/railoptix-client/config"
	httpapi "github.com/GoSim-25-26J-441/railoptix-client/internal/api/http"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/bootstrap"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/backend"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/domain"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/notify"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/realtime"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/service"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/store"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const serviceName = "railoptix-client"

// ErrAlreadyRunning is returned when Run is called twice
var ErrAlreadyRunning = errors.New("app is already running")

// Options carries dependencies that override what cfg would build
type Options struct {
	HTTPClient *http.Client
	// Redis is used instead of dialing cfg.Redis.Addr; the caller keeps ownership
	Redis *redis.Client
}

// App owns the single live channel and everything fed by it
type App struct {
	cfg *config.Config
	log *zap.Logger

	Store   *store.Store
	Sync    *realtime.Client
	Backend *backend.Client
	Actions *service.Actions

	history   *notify.RedisNotifier
	redis     *redis.Client
	ownsRedis bool
	sink      *dataSink

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
	closed  bool
}

// New builds the application from cfg. Redis is optional: when it is not
// configured or cannot be reached alerts only go to the log.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts Options) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	st := store.New(store.OptimisticPolicy{
		DelayStep:      cfg.KPI.DelayStep,
		AcceptanceStep: cfg.KPI.AcceptanceStep,
		AcceptanceCap:  cfg.KPI.AcceptanceCap,
	}, domain.DefaultKPIs())

	a := &App{
		cfg:   cfg,
		log:   log,
		Store: st,
		redis: opts.Redis,
		sink:  newDataSink(st),
	}

	if a.redis == nil && cfg.Redis.Addr != "" {
		client, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("redis unavailable, alerts will only be logged", zap.Error(err))
		} else {
			a.redis = client
			a.ownsRedis = true
		}
	}

	notifiers := notify.Multi{notify.NewLogNotifier(log.Named("alerts"))}
	if a.redis != nil {
		a.history = notify.NewRedisNotifier(a.redis, cfg.Redis.AlertChannel)
		notifiers = append(notifiers, a.history)
	}

	syncClient, err := realtime.NewClient(realtime.Options{
		BaseURL:         cfg.Backend.URL,
		Transports:      cfg.Sync.Transports,
		RefreshInterval: cfg.Sync.RefreshInterval,
		Reconnect: realtime.ReconnectPolicy{
			Enabled:         cfg.Sync.ReconnectEnabled,
			InitialInterval: cfg.Sync.ReconnectInitial,
			MaxInterval:     cfg.Sync.ReconnectMax,
			MaxAttempts:     cfg.Sync.ReconnectMaxAttempts,
		},
		HTTPClient:    opts.HTTPClient,
		NotifyEnabled: cfg.Notify.Enabled,
	}, a.sink, notifiers, log)
	if err != nil {
		a.closeRedis()
		return nil, err
	}
	a.Sync = syncClient

	a.Backend = backend.NewClient(cfg.Backend.URL, backend.Options{
		Timeout:    cfg.Backend.Timeout,
		RateLimit:  cfg.Backend.RateLimit,
		Burst:      cfg.Backend.RateBurst,
		HTTPClient: opts.HTTPClient,
	})
	a.Actions = service.NewActions(a.Backend, st, log)

	return a, nil
}

// Run owns the realtime channel until ctx is cancelled or Close is called
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.running || a.closed {
		a.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	a.running = true
	done := a.done
	a.mu.Unlock()

	defer close(done)
	defer cancel()

	a.log.Info("starting realtime sync",
		zap.String("backend", a.cfg.Backend.URL),
		zap.Strings("transports", a.cfg.Sync.Transports),
	)
	return a.Sync.Run(ctx)
}

// FirstData is closed once the first data_update has been applied
func (a *App) FirstData() <-chan struct{} {
	return a.sink.first
}

// AlertHistory returns the Redis alert history, or nil without Redis
func (a *App) AlertHistory() httpapi.AlertHistory {
	if a.history == nil {
		return nil
	}
	return a.history
}

// Router builds the mirror API over this app's state
func (a *App) Router() *gin.Engine {
	return bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        a.cfg.App.Version,
		Logger:         a.log,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		Upstream:       a.Sync,
		State:          a.Store,
		Actions:        a.Actions,
		Alerts:         a.AlertHistory(),
	})
}

// Close stops the channel and its scheduler, waits for them, then closes the
// store so late events are dropped.
func (a *App) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	cancel, done := a.cancel, a.done
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	a.Store.Close()
	a.closeRedis()
}

func (a *App) closeRedis() {
	if a.ownsRedis && a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("failed to close redis", zap.Error(err))
		}
	}
}

// dataSink forwards events to the store and marks the first full snapshot
type dataSink struct {
	store *store.Store
	once  sync.Once
	first chan struct{}
}

func newDataSink(s *store.Store) *dataSink {
	return &dataSink{store: s, first: make(chan struct{})}
}

func (d *dataSink) Apply(ev domain.Event) error {
	if err := d.store.Apply(ev); err != nil {
		return err
	}
	if _, ok := ev.(domain.DataUpdate); ok {
		d.once.Do(func() { close(d.first) })
	}
	return nil
}
