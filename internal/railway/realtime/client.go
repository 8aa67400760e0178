package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/railoptix-client/internal/metrics"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/domain"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/events"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/notify"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	defaultPath             = "/socket.io/"
	defaultRefreshInterval  = 10 * time.Second
	defaultHandshakeTimeout = 20 * time.Second
	emitTimeout             = 5 * time.Second
	alertTimeout            = 3 * time.Second
)

// EventSink receives every decoded event, one at a time
type EventSink interface {
	Apply(ev domain.Event) error
}

// Options configures a Client
type Options struct {
	BaseURL          string
	Path             string
	Transports       []string
	RefreshInterval  time.Duration
	HandshakeTimeout time.Duration
	Reconnect        ReconnectPolicy
	Header           http.Header
	HTTPClient       *http.Client

	// NotifyEnabled gates conflict alerts
	NotifyEnabled bool
}

// Client maintains the server-push channel to the RailOptiX backend
type Client struct {
	opts     Options
	baseURL  *url.URL
	sink     EventSink
	notifier notify.Notifier
	log      *zap.Logger

	mu        sync.RWMutex
	transport Transport
}

// NewClient validates options and creates a Client. It does not connect.
func NewClient(opts Options, sink EventSink, notifier notify.Notifier, log *zap.Logger) (*Client, error) {
	if sink == nil {
		return nil, errors.New("event sink is required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", opts.BaseURL)
	}
	if opts.Path == "" {
		opts.Path = defaultPath
	}
	if len(opts.Transports) == 0 {
		opts.Transports = DefaultTransports
	}
	for _, name := range opts.Transports {
		if name != TransportWebSocket && name != TransportPolling {
			return nil, fmt.Errorf("unsupported transport %q", name)
		}
	}
	if opts.RefreshInterval == 0 {
		opts.RefreshInterval = defaultRefreshInterval
	}
	if opts.RefreshInterval < minRefreshInterval {
		return nil, fmt.Errorf("refresh interval %s below minimum %s", opts.RefreshInterval, minRefreshInterval)
	}
	if opts.HandshakeTimeout == 0 {
		opts.HandshakeTimeout = defaultHandshakeTimeout
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		opts:     opts,
		baseURL:  base,
		sink:     sink,
		notifier: notifier,
		log:      log.Named("realtime"),
	}, nil
}

// Connected reports whether a session has completed the namespace connect
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transport != nil
}

// Transport returns the name of the live transport, or "" when disconnected
func (c *Client) Transport() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.transport == nil {
		return ""
	}
	return c.transport.Name()
}

// Emit sends an argument-less event on the live session
func (c *Client) Emit(ctx context.Context, name string) error {
	c.mu.RLock()
	tr := c.transport
	c.mu.RUnlock()
	if tr == nil {
		return ErrNotConnected
	}

	p, err := eventPacket(name, nil)
	if err != nil {
		return err
	}
	if err := tr.Write(ctx, p); err != nil {
		return fmt.Errorf("failed to emit %s: %w", name, err)
	}
	return nil
}

// Run owns the channel and its refresh scheduler until ctx is cancelled.
// With reconnect disabled it returns the first session error.
func (c *Client) Run(ctx context.Context) error {
	sched, err := newRefreshScheduler(c.opts.RefreshInterval, c.refresh)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	bo := c.opts.Reconnect.backOff()
	for {
		connected, err := c.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			bo.Reset()
		}
		c.log.Warn("realtime session ended", zap.Error(err), zap.Bool("was_connected", connected))

		if !c.opts.Reconnect.Enabled {
			return err
		}
		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			return fmt.Errorf("%w: %w", ErrReconnectExhausted, err)
		}

		metrics.ReconnectAttempts.Inc()
		c.log.Info("reconnecting", zap.Duration("in", wait))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (c *Client) refresh() {
	if !c.Connected() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
	defer cancel()
	if err := c.Emit(ctx, domain.EventRequestUpdate); err != nil && !errors.Is(err, ErrNotConnected) {
		c.log.Warn("refresh request failed", zap.Error(err))
	}
}

// negotiate opens the first transport whose handshake succeeds
func (c *Client) negotiate(ctx context.Context) (Transport, *Handshake, error) {
	cfg := transportConfig{
		baseURL:    c.baseURL,
		path:       c.opts.Path,
		header:     c.opts.Header,
		httpClient: c.opts.HTTPClient,
	}

	var errs []error
	for _, name := range c.opts.Transports {
		tr, err := newTransport(name, cfg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		octx, cancel := context.WithTimeout(ctx, c.opts.HandshakeTimeout)
		hs, err := tr.Open(octx)
		cancel()
		if err == nil {
			metrics.TransportSessions.WithLabelValues(name).Inc()
			return tr, hs, nil
		}
		_ = tr.Close()
		c.log.Debug("transport unavailable", zap.String("transport", name), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, nil, fmt.Errorf("%w: %w", ErrNoTransport, errors.Join(errs...))
}

// session runs one transport session. It reports whether the namespace
// connect completed so the caller can reset its backoff.
func (c *Client) session(ctx context.Context) (connected bool, err error) {
	tr, hs, err := c.negotiate(ctx)
	if err != nil {
		return false, err
	}

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-sctx.Done()
		_ = tr.Close()
	}()
	defer func() {
		if connected {
			c.setDisconnected(tr)
		}
	}()

	c.log.Info("transport open",
		zap.String("transport", tr.Name()),
		zap.String("sid", hs.SID),
		zap.Int("ping_interval_ms", hs.PingInterval),
	)
	if err := tr.Write(sctx, connectPacket()); err != nil {
		return false, err
	}

	for {
		packets, err := tr.Read(sctx)
		if err != nil {
			if ctx.Err() != nil {
				return connected, nil
			}
			return connected, fmt.Errorf("read %s: %w", tr.Name(), err)
		}

		for _, p := range packets {
			switch p.Type {
			case PacketPing:
				if err := tr.Write(sctx, Packet{Type: PacketPong}); err != nil {
					return connected, err
				}
			case PacketClose:
				return connected, ErrServerClosed
			case PacketMessage:
				done, err := c.handleMessage(sctx, tr, p, &connected)
				if done {
					return connected, err
				}
			}
		}
	}
}

// handleMessage processes one Socket.IO packet; done ends the session
func (c *Client) handleMessage(ctx context.Context, tr Transport, p Packet, connected *bool) (bool, error) {
	sp, err := DecodeSocketPacket(p.Data)
	if err != nil {
		metrics.EventsDropped.WithLabelValues("bad_packet").Inc()
		c.log.Warn("dropping undecodable packet", zap.Error(err))
		return false, nil
	}
	if sp.Namespace != "/" {
		return false, nil
	}

	switch sp.Type {
	case SocketConnect:
		if *connected {
			return false, nil
		}
		*connected = true
		c.setConnected(tr)
		if err := c.Emit(ctx, domain.EventRequestUpdate); err != nil {
			c.log.Warn("initial refresh request failed", zap.Error(err))
		}
	case SocketConnectError:
		return true, fmt.Errorf("%w: %s", ErrConnectRefused, string(sp.Data))
	case SocketDisconnect:
		return true, ErrServerClosed
	case SocketEvent:
		c.dispatch(ctx, sp)
	}
	return false, nil
}

func (c *Client) dispatch(ctx context.Context, sp SocketPacket) {
	name, payload, err := sp.EventArgs()
	if err != nil {
		metrics.EventsDropped.WithLabelValues("bad_packet").Inc()
		c.log.Warn("dropping malformed event packet", zap.Error(err))
		return
	}
	metrics.EventsReceived.WithLabelValues(name).Inc()

	ev, err := events.Decode(name, payload)
	switch {
	case errors.Is(err, events.ErrUnknownEvent):
		metrics.EventsDropped.WithLabelValues("unknown").Inc()
		c.log.Debug("ignoring unknown event", zap.String("event", name))
		return
	case err != nil:
		metrics.EventsDropped.WithLabelValues("malformed").Inc()
		c.log.Warn("dropping malformed event", zap.String("event", name), zap.Error(err))
		return
	}

	if err := c.sink.Apply(ev); err != nil {
		metrics.EventsDropped.WithLabelValues("rejected").Inc()
		c.log.Debug("event not applied", zap.String("event", name), zap.Error(err))
		return
	}

	if cd, ok := ev.(domain.ConflictDetected); ok && len(cd.Conflicts) > 0 {
		c.raiseAlert(ctx, cd.Conflicts[0])
	}
}

func (c *Client) raiseAlert(ctx context.Context, first domain.Conflict) {
	if !c.opts.NotifyEnabled {
		return
	}
	actx, cancel := context.WithTimeout(ctx, alertTimeout)
	defer cancel()

	alert := notify.Alert{
		Title:      "RailOptiX Alert",
		Body:       "New conflict detected: " + first.Location,
		ConflictID: first.ID,
		Location:   first.Location,
		Severity:   first.Severity,
		RaisedAt:   time.Now().UTC(),
	}
	if err := c.notifier.Notify(actx, alert); err != nil {
		c.log.Warn("failed to deliver conflict alert", zap.Error(err))
	}
}

func (c *Client) setConnected(tr Transport) {
	c.mu.Lock()
	c.transport = tr
	c.mu.Unlock()

	metrics.Connected.Set(1)
	c.log.Info("connected", zap.String("transport", tr.Name()))
	c.applyConnectivity(domain.ConnectivityChanged{Connected: true, Transport: tr.Name()})
}

func (c *Client) setDisconnected(tr Transport) {
	c.mu.Lock()
	c.transport = nil
	c.mu.Unlock()

	metrics.Connected.Set(0)
	c.log.Info("disconnected", zap.String("transport", tr.Name()))
	c.applyConnectivity(domain.ConnectivityChanged{Connected: false, Transport: tr.Name()})
}

func (c *Client) applyConnectivity(ev domain.ConnectivityChanged) {
	if err := c.sink.Apply(ev); err != nil {
		c.log.Debug("connectivity change not applied", zap.Error(err))
	}
}
