package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Transport names, in the order a client prefers them by default
const (
	TransportWebSocket = "websocket"
	TransportPolling   = "polling"
)

// DefaultTransports prefers a persistent stream and falls back to polling
var DefaultTransports = []string{TransportWebSocket, TransportPolling}

// Transport carries Engine.IO packets for one session
type Transport interface {
	Name() string
	Open(ctx context.Context) (*Handshake, error)
	Read(ctx context.Context) ([]Packet, error)
	Write(ctx context.Context, packets ...Packet) error
	Close() error
}

type transportConfig struct {
	baseURL    *url.URL
	path       string
	header     http.Header
	httpClient *http.Client
}

func newTransport(name string, cfg transportConfig) (Transport, error) {
	switch name {
	case TransportWebSocket:
		return newWebSocketTransport(cfg), nil
	case TransportPolling:
		return newPollingTransport(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", name)
	}
}

// endpoint builds the Engine.IO URL for a transport and optional session id
func (cfg transportConfig) endpoint(transport, sid string) *url.URL {
	u := *cfg.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + cfg.path

	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", transport)
	if sid != "" {
		q.Set("sid", sid)
	}
	if transport == TransportPolling {
		q.Set("t", strconv.FormatInt(time.Now().UnixNano(), 36))
	}
	u.RawQuery = q.Encode()
	return &u
}

// liveness is how long a session may stay silent before it is considered dead
func (hs *Handshake) liveness() time.Duration {
	d := time.Duration(hs.PingInterval+hs.PingTimeout) * time.Millisecond
	if d <= 0 {
		return 45 * time.Second
	}
	return d
}
