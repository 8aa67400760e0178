package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type webSocketTransport struct {
	cfg    transportConfig
	dialer *websocket.Dialer

	writeMu  sync.Mutex
	conn     *websocket.Conn
	liveness time.Duration

	closeOnce sync.Once
}

func newWebSocketTransport(cfg transportConfig) *webSocketTransport {
	return &webSocketTransport{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 15 * time.Second,
		},
	}
}

func (t *webSocketTransport) Name() string { return TransportWebSocket }

func (t *webSocketTransport) Open(ctx context.Context) (*Handshake, error) {
	u := t.cfg.endpoint(TransportWebSocket, "")
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}

	conn, _, err := t.dialer.DialContext(ctx, u.String(), t.cfg.header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", u.Redacted(), err)
	}
	t.conn = conn

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("failed to read handshake: %w", err)
	}
	p, err := DecodePacket(string(msg))
	if err != nil {
		return nil, err
	}
	hs, err := parseHandshake(p)
	if err != nil {
		return nil, err
	}
	t.liveness = hs.liveness()
	return hs, nil
}

func (t *webSocketTransport) Read(ctx context.Context) ([]Packet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_ = t.conn.SetReadDeadline(time.Now().Add(t.liveness))

	for {
		kind, msg, err := t.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		// binary attachments are not part of this protocol
		if kind != websocket.TextMessage {
			continue
		}
		p, err := DecodePacket(string(msg))
		if err != nil {
			return nil, err
		}
		return []Packet{p}, nil
	}
}

func (t *webSocketTransport) Write(ctx context.Context, packets ...Packet) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.conn == nil {
		return ErrNotConnected
	}
	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = t.conn.SetWriteDeadline(deadline)

	for _, p := range packets {
		if err := t.conn.WriteMessage(websocket.TextMessage, []byte(p.Encode())); err != nil {
			return fmt.Errorf("failed to write packet: %w", err)
		}
	}
	return nil
}

func (t *webSocketTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		if t.conn == nil {
			return
		}
		t.writeMu.Lock()
		_ = t.conn.SetWriteDeadline(time.Now().Add(time.Second))
		_ = t.conn.WriteMessage(websocket.TextMessage, []byte(Packet{Type: PacketClose}.Encode()))
		t.writeMu.Unlock()
		err = t.conn.Close()
	})
	return err
}
