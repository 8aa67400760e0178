package realtime

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

type pollingTransport struct {
	cfg    transportConfig
	client *http.Client

	sid      string
	liveness time.Duration

	// packets that arrived with the handshake response
	pending []Packet

	writeMu sync.Mutex
	closed  chan struct{}
	once    sync.Once
}

func newPollingTransport(cfg transportConfig) *pollingTransport {
	client := cfg.httpClient
	if client == nil {
		client = &http.Client{}
	}
	return &pollingTransport{
		cfg:    cfg,
		client: client,
		closed: make(chan struct{}),
	}
}

func (t *pollingTransport) Name() string { return TransportPolling }

func (t *pollingTransport) Open(ctx context.Context) (*Handshake, error) {
	packets, err := t.poll(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to open polling session: %w", err)
	}
	if len(packets) == 0 {
		return nil, fmt.Errorf("%w: empty handshake payload", ErrBadPacket)
	}
	hs, err := parseHandshake(packets[0])
	if err != nil {
		return nil, err
	}
	t.sid = hs.SID
	t.liveness = hs.liveness()
	t.pending = packets[1:]
	return hs, nil
}

func (t *pollingTransport) Read(ctx context.Context) ([]Packet, error) {
	if len(t.pending) > 0 {
		out := t.pending
		t.pending = nil
		return out, nil
	}
	select {
	case <-t.closed:
		return nil, ErrTransportClosed
	default:
	}

	rctx, cancel := context.WithTimeout(ctx, t.liveness)
	defer cancel()
	go func() {
		select {
		case <-t.closed:
			cancel()
		case <-rctx.Done():
		}
	}()
	return t.poll(rctx, t.sid)
}

func (t *pollingTransport) poll(ctx context.Context, sid string) ([]Packet, error) {
	u := t.cfg.endpoint(TransportPolling, sid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	copyHeader(req.Header, t.cfg.header)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to poll: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read poll response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poll returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return DecodePayload(string(body))
}

func (t *pollingTransport) Write(ctx context.Context, packets ...Packet) error {
	if len(packets) == 0 {
		return nil
	}
	if t.sid == "" {
		return ErrNotConnected
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	wctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return t.post(wctx, packets)
}

func (t *pollingTransport) post(ctx context.Context, packets []Packet) error {
	u := t.cfg.endpoint(TransportPolling, t.sid)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(EncodePayload(packets)))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	copyHeader(req.Header, t.cfg.header)
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post packets: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post returned status %d", resp.StatusCode)
	}
	return nil
}

func (t *pollingTransport) Close() error {
	t.once.Do(func() {
		close(t.closed)
		if t.sid == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		t.writeMu.Lock()
		_ = t.post(ctx, []Packet{{Type: PacketClose}})
		t.writeMu.Unlock()
	})
	return nil
}

func copyHeader(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
