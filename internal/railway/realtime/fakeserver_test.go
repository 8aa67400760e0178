package realtime

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// fakeServer speaks just enough Engine.IO v4 / Socket.IO v5 to drive a Client
type fakeServer struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	allowWebSocket bool
	allowPolling   bool

	mu       sync.Mutex
	peers    map[string]*wsPeer
	polls    map[string]chan string
	connects int

	received chan string // client event names
	pongs    chan struct{}
}

type wsPeer struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (p *wsPeer) send(msg string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

func newFakeServer(t *testing.T, allowWebSocket, allowPolling bool) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		allowWebSocket: allowWebSocket,
		allowPolling:   allowPolling,
		peers:          make(map[string]*wsPeer),
		polls:          make(map[string]chan string),
		received:       make(chan string, 64),
		pongs:          make(chan struct{}, 8),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/socket.io/", fs.handle)
	fs.srv = httptest.NewServer(mux)
	t.Cleanup(fs.close)
	return fs
}

func (fs *fakeServer) URL() string { return fs.srv.URL }

func (fs *fakeServer) close() {
	fs.dropAll()
	fs.srv.Close()
}

func handshake(sid string) string {
	return fmt.Sprintf(`0{"sid":%q,"upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`, sid)
}

func (fs *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("EIO") != "4" {
		http.Error(w, "unsupported protocol version", http.StatusBadRequest)
		return
	}
	switch r.URL.Query().Get("transport") {
	case TransportWebSocket:
		if !fs.allowWebSocket {
			http.Error(w, "transport unknown", http.StatusBadRequest)
			return
		}
		fs.serveWebSocket(w, r)
	case TransportPolling:
		if !fs.allowPolling {
			http.Error(w, "transport unknown", http.StatusBadRequest)
			return
		}
		fs.servePolling(w, r)
	default:
		http.Error(w, "transport unknown", http.StatusBadRequest)
	}
}

func (fs *fakeServer) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := fs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	sid := uuid.NewString()
	peer := &wsPeer{conn: conn}
	if err := peer.send(handshake(sid)); err != nil {
		conn.Close()
		return
	}

	fs.mu.Lock()
	fs.peers[sid] = peer
	fs.mu.Unlock()
	defer func() {
		fs.mu.Lock()
		delete(fs.peers, sid)
		fs.mu.Unlock()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		reply, done := fs.handleInbound(sid, string(msg))
		if done {
			return
		}
		if reply != "" {
			_ = peer.send(reply)
		}
	}
}

func (fs *fakeServer) servePolling(w http.ResponseWriter, r *http.Request) {
	sid := r.URL.Query().Get("sid")
	if sid == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "bad handshake method", http.StatusBadRequest)
			return
		}
		sid = uuid.NewString()
		fs.mu.Lock()
		fs.polls[sid] = make(chan string, 64)
		fs.mu.Unlock()
		_, _ = io.WriteString(w, handshake(sid))
		return
	}

	fs.mu.Lock()
	queue, ok := fs.polls[sid]
	fs.mu.Unlock()
	if !ok {
		http.Error(w, "session id unknown", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		var out []string
		select {
		case msg := <-queue:
			out = append(out, msg)
		case <-time.After(200 * time.Millisecond):
			out = append(out, string(PacketNoop))
		case <-r.Context().Done():
			return
		}
	drain:
		for {
			select {
			case msg := <-queue:
				out = append(out, msg)
			default:
				break drain
			}
		}
		_, _ = io.WriteString(w, strings.Join(out, recordSeparator))
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		for _, msg := range strings.Split(string(body), recordSeparator) {
			reply, done := fs.handleInbound(sid, msg)
			if done {
				fs.mu.Lock()
				delete(fs.polls, sid)
				fs.mu.Unlock()
				break
			}
			if reply != "" {
				queue <- reply
			}
		}
		_, _ = io.WriteString(w, "ok")
	}
}

// handleInbound returns an optional reply and whether the session ended
func (fs *fakeServer) handleInbound(sid, msg string) (string, bool) {
	switch {
	case msg == "40":
		fs.mu.Lock()
		fs.connects++
		fs.mu.Unlock()
		return fmt.Sprintf(`40{"sid":%q}`, sid+"-ns"), false
	case msg == "3":
		fs.pongs <- struct{}{}
	case msg == "1":
		return "", true
	case strings.HasPrefix(msg, "42"):
		sp, err := DecodeSocketPacket(msg[1:])
		if err != nil {
			return "", false
		}
		if name, _, err := sp.EventArgs(); err == nil {
			fs.received <- name
		}
	}
	return "", false
}

// sendRaw delivers one Engine.IO packet to every live session
func (fs *fakeServer) sendRaw(msg string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, p := range fs.peers {
		_ = p.send(msg)
	}
	for _, q := range fs.polls {
		q <- msg
	}
}

// emit pushes a Socket.IO event with a raw JSON payload
func (fs *fakeServer) emit(name, payloadJSON string) {
	fs.sendRaw(fmt.Sprintf(`42[%q,%s]`, name, payloadJSON))
}

// dropAll ends every session without a close handshake
func (fs *fakeServer) dropAll() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for sid, p := range fs.peers {
		p.conn.Close()
		delete(fs.peers, sid)
	}
	for sid := range fs.polls {
		delete(fs.polls, sid)
	}
}

func (fs *fakeServer) connectCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.connects
}

func (fs *fakeServer) sessionCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.peers) + len(fs.polls)
}
