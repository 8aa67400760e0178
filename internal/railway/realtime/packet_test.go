package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	packets, err := DecodePayload("2\x1e42[\"data_update\",{}]\x1e6")
	require.NoError(t, err)
	require.Len(t, packets, 3)
	assert.Equal(t, PacketPing, packets[0].Type)
	assert.Equal(t, PacketMessage, packets[1].Type)
	assert.Equal(t, `2["data_update",{}]`, packets[1].Data)
	assert.Equal(t, PacketNoop, packets[2].Type)

	assert.Equal(t, "2\x1e42[\"data_update\",{}]\x1e6", EncodePayload(packets))

	_, err = DecodePayload("2\x1e9oops")
	assert.ErrorIs(t, err, ErrBadPacket)

	empty, err := DecodePayload("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParseHandshake(t *testing.T) {
	p, err := DecodePacket(`0{"sid":"lv_VI97HAXpY6yYWAAAC","upgrades":["websocket"],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`)
	require.NoError(t, err)

	hs, err := parseHandshake(p)
	require.NoError(t, err)
	assert.Equal(t, "lv_VI97HAXpY6yYWAAAC", hs.SID)
	assert.Equal(t, []string{"websocket"}, hs.Upgrades)
	assert.Equal(t, int64(45_000), hs.liveness().Milliseconds())

	_, err = parseHandshake(Packet{Type: PacketOpen, Data: `{"pingInterval":1}`})
	assert.ErrorIs(t, err, ErrBadPacket)

	_, err = parseHandshake(Packet{Type: PacketMessage, Data: "0"})
	assert.ErrorIs(t, err, ErrBadPacket)
}

func TestDecodeSocketPacket(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantType  byte
		wantNS    string
		wantAck   string
		wantEvent string
		wantArg   string
	}{
		{name: "connect ack", data: `0{"sid":"abc"}`, wantType: SocketConnect, wantNS: "/"},
		{name: "event", data: `2["kpi_update",{"kpis":{}}]`, wantType: SocketEvent, wantNS: "/", wantEvent: "kpi_update", wantArg: `{"kpis":{}}`},
		{name: "event without argument", data: `2["request_update"]`, wantType: SocketEvent, wantNS: "/", wantEvent: "request_update"},
		{name: "event with ack id", data: `212["data_update",{}]`, wantType: SocketEvent, wantNS: "/", wantAck: "12", wantEvent: "data_update", wantArg: `{}`},
		{name: "namespaced event", data: `2/admin,["data_update",{}]`, wantType: SocketEvent, wantNS: "/admin", wantEvent: "data_update", wantArg: `{}`},
		{name: "namespaced disconnect", data: `1/admin`, wantType: SocketDisconnect, wantNS: "/admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp, err := DecodeSocketPacket(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, sp.Type)
			assert.Equal(t, tt.wantNS, sp.Namespace)
			assert.Equal(t, tt.wantAck, sp.AckID)

			if tt.wantEvent == "" {
				return
			}
			name, arg, err := sp.EventArgs()
			require.NoError(t, err)
			assert.Equal(t, tt.wantEvent, name)
			assert.Equal(t, tt.wantArg, string(arg))
		})
	}
}

func TestEventArgs_Rejects(t *testing.T) {
	for _, data := range []string{`2`, `2[]`, `2[42]`, `2{"name":"x"}`} {
		sp, err := DecodeSocketPacket(data)
		require.NoError(t, err)
		_, _, err = sp.EventArgs()
		assert.ErrorIs(t, err, ErrBadPacket, data)
	}
}

func TestEventPacket(t *testing.T) {
	p, err := eventPacket("request_update", nil)
	require.NoError(t, err)
	assert.Equal(t, `42["request_update"]`, p.Encode())

	p, err = eventPacket("accept", map[string]string{"id": "S001"})
	require.NoError(t, err)
	assert.Equal(t, `42["accept",{"id":"S001"}]`, p.Encode())

	assert.Equal(t, "40", connectPacket().Encode())
}

func TestEndpoint(t *testing.T) {
	fs := newFakeServer(t, true, true)
	c, err := NewClient(Options{BaseURL: fs.URL() + "/"}, newChanSink(), nil, nil)
	require.NoError(t, err)

	cfg := transportConfig{baseURL: c.baseURL, path: defaultPath}
	u := cfg.endpoint(TransportPolling, "abc")
	assert.Equal(t, "/socket.io/", u.Path)
	assert.Equal(t, "4", u.Query().Get("EIO"))
	assert.Equal(t, "polling", u.Query().Get("transport"))
	assert.Equal(t, "abc", u.Query().Get("sid"))
	assert.NotEmpty(t, u.Query().Get("t"))

	ws := cfg.endpoint(TransportWebSocket, "")
	assert.False(t, ws.Query().Has("sid"))
	assert.False(t, ws.Query().Has("t"))
}
