package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Engine.IO v4 packet types
const (
	PacketOpen    byte = '0'
	PacketClose   byte = '1'
	PacketPing    byte = '2'
	PacketPong    byte = '3'
	PacketMessage byte = '4'
	PacketUpgrade byte = '5'
	PacketNoop    byte = '6'
)

// Socket.IO v5 packet types, carried inside Engine.IO message packets
const (
	SocketConnect      byte = '0'
	SocketDisconnect   byte = '1'
	SocketEvent        byte = '2'
	SocketAck          byte = '3'
	SocketConnectError byte = '4'
)

// recordSeparator delimits packets in a long-polling payload
const recordSeparator = "\x1e"

var ErrBadPacket = errors.New("bad packet")

// Packet is one Engine.IO packet
type Packet struct {
	Type byte
	Data string
}

// Encode renders the packet in its text wire form
func (p Packet) Encode() string {
	return string(p.Type) + p.Data
}

// DecodePacket parses one Engine.IO text packet
func DecodePacket(raw string) (Packet, error) {
	if raw == "" {
		return Packet{}, fmt.Errorf("%w: empty", ErrBadPacket)
	}
	t := raw[0]
	if t < PacketOpen || t > PacketNoop {
		return Packet{}, fmt.Errorf("%w: type %q", ErrBadPacket, t)
	}
	return Packet{Type: t, Data: raw[1:]}, nil
}

// DecodePayload splits a long-polling payload into packets
func DecodePayload(body string) ([]Packet, error) {
	if body == "" {
		return nil, nil
	}
	parts := strings.Split(body, recordSeparator)
	out := make([]Packet, 0, len(parts))
	for _, part := range parts {
		p, err := DecodePacket(part)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// EncodePayload joins packets into one long-polling payload
func EncodePayload(packets []Packet) string {
	parts := make([]string, len(packets))
	for i, p := range packets {
		parts[i] = p.Encode()
	}
	return strings.Join(parts, recordSeparator)
}

// Handshake is the body of the Engine.IO open packet
type Handshake struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
	MaxPayload   int      `json:"maxPayload"`
}

func parseHandshake(p Packet) (*Handshake, error) {
	if p.Type != PacketOpen {
		return nil, fmt.Errorf("%w: expected open packet, got %q", ErrBadPacket, p.Type)
	}
	var hs Handshake
	if err := json.Unmarshal([]byte(p.Data), &hs); err != nil {
		return nil, fmt.Errorf("%w: handshake: %v", ErrBadPacket, err)
	}
	if hs.SID == "" {
		return nil, fmt.Errorf("%w: handshake without sid", ErrBadPacket)
	}
	return &hs, nil
}

// SocketPacket is a decoded Socket.IO packet on the default namespace
type SocketPacket struct {
	Type      byte
	Namespace string
	AckID     string
	Data      json.RawMessage
}

// DecodeSocketPacket parses the data of an Engine.IO message packet
func DecodeSocketPacket(data string) (SocketPacket, error) {
	if data == "" {
		return SocketPacket{}, fmt.Errorf("%w: empty socket packet", ErrBadPacket)
	}
	sp := SocketPacket{Type: data[0], Namespace: "/"}
	rest := data[1:]

	if strings.HasPrefix(rest, "/") {
		i := strings.IndexByte(rest, ',')
		if i < 0 {
			sp.Namespace = rest
			return sp, nil
		}
		sp.Namespace = rest[:i]
		rest = rest[i+1:]
	}

	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	sp.AckID = rest[:i]
	rest = rest[i:]

	if rest != "" {
		sp.Data = json.RawMessage(rest)
	}
	return sp, nil
}

// EventArgs splits an EVENT packet's data into its name and first argument
func (sp SocketPacket) EventArgs() (string, []byte, error) {
	var args []json.RawMessage
	if err := json.Unmarshal(sp.Data, &args); err != nil {
		return "", nil, fmt.Errorf("%w: event data: %v", ErrBadPacket, err)
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: event without name", ErrBadPacket)
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil {
		return "", nil, fmt.Errorf("%w: event name: %v", ErrBadPacket, err)
	}
	var payload []byte
	if len(args) > 1 {
		payload = bytes.TrimSpace(args[1])
	}
	return name, payload, nil
}

// connectPacket opens the default namespace
func connectPacket() Packet {
	return Packet{Type: PacketMessage, Data: string(SocketConnect)}
}

// eventPacket encodes an outbound event with no ack and optional argument
func eventPacket(name string, arg any) (Packet, error) {
	args := []any{name}
	if arg != nil {
		args = append(args, arg)
	}
	b, err := json.Marshal(args)
	if err != nil {
		return Packet{}, fmt.Errorf("failed to marshal event %s: %w", name, err)
	}
	return Packet{Type: PacketMessage, Data: string(SocketEvent) + string(b)}, nil
}
