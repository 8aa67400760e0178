package realtime

import "errors"

var (
	ErrNotConnected       = errors.New("realtime channel not connected")
	ErrTransportClosed    = errors.New("transport closed")
	ErrNoTransport        = errors.New("no transport could be established")
	ErrServerClosed       = errors.New("server closed the session")
	ErrConnectRefused     = errors.New("server refused namespace connect")
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")
)
