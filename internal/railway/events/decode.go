// Package events validates raw server-pushed payloads and turns them into the
// closed set of domain events. Anything that does not conform is rejected so a
// corrupted payload never reaches the view state store.
package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/domain"
	"github.com/go-playground/validator/v10"
)

var (
	ErrUnknownEvent     = errors.New("unknown event")
	ErrMalformedPayload = errors.New("malformed event payload")
)

var validate = validator.New()

// Decode parses the payload of the named server event into a domain event
func Decode(name string, payload []byte) (domain.Event, error) {
	switch name {
	case domain.EventDataUpdate:
		var ev domain.DataUpdate
		if err := decodeStruct(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case domain.EventConflictDetected:
		var ev domain.ConflictDetected
		if err := decodeStruct(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case domain.EventSuggestionImplemented:
		var ev domain.SuggestionImplemented
		if err := decodeStruct(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case domain.EventKPIUpdate:
		var raw struct {
			KPIs      *domain.KPIMetrics `json:"kpis"`
			Timestamp string             `json:"timestamp"`
		}
		if err := decodeStruct(payload, &raw); err != nil {
			return nil, err
		}
		if raw.KPIs == nil {
			return nil, fmt.Errorf("%w: kpi_update without kpis", ErrMalformedPayload)
		}
		return domain.KPIUpdate{KPIs: *raw.KPIs, Timestamp: raw.Timestamp}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
}

func decodeStruct(payload []byte, out any) error {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return fmt.Errorf("%w: empty payload", ErrMalformedPayload)
	}
	if payload[0] != '{' {
		return fmt.Errorf("%w: payload is not an object", ErrMalformedPayload)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}
