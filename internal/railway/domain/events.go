package domain

// Event is one of the closed set of state-changing events the view state
// store understands. The marker method keeps the set closed to this package.
type Event interface {
	EventName() string
	isEvent()
}

// Wire names of server-pushed events
const (
	EventDataUpdate            = "data_update"
	EventConflictDetected      = "conflict_detected"
	EventSuggestionImplemented = "suggestion_implemented"
	EventKPIUpdate             = "kpi_update"
	EventConnectivity          = "connectivity"

	// EventRequestUpdate is the only outbound event
	EventRequestUpdate = "request_update"
)

// DataUpdate is a full (possibly partial) snapshot. A nil collection means the
// field was absent and the local collection must be left untouched.
type DataUpdate struct {
	Trains    []Train     `json:"trains,omitempty" validate:"dive"`
	Conflicts []Conflict  `json:"conflicts,omitempty" validate:"dive"`
	KPIs      *KPIMetrics `json:"kpis,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// ConflictDetected carries newly detected conflicts and their suggestions
type ConflictDetected struct {
	Conflicts   []Conflict   `json:"conflicts" validate:"dive"`
	Suggestions []Suggestion `json:"suggestions" validate:"dive"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// SuggestionImplemented reports that the backend applied a suggestion
type SuggestionImplemented struct {
	KPIs         *KPIMetrics `json:"kpis,omitempty"`
	ConflictID   string      `json:"conflict_id" validate:"required"`
	SuggestionID string      `json:"suggestion_id" validate:"required"`
}

// KPIUpdate replaces the KPI snapshot
type KPIUpdate struct {
	KPIs      KPIMetrics `json:"kpis"`
	Timestamp string     `json:"timestamp,omitempty"`
}

// ConnectivityChanged is raised by the transport itself on connect and
// disconnect; it never arrives over the wire.
type ConnectivityChanged struct {
	Connected bool   `json:"connected"`
	Transport string `json:"transport,omitempty"`
}

func (DataUpdate) EventName() string            { return EventDataUpdate }
func (ConflictDetected) EventName() string      { return EventConflictDetected }
func (SuggestionImplemented) EventName() string { return EventSuggestionImplemented }
func (KPIUpdate) EventName() string             { return EventKPIUpdate }
func (ConnectivityChanged) EventName() string   { return EventConnectivity }

func (DataUpdate) isEvent()            {}
func (ConflictDetected) isEvent()      {}
func (SuggestionImplemented) isEvent() {}
func (KPIUpdate) isEvent()             {}
func (ConnectivityChanged) isEvent()   {}
