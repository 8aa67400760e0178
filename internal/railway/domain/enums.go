package domain

import (
	"strings"
	"time"
)

// Train status constants
const (
	TrainOnTime      = "on_time"
	TrainSlightDelay = "slight_delay"
	TrainDelayed     = "delayed"
)

// Conflict status constants
const (
	ConflictActive   = "active"
	ConflictResolved = "resolved"
)

// Conflict type constants
const (
	ConflictTrainCrossing    = "train_crossing"
	ConflictPlatform         = "platform_conflict"
	ConflictSignal           = "signal_conflict"
	ConflictTrackMaintenance = "track_maintenance"
)

// Priority and severity levels
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Optimization strategies
const (
	StrategyPriorityBased = "priority_based"
	StrategyBalanced      = "balanced"
	StrategyRerouting     = "rerouting"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses the backend's timestamps. The backend emits naive
// ISO-8601 values, which are interpreted as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IndexOfConflict returns the position of the first conflict with id, or -1
func IndexOfConflict(conflicts []Conflict, id string) int {
	for i := range conflicts {
		if conflicts[i].ID == id {
			return i
		}
	}
	return -1
}

// IndexOfSuggestion returns the position of the first suggestion with id, or -1
func IndexOfSuggestion(suggestions []Suggestion, id string) int {
	for i := range suggestions {
		if suggestions[i].ID == id {
			return i
		}
	}
	return -1
}

// SuggestionFor returns the first suggestion owned by conflictID
func SuggestionFor(suggestions []Suggestion, conflictID string) (Suggestion, bool) {
	for _, s := range suggestions {
		if s.ConflictID == conflictID {
			return s, true
		}
	}
	return Suggestion{}, false
}
