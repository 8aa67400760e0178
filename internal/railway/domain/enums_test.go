package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{"rfc3339", "2024-09-20T10:15:00+05:30", time.Date(2024, 9, 20, 4, 45, 0, 0, time.UTC), true},
		{"naive with micros", "2024-09-20T10:15:00.123456", time.Date(2024, 9, 20, 10, 15, 0, 123456000, time.UTC), true},
		{"naive", " 2024-09-20T10:15:00 ", time.Date(2024, 9, 20, 10, 15, 0, 0, time.UTC), true},
		{"space separated", "2024-09-20 10:15:00", time.Date(2024, 9, 20, 10, 15, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "soon", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestSuggestionFor(t *testing.T) {
	suggestions := []Suggestion{
		{ID: "S001", ConflictID: "C001"},
		{ID: "S002", ConflictID: "C002"},
		{ID: "S003", ConflictID: "C001"},
	}

	s, ok := SuggestionFor(suggestions, "C001")
	assert.True(t, ok)
	assert.Equal(t, "S001", s.ID)

	_, ok = SuggestionFor(suggestions, "C404")
	assert.False(t, ok)

	_, ok = SuggestionFor(nil, "C001")
	assert.False(t, ok)
}
