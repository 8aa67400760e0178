package events

import (
	"testing"

	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_DataUpdate(t *testing.T) {
	t.Run("absent fields stay nil", func(t *testing.T) {
		ev, err := Decode(domain.EventDataUpdate, []byte(`{"kpis":{"avg_delay_reduced":-4,"throughput_increase":10,"replan_time":3,"suggestion_acceptance":80}}`))
		require.NoError(t, err)

		du, ok := ev.(domain.DataUpdate)
		require.True(t, ok)
		assert.Nil(t, du.Trains)
		assert.Nil(t, du.Conflicts)
		require.NotNil(t, du.KPIs)
		assert.Equal(t, float64(-4), du.KPIs.AvgDelayReduced)
	})

	t.Run("empty array is present", func(t *testing.T) {
		ev, err := Decode(domain.EventDataUpdate, []byte(`{"conflicts":[],"trains":null}`))
		require.NoError(t, err)

		du := ev.(domain.DataUpdate)
		assert.NotNil(t, du.Conflicts)
		assert.Len(t, du.Conflicts, 0)
		assert.Nil(t, du.Trains)
	})

	t.Run("rejects train without id", func(t *testing.T) {
		_, err := Decode(domain.EventDataUpdate, []byte(`{"trains":[{"name":"Rajdhani","status":"on_time"}]}`))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("rejects unknown train status", func(t *testing.T) {
		_, err := Decode(domain.EventDataUpdate, []byte(`{"trains":[{"id":"12953","status":"teleported"}]}`))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("rejects negative delay", func(t *testing.T) {
		_, err := Decode(domain.EventDataUpdate, []byte(`{"trains":[{"id":"12953","delay":-3}]}`))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})
}

func TestDecode_ConflictDetected(t *testing.T) {
	payload := `{
		"conflicts": [{
			"id": "c-1", "type": "train_crossing", "priority": "high",
			"location": "Agra Cantt Junction",
			"train1": {"id": "12953", "name": "August Kranti Rajdhani Express"},
			"train2": {"id": "34521", "name": "Freight Special"},
			"conflict_severity": "medium", "potential_delay": 12, "status": "active",
			"detected_at": "2024-09-20T10:15:00.123456"
		}],
		"suggestions": [{
			"id": "s-1", "conflict_id": "c-1",
			"options": [{"id": "option_b", "strategy": "balanced", "actions": [{"train_id": "12953", "action": "slight_hold", "duration": 2}]}],
			"explanation": "Hold freight",
			"impact_analysis": {"delay_reduction": 8, "confidence": 87}
		}]
	}`

	ev, err := Decode(domain.EventConflictDetected, []byte(payload))
	require.NoError(t, err)

	cd := ev.(domain.ConflictDetected)
	require.Len(t, cd.Conflicts, 1)
	require.Len(t, cd.Suggestions, 1)
	assert.Equal(t, "Agra Cantt Junction", cd.Conflicts[0].Location)
	assert.Equal(t, "34521", cd.Conflicts[0].Train2.ID)
	assert.Equal(t, "c-1", cd.Suggestions[0].ConflictID)
	assert.Equal(t, float64(87), cd.Suggestions[0].ImpactAnalysis.Confidence)

	t.Run("rejects confidence above 100", func(t *testing.T) {
		_, err := Decode(domain.EventConflictDetected, []byte(`{"conflicts":[],"suggestions":[{"id":"s","impact_analysis":{"confidence":140}}]}`))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("rejects conflict without its trains", func(t *testing.T) {
		_, err := Decode(domain.EventConflictDetected, []byte(`{
			"conflicts": [{"id": "c-2", "location": "Mathura Junction", "conflict_severity": "high"}],
			"suggestions": [{"id": "s-2", "conflict_id": "c-2"}]
		}`))
		assert.ErrorIs(t, err, ErrMalformedPayload)

		_, err = Decode(domain.EventDataUpdate, []byte(`{"conflicts": [{"id": "c-2", "train1": {"id": "12953"}}]}`))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("rejects unknown strategy", func(t *testing.T) {
		_, err := Decode(domain.EventConflictDetected, []byte(`{"suggestions":[{"id":"s","options":[{"strategy":"teleport"}]}]}`))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})
}

func TestDecode_SuggestionImplemented(t *testing.T) {
	ev, err := Decode(domain.EventSuggestionImplemented, []byte(`{"suggestion_id":"s-1","conflict_id":"c-1","result":{"success":true}}`))
	require.NoError(t, err)

	si := ev.(domain.SuggestionImplemented)
	assert.Equal(t, "s-1", si.SuggestionID)
	assert.Equal(t, "c-1", si.ConflictID)
	assert.Nil(t, si.KPIs)

	_, err = Decode(domain.EventSuggestionImplemented, []byte(`{"suggestion_id":"s-1"}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestDecode_KPIUpdate(t *testing.T) {
	ev, err := Decode(domain.EventKPIUpdate, []byte(`{"kpis":{"avg_delay_reduced":-6,"throughput_increase":12,"replan_time":7,"suggestion_acceptance":78}}`))
	require.NoError(t, err)
	assert.Equal(t, float64(7), ev.(domain.KPIUpdate).KPIs.ReplanTime)

	_, err = Decode(domain.EventKPIUpdate, []byte(`{"timestamp":"2024-09-20T10:15:00"}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		event   string
		payload string
		want    error
	}{
		{"unknown event", "connected", `{"message":"hi"}`, ErrUnknownEvent},
		{"empty payload", domain.EventDataUpdate, ``, ErrMalformedPayload},
		{"null payload", domain.EventDataUpdate, `null`, ErrMalformedPayload},
		{"array payload", domain.EventKPIUpdate, `[1,2]`, ErrMalformedPayload},
		{"wrong field type", domain.EventDataUpdate, `{"trains":"all of them"}`, ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.event, []byte(tt.payload))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
