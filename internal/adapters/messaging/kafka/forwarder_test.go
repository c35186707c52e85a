package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epaws/internal/domain/events"
)

func TestRecord_KeyHeadersAndBody(t *testing.T) {
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	e := events.Event{
		ID:         "ev-1",
		Kind:       events.AdoptionStatusChanged,
		EntityID:   "ad-1",
		OccurredAt: at,
		Payload: events.AdoptionStatusChangedPayload{
			AdoptionID: "ad-1",
			AnimalID:   "an-1",
			From:       "pending",
			To:         "approved",
		},
	}

	rec, err := Record(e)
	require.NoError(t, err)
	assert.Equal(t, "ad-1", string(rec.Key))
	assert.Equal(t, at, rec.Timestamp)
	assert.Empty(t, rec.Topic, "topic comes from the client default")

	headers := map[string]string{}
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "adoption.status_changed", headers[headerKind])
	assert.Equal(t, "ev-1", headers[headerEventID])

	var body struct {
		Kind    string         `json:"kind"`
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(rec.Value, &body))
	assert.Equal(t, "adoption.status_changed", body.Kind)
	assert.Equal(t, "approved", body.Payload["to"])
	assert.Equal(t, "an-1", body.Payload["animal_id"])
}

func TestNew_RequiresBrokersAndTopic(t *testing.T) {
	_, err := New(Options{Topic: "t"})
	require.Error(t, err)

	_, err = New(Options{Brokers: []string{"localhost:9092"}})
	require.Error(t, err)
}
