package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeEventEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name: "Testcase #1: valid envelope",
			body: `{"eventId": "e-1", "eventType": "post.created", "tenantId": "tenant-1", "data": {"entityId": "post-42"}}`,
		},
		{
			name:    "Testcase #2: not json",
			body:    `<post id="42"/>`,
			wantErr: true,
		},
		{
			name:    "Testcase #3: missing tenant",
			body:    `{"eventType": "post.created", "data": {"entityId": "post-42"}}`,
			wantErr: true,
		},
		{
			name:    "Testcase #4: missing entity id",
			body:    `{"eventType": "post.created", "tenantId": "tenant-1", "data": {}}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := DecodeEventEnvelope([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "post.created", event.EventType)
			assert.Equal(t, "post-42", event.Data.EntityID)
		})
	}
}

func TestNewEventEnvelope(t *testing.T) {
	event := NewEventEnvelope(EventPostPublished, "tenant-1", "post-42")
	assert.NotEmpty(t, event.EventID)
	assert.False(t, event.EmittedAt.IsZero())

	// envelope must round trip through the wire format it is consumed from
	body, err := json.Marshal(event)
	assert.NoError(t, err)
	decoded, err := DecodeEventEnvelope(body)
	assert.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
}
