package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"eventease/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	refreshed []string
	err       error
}

func (f *fakeRefresher) RefreshEvent(ctx context.Context, eventID string) error {
	f.refreshed = append(f.refreshed, eventID)
	return f.err
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestHandleEventUpserted(t *testing.T) {
	refresher := &fakeRefresher{}
	h := NewHandlers(refresher)

	err := h.HandleEventUpserted(context.Background(), mustJSON(t, models.EventUpsertedEvent{EventID: "evt-1"}))

	require.NoError(t, err)
	assert.Equal(t, []string{"evt-1"}, refresher.refreshed)
}

func TestHandleEventUpsertedErrors(t *testing.T) {
	tests := []struct {
		name          string
		data          []byte
		refreshErr    error
		wantPermanent bool
	}{
		{
			name:          "malformed payload",
			data:          []byte("{not json"),
			wantPermanent: true,
		},
		{
			name:          "missing event id",
			data:          []byte(`{"timestamp":"2026-01-01T00:00:00Z"}`),
			wantPermanent: true,
		},
		{
			name:          "refresh failure is retried",
			data:          []byte(`{"event_id":"evt-1"}`),
			refreshErr:    errors.New("index unavailable"),
			wantPermanent: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandlers(&fakeRefresher{err: tt.refreshErr})

			err := h.HandleEventUpserted(context.Background(), tt.data)

			require.Error(t, err)
			assert.Equal(t, tt.wantPermanent, isPermanent(err))
		})
	}
}

func TestHandleRegistrationEvents(t *testing.T) {
	h := NewHandlers(&fakeRefresher{})

	created := models.RegistrationCreatedEvent{
		RegistrationID: "r-1",
		EventID:        "evt-1",
		UserID:         "u-1",
		AmountPaid:     25,
		PaymentMethod:  models.GatewayPayment("stripe"),
	}
	assert.NoError(t, h.HandleRegistrationCreated(context.Background(), mustJSON(t, created)))

	cancelled := models.RegistrationCancelledEvent{
		EventID:        "evt-1",
		UserID:         "u-1",
		RefundedAmount: 25,
		PaymentMethod:  models.GatewayPayment("stripe"),
	}
	assert.NoError(t, h.HandleRegistrationCancelled(context.Background(), mustJSON(t, cancelled)))

	err := h.HandleRegistrationCreated(context.Background(), []byte("[]"))
	assert.True(t, isPermanent(err))
}
