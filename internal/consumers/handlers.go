package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"eventease/internal/models"

	"github.com/nats-io/stan.go"
)

const handlerTimeout = 30 * time.Second

// EventRefresher updates derived copies of an event after it changes
type EventRefresher interface {
	RefreshEvent(ctx context.Context, eventID string) error
}

type Handlers struct {
	refresher EventRefresher
}

func NewHandlers(refresher EventRefresher) *Handlers {
	return &Handlers{refresher: refresher}
}

// ack wraps a payload handler: the message is acknowledged only when fn succeeds, otherwise it is redelivered after AckWait
func ack(subject string, fn func(ctx context.Context, data []byte) error) stan.MsgHandler {
	return func(m *stan.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()

		if err := fn(ctx, m.Data); err != nil {
			slog.Error("Failed to process message",
				"subject", subject,
				"sequence", m.Sequence,
				"redelivered", m.Redelivered,
				"error", err)
			if !isPermanent(err) {
				return
			}
		}

		if err := m.Ack(); err != nil {
			slog.Error("Failed to ack message", "subject", subject, "sequence", m.Sequence, "error", err)
		}
	}
}

// permanentError marks payloads that will never succeed, such as malformed JSON
type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func isPermanent(err error) bool {
	_, ok := err.(permanentError)
	return ok
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return permanentError{fmt.Errorf("failed to unmarshal payload: %w", err)}
	}
	return nil
}

func (h *Handlers) HandleRegistrationCreated(ctx context.Context, data []byte) error {
	var event models.RegistrationCreatedEvent
	if err := decode(data, &event); err != nil {
		return err
	}

	slog.Info("Processing registration created event",
		"registration_id", event.RegistrationID,
		"event_id", event.EventID,
		"user_id", event.UserID,
		"amount_paid", event.AmountPaid,
		"payment_method", event.PaymentMethod.String())

	return nil
}

func (h *Handlers) HandleRegistrationCancelled(ctx context.Context, data []byte) error {
	var event models.RegistrationCancelledEvent
	if err := decode(data, &event); err != nil {
		return err
	}

	slog.Info("Processing registration cancelled event",
		"event_id", event.EventID,
		"user_id", event.UserID,
		"refunded_amount", event.RefundedAmount,
		"payment_method", event.PaymentMethod.String())

	return nil
}

func (h *Handlers) HandleEventUpserted(ctx context.Context, data []byte) error {
	var event models.EventUpsertedEvent
	if err := decode(data, &event); err != nil {
		return err
	}
	if event.EventID == "" {
		return permanentError{fmt.Errorf("event.upserted without event_id")}
	}

	slog.Info("Refreshing event", "event_id", event.EventID)

	if err := h.refresher.RefreshEvent(ctx, event.EventID); err != nil {
		return fmt.Errorf("failed to refresh event %s: %w", event.EventID, err)
	}
	return nil
}
