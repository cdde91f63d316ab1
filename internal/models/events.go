package models

import "time"

// NATS Event Types
const (
	EventRegistrationCreated   = "registration.created"
	EventRegistrationCancelled = "registration.cancelled"
	EventEventUpserted         = "event.upserted"
)

// RegistrationCreatedEvent is published after a successful register
type RegistrationCreatedEvent struct {
	RegistrationID string        `json:"registration_id"`
	PurchaseID     string        `json:"purchase_id"`
	UserID         string        `json:"user_id"`
	EventID        string        `json:"event_id"`
	TicketTypeID   string        `json:"ticket_type_id"`
	AmountPaid     float64       `json:"amount_paid"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	Timestamp      time.Time     `json:"timestamp"`
}

// RegistrationCancelledEvent is published after a successful unregister
type RegistrationCancelledEvent struct {
	PurchaseID     string        `json:"purchase_id"`
	UserID         string        `json:"user_id"`
	EventID        string        `json:"event_id"`
	RefundedAmount float64       `json:"refunded_amount"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	Timestamp      time.Time     `json:"timestamp"`
}

// EventUpsertedEvent asks consumers to refresh derived copies of an event
type EventUpsertedEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
}
