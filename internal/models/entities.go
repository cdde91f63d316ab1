package models

import (
	"time"

	apperrors "eventease/internal/errors"
)

// Organization owns organizers
type Organization struct {
	ID           string  `json:"id,omitempty" db:"id"`
	Name         string  `json:"name" db:"name"`
	Type         string  `json:"type" db:"type"`
	ContactEmail *string `json:"contact_email,omitempty" db:"contact_email"`
}

// Organizer runs events on behalf of an organization
type Organizer struct {
	ID             string        `json:"id,omitempty" db:"id"`
	Name           string        `json:"name" db:"name"`
	ContactInfo    *string       `json:"contact_info" db:"contact_info"`
	OrganizationID *string       `json:"organization_id,omitempty" db:"organization_id"`
	Organization   *Organization `json:"organizations"`
}

// Venue is where an event takes place
type Venue struct {
	ID       string  `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Address  *string `json:"address" db:"address"`
	Capacity *int    `json:"capacity,omitempty" db:"capacity"`
}

// TicketType is a purchasable tier of an event. Price 0 is a free tier.
type TicketType struct {
	ID          string  `json:"id" db:"id"`
	EventID     string  `json:"event_id,omitempty" db:"event_id"`
	TierName    string  `json:"tier_name" db:"tier_name"`
	Price       float64 `json:"price" db:"price"`
	Capacity    *int    `json:"capacity" db:"capacity"`
	Description *string `json:"description" db:"description"`
}

// IsFree reports whether the tier costs nothing
func (t TicketType) IsFree() bool {
	return t.Price == 0
}

// Event with its organizer, venue and ticket tiers
type Event struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	Date        time.Time  `json:"date" db:"date"`
	StartTime   *time.Time `json:"start_time" db:"start_time"`
	EndTime     *time.Time `json:"end_time" db:"end_time"`
	Location    *string    `json:"location" db:"location"`
	VenueID     *string    `json:"venue_id" db:"venue_id"`
	OrganizerID *string    `json:"organizer_id" db:"organizer_id"`
	Capacity    *int       `json:"capacity" db:"capacity"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	Organizer   *Organizer   `json:"organizers"`
	Venue       *Venue       `json:"venues"`
	TicketTypes []TicketType `json:"ticket_types"`

	// DataError is set when the stored event violates a model invariant.
	DataError string `json:"data_error,omitempty"`
}

// DataErrorMissingTicketTypes is shown in place of the ticket section.
const DataErrorMissingTicketTypes = "Event missing required ticket types"

// CheckTicketTypes enforces that every event has at least one ticket type.
func (e *Event) CheckTicketTypes() error {
	if len(e.TicketTypes) == 0 {
		return apperrors.ErrMissingTicketTypes
	}
	return nil
}

// FlagInvalid marks the event instead of dropping it, so callers render the data error.
func (e *Event) FlagInvalid() error {
	err := e.CheckTicketTypes()
	if err != nil {
		e.DataError = DataErrorMissingTicketTypes
	}
	return err
}

// TicketType finds a tier of the event by id
func (e *Event) TicketType(id string) (TicketType, bool) {
	for _, tt := range e.TicketTypes {
		if tt.ID == id {
			return tt, true
		}
	}
	return TicketType{}, false
}

// RankedEvent is one row of a full-text ranking, best first
type RankedEvent struct {
	ID   string  `json:"id"`
	Rank float64 `json:"rank"`
}

// PurchaseRef is the purchase linkage returned with a registration listing
type PurchaseRef struct {
	TicketTypeID string `json:"ticket_type_id"`
}

// Registration links a user to an event through a ticket purchase
type Registration struct {
	ID               string       `json:"id" db:"id"`
	UserID           string       `json:"user_id" db:"user_id"`
	EventID          string       `json:"event_id" db:"event_id"`
	TicketPurchaseID *string      `json:"ticket_purchase_id" db:"ticket_purchase_id"`
	RegisteredAt     time.Time    `json:"registered_at" db:"registered_at"`
	TicketPurchase   *PurchaseRef `json:"ticket_purchases"`
}

// TicketTypeID returns the tier the registration was purchased on, if known
func (r *Registration) TicketTypeID() (string, bool) {
	if r == nil || r.TicketPurchase == nil || r.TicketPurchase.TicketTypeID == "" {
		return "", false
	}
	return r.TicketPurchase.TicketTypeID, true
}

// TicketPurchase records what was paid for a registration
type TicketPurchase struct {
	ID               string        `json:"id" db:"id"`
	UserID           string        `json:"user_id" db:"user_id"`
	TicketTypeID     string        `json:"ticket_type_id" db:"ticket_type_id"`
	AmountPaid       float64       `json:"amount_paid" db:"amount_paid"`
	PaymentMethod    PaymentMethod `json:"payment_method" db:"payment_method"`
	PaymentReference *string       `json:"payment_reference" db:"payment_reference"`
	PaymentStatus    PaymentStatus `json:"payment_status" db:"payment_status"`
	Quantity         int           `json:"quantity" db:"quantity"`
	PurchasedAt      time.Time     `json:"purchased_at" db:"purchased_at"`

	TicketType *TicketType `json:"ticket_types"`
}

// StatusLabel is the user-facing payment label of the purchase
func (p *TicketPurchase) StatusLabel() string {
	return p.PaymentStatus.Label(p.AmountPaid, p.PaymentMethod)
}

// RegistrationDetail is a registration joined with its event and purchase
type RegistrationDetail struct {
	Registration
	Event        *Event          `json:"events"`
	Purchase     *TicketPurchase `json:"ticket_purchases"`
	PaymentLabel string          `json:"payment_label"`
}

// Category groups events; many-to-many through event_categories
type Category struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Color       *string   `json:"color" db:"color"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// EventStats is a row of the event_stats view
type EventStats struct {
	EventID            string     `json:"event_id" db:"event_id"`
	Capacity           *int       `json:"capacity" db:"capacity"`
	RegistrationsCount int        `json:"registrations_count" db:"registrations_count"`
	SeatsRemaining     *int       `json:"seats_remaining" db:"seats_remaining"`
	LastRegistrationAt *time.Time `json:"last_registration_at" db:"last_registration_at"`
}
