package models

// ListEventsQuery - параметры GET /api/events
type ListEventsQuery struct {
	Query  string             `form:"query"`
	Filter RegistrationFilter `form:"filter" binding:"omitempty,regfilter"`
}

// SearchResult - события вместе с регистрациями пользователя
type SearchResult struct {
	Events        []Event        `json:"events"`
	Registrations []Registration `json:"registrations"`
}

// RegistrationFor returns the user's registration for the event, if any
func (r *SearchResult) RegistrationFor(eventID string) *Registration {
	if r == nil {
		return nil
	}
	for i := range r.Registrations {
		if r.Registrations[i].EventID == eventID {
			return &r.Registrations[i]
		}
	}
	return nil
}

// RegisterRequest - модель для регистрации на событие.
// ticket_type_id is validated by the coordinator so the error is the same for every caller.
type RegisterRequest struct {
	EventID      string `json:"event_id" binding:"required,uuid"`
	TicketTypeID string `json:"ticket_type_id" binding:"omitempty,uuid"`
}

// RegisterResult - результат register_user_for_event
type RegisterResult struct {
	PurchaseID     string        `json:"purchaseId"`
	RegistrationID string        `json:"registrationId"`
	AmountPaid     float64       `json:"amountPaid"`
	PaymentMethod  PaymentMethod `json:"paymentMethod"`
}

// UnregisterResult - результат unregister_user_from_event
type UnregisterResult struct {
	RefundedAmount float64       `json:"refundedAmount"`
	PaymentMethod  PaymentMethod `json:"paymentMethod"`
	PurchaseID     string        `json:"purchaseId"`
}

// RegistrationsResponse - список регистраций пользователя
type RegistrationsResponse struct {
	Registrations []RegistrationDetail `json:"registrations"`
}

// ErrorResponse - тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// EventDocument - документ события в поисковом индексе
type EventDocument struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	VenueName   string `json:"venue_name,omitempty"`
	Date        string `json:"date"`
}

// NewEventDocument flattens an event for indexing
func NewEventDocument(e *Event) EventDocument {
	doc := EventDocument{
		ID:   e.ID,
		Name: e.Name,
		Date: e.Date.Format("2006-01-02"),
	}
	if e.Description != nil {
		doc.Description = *e.Description
	}
	if e.Location != nil {
		doc.Location = *e.Location
	}
	if e.Venue != nil {
		doc.VenueName = e.Venue.Name
	}
	return doc
}
