package session

import (
	"eventease/internal/models"
)

type TierStatus int

const (
	TierNotRegistered TierStatus = iota
	TierRegistered
	TierNotSelected
	TierPending
)

const (
	HeadingRegistration  = "Registration:"
	HeadingTicketOptions = "Ticket Options:"
)

// TierView is how one ticket type is presented on a card
type TierView struct {
	TicketType models.TicketType
	PriceLabel string
	Status     TierStatus
	Label      string
	Disabled   bool
}

// Heading titles the ticket section; a single free tier reads as plain registration
func (c *Card) Heading() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	tiers := c.event.TicketTypes
	if len(tiers) == 1 && tiers[0].IsFree() {
		return HeadingRegistration
	}
	return HeadingTicketOptions
}

// Notice is the data error to show in place of tiers, empty for a valid event
func (c *Card) Notice() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.event.TicketTypes) == 0 {
		return models.DataErrorMissingTicketTypes
	}
	return c.event.DataError
}

func (c *Card) Tiers() []TierView {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, pending := c.phase.(Pending)
	registeredTier, hasTier := c.registration.TicketTypeID()
	registered := c.registration != nil

	views := make([]TierView, 0, len(c.event.TicketTypes))
	for _, tt := range c.event.TicketTypes {
		view := TierView{
			TicketType: tt,
			PriceLabel: models.PriceLabel(tt.Price),
		}

		switch {
		case registered && hasTier && registeredTier == tt.ID:
			view.Status, view.Label = TierRegistered, "Registered"
			if pending {
				view.Status, view.Label, view.Disabled = TierPending, "Canceling...", true
			}
		case registered:
			view.Status, view.Label, view.Disabled = TierNotSelected, "Not Selected", true
		default:
			view.Status, view.Label = TierNotRegistered, actionLabel(tt)
			if pending {
				view.Status, view.Label, view.Disabled = TierPending, pendingLabel(tt), true
			}
		}

		views = append(views, view)
	}
	return views
}

func actionLabel(tt models.TicketType) string {
	if tt.IsFree() {
		return "Register"
	}
	return "Purchase"
}

func pendingLabel(tt models.TicketType) string {
	if tt.IsFree() {
		return "Registering..."
	}
	return "Purchasing..."
}
