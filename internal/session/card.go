package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"eventease/internal/models"
)

// ErrTierNotSelected is returned when toggling a tier while registered on a different one
var ErrTierNotSelected = errors.New("registered on a different ticket type")

// Registrar performs registration calls on behalf of the session user
type Registrar interface {
	Register(ctx context.Context, eventID, ticketTypeID string) (*models.RegisterResult, error)
	Unregister(ctx context.Context, eventID string) (*models.UnregisterResult, error)
}

// Phase is one of Idle, Pending, Committed or RolledBack
type Phase interface {
	phase()
}

type Idle struct{}

// Pending is an operation whose result has not arrived yet
type Pending struct {
	Operation    Operation
	TicketTypeID string
}

// Committed holds the registration confirmed by the last operation; nil after an unregister
type Committed struct {
	Registration *models.Registration
}

// RolledBack keeps the error of the last failed operation. The registration was left untouched.
type RolledBack struct {
	Err error
}

func (Idle) phase()       {}
func (Pending) phase()    {}
func (Committed) phase()  {}
func (RolledBack) phase() {}

type Operation int

const (
	OperationRegister Operation = iota
	OperationUnregister
)

// Card is the client state of one event: the last known registration and the operation in flight
type Card struct {
	mu           sync.Mutex
	event        models.Event
	userID       string
	registration *models.Registration
	phase        Phase
	registrar    Registrar
}

func NewCard(event models.Event, userID string, registration *models.Registration, registrar Registrar) *Card {
	return &Card{
		event:        event,
		userID:       userID,
		registration: cloneRegistration(registration),
		phase:        Idle{},
		registrar:    registrar,
	}
}

func (c *Card) Event() models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.event
}

func (c *Card) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Registration returns a copy of the current registration, nil when not registered
func (c *Card) Registration() *models.Registration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneRegistration(c.registration)
}

// Toggle registers on ticketTypeID, or unregisters when already registered on it.
// It returns false without calling the registrar while another operation is pending.
func (c *Card) Toggle(ctx context.Context, ticketTypeID string) (bool, error) {
	c.mu.Lock()
	if _, pending := c.phase.(Pending); pending {
		c.mu.Unlock()
		return false, nil
	}

	op := OperationRegister
	if c.registration != nil {
		registered, ok := c.registration.TicketTypeID()
		if !ok || registered != ticketTypeID {
			c.mu.Unlock()
			return false, ErrTierNotSelected
		}
		op = OperationUnregister
	}

	c.phase = Pending{Operation: op, TicketTypeID: ticketTypeID}
	c.mu.Unlock()

	return true, c.run(ctx, op, ticketTypeID)
}

// Cancel unregisters whatever tier the user holds
func (c *Card) Cancel(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if _, pending := c.phase.(Pending); pending || c.registration == nil {
		c.mu.Unlock()
		return false, nil
	}

	ticketTypeID, _ := c.registration.TicketTypeID()
	c.phase = Pending{Operation: OperationUnregister, TicketTypeID: ticketTypeID}
	c.mu.Unlock()

	return true, c.run(ctx, OperationUnregister, ticketTypeID)
}

func (c *Card) run(ctx context.Context, op Operation, ticketTypeID string) error {
	var (
		registration *models.Registration
		err          error
	)

	switch op {
	case OperationRegister:
		var result *models.RegisterResult
		result, err = c.registrar.Register(ctx, c.event.ID, ticketTypeID)
		if err == nil {
			registration = c.snapshot(result, ticketTypeID)
		}
	case OperationUnregister:
		_, err = c.registrar.Unregister(ctx, c.event.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.phase = RolledBack{Err: err}
		return err
	}

	c.registration = registration
	c.phase = Committed{Registration: cloneRegistration(registration)}
	return nil
}

func (c *Card) snapshot(result *models.RegisterResult, ticketTypeID string) *models.Registration {
	purchaseID := result.PurchaseID
	return &models.Registration{
		ID:               result.RegistrationID,
		UserID:           c.userID,
		EventID:          c.event.ID,
		TicketPurchaseID: &purchaseID,
		RegisteredAt:     time.Now(),
		TicketPurchase:   &models.PurchaseRef{TicketTypeID: ticketTypeID},
	}
}

// Sync replaces the registration with a freshly fetched one. Ignored while an operation is pending.
func (c *Card) Sync(event models.Event, registration *models.Registration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, pending := c.phase.(Pending); pending {
		return
	}
	c.event = event
	c.registration = cloneRegistration(registration)
}

func cloneRegistration(r *models.Registration) *models.Registration {
	if r == nil {
		return nil
	}
	clone := *r
	if r.TicketPurchaseID != nil {
		id := *r.TicketPurchaseID
		clone.TicketPurchaseID = &id
	}
	if r.TicketPurchase != nil {
		ref := *r.TicketPurchase
		clone.TicketPurchase = &ref
	}
	return &clone
}
