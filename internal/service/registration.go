package service

import (
	"context"
	"strings"
	"sync"
	"time"

	apperrors "eventease/internal/errors"
	"eventease/internal/logger"
	"eventease/internal/metrics"
	"eventease/internal/models"
)

const (
	operationRegister   = "register"
	operationUnregister = "unregister"
)

type RegistrationStore interface {
	RegisterUserForEvent(ctx context.Context, userID, eventID, ticketTypeID string) (*models.RegisterResult, error)
	UnregisterUserFromEvent(ctx context.Context, userID, eventID string) (*models.UnregisterResult, error)
}

// Guard admits one operation per key at a time. Acquire returns false when the key is held.
type Guard interface {
	Acquire(ctx context.Context, key string) (bool, func(), error)
}

type Publisher interface {
	Publish(subject string, data interface{}) error
}

// LocalGuard is an in-process Guard for single-instance deployments
type LocalGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{inflight: make(map[string]struct{})}
}

func (g *LocalGuard) Acquire(_ context.Context, key string) (bool, func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inflight[key]; busy {
		return false, func() {}, nil
	}
	g.inflight[key] = struct{}{}

	var once sync.Once
	return true, func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inflight, key)
			g.mu.Unlock()
		})
	}, nil
}

// RegistrationCoordinator registers and unregisters users through the store's atomic procedures
type RegistrationCoordinator struct {
	store     RegistrationStore
	guard     Guard
	publisher Publisher
}

func NewRegistrationCoordinator(store RegistrationStore, guard Guard, publisher Publisher) *RegistrationCoordinator {
	if guard == nil {
		guard = NewLocalGuard()
	}
	return &RegistrationCoordinator{
		store:     store,
		guard:     guard,
		publisher: publisher,
	}
}

// Register buys ticketTypeID for the user. Store errors are returned as is.
func (s *RegistrationCoordinator) Register(ctx context.Context, userID, eventID, ticketTypeID string) (*models.RegisterResult, error) {
	if strings.TrimSpace(ticketTypeID) == "" {
		metrics.RegistrationOperation(operationRegister, "invalid")
		return nil, apperrors.ErrTicketTypeRequired
	}

	release, err := s.enter(ctx, operationRegister, userID, eventID)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := s.store.RegisterUserForEvent(ctx, userID, eventID, ticketTypeID)
	if err != nil {
		metrics.RegistrationOperation(operationRegister, "error")
		logger.WithContext(ctx).Warn("Registration rejected",
			"event_id", eventID,
			"ticket_type_id", ticketTypeID,
			"error", err)
		return nil, err
	}

	metrics.RegistrationOperation(operationRegister, "ok")
	logger.WithContext(ctx).Info("User registered for event",
		"event_id", eventID,
		"registration_id", result.RegistrationID,
		"amount_paid", result.AmountPaid,
		"payment_method", result.PaymentMethod.String())

	s.publish(ctx, models.EventRegistrationCreated, models.RegistrationCreatedEvent{
		RegistrationID: result.RegistrationID,
		PurchaseID:     result.PurchaseID,
		UserID:         userID,
		EventID:        eventID,
		TicketTypeID:   ticketTypeID,
		AmountPaid:     result.AmountPaid,
		PaymentMethod:  result.PaymentMethod,
		Timestamp:      time.Now(),
	})

	return result, nil
}

// Unregister removes the user's registration; the store decides the refund
func (s *RegistrationCoordinator) Unregister(ctx context.Context, userID, eventID string) (*models.UnregisterResult, error) {
	release, err := s.enter(ctx, operationUnregister, userID, eventID)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := s.store.UnregisterUserFromEvent(ctx, userID, eventID)
	if err != nil {
		metrics.RegistrationOperation(operationUnregister, "error")
		logger.WithContext(ctx).Warn("Unregistration rejected",
			"event_id", eventID,
			"error", err)
		return nil, err
	}

	metrics.RegistrationOperation(operationUnregister, "ok")
	logger.WithContext(ctx).Info("User unregistered from event",
		"event_id", eventID,
		"refunded_amount", result.RefundedAmount,
		"payment_method", result.PaymentMethod.String())

	s.publish(ctx, models.EventRegistrationCancelled, models.RegistrationCancelledEvent{
		PurchaseID:     result.PurchaseID,
		UserID:         userID,
		EventID:        eventID,
		RefundedAmount: result.RefundedAmount,
		PaymentMethod:  result.PaymentMethod,
		Timestamp:      time.Now(),
	})

	return result, nil
}

// enter takes the (user, event) guard. If the guard backend is down the operation runs unguarded.
func (s *RegistrationCoordinator) enter(ctx context.Context, operation, userID, eventID string) (func(), error) {
	acquired, release, err := s.guard.Acquire(ctx, userID+":"+eventID)
	if err != nil {
		logger.WithContext(ctx).Warn("Registration guard unavailable, proceeding without it",
			"operation", operation,
			"event_id", eventID,
			"error", err)
		return func() {}, nil
	}
	if !acquired {
		metrics.RegistrationOperation(operation, "in_progress")
		return nil, apperrors.ErrOperationInProgress
	}
	return release, nil
}

func (s *RegistrationCoordinator) publish(ctx context.Context, subject string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(subject, data); err != nil {
		// Log error but don't fail the operation
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
}
