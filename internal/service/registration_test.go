package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eventease/internal/database"
	apperrors "eventease/internal/errors"
	"eventease/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore mimics the register/unregister procedures for one tier catalog
type memoryStore struct {
	mu            sync.Mutex
	prices        map[string]float64
	registrations map[string]string // user:event -> ticket type
	registerCalls int
	block         chan struct{}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		prices:        map[string]float64{"free-tier": 0, "vip-tier": 25},
		registrations: map[string]string{},
	}
}

func (m *memoryStore) RegisterUserForEvent(ctx context.Context, userID, eventID, ticketTypeID string) (*models.RegisterResult, error) {
	if m.block != nil {
		<-m.block
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.registerCalls++

	price, ok := m.prices[ticketTypeID]
	if !ok {
		return nil, &database.StoreError{Message: "Ticket type not found for this event", Code: database.CodeForeignKeyViolation}
	}
	key := userID + ":" + eventID
	if _, exists := m.registrations[key]; exists {
		return nil, &database.StoreError{Message: "User is already registered for this event", Code: database.CodeUniqueViolation}
	}
	m.registrations[key] = ticketTypeID

	method := models.FreePayment()
	if price > 0 {
		method = models.GatewayPayment("stripe")
	}
	return &models.RegisterResult{
		PurchaseID:     "purchase-" + ticketTypeID,
		RegistrationID: "registration-" + key,
		AmountPaid:     price,
		PaymentMethod:  method,
	}, nil
}

func (m *memoryStore) UnregisterUserFromEvent(ctx context.Context, userID, eventID string) (*models.UnregisterResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := userID + ":" + eventID
	ticketTypeID, ok := m.registrations[key]
	if !ok {
		return nil, &database.StoreError{Message: "Registration not found", Code: database.CodeNoDataFound}
	}
	delete(m.registrations, key)

	price := m.prices[ticketTypeID]
	method := models.FreePayment()
	if price > 0 {
		method = models.GatewayPayment("stripe")
	}
	return &models.UnregisterResult{
		RefundedAmount: price,
		PaymentMethod:  method,
		PurchaseID:     "purchase-" + ticketTypeID,
	}, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (p *recordingPublisher) Publish(subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return p.err
}

type brokenGuard struct{}

func (brokenGuard) Acquire(ctx context.Context, key string) (bool, func(), error) {
	return false, func() {}, errors.New("valkey unreachable")
}

func TestRegister_MissingTicketType(t *testing.T) {
	store := newMemoryStore()
	coordinator := NewRegistrationCoordinator(store, nil, nil)

	for _, ticketTypeID := range []string{"", "   "} {
		result, err := coordinator.Register(context.Background(), "user-1", "event-1", ticketTypeID)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, apperrors.ErrTicketTypeRequired)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		assert.Equal(t, "Ticket type is required for registration", err.Error())
	}
	assert.Zero(t, store.registerCalls)
}

func TestRegister_FreeAndPaidTiers(t *testing.T) {
	tests := []struct {
		name       string
		tier       string
		wantAmount float64
		wantFree   bool
	}{
		{name: "free tier", tier: "free-tier", wantAmount: 0, wantFree: true},
		{name: "paid tier", tier: "vip-tier", wantAmount: 25, wantFree: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &recordingPublisher{}
			coordinator := NewRegistrationCoordinator(newMemoryStore(), nil, publisher)

			registered, err := coordinator.Register(context.Background(), "user-1", "event-1", tt.tier)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, registered.AmountPaid)
			assert.Equal(t, tt.wantFree, registered.PaymentMethod.IsFree())

			unregistered, err := coordinator.Unregister(context.Background(), "user-1", "event-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, unregistered.RefundedAmount)
			assert.Equal(t, tt.wantFree, unregistered.PaymentMethod.IsFree())

			assert.Equal(t, []string{models.EventRegistrationCreated, models.EventRegistrationCancelled}, publisher.subjects)
		})
	}
}

func TestRegister_StoreErrorReturnedVerbatim(t *testing.T) {
	store := newMemoryStore()
	coordinator := NewRegistrationCoordinator(store, nil, nil)

	_, err := coordinator.Register(context.Background(), "user-1", "event-1", "free-tier")
	require.NoError(t, err)

	_, err = coordinator.Register(context.Background(), "user-1", "event-1", "free-tier")
	require.Error(t, err)
	assert.Equal(t, "User is already registered for this event", err.Error())

	var storeErr *database.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, database.CodeUniqueViolation, storeErr.Code)
}

func TestUnregister_Twice(t *testing.T) {
	store := newMemoryStore()
	coordinator := NewRegistrationCoordinator(store, nil, nil)

	_, err := coordinator.Register(context.Background(), "user-1", "event-1", "vip-tier")
	require.NoError(t, err)

	_, err = coordinator.Unregister(context.Background(), "user-1", "event-1")
	require.NoError(t, err)

	_, err = coordinator.Unregister(context.Background(), "user-1", "event-1")
	require.Error(t, err)
	assert.Equal(t, "Registration not found", err.Error())
	assert.Empty(t, store.registrations)
}

func TestRegister_ConcurrentCallIsRejected(t *testing.T) {
	store := newMemoryStore()
	store.block = make(chan struct{})
	coordinator := NewRegistrationCoordinator(store, NewLocalGuard(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := coordinator.Register(context.Background(), "user-1", "event-1", "free-tier")
		done <- err
	}()

	// Wait until the first call holds the guard
	require.Eventually(t, func() bool {
		acquired, release, _ := coordinator.guard.Acquire(context.Background(), "user-1:event-1")
		if acquired {
			release()
		}
		return !acquired
	}, time.Second, 5*time.Millisecond)

	_, err := coordinator.Register(context.Background(), "user-1", "event-1", "free-tier")
	assert.ErrorIs(t, err, apperrors.ErrOperationInProgress)

	_, err = coordinator.Unregister(context.Background(), "user-1", "event-1")
	assert.ErrorIs(t, err, apperrors.ErrOperationInProgress)

	close(store.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, store.registerCalls)

	// Another event is not affected
	_, err = coordinator.Register(context.Background(), "user-1", "event-2", "free-tier")
	assert.NoError(t, err)
}

func TestRegister_GuardOutageProceeds(t *testing.T) {
	store := newMemoryStore()
	coordinator := NewRegistrationCoordinator(store, brokenGuard{}, nil)

	result, err := coordinator.Register(context.Background(), "user-1", "event-1", "free-tier")

	require.NoError(t, err)
	assert.Equal(t, "purchase-free-tier", result.PurchaseID)
}

func TestRegister_PublishFailureIsNotReturned(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("nats down")}
	coordinator := NewRegistrationCoordinator(newMemoryStore(), nil, publisher)

	_, err := coordinator.Register(context.Background(), "user-1", "event-1", "free-tier")

	assert.NoError(t, err)
	assert.Len(t, publisher.subjects, 1)
}

func TestLocalGuard(t *testing.T) {
	guard := NewLocalGuard()

	acquired, release, err := guard.Acquire(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, acquired)

	again, _, err := guard.Acquire(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, again)

	release()
	release()

	acquired, _, err = guard.Acquire(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, acquired)
}
