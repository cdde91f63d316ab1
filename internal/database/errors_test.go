package database

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsStoreError(t *testing.T) {
	pqErr := &pq.Error{
		Code:    pq.ErrorCode(CodeUniqueViolation),
		Message: "User is already registered for this event",
		Hint:    "Unregister first",
	}

	err := AsStoreError(fmt.Errorf("failed to register: %w", pqErr))

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "User is already registered for this event", storeErr.Error())
	assert.Equal(t, CodeUniqueViolation, storeErr.Code)
	assert.Equal(t, "Unregister first", storeErr.Hint)
}

func TestAsStoreErrorPassthrough(t *testing.T) {
	assert.NoError(t, AsStoreError(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, AsStoreError(plain))

	existing := &StoreError{Message: "Ticket type is sold out", Code: CodeCheckViolation}
	assert.Same(t, existing, AsStoreError(fmt.Errorf("wrapped: %w", existing)))

	connErr := &pq.Error{Code: "08006", Message: "connection failure"}
	var storeErr *StoreError
	assert.False(t, errors.As(AsStoreError(connErr), &storeErr))
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bad conn", driver.ErrBadConn, true},
		{"connection exception", &pq.Error{Code: "08001"}, true},
		{"admin shutdown", &pq.Error{Code: "57P01"}, true},
		{"unique violation", &pq.Error{Code: pq.ErrorCode(CodeUniqueViolation)}, false},
		{"connection refused text", errors.New("dial tcp: connection refused"), true},
		{"timeout text", errors.New("i/o timeout"), true},
		{"syntax", errors.New("syntax error at or near"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "eventease", SSLMode: "disable"}
	assert.Contains(t, cfg.DSN(), "host=db")
	assert.Contains(t, cfg.DSN(), "dbname=eventease")
}
