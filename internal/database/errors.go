package database

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL error codes the API distinguishes.
const (
	CodeForeignKeyViolation = "23503"
	CodeUniqueViolation     = "23505"
	CodeCheckViolation      = "23514"
	CodeRaiseException      = "P0001"
	CodeNoDataFound         = "P0002"
)

// StoreError is a domain error reported by the store. Error returns the store's own message.
type StoreError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func (e *StoreError) Error() string {
	return e.Message
}

// AsStoreError converts *pq.Error into *StoreError and leaves every other error as is.
func AsStoreError(err error) error {
	if err == nil {
		return nil
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// connection-level failures are not domain errors
		if isRetryableError(pqErr) {
			return err
		}
		return &StoreError{
			Message: pqErr.Message,
			Code:    string(pqErr.Code),
			Detail:  pqErr.Detail,
			Hint:    pqErr.Hint,
		}
	}

	return err
}
