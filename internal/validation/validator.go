package validation

import (
	"errors"
	"fmt"
	"sync"

	"eventease/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	ErrInvalidFormat     = "Invalid format"
	ErrFieldRequired     = "Field is required"
	ErrInvalidUUID       = "Must be a valid UUID"
	ErrInvalidFilter     = "Filter must be one of all, registered, not-registered"
	ErrUnknownValidation = "Unknown validation error"
)

var registerOnce sync.Once

// Register adds the custom tags to gin's binding validator. Safe to call more than once.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		err = RegisterTags(v)
	})
	return err
}

// RegisterTags adds the custom tags to v
func RegisterTags(v *validator.Validate) error {
	if err := v.RegisterValidation("regfilter", validateRegistrationFilter); err != nil {
		return fmt.Errorf("failed to register regfilter validation: %w", err)
	}
	return nil
}

func validateRegistrationFilter(fl validator.FieldLevel) bool {
	return models.RegistrationFilter(fl.Field().String()).Valid()
}

// NormalizeUUID accepts a hyphenated UUID in either case and returns its lowercase form
func NormalizeUUID(s string) (string, bool) {
	if len(s) != 36 {
		return "", false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// IsUUID reports whether s is a hyphenated UUID
func IsUUID(s string) bool {
	_, ok := NormalizeUUID(s)
	return ok
}

// Message turns a binding error into the text returned to clients
func Message(err error) string {
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) || len(vErrors) == 0 {
		return "Invalid request: " + err.Error()
	}

	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "required":
		msg = ErrFieldRequired
	case "uuid", "uuid4":
		msg = ErrInvalidUUID
	case "regfilter":
		msg = ErrInvalidFilter
	default:
		msg = ErrInvalidFormat
	}
	return msg + ": " + ve.Field()
}
