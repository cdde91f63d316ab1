package validation

import (
	"errors"
	"testing"

	"eventease/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, RegisterTags(v))
	return v
}

func TestRegistrationFilterTag(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		filter models.RegistrationFilter
		valid  bool
	}{
		{"", true},
		{models.FilterAll, true},
		{models.FilterRegistered, true},
		{models.FilterNotRegistered, true},
		{"unregistered", false},
		{"ALL", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			err := v.Struct(models.ListEventsQuery{Filter: tt.filter})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Equal(t, "Filter must be one of all, registered, not-registered: Filter", Message(err))
			}
		})
	}
}

func TestRegisterRequestValidation(t *testing.T) {
	v := newValidator(t)

	err := v.Struct(models.RegisterRequest{})
	require.Error(t, err)
	assert.Equal(t, "Field is required: EventID", Message(err))

	err = v.Struct(models.RegisterRequest{EventID: "not-a-uuid"})
	require.Error(t, err)
	assert.Equal(t, "Must be a valid UUID: EventID", Message(err))

	// A missing ticket type passes binding; the coordinator rejects it
	err = v.Struct(models.RegisterRequest{EventID: "6f1c7a52-3f9e-4d8a-9b1e-2c4d5e6f7a80"})
	assert.NoError(t, err)
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID("6f1c7a52-3f9e-4d8a-9b1e-2c4d5e6f7a80"))
	assert.True(t, IsUUID("6F1C7A52-3F9E-4D8A-9B1E-2C4D5E6F7A80"))
	assert.False(t, IsUUID("42"))
	assert.False(t, IsUUID(""))
	assert.False(t, IsUUID("6f1c7a523f9e4d8a9b1e2c4d5e6f7a80"))
	assert.False(t, IsUUID("{6f1c7a52-3f9e-4d8a-9b1e-2c4d5e6f7a80}"))
}

func TestNormalizeUUID(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"6f1c7a52-3f9e-4d8a-9b1e-2c4d5e6f7a80", "6f1c7a52-3f9e-4d8a-9b1e-2c4d5e6f7a80", true},
		{"6F1C7A52-3F9E-4D8A-9B1E-2C4D5E6F7A80", "6f1c7a52-3f9e-4d8a-9b1e-2c4d5e6f7a80", true},
		{"urn:uuid:6f1c7a52-3f9e-4d8a-9b1e-2c4d5e6f7a80", "", false},
		{"6f1c7a52-3f9e-4d8a-9b1e-2c4d5e6f7a8g", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeUUID(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMessage_NonValidationError(t *testing.T) {
	assert.Equal(t, "Invalid request: EOF", Message(errors.New("EOF")))
}

func TestRegister(t *testing.T) {
	assert.NoError(t, Register())
	assert.NoError(t, Register())
}
