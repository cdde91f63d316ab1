package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PaymentMethodFree is the stored value of a free purchase
const PaymentMethodFree = "free"

// PaymentMethod is either Free or an external gateway identified by its tag.
// The zero value is Free, matching the column default.
type PaymentMethod struct {
	gateway string
}

// FreePayment returns the Free payment method
func FreePayment() PaymentMethod {
	return PaymentMethod{}
}

// GatewayPayment returns an external gateway method such as "stripe"
func GatewayPayment(tag string) PaymentMethod {
	return ParsePaymentMethod(tag)
}

// ParsePaymentMethod maps "free" and "" to Free and everything else to a gateway tag
func ParsePaymentMethod(s string) PaymentMethod {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == PaymentMethodFree {
		return PaymentMethod{}
	}
	return PaymentMethod{gateway: s}
}

// IsFree reports whether no payment was taken
func (m PaymentMethod) IsFree() bool {
	return m.gateway == ""
}

// Gateway returns the gateway tag of a paid method
func (m PaymentMethod) Gateway() (string, bool) {
	return m.gateway, m.gateway != ""
}

func (m PaymentMethod) String() string {
	if m.IsFree() {
		return PaymentMethodFree
	}
	return m.gateway
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = FreePayment()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid payment method: %w", err)
	}
	*m = ParsePaymentMethod(s)
	return nil
}

// Scan implements sql.Scanner
func (m *PaymentMethod) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = FreePayment()
	case string:
		*m = ParsePaymentMethod(v)
	case []byte:
		*m = ParsePaymentMethod(string(v))
	default:
		return fmt.Errorf("cannot scan %T into PaymentMethod", src)
	}
	return nil
}

// Value implements driver.Valuer
func (m PaymentMethod) Value() (driver.Value, error) {
	return m.String(), nil
}

// PaymentStatus of a ticket purchase
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Label is the text shown next to a registration
func (s PaymentStatus) Label(amount float64, method PaymentMethod) string {
	if method.IsFree() || amount == 0 {
		return "Free"
	}

	switch s {
	case PaymentStatusCompleted:
		return "Paid"
	case PaymentStatusPending:
		return "Processing"
	case PaymentStatusFailed:
		return "Failed"
	case PaymentStatusRefunded:
		return "Refunded"
	default:
		return "Free"
	}
}

// PriceLabel renders a tier price: "Free" or "$25.00"
func PriceLabel(price float64) string {
	if price == 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", price)
}
