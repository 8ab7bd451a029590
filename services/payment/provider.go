package payment

import (
	"errors"
	"strings"
)

// Provider names
const (
	ProviderHotmart = "hotmart"
	ProviderStripe  = "stripe"
	ProviderPagarme = "pagarme"
	ProviderManual  = "manual"
)

var (
	// ErrBadSignature means the notification could not be attributed to the
	// provider. Nothing may be persisted after this error.
	ErrBadSignature = errors.New("payment: signature verification failed")
	// ErrInvalidPayload means the notification is missing required
	// correlation fields and was rejected before any state change.
	ErrInvalidPayload = errors.New("payment: invalid provider payload")
	// ErrEventIgnored means the notification is authentic but carries an
	// event type this system does not act on.
	ErrEventIgnored = errors.New("payment: event ignored")
)

// Event is a provider notification normalized to the shape the
// reconciliation flow consumes. Every provider reduces its own payload to
// this; the orchestrator never sees provider-specific fields.
type Event struct {
	Provider   string
	ProviderID string // external transaction/session id
	Status     string // provider's own status label
	CourseID   uint
	PayerEmail string
	PayerName  string
	Amount     float64
	Raw        []byte // notification as received, kept for audit
}

// Provider verifies and normalizes a raw provider notification
type Provider interface {
	Name() string
	ConfirmPayment(raw []byte, signature string) (*Event, error)
}

// IsSuccessStatus reports whether a provider status label means the payment
// went through. Hotmart sends APPROVED in upper case on some webhook
// versions, so the comparison is case-insensitive.
func IsSuccessStatus(status string) bool {
	switch strings.ToLower(status) {
	case "approved", "paid", "completed":
		return true
	}
	return false
}
