// Package payments abstracts the external payment provider. The rest of the
// system treats the provider as an opaque remote capability: it creates
// intents and verifies webhook deliveries, nothing more.
package payments

import (
	"context"
	"errors"
)

// Errors
var (
	ErrUpstream         = errors.New("payments: provider call failed")
	ErrInvalidSignature = errors.New("payments: invalid webhook signature")
)

// Event types the reconciliation flow reacts to, normalized across
// providers to the Stripe names.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// Intent is a provider-side payment awaiting confirmation.
type Intent struct {
	ID           string
	ClientSecret string
}

// Event is a verified webhook delivery.
type Event struct {
	ID        string
	Type      string
	PaymentID string // provider payment id the event refers to, if any
	Raw       []byte
}

// Provider is the remote payment capability.
type Provider interface {
	Name() string
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error)
	// VerifyWebhook checks the provider signature and parses the payload.
	// Unverifiable payloads must fail with ErrInvalidSignature before any
	// field is read.
	VerifyWebhook(payload []byte, signature string) (*Event, error)
}
