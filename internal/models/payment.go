package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// paymentTransitions is the forward-only transition table. Anything not
// listed is rejected.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:    {PaymentStatusProcessing, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusProcessing: {PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusCompleted:  {PaymentStatusRefunded},
}

type Payment struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"user_id"`
	SubscriptionID    *uuid.UUID        `json:"subscription_id,omitempty"`
	PlanID            uuid.UUID         `json:"plan_id"`
	Provider          string            `json:"provider"`
	Amount            float64           `json:"amount"`
	Currency          string            `json:"currency"`
	Status            PaymentStatus     `json:"status"`
	ProviderPaymentID string            `json:"provider_payment_id,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// CanTransition reports whether moving to the target status is allowed from
// the current one.
func (p *Payment) CanTransition(to PaymentStatus) bool {
	for _, next := range paymentTransitions[p.Status] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves the payment to the target status, setting CompletedAt on
// the first entry into completed. Backward or unknown transitions fail.
func (p *Payment) Transition(to PaymentStatus) error {
	if !p.CanTransition(to) {
		return fmt.Errorf("payment: invalid transition %s -> %s", p.Status, to)
	}
	p.Status = to
	if to == PaymentStatusCompleted && p.CompletedAt == nil {
		now := time.Now()
		p.CompletedAt = &now
	}
	p.UpdatedAt = time.Now()
	return nil
}

// WebhookEvent records a provider-delivered event. The (provider, event_id)
// pair is the deduplication key: recording the same event twice must fail.
type WebhookEvent struct {
	ID          uuid.UUID  `json:"id"`
	EventID     string     `json:"event_id"`
	Provider    string     `json:"provider"`
	EventType   string     `json:"event_type"`
	Processed   bool       `json:"processed"`
	Payload     []byte     `json:"-"`
	Error       string     `json:"error,omitempty"`
	ReceivedAt  time.Time  `json:"received_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}
