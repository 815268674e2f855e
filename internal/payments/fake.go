package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
)

// FakeProvider is an in-process provider for development and tests. Webhook
// "signatures" are a shared secret compared verbatim.
type FakeProvider struct {
	secret  string
	counter atomic.Int64
	// FailCreate forces CreateIntent to fail with ErrUpstream.
	FailCreate bool
}

func NewFakeProvider(secret string) *FakeProvider {
	return &FakeProvider{secret: secret}
}

func (f *FakeProvider) Name() string { return "fake" }

func (f *FakeProvider) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	if f.FailCreate {
		return nil, ErrUpstream
	}
	n := f.counter.Add(1)
	id := fmt.Sprintf("pi_fake_%d", n)
	return &Intent{ID: id, ClientSecret: id + "_secret"}, nil
}

// fakePayload is the wire shape accepted by the fake provider's webhook.
type fakePayload struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	PaymentID string `json:"payment_id"`
}

func (f *FakeProvider) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	if signature != f.secret {
		return nil, ErrInvalidSignature
	}

	var p fakePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	return &Event{ID: p.ID, Type: p.Type, PaymentID: p.PaymentID, Raw: payload}, nil
}

var _ Provider = (*FakeProvider)(nil)
