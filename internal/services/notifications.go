package services

import "context"

// Notification event types consumed by the worker.
const (
	NotificationWelcome        = "welcome_email"
	NotificationPaymentReceipt = "payment_receipt"
	NotificationPlanSuspended  = "plan_suspended"
)

// Notification is the queue message the worker delivers.
type Notification struct {
	Type   string            `json:"type"`
	Email  string            `json:"email"`
	Tenant string            `json:"tenant,omitempty"`
	Data   map[string]string `json:"data,omitempty"`
}

// Notifier enqueues notifications for asynchronous delivery.
type Notifier interface {
	EnqueueNotification(ctx context.Context, event any) error
}
