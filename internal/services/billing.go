package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/metrics"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/payments"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/storage"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/syncutil"
)

// Errors
var (
	ErrPlanUnavailable = errors.New("services: plan not available for purchase")
	ErrPaymentNotReady = errors.New("services: payment is not completed")
)

// subscriptionPeriod is the billing period granted per completed payment.
const subscriptionPeriod = 30 * 24 * time.Hour

// BillingService drives the payment lifecycle: intent creation, webhook
// reconciliation and tenant onboarding.
type BillingService struct {
	users         repository.UserRepository
	tenants       repository.TenantRepository
	plans         repository.PlanRepository
	roles         repository.RoleRepository
	subscriptions repository.SubscriptionRepository
	payments      repository.PaymentRepository
	events        repository.WebhookEventRepository

	provider payments.Provider
	archive  storage.Archive // optional
	notifier Notifier        // optional
	logger   *slog.Logger

	onboarding syncutil.ShardedMutex
}

type BillingDeps struct {
	Users         repository.UserRepository
	Tenants       repository.TenantRepository
	Plans         repository.PlanRepository
	Roles         repository.RoleRepository
	Subscriptions repository.SubscriptionRepository
	Payments      repository.PaymentRepository
	Events        repository.WebhookEventRepository
	Provider      payments.Provider
	Archive       storage.Archive
	Notifier      Notifier
	Logger        *slog.Logger
}

func NewBillingService(deps BillingDeps) *BillingService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &BillingService{
		users:         deps.Users,
		tenants:       deps.Tenants,
		plans:         deps.Plans,
		roles:         deps.Roles,
		subscriptions: deps.Subscriptions,
		payments:      deps.Payments,
		events:        deps.Events,
		provider:      deps.Provider,
		archive:       deps.Archive,
		notifier:      deps.Notifier,
		logger:        logger,
	}
}

// CreatePayment opens a pending payment for a plan purchase and creates the
// provider-side intent. The returned client secret is handed to the frontend
// to complete the charge.
func (s *BillingService) CreatePayment(ctx context.Context, userID, planID uuid.UUID) (*models.Payment, string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrPlanUnavailable
		}
		return nil, "", fmt.Errorf("failed to get plan: %w", err)
	}
	if !plan.IsActive {
		return nil, "", ErrPlanUnavailable
	}

	paymentID := uuid.New()
	metadata := map[string]string{
		"payment_id": paymentID.String(),
		"user_id":    user.ID.String(),
		"plan_id":    plan.ID.String(),
	}

	intent, err := s.provider.CreateIntent(ctx, int64(plan.Price*100), plan.Currency, metadata)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create payment intent: %w", err)
	}

	now := time.Now()
	payment := &models.Payment{
		ID:                paymentID,
		UserID:            user.ID,
		PlanID:            plan.ID,
		Provider:          s.provider.Name(),
		Amount:            plan.Price,
		Currency:          plan.Currency,
		Status:            models.PaymentStatusPending,
		ProviderPaymentID: intent.ID,
		Metadata:          metadata,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, "", fmt.Errorf("failed to create payment: %w", err)
	}

	metrics.PaymentsTotal.WithLabelValues(string(models.PaymentStatusPending)).Inc()
	return payment, intent.ClientSecret, nil
}

// GetPayment returns a payment visible to the given user.
func (s *BillingService) GetPayment(ctx context.Context, userID, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return payment, nil
}

// ListPayments returns the user's payments, newest first.
func (s *BillingService) ListPayments(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	return s.payments.ListByUser(ctx, userID)
}

// GetSubscription returns the user's subscription, if any.
func (s *BillingService) GetSubscription(ctx context.Context, userID uuid.UUID) (*models.UserSubscription, error) {
	return s.subscriptions.GetByUser(ctx, userID)
}

// ConfirmPayment marks a payment completed and onboards the buyer. It exists
// for providers without webhook delivery; with Stripe the webhook path does
// the same work.
func (s *BillingService) ConfirmPayment(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.Status != models.PaymentStatusCompleted {
		if err := payment.Transition(models.PaymentStatusCompleted); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPaymentNotReady, err)
		}
		if err := s.payments.Update(ctx, payment); err != nil {
			return nil, fmt.Errorf("failed to update payment: %w", err)
		}
		metrics.PaymentsTotal.WithLabelValues(string(models.PaymentStatusCompleted)).Inc()
	}

	if err := s.Onboard(ctx, payment.ID); err != nil {
		return nil, err
	}
	return s.payments.GetByID(ctx, payment.ID)
}

// ProcessWebhook verifies, deduplicates and applies one provider webhook
// delivery. Verification failures return payments.ErrInvalidSignature;
// everything else is acknowledged, including replays and events for unknown
// payments.
func (s *BillingService) ProcessWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.VerifyWebhook(payload, signature)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	record := &models.WebhookEvent{
		ID:         uuid.New(),
		EventID:    event.ID,
		Provider:   s.provider.Name(),
		EventType:  event.Type,
		Payload:    event.Raw,
		ReceivedAt: time.Now(),
	}
	if err := s.events.Record(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateEvent) {
			metrics.WebhookEventsTotal.WithLabelValues("duplicate").Inc()
			s.logger.Info("duplicate webhook event ignored", "provider", record.Provider, "event_id", event.ID)
			return nil
		}
		return fmt.Errorf("failed to record webhook event: %w", err)
	}

	s.archivePayload(ctx, record)

	procErr := s.applyEvent(ctx, event)
	errMsg := ""
	if procErr != nil {
		errMsg = procErr.Error()
		metrics.WebhookEventsTotal.WithLabelValues("failed").Inc()
		s.logger.Error("webhook event processing failed", "event_id", event.ID, "type", event.Type, "error", procErr)
	}
	if err := s.events.MarkProcessed(ctx, record.ID, errMsg); err != nil {
		s.logger.Error("failed to mark webhook event processed", "event_id", event.ID, "error", err)
	}

	// the delivery itself was received and stored; failures are retried out
	// of band, not by asking the provider to redeliver
	return nil
}

func (s *BillingService) archivePayload(ctx context.Context, record *models.WebhookEvent) {
	if s.archive == nil {
		return
	}
	key := fmt.Sprintf("webhooks/%s/%s.json", record.Provider, record.EventID)
	if err := s.archive.Put(ctx, key, record.Payload); err != nil {
		s.logger.Error("failed to archive webhook payload", "key", key, "error", err)
	}
}

func (s *BillingService) applyEvent(ctx context.Context, event *payments.Event) error {
	switch event.Type {
	case payments.EventPaymentSucceeded, payments.EventPaymentFailed:
	default:
		metrics.WebhookEventsTotal.WithLabelValues("ignored").Inc()
		return nil
	}

	payment, err := s.payments.GetByProviderPaymentID(ctx, s.provider.Name(), event.PaymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.WebhookEventsTotal.WithLabelValues("unmatched").Inc()
			s.logger.Warn("webhook event matches no payment", "event_id", event.ID, "provider_payment_id", event.PaymentID)
			return nil
		}
		return fmt.Errorf("failed to look up payment: %w", err)
	}

	target := models.PaymentStatusCompleted
	if event.Type == payments.EventPaymentFailed {
		target = models.PaymentStatusFailed
	}

	if payment.Status != target {
		if !payment.CanTransition(target) {
			// replayed or out-of-order delivery for a settled payment
			s.logger.Info("ignoring webhook for settled payment",
				"payment_id", payment.ID, "status", payment.Status, "target", target)
			metrics.WebhookEventsTotal.WithLabelValues("ignored").Inc()
			return nil
		}
		if err := payment.Transition(target); err != nil {
			return err
		}
		if err := s.payments.Update(ctx, payment); err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		metrics.PaymentsTotal.WithLabelValues(string(target)).Inc()
	}

	metrics.WebhookEventsTotal.WithLabelValues("processed").Inc()

	if target == models.PaymentStatusCompleted {
		return s.Onboard(ctx, payment.ID)
	}
	return nil
}

// Onboard provisions the tenant, subscription and admin role for a completed
// payment. It is idempotent: once a payment carries a subscription, repeat
// calls are no-ops, and concurrent calls for the same payment serialize.
func (s *BillingService) Onboard(ctx context.Context, paymentID uuid.UUID) error {
	s.onboarding.Lock(paymentID)
	defer s.onboarding.Unlock(paymentID)

	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to get payment: %w", err)
	}
	if payment.Status != models.PaymentStatusCompleted || payment.SubscriptionID != nil {
		metrics.OnboardingsTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	user, err := s.users.GetByID(ctx, payment.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	plan, err := s.plans.GetByID(ctx, payment.PlanID)
	if err != nil {
		return fmt.Errorf("failed to get plan: %w", err)
	}

	subdomain, err := s.availableSubdomain(ctx, user)
	if err != nil {
		return err
	}

	now := time.Now()
	tenant := &models.Tenant{
		ID:                 uuid.New(),
		Name:               tenantNameFor(user),
		Subdomain:          subdomain,
		OwnerID:            user.ID,
		PlanType:           plan.PlanType,
		SubscriptionPlanID: &plan.ID,
		SubscriptionStatus: models.TenantStatusActive,
		MaxEmployees:       plan.MaxEmployees,
		MaxUsers:           plan.MaxUsers,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	subscription := &models.UserSubscription{
		ID:               uuid.New(),
		UserID:           user.ID,
		PlanID:           plan.ID,
		Status:           models.SubscriptionStatusActive,
		AutoRenew:        true,
		CurrentPeriodEnd: now.Add(subscriptionPeriod),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	role := &models.RoleAssignment{
		ID:        uuid.New(),
		UserID:    user.ID,
		RoleCode:  authz.RoleClientAdmin,
		TenantID:  &tenant.ID,
		CreatedAt: now,
	}

	err = s.payments.ApplyOnboarding(ctx, &repository.Onboarding{
		PaymentID:    payment.ID,
		Tenant:       tenant,
		Subscription: subscription,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyOnboarded) {
			metrics.OnboardingsTotal.WithLabelValues("skipped").Inc()
			s.logger.Info("payment already onboarded", "payment_id", payment.ID)
			return nil
		}
		metrics.OnboardingsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to apply onboarding: %w", err)
	}

	metrics.OnboardingsTotal.WithLabelValues("completed").Inc()
	s.logger.Info("tenant onboarded",
		"tenant_id", tenant.ID, "subdomain", tenant.Subdomain, "user_id", user.ID, "plan", plan.Name)

	s.notify(ctx, Notification{
		Type:   NotificationWelcome,
		Email:  user.Email,
		Tenant: tenant.Subdomain,
		Data:   map[string]string{"plan": plan.Name},
	})
	s.notify(ctx, Notification{
		Type:   NotificationPaymentReceipt,
		Email:  user.Email,
		Tenant: tenant.Subdomain,
		Data: map[string]string{
			"payment_id": payment.ID.String(),
			"amount":     fmt.Sprintf("%.2f %s", payment.Amount, strings.ToUpper(payment.Currency)),
		},
	})
	return nil
}

func (s *BillingService) notify(ctx context.Context, n Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.EnqueueNotification(ctx, n); err != nil {
		s.logger.Error("failed to enqueue notification", "type", n.Type, "error", err)
	}
}

func tenantNameFor(user *models.User) string {
	name := strings.TrimSpace(user.FullName)
	if name == "" {
		name = strings.Split(user.Email, "@")[0]
	}
	return name + "'s Salon"
}

// availableSubdomain derives a slug from the owner and probes for a free one.
func (s *BillingService) availableSubdomain(ctx context.Context, user *models.User) (string, error) {
	base := Slugify(user.FullName)
	if base == "" {
		base = Slugify(strings.Split(user.Email, "@")[0])
	}
	if base == "" {
		base = "salon"
	}

	candidate := base
	for i := 0; i < 5; i++ {
		_, err := s.tenants.GetBySubdomain(ctx, candidate)
		if errors.Is(err, repository.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check subdomain: %w", err)
		}
		candidate = fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
	}
	return "", fmt.Errorf("failed to find a free subdomain for %q", base)
}
