package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
)

// SubscriptionSweeper suspends subscriptions whose period has lapsed and
// mirrors that onto the owning tenant. The worker runs it on a ticker.
type SubscriptionSweeper struct {
	subscriptions repository.SubscriptionRepository
	tenants       repository.TenantRepository
	users         repository.UserRepository
	cache         FeatureInvalidator // optional
	notifier      Notifier           // optional
	logger        *slog.Logger
}

func NewSubscriptionSweeper(
	subscriptions repository.SubscriptionRepository,
	tenants repository.TenantRepository,
	users repository.UserRepository,
	cache FeatureInvalidator,
	notifier Notifier,
	logger *slog.Logger,
) *SubscriptionSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubscriptionSweeper{
		subscriptions: subscriptions,
		tenants:       tenants,
		users:         users,
		cache:         cache,
		notifier:      notifier,
		logger:        logger,
	}
}

// Sweep suspends every active subscription that expired before now. It
// returns the number of subscriptions suspended; individual failures are
// logged and skipped so one bad row cannot stall the sweep.
func (s *SubscriptionSweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.subscriptions.ListExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired subscriptions: %w", err)
	}

	suspended := 0
	for i := range expired {
		sub := &expired[i]
		if err := s.suspend(ctx, sub); err != nil {
			s.logger.Error("failed to suspend expired subscription", "subscription_id", sub.ID, "error", err)
			continue
		}
		suspended++
	}
	return suspended, nil
}

func (s *SubscriptionSweeper) suspend(ctx context.Context, sub *models.UserSubscription) error {
	sub.Status = models.SubscriptionStatusSuspended
	sub.UpdatedAt = time.Now()
	if err := s.subscriptions.Update(ctx, sub); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	user, err := s.users.GetByID(ctx, sub.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.TenantID != nil {
		tenant, err := s.tenants.GetByID(ctx, *user.TenantID)
		if err != nil {
			return fmt.Errorf("failed to get tenant: %w", err)
		}
		tenant.SubscriptionStatus = models.TenantStatusSuspended
		tenant.IsActive = false
		if err := s.tenants.Update(ctx, tenant); err != nil {
			return fmt.Errorf("failed to update tenant: %w", err)
		}
		if s.cache != nil {
			if err := s.cache.InvalidateFeatures(ctx, tenant.ID); err != nil {
				s.logger.Error("failed to invalidate feature cache", "tenant_id", tenant.ID, "error", err)
			}
		}
		s.logger.Info("tenant suspended after subscription expiry", "tenant_id", tenant.ID, "subscription_id", sub.ID)

		if s.notifier != nil {
			n := Notification{
				Type:   NotificationPlanSuspended,
				Email:  user.Email,
				Tenant: tenant.Subdomain,
			}
			if err := s.notifier.EnqueueNotification(ctx, n); err != nil {
				s.logger.Error("failed to enqueue notification", "type", n.Type, "error", err)
			}
		}
	}
	return nil
}
