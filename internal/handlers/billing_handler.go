package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/middleware"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/payments"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/services"
)

// maxWebhookBody bounds the webhook request body (Stripe sends well under
// this).
const maxWebhookBody = 1 << 20

type BillingHandler struct {
	billing *services.BillingService
	plans   repository.PlanRepository
}

func NewBillingHandler(billing *services.BillingService, plans repository.PlanRepository) *BillingHandler {
	return &BillingHandler{billing: billing, plans: plans}
}

// ListPlans returns the purchasable plan catalogue.
func (h *BillingHandler) ListPlans(c *gin.Context) {
	plans, err := h.plans.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list plans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

type CreatePaymentRequest struct {
	PlanID uuid.UUID `json:"plan_id" binding:"required"`
}

// CreatePayment opens a payment for a plan purchase and returns the provider
// client secret the frontend completes the charge with.
func (h *BillingHandler) CreatePayment(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, clientSecret, err := h.billing.CreatePayment(c.Request.Context(), p.UserID, req.PlanID)
	if err != nil {
		if errors.Is(err, services.ErrPlanUnavailable) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "plan not available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create payment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"payment":       payment,
		"client_secret": clientSecret,
	})
}

// ListPayments returns the caller's payment history.
func (h *BillingHandler) ListPayments(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	list, err := h.billing.ListPayments(c.Request.Context(), p.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list})
}

// GetSubscription returns the caller's subscription.
func (h *BillingHandler) GetSubscription(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	sub, err := h.billing.GetSubscription(c.Request.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no subscription"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get subscription"})
		return
	}
	c.JSON(http.StatusOK, sub)
}

// ConfirmPayment marks one of the caller's payments completed and runs
// onboarding. Safe to call repeatedly.
func (h *BillingHandler) ConfirmPayment(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if _, err := h.billing.GetPayment(c.Request.Context(), p.UserID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get payment"})
		return
	}

	payment, err := h.billing.ConfirmPayment(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotReady) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "payment cannot be completed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm payment"})
		return
	}
	c.JSON(http.StatusOK, payment)
}

// GetPayment returns one of the caller's payments. Other users' payments are
// reported as not found.
func (h *BillingHandler) GetPayment(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	payment, err := h.billing.GetPayment(c.Request.Context(), p.UserID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get payment"})
		return
	}
	c.JSON(http.StatusOK, payment)
}

// Webhook receives provider event deliveries. Signature failures are the
// only rejection; replays and unknown payments are acknowledged so the
// provider stops retrying.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.billing.ProcessWebhook(c.Request.Context(), payload, signature); err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
