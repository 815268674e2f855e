package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/payments"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/repository"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/services"
)

const testWebhookSecret = "whsec_handler_test"

type billingHarness struct {
	store  *repository.MemoryStore
	router *gin.Engine
	user   *models.User
	plan   *models.SubscriptionPlan
}

func newBillingHarness(t *testing.T) *billingHarness {
	t.Helper()
	ctx := context.Background()

	store := repository.NewMemoryStore()
	user := &models.User{ID: uuid.New(), Email: "buyer@example.com", FullName: "Buyer One", IsActive: true}
	require.NoError(t, store.Users().Create(ctx, user))

	plan := &models.SubscriptionPlan{ID: uuid.New(), Name: "Pro", PlanType: "pro", Price: 19.99, Currency: "usd", IsActive: true}
	require.NoError(t, store.Plans().Create(ctx, plan))

	billing := services.NewBillingService(services.BillingDeps{
		Users:         store.Users(),
		Tenants:       store.Tenants(),
		Plans:         store.Plans(),
		Roles:         store.RoleAssignments(),
		Subscriptions: store.Subscriptions(),
		Payments:      store.Payments(),
		Events:        store.WebhookEvents(),
		Provider:      payments.NewFakeProvider(testWebhookSecret),
	})
	h := NewBillingHandler(billing, store.Plans())

	router := gin.New()
	router.POST("/api/webhooks/stripe", h.Webhook)
	router.GET("/api/billing/plans", h.ListPlans)

	authed := router.Group("/api/billing", withPrincipal(&authz.Principal{UserID: user.ID}))
	authed.POST("/payments", h.CreatePayment)
	authed.GET("/payments", h.ListPayments)
	authed.GET("/payments/:id", h.GetPayment)
	authed.POST("/payments/:id/confirm", h.ConfirmPayment)

	return &billingHarness{store: store, router: router, user: user, plan: plan}
}

func (h *billingHarness) createPayment(t *testing.T) *models.Payment {
	t.Helper()
	w := doJSON(h.router, http.MethodPost, "/api/billing/payments", gin.H{"plan_id": h.plan.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Payment      *models.Payment `json:"payment"`
		ClientSecret string          `json:"client_secret"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ClientSecret)
	return resp.Payment
}

func (h *billingHarness) deliverWebhook(t *testing.T, eventID, providerPaymentID, signature string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(map[string]string{
		"id":         eventID,
		"type":       payments.EventPaymentSucceeded,
		"payment_id": providerPaymentID,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestWebhookEndToEnd(t *testing.T) {
	h := newBillingHarness(t)
	payment := h.createPayment(t)

	w := h.deliverWebhook(t, "evt_1", payment.ProviderPaymentID, testWebhookSecret)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := h.store.Payments().GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.Status)
	assert.NotNil(t, got.SubscriptionID)
}

func TestConfirmPaymentOnboards(t *testing.T) {
	h := newBillingHarness(t)
	payment := h.createPayment(t)

	w := doJSON(h.router, http.MethodPost, "/api/billing/payments/"+payment.ID.String()+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := h.store.Payments().GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.Status)
	assert.NotNil(t, got.SubscriptionID)

	// Second confirm is a no-op.
	w = doJSON(h.router, http.MethodPost, "/api/billing/payments/"+payment.ID.String()+"/confirm", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConfirmPaymentOtherUserNotFound(t *testing.T) {
	h := newBillingHarness(t)
	payment := h.createPayment(t)
	payment.UserID = uuid.New()
	require.NoError(t, h.store.Payments().Update(context.Background(), payment))

	w := doJSON(h.router, http.MethodPost, "/api/billing/payments/"+payment.ID.String()+"/confirm", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookBadSignatureRejected(t *testing.T) {
	h := newBillingHarness(t)
	payment := h.createPayment(t)

	w := h.deliverWebhook(t, "evt_1", payment.ProviderPaymentID, "bad")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	got, err := h.store.Payments().GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, got.Status)
}

func TestWebhookDuplicateAcknowledged(t *testing.T) {
	h := newBillingHarness(t)
	payment := h.createPayment(t)

	require.Equal(t, http.StatusOK, h.deliverWebhook(t, "evt_1", payment.ProviderPaymentID, testWebhookSecret).Code)
	assert.Equal(t, http.StatusOK, h.deliverWebhook(t, "evt_1", payment.ProviderPaymentID, testWebhookSecret).Code)

	tenants, err := h.store.Tenants().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, tenants, 1)
}

func TestWebhookUnmatchedAcknowledged(t *testing.T) {
	h := newBillingHarness(t)
	w := h.deliverWebhook(t, "evt_1", "pi_nobody", testWebhookSecret)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetPaymentOtherUserNotFound(t *testing.T) {
	h := newBillingHarness(t)
	payment := h.createPayment(t)

	// rebuild router with a different principal
	other := newBillingHarness(t)
	w := doJSON(other.router, http.MethodGet, "/api/billing/payments/"+payment.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPlansPublic(t *testing.T) {
	h := newBillingHarness(t)
	w := doJSON(h.router, http.MethodGet, "/api/billing/plans", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Plans []models.SubscriptionPlan `json:"plans"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Plans, 1)
}
