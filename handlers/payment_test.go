package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"handyhub/models"
	"handyhub/services/booking"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

type stubReconciler struct {
	webhookErr error
	gotPayload []byte
	gotSig     string

	owner string // customer allowed to confirm payment
}

func (s *stubReconciler) ConfirmPayment(_ context.Context, _ string, actor booking.Actor, _, _ string) (*models.Booking, error) {
	if !actor.IsAdmin && actor.ID != s.owner {
		return nil, &booking.AuthorizationError{Message: "you are not allowed to pay for this booking"}
	}
	return &models.Booking{ID: "b-1", PaymentStatus: models.PaymentPaid}, nil
}

func (s *stubReconciler) MarkPaid(context.Context, string, string, string) (*models.Booking, error) {
	return &models.Booking{ID: "b-1", PaymentStatus: models.PaymentPaid}, nil
}

func (s *stubReconciler) Refund(context.Context, string, booking.Actor) (*models.Booking, error) {
	return nil, &booking.InvalidStateError{Message: "no payment to refund"}
}

func (s *stubReconciler) CreateIntent(context.Context, string, string) (*stripe.PaymentIntent, error) {
	return &stripe.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil
}

func (s *stubReconciler) HandleWebhook(_ context.Context, payload []byte, sigHeader string) error {
	s.gotPayload = payload
	s.gotSig = sigHeader
	return s.webhookErr
}

func (s *stubReconciler) PaymentsForCustomer(context.Context, string) ([]models.Booking, error) {
	return []models.Booking{}, nil
}

func newWebhookRouter(rec *stubReconciler) *gin.Engine {
	h := NewPaymentHandler(rec, zap.NewNop())
	r := gin.New()
	r.POST("/api/webhooks/stripe", h.StripeWebhook)
	return r
}

func TestStripeWebhookAcksHandledEvents(t *testing.T) {
	rec := &stubReconciler{}
	r := newWebhookRouter(rec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{"type":"payment_intent.succeeded"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Equal(t, "t=1,v1=abc", rec.gotSig)
	assert.JSONEq(t, `{"type":"payment_intent.succeeded"}`, string(rec.gotPayload))
}

func TestStripeWebhookRejectsBadPayload(t *testing.T) {
	rec := &stubReconciler{webhookErr: booking.ErrBadWebhookPayload}
	r := newWebhookRouter(rec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader("garbage"))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefundEndpointMapsInvalidState(t *testing.T) {
	h := NewPaymentHandler(&stubReconciler{}, zap.NewNop())
	r := gin.New()
	r.POST("/api/payments/:id/refund", asUser(&models.User{ID: "cust-1"}), h.Refund)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/b-1/refund", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no payment to refund")
}

func newConfirmRouter(rec *stubReconciler, user *models.User) *gin.Engine {
	h := NewPaymentHandler(rec, zap.NewNop())
	r := gin.New()
	r.POST("/api/payments/:id/confirm", asUser(user), h.ConfirmPayment)
	return r
}

func confirmPayment(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/b-1/confirm",
		strings.NewReader(`{"payment_method":"card","payment_ref":"pi_123"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestConfirmPaymentEndpoint(t *testing.T) {
	rec := &stubReconciler{owner: "cust-1"}

	w := confirmPayment(newConfirmRouter(rec, &models.User{ID: "cust-1"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), models.PaymentPaid)
}

func TestConfirmPaymentEndpointRejectsNonOwner(t *testing.T) {
	rec := &stubReconciler{owner: "cust-1"}

	// Being authenticated is not enough; only the booking's customer may
	// confirm its payment.
	w := confirmPayment(newConfirmRouter(rec, &models.User{ID: "someone-else"}))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
