package handlers

import (
	"errors"
	"net/http"

	"handyhub/middleware"
	"handyhub/models"
	"handyhub/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler serves payment confirmation, refunds, payment history and
// the provider webhook.
type PaymentHandler struct {
	Reconciler booking.PaymentReconciler
	Logger     *zap.Logger
}

func NewPaymentHandler(reconciler booking.PaymentReconciler, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Reconciler: reconciler, Logger: logger}
}

// ConfirmPayment records a client-reported payment against the caller's own
// booking.
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return
	}

	var input models.ConfirmPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Validation failed", "errors": gin.H{"body": err.Error()}})
		return
	}

	updated, err := h.Reconciler.ConfirmPayment(c.Request.Context(), c.Param("id"), actor, input.PaymentMethod, input.PaymentRef)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": updated})
}

// CreateIntent creates a provider payment intent for the booking total and
// returns its client secret.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return
	}

	intent, err := h.Reconciler.CreateIntent(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payment_intent_id": intent.ID,
		"client_secret":     intent.ClientSecret,
	})
}

// Refund reverses a paid booking's payment.
func (h *PaymentHandler) Refund(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return
	}

	updated, err := h.Reconciler.Refund(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": updated})
}

// History returns the authenticated customer's payment history.
func (h *PaymentHandler) History(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return
	}

	payments, err := h.Reconciler.PaymentsForCustomer(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// StripeWebhook receives provider events. Signature or parse failures get a
// 400 so the provider knows the delivery was bad; everything else is
// acknowledged to avoid retry storms.
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "unreadable payload")
		return
	}

	err = h.Reconciler.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, booking.ErrBadWebhookPayload) {
			h.Logger.Warn("rejected webhook delivery", zap.Error(err))
			c.String(http.StatusBadRequest, "invalid payload")
			return
		}
		respondError(c, err)
		return
	}
	c.String(http.StatusOK, "OK")
}
