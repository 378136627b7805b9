package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Leganyst/decor-platform/internal/apperr"
	"github.com/Leganyst/decor-platform/internal/service"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// POST /payments/checkout
func (h *PaymentHandler) Checkout(c *gin.Context) {
	var in struct {
		BookingID string `json:"booking_id" binding:"required"`
		CardToken string `json:"card_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, apperr.Validationf("%v", err))
		return
	}
	bookingID, err := uuid.Parse(in.BookingID)
	if err != nil {
		writeError(c, apperr.Validationf("malformed booking id %q", in.BookingID))
		return
	}
	ch, err := h.payments.InitiateCheckout(c.Request.Context(), service.InitiateCheckoutInput{
		BookingID: bookingID,
		CardToken: in.CardToken,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ch)
}

// POST /payments/webhook — сигнал о завершении оплаты от провайдера.
// Провайдер ретраит доставку, поэтому обработка идемпотентна: повторный
// вызов возвращает ту же запись журнала.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		writeError(c, apperr.Validationf("read body: %v", err))
		return
	}
	c.Request.Body = http.NoBody

	var in struct {
		BookingID   string `json:"booking_id"`
		AmountCents int64  `json:"amount_cents"`
		PayerEmail  string `json:"payer_email"`
	}
	if err := json.Unmarshal(raw, &in); err != nil || in.BookingID == "" {
		writeError(c, apperr.Validationf("malformed webhook payload"))
		return
	}
	bookingID, err := uuid.Parse(in.BookingID)
	if err != nil {
		writeError(c, apperr.Validationf("malformed booking id %q", in.BookingID))
		return
	}

	entry, err := h.payments.RecordCompletion(c.Request.Context(), service.RecordCompletionInput{
		BookingID:   bookingID,
		AmountCents: in.AmountCents,
		PayerEmail:  in.PayerEmail,
		Provider:    "webhook",
		Payload:     raw,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
