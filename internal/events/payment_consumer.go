// Package events — приём внешних событий об оплате из очереди.
// Доставка как минимум один раз; повторы безопасны, потому что
// RecordCompletion идемпотентен по booking_id.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Leganyst/decor-platform/internal/apperr"
	"github.com/Leganyst/decor-platform/internal/mq"
	"github.com/Leganyst/decor-platform/internal/service"
)

// PaymentCompleted — событие "payment.paid" от платёжного сервиса.
type PaymentCompleted struct {
	Event   string `json:"event"`
	Version int    `json:"version"`
	Data    struct {
		PaymentID  string `json:"payment_id"`
		BookingID  string `json:"booking_id"`
		Amount     int64  `json:"amount"`
		Currency   string `json:"currency"`
		PayerEmail string `json:"payer_email"`
	} `json:"data"`
}

type PaymentConsumer struct {
	payments *service.PaymentService
	cons     *mq.Consumer
}

func NewPaymentConsumer(payments *service.PaymentService, cons *mq.Consumer) *PaymentConsumer {
	return &PaymentConsumer{payments: payments, cons: cons}
}

func (pc *PaymentConsumer) Run(ctx context.Context) error {
	msgs, err := pc.cons.Deliveries(ctx)
	if err != nil {
		return err
	}
	go func() {
		for d := range msgs {
			pc.handle(ctx, d)
		}
	}()
	return nil
}

// handle обрабатывает одно сообщение и подтверждает его. Возврат в очередь —
// только для временных сбоев: невосстановимое сообщение (битый payload,
// несуществующая заявка, некорректная сумма) при requeue зацикливало бы
// единственную очередь, поэтому такие снимаются с Ack после записи в лог.
func (pc *PaymentConsumer) handle(ctx context.Context, d amqp.Delivery) {
	if d.RoutingKey != "payment.paid" {
		_ = d.Ack(false)
		return
	}

	var evt PaymentCompleted
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		log.Printf("[payment-consumer] drop unparsable event: %v", err)
		_ = d.Ack(false)
		return
	}
	bookingID, err := uuid.Parse(evt.Data.BookingID)
	if err != nil || evt.Data.PaymentID == "" {
		log.Printf("[payment-consumer] drop event with invalid payload")
		_ = d.Ack(false)
		return
	}

	_, err = pc.payments.RecordCompletion(ctx, service.RecordCompletionInput{
		BookingID:   bookingID,
		AmountCents: evt.Data.Amount,
		PayerEmail:  evt.Data.PayerEmail,
		Provider:    "mq",
		Payload:     d.Body,
	})
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrValidation):
		// Повтор ничего не изменит: заявки нет либо сигнал сам по себе
		// некорректен.
		log.Printf("[payment-consumer] drop unrecoverable event for %s: %v", bookingID, err)
		_ = d.Ack(false)
	default:
		log.Printf("[payment-consumer] requeue after transient error: %v", err)
		_ = d.Nack(false, true)
	}
}
