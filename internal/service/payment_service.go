package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/decor-platform/internal/apperr"
	"github.com/Leganyst/decor-platform/internal/model"
	"github.com/Leganyst/decor-platform/internal/payment"
	"github.com/Leganyst/decor-platform/internal/repository"
)

// PaymentService — реконсилятор платежей: превращает сигнал «оплата
// завершена» (доставка как минимум один раз, возможны повторы) в
// exactly-once состояние журнала расчётов.
type PaymentService struct {
	db       *gorm.DB
	bookings repository.BookingRepository
	ledger   repository.LedgerRepository
	provider payment.Provider
	currency string
	pub      EventPublisher
}

func NewPaymentService(
	db *gorm.DB,
	bookings repository.BookingRepository,
	ledger repository.LedgerRepository,
	provider payment.Provider,
	currency string,
	pub EventPublisher,
) *PaymentService {
	return &PaymentService{
		db:       db,
		bookings: bookings,
		ledger:   ledger,
		provider: provider,
		currency: currency,
		pub:      pub,
	}
}

type RecordCompletionInput struct {
	BookingID   uuid.UUID
	AmountCents int64
	PayerEmail  string
	// Источник сигнала и его сырой payload (для журнала).
	Provider string
	Payload  []byte
}

// RecordCompletion идемпотентно фиксирует завершение оплаты.
// Первый сигнал переводит заявку unpaid → paid, ставит paid_at и создаёт
// запись журнала. Повторы не перештамповывают paid_at и не плодят записей;
// единственный их эффект — дозаполнение получателя, если заявка успела
// получить назначение.
func (s *PaymentService) RecordCompletion(ctx context.Context, in RecordCompletionInput) (*model.LedgerEntry, error) {
	if in.AmountCents < 0 {
		return nil, apperr.Validationf("amount must be non-negative")
	}

	var (
		out     *model.LedgerEntry
		settled bool
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := s.bookings.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		b, err := books.GetByID(ctx, in.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("booking %s", in.BookingID)
			}
			return err
		}

		// CAS по состоянию оплаты: из конкурирующих дубликатов условие
		// проходит ровно у одного.
		settled, err = books.MarkPaid(ctx, in.BookingID, time.Now().UTC())
		if err != nil {
			return err
		}

		entry := &model.LedgerEntry{
			BookingID:       in.BookingID,
			PayerEmail:      in.PayerEmail,
			AmountCents:     in.AmountCents,
			SettledAt:       time.Now().UTC(),
			Provider:        in.Provider,
			ProviderPayload: datatypes.JSON(in.Payload),
		}
		if b.Assigned() {
			entry.PayeeDecoratorID = b.AssignedDecoratorID
			entry.PayeeEmail = b.AssignedEmail
		}

		// Write-once по booking_id; при дубликате вставка — no-op.
		created, err := ledger.CreateIfAbsent(ctx, entry)
		if err != nil {
			return err
		}

		if !created {
			existing, err := ledger.GetByBookingID(ctx, in.BookingID)
			if err != nil {
				return err
			}
			if !existing.PayeeResolved() && b.Assigned() {
				if _, err := ledger.BackfillPayee(ctx, in.BookingID, *b.AssignedDecoratorID, b.AssignedEmail); err != nil {
					return err
				}
				existing, err = ledger.GetByBookingID(ctx, in.BookingID)
				if err != nil {
					return err
				}
			}
			out = existing
			return nil
		}

		out = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	if settled {
		publish(ctx, s.pub, "payment.settled", map[string]any{
			"booking_id":   in.BookingID.String(),
			"amount_cents": in.AmountCents,
		})
	}
	return out, nil
}

type InitiateCheckoutInput struct {
	BookingID uuid.UUID
	CardToken string
}

// InitiateCheckout создаёт внешний чекаут у платёжного провайдера на сумму
// заявки. Итоговое подтверждение приходит асинхронно (вебхук или очередь)
// и проходит через RecordCompletion; если провайдер подтвердил списание
// синхронно, фиксируем сразу.
func (s *PaymentService) InitiateCheckout(ctx context.Context, in InitiateCheckoutInput) (*payment.Charge, error) {
	if s.provider == nil {
		return nil, apperr.Conflictf("payment provider is not configured")
	}

	b, err := s.bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("booking %s", in.BookingID)
		}
		return nil, err
	}
	if b.PaymentState == model.PaymentStatePaid {
		return nil, apperr.Conflictf("booking %s is already paid", in.BookingID)
	}

	ch, err := s.provider.CreateCharge(ctx, payment.CreateChargeInput{
		BookingID:   b.ID.String(),
		AmountCents: b.PriceCents,
		Currency:    s.currency,
		CardToken:   in.CardToken,
	})
	if err != nil {
		return nil, err
	}

	if ch.Paid {
		if _, err := s.RecordCompletion(ctx, RecordCompletionInput{
			BookingID:   b.ID,
			AmountCents: b.PriceCents,
			PayerEmail:  b.RequesterEmail,
			Provider:    ch.ProviderName,
			Payload:     ch.Raw,
		}); err != nil {
			return nil, err
		}
	}
	return ch, nil
}
