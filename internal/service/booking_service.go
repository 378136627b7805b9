package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/decor-platform/internal/apperr"
	"github.com/Leganyst/decor-platform/internal/model"
	"github.com/Leganyst/decor-platform/internal/repository"
)

// BookingService — стор заявок: создание, чтение, административные правки,
// переходы состояния выполнения и удаление.
type BookingService struct {
	db         *gorm.DB
	bookings   repository.BookingRepository
	decorators repository.DecoratorRepository
	ledger     repository.LedgerRepository
	pub        EventPublisher
}

func NewBookingService(
	db *gorm.DB,
	bookings repository.BookingRepository,
	decorators repository.DecoratorRepository,
	ledger repository.LedgerRepository,
	pub EventPublisher,
) *BookingService {
	return &BookingService{
		db:         db,
		bookings:   bookings,
		decorators: decorators,
		ledger:     ledger,
		pub:        pub,
	}
}

type CreateBookingInput struct {
	RequesterEmail string
	ServiceRef     string
	PriceCents     int64
	EventAtISO     string // RFC3339
	Address        string
	Message        string
}

// Create валидирует вход и создаёт заявку в pending/unpaid.
// Прошедшие даты допустимы — ретроспективное заведение заявок разрешено,
// отклоняется только нераспарсиваемая дата.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*model.Booking, error) {
	email := strings.TrimSpace(in.RequesterEmail)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validationf("requester email is required")
	}
	if strings.TrimSpace(in.ServiceRef) == "" {
		return nil, apperr.Validationf("service reference is required")
	}
	if in.PriceCents < 0 {
		return nil, apperr.Validationf("price must be non-negative")
	}

	eventAt, err := time.Parse(time.RFC3339, in.EventAtISO)
	if err != nil {
		return nil, apperr.Validationf("event date %q is not RFC3339", in.EventAtISO)
	}

	b := &model.Booking{
		RequesterEmail:   email,
		ServiceRef:       strings.TrimSpace(in.ServiceRef),
		PriceCents:       in.PriceCents,
		EventAt:          eventAt.UTC(),
		Address:          in.Address,
		Message:          in.Message,
		FulfillmentState: model.FulfillmentStatePending,
		PaymentState:     model.PaymentStateUnpaid,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	publish(ctx, s.pub, "booking.created", map[string]any{
		"booking_id":  b.ID.String(),
		"service_ref": b.ServiceRef,
		"price_cents": b.PriceCents,
	})
	return b, nil
}

// Get возвращает заявку по ID.
func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("booking %s", id)
		}
		return nil, err
	}
	return b, nil
}

// List возвращает заявки, опционально отфильтрованные по email заказчика.
func (s *BookingService) List(ctx context.Context, requesterEmail string) ([]model.Booking, error) {
	return s.bookings.List(ctx, requesterEmail)
}

type UpdateBookingInput struct {
	Address    *string
	Message    *string
	EventAtISO *string
}

// UpdateFields — административная правка полей заявки, не затрагивающих
// состояния: адрес, сообщение, дата мероприятия. Переходы состояний идут
// только через координатор и реконсилятор платежей.
func (s *BookingService) UpdateFields(ctx context.Context, id uuid.UUID, in UpdateBookingInput) (*model.Booking, error) {
	updates := map[string]any{}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.Message != nil {
		updates["message"] = *in.Message
	}
	if in.EventAtISO != nil {
		eventAt, err := time.Parse(time.RFC3339, *in.EventAtISO)
		if err != nil {
			return nil, apperr.Validationf("event date %q is not RFC3339", *in.EventAtISO)
		}
		updates["event_at"] = eventAt.UTC()
	}
	if len(updates) == 0 {
		return nil, apperr.Validationf("no updatable fields in request")
	}

	ok, err := s.bookings.UpdateFields(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFoundf("booking %s", id)
	}
	return s.Get(ctx, id)
}

// SetFulfillmentState переводит заявку по таблице переходов:
// pending → assigned → in_progress → completed, {pending, assigned} → cancelled.
// Переход в assigned здесь запрещён — он требует декоратора и выполняется
// координатором (Assign). Терминальные переходы снимают назначение.
func (s *BookingService) SetFulfillmentState(ctx context.Context, id uuid.UUID, to model.FulfillmentState) (*model.Booking, error) {
	if !model.ValidFulfillmentState(to) {
		return nil, apperr.Validationf("unknown fulfillment state %q", to)
	}
	if to == model.FulfillmentStateAssigned {
		return nil, apperr.IllegalTransitionf("assignment requires a decorator, use assign")
	}

	var out *model.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := s.bookings.WithTx(tx)

		b, err := books.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("booking %s", id)
			}
			return err
		}
		if !model.CanTransition(b.FulfillmentState, to) {
			return apperr.IllegalTransitionf("booking %s: %s → %s", id, b.FulfillmentState, to)
		}

		// Терминальные состояния освобождают декоратора.
		if to == model.FulfillmentStateCancelled || to == model.FulfillmentStateCompleted {
			out, err = releaseInTx(ctx, tx, s.bookings, s.decorators, id, to)
			return err
		}

		ok, err := books.SetFulfillment(ctx, id, b.FulfillmentState, to)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.IllegalTransitionf("booking %s changed concurrently", id)
		}
		out, err = books.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.pub, "booking.state_changed", map[string]any{
		"booking_id": out.ID.String(),
		"state":      string(out.FulfillmentState),
	})
	return out, nil
}

// Delete удаляет заявку. Пока на неё ссылается запись журнала расчётов,
// удаление заблокировано.
func (s *BookingService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := s.bookings.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		if _, err := books.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("booking %s", id)
			}
			return err
		}

		referenced, err := ledger.ExistsForBooking(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return apperr.Conflictf("booking %s is referenced by a ledger entry", id)
		}

		return books.Delete(ctx, id)
	})
}
