package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/decor-platform/internal/apperr"
	"github.com/Leganyst/decor-platform/internal/model"
	"github.com/Leganyst/decor-platform/internal/repository"
)

// AssignmentService — координатор назначений: атомарно связывает
// pending-заявку со свободным одобренным декоратором и снимает связь
// при отмене или завершении.
type AssignmentService struct {
	db         *gorm.DB
	bookings   repository.BookingRepository
	decorators repository.DecoratorRepository
	pub        EventPublisher
}

func NewAssignmentService(
	db *gorm.DB,
	bookings repository.BookingRepository,
	decorators repository.DecoratorRepository,
	pub EventPublisher,
) *AssignmentService {
	return &AssignmentService{
		db:         db,
		bookings:   bookings,
		decorators: decorators,
		pub:        pub,
	}
}

// Assign связывает заявку с декоратором. Обе мутации — занятие декоратора
// и перевод заявки в assigned — выполняются в одной транзакции: если
// запись заявки проигрывает гонку, занятие декоратора откатывается вместе
// с транзакцией.
func (s *AssignmentService) Assign(ctx context.Context, bookingID, decoratorID uuid.UUID) (*model.Booking, error) {
	var out *model.Booking

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := s.bookings.WithTx(tx)
		decs := s.decorators.WithTx(tx)

		b, err := books.GetByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("booking %s", bookingID)
			}
			return err
		}
		if b.FulfillmentState != model.FulfillmentStatePending {
			return apperr.IllegalTransitionf("booking %s is %s, want pending", bookingID, b.FulfillmentState)
		}

		d, err := decs.GetByID(ctx, decoratorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("decorator %s", decoratorID)
			}
			return err
		}

		// Атомарная проверка-и-занятие. Из конкурирующих назначений одного
		// и того же декоратора условие проходит ровно у одного.
		ok, err := decs.Acquire(ctx, decoratorID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Unavailablef("decorator %s is not available", decoratorID)
		}

		ok, err = books.SetAssignment(ctx, bookingID, d, time.Now().UTC())
		if err != nil {
			return err
		}
		if !ok {
			// Заявку успели увести из pending — откат вернёт декоратора.
			return apperr.IllegalTransitionf("booking %s is no longer pending", bookingID)
		}

		out, err = books.GetByID(ctx, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.pub, "booking.assigned", map[string]any{
		"booking_id":   out.ID.String(),
		"decorator_id": decoratorID.String(),
	})
	return out, nil
}

// Release снимает назначение при переходе заявки в cancelled или completed:
// декоратор возвращается в available; при отмене снимок назначения
// очищается, при завершении — остаётся в истории заявки.
func (s *AssignmentService) Release(ctx context.Context, bookingID uuid.UUID, to model.FulfillmentState) (*model.Booking, error) {
	var out *model.Booking

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = releaseInTx(ctx, tx, s.bookings, s.decorators, bookingID, to)
		return err
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.pub, "booking."+string(to), map[string]any{
		"booking_id": out.ID.String(),
	})
	return out, nil
}

// releaseInTx — общая для координатора и стора заявок логика терминальных
// переходов, затрагивающих назначение. Вызывается внутри транзакции.
func releaseInTx(
	ctx context.Context,
	tx *gorm.DB,
	bookings repository.BookingRepository,
	decorators repository.DecoratorRepository,
	bookingID uuid.UUID,
	to model.FulfillmentState,
) (*model.Booking, error) {
	books := bookings.WithTx(tx)
	decs := decorators.WithTx(tx)

	b, err := books.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("booking %s", bookingID)
		}
		return nil, err
	}

	if !model.CanTransition(b.FulfillmentState, to) {
		return nil, apperr.IllegalTransitionf("booking %s: %s → %s", bookingID, b.FulfillmentState, to)
	}

	switch to {
	case model.FulfillmentStateCancelled:
		if b.Assigned() {
			ok, err := books.ClearAssignment(ctx, bookingID, b.FulfillmentState, to)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, apperr.IllegalTransitionf("booking %s changed concurrently", bookingID)
			}
			if _, err := decs.Release(ctx, *b.AssignedDecoratorID); err != nil {
				return nil, err
			}
		} else {
			ok, err := books.SetFulfillment(ctx, bookingID, b.FulfillmentState, to)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, apperr.IllegalTransitionf("booking %s changed concurrently", bookingID)
			}
		}
	case model.FulfillmentStateCompleted:
		ok, err := books.SetFulfillment(ctx, bookingID, b.FulfillmentState, to)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.IllegalTransitionf("booking %s changed concurrently", bookingID)
		}
		if b.Assigned() {
			if _, err := decs.Release(ctx, *b.AssignedDecoratorID); err != nil {
				return nil, err
			}
		}
	default:
		return nil, apperr.IllegalTransitionf("%s is not a terminal state", to)
	}

	return books.GetByID(ctx, bookingID)
}
