package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/decor-platform/internal/model"
)

type LedgerRepository interface {
	// Вставить запись, если для заявки её ещё нет (write-once по booking_id).
	// false — запись уже существовала, вставка ничего не сделала.
	CreateIfAbsent(ctx context.Context, e *model.LedgerEntry) (bool, error)
	// Найти запись по заявке.
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.LedgerEntry, error)
	// Есть ли запись для заявки.
	ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error)
	// Дозаполнить получателя, только если он ещё не разрешён.
	BackfillPayee(ctx context.Context, bookingID uuid.UUID, payeeID uuid.UUID, payeeEmail string) (bool, error)
	// Копия репозитория поверх транзакции.
	WithTx(tx *gorm.DB) LedgerRepository
}

type GormLedgerRepository struct {
	db *gorm.DB
}

func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

func (r *GormLedgerRepository) WithTx(tx *gorm.DB) LedgerRepository {
	return &GormLedgerRepository{db: tx}
}

func (r *GormLedgerRepository) CreateIfAbsent(ctx context.Context, e *model.LedgerEntry) (bool, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "booking_id"}},
			DoNothing: true,
		}).
		Create(e)
	return res.RowsAffected > 0, res.Error
}

func (r *GormLedgerRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.LedgerEntry, error) {
	var e model.LedgerEntry
	if err := r.db.WithContext(ctx).First(&e, "booking_id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *GormLedgerRepository) ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.LedgerEntry{}).
		Where("booking_id = ?", bookingID).
		Count(&n).Error
	return n > 0, err
}

func (r *GormLedgerRepository) BackfillPayee(
	ctx context.Context,
	bookingID uuid.UUID,
	payeeID uuid.UUID,
	payeeEmail string,
) (bool, error) {
	// Условие по пустому payee_email делает повторное дозаполнение no-op.
	res := r.db.WithContext(ctx).
		Model(&model.LedgerEntry{}).
		Where("booking_id = ? AND payee_email = ?", bookingID, "").
		Updates(map[string]any{
			"payee_decorator_id": payeeID,
			"payee_email":        payeeEmail,
		})
	return res.RowsAffected > 0, res.Error
}
