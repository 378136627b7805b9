package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/decor-platform/internal/model"
)

// ServiceDemand — спрос по одной услуге (для аналитики).
type ServiceDemand struct {
	ServiceRef string `gorm:"column:service_ref"`
	Count      int64  `gorm:"column:count"`
}

type BookingRepository interface {
	// Создать новую заявку.
	Create(ctx context.Context, b *model.Booking) error
	// Найти заявку по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// Заявки, опционально отфильтрованные по email заказчика.
	List(ctx context.Context, requesterEmail string) ([]model.Booking, error)
	// Административная правка полей, не затрагивающих состояния.
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)
	// Перевод состояния выполнения, условный по текущему состоянию.
	SetFulfillment(ctx context.Context, id uuid.UUID, from, to model.FulfillmentState) (bool, error)
	// Назначение: pending → assigned + снимок декоратора, одним UPDATE.
	SetAssignment(ctx context.Context, id uuid.UUID, d *model.Decorator, at time.Time) (bool, error)
	// Снятие назначения при отмене: to + очистка снимка.
	ClearAssignment(ctx context.Context, id uuid.UUID, from, to model.FulfillmentState) (bool, error)
	// Отметка оплаты: unpaid → paid, paid_at ставится ровно один раз.
	MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	// Удалить заявку.
	Delete(ctx context.Context, id uuid.UUID) error

	// Агрегаты для аналитики.
	SumPaidCents(ctx context.Context) (int64, error)
	CountByPayment(ctx context.Context, state model.PaymentState) (int64, error)
	CountByFulfillment(ctx context.Context, state model.FulfillmentState) (int64, error)
	DemandByService(ctx context.Context) ([]ServiceDemand, error)

	// Копия репозитория поверх транзакции.
	WithTx(tx *gorm.DB) BookingRepository
}

type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) WithTx(tx *gorm.DB) BookingRepository {
	return &GormBookingRepository{db: tx}
}

func (r *GormBookingRepository) Create(ctx context.Context, b *model.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) List(ctx context.Context, requesterEmail string) ([]model.Booking, error) {
	q := r.db.WithContext(ctx).Model(&model.Booking{})
	if requesterEmail != "" {
		q = q.Where("requester_email = ?", requesterEmail)
	}

	var out []model.Booking
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormBookingRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", id).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *GormBookingRepository) SetFulfillment(
	ctx context.Context,
	id uuid.UUID,
	from, to model.FulfillmentState,
) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND fulfillment_state = ?", id, from).
		Update("fulfillment_state", to)
	return res.RowsAffected > 0, res.Error
}

func (r *GormBookingRepository) SetAssignment(
	ctx context.Context,
	id uuid.UUID,
	d *model.Decorator,
	at time.Time,
) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND fulfillment_state = ?", id, model.FulfillmentStatePending).
		Updates(map[string]any{
			"fulfillment_state":     model.FulfillmentStateAssigned,
			"assigned_decorator_id": d.ID,
			"assigned_name":         d.DisplayName,
			"assigned_email":        d.Email,
			"assigned_at":           at,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *GormBookingRepository) ClearAssignment(
	ctx context.Context,
	id uuid.UUID,
	from, to model.FulfillmentState,
) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND fulfillment_state = ?", id, from).
		Updates(map[string]any{
			"fulfillment_state":     to,
			"assigned_decorator_id": nil,
			"assigned_name":         "",
			"assigned_email":        "",
			"assigned_at":           nil,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *GormBookingRepository) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	// Compare-and-swap по состоянию оплаты: повторный сигнал не проходит
	// условие и не перештамповывает paid_at.
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND payment_state = ?", id, model.PaymentStateUnpaid).
		Updates(map[string]any{
			"payment_state": model.PaymentStatePaid,
			"paid_at":       at,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *GormBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Booking{}, "id = ?", id).Error
}

func (r *GormBookingRepository) SumPaidCents(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("payment_state = ?", model.PaymentStatePaid).
		Select("COALESCE(SUM(price_cents), 0)").
		Scan(&total).Error
	return total, err
}

func (r *GormBookingRepository) CountByPayment(ctx context.Context, state model.PaymentState) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("payment_state = ?", state).
		Count(&n).Error
	return n, err
}

func (r *GormBookingRepository) CountByFulfillment(ctx context.Context, state model.FulfillmentState) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("fulfillment_state = ?", state).
		Count(&n).Error
	return n, err
}

func (r *GormBookingRepository) DemandByService(ctx context.Context) ([]ServiceDemand, error) {
	var out []ServiceDemand
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Select("service_ref, COUNT(*) AS count").
		Group("service_ref").
		Order("count DESC").
		Scan(&out).Error
	return out, err
}
