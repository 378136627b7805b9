package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/decor-platform/internal/model"
)

type DecoratorRepository interface {
	// Создать декоратора (состояние модерации pending).
	Create(ctx context.Context, d *model.Decorator) error
	// Найти декоратора по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Decorator, error)
	// Одобренные декораторы; onlyAvailable — только свободные.
	ListApproved(ctx context.Context, onlyAvailable bool) ([]model.Decorator, error)
	// Решение модерации: pending → to. Условный UPDATE, false — декоратор
	// уже не pending (повторное решение ничего не меняет).
	Decide(ctx context.Context, id uuid.UUID, to model.ApprovalState, availability model.Availability) (bool, error)
	// Атомарно занять декоратора: approved+available → busy.
	// false — проверка доступности не прошла.
	Acquire(ctx context.Context, id uuid.UUID) (bool, error)
	// Вернуть декоратора в available после снятия назначения.
	Release(ctx context.Context, id uuid.UUID) (bool, error)
	// Копия репозитория поверх транзакции.
	WithTx(tx *gorm.DB) DecoratorRepository
}

type GormDecoratorRepository struct {
	db *gorm.DB
}

func NewGormDecoratorRepository(db *gorm.DB) *GormDecoratorRepository {
	return &GormDecoratorRepository{db: db}
}

func (r *GormDecoratorRepository) WithTx(tx *gorm.DB) DecoratorRepository {
	return &GormDecoratorRepository{db: tx}
}

func (r *GormDecoratorRepository) Create(ctx context.Context, d *model.Decorator) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *GormDecoratorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Decorator, error) {
	var d model.Decorator
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *GormDecoratorRepository) ListApproved(ctx context.Context, onlyAvailable bool) ([]model.Decorator, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Decorator{}).
		Where("approval_state = ?", model.ApprovalStateApproved)

	if onlyAvailable {
		q = q.Where("availability = ?", model.AvailabilityAvailable)
	}

	var out []model.Decorator
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormDecoratorRepository) Decide(
	ctx context.Context,
	id uuid.UUID,
	to model.ApprovalState,
	availability model.Availability,
) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Decorator{}).
		Where("id = ? AND approval_state = ?", id, model.ApprovalStatePending).
		Updates(map[string]any{
			"approval_state": to,
			"availability":   availability,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *GormDecoratorRepository) Acquire(ctx context.Context, id uuid.UUID) (bool, error) {
	// Compare-and-swap: ровно одна из конкурирующих транзакций увидит
	// available и заберёт декоратора.
	res := r.db.WithContext(ctx).
		Model(&model.Decorator{}).
		Where("id = ? AND approval_state = ? AND availability = ?",
			id, model.ApprovalStateApproved, model.AvailabilityAvailable).
		Update("availability", model.AvailabilityBusy)
	return res.RowsAffected > 0, res.Error
}

func (r *GormDecoratorRepository) Release(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Decorator{}).
		Where("id = ? AND availability = ?", id, model.AvailabilityBusy).
		Update("availability", model.AvailabilityAvailable)
	return res.RowsAffected > 0, res.Error
}
