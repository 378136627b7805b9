package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/decor-platform/internal/apperr"
	"github.com/Leganyst/decor-platform/internal/model"
	"github.com/Leganyst/decor-platform/internal/repository"
)

// EventPublisher — публикация доменных событий (реализуется поверх MQ).
// Публикация необязательна: nil-паблишер отключает её.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

func publish(ctx context.Context, pub EventPublisher, key string, v any) {
	if pub == nil {
		return
	}
	_ = pub.PublishJSON(ctx, key, v)
}

// RegistryService управляет реестром декораторов: регистрация,
// модерация, поиск свободных.
type RegistryService struct {
	decorators repository.DecoratorRepository
	pub        EventPublisher
}

func NewRegistryService(decorators repository.DecoratorRepository, pub EventPublisher) *RegistryService {
	return &RegistryService{decorators: decorators, pub: pub}
}

type RegisterDecoratorInput struct {
	Email       string
	DisplayName string
}

// Register создаёт декоратора в состоянии pending.
func (s *RegistryService) Register(ctx context.Context, in RegisterDecoratorInput) (*model.Decorator, error) {
	email := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.DisplayName)

	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validationf("decorator email is required")
	}
	if name == "" {
		return nil, apperr.Validationf("decorator display name is required")
	}

	d := &model.Decorator{
		Email:         email,
		DisplayName:   name,
		ApprovalState: model.ApprovalStatePending,
		Availability:  model.AvailabilityUnset,
	}
	if err := s.decorators.Create(ctx, d); err != nil {
		return nil, err
	}

	publish(ctx, s.pub, "decorator.registered", map[string]any{
		"decorator_id": d.ID.String(),
		"email":        d.Email,
	})
	return d, nil
}

// Decide фиксирует решение модерации: pending → approved (доступность
// инициализируется в available) либо pending → rejected. Повторное решение —
// no-op, возвращается текущее состояние; доступность заново не трогается.
func (s *RegistryService) Decide(ctx context.Context, id uuid.UUID, approve bool) (*model.Decorator, error) {
	d, err := s.decorators.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("decorator %s", id)
		}
		return nil, err
	}

	if d.ApprovalState != model.ApprovalStatePending {
		return d, nil
	}

	to := model.ApprovalStateRejected
	availability := model.AvailabilityUnset
	if approve {
		to = model.ApprovalStateApproved
		availability = model.AvailabilityAvailable
	}

	// Условный UPDATE: при гонке двух решений выигрывает одно,
	// проигравшее просто перечитывает итог.
	if _, err := s.decorators.Decide(ctx, id, to, availability); err != nil {
		return nil, err
	}

	d, err = s.decorators.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.pub, "decorator.decided", map[string]any{
		"decorator_id": d.ID.String(),
		"approval":     string(d.ApprovalState),
	})
	return d, nil
}

// Get возвращает декоратора по ID.
func (s *RegistryService) Get(ctx context.Context, id uuid.UUID) (*model.Decorator, error) {
	d, err := s.decorators.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("decorator %s", id)
		}
		return nil, err
	}
	return d, nil
}

// FindAvailable возвращает одобренных декораторов. Результат — снимок на
// момент запроса: решение о назначении его не использует, координатор
// делает собственную атомарную проверку.
func (s *RegistryService) FindAvailable(ctx context.Context, onlyAvailable bool) ([]model.Decorator, error) {
	return s.decorators.ListApproved(ctx, onlyAvailable)
}
