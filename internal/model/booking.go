package model

import (
	"time"

	"github.com/google/uuid"
)

// Состояние оплаты заявки.
type PaymentState string

const (
	PaymentStateUnpaid PaymentState = "unpaid"
	PaymentStatePaid   PaymentState = "paid"
)

// Состояние выполнения заявки.
type FulfillmentState string

const (
	FulfillmentStatePending    FulfillmentState = "pending"
	FulfillmentStateAssigned   FulfillmentState = "assigned"
	FulfillmentStateInProgress FulfillmentState = "in_progress"
	FulfillmentStateCompleted  FulfillmentState = "completed"
	FulfillmentStateCancelled  FulfillmentState = "cancelled"
)

// fulfillmentTransitions — таблица допустимых переходов состояния выполнения.
var fulfillmentTransitions = map[FulfillmentState][]FulfillmentState{
	FulfillmentStatePending:    {FulfillmentStateAssigned, FulfillmentStateCancelled},
	FulfillmentStateAssigned:   {FulfillmentStateInProgress, FulfillmentStateCancelled},
	FulfillmentStateInProgress: {FulfillmentStateCompleted},
}

// CanTransition проверяет допустимость перехода from → to.
func CanTransition(from, to FulfillmentState) bool {
	for _, s := range fulfillmentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidFulfillmentState проверяет, что значение — известное состояние выполнения.
func ValidFulfillmentState(s FulfillmentState) bool {
	switch s {
	case FulfillmentStatePending, FulfillmentStateAssigned, FulfillmentStateInProgress,
		FulfillmentStateCompleted, FulfillmentStateCancelled:
		return true
	}
	return false
}

// bookings
type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	RequesterEmail string `gorm:"type:varchar(255);not null;index"`
	ServiceRef     string `gorm:"type:varchar(255);not null;index"`

	// Цена в минорных единицах валюты.
	PriceCents int64 `gorm:"not null"`

	// Дата и время проведения мероприятия.
	EventAt time.Time `gorm:"not null"`

	Address string `gorm:"type:text"`
	Message string `gorm:"type:text"`

	FulfillmentState FulfillmentState `gorm:"type:varchar(32);not null;default:'pending';index"`
	PaymentState     PaymentState     `gorm:"type:varchar(32);not null;default:'unpaid';index"`

	// Ставится ровно один раз — при первом сигнале об оплате.
	PaidAt *time.Time

	// Снимок назначения. Заполнен тогда и только тогда, когда
	// FulfillmentState ∈ {assigned, in_progress, completed}.
	AssignedDecoratorID *uuid.UUID `gorm:"type:uuid;index"`
	AssignedName        string     `gorm:"type:varchar(255)"`
	AssignedEmail       string     `gorm:"type:varchar(255)"`
	AssignedAt          *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Assigned сообщает, заполнен ли снимок назначения.
func (b *Booking) Assigned() bool {
	return b.AssignedDecoratorID != nil
}
