package model

import (
	"time"

	"github.com/google/uuid"
)

// Состояние модерации декоратора.
type ApprovalState string

const (
	ApprovalStatePending  ApprovalState = "pending"
	ApprovalStateApproved ApprovalState = "approved"
	ApprovalStateRejected ApprovalState = "rejected"
)

// Доступность декоратора. Инициализируется только при одобрении;
// busy — ровно одно активное назначение.
type Availability string

const (
	AvailabilityUnset     Availability = ""
	AvailabilityAvailable Availability = "available"
	AvailabilityBusy      Availability = "busy"
)

// decorators — исполнители (поставщики услуг оформления).
type Decorator struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Email       string `gorm:"type:varchar(255);not null;uniqueIndex"`
	DisplayName string `gorm:"type:varchar(255);not null"`

	ApprovalState ApprovalState `gorm:"type:varchar(32);not null;default:'pending';index"`
	Availability  Availability  `gorm:"type:varchar(32);not null;default:'';index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
