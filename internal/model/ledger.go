package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ledger_entries — журнал расчётов. Не более одной записи на заявку:
// uniqueIndex по booking_id делает вставку сигнала об оплате write-once.
type LedgerEntry struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	BookingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	PayerEmail string `gorm:"type:varchar(255);not null"`

	// Получатель может быть неизвестен на момент записи (заявка ещё не
	// назначена) и дозаполняется позже. Пустой PayeeEmail — «не разрешён».
	PayeeDecoratorID *uuid.UUID `gorm:"type:uuid"`
	PayeeEmail       string     `gorm:"type:varchar(255)"`

	AmountCents int64     `gorm:"not null"`
	SettledAt   time.Time `gorm:"not null"`

	// Источник сигнала и его сырой payload, как пришёл от провайдера.
	Provider        string         `gorm:"type:varchar(64)"`
	ProviderPayload datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null"`
}

// PayeeResolved сообщает, известен ли получатель платежа.
func (e *LedgerEntry) PayeeResolved() bool {
	return e.PayeeEmail != ""
}
