// Package payment — коллаборатор платёжного провайдера: инициирует внешний
// чекаут, подтверждение возвращается асинхронно через реконсилятор.
package payment

import "context"

// Charge — нормализованный результат создания списания у провайдера.
type Charge struct {
	ID           string `json:"id"`
	ProviderName string `json:"provider"`
	Status       string `json:"status"`
	Paid         bool   `json:"paid"`
	// Сырой ответ провайдера, попадает в журнал расчётов.
	Raw []byte `json:"-"`
}

type CreateChargeInput struct {
	BookingID   string
	AmountCents int64
	Currency    string
	CardToken   string
}

type Provider interface {
	CreateCharge(ctx context.Context, in CreateChargeInput) (*Charge, error)
}
