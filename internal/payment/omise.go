package payment

import (
	"context"
	"encoding/json"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// OmiseProvider — реализация провайдера поверх Omise SDK.
type OmiseProvider struct {
	client *omise.Client
}

func NewOmiseProvider(publicKey, secretKey string) (*OmiseProvider, error) {
	c, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, err
	}
	c.SetDebug(false)
	return &OmiseProvider{client: c}, nil
}

// CreateCharge создаёт списание; booking_id уезжает в метаданные charge,
// чтобы вебхук провайдера можно было сопоставить с заявкой.
func (p *OmiseProvider) CreateCharge(ctx context.Context, in CreateChargeInput) (*Charge, error) {
	ch := &omise.Charge{}
	req := &operations.CreateCharge{
		Amount:   in.AmountCents,
		Currency: in.Currency,
		Card:     in.CardToken,
		Metadata: map[string]any{"booking_id": in.BookingID},
	}
	if err := p.client.Do(ch, req); err != nil {
		return nil, err
	}

	raw, _ := json.Marshal(ch)
	return &Charge{
		ID:           ch.ID,
		ProviderName: "omise",
		Status:       string(ch.Status),
		Paid:         ch.Paid,
		Raw:          raw,
	}, nil
}
