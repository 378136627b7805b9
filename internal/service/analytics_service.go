package service

import (
	"context"

	"github.com/Leganyst/decor-platform/internal/model"
	"github.com/Leganyst/decor-platform/internal/repository"
)

// Summary — сводка по выручке и спросу. Снимок на момент запроса,
// транзакционная синхронизация с конкурентными записями не требуется.
type Summary struct {
	TotalRevenueCents int64                      `json:"total_revenue_cents"`
	PaidCount         int64                      `json:"paid_count"`
	UnpaidCount       int64                      `json:"unpaid_count"`
	PendingCount      int64                      `json:"pending_count"`
	Demand            []repository.ServiceDemand `json:"demand_by_service"`
}

// AnalyticsService — read-only свёртки по заявкам. Вызывается синхронно
// по запросу, фоновых задач нет.
type AnalyticsService struct {
	bookings repository.BookingRepository
}

func NewAnalyticsService(bookings repository.BookingRepository) *AnalyticsService {
	return &AnalyticsService{bookings: bookings}
}

func (s *AnalyticsService) Summary(ctx context.Context) (*Summary, error) {
	revenue, err := s.bookings.SumPaidCents(ctx)
	if err != nil {
		return nil, err
	}
	paid, err := s.bookings.CountByPayment(ctx, model.PaymentStatePaid)
	if err != nil {
		return nil, err
	}
	unpaid, err := s.bookings.CountByPayment(ctx, model.PaymentStateUnpaid)
	if err != nil {
		return nil, err
	}
	pending, err := s.bookings.CountByFulfillment(ctx, model.FulfillmentStatePending)
	if err != nil {
		return nil, err
	}
	demand, err := s.bookings.DemandByService(ctx)
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalRevenueCents: revenue,
		PaidCount:         paid,
		UnpaidCount:       unpaid,
		PendingCount:      pending,
		Demand:            demand,
	}, nil
}
