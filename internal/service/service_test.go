package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Leganyst/decor-platform/internal/model"
	"github.com/Leganyst/decor-platform/internal/repository"
)

// newTestDB открывает in-memory sqlite и прогоняет миграции.
// Пул ограничен одним коннектом: это сохраняет общую in-memory базу и
// сериализует конкурирующие транзакции на уровне драйвера.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db         *gorm.DB
	bookings   repository.BookingRepository
	decorators repository.DecoratorRepository
	ledger     repository.LedgerRepository

	registry   *RegistryService
	assignment *AssignmentService
	booking    *BookingService
	payment    *PaymentService
	analytics  *AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	bookings := repository.NewGormBookingRepository(db)
	decorators := repository.NewGormDecoratorRepository(db)
	ledger := repository.NewGormLedgerRepository(db)

	return &testEnv{
		db:         db,
		bookings:   bookings,
		decorators: decorators,
		ledger:     ledger,
		registry:   NewRegistryService(decorators, nil),
		assignment: NewAssignmentService(db, bookings, decorators, nil),
		booking:    NewBookingService(db, bookings, decorators, ledger, nil),
		payment:    NewPaymentService(db, bookings, ledger, nil, "usd", nil),
		analytics:  NewAnalyticsService(bookings),
	}
}

// seedApprovedDecorator создаёт одобренного свободного декоратора.
func (e *testEnv) seedApprovedDecorator(t *testing.T, email, name string) *model.Decorator {
	t.Helper()

	d := &model.Decorator{
		Email:         email,
		DisplayName:   name,
		ApprovalState: model.ApprovalStateApproved,
		Availability:  model.AvailabilityAvailable,
	}
	if err := e.decorators.Create(context.Background(), d); err != nil {
		t.Fatalf("seed decorator: %v", err)
	}
	return d
}

// seedPendingBooking создаёт заявку в pending/unpaid.
func (e *testEnv) seedPendingBooking(t *testing.T, email string, priceCents int64) *model.Booking {
	t.Helper()

	b, err := e.booking.Create(context.Background(), CreateBookingInput{
		RequesterEmail: email,
		ServiceRef:     "interior-decoration",
		PriceCents:     priceCents,
		EventAtISO:     "2026-10-01T10:00:00Z",
		Address:        "12 Garden Street",
	})
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}
