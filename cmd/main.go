package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Leganyst/decor-platform/internal/config"
	"github.com/Leganyst/decor-platform/internal/db"
	"github.com/Leganyst/decor-platform/internal/events"
	"github.com/Leganyst/decor-platform/internal/model"
	"github.com/Leganyst/decor-platform/internal/mq"
	"github.com/Leganyst/decor-platform/internal/obs"
	"github.com/Leganyst/decor-platform/internal/payment"
	"github.com/Leganyst/decor-platform/internal/repository"
	"github.com/Leganyst/decor-platform/internal/service"
	transport "github.com/Leganyst/decor-platform/internal/transport/http"
)

func main() {
	// 1. Конфиг из env (+ .env, если есть).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// 2. Трейсинг.
	shutdownTracer := obs.InitTracer("decor-core")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	// 3. Подключение к БД через GORM и миграции.
	gormDB, err := db.NewGormDB(cfg)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("sql DB: %v", err)
	}
	defer sqlDB.Close()

	// 4. Репозитории (реализации на GORM).
	bookingRepo := repository.NewGormBookingRepository(gormDB)
	decoratorRepo := repository.NewGormDecoratorRepository(gormDB)
	ledgerRepo := repository.NewGormLedgerRepository(gormDB)

	// 5. Паблишер событий (опционален: без RABBIT_URL события не шлём).
	var pub service.EventPublisher
	if cfg.RabbitURL != "" {
		p, err := mq.NewPublisher(cfg.RabbitURL, cfg.EventExchange)
		if err != nil {
			log.Fatalf("mq publisher: %v", err)
		}
		defer p.Close()
		pub = p
	}

	// 6. Платёжный провайдер (опционален).
	var provider payment.Provider
	if cfg.OmiseSecretKey != "" {
		provider, err = payment.NewOmiseProvider(cfg.OmisePublicKey, cfg.OmiseSecretKey)
		if err != nil {
			log.Fatalf("omise client: %v", err)
		}
	}

	// 7. Сервисы ядра.
	registrySvc := service.NewRegistryService(decoratorRepo, pub)
	assignmentSvc := service.NewAssignmentService(gormDB, bookingRepo, decoratorRepo, pub)
	bookingSvc := service.NewBookingService(gormDB, bookingRepo, decoratorRepo, ledgerRepo, pub)
	paymentSvc := service.NewPaymentService(gormDB, bookingRepo, ledgerRepo, provider, cfg.Currency, pub)
	analyticsSvc := service.NewAnalyticsService(bookingRepo)

	// 8. Потребитель платёжных событий из очереди (опционален).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RabbitURL != "" {
		cons, err := mq.NewConsumer(cfg.RabbitURL, cfg.PaymentExchange, cfg.PaymentQueue, []string{"payment.paid"})
		if err != nil {
			log.Fatalf("mq consumer: %v", err)
		}
		defer cons.Close()
		if err := events.NewPaymentConsumer(paymentSvc, cons).Run(ctx); err != nil {
			log.Fatalf("payment consumer: %v", err)
		}
	}

	// 9. HTTP-сервер.
	router := transport.NewRouter(cfg.JWTSecret, bookingSvc, assignmentSvc, registrySvc, paymentSvc, analyticsSvc)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("decor core listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http serve: %v", err)
		}
	}()

	// 10. Грейсфул-шатдаун по сигналу.
	<-ctx.Done()
	log.Println("shutting down http server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}
