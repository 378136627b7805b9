package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// App — конфигурация сервиса из переменных окружения.
type App struct {
	HTTPAddr  string `envconfig:"HTTP_ADDR" default:":8080"`
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// БД
	DBHost            string `envconfig:"DB_HOST" default:"postgres"`
	DBPort            int    `envconfig:"DB_PORT" default:"5432"`
	DBUser            string `envconfig:"DB_USER" default:"decor"`
	DBPassword        string `envconfig:"DB_PASSWORD" default:"decor"`
	DBName            string `envconfig:"DB_NAME" default:"decor_db"`
	DBSSLMode         string `envconfig:"DB_SSLMODE" default:"disable"`
	DBTimeZone        string `envconfig:"DB_TIMEZONE" default:"UTC"`
	DBMaxOpenConns    int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	DBMaxIdleConns    int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	DBConnMaxLifeTime int    `envconfig:"DB_CONN_MAX_LIFETIME_MIN" default:"30"` // минут

	// RabbitMQ. Пустой URL — события не публикуются и не потребляются.
	RabbitURL       string `envconfig:"RABBIT_URL"`
	EventExchange   string `envconfig:"EVENT_EXCHANGE" default:"decor.events"`
	PaymentExchange string `envconfig:"PAYMENT_EXCHANGE" default:"payment.exchange"`
	PaymentQueue    string `envconfig:"PAYMENT_QUEUE" default:"decor.payment.q"`

	// Платёжный провайдер (Omise).
	OmisePublicKey string `envconfig:"OMISE_PUBLIC_KEY"`
	OmiseSecretKey string `envconfig:"OMISE_SECRET_KEY"`
	Currency       string `envconfig:"PAYMENT_CURRENCY" default:"usd"`

	Env string `envconfig:"ENV" default:"dev"`
}

// Load читает .env (если есть) и собирает конфиг из окружения.
func Load() (*App, error) {
	_ = godotenv.Load()

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	// минимальная валидация
	if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
	}

	return &cfg, nil
}

// DSN собирает строку подключения к Postgres.
func (c *App) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.DBHost,
		c.DBUser,
		c.DBPassword,
		c.DBName,
		c.DBPort,
		c.DBSSLMode,
		c.DBTimeZone,
	)
}
