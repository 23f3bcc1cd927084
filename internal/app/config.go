package app

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config — настройки сервиса, читаются из окружения с префиксом ORDERS_.
type Config struct {
	// HTTPAddr — адрес API заказов.
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	// MetricsAddr — адрес /metrics и health-эндпоинтов.
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`
	// PostgresDSN пуст — работаем на in-memory хранилище.
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
	// KafkaBrokers пуст — события не публикуются, callbacks не потребляются.
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	// PaymentCallbackGroup — consumer group для платёжных callbacks.
	PaymentCallbackGroup string `envconfig:"PAYMENT_CALLBACK_GROUP" default:"orders-payment-callbacks"`
	// LogLevel — уровень logrus: debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig читает конфигурацию из переменных окружения.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("orders", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
