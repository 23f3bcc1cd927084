package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/orders/internal/health"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
	"github.com/vladislavdragonenkov/orders/internal/service/directory"
	"github.com/vladislavdragonenkov/orders/internal/service/orderitems"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
	"github.com/vladislavdragonenkov/orders/internal/storage/postgres"
	"github.com/vladislavdragonenkov/orders/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/orders/internal/version"
)

// Run собирает зависимости и запускает сервис. Блокируется до отмены ctx
// или фатальной ошибки HTTP-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	orderRepo, itemRepo, store, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("failed to close postgres store")
			}
		}()
	}

	// Справочники пользователей и каталогов работают в памяти процесса.
	users, products, services := buildDirectories()

	orderMetrics := metrics.NewOrderMetrics()

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
			producer = nil
		} else {
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
		}
	}

	var events orders.EventPublisher
	if producer != nil {
		events = producer
	}
	orderSvc := orders.NewService(orderRepo, itemRepo, users, events, orderMetrics, nil)
	itemSvc := orderitems.NewService(itemRepo, orderRepo, products, services, orderSvc, orderMetrics, nil)

	var consumer *kafka.Consumer
	if producer != nil {
		handler := kafka.NewPaymentCallbackHandler(orderSvc, log.WithField("component", "payment-callback-handler"))
		consumer, err = kafka.NewConsumerWithDLQ(
			cfg.KafkaBrokers,
			cfg.PaymentCallbackGroup,
			[]string{kafka.TopicPaymentCallbacks},
			handler,
			producer,
			3,
		)
		if err != nil {
			logger.WithError(err).Warn("failed to create payment callback consumer, continuing without it")
			consumer = nil
		} else {
			go func() {
				if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.WithError(err).Error("payment callback consumer stopped")
				}
			}()
			logger.WithField("topic", kafka.TopicPaymentCallbacks).Info("payment callback consumer started")
		}
	}

	healthHandler := healthcheck.NewHandler(version.String())
	if store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewPingChecker("postgres", store))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiHandler := httpapi.NewHandler(orderSvc, itemSvc, nil)
	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: apiHandler.Router()}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	shutdown := func() {
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		if consumer != nil {
			if err := consumer.Stop(); err != nil {
				logger.WithError(err).Warn("failed to stop payment callback consumer")
			}
		}
		if producer != nil {
			if err := producer.Close(); err != nil {
				logger.WithError(err).Warn("failed to close kafka producer")
			} else {
				logger.Info("kafka producer closed")
			}
		}
	}

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdown()
		return ctx.Err()
	case err := <-errCh:
		shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// buildStorage выбирает хранилище: Postgres при заданном DSN, иначе in-memory.
func buildStorage(ctx context.Context, cfg Config, logger *log.Entry) (domain.OrderRepository, domain.OrderItemRepository, *postgres.Store, error) {
	if cfg.PostgresDSN == "" {
		logger.Info("postgres dsn is empty, using in-memory storage")
		return memory.NewOrderRepository(), memory.NewOrderItemRepository(), nil, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}
	logger.Info("postgres storage initialized, schema is up to date")

	return postgres.NewOrderRepository(store), postgres.NewOrderItemRepository(store), store, nil
}

// buildDirectories собирает in-process справочники с демо-данными.
func buildDirectories() (*directory.StaticUserDirectory, *directory.StaticProductCatalog, *directory.StaticServiceCatalog) {
	users := directory.NewStaticUserDirectory()
	users.Seed("demo-admin", domain.UserProfile{FirstName: "Ivan", LastName: "Petrov", Email: "ivan.petrov@example.com"})
	users.Seed("demo-customer", domain.UserProfile{FirstName: "Anna", LastName: "Sidorova", Email: "anna.sidorova@example.com"})

	products := directory.NewStaticProductCatalog()
	products.Seed("demo-product", domain.ProductInfo{Name: "Demo product", CurrentPrice: decimal.NewFromFloat(49.90)})

	services := directory.NewStaticServiceCatalog()
	services.Seed("demo-service", domain.ServiceInfo{Name: "Demo service", Price: decimal.NewFromFloat(25.00)})

	return users, products, services
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
