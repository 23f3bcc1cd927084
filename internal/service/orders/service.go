package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
)

// EventPublisher публикует события жизненного цикла заказов.
// Публикация best-effort: её сбой не проваливает основную операцию.
type EventPublisher interface {
	PublishOrderEvent(event *kafka.OrderEvent) error
}

// Service реализует операции над заказами поверх доменных репозиториев.
type Service struct {
	orders  domain.OrderRepository
	items   domain.OrderItemRepository
	users   domain.UserDirectory
	numbers *NumberGenerator
	events  EventPublisher
	metrics *metrics.OrderMetrics
	logger  *log.Entry

	recalcLocks *orderLocks
}

// NewService конструирует сервис заказов. events и orderMetrics опциональны.
func NewService(
	orderRepo domain.OrderRepository,
	itemRepo domain.OrderItemRepository,
	users domain.UserDirectory,
	events EventPublisher,
	orderMetrics *metrics.OrderMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "order-service")
	}
	return &Service{
		orders:      orderRepo,
		items:       itemRepo,
		users:       users,
		numbers:     NewNumberGenerator(),
		events:      events,
		metrics:     orderMetrics,
		logger:      logger,
		recalcLocks: newOrderLocks(),
	}
}

// CreateOrderInput — параметры создания заказа.
type CreateOrderInput struct {
	// OwnerID пуст для анонимного заказа.
	OwnerID string
	Kind    domain.OrderKind
	// Total задаёт начальный тотал; нулевое значение decimal — это 0.
	Total          decimal.Decimal
	AppointmentRef string
}

// OrderView — заказ, обогащённый отображаемыми полями владельца.
// Поля владельца пусты для анонимных заказов и при сбое внешнего
// сервиса пользователей.
type OrderView struct {
	domain.Order
	OwnerFirstName string
	OwnerLastName  string
	OwnerEmail     string
}

// Create создаёт заказ в статусе pending/pending и присваивает ему номер.
func (s *Service) Create(ctx context.Context, input CreateOrderInput) (domain.Order, error) {
	if !input.Kind.Valid() {
		return domain.Order{}, domain.ErrOrderKindInvalid
	}
	if input.Total.IsNegative() {
		return domain.Order{}, domain.ErrTotalNegative
	}

	if input.OwnerID != "" {
		exists, err := s.users.Exists(input.OwnerID)
		if err != nil {
			return domain.Order{}, s.failStorage("verify order owner", err)
		}
		if !exists {
			return domain.Order{}, domain.ErrOwnerNotFound
		}
	}

	order := domain.Order{
		ID:             uuid.NewString(),
		OwnerID:        input.OwnerID,
		Kind:           input.Kind,
		Number:         s.numbers.Next(),
		Total:          input.Total,
		Status:         domain.OrderStatusPending,
		PaymentStatus:  domain.PaymentStatusPending,
		AppointmentRef: input.AppointmentRef,
		CreatedAt:      time.Now().UTC(),
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, errors.Join(errs...)
	}

	if err := s.orders.Create(order); err != nil {
		if errors.Is(err, domain.ErrOrderNumberConflict) {
			return domain.Order{}, err
		}
		return domain.Order{}, s.failStorage("create order", err)
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
	}
	s.publishEvent(&kafka.OrderEvent{
		EventType:     kafka.EventTypeOrderCreated,
		OrderID:       order.ID,
		OwnerID:       order.OwnerID,
		Number:        order.Number,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		Total:         order.Total.StringFixed(2),
		Timestamp:     time.Now().UTC(),
	})

	return order, nil
}

// GetByID возвращает заказ по идентификатору с обогащением полей владельца.
func (s *Service) GetByID(ctx context.Context, id string) (OrderView, error) {
	order, err := s.loadOrder(id, "GetByID")
	if err != nil {
		return OrderView{}, err
	}
	return s.enrichOwner(order), nil
}

// GetByNumber возвращает заказ по номеру с обогащением полей владельца.
func (s *Service) GetByNumber(ctx context.Context, number string) (OrderView, error) {
	order, err := s.orders.GetByNumber(number)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return OrderView{}, err
		}
		return OrderView{}, s.failStorage("load order by number", err)
	}
	return s.enrichOwner(order), nil
}

// ListByOwner возвращает заказы клиента, новые первыми.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	if ownerID == "" {
		return nil, domain.ErrOwnerIDRequired
	}

	orders, err := s.orders.ListByOwner(ownerID)
	if err != nil {
		return nil, s.failStorage("list orders by owner", err)
	}
	return orders, nil
}

// ListAll возвращает все заказы с обогащением. Только для персонала:
// проверку доступа выполняет вызывающий до обращения сюда.
func (s *Service) ListAll(ctx context.Context) ([]OrderView, error) {
	orders, err := s.orders.ListAll()
	if err != nil {
		return nil, s.failStorage("list all orders", err)
	}

	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, s.enrichOwner(order))
	}
	return views, nil
}

// Update применяет патч изменяемых полей, валидируя каждое присутствующее
// поле и переходы статусов по таблицам переходов.
func (s *Service) Update(ctx context.Context, id string, patch domain.OrderPatch) (domain.Order, error) {
	if patch.Empty() {
		return domain.Order{}, domain.ErrEmptyPatch
	}

	current, err := s.loadOrder(id, "Update")
	if err != nil {
		return domain.Order{}, err
	}

	if patch.Kind != nil && !patch.Kind.Valid() {
		return domain.Order{}, domain.ErrOrderKindInvalid
	}
	if patch.Total != nil && patch.Total.IsNegative() {
		return domain.Order{}, domain.ErrTotalNegative
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return domain.Order{}, domain.ErrOrderStatusInvalid
		}
		if !current.Status.CanTransitionTo(*patch.Status) {
			return domain.Order{}, fmt.Errorf("%w: order_status %s -> %s", domain.ErrStatusTransition, current.Status, *patch.Status)
		}
	}
	if patch.PaymentStatus != nil {
		if !patch.PaymentStatus.Valid() {
			return domain.Order{}, domain.ErrPaymentStatusInvalid
		}
		if !current.PaymentStatus.CanTransitionTo(*patch.PaymentStatus) {
			return domain.Order{}, fmt.Errorf("%w: payment_status %s -> %s", domain.ErrStatusTransition, current.PaymentStatus, *patch.PaymentStatus)
		}
	}

	if err := s.orders.Update(id, patch); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return domain.Order{}, err
		}
		return domain.Order{}, s.failStorage("update order", err)
	}

	updated, err := s.loadOrder(id, "UpdateReload")
	if err != nil {
		return domain.Order{}, err
	}

	if patch.Status != nil {
		if s.metrics != nil {
			s.metrics.RecordStatusTransition(string(*patch.Status))
		}
		s.publishEvent(&kafka.OrderEvent{
			EventType: kafka.EventTypeOrderStatusChanged,
			OrderID:   updated.ID,
			OwnerID:   updated.OwnerID,
			Number:    updated.Number,
			Status:    string(updated.Status),
			Timestamp: time.Now().UTC(),
		})
	}
	if patch.PaymentStatus != nil {
		if s.metrics != nil {
			s.metrics.RecordPaymentTransition(string(*patch.PaymentStatus))
		}
		s.publishEvent(&kafka.OrderEvent{
			EventType:     kafka.EventTypeOrderPaymentChanged,
			OrderID:       updated.ID,
			OwnerID:       updated.OwnerID,
			Number:        updated.Number,
			PaymentStatus: string(updated.PaymentStatus),
			Timestamp:     time.Now().UTC(),
		})
	}

	return updated, nil
}

// Delete удаляет заказ вместе с позициями: сначала позиции, затем заказ.
func (s *Service) Delete(ctx context.Context, id string) error {
	order, err := s.loadOrder(id, "Delete")
	if err != nil {
		return err
	}

	if err := s.items.DeleteByOrder(order.ID); err != nil {
		return s.failStorage("delete order items", err)
	}

	if err := s.orders.Delete(order.ID); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return err
		}
		return s.failStorage("delete order", err)
	}

	if s.metrics != nil {
		s.metrics.RecordOrderDeleted()
	}
	s.publishEvent(&kafka.OrderEvent{
		EventType: kafka.EventTypeOrderDeleted,
		OrderID:   order.ID,
		OwnerID:   order.OwnerID,
		Number:    order.Number,
		Timestamp: time.Now().UTC(),
	})

	return nil
}

// RecalculateTotal пересчитывает тотал заказа из позиций: сумма subtotal,
// округлённая до 2 знаков. Пересчёты одного заказа сериализованы, чтобы
// конкурентные мутации позиций не записали тотал по устаревшему чтению.
// Повторный вызов без промежуточных мутаций возвращает тот же результат.
func (s *Service) RecalculateTotal(ctx context.Context, orderID string) (decimal.Decimal, error) {
	unlock := s.recalcLocks.acquire(orderID)
	defer unlock()

	start := time.Now()

	items, err := s.items.ListByOrder(orderID)
	if err != nil {
		return decimal.Zero, s.failStorage("list items for recalculation", err)
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	total = total.Round(2)

	if err := s.orders.Update(orderID, domain.OrderPatch{Total: &total}); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return decimal.Zero, err
		}
		return decimal.Zero, s.failStorage("persist recalculated total", err)
	}

	if s.metrics != nil {
		s.metrics.RecordRecalc(time.Since(start))
	}
	s.publishEvent(&kafka.OrderEvent{
		EventType: kafka.EventTypeOrderTotalRecalculated,
		OrderID:   orderID,
		Total:     total.StringFixed(2),
		Timestamp: time.Now().UTC(),
	})

	return total, nil
}

// ApplyPaymentCallback применяет callback платёжного провайдера.
// Повторная доставка уже применённого статуса — no-op.
func (s *Service) ApplyPaymentCallback(ctx context.Context, orderID string, status domain.PaymentStatus) error {
	order, err := s.loadOrder(orderID, "ApplyPaymentCallback")
	if err != nil {
		return err
	}
	if order.PaymentStatus == status {
		return nil
	}

	_, err = s.Update(ctx, orderID, domain.OrderPatch{PaymentStatus: &status})
	return err
}

// AssertViewable проверяет доступ запрашивающего к заказу через единую
// политику доступа. Отказ возвращается как ошибка, молча не глотается.
func (s *Service) AssertViewable(order domain.Order, requester domain.Requester) error {
	if domain.CanViewOrder(requester, order.OwnerID) {
		return nil
	}

	if s.metrics != nil {
		s.metrics.RecordAccessDenied()
	}
	s.logger.WithFields(log.Fields{
		"order_id":       order.ID,
		"requester_id":   requester.ID,
		"requester_role": string(requester.Role),
	}).Warn("access to order denied")

	return domain.ErrAccessDenied
}

func (s *Service) loadOrder(orderID, operation string) (domain.Order, error) {
	order, err := s.orders.Get(orderID)
	if err == nil {
		return order, nil
	}

	if errors.Is(err, domain.ErrOrderNotFound) {
		return domain.Order{}, err
	}

	s.logger.WithError(err).WithFields(log.Fields{
		"operation": operation,
		"order_id":  orderID,
	}).Error("failed to load order")
	return domain.Order{}, fmt.Errorf("%w: load order", domain.ErrStorage)
}

// failStorage логирует деталь сбоя хранилища и возвращает ошибку без неё.
func (s *Service) failStorage(operation string, err error) error {
	s.logger.WithError(err).WithField("operation", operation).Error("storage operation failed")
	return fmt.Errorf("%w: %s", domain.ErrStorage, operation)
}

// publishEvent публикует событие best-effort.
func (s *Service) publishEvent(event *kafka.OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"event":    string(event.EventType),
			"order_id": event.OrderID,
		}).Warn("failed to publish order event")
	}
}
