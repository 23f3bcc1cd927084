package orderitems

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
)

// Recalculator пересчитывает тотал родительского заказа после мутации позиций.
type Recalculator interface {
	RecalculateTotal(ctx context.Context, orderID string) (decimal.Decimal, error)
}

// Service реализует операции над позициями заказов. Каждая мутация
// завершается пересчётом тотала родительского заказа.
type Service struct {
	items    domain.OrderItemRepository
	orders   domain.OrderRepository
	products domain.ProductCatalog
	services domain.ServiceCatalog
	recalc   Recalculator
	metrics  *metrics.OrderMetrics
	logger   *log.Entry
}

// NewService конструирует сервис позиций. Каталоги и метрики опциональны.
func NewService(
	itemRepo domain.OrderItemRepository,
	orderRepo domain.OrderRepository,
	products domain.ProductCatalog,
	services domain.ServiceCatalog,
	recalc Recalculator,
	orderMetrics *metrics.OrderMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "order-item-service")
	}
	return &Service{
		items:    itemRepo,
		orders:   orderRepo,
		products: products,
		services: services,
		recalc:   recalc,
		metrics:  orderMetrics,
		logger:   logger,
	}
}

// CreateItemInput — параметры добавления позиции в заказ.
type CreateItemInput struct {
	OrderID     string
	Kind        domain.ItemKind
	ProductRef  string
	ServiceRef  string
	Description string
	Quantity    int32
	UnitPrice   decimal.Decimal
}

// ItemView — позиция, обогащённая отображаемыми полями из каталогов.
// Поля каталога пусты, если ссылка не задана или каталог недоступен.
type ItemView struct {
	domain.OrderItem
	CatalogName string
	// CatalogPrice — текущая цена в каталоге; может отличаться от
	// UnitPrice, зафиксированной в момент добавления позиции.
	CatalogPrice decimal.Decimal
}

// Create добавляет позицию в существующий заказ, пересчитывает его тотал
// и возвращает позицию, обогащённую отображаемыми полями каталога.
func (s *Service) Create(ctx context.Context, input CreateItemInput) (ItemView, error) {
	if input.OrderID == "" {
		return ItemView{}, domain.ErrOrderIDRequired
	}

	if _, err := s.orders.Get(input.OrderID); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return ItemView{}, err
		}
		return ItemView{}, s.failStorage("load parent order", err)
	}

	item := domain.OrderItem{
		ID:          uuid.NewString(),
		OrderID:     input.OrderID,
		Kind:        input.Kind,
		ProductRef:  input.ProductRef,
		ServiceRef:  input.ServiceRef,
		Description: input.Description,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		CreatedAt:   time.Now().UTC(),
	}
	item.Subtotal = item.ComputeSubtotal()

	if errs := item.ValidateInvariants(); len(errs) > 0 {
		return ItemView{}, errors.Join(errs...)
	}

	if err := s.items.Create(item); err != nil {
		return ItemView{}, s.failStorage("create order item", err)
	}

	if s.metrics != nil {
		s.metrics.RecordItemMutation("create")
	}

	if _, err := s.recalc.RecalculateTotal(ctx, item.OrderID); err != nil {
		return ItemView{}, err
	}

	return s.enrichCatalog(item), nil
}

// GetByID возвращает позицию по идентификатору с обогащением из каталога.
func (s *Service) GetByID(ctx context.Context, id string) (ItemView, error) {
	item, err := s.loadItem(id, "GetByID")
	if err != nil {
		return ItemView{}, err
	}
	return s.enrichCatalog(item), nil
}

// ListByOrder возвращает позиции заказа в порядке добавления.
func (s *Service) ListByOrder(ctx context.Context, orderID string) ([]ItemView, error) {
	if orderID == "" {
		return nil, domain.ErrOrderIDRequired
	}

	if _, err := s.orders.Get(orderID); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, err
		}
		return nil, s.failStorage("load parent order", err)
	}

	items, err := s.items.ListByOrder(orderID)
	if err != nil {
		return nil, s.failStorage("list order items", err)
	}

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, s.enrichCatalog(item))
	}
	return views, nil
}

// Update применяет патч изменяемых полей позиции. Если меняются количество
// или цена, subtotal пересчитывается здесь, а тотал заказа — после записи.
func (s *Service) Update(ctx context.Context, id string, patch domain.OrderItemPatch) (domain.OrderItem, error) {
	if patch.Empty() {
		return domain.OrderItem{}, domain.ErrEmptyPatch
	}

	current, err := s.loadItem(id, "Update")
	if err != nil {
		return domain.OrderItem{}, err
	}

	if patch.Quantity != nil && *patch.Quantity <= 0 {
		return domain.OrderItem{}, domain.ErrItemQuantityInvalid
	}
	if patch.UnitPrice != nil && !patch.UnitPrice.IsPositive() {
		return domain.OrderItem{}, domain.ErrItemPriceInvalid
	}
	if patch.Description != nil && *patch.Description == "" {
		return domain.OrderItem{}, domain.ErrItemDescriptionRequired
	}

	if patch.Quantity != nil || patch.UnitPrice != nil {
		next := current
		if patch.Quantity != nil {
			next.Quantity = *patch.Quantity
		}
		if patch.UnitPrice != nil {
			next.UnitPrice = *patch.UnitPrice
		}
		subtotal := next.ComputeSubtotal()
		patch.Subtotal = &subtotal
	}

	if err := s.items.Update(id, patch); err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return domain.OrderItem{}, err
		}
		return domain.OrderItem{}, s.failStorage("update order item", err)
	}

	if s.metrics != nil {
		s.metrics.RecordItemMutation("update")
	}

	if patch.Subtotal != nil {
		if _, err := s.recalc.RecalculateTotal(ctx, current.OrderID); err != nil {
			return domain.OrderItem{}, err
		}
	}

	return s.loadItem(id, "UpdateReload")
}

// Delete удаляет позицию и пересчитывает тотал родительского заказа.
// Если заказ к этому моменту уже удалён каскадом, пересчёт пропускается.
func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.loadItem(id, "Delete")
	if err != nil {
		return err
	}

	if err := s.items.Delete(id); err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return err
		}
		return s.failStorage("delete order item", err)
	}

	if s.metrics != nil {
		s.metrics.RecordItemMutation("delete")
	}

	if _, err := s.recalc.RecalculateTotal(ctx, item.OrderID); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil
		}
		return err
	}

	return nil
}

// enrichCatalog дополняет позицию отображаемыми полями каталога.
// Обогащение best-effort: сбой каталога не проваливает чтение позиции.
func (s *Service) enrichCatalog(item domain.OrderItem) ItemView {
	view := ItemView{OrderItem: item}

	switch {
	case item.Kind == domain.ItemKindProduct && item.ProductRef != "" && s.products != nil:
		product, err := s.products.Product(item.ProductRef)
		if err != nil {
			s.logger.WithError(err).WithField("product_ref", item.ProductRef).
				Warn("failed to enrich item from product catalog")
			return view
		}
		view.CatalogName = product.Name
		view.CatalogPrice = product.CurrentPrice
	case item.Kind == domain.ItemKindService && item.ServiceRef != "" && s.services != nil:
		service, err := s.services.Service(item.ServiceRef)
		if err != nil {
			s.logger.WithError(err).WithField("service_ref", item.ServiceRef).
				Warn("failed to enrich item from service catalog")
			return view
		}
		view.CatalogName = service.Name
		view.CatalogPrice = service.Price
	}

	return view
}

func (s *Service) loadItem(itemID, operation string) (domain.OrderItem, error) {
	item, err := s.items.Get(itemID)
	if err == nil {
		return item, nil
	}

	if errors.Is(err, domain.ErrItemNotFound) {
		return domain.OrderItem{}, err
	}

	s.logger.WithError(err).WithFields(log.Fields{
		"operation": operation,
		"item_id":   itemID,
	}).Error("failed to load order item")
	return domain.OrderItem{}, fmt.Errorf("%w: load order item", domain.ErrStorage)
}

func (s *Service) failStorage(operation string, err error) error {
	s.logger.WithError(err).WithField("operation", operation).Error("storage operation failed")
	return fmt.Errorf("%w: %s", domain.ErrStorage, operation)
}
