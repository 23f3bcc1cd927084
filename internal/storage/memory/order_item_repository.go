package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// orderItemRepositoryInMemory — простая in-memory реализация OrderItemRepository.
type orderItemRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.OrderItem
}

// NewOrderItemRepository возвращает in-memory репозиторий позиций заказа.
func NewOrderItemRepository() domain.OrderItemRepository {
	return &orderItemRepositoryInMemory{
		items: make(map[string]domain.OrderItem),
	}
}

// Create сохраняет новую позицию, если ID ещё не занят.
func (r *orderItemRepositoryInMemory) Create(item domain.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return domain.ErrStorage
	}
	r.items[item.ID] = item
	return nil
}

// Get возвращает позицию или ErrItemNotFound, если её нет.
func (r *orderItemRepositoryInMemory) Get(id string) (domain.OrderItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return domain.OrderItem{}, domain.ErrItemNotFound
	}
	return item, nil
}

// ListByOrder возвращает позиции заказа в порядке добавления.
func (r *orderItemRepositoryInMemory) ListByOrder(orderID string) ([]domain.OrderItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.OrderItem, 0)
	for _, item := range r.items {
		if item.OrderID != orderID {
			continue
		}
		result = append(result, item)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Update применяет патч к изменяемым полям позиции.
func (r *orderItemRepositoryInMemory) Update(id string, patch domain.OrderItemPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return domain.ErrItemNotFound
	}

	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		item.UnitPrice = *patch.UnitPrice
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Subtotal != nil {
		item.Subtotal = *patch.Subtotal
	}

	r.items[id] = item
	return nil
}

// Delete удаляет позицию или возвращает ErrItemNotFound.
func (r *orderItemRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(r.items, id)
	return nil
}

// DeleteByOrder удаляет все позиции заказа; отсутствие позиций не ошибка.
func (r *orderItemRepositoryInMemory) DeleteByOrder(orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.items {
		if item.OrderID == orderID {
			delete(r.items, id)
		}
	}
	return nil
}

var _ domain.OrderItemRepository = (*orderItemRepositoryInMemory)(nil)
