package domain

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ErrOrderNumberConflict,
	// если номер уже занят.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
	// GetByNumber возвращает заказ по номеру или ErrOrderNotFound.
	GetByNumber(number string) (Order, error)
	// ListByOwner возвращает заказы клиента, новые первыми.
	ListByOwner(ownerID string) ([]Order, error)
	// ListAll возвращает все заказы, новые первыми. Только для персонала.
	ListAll() ([]Order, error)
	// Update применяет патч изменяемых полей; ErrOrderNotFound, если заказа нет.
	Update(id string, patch OrderPatch) error
	// Delete удаляет заказ; ErrOrderNotFound, если заказа нет.
	// Позиции заказа каскадно удаляет слой хранения.
	Delete(id string) error
}

// OrderItemRepository описывает требования к хранилищу позиций заказа.
type OrderItemRepository interface {
	// Create сохраняет новую позицию.
	Create(item OrderItem) error
	// Get возвращает позицию по идентификатору или ErrItemNotFound.
	Get(id string) (OrderItem, error)
	// ListByOrder возвращает позиции заказа в порядке добавления.
	ListByOrder(orderID string) ([]OrderItem, error)
	// Update применяет патч изменяемых полей; ErrItemNotFound, если позиции нет.
	Update(id string, patch OrderItemPatch) error
	// Delete удаляет позицию; ErrItemNotFound, если позиции нет.
	Delete(id string) error
	// DeleteByOrder удаляет все позиции заказа. Отсутствие позиций не ошибка.
	DeleteByOrder(orderID string) error
}
