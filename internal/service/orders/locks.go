package orders

import "sync"

// orderLocks сериализует пересчёт тотала по идентификатору заказа.
// Пересчёт — это чтение позиций с последующей записью суммы; без
// сериализации две конкурентные мутации позиций одного заказа могут
// записать тотал по устаревшему чтению.
type orderLocks struct {
	mu    sync.Mutex
	locks map[string]*orderLock
}

type orderLock struct {
	mu   sync.Mutex
	refs int
}

func newOrderLocks() *orderLocks {
	return &orderLocks{locks: make(map[string]*orderLock)}
}

// acquire блокирует заказ и возвращает функцию разблокировки.
// Запись в карте живёт, только пока у неё есть держатели.
func (l *orderLocks) acquire(orderID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[orderID]
	if !ok {
		entry = &orderLock{}
		l.locks[orderID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, orderID)
		}
		l.mu.Unlock()
	}
}
