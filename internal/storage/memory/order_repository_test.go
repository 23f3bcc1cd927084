package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
)

func newOrder(id, number string, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:            id,
		OwnerID:       "customer-1",
		Kind:          domain.OrderKindProduct,
		Number:        number,
		Total:         decimal.NewFromFloat(100.00),
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		CreatedAt:     createdAt,
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("order-1", "ORD-AAA", time.Now().UTC())

	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Number != order.Number {
		t.Fatalf("expected number %s, got %s", order.Number, stored.Number)
	}
}

func TestOrderRepository_GetByNumber(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("order-1", "ORD-AAA", time.Now().UTC())
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.GetByNumber("ORD-AAA")
	if err != nil {
		t.Fatalf("get by number failed: %v", err)
	}
	if stored.ID != order.ID {
		t.Fatalf("expected id %s, got %s", order.ID, stored.ID)
	}

	if _, err := repo.GetByNumber("ORD-MISSING"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_NumberConflict(t *testing.T) {
	repo := memory.NewOrderRepository()
	now := time.Now().UTC()

	if err := repo.Create(newOrder("order-1", "ORD-AAA", now)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err := repo.Create(newOrder("order-2", "ORD-AAA", now))
	if !errors.Is(err, domain.ErrOrderNumberConflict) {
		t.Fatalf("expected ErrOrderNumberConflict, got %v", err)
	}
}

func TestOrderRepository_DuplicateID(t *testing.T) {
	repo := memory.NewOrderRepository()
	now := time.Now().UTC()

	if err := repo.Create(newOrder("order-1", "ORD-AAA", now)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Коллизия ID — ошибка хранилища, а не конфликт номера заказа.
	err := repo.Create(newOrder("order-1", "ORD-BBB", now))
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if errors.Is(err, domain.ErrOrderNumberConflict) {
		t.Fatalf("duplicate id must not be reported as a number conflict: %v", err)
	}
}

func TestOrderRepository_ListByOwnerOrdering(t *testing.T) {
	repo := memory.NewOrderRepository()
	base := time.Now().UTC()

	older := newOrder("order-1", "ORD-AAA", base.Add(-time.Hour))
	newer := newOrder("order-2", "ORD-BBB", base)
	foreign := newOrder("order-3", "ORD-CCC", base)
	foreign.OwnerID = "customer-2"

	for _, order := range []domain.Order{older, newer, foreign} {
		if err := repo.Create(order); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	orders, err := repo.ListByOwner("customer-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != "order-2" || orders[1].ID != "order-1" {
		t.Fatalf("expected newest first, got %s, %s", orders[0].ID, orders[1].ID)
	}
}

func TestOrderRepository_Update(t *testing.T) {
	repo := memory.NewOrderRepository()
	if err := repo.Create(newOrder("order-1", "ORD-AAA", time.Now().UTC())); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	status := domain.OrderStatusProcessing
	total := decimal.NewFromFloat(175.50)
	if err := repo.Update("order-1", domain.OrderPatch{Status: &status, Total: &total}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	stored, err := repo.Get("order-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Status != domain.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", stored.Status)
	}
	if !stored.Total.Equal(total) {
		t.Fatalf("expected total %s, got %s", total, stored.Total)
	}
	// Незатронутые патчем поля не меняются.
	if stored.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("payment status must stay pending, got %s", stored.PaymentStatus)
	}

	if err := repo.Update("missing", domain.OrderPatch{Status: &status}); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_Delete(t *testing.T) {
	repo := memory.NewOrderRepository()
	if err := repo.Create(newOrder("order-1", "ORD-AAA", time.Now().UTC())); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.Delete("order-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.Get("order-1"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if err := repo.Delete("order-1"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound on repeated delete, got %v", err)
	}
}
