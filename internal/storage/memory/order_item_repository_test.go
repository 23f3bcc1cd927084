package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
)

func newItem(id, orderID string, createdAt time.Time) domain.OrderItem {
	item := domain.OrderItem{
		ID:          id,
		OrderID:     orderID,
		Kind:        domain.ItemKindProduct,
		ProductRef:  "prod-1",
		Description: "Brake pads",
		Quantity:    2,
		UnitPrice:   decimal.NewFromFloat(30.00),
		CreatedAt:   createdAt,
	}
	item.Subtotal = item.ComputeSubtotal()
	return item
}

func TestOrderItemRepository_CreateGet(t *testing.T) {
	repo := memory.NewOrderItemRepository()
	item := newItem("item-1", "order-1", time.Now().UTC())

	if err := repo.Create(item); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(item.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !stored.Subtotal.Equal(item.Subtotal) {
		t.Fatalf("expected subtotal %s, got %s", item.Subtotal, stored.Subtotal)
	}

	if _, err := repo.Get("missing"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestOrderItemRepository_ListByOrderOrdering(t *testing.T) {
	repo := memory.NewOrderItemRepository()
	base := time.Now().UTC()

	second := newItem("item-2", "order-1", base)
	first := newItem("item-1", "order-1", base.Add(-time.Minute))
	foreign := newItem("item-3", "order-2", base)

	for _, item := range []domain.OrderItem{second, first, foreign} {
		if err := repo.Create(item); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	items, err := repo.ListByOrder("order-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "item-1" || items[1].ID != "item-2" {
		t.Fatalf("expected insertion order, got %s, %s", items[0].ID, items[1].ID)
	}
}

func TestOrderItemRepository_Update(t *testing.T) {
	repo := memory.NewOrderItemRepository()
	if err := repo.Create(newItem("item-1", "order-1", time.Now().UTC())); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	qty := int32(5)
	subtotal := decimal.NewFromFloat(150.00)
	if err := repo.Update("item-1", domain.OrderItemPatch{Quantity: &qty, Subtotal: &subtotal}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	stored, err := repo.Get("item-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", stored.Quantity)
	}
	if !stored.Subtotal.Equal(subtotal) {
		t.Fatalf("expected subtotal %s, got %s", subtotal, stored.Subtotal)
	}

	if err := repo.Update("missing", domain.OrderItemPatch{Quantity: &qty}); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestOrderItemRepository_DeleteByOrder(t *testing.T) {
	repo := memory.NewOrderItemRepository()
	now := time.Now().UTC()

	for _, item := range []domain.OrderItem{
		newItem("item-1", "order-1", now),
		newItem("item-2", "order-1", now),
		newItem("item-3", "order-2", now),
	} {
		if err := repo.Create(item); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	if err := repo.DeleteByOrder("order-1"); err != nil {
		t.Fatalf("delete by order failed: %v", err)
	}

	items, err := repo.ListByOrder("order-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}

	// Позиции других заказов не затронуты.
	if _, err := repo.Get("item-3"); err != nil {
		t.Fatalf("foreign item must survive: %v", err)
	}

	// Повторное удаление по заказу без позиций не ошибка.
	if err := repo.DeleteByOrder("order-1"); err != nil {
		t.Fatalf("repeated delete by order failed: %v", err)
	}
}
