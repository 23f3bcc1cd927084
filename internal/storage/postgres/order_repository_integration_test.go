package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

func sampleOrder(id, ownerID, number string, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:            id,
		OwnerID:       ownerID,
		Kind:          domain.OrderKindProduct,
		Number:        number,
		Total:         decimal.NewFromFloat(100.00),
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		CreatedAt:     createdAt,
	}
}

func sampleItem(id, orderID string, createdAt time.Time) domain.OrderItem {
	item := domain.OrderItem{
		ID:          id,
		OrderID:     orderID,
		Kind:        domain.ItemKindProduct,
		ProductRef:  "prod-1",
		Description: "Engine oil",
		Quantity:    2,
		UnitPrice:   decimal.NewFromFloat(50.00),
		CreatedAt:   createdAt,
	}
	item.Subtotal = item.ComputeSubtotal()
	return item
}

func TestOrderRepository_PostgresCreateGetList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	order1 := sampleOrder("order-1", "customer-1", "ORD-AAA", now.Add(-2*time.Minute))
	order2 := sampleOrder("order-2", "customer-1", "ORD-BBB", now.Add(-time.Minute))

	if err := repo.Create(order1); err != nil {
		t.Fatalf("create order1: %v", err)
	}
	if err := repo.Create(order2); err != nil {
		t.Fatalf("create order2: %v", err)
	}

	got, err := repo.Get(order1.ID)
	if err != nil {
		t.Fatalf("get order1: %v", err)
	}
	if got.OwnerID != order1.OwnerID || got.Number != order1.Number || got.Status != order1.Status {
		t.Fatalf("unexpected order payload: %+v", got)
	}
	if !got.Total.Equal(order1.Total) {
		t.Fatalf("unexpected total: got=%s want=%s", got.Total, order1.Total)
	}

	byNumber, err := repo.GetByNumber("ORD-BBB")
	if err != nil {
		t.Fatalf("get by number: %v", err)
	}
	if byNumber.ID != order2.ID {
		t.Fatalf("unexpected order by number: %+v", byNumber)
	}

	listed, err := repo.ListByOwner("customer-1")
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != order2.ID {
		t.Fatalf("expected newest first, got %+v", listed)
	}
}

func TestOrderRepository_PostgresNumberConflict(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	if err := repo.Create(sampleOrder("order-1", "customer-1", "ORD-AAA", now)); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := repo.Create(sampleOrder("order-2", "customer-1", "ORD-AAA", now))
	if !errors.Is(err, domain.ErrOrderNumberConflict) {
		t.Fatalf("expected ErrOrderNumberConflict, got %v", err)
	}
}

func TestOrderRepository_PostgresUpdateDelete(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	if err := repo.Create(sampleOrder("order-1", "customer-1", "ORD-AAA", now)); err != nil {
		t.Fatalf("create: %v", err)
	}

	status := domain.OrderStatusProcessing
	total := decimal.NewFromFloat(175.50)
	if err := repo.Update("order-1", domain.OrderPatch{Status: &status, Total: &total}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.Get("order-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.OrderStatusProcessing || !got.Total.Equal(total) {
		t.Fatalf("unexpected order after update: %+v", got)
	}

	if err := repo.Delete("order-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get("order-1"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if err := repo.Update("order-1", domain.OrderPatch{Status: &status}); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound on update, got %v", err)
	}
}

func TestOrderRepository_PostgresNullableFields(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	anonymous := sampleOrder("order-1", "", "ORD-AAA", now)
	if err := repo.Create(anonymous); err != nil {
		t.Fatalf("create anonymous: %v", err)
	}

	got, err := repo.Get("order-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OwnerID != "" || got.AppointmentRef != "" {
		t.Fatalf("expected empty nullable fields, got %+v", got)
	}
}

func TestOrderItemRepository_PostgresFlow(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	orderRepo := NewOrderRepository(store)
	itemRepo := NewOrderItemRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	if err := orderRepo.Create(sampleOrder("order-1", "customer-1", "ORD-AAA", now)); err != nil {
		t.Fatalf("create order: %v", err)
	}

	first := sampleItem("item-1", "order-1", now.Add(-time.Minute))
	second := sampleItem("item-2", "order-1", now)
	if err := itemRepo.Create(first); err != nil {
		t.Fatalf("create item-1: %v", err)
	}
	if err := itemRepo.Create(second); err != nil {
		t.Fatalf("create item-2: %v", err)
	}

	items, err := itemRepo.ListByOrder("order-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != "item-1" {
		t.Fatalf("expected insertion order, got %+v", items)
	}

	qty := int32(5)
	subtotal := decimal.NewFromFloat(250.00)
	if err := itemRepo.Update("item-1", domain.OrderItemPatch{Quantity: &qty, Subtotal: &subtotal}); err != nil {
		t.Fatalf("update item: %v", err)
	}
	got, err := itemRepo.Get("item-1")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.Quantity != 5 || !got.Subtotal.Equal(subtotal) {
		t.Fatalf("unexpected item after update: %+v", got)
	}

	if err := itemRepo.DeleteByOrder("order-1"); err != nil {
		t.Fatalf("delete by order: %v", err)
	}
	items, err = itemRepo.ListByOrder("order-1")
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %+v", items)
	}
}

func TestOrderItemRepository_PostgresCascade(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	orderRepo := NewOrderRepository(store)
	itemRepo := NewOrderItemRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	if err := orderRepo.Create(sampleOrder("order-1", "customer-1", "ORD-AAA", now)); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := itemRepo.Create(sampleItem("item-1", "order-1", now)); err != nil {
		t.Fatalf("create item: %v", err)
	}

	// Удаление заказа каскадно убирает позиции.
	if err := orderRepo.Delete("order-1"); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	if _, err := itemRepo.Get("item-1"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected cascade delete, got %v", err)
	}
}
