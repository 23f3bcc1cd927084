package orderitems_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/service/directory"
	"github.com/vladislavdragonenkov/orders/internal/service/orderitems"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
)

type fixture struct {
	svc      *orderitems.Service
	orderSvc *orders.Service
	orders   domain.OrderRepository
	items    domain.OrderItemRepository
	products *directory.StaticProductCatalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := directory.NewStaticUserDirectory()
	users.Seed("customer-1", domain.UserProfile{FirstName: "Anna"})

	products := directory.NewStaticProductCatalog()
	products.Seed("prod-1", domain.ProductInfo{Name: "Engine oil", CurrentPrice: decimal.NewFromFloat(14.00)})

	services := directory.NewStaticServiceCatalog()
	services.Seed("svc-1", domain.ServiceInfo{Name: "Oil change", Price: decimal.NewFromFloat(30.00)})

	orderRepo := memory.NewOrderRepository()
	itemRepo := memory.NewOrderItemRepository()

	orderSvc := orders.NewService(orderRepo, itemRepo, users, nil, nil, nil)
	itemSvc := orderitems.NewService(itemRepo, orderRepo, products, services, orderSvc, nil, nil)

	return &fixture{
		svc:      itemSvc,
		orderSvc: orderSvc,
		orders:   orderRepo,
		items:    itemRepo,
		products: products,
	}
}

func mustCreateOrder(t *testing.T, f *fixture) domain.Order {
	t.Helper()
	order, err := f.orderSvc.Create(context.Background(), orders.CreateOrderInput{
		OwnerID: "customer-1",
		Kind:    domain.OrderKindMixed,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func productInput(orderID string, qty int32, price string) orderitems.CreateItemInput {
	return orderitems.CreateItemInput{
		OrderID:     orderID,
		Kind:        domain.ItemKindProduct,
		ProductRef:  "prod-1",
		Description: "Engine oil",
		Quantity:    qty,
		UnitPrice:   decimal.RequireFromString(price),
	}
}

func TestService_Create_ComputesSubtotalAndTotal(t *testing.T) {
	f := newFixture(t)
	order := mustCreateOrder(t, f)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, productInput(order.ID, 2, "50.00"))
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	if item.Subtotal.StringFixed(2) != "100.00" {
		t.Fatalf("expected subtotal 100.00, got %s", item.Subtotal.StringFixed(2))
	}

	stored, err := f.orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if stored.Total.StringFixed(2) != "100.00" {
		t.Fatalf("expected order total 100.00, got %s", stored.Total.StringFixed(2))
	}
}

func TestService_Create_EnrichesFromCatalog(t *testing.T) {
	f := newFixture(t)
	order := mustCreateOrder(t, f)
	ctx := context.Background()

	view, err := f.svc.Create(ctx, productInput(order.ID, 1, "12.00"))
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	if view.CatalogName != "Engine oil" {
		t.Fatalf("expected catalog name, got %q", view.CatalogName)
	}
	if view.CatalogPrice.StringFixed(2) != "14.00" {
		t.Fatalf("expected catalog price 14.00, got %s", view.CatalogPrice.StringFixed(2))
	}

	input := productInput(order.ID, 1, "12.00")
	input.ProductRef = "ghost"
	view, err = f.svc.Create(ctx, input)
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	if view.CatalogName != "" {
		t.Fatalf("expected empty catalog fields, got %q", view.CatalogName)
	}
}

func TestService_Create_TotalAccumulates(t *testing.T) {
	f := newFixture(t)
	order := mustCreateOrder(t, f)
	ctx := context.Background()

	steps := []struct {
		qty   int32
		price string
		total string
	}{
		{2, "50.00", "100.00"},
		{1, "25.50", "125.50"},
		{2, "25.00", "175.50"},
	}

	for _, step := range steps {
		if _, err := f.svc.Create(ctx, productInput(order.ID, step.qty, step.price)); err != nil {
			t.Fatalf("create item failed: %v", err)
		}
		stored, err := f.orders.Get(order.ID)
		if err != nil {
			t.Fatalf("get order failed: %v", err)
		}
		if stored.Total.StringFixed(2) != step.total {
			t.Fatalf("expected total %s, got %s", step.total, stored.Total.StringFixed(2))
		}
	}
}

func TestService_Create_Validation(t *testing.T) {
	f := newFixture(t)
	order := mustCreateOrder(t, f)
	ctx := context.Background()

	cases := []struct {
		name  string
		input orderitems.CreateItemInput
		want  error
	}{
		{"missing order id", productInput("", 1, "10.00"), domain.ErrOrderIDRequired},
		{"unknown order", productInput("missing", 1, "10.00"), domain.ErrOrderNotFound},
		{"zero quantity", productInput(order.ID, 0, "10.00"), domain.ErrItemQuantityInvalid},
		{"zero price", productInput(order.ID, 1, "0"), domain.ErrItemPriceInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Create(ctx, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	input := productInput(order.ID, 1, "10.00")
	input.Description = ""
	if _, err := f.svc.Create(ctx, input); !errors.Is(err, domain.ErrItemDescriptionRequired) {
		t.Fatalf("expected ErrItemDescriptionRequired, got %v", err)
	}
}

func TestService_Update_RecomputesSubtotal(t *testing.T) {
	f := newFixture(t)
	order := mustCreateOrder(t, f)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, productInput(order.ID, 2, "50.00"))
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}

	qty := int32(3)
	updated, err := f.svc.Update(ctx, item.ID, domain.OrderItemPatch{Quantity: &qty})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Subtotal.StringFixed(2) != "150.00" {
		t.Fatalf("expected subtotal 150.00, got %s", updated.Subtotal.StringFixed(2))
	}

	stored, err := f.orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if stored.Total.StringFixed(2) != "150.00" {
		t.Fatalf("expected order total 150.00, got %s", stored.Total.StringFixed(2))
	}
}

func TestService_Update_DescriptionOnlySkipsRecalc(t *testing.T) {
	f := newFixture(t)
	order := mustCreateOrder(t, f)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, productInput(order.ID, 2, "50.00"))
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}

	desc := "Synthetic engine oil"
	updated, err := f.svc.Update(ctx, item.ID, domain.OrderItemPatch{Description: &desc})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Description != desc {
		t.Fatalf("expected description update, got %s", updated.Description)
	}
	if !updated.Subtotal.Equal(item.Subtotal) {
		t.Fatalf("subtotal must not change, got %s", updated.Subtotal)
	}
}

func TestService_Update_Validation(t *testing.T) {
	f := newFixture(t)
	order := mustCreateOrder(t, f)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, productInput(order.ID, 2, "50.00"))
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}

	if _, err := f.svc.Update(ctx, item.ID, domain.OrderItemPatch{}); !errors.Is(err, domain.ErrEmptyPatch) {
		t.Fatalf("expected ErrEmptyPatch, got %v", err)
	}

	qty := int32(0)
	if _, err := f.svc.Update(ctx, item.ID, domain.OrderItemPatch{Quantity: &qty}); !errors.Is(err, domain.ErrItemQuantityInvalid) {
		t.Fatalf("expected ErrItemQuantityInvalid, got %v", err)
	}

	price := decimal.Zero
	if _, err := f.svc.Update(ctx, item.ID, domain.OrderItemPatch{UnitPrice: &price}); !errors.Is(err, domain.ErrItemPriceInvalid) {
		t.Fatalf("expected ErrItemPriceInvalid, got %v", err)
	}

	validQty := int32(1)
	if _, err := f.svc.Update(ctx, "missing", domain.OrderItemPatch{Quantity: &validQty}); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestService_Delete_RecalculatesTotal(t *testing.T) {
	f := newFixture(t)
	order := mustCreateOrder(t, f)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, productInput(order.ID, 2, "50.00"))
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	if _, err := f.svc.Create(ctx, productInput(order.ID, 1, "25.50")); err != nil {
		t.Fatalf("create item failed: %v", err)
	}

	if err := f.svc.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	stored, err := f.orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if stored.Total.StringFixed(2) != "25.50" {
		t.Fatalf("expected total 25.50, got %s", stored.Total.StringFixed(2))
	}
}

func TestService_Delete_OrderAlreadyGone(t *testing.T) {
	f := newFixture(t)
	order := mustCreateOrder(t, f)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, productInput(order.ID, 1, "10.00"))
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}

	// Заказ удалён, но позиция осталась: пересчёт после удаления
	// позиции должен тихо пропуститься.
	if err := f.orders.Delete(order.ID); err != nil {
		t.Fatalf("delete order failed: %v", err)
	}

	if err := f.svc.Delete(ctx, item.ID); err != nil {
		t.Fatalf("delete item must skip recalculation for a gone order: %v", err)
	}
}

func TestService_GetByID_EnrichesFromCatalog(t *testing.T) {
	f := newFixture(t)
	order := mustCreateOrder(t, f)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, productInput(order.ID, 1, "12.00"))
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}

	view, err := f.svc.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if view.CatalogName != "Engine oil" {
		t.Fatalf("expected catalog name, got %q", view.CatalogName)
	}
	if view.CatalogPrice.StringFixed(2) != "14.00" {
		t.Fatalf("expected catalog price 14.00, got %s", view.CatalogPrice.StringFixed(2))
	}
}

func TestService_GetByID_CatalogMissIsNotFatal(t *testing.T) {
	f := newFixture(t)
	order := mustCreateOrder(t, f)
	ctx := context.Background()

	input := productInput(order.ID, 1, "12.00")
	input.ProductRef = "ghost"
	item, err := f.svc.Create(ctx, input)
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}

	view, err := f.svc.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if view.CatalogName != "" {
		t.Fatalf("expected empty catalog fields, got %q", view.CatalogName)
	}
}

func TestService_ListByOrder(t *testing.T) {
	f := newFixture(t)
	order := mustCreateOrder(t, f)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, productInput(order.ID, 1, "10.00")); err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	if _, err := f.svc.Create(ctx, orderitems.CreateItemInput{
		OrderID:     order.ID,
		Kind:        domain.ItemKindService,
		ServiceRef:  "svc-1",
		Description: "Oil change",
		Quantity:    1,
		UnitPrice:   decimal.RequireFromString("30.00"),
	}); err != nil {
		t.Fatalf("create item failed: %v", err)
	}

	views, err := f.svc.ListByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 items, got %d", len(views))
	}

	if _, err := f.svc.ListByOrder(ctx, "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
