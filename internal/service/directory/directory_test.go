package directory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/service/directory"
)

func TestStaticUserDirectory(t *testing.T) {
	users := directory.NewStaticUserDirectory()
	users.Seed("user-1", domain.UserProfile{FirstName: "Anna", Email: "anna@example.com"})

	exists, err := users.Exists("user-1")
	if err != nil || !exists {
		t.Fatalf("expected user to exist, got %v, %v", exists, err)
	}

	exists, err = users.Exists("ghost")
	if err != nil || exists {
		t.Fatalf("expected user to be absent, got %v, %v", exists, err)
	}

	profile, err := users.Profile("user-1")
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	if profile.Email != "anna@example.com" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	if _, err := users.Profile("ghost"); !errors.Is(err, domain.ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}

func TestStaticCatalogs(t *testing.T) {
	products := directory.NewStaticProductCatalog()
	products.Seed("prod-1", domain.ProductInfo{Name: "Engine oil", CurrentPrice: decimal.NewFromFloat(14.00)})

	product, err := products.Product("prod-1")
	if err != nil {
		t.Fatalf("product failed: %v", err)
	}
	if product.Name != "Engine oil" {
		t.Fatalf("unexpected product %+v", product)
	}
	if _, err := products.Product("ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	services := directory.NewStaticServiceCatalog()
	services.Seed("svc-1", domain.ServiceInfo{Name: "Oil change", Price: decimal.NewFromFloat(30.00)})

	service, err := services.Service("svc-1")
	if err != nil {
		t.Fatalf("service failed: %v", err)
	}
	if !service.Price.Equal(decimal.NewFromFloat(30.00)) {
		t.Fatalf("unexpected service %+v", service)
	}
	if _, err := services.Service("ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
