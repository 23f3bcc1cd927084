package domain_test

import (
	"testing"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

func TestCanViewOrder(t *testing.T) {
	cases := []struct {
		name      string
		requester domain.Requester
		ownerID   string
		allowed   bool
	}{
		{"admin views any order", domain.Requester{ID: "admin-1", Role: domain.RoleAdmin}, "customer-1", true},
		{"admin views anonymous order", domain.Requester{ID: "admin-1", Role: domain.RoleAdmin}, "", true},
		{"employee views any order", domain.Requester{ID: "emp-1", Role: domain.RoleEmployee}, "customer-1", true},
		{"customer views own order", domain.Requester{ID: "customer-1", Role: domain.RoleCustomer}, "customer-1", true},
		{"customer denied foreign order", domain.Requester{ID: "customer-1", Role: domain.RoleCustomer}, "customer-2", false},
		{"customer denied anonymous order", domain.Requester{ID: "customer-1", Role: domain.RoleCustomer}, "", false},
		{"customer without id denied", domain.Requester{ID: "", Role: domain.RoleCustomer}, "", false},
		{"unknown role denied", domain.Requester{ID: "x", Role: "auditor"}, "x", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.CanViewOrder(tc.requester, tc.ownerID); got != tc.allowed {
				t.Fatalf("expected %v, got %v", tc.allowed, got)
			}
		})
	}
}

func TestRole_Valid(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleEmployee, domain.RoleCustomer} {
		if !role.Valid() {
			t.Fatalf("%s must be valid", role)
		}
	}
	if domain.Role("root").Valid() {
		t.Fatal("unknown role must not be valid")
	}
}
