package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemKind различает товарные и сервисные позиции заказа.
type ItemKind string

const (
	ItemKindProduct ItemKind = "product"
	ItemKindService ItemKind = "service"
)

// Valid проверяет, что значение входит в закрытый набор типов позиций.
func (k ItemKind) Valid() bool {
	return k == ItemKindProduct || k == ItemKindService
}

// OrderItem представляет одну позицию заказа. Позиция не существует без
// родительского заказа; Subtotal хранится денормализованно и всегда
// равен Quantity * UnitPrice.
type OrderItem struct {
	ID      string
	OrderID string
	Kind    ItemKind
	// ProductRef/ServiceRef — ссылки во внешние каталоги; какая из них
	// значима, определяется Kind.
	ProductRef  string
	ServiceRef  string
	Description string
	Quantity    int32
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
	CreatedAt   time.Time
}

// ComputeSubtotal возвращает Quantity * UnitPrice.
func (i *OrderItem) ComputeSubtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}

// ValidateInvariants проверяет базовые инварианты позиции и возвращает список замечаний.
func (i *OrderItem) ValidateInvariants() []error {
	var errs []error

	if i.OrderID == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if !i.Kind.Valid() {
		errs = append(errs, ErrItemKindInvalid)
	}
	if i.Description == "" {
		errs = append(errs, ErrItemDescriptionRequired)
	}
	if i.Quantity <= 0 {
		errs = append(errs, ErrItemQuantityInvalid)
	}
	if !i.UnitPrice.IsPositive() {
		errs = append(errs, ErrItemPriceInvalid)
	}
	if !i.Subtotal.Equal(i.ComputeSubtotal()) {
		errs = append(errs, ErrSubtotalMismatch)
	}

	return errs
}

// OrderItemPatch перечисляет изменяемые поля позиции; nil означает «поле не трогаем».
// Subtotal пересчитывается сервисным слоем, если меняются Quantity или UnitPrice.
type OrderItemPatch struct {
	Quantity    *int32
	UnitPrice   *decimal.Decimal
	Description *string
	Subtotal    *decimal.Decimal
}

// Empty возвращает true, если патч не затрагивает ни одного поля,
// доступного внешнему вызывающему.
func (p OrderItemPatch) Empty() bool {
	return p.Quantity == nil && p.UnitPrice == nil && p.Description == nil
}
