package domain

import (
	"errors"
	"fmt"
)

// Базовые виды ошибок. Конкретные ошибки ниже оборачивают их через %w,
// поэтому вызывающий может проверять как вид (errors.Is(err, ErrValidation)),
// так и конкретный случай (errors.Is(err, ErrItemQuantityInvalid)).
var (
	// ErrValidation — некорректный ввод; вызывающий может исправить запрос и повторить.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound — запрошенная сущность или ссылка на неё не существует.
	ErrNotFound = errors.New("not found")
	// ErrAccessDenied — политика доступа запретила операцию.
	ErrAccessDenied = errors.New("access denied")
	// ErrStorage — сбой слоя хранения; деталь логируется, наружу не утекает.
	ErrStorage = errors.New("storage failure")
)

var (
	ErrOrderNotFound = fmt.Errorf("%w: order", ErrNotFound)
	ErrItemNotFound  = fmt.Errorf("%w: order item", ErrNotFound)
	ErrOwnerNotFound = fmt.Errorf("%w: order owner", ErrNotFound)

	ErrOrderKindInvalid     = fmt.Errorf("%w: order kind must be product, service or mixed", ErrValidation)
	ErrOrderStatusInvalid   = fmt.Errorf("%w: unknown order status", ErrValidation)
	ErrPaymentStatusInvalid = fmt.Errorf("%w: unknown payment status", ErrValidation)
	// ErrStatusTransition — запрошенный переход отсутствует в таблице переходов.
	ErrStatusTransition    = fmt.Errorf("%w: status transition is not allowed", ErrValidation)
	ErrOrderNumberRequired = fmt.Errorf("%w: order number is required", ErrValidation)
	ErrOwnerIDRequired     = fmt.Errorf("%w: owner id is required", ErrValidation)
	ErrTotalNegative       = fmt.Errorf("%w: total must be non-negative", ErrValidation)
	ErrEmptyPatch          = fmt.Errorf("%w: update patch has no mutable fields", ErrValidation)
	ErrInvalidBody         = fmt.Errorf("%w: request body is not valid json", ErrValidation)
	ErrAmountInvalid       = fmt.Errorf("%w: amount is not a valid decimal", ErrValidation)

	ErrOrderIDRequired         = fmt.Errorf("%w: order_id is required", ErrValidation)
	ErrItemKindInvalid         = fmt.Errorf("%w: item kind must be product or service", ErrValidation)
	ErrItemDescriptionRequired = fmt.Errorf("%w: item description is required", ErrValidation)
	ErrItemQuantityInvalid     = fmt.Errorf("%w: item quantity must be greater than zero", ErrValidation)
	ErrItemPriceInvalid        = fmt.Errorf("%w: item unit price must be greater than zero", ErrValidation)
	ErrSubtotalMismatch        = fmt.Errorf("%w: item subtotal does not equal quantity * unit_price", ErrValidation)

	// ErrOrderNumberConflict — нарушение уникальности номера на уровне БД.
	ErrOrderNumberConflict = fmt.Errorf("%w: order number already exists", ErrStorage)
)

// IsValidation проверяет, относится ли ошибка к виду ValidationError.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound проверяет, относится ли ошибка к виду NotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
