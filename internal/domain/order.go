package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderKind задаёт состав заказа: только товары, только услуги или смешанный.
type OrderKind string

const (
	OrderKindProduct OrderKind = "product"
	OrderKindService OrderKind = "service"
	OrderKindMixed   OrderKind = "mixed"
)

// Valid проверяет, что значение входит в закрытый набор типов заказа.
func (k OrderKind) Valid() bool {
	switch k {
	case OrderKindProduct, OrderKindService, OrderKindMixed:
		return true
	default:
		return false
	}
}

// OrderStatus описывает ось исполнения заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, работа по нему ещё не началась.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing — заказ взят в работу.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusCompleted — заказ исполнен; терминальный статус.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCancelled — заказ отменён; терминальный статус.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus описывает ось оплаты заказа, независимую от исполнения.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Таблицы допустимых переходов. Терминальные статусы переходов не имеют.
var (
	orderStatusTransitions = map[OrderStatus][]OrderStatus{
		OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
		OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
		OrderStatusCompleted:  nil,
		OrderStatusCancelled:  nil,
	}

	paymentStatusTransitions = map[PaymentStatus][]PaymentStatus{
		PaymentStatusPending:  {PaymentStatusPaid},
		PaymentStatusPaid:     {PaymentStatusRefunded},
		PaymentStatusRefunded: nil,
	}
)

// Valid проверяет, что значение входит в закрытый набор статусов исполнения.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusTransitions[s]
	return ok
}

// Terminal сообщает, является ли статус терминальным.
func (s OrderStatus) Terminal() bool {
	next, ok := orderStatusTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo проверяет переход по таблице допустимых переходов.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid проверяет, что значение входит в закрытый набор статусов оплаты.
func (s PaymentStatus) Valid() bool {
	_, ok := paymentStatusTransitions[s]
	return ok
}

// Terminal сообщает, является ли статус оплаты терминальным.
func (s PaymentStatus) Terminal() bool {
	next, ok := paymentStatusTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo проверяет переход по таблице допустимых переходов оплаты.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order агрегирует состояние заказа. Total — производное поле: после
// любой мутации позиций оно равно сумме subtotal всех позиций заказа,
// округлённой до 2 знаков.
type Order struct {
	ID string
	// OwnerID — клиент, которому принадлежит заказ; пустая строка
	// означает анонимный заказ, оформленный на месте.
	OwnerID string
	Kind    OrderKind
	// Number — человекочитаемый уникальный номер; присваивается при
	// создании и больше не меняется.
	Number        string
	Total         decimal.Decimal
	Status        OrderStatus
	PaymentStatus PaymentStatus
	// AppointmentRef связывает заказ с записью на обслуживание во
	// внешней системе; пустая строка — связи нет.
	AppointmentRef string
	CreatedAt      time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if !o.Kind.Valid() {
		errs = append(errs, ErrOrderKindInvalid)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrOrderStatusInvalid)
	}
	if !o.PaymentStatus.Valid() {
		errs = append(errs, ErrPaymentStatusInvalid)
	}
	if o.Number == "" {
		errs = append(errs, ErrOrderNumberRequired)
	}
	if o.Total.IsNegative() {
		errs = append(errs, ErrTotalNegative)
	}

	return errs
}

// OrderPatch перечисляет изменяемые поля заказа; nil означает «поле не трогаем».
type OrderPatch struct {
	Status         *OrderStatus
	PaymentStatus  *PaymentStatus
	Total          *decimal.Decimal
	Kind           *OrderKind
	AppointmentRef *string
}

// Empty возвращает true, если патч не затрагивает ни одного поля.
func (p OrderPatch) Empty() bool {
	return p.Status == nil &&
		p.PaymentStatus == nil &&
		p.Total == nil &&
		p.Kind == nil &&
		p.AppointmentRef == nil
}
