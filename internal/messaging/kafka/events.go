package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// EventType определяет тип события жизненного цикла заказа.
type EventType string

const (
	EventTypeOrderCreated           EventType = "order.created"
	EventTypeOrderStatusChanged     EventType = "order.status_changed"
	EventTypeOrderPaymentChanged    EventType = "order.payment_changed"
	EventTypeOrderDeleted           EventType = "order.deleted"
	EventTypeOrderTotalRecalculated EventType = "order.total_recalculated"
)

// Topics для Kafka.
const (
	// TopicOrderEvents — исходящие события жизненного цикла заказов.
	TopicOrderEvents = "orders.order.events"
	// TopicPaymentCallbacks — входящие callback-события платёжного провайдера.
	TopicPaymentCallbacks = "payments.callback.events"
	// TopicDeadLetterQueue — сообщения, не обработанные после всех retry.
	TopicDeadLetterQueue = "orders.dlq"
)

// Kafka headers для retry логики.
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// OrderEvent представляет событие заказа.
type OrderEvent struct {
	EventType     EventType `json:"event_type"`
	OrderID       string    `json:"order_id"`
	OwnerID       string    `json:"owner_id,omitempty"`
	Number        string    `json:"number"`
	Status        string    `json:"status,omitempty"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	Total         string    `json:"total,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// PaymentCallbackEvent — событие от платёжного провайдера о смене статуса оплаты.
type PaymentCallbackEvent struct {
	OrderID       string    `json:"order_id"`
	PaymentStatus string    `json:"payment_status"`
	Provider      string    `json:"provider,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// ParsePaymentCallback парсит PaymentCallbackEvent из сообщения.
func ParsePaymentCallback(message *sarama.ConsumerMessage) (*PaymentCallbackEvent, error) {
	var event PaymentCallbackEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment callback: %w", err)
	}
	if event.OrderID == "" {
		return nil, fmt.Errorf("payment callback has empty order_id")
	}
	return &event, nil
}
