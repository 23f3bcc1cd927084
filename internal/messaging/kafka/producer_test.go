package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newMockedProducer(t *testing.T) (*Producer, *mocks.SyncProducer) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}
	return producer, mockProducer
}

func TestProducer_PublishOrderEvent(t *testing.T) {
	producer, mockProducer := newMockedProducer(t)

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var event OrderEvent
		if err := json.Unmarshal(value, &event); err != nil {
			return err
		}
		require.Equal(t, EventTypeOrderCreated, event.EventType)
		require.Equal(t, "order-1", event.OrderID)
		return nil
	})

	err := producer.PublishOrderEvent(&OrderEvent{
		EventType: EventTypeOrderCreated,
		OrderID:   "order-1",
		Number:    "ORD-AAA",
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, mockProducer.Close())
}

func TestProducer_PublishOrderEvent_Nil(t *testing.T) {
	producer, mockProducer := newMockedProducer(t)

	require.Error(t, producer.PublishOrderEvent(nil))
	require.NoError(t, mockProducer.Close())
}

func TestProducer_PublishEvent_BrokerError(t *testing.T) {
	producer, mockProducer := newMockedProducer(t)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.PublishEvent(TopicOrderEvents, "order-1", map[string]string{"k": "v"})
	require.Error(t, err)
	require.NoError(t, mockProducer.Close())
}
