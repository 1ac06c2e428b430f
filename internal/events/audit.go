package events

import (
	"p2pbank/internal/idempotency"
	"p2pbank/internal/messaging/kafka"
)

// auditRecord is what actually lands on a Kafka topic: the event plus a
// dedup key a downstream consumer can use to ignore a redelivery.
type auditRecord struct {
	Event          Event  `json:"event"`
	IdempotencyKey string `json:"idempotency_key"`
}

func topicFor(t Type) (string, bool) {
	switch t {
	case TypeAccount:
		return kafka.TopicAccount, true
	case TypeTransaction:
		return kafka.TopicTransaction, true
	case TypeProxy:
		return kafka.TopicProxy, true
	default:
		return "", false
	}
}

// KafkaAuditPublisher forwards ACCOUNT/TRANSACTION/PROXY events to their
// Kafka topic. Other event types are not durable audit material and are
// ignored here (they still reach the dashboard via the Broker).
type KafkaAuditPublisher struct {
	producer *kafka.Producer
}

func NewKafkaAuditPublisher(producer *kafka.Producer) *KafkaAuditPublisher {
	return &KafkaAuditPublisher{producer: producer}
}

func (k *KafkaAuditPublisher) Publish(e Event) {
	topic, ok := topicFor(e.Type)
	if !ok {
		return
	}
	key := idempotency.Key(string(e.Type), e.Content, 0, e.Timestamp)
	_ = k.producer.Publish(topic, key, auditRecord{Event: e, IdempotencyKey: key})
}

func (k *KafkaAuditPublisher) Close() error {
	return k.producer.Close()
}

// NoOpAuditPublisher discards every event; used when Kafka is disabled so
// the node can still run without a broker cluster.
type NoOpAuditPublisher struct{}

func (NoOpAuditPublisher) Publish(Event) {}

// Fanout combines the dashboard broker with a durable audit sink. Both legs
// are themselves non-blocking, so Publish never waits on either.
type Fanout struct {
	Broker *Broker
	Audit  Publisher
}

func (f *Fanout) Publish(e Event) {
	f.Broker.Publish(e)
	if f.Audit != nil {
		f.Audit.Publish(e)
	}
}
