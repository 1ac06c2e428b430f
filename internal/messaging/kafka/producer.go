package kafka

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/IBM/sarama"

	"p2pbank/internal/logging"
)

// Producer wraps Sarama's async producer. Publish never blocks the caller:
// when the input queue is full or after Close it drops the message rather
// than stall a handler, matching spec.md §4.G's
// "emission is dropped silently" rule.
type Producer struct {
	producer sarama.AsyncProducer

	errorCount   atomic.Int64
	droppedCount atomic.Int64

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewProducer(cfg *Config) (*Producer, error) {
	saramaCfg, err := cfg.ToSaramaConfig()
	if err != nil {
		return nil, fmt.Errorf("build sarama config: %w", err)
	}

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("create async producer: %w", err)
	}

	p := &Producer{
		producer: producer,
		done:     make(chan struct{}),
	}
	go p.monitorErrors()

	return p, nil
}

// Publish serializes event to JSON and enqueues it on topic under key,
// dropping it if the producer is closed or its input queue is saturated.
func (p *Producer) Publish(topic, key string, event any) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		p.droppedCount.Add(1)
		return fmt.Errorf("producer closed")
	}
	p.mu.RUnlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}

	select {
	case p.producer.Input() <- msg:
		return nil
	default:
		p.droppedCount.Add(1)
		logging.Warn("kafka publish dropped: queue full", map[string]interface{}{"topic": topic, "key": key})
		return fmt.Errorf("producer queue full")
	case <-p.done:
		p.droppedCount.Add(1)
		return fmt.Errorf("producer shutting down")
	}
}

func (p *Producer) monitorErrors() {
	for {
		select {
		case err, ok := <-p.producer.Errors():
			if !ok {
				return
			}
			p.errorCount.Add(1)
			logging.Error("kafka publish failed", err.Err, map[string]interface{}{"topic": err.Msg.Topic})
		case <-p.done:
			return
		}
	}
}

func (p *Producer) IsHealthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.closed
}

func (p *Producer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	p.mu.Unlock()

	return p.producer.Close()
}
