// Package kafka wraps the Sarama client for the node's asynchronous audit
// trail: every committed ACCOUNT/TRANSACTION/PROXY event additionally lands
// on a topic here, independent of (and never blocking) the synchronous
// client response.
package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

// Config holds Kafka producer configuration.
type Config struct {
	Brokers      []string
	ClientID     string
	MaxRetries   int
	RetryBackoff time.Duration
}

func DefaultConfig(brokers []string) *Config {
	return &Config{
		Brokers:      brokers,
		ClientID:     "p2pbank-node",
		MaxRetries:   5,
		RetryBackoff: 100 * time.Millisecond,
	}
}

// ToSaramaConfig converts to a Sarama configuration tuned for
// fire-and-forget delivery: no caller should ever wait on a produce.
func (c *Config) ToSaramaConfig() (*sarama.Config, error) {
	cfg := sarama.NewConfig()

	cfg.Producer.Return.Successes = false
	cfg.Producer.Return.Errors = true
	cfg.Producer.Retry.Max = c.MaxRetries
	cfg.Producer.Retry.Backoff = c.RetryBackoff
	cfg.Producer.RequiredAcks = sarama.NoResponse
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Flush.Frequency = 10 * time.Millisecond
	cfg.Producer.Flush.Messages = 1000
	cfg.Net.MaxOpenRequests = 10
	cfg.ChannelBufferSize = 50000
	cfg.ClientID = c.ClientID
	cfg.Version = sarama.V3_0_0_0

	return cfg, nil
}
