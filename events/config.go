package events

import (
	"strings"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Config is the configuration for the checkout event publisher
type Config struct {
	// Brokers are the kafka cluster brokers (required)
	Brokers []string `mapstructure:"brokers"`

	// Topic is the topic checkout events are published to
	// default: "billing.checkout.completed"
	Topic string `mapstructure:"topic"`

	// ClientID identifies this producer in broker logs and metrics
	ClientID string `mapstructure:"client_id"`

	// Acks controls how many broker confirmations a publish waits for
	// ("all", "1" or "0")
	// default: "all"
	Acks string `mapstructure:"acks"`

	// Compression is the message compression codec
	// (none, gzip, snappy, lz4, zstd)
	// default: "none"
	Compression string `mapstructure:"compression"`

	// LingerMs is the batch wait time in milliseconds
	// default: 0 (send immediately)
	LingerMs int `mapstructure:"linger_ms"`

	// BatchSize is the maximum batch size in bytes
	// default: 100KB
	BatchSize int `mapstructure:"batch_size"`

	// SecurityProtocol, only PLAINTEXT is supported for now
	// default: "PLAINTEXT"
	SecurityProtocol string `mapstructure:"security_protocol"`

	// MaxRetries for the kafka producer
	// default: 3
	MaxRetries int `mapstructure:"max_retries"`
}

// DefaultConfig returns the default publisher configuration
func DefaultConfig() *Config {
	return &Config{
		Topic:            "billing.checkout.completed",
		Acks:             "all",
		Compression:      "none",
		LingerMs:         0,
		BatchSize:        100 * 1024, // 100KB
		SecurityProtocol: "PLAINTEXT",
		MaxRetries:       3,
	}
}

// MergeDefaults fills zero-valued fields from the defaults and returns the
// merged configuration
func (c *Config) MergeDefaults() *Config {
	defaults := DefaultConfig()
	if c.Topic == "" {
		c.Topic = defaults.Topic
	}
	if c.Acks == "" {
		c.Acks = defaults.Acks
	}
	if c.Compression == "" {
		c.Compression = defaults.Compression
	}
	if c.BatchSize == 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.SecurityProtocol == "" {
		c.SecurityProtocol = defaults.SecurityProtocol
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaults.MaxRetries
	}
	return c
}

// Validate validates the publisher configuration
func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return ErrInvalidConfig("brokers are required")
	}
	if c.Topic == "" {
		return ErrInvalidConfig("topic is required")
	}
	return nil
}

// BuildConfigMap converts the configuration to a kafka ConfigMap
func (c *Config) BuildConfigMap() *kafka.ConfigMap {
	configMap := &kafka.ConfigMap{
		"bootstrap.servers": strings.Join(c.Brokers, ","),
		"compression.type":  strings.ToLower(c.Compression),
		"acks":              strings.ToLower(c.Acks),
		"linger.ms":         c.LingerMs,
		"batch.size":        c.BatchSize,
		"retries":           c.MaxRetries,
		"security.protocol": c.SecurityProtocol,
	}

	if c.ClientID != "" {
		_ = configMap.SetKey("client.id", c.ClientID)
	}

	return configMap
}
