package analytics

import "time"

// Config is the configuration for the analytics sink
type Config struct {
	// Hosts are the ClickHouse servers (required)
	Hosts []string `mapstructure:"hosts"`
	// Database is the ClickHouse database
	// default: "default"
	Database string `mapstructure:"database"`
	// Username for authentication (required)
	Username string `mapstructure:"username"`
	// Password for authentication (required)
	Password string `mapstructure:"password"`
	// DialTimeout bounds the initial connection
	// default: 10 * time.Second
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	// Debug enables driver debug logging
	Debug bool `mapstructure:"debug"`

	// Table is the destination table
	// default: "billing_checkout_events"
	Table string `mapstructure:"table"`
	// FlushInterval is how often buffered rows are flushed regardless of
	// batch size
	// default: 10 * time.Second
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	// FlushSize triggers an immediate flush when the batch reaches it
	// default: 1000
	FlushSize int `mapstructure:"flush_size"`
	// InsertTimeout bounds each batch insert
	// default: 30 * time.Second
	InsertTimeout time.Duration `mapstructure:"insert_timeout"`
}

// DefaultConfig returns the default sink configuration
func DefaultConfig() *Config {
	return &Config{
		Database:      "default",
		DialTimeout:   10 * time.Second,
		Table:         "billing_checkout_events",
		FlushInterval: 10 * time.Second,
		FlushSize:     1000,
		InsertTimeout: 30 * time.Second,
	}
}

// MergeDefaults fills zero-valued fields from the defaults and returns the
// merged configuration
func (c *Config) MergeDefaults() *Config {
	defaults := DefaultConfig()
	if c.Database == "" {
		c.Database = defaults.Database
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = defaults.DialTimeout
	}
	if c.Table == "" {
		c.Table = defaults.Table
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = defaults.FlushInterval
	}
	if c.FlushSize == 0 {
		c.FlushSize = defaults.FlushSize
	}
	if c.InsertTimeout == 0 {
		c.InsertTimeout = defaults.InsertTimeout
	}
	return c
}

// Validate validates the sink configuration
func (c *Config) Validate() error {
	if len(c.Hosts) == 0 {
		return ErrInvalidConfig("hosts are required")
	}
	if c.Username == "" {
		return ErrInvalidConfig("username is required")
	}
	if c.Password == "" {
		return ErrInvalidConfig("password is required")
	}
	if c.FlushInterval <= 0 {
		return ErrInvalidConfig("flush_interval must be greater than 0")
	}
	if c.FlushSize <= 0 {
		return ErrInvalidConfig("flush_size must be greater than 0")
	}
	return nil
}
