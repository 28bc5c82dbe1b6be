package pricing

import "time"

// Config holds configuration for the pricing cache
type Config struct {
	// Name is used for logging purposes to identify the cache (required)
	Name string `mapstructure:"name"`
	// RefreshInterval is the interval between periodic refreshes
	// default: 1 * time.Hour
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	// FetchTimeout bounds each upstream fetch so a hung upstream cannot
	// stall the refresh loop
	// default: 10 * time.Second
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// DefaultConfig returns the default configuration for the pricing cache
// Note: Name field has no default value and must be explicitly set by the user
func DefaultConfig() *Config {
	return &Config{
		// Name is required and must be explicitly set
		RefreshInterval: 1 * time.Hour,
		FetchTimeout:    10 * time.Second,
	}
}

// MergeDefaults fills zero-valued fields from the defaults and returns the
// merged configuration
func (c *Config) MergeDefaults() *Config {
	defaults := DefaultConfig()
	if c.RefreshInterval == 0 {
		c.RefreshInterval = defaults.RefreshInterval
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = defaults.FetchTimeout
	}
	return c
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Name == "" {
		return ErrInvalidName(c.Name)
	}
	if c.RefreshInterval <= 0 {
		return ErrInvalidRefreshInterval(c.RefreshInterval)
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout(c.FetchTimeout)
	}
	return nil
}
