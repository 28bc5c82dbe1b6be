package stripe

// Config holds Stripe credentials and checkout redirect targets
type Config struct {
	// SecretKey is the API secret key (required)
	SecretKey string `mapstructure:"secret_key"`
	// WebhookSecret is the webhook endpoint signing secret (required)
	WebhookSecret string `mapstructure:"webhook_secret"`
	// SuccessURL is where the customer lands after a completed checkout
	// default: "/checkout/success"
	SuccessURL string `mapstructure:"success_url"`
	// CancelURL is where the customer lands after abandoning a checkout
	// default: "/checkout/cancel"
	CancelURL string `mapstructure:"cancel_url"`
}

// DefaultConfig returns the default configuration
// Note: SecretKey and WebhookSecret have no defaults and must be set
func DefaultConfig() *Config {
	return &Config{
		SuccessURL: "/checkout/success",
		CancelURL:  "/checkout/cancel",
	}
}

// MergeDefaults fills zero-valued fields from the defaults and returns the
// merged configuration
func (c *Config) MergeDefaults() *Config {
	defaults := DefaultConfig()
	if c.SuccessURL == "" {
		c.SuccessURL = defaults.SuccessURL
	}
	if c.CancelURL == "" {
		c.CancelURL = defaults.CancelURL
	}
	return c
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrInvalidConfig("secret_key is required")
	}
	if c.WebhookSecret == "" {
		return ErrInvalidConfig("webhook_secret is required")
	}
	return nil
}
