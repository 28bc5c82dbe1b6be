package db

import "testing"

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return (&Config{
			Host:     "localhost",
			User:     "billing",
			Password: "secret",
			Database: "billing",
		}).MergeDefaults()
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing host", func(c *Config) { c.Host = "" }, true},
		{"missing user", func(c *Config) { c.User = "" }, true},
		{"missing password", func(c *Config) { c.Password = "" }, true},
		{"missing database", func(c *Config) { c.Database = "" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "debug" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := (&Config{
		Host:     "db.internal",
		User:     "billing",
		Password: "secret",
		Database: "billing",
	}).MergeDefaults()

	want := "billing:secret@tcp(db.internal:3306)/billing?charset=utf8mb4&parseTime=True&loc=Local"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
