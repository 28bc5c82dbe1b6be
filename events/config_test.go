package events

import "testing"

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"valid", (&Config{Brokers: []string{"broker:9092"}}).MergeDefaults(), false},
		{"no brokers", (&Config{}).MergeDefaults(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_MergeDefaults(t *testing.T) {
	cfg := (&Config{Brokers: []string{"broker:9092"}}).MergeDefaults()
	if cfg.Topic != "billing.checkout.completed" {
		t.Errorf("Topic = %q, want default", cfg.Topic)
	}
	if cfg.Acks != "all" || cfg.BatchSize != 100*1024 || cfg.MaxRetries != 3 {
		t.Error("MergeDefaults failed")
	}
}

func TestConfig_BuildConfigMap(t *testing.T) {
	cfg := (&Config{Brokers: []string{"a:9092", "b:9092"}, ClientID: "billingkit"}).MergeDefaults()
	configMap := cfg.BuildConfigMap()

	if v, _ := configMap.Get("bootstrap.servers", ""); v != "a:9092,b:9092" {
		t.Errorf("bootstrap.servers = %v", v)
	}
	if v, _ := configMap.Get("client.id", ""); v != "billingkit" {
		t.Errorf("client.id = %v", v)
	}
}
