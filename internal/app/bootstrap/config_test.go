package bootstrap

import (
	"testing"
	"time"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "strata_metrics",
		MongoMaxPoolSize: 100,
		MongoMinPoolSize: 10,
		TimeoutPing:      2 * time.Second,
		TimeoutShort:     5 * time.Second,
		TimeoutMedium:    10 * time.Second,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", func(*AppConfig) {}, false},
		{"bad uri", func(c *AppConfig) { c.MongoURI = "http://example.com" }, true},
		{"empty database", func(c *AppConfig) { c.MongoDatabase = "" }, true},
		{"pool sizes inverted", func(c *AppConfig) { c.MongoMinPoolSize = 200 }, true},
		{"zero timeout", func(c *AppConfig) { c.TimeoutMedium = 0 }, true},
		{"negative rate limit", func(c *AppConfig) { c.WidgetRateLimit = -1 }, true},
		{"rate limit disabled", func(c *AppConfig) { c.WidgetRateLimit = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(nil, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
