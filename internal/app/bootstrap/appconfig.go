// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). Framework-level settings such
// as ports, TLS and logging live in WAFFLE's CoreConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Request timeouts for MongoDB work inside handlers
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration

	// WidgetRateLimit caps widget renders per client IP per minute; 0 disables.
	WidgetRateLimit int

	// DefaultWidget is seeded into the widgets collection at startup when no
	// widget with its key exists. Empty Key disables seeding.
	DefaultWidget DefaultWidgetConfig
}

// DefaultWidgetConfig mirrors the block settings of one widget.
type DefaultWidgetConfig struct {
	Key              string
	Title            string
	Subtitle         string
	MetricCategories string // "metricGuid|categoryGuid,..."
	Entity           string // "entityTypeGuid|entityId"
	RoundValues      bool
	Template         string // blank means the built-in Lava template
	EnableDebug      bool
}
