// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/stratametrics/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for StrataMetrics.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, default_widget_key, etc.
//   - Environment variables: STRATAMETRICS_MONGO_URI, STRATAMETRICS_DEFAULT_WIDGET_KEY, etc.
//   - Command-line flags: --mongo_uri, --default_widget_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "strata_metrics", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	// Handler timeouts
	{Name: "timeout_ping", Default: "2s", Desc: "Timeout for health check pings"},
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document lookups"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for rendering one widget"},

	{Name: "widget_rate_limit", Default: 120, Desc: "Widget renders allowed per client IP per minute (0 disables)"},

	// Default widget, seeded at startup when missing
	{Name: "default_widget_key", Default: "last-week", Desc: "Key of the widget seeded at startup (blank disables seeding)"},
	{Name: "default_widget_title", Default: "Last Week's Data", Desc: "Title of the seeded widget"},
	{Name: "default_widget_subtitle", Default: "", Desc: "Subtitle of the seeded widget"},
	{Name: "default_widget_metric_categories", Default: "", Desc: "Metrics of the seeded widget as metricGuid|categoryGuid,..."},
	{Name: "default_widget_entity", Default: "", Desc: "Entity filter of the seeded widget as entityTypeGuid|entityId"},
	{Name: "default_widget_round_values", Default: false, Desc: "Round metric values to whole numbers"},
	{Name: "default_widget_template", Default: "", Desc: "Lava template of the seeded widget (blank uses the built-in template)"},
	{Name: "default_widget_enable_debug", Default: false, Desc: "Append the Lava merge fields to the widget output"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, STRATAMETRICS_* for app) and
// flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STRATAMETRICS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		TimeoutPing:   appValues.Duration("timeout_ping", timeouts.DefaultPing),
		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),

		WidgetRateLimit: appValues.Int("widget_rate_limit"),

		DefaultWidget: DefaultWidgetConfig{
			Key:              appValues.String("default_widget_key"),
			Title:            appValues.String("default_widget_title"),
			Subtitle:         appValues.String("default_widget_subtitle"),
			MetricCategories: appValues.String("default_widget_metric_categories"),
			Entity:           appValues.String("default_widget_entity"),
			RoundValues:      appValues.Bool("default_widget_round_values"),
			Template:         appValues.String("default_widget_template"),
			EnableDebug:      appValues.Bool("default_widget_enable_debug"),
		},
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI format is checked here to catch configuration errors
// before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}
	if appCfg.WidgetRateLimit < 0 {
		return fmt.Errorf("widget_rate_limit must not be negative, got %d", appCfg.WidgetRateLimit)
	}
	for name, d := range map[string]time.Duration{
		"timeout_ping":   appCfg.TimeoutPing,
		"timeout_short":  appCfg.TimeoutShort,
		"timeout_medium": appCfg.TimeoutMedium,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}
