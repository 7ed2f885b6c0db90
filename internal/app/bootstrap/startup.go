// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"strings"

	widgetstore "github.com/dalemusser/stratametrics/internal/app/store/widgets"
	"github.com/dalemusser/stratametrics/internal/app/system/lava"
	"github.com/dalemusser/stratametrics/internal/app/system/timeouts"
	"github.com/dalemusser/stratametrics/internal/app/system/widgetconfig"
	"github.com/dalemusser/stratametrics/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs after DB connections and schema setup, before the HTTP
// handler is built. It applies the configured timeouts and seeds the
// default widget.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
	})
	logger.Info("handler timeouts configured", zap.Any("timeouts", timeouts.Current()))

	return ensureDefaultWidget(ctx, deps, appCfg.DefaultWidget, logger)
}

// ensureDefaultWidget stores the configured widget unless one with the same
// key already exists. Stored widgets are never overwritten from config.
func ensureDefaultWidget(ctx context.Context, deps DBDeps, cfg DefaultWidgetConfig, logger *zap.Logger) error {
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		logger.Info("default widget seeding disabled")
		return nil
	}

	tmpl := cfg.Template
	if strings.TrimSpace(tmpl) == "" {
		tmpl = lava.DefaultTemplate
	}

	if cfg.Entity != "" && widgetconfig.ParseEntitySetting(cfg.Entity) == nil {
		logger.Warn("default widget entity setting is malformed and will be ignored",
			zap.String("entity", cfg.Entity))
	}
	if cfg.MetricCategories == "" {
		logger.Warn("default widget has no metrics; it will render the metric selection warning",
			zap.String("key", key))
	}

	seedCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), logger, "seed default widget")
	defer cancel()

	created, err := widgetstore.New(deps.MongoDatabase).EnsureDefault(seedCtx, models.Widget{
		Key:              key,
		Title:            cfg.Title,
		Subtitle:         cfg.Subtitle,
		MetricCategories: cfg.MetricCategories,
		Entity:           cfg.Entity,
		RoundValues:      cfg.RoundValues,
		LiquidTemplate:   tmpl,
		EnableDebug:      cfg.EnableDebug,
	})
	if err != nil {
		logger.Error("seed default widget failed", zap.String("key", key), zap.Error(err))
		return err
	}
	if created {
		logger.Info("default widget created", zap.String("key", key))
	}
	return nil
}
