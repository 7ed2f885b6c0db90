// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"sync"
	"time"

	healthfeature "github.com/dalemusser/stratametrics/internal/app/features/health"
	metricwidgetfeature "github.com/dalemusser/stratametrics/internal/app/features/metricwidget"
	"github.com/dalemusser/stratametrics/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// widgetLimiter is the limiter installed by BuildHandler. Shutdown closes it.
var (
	limiterMu     sync.Mutex
	widgetLimiter *ratelimit.Limiter
)

func setWidgetLimiter(l *ratelimit.Limiter) {
	limiterMu.Lock()
	defer limiterMu.Unlock()
	if widgetLimiter != nil {
		widgetLimiter.Close()
	}
	widgetLimiter = l
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Dev mode enables template reloading.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	r := chi.NewRouter()

	healthHandler := healthfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	var limiter *ratelimit.Limiter
	if appCfg.WidgetRateLimit > 0 {
		limiter = ratelimit.New(appCfg.WidgetRateLimit, time.Minute)
	}
	setWidgetLimiter(limiter)

	widgetHandler := metricwidgetfeature.NewHandler(deps.MongoDatabase, logger)
	r.Group(func(wr chi.Router) {
		wr.Use(ratelimit.Middleware(limiter, logger))
		wr.Mount("/widgets", metricwidgetfeature.Routes(widgetHandler))
	})

	return r, nil
}
