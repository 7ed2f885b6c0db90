// internal/app/features/metricwidget/routes.go
package metricwidget

import "github.com/go-chi/chi/v5"

// Routes mounts the widget endpoints, typically under "/widgets".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{key}", h.ServeWidget)
	r.Get("/{key}/html", h.ServeFragment)
	return r
}
