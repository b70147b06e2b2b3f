package http

import (
	"net/http"

	apierrors "tankreport/internal/errors"
)

// MetricsHandler exposes the Prometheus registry
type MetricsHandler struct {
	prometheus   http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler wraps the Prometheus handler; nil means metrics are off
func NewMetricsHandler(prometheus http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{prometheus: prometheus, errorHandler: errorHandler}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		h.errorHandler.HandleError(w, r, apierrors.New(http.StatusServiceUnavailable,
			"METRICS_DISABLED", "Metrics are disabled"))
		return
	}
	h.prometheus.ServeHTTP(w, r)
}
