package server

import (
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/wudi/texkit/observability"
)

// MetricsHandler adapts the Prometheus exposition handler to fasthttp.
func MetricsHandler(pm *observability.PrometheusMetrics) fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(pm.Handler())
}
