package bootstrap

import (
	"context"

	"bitacora/internal/config"
	"bitacora/internal/middleware"
	"bitacora/internal/observability"
)

// InitObservability points repository logging at the request-aware logger
// and starts tracing per cfg. The returned function flushes pending spans.
func InitObservability(cfg *config.Config, serviceName string) (func(context.Context) error, error) {
	observability.SetLogger(middleware.Logger)
	return observability.InitTracing(observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
}
