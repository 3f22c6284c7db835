package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bitacora_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})

	// ReactionToggles counts reaction toggles by outcome.
	ReactionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bitacora_reaction_toggles_total",
		Help: "Total number of reaction toggles by outcome",
	}, []string{"outcome"})

	// ReactionConflicts counts toggles that lost the insert race and resolved to liked.
	ReactionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bitacora_reaction_conflicts_total",
		Help: "Total number of concurrent reaction inserts resolved by the unique constraint",
	})

	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the shared Fiber Prometheus collector. Repeated calls
// return the same instance so collectors are only registered once.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records request metrics, skipping the scrape endpoint itself.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return p.Middleware(c)
	}
}
