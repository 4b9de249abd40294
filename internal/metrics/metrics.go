// Package metrics declares the Prometheus collectors for entity storage,
// completion calls and generation flows.
package metrics

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Entity store calls by kind and operation (create, update, filter, bulk_create, get)
	EntityOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerpilot_entity_operations_total",
			Help: "Total number of entity store operations",
		},
		[]string{"kind", "op", "result"},
	)

	CompletionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerpilot_completion_requests_total",
			Help: "Total number of completion requests per provider",
		},
		[]string{"provider", "result"},
	)

	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "careerpilot_completion_duration_seconds",
			Help:    "Time spent waiting for completion providers",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
		},
		[]string{"provider"},
	)

	Generations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerpilot_generation_total",
			Help: "Total number of generation flows by outcome",
		},
		[]string{"flow", "result"},
	)

	// Page controller phase changes (loading, ready, generating)
	PageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerpilot_page_transitions_total",
			Help: "Total number of page controller phase transitions",
		},
		[]string{"page", "phase"},
	)
)

// Result maps an error onto a low-cardinality label value.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrValidation):
		return "validation"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrAuthentication):
		return "unauthenticated"
	case errors.Is(err, apperrors.ErrConflict):
		return "conflict"
	case errors.Is(err, apperrors.ErrTransport):
		return "transport"
	default:
		return "error"
	}
}

// Handler exposes the default registry on a Fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
