package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apiContext "hookd/internal/api/context"
	"hookd/internal/api/handlers"
	"hookd/internal/api/middleware"
)

type Dependencies struct {
	DispatchHandler     *handlers.DispatchHandler
	SubscriptionHandler *handlers.SubscriptionHandler
	DeliveryLogHandler  *handlers.DeliveryLogHandler
	APIKeyHandler       *handlers.APIKeyHandler
	HealthHandler       *handlers.HealthHandler
	APIKeyMiddleware    *middleware.APIKeyMiddleware
	ServiceAuth         *middleware.ServiceAuthMiddleware
	MetricsHandler      http.Handler
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	apiKey := deps.APIKeyMiddleware
	serviceAuth := deps.ServiceAuth

	// Internal dispatch endpoint, called by producer services only.
	router.POST("/internal/v1/dispatch",
		chain(deps.DispatchHandler.Dispatch, serviceAuth.Handle))

	// Webhook subscription management
	router.POST("/api/v1/webhooks",
		chain(deps.SubscriptionHandler.Create, apiKey.Handle))
	router.GET("/api/v1/webhooks",
		chain(deps.SubscriptionHandler.List, apiKey.Handle))
	router.GET("/api/v1/webhooks/:webhook_id",
		chain(deps.SubscriptionHandler.Get, apiKey.Handle))
	router.PATCH("/api/v1/webhooks/:webhook_id",
		chain(deps.SubscriptionHandler.Update, apiKey.Handle))
	router.DELETE("/api/v1/webhooks/:webhook_id",
		chain(deps.SubscriptionHandler.Delete, apiKey.Handle))

	// Delivery audit trail
	router.GET("/api/v1/webhooks/:webhook_id/deliveries",
		chain(deps.DeliveryLogHandler.ListByWebhook, apiKey.Handle))
	router.GET("/api/v1/deliveries/:delivery_id",
		chain(deps.DeliveryLogHandler.Get, apiKey.Handle))

	// API key management
	router.POST("/api/v1/keys",
		chain(deps.APIKeyHandler.Create, apiKey.Handle))
	router.GET("/api/v1/keys",
		chain(deps.APIKeyHandler.List, apiKey.Handle))
	router.DELETE("/api/v1/keys/:key_id",
		chain(deps.APIKeyHandler.Revoke, apiKey.Handle))

	router.GET("/healthz", wrap(deps.HealthHandler.Check))
	if deps.MetricsHandler != nil {
		router.Handler(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	return router
}

// NewMetricsHandler exposes the default promhttp handler; split out so main
// can keep registry wiring in one place.
func NewMetricsHandler() http.Handler {
	return promhttp.Handler()
}

func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// wrap converts http.HandlerFunc to httprouter.Handle, stashing the route
// params in the request context.
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
