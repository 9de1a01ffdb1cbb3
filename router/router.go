package router

import (
	"einvoice-gateway/handler"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Deps carries everything the router mounts. A nil handler leaves its
// routes unregistered.
type Deps struct {
	Gateway  *handler.GatewayHandler
	Admin    *handler.AdminHandler
	Verifier handler.TokenVerifier
	Metrics  http.Handler
}

func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	if deps.Verifier != nil {
		api := http.NewServeMux()
		if g := deps.Gateway; g != nil {
			api.Handle("POST /api/tin/validate", handler.ErrorHandlingMiddleware(g.ValidateTIN))
			api.Handle("POST /api/documents", handler.ErrorHandlingMiddleware(g.SubmitDocuments))
			api.Handle("GET /api/documents/{uuid}", handler.ErrorHandlingMiddleware(g.GetDocumentStatus))
			api.Handle("PUT /api/documents/{uuid}/cancel", handler.ErrorHandlingMiddleware(g.CancelDocument))
		}
		if a := deps.Admin; a != nil {
			api.Handle("POST /api/token/refresh", handler.ErrorHandlingMiddleware(a.RefreshToken))
			api.Handle("DELETE /api/token", handler.ErrorHandlingMiddleware(a.ClearTokens))
			api.Handle("PUT /api/settings/environment", handler.ErrorHandlingMiddleware(a.UpdateEnvironment))
			api.Handle("GET /api/logs", handler.ErrorHandlingMiddleware(a.ListLogs))
			api.Handle("DELETE /api/logs", handler.ErrorHandlingMiddleware(a.ClearLogs))
		}
		mux.Handle("/api/", handler.AuthMiddleware(deps.Verifier)(api))
	}

	return handler.RequestLogger(mux)
}
