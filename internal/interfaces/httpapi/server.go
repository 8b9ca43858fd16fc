package httpapi

import (
	"net/http"
	"runtime/debug"

	"github.com/riskibarqy/player-scout/internal/platform/id"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
)

type RouterConfig struct {
	CORSAllowedOrigins []string
	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
	// MCP is mounted at MCPPath when non-nil.
	MCP        http.Handler
	MCPPath    string
	RequestIDs id.Generator
}

func NewRouter(handler *Handler, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("http")

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.Metrics)
	registerChatRoutes(mux, handler)
	registerProfileRoutes(mux, handler)
	registerMCPRoute(mux, cfg.MCPPath, cfg.MCP)

	return RequestTracing(RequestID(cfg.RequestIDs, RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux)))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "stack", string(debug.Stack()))
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
