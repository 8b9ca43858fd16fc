package httpapi

import (
	"net/http"
	"strings"
)

const defaultMCPPath = "/mcp"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metrics http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metrics == nil {
		return
	}

	mux.Handle("GET /metrics", metrics)
}

func registerChatRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/messages", handler.HandleMessage)
	mux.HandleFunc("GET /v1/sessions/{userID}", handler.GetSessionStatus)
	mux.HandleFunc("DELETE /v1/sessions/{userID}", handler.ResetSession)
}

func registerProfileRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/profiles", handler.AggregateProfile)
}

// registerMCPRoute mounts the streamable MCP endpoint; it serves GET, POST and DELETE
// on one path.
func registerMCPRoute(mux *http.ServeMux, path string, mcp http.Handler) {
	if mcp == nil {
		return
	}
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultMCPPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	mux.Handle(path, mcp)
}
