package security

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"
)

const (
	corsAllowMethods = "POST, GET, OPTIONS"
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
)

type CORSConfig struct {
	AllowedOrigins []string
	DefaultOrigin  string
}

// ResolveOrigin reflects the request origin when it is on the allow-list
// and falls back to the default origin otherwise. Never empty, so every
// response carries a concrete Allow-Origin value.
func (c *CORSConfig) ResolveOrigin(requestOrigin string) string {
	for _, origin := range c.AllowedOrigins {
		if origin == requestOrigin {
			return requestOrigin
		}
	}
	return c.DefaultOrigin
}

// ApplyCORSHeaders writes the shared CORS header set onto a response.
func ApplyCORSHeaders(w http.ResponseWriter, cfg *CORSConfig, requestOrigin string) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", cfg.ResolveOrigin(requestOrigin))
	h.Add("Vary", "Origin")
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
	h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
}

// CORSMiddleware applies CORS headers to every matched route and
// short-circuits preflight requests with 204.
func CORSMiddleware(cfg *CORSConfig) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ApplyCORSHeaders(e.Response, cfg, e.Request.Header.Get("Origin"))

		if e.Request.Method == http.MethodOptions {
			return e.NoContent(http.StatusNoContent)
		}

		return e.Next()
	}
}

// PreflightHandler answers OPTIONS requests for routes that only register
// concrete methods.
func PreflightHandler(cfg *CORSConfig) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ApplyCORSHeaders(e.Response, cfg, e.Request.Header.Get("Origin"))
		return e.NoContent(http.StatusNoContent)
	}
}
