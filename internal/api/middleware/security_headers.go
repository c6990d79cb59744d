package middleware

import "net/http"

// ContentSecurityPolicy allows the bundled client plus remote slide imagery.
const ContentSecurityPolicy = "default-src 'self'; " +
	"img-src 'self' data: blob: https:; " +
	"connect-src 'self' https:; " +
	"style-src 'self'; " +
	"script-src 'self'; " +
	"object-src 'none'; " +
	"base-uri 'none'; " +
	"frame-ancestors 'none'"

// SecurityHeaders sets browser hardening headers on every response. HSTS is
// only sent over TLS, as seen directly or through a proxy.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("Content-Security-Policy", ContentSecurityPolicy)
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}
