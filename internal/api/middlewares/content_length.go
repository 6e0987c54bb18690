package middlewares

import (
	"net/http"

	"github.com/sameicp/assignment-monitor/internal/config"
)

// ContentLengthMiddleware rejects write requests whose declared body exceeds
// server.max-content-length and caps the bytes actually read.
func ContentLengthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	maxLength := cfg.Server.MaxContentLength
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut {
				if r.ContentLength > maxLength {
					http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, maxLength)
			}
			next.ServeHTTP(w, r)
		})
	}
}
