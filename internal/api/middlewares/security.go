package middlewares

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/unrolled/secure"
)

// The swagger UI needs inline scripts and styles, the JSON API needs nothing.
const (
	apiContentSecurityPolicy     = `default-src 'none'; frame-ancestors 'none'; base-uri 'none';`
	swaggerContentSecurityPolicy = `default-src 'self'; script-src 'self' 'unsafe-inline'; ` +
		`style-src 'self' 'unsafe-inline'; img-src 'self' data:; object-src 'none'; ` +
		`frame-ancestors 'self'; form-action 'self'; base-uri 'self';`
)

func newSecure(contentSecurityPolicy string) *secure.Secure {
	return secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: contentSecurityPolicy,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	})
}

// SecurityHeadersMiddleware sets various security headers using the unrolled/secure package
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	apiSecure := newSecure(apiContentSecurityPolicy)
	swaggerSecure := newSecure(swaggerContentSecurityPolicy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sec := apiSecure
			if strings.HasPrefix(r.URL.Path, "/swagger/") {
				sec = swaggerSecure
			}
			if err := sec.Process(w, r); err != nil {
				log.Ctx(r.Context()).Error().Err(err).Msg("error while applying security headers")
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
