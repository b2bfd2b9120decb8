package admission

import (
	"net/http"
	"time"
)

type CORSOptions struct {
	// AllowedOrigin é o valor de Access-Control-Allow-Origin ("*" libera
	// qualquer frontend).
	AllowedOrigin string
	AllowMethods  string
	AllowHeaders  string
	MaxAge        time.Duration
}

// CORS libera chamadas de frontends no navegador. Preflights (OPTIONS) são
// respondidos aqui mesmo, sem descer para o resto da cadeia — o navegador não
// envia Authorization no preflight, então ele nunca passaria na autenticação.
func CORS(opts CORSOptions) func(next http.Handler) http.Handler {
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "*"
	}
	if opts.AllowMethods == "" {
		opts.AllowMethods = "GET, POST, OPTIONS"
	}
	if opts.AllowHeaders == "" {
		opts.AllowHeaders = "Authorization, Content-Type, X-Request-ID"
	}
	if opts.MaxAge == 0 {
		opts.MaxAge = 10 * time.Minute
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// sem Origin não é uma chamada de navegador; segue direto
			if r.Header.Get("Origin") == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", opts.AllowedOrigin)
			w.Header().Set("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", opts.AllowMethods)
				w.Header().Set("Access-Control-Allow-Headers", opts.AllowHeaders)
				w.Header().Set("Access-Control-Max-Age", formatSeconds(opts.MaxAge))
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
