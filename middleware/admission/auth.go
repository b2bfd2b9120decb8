package admission

import (
	"net/http"
	"time"

	"chatbot-gateway/middleware/admission/application"
	"chatbot-gateway/middleware/admission/domain"
)

type AuthOptions struct {
	Service      application.AuthService
	Stats        domain.StatsStore
	KeyFn        KeyFunc
	RejectStatus int
}

// mensagens por motivo; todas terminam em 401, mas o corpo diferencia a falha
// para o chamador (faltou header, formato errado, token incorreto).
func authMessage(reason domain.AuthReason) string {
	switch reason {
	case domain.AuthMissing:
		return "authorization header missing: use Bearer <token>"
	case domain.AuthMalformed:
		return "malformed authorization header: expected Bearer <token>"
	default:
		return "invalid or unauthorized token"
	}
}

// Auth protege rotas com a credencial estática. Rotas públicas simplesmente
// não recebem este middleware no wiring.
func Auth(opts AuthOptions) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusUnauthorized
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc("", false)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dec := opts.Service.Verify(r.Header.Get("Authorization"))

			if opts.Stats != nil && !dec.Allowed {
				_ = opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:     domain.Key(opts.KeyFn(r)),
					Allowed: false,
					Reason:  "auth_" + dec.Reason.String(),
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				})
			}
			if !dec.Allowed {
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, authMessage(dec.Reason), opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
