package application

import (
	"crypto/subtle"
	"strings"

	"chatbot-gateway/middleware/admission/domain"
)

const bearerScheme = "Bearer"

// AuthService verifica a credencial estática (segredo compartilhado) enviada
// no header Authorization.
//
// O segredo é carregado uma vez no startup e tratado como imutável. Um segredo
// vazio nunca vira bypass: toda verificação passa a negar.
type AuthService struct {
	Secret string
}

// Verify decide se o valor bruto do header Authorization corresponde ao
// segredo configurado. A comparação é byte a byte e em tempo constante.
//
// Formato esperado: "Bearer <token>". Sem efeitos colaterais; logging, se
// desejado, pertence à camada HTTP.
func (s AuthService) Verify(header string) domain.AuthDecision {
	if header == "" {
		return domain.AuthDecision{Reason: domain.AuthMissing}
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != bearerScheme {
		return domain.AuthDecision{Reason: domain.AuthMalformed}
	}

	if s.Secret == "" {
		return domain.AuthDecision{Reason: domain.AuthInvalid}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.Secret)) != 1 {
		return domain.AuthDecision{Reason: domain.AuthInvalid}
	}
	return domain.AuthDecision{Allowed: true, Reason: domain.AuthOK}
}
