package domain

// AuthReason classifica o resultado da verificação de credencial.
//
// As três falhas são distintas e reportáveis (header ausente, formato errado,
// token incorreto), mas todas levam ao mesmo desfecho observável: a requisição
// é rejeitada antes de alcançar a lógica protegida.
type AuthReason int

const (
	AuthOK AuthReason = iota
	// AuthMissing: header Authorization ausente.
	AuthMissing
	// AuthMalformed: header presente, mas sem o esquema "Bearer <token>".
	AuthMalformed
	// AuthInvalid: token presente, porém diferente do segredo configurado.
	AuthInvalid
)

func (r AuthReason) String() string {
	switch r {
	case AuthOK:
		return "ok"
	case AuthMissing:
		return "missing"
	case AuthMalformed:
		return "malformed"
	case AuthInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

type AuthDecision struct {
	Allowed bool
	Reason  AuthReason
}
