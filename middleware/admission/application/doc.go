// Package application contém os casos de uso (regras de aplicação) da camada
// de admissão: decisão de rate limit, verificação de credencial e limite de
// concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: RateLimitService.Decide(key) retorna uma Decision (allow/deny + retry-after);
// AuthService.Verify(header) retorna uma AuthDecision (allow/deny + motivo).
package application
