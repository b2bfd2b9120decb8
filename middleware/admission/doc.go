// Package admission fornece adapters HTTP (net/http) para a camada de admissão:
// rate limit por IP, autenticação Bearer e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, verificação de credencial,
//     acquire/timeout) sem net/http
//   - infra: implementações concretas (janela deslizante, semáforo, stats),
//     detalhes de infraestrutura
//   - admission (este pacote): middlewares HTTP + wiring/extração de chave +
//     tradução para status/headers
//
// Fluxo no gateway:
//
//  1. Extrai a chave do cliente (IP/header/XFF)
//  2. Chama a camada application para obter a decisão de rate limit
//  3. Se bloqueado, responde 429 (rate limit)
//  4. Em rotas protegidas, verifica o header Authorization; falha responde 401
//  5. Se permitido, chama o próximo handler (ex: façade do chat)
//
// Rotas públicas (status, health, listagem de clientes) não passam pelo
// middleware de autenticação; o rate limit cobre todas as rotas.
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o
// comportamento, como RATE_LIMIT, RATE_WINDOW, API_TOKEN e CONCURRENCY_MAX.
package admission
