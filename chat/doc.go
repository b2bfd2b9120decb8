// Package chat implementa a façade do chatbot: schema das mensagens, registro
// de clientes (tenants) com system prompt e orçamento de tokens próprios,
// handlers HTTP e o client do provedor de modelo (Anthropic Messages API).
//
// O histórico de conversa vem do chamador a cada requisição; nada é persistido.
// A camada de admissão (middleware/admission) roda antes destes handlers.
package chat
