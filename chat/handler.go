package chat

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"chatbot-gateway/middleware/admission"
)

const apiVersion = "1.0.0"

// defaultTemperature é enviada ao provedor quando o request não traz uma.
const defaultTemperature = 0.7

// Handler agrupa as rotas da façade. Registry e Completer são injetados pelo
// composition root; o handler não carrega estado próprio.
type Handler struct {
	clients  *Registry
	upstream Completer
	now      func() time.Time
}

func NewHandler(clients *Registry, upstream Completer) *Handler {
	return &Handler{clients: clients, upstream: upstream, now: time.Now}
}

// Root responde o status da API (rota pública).
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "AI Chatbot API - ativa",
		"version": apiVersion,
		"clients": "/clients",
		"health":  "/health",
	})
}

// Health é o health check (rota pública).
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": h.now().Format(time.RFC3339),
	})
}

// ListClients lista os perfis configurados (rota pública).
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"clients": h.clients.IDs(),
		"configs": h.clients.All(),
	})
}

// Chat é o endpoint principal (rota protegida). O contexto vem todo do corpo;
// nada fica guardado entre requisições.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respond(w, r, req)
}

// SimpleChat envia uma mensagem única sem histórico (rota protegida).
// Parâmetros via query: message (obrigatório) e client_id (padrão "demo").
func (h *Handler) SimpleChat(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("message")
	if message == "" {
		writeError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = "demo"
	}

	h.respond(w, r, ChatRequest{
		Messages: []Message{{Role: "user", Content: message}},
		ClientID: clientID,
	})
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, req ChatRequest) {
	if req.ClientID == "" {
		writeError(w, http.StatusBadRequest, "client_id is required")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}

	cfg, ok := h.clients.Get(req.ClientID)
	if !ok {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("client %q not found: use /clients to list the available ones", req.ClientID))
		return
	}

	system := cfg.SystemPrompt
	if req.SystemPrompt != "" {
		system = req.SystemPrompt
	}
	maxTokens := cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	temperature := req.Temperature
	if temperature == nil {
		t := defaultTemperature
		temperature = &t
	}

	completion, err := h.upstream.Complete(r.Context(), CompletionRequest{
		System:      system,
		Messages:    req.Messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		log.Printf("upstream error (request %s): %v", admission.GetRequestID(r.Context()), err)
		writeError(w, http.StatusBadGateway, "upstream model error")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Response:   completion.Text,
		TokensUsed: completion.InputTokens + completion.OutputTokens,
		Timestamp:  h.now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError segue o formato {"detail": ...} da API.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
