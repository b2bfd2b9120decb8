package chat

// Message é uma entrada do histórico de conversa ("user" ou "assistant").
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest é o corpo de POST /chat. O histórico completo vem em Messages;
// SystemPrompt/MaxTokens/Temperature sobrepõem o perfil do cliente quando
// presentes.
type ChatRequest struct {
	Messages     []Message `json:"messages"`
	ClientID     string    `json:"client_id"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	MaxTokens    int       `json:"max_tokens,omitempty"`
	Temperature  *float64  `json:"temperature,omitempty"`
}

type ChatResponse struct {
	Response   string `json:"response"`
	TokensUsed int    `json:"tokens_used"`
	Timestamp  string `json:"timestamp"`
}
