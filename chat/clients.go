package chat

import "sort"

// ClientConfig é o perfil de um cliente (tenant): nome, system prompt e
// orçamento de tokens. Em produção isso viria de um banco; aqui é estático.
type ClientConfig struct {
	Name         string `json:"name"`
	SystemPrompt string `json:"system_prompt"`
	MaxTokens    int    `json:"max_tokens"`
}

// Registry mapeia client_id -> perfil. Imutável após a construção, então pode
// ser lido concorrentemente sem lock.
type Registry struct {
	configs map[string]ClientConfig
}

func NewRegistry(configs map[string]ClientConfig) *Registry {
	own := make(map[string]ClientConfig, len(configs))
	for id, cfg := range configs {
		own[id] = cfg
	}
	return &Registry{configs: own}
}

// DefaultRegistry retorna os perfis de demonstração.
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]ClientConfig{
		"demo": {
			Name:         "Demo Client",
			SystemPrompt: "Eres un asistente amigable y profesional. Respondes de forma concisa y útil.",
			MaxTokens:    1024,
		},
		"ecommerce": {
			Name:         "E-commerce Assistant",
			SystemPrompt: "Eres un asistente de tienda online. Ayudas con productos, pedidos y devoluciones. Siempre eres cortés y orientado a ventas.",
			MaxTokens:    800,
		},
		"soporte": {
			Name:         "Tech Support Bot",
			SystemPrompt: "Eres un asistente técnico. Respondes preguntas sobre software y troubleshooting. Eres paciente y detallado.",
			MaxTokens:    1500,
		},
	})
}

func (r *Registry) Get(id string) (ClientConfig, bool) {
	cfg, ok := r.configs[id]
	return cfg, ok
}

// IDs retorna os client_ids em ordem estável.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.configs))
	for id := range r.configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) All() map[string]ClientConfig {
	out := make(map[string]ClientConfig, len(r.configs))
	for id, cfg := range r.configs {
		out[id] = cfg
	}
	return out
}
