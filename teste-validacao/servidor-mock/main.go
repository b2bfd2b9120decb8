package main

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Servidor de validação manual: finge ser a Messages API da Anthropic.
// Suba este servidor e aponte o gateway com ANTHROPIC_BASE_URL=http://localhost:9090.
func main() {
	http.HandleFunc("POST /v1/messages", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error": {"type": "invalid_request_error"}}`, http.StatusBadRequest)
			return
		}

		last := ""
		if n := len(req.Messages); n > 0 {
			last = req.Messages[n-1].Content
		}
		fmt.Printf("Log: completion pedida para model=%s, última mensagem: %q\n", req.Model, last)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": "Resposta de teste para: " + last},
			},
			"usage": map[string]int{"input_tokens": 10, "output_tokens": 8},
		})
	})

	fmt.Println("Mock da Messages API rodando em http://localhost:9090")
	if err := http.ListenAndServe(":9090", nil); err != nil {
		fmt.Printf("Erro ao subir o servidor: %s\n", err)
	}
}
