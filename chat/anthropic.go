package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	messagesPath     = "/v1/messages"
	anthropicVersion = "2023-06-01"

	// DefaultModel é o modelo usado quando MODEL não é configurado.
	DefaultModel = "claude-sonnet-4-5-20250929"
)

// ErrEmptyCompletion indica resposta 200 sem nenhum bloco de texto.
var ErrEmptyCompletion = errors.New("upstream returned an empty completion")

// CompletionRequest é o que a façade envia ao provedor: prompt de sistema,
// histórico e parâmetros de geração já resolvidos (perfil + overrides).
type CompletionRequest struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature *float64
}

type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Completer abstrai o provedor de modelo para os handlers (e seus testes).
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// AnthropicClient chama a Messages API. O limiter opcional (token bucket)
// ritma as chamadas de saída para não estourar a cota do provedor.
type AnthropicClient struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
	limiter *rate.Limiter
}

type ClientOption func(*AnthropicClient)

func WithBaseURL(u string) ClientOption {
	return func(c *AnthropicClient) { c.baseURL = u }
}

func WithModel(m string) ClientOption {
	return func(c *AnthropicClient) { c.model = m }
}

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *AnthropicClient) { c.httpc = h }
}

// WithUpstreamLimit ritma as chamadas de saída em `rps` com rajada `burst`.
func WithUpstreamLimit(rps float64, burst int) ClientOption {
	return func(c *AnthropicClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

func NewAnthropicClient(apiKey string, opts ...ClientOption) *AnthropicClient {
	c := &AnthropicClient{
		apiKey:  apiKey,
		model:   DefaultModel,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type anthropicMessagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
}

type anthropicMessagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete implementa Completer contra a Messages API.
func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("upstream pacing: %w", err)
		}
	}

	payload, err := json.Marshal(anthropicMessagesRequest{
		Model:       c.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.System,
		Messages:    req.Messages,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call anthropic api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// corpo limitado só para diagnóstico; não propagamos para o cliente final
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("anthropic api status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var out anthropicMessagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	text := ""
	for _, block := range out.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, ErrEmptyCompletion
	}

	return &Completion{
		Text:         text,
		InputTokens:  out.Usage.InputTokens,
		OutputTokens: out.Usage.OutputTokens,
	}, nil
}
