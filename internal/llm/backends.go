package llm

import (
	"context"
	"fmt"
	"net/http"
)

// ollamaBackend speaks POST /api/generate.
type ollamaBackend struct{}

type ollamaRequest struct {
	Model   string        `json:"model"`
	System  string        `json:"system,omitempty"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

func (ollamaBackend) call(ctx context.Context, hc *http.Client, cfg Config, req GenerateRequest, temp float64, maxTok int) (string, string, error) {
	body := ollamaRequest{
		Model:  cfg.Model,
		System: req.SystemPrompt,
		Prompt: req.UserPrompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: temp,
			NumPredict:  maxTok,
		},
	}
	var resp ollamaResponse
	if err := postJSON(ctx, hc, cfg.Endpoint+"/api/generate", "", body, &resp); err != nil {
		return "", "", err
	}
	return resp.Response, resp.Model, nil
}

func (ollamaBackend) probe(ctx context.Context, cfg Config) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodGet, cfg.Endpoint+"/api/tags", nil)
}

// chatBackend speaks the OpenAI-compatible POST /chat/completions.
type chatBackend struct{}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (chatBackend) call(ctx context.Context, hc *http.Client, cfg Config, req GenerateRequest, temp float64, maxTok int) (string, string, error) {
	var msgs []chatMessage
	if req.SystemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: req.UserPrompt})

	body := chatRequest{Model: cfg.Model, Messages: msgs, Temperature: temp, MaxTokens: maxTok}
	var resp chatResponse
	if err := postJSON(ctx, hc, cfg.Endpoint+"/chat/completions", cfg.APIKey, body, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Choices) == 0 {
		return "", "", fmt.Errorf("%w: no choices in response", ErrInvalidOutput)
	}
	return resp.Choices[0].Message.Content, resp.Model, nil
}

func (chatBackend) probe(ctx context.Context, cfg Config) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.Endpoint+"/models", nil)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	return req, nil
}
