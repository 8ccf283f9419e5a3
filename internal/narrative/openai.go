package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Compile-time interface check.
var _ TextGenerator = (*OpenAIGenerator)(nil)

// systemPersona is sent as the system message of every request.
const systemPersona = "You are a careful supply-chain risk analyst. You only state facts present in the supplied evidence."

// OpenAIConfig configures an OpenAIGenerator.
type OpenAIConfig struct {
	// BaseURL of an OpenAI-compatible API, e.g. a Hugging Face TGI or Ollama
	// endpoint ending in /v1. Empty means api.openai.com.
	BaseURL string
	// Model is the model identity, e.g. "google/flan-t5-base".
	Model string
	// Credential is the bearer token. Optional for self-hosted endpoints,
	// required for api.openai.com.
	Credential string
}

// OpenAIGenerator generates text through the chat-completions API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator builds a generator from cfg. A missing model, or a
// missing credential for the hosted API, yields an error wrapping
// ErrUnavailable; callers treat that as a configuration condition.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("%w: no model configured", ErrUnavailable)
	}
	if cfg.BaseURL == "" && cfg.Credential == "" {
		return nil, fmt.Errorf("%w: no credential configured for the hosted API", ErrUnavailable)
	}

	clientCfg := openai.DefaultConfig(cfg.Credential)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Generate sends prompt as a single user turn. Deterministic requests use
// temperature 0 and a fixed seed.
func (o *OpenAIGenerator) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPersona},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if opts.MaxOutputLength > 0 {
		req.MaxTokens = opts.MaxOutputLength
	}
	if opts.Deterministic {
		seed := 0
		req.Temperature = 0
		req.Seed = &seed
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion (%s): %w", o.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion (%s): no choices returned", o.model)
	}
	return resp.Choices[0].Message.Content, nil
}
