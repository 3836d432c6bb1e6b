// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// chatProvider talks to any OpenAI-compatible chat completions API through
// the go-openai client. OpenAI and Mistral both use it.
type chatProvider struct {
	name   string
	model  string
	client *openai.Client
}

func newChatProvider(name string, cfg ProviderConfig, defaultBaseURL string) *chatProvider {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	} else if defaultBaseURL != "" {
		oc.BaseURL = defaultBaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.timeout()}

	return &chatProvider{
		name:   name,
		model:  cfg.Model,
		client: openai.NewClientWithConfig(oc),
	}
}

// newOpenAI creates a provider for the OpenAI API.
func newOpenAI(cfg ProviderConfig) *chatProvider {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	return newChatProvider("openai", cfg, "")
}

func (p *chatProvider) Name() string { return p.name }

// Generate sends a chat completion request and returns the assistant's
// response text.
func (p *chatProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices returned", p.name)
	}
	return resp.Choices[0].Message.Content, nil
}
