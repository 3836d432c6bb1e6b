// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	claudeDefaultURL   = "https://api.anthropic.com"
	claudeDefaultModel = "claude-sonnet-4-5"
	claudeAPIVersion   = "2023-06-01"

	// claudeMaxTokens bounds a single reply. A long article with full
	// head markup stays well under it.
	claudeMaxTokens = 8192

	// maxErrorBody caps how much of a failed reply is kept in errors.
	maxErrorBody = 512
)

// claudeProvider talks to the Anthropic Messages API. There is no
// maintained Go SDK in use here, so requests are plain JSON over net/http.
type claudeProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func newClaude(cfg ProviderConfig) *claudeProvider {
	p := &claudeProvider{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.timeout()},
	}
	if p.baseURL == "" {
		p.baseURL = claudeDefaultURL
	}
	if p.model == "" {
		p.model = claudeDefaultModel
	}
	return p
}

func (p *claudeProvider) Name() string { return "claude" }

// Generate sends one user turn and joins the text blocks of the reply.
func (p *claudeProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload, err := json.Marshal(messagesRequest{
		Model:     p.model,
		MaxTokens: claudeMaxTokens,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return "", fmt.Errorf("claude encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("claude build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", claudeAPIVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("claude send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("claude read reply: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", newStatusError("claude", resp.StatusCode, raw)
	}

	var reply messagesResponse
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", fmt.Errorf("claude decode reply: %w", err)
	}
	if reply.StopReason == "max_tokens" {
		slog.Warn("claude reply truncated", "model", p.model, "output_tokens", reply.Usage.OutputTokens)
	}

	var b strings.Builder
	for _, block := range reply.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("claude: reply has no text content")
	}
	return b.String(), nil
}

// StatusError is a non-200 reply from a provider's HTTP API.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Code, e.Body)
}

// newStatusError prefers the message from an {"error":{"message":...}}
// envelope and falls back to the raw body, truncated.
func newStatusError(provider string, code int, raw []byte) *StatusError {
	var env struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	body := string(raw)
	if json.Unmarshal(raw, &env) == nil && env.Error.Message != "" {
		body = env.Error.Message
		if env.Error.Type != "" {
			body = env.Error.Type + ": " + body
		}
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return &StatusError{Provider: provider, Code: code, Body: body}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}
