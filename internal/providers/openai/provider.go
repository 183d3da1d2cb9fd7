// internal/providers/openai/provider.go
// Package openai provides a ChatProvider backed by an OpenAI-compatible
// /chat/completions endpoint (OpenAI, llama.cpp server, Ollama /v1).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/paper2pod/internal/appconfig"
	"github.com/mwiater/paper2pod/internal/logging"
	"github.com/mwiater/paper2pod/internal/providers"
)

// Provider implements the providers.ChatProvider interface over HTTP.
type Provider struct {
	client  *http.Client
	apiKey  string
	timeout time.Duration
	debug   bool
}

// New constructs a Provider. The credential is copied from cfg; nothing is
// read from the process environment.
func New(cfg appconfig.Config) *Provider {
	timeout := cfg.RequestTimeout()
	return &Provider{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		apiKey:  cfg.OpenAIAPIKey,
		timeout: timeout,
		debug:   cfg.Debug,
	}
}

type wireFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Arguments   string         `json:"arguments,omitempty"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    *string        `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      wireMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Chat issues a single non-streaming completion request.
func (p *Provider) Chat(ctx context.Context, req providers.ChatRequest) (providers.ChatResponse, error) {
	messages := req.History
	if req.SystemPrompt != "" {
		messages = append([]providers.ChatMessage{{Role: providers.RoleSystem, Content: req.SystemPrompt}}, messages...)
	}
	messages = sanitizeMessages(messages)
	if len(messages) == 0 {
		return providers.ChatResponse{}, fmt.Errorf("openai: chat request has no messages")
	}

	payload := map[string]any{
		"model":    req.Model,
		"messages": toWireMessages(messages),
	}
	applyParameters(payload, req.Parameters)
	if req.JSONMode {
		payload["response_format"] = map[string]any{"type": "json_object"}
	}
	if len(req.Tools) > 0 {
		payload["tools"] = formatToolsForPayload(req.Tools)
		payload["tool_choice"] = "auto"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return providers.ChatResponse{}, err
	}
	hostID := hostIdentifier(req.Host)
	logging.LogRequest("P2P->LLM", hostID, req.Model, "", body)

	chatCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	endpoint := strings.TrimRight(req.Host.URL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(chatCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return providers.ChatResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return providers.ChatResponse{}, fmt.Errorf("openai: chat request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return providers.ChatResponse{}, err
	}
	logging.LogRequest("LLM->P2P", hostID, req.Model, "", raw)

	if resp.StatusCode != http.StatusOK {
		return providers.ChatResponse{}, fmt.Errorf("openai: /chat/completions returned %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return providers.ChatResponse{}, fmt.Errorf("openai: parse chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return providers.ChatResponse{}, fmt.Errorf("openai: chat response contained no choices")
	}

	choice := parsed.Choices[0]
	msg := fromWireMessage(choice.Message)
	if msg.Role == "" {
		msg.Role = providers.RoleAssistant
	}
	modelName := parsed.Model
	if modelName == "" {
		modelName = req.Model
	}
	if p.debug && len(msg.ToolCalls) > 0 {
		logging.LogEvent("openai: model requested %d tool call(s)", len(msg.ToolCalls))
	}

	return providers.ChatResponse{
		Model:        modelName,
		Message:      msg,
		FinishReason: choice.FinishReason,
		Usage: providers.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
		},
	}, nil
}

// Close releases any resources held by the provider.
func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func applyParameters(payload map[string]any, params appconfig.Parameters) {
	if params.Temperature != nil {
		payload["temperature"] = *params.Temperature
	}
	if params.TopP != nil {
		payload["top_p"] = *params.TopP
	}
	if params.MaxTokens != nil {
		payload["max_tokens"] = *params.MaxTokens
	}
}

// formatToolsForPayload wraps tool definitions in the "function" envelope.
func formatToolsForPayload(tools []providers.ToolDefinition) []wireTool {
	formatted := make([]wireTool, 0, len(tools))
	for _, tool := range tools {
		formatted = append(formatted, wireTool{
			Type: "function",
			Function: wireFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return formatted
}

func sanitizeMessages(messages []providers.ChatMessage) []providers.ChatMessage {
	sanitized := make([]providers.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		role := strings.TrimSpace(msg.Role)
		if role == "" {
			role = providers.RoleUser
		}
		content := strings.TrimSpace(msg.Content)
		if role != providers.RoleAssistant && role != providers.RoleTool && content == "" {
			continue
		}
		msg.Role = role
		msg.Content = content
		sanitized = append(sanitized, msg)
	}
	return sanitized
}

func toWireMessages(messages []providers.ChatMessage) []wireMessage {
	out := make([]wireMessage, 0, len(messages))
	for _, msg := range messages {
		wm := wireMessage{Role: msg.Role, ToolCallID: msg.ToolCallID}
		content := msg.Content
		if content != "" || len(msg.ToolCalls) == 0 {
			wm.Content = &content
		}
		for _, call := range msg.ToolCalls {
			args := strings.TrimSpace(string(call.Arguments))
			if args == "" {
				args = "{}"
			}
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:       call.ID,
				Type:     "function",
				Function: wireFunction{Name: call.Name, Arguments: args},
			})
		}
		out = append(out, wm)
	}
	return out
}

func fromWireMessage(wm wireMessage) providers.ChatMessage {
	msg := providers.ChatMessage{Role: wm.Role}
	if wm.Content != nil {
		msg.Content = *wm.Content
	}
	for _, call := range wm.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, providers.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: json.RawMessage(call.Function.Arguments),
		})
	}
	return msg
}

// hostIdentifier returns a string identifier for a given host, preferring the name over the URL.
func hostIdentifier(host appconfig.Host) string {
	name := strings.TrimSpace(host.Name)
	if name != "" {
		return name
	}
	if url := strings.TrimSpace(host.URL); url != "" {
		return url
	}
	return "openai-host"
}
