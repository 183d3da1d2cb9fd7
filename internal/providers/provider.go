// internal/providers/provider.go

// Package providers defines the chat boundary shared by every model provider.
// Agents talk to a ChatProvider; concrete providers translate requests into
// a vendor wire format and report tool calls back to the caller.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mwiater/paper2pod/internal/appconfig"
)

// Message roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage represents a single message in a chat conversation.
// Assistant messages may carry tool calls; tool messages carry the ID of the
// call they answer.
type ChatMessage struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolDefinition defines the structure of a tool that can be invoked by a provider.
// It includes the tool's name, a description of its purpose, and a schema for its parameters.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ToolExecutor is a function type for executing a tool.
// It takes the tool's name and arguments and returns the result as a string.
type ToolExecutor func(ctx context.Context, name string, args map[string]any) (string, error)

// Usage reports token accounting for one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// ChatRequest encapsulates everything needed for one completion.
type ChatRequest struct {
	Host         appconfig.Host
	Model        string
	History      []ChatMessage
	SystemPrompt string
	Parameters   appconfig.Parameters
	JSONMode     bool
	Tools        []ToolDefinition
}

// ChatResponse is the assistant turn returned by a provider.
type ChatResponse struct {
	Model        string
	Message      ChatMessage
	FinishReason string
	Usage        Usage
}

// ChatProvider is the interface that all model providers must implement.
type ChatProvider interface {
	// Chat sends one completion request and returns the assistant message.
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// Close cleans up any resources used by the provider.
	Close() error
}

// ParseToolArguments decodes tool-call arguments. Models send either a JSON
// object or a JSON string containing an object; both are accepted.
func ParseToolArguments(raw json.RawMessage) (map[string]any, error) {
	args := map[string]any{}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err == nil {
		return args, nil
	}
	var argString string
	if err := json.Unmarshal(raw, &argString); err != nil {
		return nil, fmt.Errorf("parse tool arguments: %w", err)
	}
	argString = strings.TrimSpace(argString)
	if argString == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(argString), &args); err != nil {
		return nil, fmt.Errorf("parse tool arguments string: %w", err)
	}
	return args, nil
}
