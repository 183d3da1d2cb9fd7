// Package agents runs the research and script agents over a ChatProvider.
//
// An Agent is a persona (role, goal, backstory) plus the tools it may call.
// A Task is the work handed to an agent together with the outputs of the
// tasks it depends on. Runner drives one task to a final answer through a
// bounded tool-use loop.
package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mwiater/paper2pod/internal/appconfig"
	"github.com/mwiater/paper2pod/internal/logging"
	"github.com/mwiater/paper2pod/internal/providers"
)

// DefaultMaxToolRounds bounds how many tool-enabled chat rounds a task may use.
const DefaultMaxToolRounds = 5

// ErrEmptyOutput is returned when an agent finishes without any text.
var ErrEmptyOutput = errors.New("agent returned an empty response")

// Agent describes who is doing the work.
type Agent struct {
	Role      string
	Goal      string
	Backstory string
	Tools     []providers.ToolDefinition
}

// Task describes the work. Context holds the outputs of prerequisite tasks.
// Async tasks run in their own goroutine once their context is available.
type Task struct {
	Description    string
	ExpectedOutput string
	Context        []string
	Async          bool
	JSONMode       bool
}

// Runner executes tasks against one chat model.
type Runner struct {
	Provider      providers.ChatProvider
	Host          appconfig.Host
	Model         string
	Parameters    appconfig.Parameters
	Executor      providers.ToolExecutor
	MaxToolRounds int
}

// Execute runs task for agent and returns the final assistant text. Tool
// calls are executed and fed back for up to MaxToolRounds rounds; after that
// one more round runs without tools so the model has to answer.
func (r *Runner) Execute(ctx context.Context, agent Agent, task Task) (string, error) {
	maxRounds := r.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxToolRounds
	}

	history := []providers.ChatMessage{{Role: providers.RoleUser, Content: taskPrompt(task)}}
	system := systemPrompt(agent)

	for round := 0; ; round++ {
		var tools []providers.ToolDefinition
		if round < maxRounds && r.Executor != nil {
			tools = agent.Tools
		}

		resp, err := r.Provider.Chat(ctx, providers.ChatRequest{
			Host:         r.Host,
			Model:        r.Model,
			History:      history,
			SystemPrompt: system,
			Parameters:   r.Parameters,
			JSONMode:     task.JSONMode,
			Tools:        tools,
		})
		if err != nil {
			return "", fmt.Errorf("%s: %w", agent.Role, err)
		}

		msg := resp.Message
		if len(msg.ToolCalls) == 0 || len(tools) == 0 {
			out := strings.TrimSpace(msg.Content)
			if out == "" {
				return "", fmt.Errorf("%s: %w", agent.Role, ErrEmptyOutput)
			}
			return out, nil
		}

		msg.Role = providers.RoleAssistant
		history = append(history, msg)
		for _, call := range msg.ToolCalls {
			result, err := r.runTool(ctx, call)
			if err != nil {
				return "", fmt.Errorf("%s: tool %s: %w", agent.Role, call.Name, err)
			}
			history = append(history, providers.ChatMessage{
				Role:       providers.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
		logging.LogEvent("[AGENT] %s round %d: %d tool call(s)", agent.Role, round+1, len(msg.ToolCalls))
	}
}

// runTool executes one tool call. Malformed arguments are reported back to
// the model as text; executor errors are fatal.
func (r *Runner) runTool(ctx context.Context, call providers.ToolCall) (string, error) {
	args, err := providers.ParseToolArguments(call.Arguments)
	if err != nil {
		return fmt.Sprintf("error: %v", err), nil
	}
	return r.Executor(ctx, call.Name, args)
}

func systemPrompt(agent Agent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a %s.", agent.Role)
	if agent.Backstory != "" {
		b.WriteString(" ")
		b.WriteString(agent.Backstory)
	}
	if agent.Goal != "" {
		b.WriteString("\n\nYour goal: ")
		b.WriteString(agent.Goal)
	}
	return b.String()
}

func taskPrompt(task Task) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(task.Description))
	for i, c := range task.Context {
		if i == 0 {
			b.WriteString("\n\nContext from previous work:\n")
		} else {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.TrimSpace(c))
	}
	if task.ExpectedOutput != "" {
		b.WriteString("\n\nExpected output: ")
		b.WriteString(task.ExpectedOutput)
	}
	return b.String()
}
