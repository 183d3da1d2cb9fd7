package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mwiater/paper2pod/internal/logging"
	"github.com/mwiater/paper2pod/internal/providers"
)

// SearchToolName is the name agents use to call the retriever.
const SearchToolName = "search_pdf"

// Searcher is the query boundary the search tool wraps.
type Searcher interface {
	Query(ctx context.Context, query string, k int) ([]string, error)
}

// SearchToolDefinition describes the retriever to the model.
func SearchToolDefinition() providers.ToolDefinition {
	return providers.ToolDefinition{
		Name:        SearchToolName,
		Description: "Search the PDF for relevant information. Always use this tool to find facts in the paper.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What to look for in the paper.",
					"minLength":   1,
				},
			},
			"required":             []any{"query"},
			"additionalProperties": false,
		},
	}
}

// SearchTool returns the tool definition and an executor backed by searcher.
// Arguments that fail schema validation are reported back to the model as
// text instead of failing the agent.
func SearchTool(searcher Searcher, k int) (providers.ToolDefinition, providers.ToolExecutor) {
	def := SearchToolDefinition()
	schema := gojsonschema.NewGoLoader(def.Parameters)

	exec := func(ctx context.Context, name string, args map[string]any) (string, error) {
		if name != SearchToolName {
			return fmt.Sprintf("unknown tool %q; the only available tool is %s", name, SearchToolName), nil
		}
		if err := validateArgs(schema, args); err != nil {
			logging.LogWarn("search tool rejected arguments: %v", err)
			return fmt.Sprintf("invalid arguments: %v", err), nil
		}
		query := strings.TrimSpace(fmt.Sprint(args["query"]))
		if query == "" {
			logging.LogWarn("search tool rejected a blank query")
			return "invalid arguments: query is empty", nil
		}
		logging.LogRequest("AGENT->TOOL", "", "", SearchToolName, query)

		texts, err := searcher.Query(ctx, query, k)
		if err != nil {
			return "", err
		}
		return strings.Join(texts, "\n\n"), nil
	}
	return def, exec
}

func validateArgs(schema gojsonschema.JSONLoader, args map[string]any) error {
	argBytes, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshal arguments for validation: %w", err)
	}
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(argBytes))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
