// Package tools declares the read-only toolset the concierge exposes to the
// LLM: seven lookups over the corpus snapshot, each with a JSON-schema
// parameter contract validated before the handler runs.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andreypavlenko/scout/internal/platform/llm"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	// ErrUnknownTool is returned for tool names outside the registry.
	ErrUnknownTool = errors.New("unknown tool")
)

// InvalidArgsError reports a schema violation in tool arguments.
type InvalidArgsError struct {
	Tool   string
	Detail string
}

func (e *InvalidArgsError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, e.Detail)
}

// Result is the uniform payload every tool returns. Handler errors are
// captured here rather than propagated, so the tool-call loop can continue.
type Result struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Results any    `json:"results,omitempty"`
	Error   string `json:"error,omitempty"`
}

func success(results any, count int) *Result {
	return &Result{Success: true, Count: &count, Results: results}
}

func failure(msg string) *Result {
	return &Result{Success: false, Error: msg}
}

// Handler executes a validated tool call against the snapshot.
type Handler func(ctx context.Context, args json.RawMessage) *Result

// Tool is one registry entry.
type Tool struct {
	Name        string
	Description string
	Schema      json.RawMessage
	handler     Handler
	compiled    *jsonschema.Schema
}

// Registry holds the declared tools in a fixed order.
type Registry struct {
	tools   []*Tool
	byName  map[string]*Tool
	timeout time.Duration
}

// NewRegistry builds an empty registry with the given per-handler timeout.
func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Registry{
		byName:  make(map[string]*Tool),
		timeout: timeout,
	}
}

// Register compiles the schema and adds the tool. Panics on an invalid
// schema: registration happens at startup with literal schemas.
func (r *Registry) Register(name, description string, schema string, handler Handler) {
	compiled, err := jsonschema.CompileString(name+".schema.json", schema)
	if err != nil {
		panic(fmt.Sprintf("tools: invalid schema for %s: %v", name, err))
	}

	tool := &Tool{
		Name:        name,
		Description: description,
		Schema:      json.RawMessage(schema),
		handler:     handler,
		compiled:    compiled,
	}
	r.tools = append(r.tools, tool)
	r.byName[name] = tool
}

// Defs returns the tool definitions offered to the model.
func (r *Registry) Defs() []llm.ToolDef {
	defs := make([]llm.ToolDef, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, llm.ToolDef{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.Schema,
		})
	}
	return defs
}

// Names returns the registered tool names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for _, tool := range r.tools {
		names = append(names, tool.Name)
	}
	return names
}

// Execute validates the arguments against the tool's schema and runs the
// handler under the registry timeout. Unknown tools and schema violations
// are errors; handler-level failures come back inside the Result.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (*Result, error) {
	tool, ok := r.byName[name]
	if !ok {
		return nil, ErrUnknownTool
	}

	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	var decoded any
	if err := json.Unmarshal(args, &decoded); err != nil {
		return nil, &InvalidArgsError{Tool: name, Detail: "arguments are not valid JSON"}
	}
	if err := tool.compiled.Validate(decoded); err != nil {
		return nil, &InvalidArgsError{Tool: name, Detail: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return tool.handler(ctx, args), nil
}
