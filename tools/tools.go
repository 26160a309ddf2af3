// Package tools defines the callable tools the answering agent can invoke,
// plus a thread-safe registry and the built-in document tools.
package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	pkgerrors "github.com/sweetpotato0/docqa/pkg/errors"
)

// Parameter defines a tool parameter
type Parameter struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // string, number, boolean, object, array
	Description string      `json:"description"`
	Required    bool        `json:"required"`
	Default     interface{} `json:"default,omitempty"`
}

// Tool represents a callable tool/function
type Tool struct {
	Name        string                                                        `json:"name"`
	Description string                                                        `json:"description"`
	Parameters  []Parameter                                                   `json:"parameters"`
	Handler     func(context.Context, map[string]interface{}) (string, error) `json:"-"`
}

// Execute runs the tool with given arguments
func (t *Tool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	if t.Handler == nil {
		return "", fmt.Errorf("tool %s has no handler", t.Name)
	}

	if err := t.ValidateArgs(args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	return t.Handler(ctx, args)
}

// ValidateArgs validates the provided arguments against the tool's parameters
func (t *Tool) ValidateArgs(args map[string]interface{}) error {
	for _, param := range t.Parameters {
		if param.Required {
			if _, ok := args[param.Name]; !ok {
				return fmt.Errorf("%w: missing required parameter %s", pkgerrors.ErrInvalidInput, param.Name)
			}
		}
	}
	return nil
}

// PromptDescription renders the tool signature as plain prompt text.
func (t *Tool) PromptDescription() string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s: %s", t.Name, t.Description)
	if len(t.Parameters) > 0 {
		names := make([]string, 0, len(t.Parameters))
		for _, p := range t.Parameters {
			name := p.Name
			if !p.Required {
				name += "?"
			}
			if p.Default != nil {
				names = append(names, fmt.Sprintf("%s (%s, default %v)", name, p.Type, p.Default))
			} else {
				names = append(names, fmt.Sprintf("%s (%s)", name, p.Type))
			}
		}
		fmt.Fprintf(&b, " Args: %s", strings.Join(names, ", "))
	}
	return b.String()
}

// Registry manages a collection of tools
// All operations are thread-safe using RWMutex protection
type Registry struct {
	mu    sync.RWMutex // Protects tools map
	tools map[string]*Tool
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Tool),
	}
}

// Register adds a tool to the registry
func (r *Registry) Register(tool *Tool) error {
	if tool == nil || tool.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: tool %s already registered", pkgerrors.ErrAlreadyExists, tool.Name)
	}
	r.tools[tool.Name] = tool
	return nil
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (*Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: tool %s", pkgerrors.ErrNotFound, name)
	}
	return tool, nil
}

// List returns all registered tools ordered by name
func (r *Registry) List() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name < tools[j].Name
	})
	return tools
}

// PromptDescriptions renders all tools as prompt text, one per line.
func (r *Registry) PromptDescriptions() string {
	tools := r.List()
	lines := make([]string, 0, len(tools))
	for _, tool := range tools {
		lines = append(lines, tool.PromptDescription())
	}
	return strings.Join(lines, "\n")
}

// Execute runs a tool by name with given arguments
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	tool, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return tool.Execute(ctx, args)
}
