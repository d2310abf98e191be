// Package tools exposes the model-callable capabilities of a chat session.
// Tools are bound to one session when the registry is built; nothing in here
// reads ambient current-session state.
package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jasonychoong/retire-server/internal/ledger"
)

// Tool is one callable capability exposed to the model.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]any
	Call(ctx context.Context, input map[string]any) (string, error)
}

// Deps carries what builtin tools need: the ledger and the session they are
// bound to.
type Deps struct {
	Ledger    *ledger.TopicLedger
	SessionID string
}

// Factory builds a tool bound to its dependencies.
type Factory func(deps Deps) Tool

// builtins maps registry names to factories. The names listed in tools.yaml
// must resolve here.
var builtins = map[string]Factory{
	"information":          newInformationTool,
	"completeness":         newCompletenessTool,
	"information_query":    newQueryTool,
	"retirement_readiness": newReadinessTool,
}

// Registry holds the tools enabled for a session.
type Registry struct {
	tools  []Tool
	byName map[string]Tool
}

// NewRegistry resolves names against the builtin table. Unknown names fail
// construction, not the first model call.
func NewRegistry(deps Deps, names []string) (*Registry, error) {
	r := &Registry{byName: make(map[string]Tool, len(names))}
	for _, name := range names {
		factory, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("unknown tool %q in registry", name)
		}
		if _, dup := r.byName[name]; dup {
			continue
		}
		tool := factory(deps)
		r.tools = append(r.tools, tool)
		r.byName[name] = tool
	}
	return r, nil
}

// Tools returns the enabled tools in registry order.
func (r *Registry) Tools() []Tool {
	return r.tools
}

// Len returns the number of enabled tools.
func (r *Registry) Len() int {
	return len(r.tools)
}

// Call dispatches one invocation by name.
func (r *Registry) Call(ctx context.Context, name string, input map[string]any) (string, error) {
	tool, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	return tool.Call(ctx, input)
}

// LoadToolNames reads the registry file: a YAML list of builtin tool names.
// A missing file means the session runs without tools.
func LoadToolNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read tool registry: %w", err)
	}
	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("tool registry must be a list of tool names: %w", err)
	}
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("tool registry entries must be non-empty strings")
		}
	}
	return names, nil
}

// topicList copies the canonical topics for schema enums.
func topicList() []string {
	return append([]string(nil), ledger.CanonicalTopics...)
}

// stringArg pulls a string argument out of a decoded tool input.
func stringArg(input map[string]any, key string) (string, bool) {
	v, ok := input[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// floatArg pulls a numeric argument out of a decoded tool input. JSON
// decoding hands numbers back as float64, but providers occasionally send
// integers through other paths.
func floatArg(input map[string]any, key string) (float64, bool) {
	switch v := input[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
