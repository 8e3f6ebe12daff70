package agent

import (
	"context"
	"strings"
	"unicode"
)

// handoffToolPrefix prefixes the synthetic tool each handoff target is exposed as.
const handoffToolPrefix = "transfer_to_"

// ToolHandler executes a tool with decoded arguments and returns a JSON-encodable result.
type ToolHandler func(ctx context.Context, args ToolCallArgs) (any, error)

// Tool pairs a tool definition with its implementation.
type Tool struct {
	Definition ToolDefinition
	Handler    ToolHandler
}

// ToolDefinition describes a callable tool exposed to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  *ToolSchema
}

// Agent is a named set of instructions, callable tools, and handoff targets.
type Agent struct {
	Name         string
	Instructions string
	Tools        []Tool
	Handoffs     []*Agent
}

// HandoffToolName returns the tool name the model calls to transfer to target.
func HandoffToolName(target string) string {
	return handoffToolPrefix + snakeCase(target)
}

// ToolDefinitions lists the function tools followed by one tool per handoff target.
func (a *Agent) ToolDefinitions() []ToolDefinition {
	if a == nil {
		return nil
	}
	defs := make([]ToolDefinition, 0, len(a.Tools)+len(a.Handoffs))
	for _, tool := range a.Tools {
		defs = append(defs, tool.Definition)
	}
	for _, target := range a.Handoffs {
		if target == nil {
			continue
		}
		params := ObjectSchema(map[string]ToolSchema{}, nil, BoolPointer(false))
		defs = append(defs, ToolDefinition{
			Name:        HandoffToolName(target.Name),
			Description: "Handoff to the " + target.Name + " agent to handle the request.",
			Parameters:  &params,
		})
	}
	return defs
}

// FindTool looks up a function tool by name.
func (a *Agent) FindTool(name string) (Tool, bool) {
	if a == nil {
		return Tool{}, false
	}
	for _, tool := range a.Tools {
		if tool.Definition.Name == name {
			return tool, true
		}
	}
	return Tool{}, false
}

// HandoffTarget resolves a handoff tool name to its target agent.
func (a *Agent) HandoffTarget(toolName string) (*Agent, bool) {
	if a == nil || !strings.HasPrefix(toolName, handoffToolPrefix) {
		return nil, false
	}
	for _, target := range a.Handoffs {
		if target != nil && HandoffToolName(target.Name) == toolName {
			return target, true
		}
	}
	return nil, false
}

// snakeCase converts names like "FinancialCoach" into "financial_coach".
func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(strings.TrimSpace(name))
	for i, r := range runes {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
		case unicode.IsUpper(r):
			if i > 0 && runes[i-1] != ' ' && runes[i-1] != '-' && !unicode.IsUpper(runes[i-1]) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
