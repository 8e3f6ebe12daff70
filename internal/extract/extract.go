// Package extract derives what happened during an agent run from its item
// stream: which agent took the request and which tools were invoked.
package extract

import (
	"agentevals/internal/agent/call"
	"agentevals/internal/session"
)

const (
	// UnknownAgent is reported when a handoff target cannot be resolved.
	UnknownAgent = "Unknown"
	// NoTool is the label used when a run invoked no tools.
	NoTool = "None"
)

// RunItem is one normalized run item: Handoff, ToolInvocation, or Other.
type RunItem interface {
	runItem()
}

// Handoff records control moving between agents. Target is empty when unresolved.
type Handoff struct {
	Source string
	Target string
}

// ToolInvocation records a function tool call by name.
type ToolInvocation struct {
	Name string
}

// Other covers messages, tool outputs, and handoff requests.
type Other struct {
	Type session.ItemType
}

func (Handoff) runItem()        {}
func (ToolInvocation) runItem() {}
func (Other) runItem()          {}

// Normalize maps a raw session item onto its variant.
func Normalize(item session.Item) RunItem {
	switch item.Type {
	case session.ItemHandoffOutput:
		return Handoff{Source: item.SourceAgent, Target: item.TargetAgent}
	case session.ItemToolCall:
		if item.TargetAgent != "" {
			return Other{Type: item.Type}
		}
		return ToolInvocation{Name: item.Name}
	default:
		return Other{Type: item.Type}
	}
}

// NormalizeAll maps every item in order.
func NormalizeAll(items []session.Item) []RunItem {
	out := make([]RunItem, 0, len(items))
	for _, item := range items {
		out = append(out, Normalize(item))
	}
	return out
}

// Run is the normalized view of a completed turn.
type Run struct {
	NewItems  []RunItem
	AllItems  []RunItem
	LastAgent string
}

// FromResult normalizes an engine result.
func FromResult(result call.Result) Run {
	run := Run{
		NewItems: NormalizeAll(result.NewItems),
		AllItems: NormalizeAll(result.AllItems),
	}
	if result.LastAgent != nil {
		run.LastAgent = result.LastAgent.Name
	}
	return run
}

// RoutedAgentName returns the target of the first handoff in NewItems, or
// the last active agent when no handoff happened.
func RoutedAgentName(run Run) string {
	for _, item := range run.NewItems {
		if handoff, ok := item.(Handoff); ok {
			if handoff.Target == "" {
				return UnknownAgent
			}
			return handoff.Target
		}
	}
	if run.LastAgent == "" {
		return UnknownAgent
	}
	return run.LastAgent
}

// ToolCalls lists distinct tool names in first-seen order, scanning NewItems
// and then AllItems.
func ToolCalls(run Run) []string {
	seen := map[string]bool{}
	names := []string{}
	for _, items := range [][]RunItem{run.NewItems, run.AllItems} {
		for _, item := range items {
			invocation, ok := item.(ToolInvocation)
			if !ok || invocation.Name == "" || seen[invocation.Name] {
				continue
			}
			seen[invocation.Name] = true
			names = append(names, invocation.Name)
		}
	}
	return names
}

// FirstToolOrNone returns the first tool name, or NoTool when none were called.
func FirstToolOrNone(tools []string) string {
	if len(tools) == 0 {
		return NoTool
	}
	return tools[0]
}
