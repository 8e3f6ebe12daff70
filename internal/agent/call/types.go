package call

import (
	"time"

	"go.uber.org/zap"

	"agentevals/internal/agent"
	"agentevals/internal/session"
)

// Request describes one agent turn.
type Request struct {
	// Agent is the entry agent. Handoffs may move control to another agent.
	Agent    *agent.Agent
	Input    string
	Session  session.Session
	Provider agent.Provider
	Model    string
	Limits   RunLimits
	Logger   *zap.Logger
}

// Result captures everything a turn produced.
type Result struct {
	// NewItems are the items generated by this turn, excluding the input.
	NewItems []session.Item
	// AllItems is prior session history, the input item, and NewItems.
	AllItems    []session.Item
	FinalOutput string
	LastAgent   *agent.Agent
	Metrics     RunMetrics
}

// RunMetrics captures execution effort for a turn.
type RunMetrics struct {
	ToolCalls map[string]int
	Handoffs  int
	Turns     int
	WallTime  time.Duration
}
