package call

import "errors"

// DefaultMaxTurns bounds model invocations when no limit is configured.
const DefaultMaxTurns = 10

var (
	// ErrMaxTurnsExceeded signals that a turn needed more model calls than allowed.
	ErrMaxTurnsExceeded = errors.New("max turns exceeded")
	// ErrUnknownTool signals that the model called a tool the active agent does not expose.
	ErrUnknownTool = errors.New("unknown tool")
)

// RunLimits bounds a single turn.
type RunLimits struct {
	MaxTurns int
}

func (l RunLimits) maxTurns() int {
	if l.MaxTurns <= 0 {
		return DefaultMaxTurns
	}
	return l.MaxTurns
}
