package live

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"agentevals/internal/history"
	"agentevals/internal/runner"
)

// Controller runs the live UI and implements runner.RunObserver.
type Controller struct {
	events    chan Event
	program   *tea.Program
	done      chan struct{}
	closeOnce sync.Once
}

// StartController launches a live UI controller that writes to stdout.
func StartController(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, 256)
	model := NewModel(events, opts)
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithInput(nil))
	controller := &Controller{
		events:  events,
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, _ = program.Run()
		close(controller.done)
	}()
	return controller
}

// Close signals the UI to stop.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		close(c.events)
	})
}

// Wait blocks until the UI has exited.
func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

// OnRunStart forwards run start events to the UI.
func (c *Controller) OnRunStart(meta history.RunMetadata, total int) {
	c.send(Event{Kind: EventRunStart, Meta: meta, Total: total})
}

// OnPhase forwards phase transitions to the UI.
func (c *Controller) OnPhase(evalType string, phase runner.Phase) {
	c.send(Event{Kind: EventPhase, Phase: phase})
}

// OnCaseEvent forwards case status updates to the UI.
func (c *Controller) OnCaseEvent(event runner.CaseEvent) {
	c.send(Event{Kind: EventCase, Case: event})
}

// OnRunEnd forwards run completion to the UI and closes it.
func (c *Controller) OnRunEnd(result runner.EvalResult, err error) {
	event := Event{Kind: EventRunEnd, Result: result}
	if err != nil {
		event.Err = err.Error()
	}
	c.send(event)
	c.Close()
}

// send enqueues an event without blocking the caller.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}
