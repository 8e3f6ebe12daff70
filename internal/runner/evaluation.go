package runner

import (
	"context"
	"fmt"

	"agentevals/internal/agent"
	"agentevals/internal/banking"
	"agentevals/internal/dataset"
	"agentevals/internal/extract"
)

// Outcome is what an extractor reports for one run.
type Outcome struct {
	Label    string
	AllTools []string
}

// Evaluation parameterizes the generic driver.
type Evaluation struct {
	EvalType   string
	Dataset    dataset.Dataset
	EntryAgent func(banking.Topology) *agent.Agent
	Extract    func(extract.Run) Outcome
}

// HandoffEvaluation scores which specialist the orchestrator routed to.
func HandoffEvaluation(ds dataset.Dataset) Evaluation {
	return Evaluation{
		EvalType:   EvalHandoff,
		Dataset:    ds,
		EntryAgent: func(t banking.Topology) *agent.Agent { return t.Orchestrator },
		Extract: func(run extract.Run) Outcome {
			return Outcome{Label: extract.RoutedAgentName(run)}
		},
	}
}

// ToolEvaluation scores the first tool the operational agent called.
func ToolEvaluation(ds dataset.Dataset) Evaluation {
	return Evaluation{
		EvalType:   EvalTool,
		Dataset:    ds,
		EntryAgent: func(t banking.Topology) *agent.Agent { return t.Operational },
		Extract: func(run extract.Run) Outcome {
			tools := extract.ToolCalls(run)
			return Outcome{Label: extract.FirstToolOrNone(tools), AllTools: tools}
		},
	}
}

// RunHandoffEval runs the routing evaluation end to end.
func RunHandoffEval(ctx context.Context, deps Dependencies, opts Options) (EvalResult, error) {
	ds, err := dataset.Load(opts.DatasetPath, dataset.KindRouting)
	if err != nil {
		return EvalResult{}, fmt.Errorf("load routing dataset: %w", err)
	}
	return Run(ctx, HandoffEvaluation(ds), deps, opts)
}

// RunToolEval runs the tool-call evaluation end to end.
func RunToolEval(ctx context.Context, deps Dependencies, opts Options) (EvalResult, error) {
	ds, err := dataset.Load(opts.DatasetPath, dataset.KindTool)
	if err != nil {
		return EvalResult{}, fmt.Errorf("load tool dataset: %w", err)
	}
	return Run(ctx, ToolEvaluation(ds), deps, opts)
}
